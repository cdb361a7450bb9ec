// Package testing provides test utilities and database setup for testing the short link service
package testing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/snipper-app/snipper/models"
	"github.com/snipper-app/snipper/utils"
	"golang.org/x/crypto/bcrypt"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestShortLink creates a short link with a random code
func (tf *TestFixtures) CreateTestShortLink() (*models.ShortLink, error) {
	link := &models.ShortLink{
		UUID:        uuid.New(),
		Code:        fmt.Sprintf("t%07d", rand.Intn(10000000)),
		OriginalURL: "https://example.com/landing",
	}

	if err := tf.DB.DB.Create(link).Error; err != nil {
		return nil, fmt.Errorf("failed to create test short link: %w", err)
	}
	return link, nil
}

// CreateExpiredShortLink creates a short link whose expiry is already in the past
func (tf *TestFixtures) CreateExpiredShortLink() (*models.ShortLink, error) {
	link := &models.ShortLink{
		UUID:        uuid.New(),
		Code:        fmt.Sprintf("e%07d", rand.Intn(10000000)),
		OriginalURL: "https://example.com/expired",
		ExpiresAt:   utils.ToPtr(utils.UTCNow().Add(-1 * time.Hour)),
	}

	if err := tf.DB.DB.Create(link).Error; err != nil {
		return nil, fmt.Errorf("failed to create expired short link: %w", err)
	}
	return link, nil
}

// CreateProtectedShortLink creates a short link guarded by the given password
func (tf *TestFixtures) CreateProtectedShortLink(password string) (*models.ShortLink, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	link := &models.ShortLink{
		UUID:         uuid.New(),
		Code:         fmt.Sprintf("p%07d", rand.Intn(10000000)),
		OriginalURL:  "https://example.com/secret",
		PasswordHash: utils.ToPtr(string(hashed)),
	}

	if err := tf.DB.DB.Create(link).Error; err != nil {
		return nil, fmt.Errorf("failed to create protected short link: %w", err)
	}
	return link, nil
}

// CreateTestClickEvent creates one click event for a short link
func (tf *TestFixtures) CreateTestClickEvent(shortLinkID uint, clickedAt time.Time) (*models.ClickEvent, error) {
	event := &models.ClickEvent{
		ShortLinkID: shortLinkID,
		IP:          "203.0.113.7",
		UserAgent:   "Mozilla/5.0 (Test)",
		Browser:     "Chrome",
		OS:          "Linux",
		Device:      "Desktop",
		Country:     "United States",
		City:        "New York",
		ClickedAt:   clickedAt,
	}

	if err := tf.DB.DB.Create(event).Error; err != nil {
		return nil, fmt.Errorf("failed to create test click event: %w", err)
	}
	return event, nil
}

// CreateTestClickEvents creates count click events spaced one minute apart,
// newest last
func (tf *TestFixtures) CreateTestClickEvents(shortLinkID uint, count int) ([]*models.ClickEvent, error) {
	base := utils.UTCNow().Add(-time.Duration(count) * time.Minute)

	var events []*models.ClickEvent
	for i := 0; i < count; i++ {
		event, err := tf.CreateTestClickEvent(shortLinkID, base.Add(time.Duration(i)*time.Minute))
		if err != nil {
			return nil, fmt.Errorf("failed to create click event %d: %w", i, err)
		}
		events = append(events, event)
	}
	return events, nil
}

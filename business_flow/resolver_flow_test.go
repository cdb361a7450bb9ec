package businessflow

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/snipper-app/snipper/app/services"
	"github.com/snipper-app/snipper/config"
	"github.com/snipper-app/snipper/models"
	"github.com/snipper-app/snipper/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestResolverFlow(linkRepo *fakeShortLinkRepo, clickRepo *fakeClickEventRepo) ResolverFlow {
	return NewResolverFlow(
		linkRepo,
		clickRepo,
		&fakeGeoService{location: services.Location{Country: "United States", City: "New York"}},
		&fakeUserAgentParser{info: services.DeviceInfo{Browser: "Chrome", OS: "Linux", Device: "Desktop"}},
		services.NewNoopLinkCache(),
		config.LinksConfig{ReservedCodes: map[string]string{"demo": "https://snipper.link/welcome"}},
		syncDetach,
	)
}

func testShortLink(code, destination string) *models.ShortLink {
	return &models.ShortLink{
		ID:          1,
		UUID:        uuid.New(),
		Code:        code,
		OriginalURL: destination,
	}
}

func TestResolve(t *testing.T) {
	ctx := t.Context()

	t.Run("UnknownCode", func(t *testing.T) {
		flow := newTestResolverFlow(newFakeShortLinkRepo(), &fakeClickEventRepo{})

		outcome, err := flow.Resolve(ctx, "missing", nil)
		require.NoError(t, err)
		assert.Equal(t, DecisionNotFound, outcome.Decision)
		assert.Empty(t, outcome.DestinationURL)
	})

	t.Run("MalformedCode", func(t *testing.T) {
		clickRepo := &fakeClickEventRepo{}
		flow := newTestResolverFlow(newFakeShortLinkRepo(), clickRepo)

		for _, code := range []string{"", "ab", "has space", "way-too-long-for-a-short-code", "bad/char"} {
			outcome, err := flow.Resolve(ctx, code, nil)
			require.NoError(t, err)
			assert.Equal(t, DecisionNotFound, outcome.Decision, "code %q", code)
		}
		assert.Empty(t, clickRepo.saved)
	})

	t.Run("BoundaryLengthCodes", func(t *testing.T) {
		shortest := testShortLink("abc", "https://example.com/s")
		longest := testShortLink("abcdefghij0123456789", "https://example.com/l")
		flow := newTestResolverFlow(newFakeShortLinkRepo(shortest, longest), &fakeClickEventRepo{})

		for _, code := range []string{shortest.Code, longest.Code} {
			outcome, err := flow.Resolve(ctx, code, nil)
			require.NoError(t, err)
			assert.Equal(t, DecisionRedirect, outcome.Decision, "code %q", code)
		}
	})

	t.Run("Redirect", func(t *testing.T) {
		link := testShortLink("golinks", "https://example.com/landing")
		clickRepo := &fakeClickEventRepo{}
		flow := newTestResolverFlow(newFakeShortLinkRepo(link), clickRepo)

		meta := NewClientMetadata("203.0.113.7", "Mozilla/5.0")
		outcome, err := flow.Resolve(ctx, "golinks", meta)
		require.NoError(t, err)
		assert.Equal(t, DecisionRedirect, outcome.Decision)
		assert.Equal(t, "https://example.com/landing", outcome.DestinationURL)

		require.Len(t, clickRepo.saved, 1)
		event := clickRepo.saved[0]
		assert.Equal(t, link.ID, event.ShortLinkID)
		assert.Equal(t, "203.0.113.7", event.IP)
		assert.Equal(t, "Chrome", event.Browser)
		assert.Equal(t, "Linux", event.OS)
		assert.Equal(t, "Desktop", event.Device)
		assert.Equal(t, "United States", event.Country)
		assert.Equal(t, "New York", event.City)
		assert.Nil(t, event.Referrer)
		assert.WithinDuration(t, utils.UTCNow(), event.ClickedAt, 5*time.Second)
	})

	t.Run("RedirectCapturesUTMAndReferrer", func(t *testing.T) {
		link := testShortLink("promo123", "https://example.com/sale?utm_source=newsletter&utm_medium=email&utm_campaign=spring")
		clickRepo := &fakeClickEventRepo{}
		flow := newTestResolverFlow(newFakeShortLinkRepo(link), clickRepo)

		meta := NewClientMetadata("203.0.113.7", "Mozilla/5.0")
		meta.Referrer = "https://a.com/page"
		_, err := flow.Resolve(ctx, "promo123", meta)
		require.NoError(t, err)

		require.Len(t, clickRepo.saved, 1)
		event := clickRepo.saved[0]
		require.NotNil(t, event.Referrer)
		assert.Equal(t, "https://a.com/page", *event.Referrer)
		require.NotNil(t, event.UTMSource)
		assert.Equal(t, "newsletter", *event.UTMSource)
		require.NotNil(t, event.UTMMedium)
		assert.Equal(t, "email", *event.UTMMedium)
		require.NotNil(t, event.UTMCampaign)
		assert.Equal(t, "spring", *event.UTMCampaign)
		assert.Nil(t, event.UTMTerm)
		assert.Nil(t, event.UTMContent)
	})

	t.Run("ExpiredBoundary", func(t *testing.T) {
		now := utils.UTCNow()

		expired := testShortLink("gone1234", "https://example.com")
		expired.ExpiresAt = utils.ToPtr(now.Add(-time.Millisecond))
		clickRepo := &fakeClickEventRepo{}
		flow := newTestResolverFlow(newFakeShortLinkRepo(expired), clickRepo)

		outcome, err := flow.Resolve(ctx, "gone1234", nil)
		require.NoError(t, err)
		assert.Equal(t, DecisionExpired, outcome.Decision)
		assert.Empty(t, outcome.DestinationURL)
		assert.Empty(t, clickRepo.saved, "expired visits must not record clicks")

		alive := testShortLink("live1234", "https://example.com")
		alive.ExpiresAt = utils.ToPtr(now.Add(time.Hour))
		flow = newTestResolverFlow(newFakeShortLinkRepo(alive), &fakeClickEventRepo{})

		outcome, err = flow.Resolve(ctx, "live1234", nil)
		require.NoError(t, err)
		assert.Equal(t, DecisionRedirect, outcome.Decision)
	})

	t.Run("ExpiredBeforePassword", func(t *testing.T) {
		hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
		require.NoError(t, err)

		link := testShortLink("lockd123", "https://example.com")
		link.PasswordHash = utils.ToPtr(string(hash))
		link.ExpiresAt = utils.ToPtr(utils.UTCNow().Add(-time.Hour))
		flow := newTestResolverFlow(newFakeShortLinkRepo(link), &fakeClickEventRepo{})

		outcome, err := flow.Resolve(ctx, "lockd123", nil)
		require.NoError(t, err)
		assert.Equal(t, DecisionExpired, outcome.Decision)
	})

	t.Run("PasswordRequired", func(t *testing.T) {
		hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
		require.NoError(t, err)

		link := testShortLink("lockd123", "https://example.com/secret")
		link.PasswordHash = utils.ToPtr(string(hash))
		clickRepo := &fakeClickEventRepo{}
		flow := newTestResolverFlow(newFakeShortLinkRepo(link), clickRepo)

		outcome, err := flow.Resolve(ctx, "lockd123", nil)
		require.NoError(t, err)
		assert.Equal(t, DecisionPasswordRequired, outcome.Decision)
		assert.Empty(t, outcome.DestinationURL, "destination must not leak before verification")
		assert.Empty(t, clickRepo.saved, "challenge must not record a click")
	})

	t.Run("ReservedCode", func(t *testing.T) {
		clickRepo := &fakeClickEventRepo{}
		flow := newTestResolverFlow(newFakeShortLinkRepo(), clickRepo)

		outcome, err := flow.Resolve(ctx, "demo", nil)
		require.NoError(t, err)
		assert.Equal(t, DecisionRedirect, outcome.Decision)
		assert.Equal(t, "https://snipper.link/welcome", outcome.DestinationURL)
		assert.Empty(t, clickRepo.saved, "reserved codes record no clicks")
	})

	t.Run("EdgeHeadersWinOverLookup", func(t *testing.T) {
		link := testShortLink("geolink1", "https://example.com")
		clickRepo := &fakeClickEventRepo{}
		flow := newTestResolverFlow(newFakeShortLinkRepo(link), clickRepo)

		meta := NewClientMetadata("203.0.113.7", "Mozilla/5.0")
		meta.EdgeCountry = "Germany"
		meta.EdgeCity = "Berlin"
		_, err := flow.Resolve(ctx, "geolink1", meta)
		require.NoError(t, err)

		require.Len(t, clickRepo.saved, 1)
		assert.Equal(t, "Germany", clickRepo.saved[0].Country)
		assert.Equal(t, "Berlin", clickRepo.saved[0].City)
	})
}

func TestResolveCaching(t *testing.T) {
	ctx := t.Context()

	t.Run("UnprotectedLinkIsCached", func(t *testing.T) {
		link := testShortLink("cacheme1", "https://example.com")
		cache := newRecordingLinkCache()
		flow := NewResolverFlow(
			newFakeShortLinkRepo(link),
			&fakeClickEventRepo{},
			&fakeGeoService{},
			&fakeUserAgentParser{},
			cache,
			config.LinksConfig{},
			syncDetach,
		)

		_, err := flow.Resolve(ctx, "cacheme1", nil)
		require.NoError(t, err)
		assert.Equal(t, 1, cache.sets)

		// Second resolve is served from cache, no extra Set
		_, err = flow.Resolve(ctx, "cacheme1", nil)
		require.NoError(t, err)
		assert.Equal(t, 1, cache.sets)
	})

	t.Run("ProtectedLinkIsNeverCached", func(t *testing.T) {
		hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
		require.NoError(t, err)

		link := testShortLink("lockd123", "https://example.com")
		link.PasswordHash = utils.ToPtr(string(hash))
		cache := newRecordingLinkCache()
		flow := NewResolverFlow(
			newFakeShortLinkRepo(link),
			&fakeClickEventRepo{},
			&fakeGeoService{},
			&fakeUserAgentParser{},
			cache,
			config.LinksConfig{},
			syncDetach,
		)

		_, err = flow.Resolve(ctx, "lockd123", nil)
		require.NoError(t, err)
		assert.Zero(t, cache.sets)
	})
}

func TestVerifyPassword(t *testing.T) {
	ctx := t.Context()

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	protected := testShortLink("lockd123", "https://example.com/secret")
	protected.PasswordHash = utils.ToPtr(string(hash))

	t.Run("Success", func(t *testing.T) {
		clickRepo := &fakeClickEventRepo{}
		flow := newTestResolverFlow(newFakeShortLinkRepo(protected), clickRepo)

		outcome, err := flow.VerifyPassword(ctx, "lockd123", "hunter2", NewClientMetadata("203.0.113.7", "Mozilla/5.0"))
		require.NoError(t, err)
		assert.True(t, outcome.Success)
		assert.Equal(t, "https://example.com/secret", outcome.DestinationURL)
		assert.Len(t, clickRepo.saved, 1, "successful verification records the click")
	})

	t.Run("FailuresAreIndistinguishable", func(t *testing.T) {
		unprotected := testShortLink("openlink", "https://example.com")
		expired := testShortLink("gone1234", "https://example.com")
		expired.PasswordHash = utils.ToPtr(string(hash))
		expired.ExpiresAt = utils.ToPtr(utils.UTCNow().Add(-time.Hour))

		flow := newTestResolverFlow(newFakeShortLinkRepo(protected, unprotected, expired), &fakeClickEventRepo{})

		cases := map[string]struct {
			code     string
			password string
		}{
			"wrong password":   {"lockd123", "letmein"},
			"unknown code":     {"missing1", "hunter2"},
			"unprotected link": {"openlink", "hunter2"},
			"expired link":     {"gone1234", "hunter2"},
			"empty password":   {"lockd123", ""},
			"malformed code":   {"no spaces allowed", "hunter2"},
		}

		var messages []string
		for name, tc := range cases {
			outcome, err := flow.VerifyPassword(ctx, tc.code, tc.password, nil)
			require.NoError(t, err, name)
			assert.False(t, outcome.Success, name)
			assert.Empty(t, outcome.DestinationURL, name)
			messages = append(messages, outcome.Message)
		}

		// Same generic message for every failure cause
		for _, msg := range messages {
			assert.Equal(t, VerifyFailureMessage, msg)
		}
	})

	t.Run("FailureRecordsNoClick", func(t *testing.T) {
		clickRepo := &fakeClickEventRepo{}
		flow := newTestResolverFlow(newFakeShortLinkRepo(protected), clickRepo)

		_, err := flow.VerifyPassword(ctx, "lockd123", "wrong", nil)
		require.NoError(t, err)
		assert.Empty(t, clickRepo.saved)
	})
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// ShortLink represents one shortening mapping
// Code is the short unique path segment that maps to the original URL
// PasswordHash, ExpiresAt, QRCodeURL and Subdomain are optional (nullable)
// Code is immutable once assigned; expiration is a terminal condition once passed
type ShortLink struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UUID          uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uk_short_links_uuid" json:"uuid"`
	Code          string     `gorm:"size:20;not null;uniqueIndex:uk_short_links_code" json:"code"`
	OriginalURL   string     `gorm:"type:text;not null" json:"original_url"`
	IsCustomAlias bool       `gorm:"not null;default:false" json:"is_custom_alias"`
	ExpiresAt     *time.Time `gorm:"index:idx_short_links_expires_at" json:"expires_at,omitempty"`
	PasswordHash  *string    `gorm:"type:text" json:"-"`
	UserID        *uint      `gorm:"index:idx_short_links_user_id" json:"user_id,omitempty"`
	QRCodeURL     *string    `gorm:"type:text" json:"qr_code_url,omitempty"`
	Subdomain     *string    `gorm:"size:63;index:idx_short_links_subdomain" json:"subdomain,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_short_links_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

// TableName returns the table name for ShortLink
func (ShortLink) TableName() string { return "short_links" }

// IsProtected reports whether the link requires password verification before any redirect
func (s *ShortLink) IsProtected() bool {
	return s.PasswordHash != nil && *s.PasswordHash != ""
}

// ShortLinkFilter provides filter fields for repository queries
type ShortLinkFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	Code          *string
	UserID        *uint
	Subdomain     *string
	IsCustomAlias *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

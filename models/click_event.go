package models

import "time"

// ClickEvent represents a single resolved click on a short link
// Rows are append-only; derived fields (browser/os/device/geo) are best-effort
// and hold the "Unknown" sentinel instead of failing the write
// UTM fields are captured from the destination URL query string at record time
type ClickEvent struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	ShortLinkID uint    `gorm:"index:idx_click_events_short_link_id;not null" json:"short_link_id"`
	IP          string  `gorm:"size:64" json:"ip"`
	UserAgent   string  `gorm:"type:text" json:"user_agent"`
	Browser     string  `gorm:"size:64" json:"browser"`
	OS          string  `gorm:"size:64" json:"os"`
	Device      string  `gorm:"size:32" json:"device"`
	Referrer    *string `gorm:"type:text" json:"referrer,omitempty"`
	Country     string  `gorm:"size:64" json:"country"`
	City        string  `gorm:"size:64" json:"city"`

	UTMSource   *string `gorm:"size:255;column:utm_source" json:"utm_source,omitempty"`
	UTMMedium   *string `gorm:"size:255;column:utm_medium" json:"utm_medium,omitempty"`
	UTMCampaign *string `gorm:"size:255;column:utm_campaign" json:"utm_campaign,omitempty"`
	UTMTerm     *string `gorm:"size:255;column:utm_term" json:"utm_term,omitempty"`
	UTMContent  *string `gorm:"size:255;column:utm_content" json:"utm_content,omitempty"`

	// ClickedAt is the event time, not the insertion time
	ClickedAt time.Time `gorm:"not null;index:idx_click_events_clicked_at" json:"clicked_at"`
	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

// TableName returns the table name for ClickEvent
func (ClickEvent) TableName() string { return "click_events" }

// ClickEventFilter provides filter fields for repository queries
// From/To bound ClickedAt inclusively on both ends
type ClickEventFilter struct {
	ShortLinkID *uint
	From        *time.Time
	To          *time.Time
	Country     *string
	Device      *string
}

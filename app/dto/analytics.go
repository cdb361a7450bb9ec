package dto

import "time"

// AnalyticsSnapshotDTO is one self-contained aggregation of a short link's
// click history across every reporting dimension.
type AnalyticsSnapshotDTO struct {
	TotalClicks int `json:"total_clicks"`

	ClicksByDate        map[string]int            `json:"clicks_by_date"`
	ClicksByCountry     map[string]int            `json:"clicks_by_country"`
	ClicksByCity        map[string]int            `json:"clicks_by_city"`
	ClicksByCountryCity map[string]CountryStatDTO `json:"clicks_by_country_city"`
	ClicksByDevice      map[string]int            `json:"clicks_by_device"`
	ClicksByBrowser     map[string]int            `json:"clicks_by_browser"`
	ClicksByOS          map[string]int            `json:"clicks_by_os"`
	ClicksByReferrer    map[string]int            `json:"clicks_by_referrer"`

	ClicksBySource   map[string]int `json:"clicks_by_utm_source"`
	ClicksByMedium   map[string]int `json:"clicks_by_utm_medium"`
	ClicksByCampaign map[string]int `json:"clicks_by_utm_campaign"`
	ClicksByTerm     map[string]int `json:"clicks_by_utm_term"`
	ClicksByContent  map[string]int `json:"clicks_by_utm_content"`

	RecentClicks []ClickEventDTO `json:"recent_clicks"`
}

// CountryStatDTO nests per-city counts under a country total
type CountryStatDTO struct {
	TotalClicks int            `json:"total_clicks"`
	Cities      map[string]int `json:"cities"`
}

// ClickEventDTO is one recorded click as exposed through the API
type ClickEventDTO struct {
	ID          uint      `json:"id"`
	ClickedAt   time.Time `json:"clicked_at"`
	IP          string    `json:"ip"`
	Browser     string    `json:"browser"`
	OS          string    `json:"os"`
	Device      string    `json:"device"`
	Country     string    `json:"country"`
	City        string    `json:"city"`
	Referrer    *string   `json:"referrer,omitempty"`
	UTMSource   *string   `json:"utm_source,omitempty"`
	UTMMedium   *string   `json:"utm_medium,omitempty"`
	UTMCampaign *string   `json:"utm_campaign,omitempty"`
}

// LinkStatsDTO is the lightweight per-link counter endpoint payload
type LinkStatsDTO struct {
	ShortCode   string     `json:"short_code"`
	ShortURL    string     `json:"short_url"`
	TotalClicks int64      `json:"total_clicks"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

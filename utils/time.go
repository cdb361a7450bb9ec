// Package utils provides utility functions for the application.
package utils

import (
	"time"
)

// UTCNow returns the current time in UTC
func UTCNow() time.Time {
	return time.Now().UTC()
}

// UTCNowPtr returns a pointer to the current time in UTC
func UTCNowPtr() *time.Time {
	now := UTCNow()
	return &now
}

// UTCNowAdd returns the current UTC time plus the given duration
func UTCNowAdd(d time.Duration) time.Time {
	return UTCNow().Add(d)
}

// UTCNowAddPtr returns a pointer to the current UTC time plus the given duration
func UTCNowAddPtr(d time.Duration) *time.Time {
	now := UTCNowAdd(d)
	return &now
}

// IsExpiredAt reports whether the expiration timestamp has been reached at the
// given instant. The boundary is inclusive: a link whose expiration equals now
// is already expired.
func IsExpiredAt(expiresAt, now time.Time) bool {
	return !expiresAt.After(now)
}

// EndOfDay returns the last instant of the calendar day containing t, in t's
// own location.
func EndOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// DateKey formats the event timestamp as an ISO 8601 calendar date in the
// timestamp's own stored timezone. No timezone conversion is performed.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// TimeToUTC converts a time to UTC if it's not already
func TimeToUTC(t time.Time) time.Time {
	return t.UTC()
}

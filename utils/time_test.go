package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsExpiredAt(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	assert.True(t, IsExpiredAt(now.Add(-time.Millisecond), now))
	assert.True(t, IsExpiredAt(now, now), "expiry equal to now counts as expired")
	assert.False(t, IsExpiredAt(now.Add(time.Millisecond), now))
}

func TestEndOfDay(t *testing.T) {
	in := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	out := EndOfDay(in)

	assert.Equal(t, 23, out.Hour())
	assert.Equal(t, 59, out.Minute())
	assert.Equal(t, 59, out.Second())
	assert.Equal(t, in.Day(), out.Day())
	assert.Equal(t, time.UTC, out.Location())

	// The last instant of the day stays inside it
	assert.True(t, out.Before(in.AddDate(0, 0, 1)))
}

func TestDateKey(t *testing.T) {
	assert.Equal(t, "2026-08-20", DateKey(time.Date(2026, 8, 20, 23, 59, 0, 0, time.UTC)))

	// No timezone conversion: the stored zone's calendar date is used
	tehran := time.FixedZone("IRST", 12600)
	early := time.Date(2026, 8, 21, 1, 30, 0, 0, tehran)
	assert.Equal(t, "2026-08-21", DateKey(early))
	assert.Equal(t, "2026-08-20", DateKey(early.UTC()))
}

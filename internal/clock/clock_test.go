package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStubClock(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	c := NewStubClock(time.Date(2026, 3, 14, 11, 30, 0, 0, loc))

	assert.Equal(t, time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC), c.NowUtc())
	assert.Equal(t, time.UTC, c.NowUtc().Location())

	got := c.Advance(36 * time.Hour)
	assert.Equal(t, time.Date(2026, 3, 15, 21, 30, 0, 0, time.UTC), got)
	assert.Equal(t, got, c.NowUtc())
}

func TestRealClock_IsUTC(t *testing.T) {
	now := NewRealClock().NowUtc()
	assert.Equal(t, time.UTC, now.Location())
	assert.WithinDuration(t, time.Now(), now, time.Second)
}

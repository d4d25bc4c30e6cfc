// internal/services/scheduler_service_test.go
package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInReminderWindow(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{"expires in one hour", now.Add(time.Hour), true},
		{"expires in exactly 24h", now.Add(24 * time.Hour), true},
		{"expires in 25h", now.Add(25 * time.Hour), false},
		{"already expired", now.Add(-time.Minute), false},
		{"expires right now", now, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InReminderWindow(tt.expiresAt, now))
		})
	}
}

func TestRecentlyExpired(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{"expired one hour ago", now.Add(-time.Hour), true},
		{"expired exactly 24h ago", now.Add(-24 * time.Hour), true},
		{"expired 25h ago is abandoned", now.Add(-25 * time.Hour), false},
		{"still alive", now.Add(time.Hour), false},
		{"expires right now", now, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RecentlyExpired(tt.expiresAt, now))
		})
	}
}

func TestHoursRemaining(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, HoursRemaining(now.Add(time.Hour), now))
	assert.Equal(t, 1, HoursRemaining(now.Add(30*time.Minute), now), "partial hours round up")
	assert.Equal(t, 24, HoursRemaining(now.Add(24*time.Hour), now))
	assert.Equal(t, 3, HoursRemaining(now.Add(2*time.Hour+5*time.Minute), now))
}

func TestSettleAll(t *testing.T) {
	s := &SchedulerService{}

	t.Run("empty batch", func(t *testing.T) {
		result := s.settleAll(0, func(i int) error { return nil })
		assert.Equal(t, 0, result.Total)
		assert.Equal(t, 0, result.Successful)
		assert.Equal(t, 0, result.Failed)
	})

	t.Run("mixed outcomes are counted independently", func(t *testing.T) {
		result := s.settleAll(5, func(i int) error {
			if i%2 == 0 {
				return errors.New("boom")
			}
			return nil
		})
		assert.Equal(t, 5, result.Total)
		assert.Equal(t, 2, result.Successful)
		assert.Equal(t, 3, result.Failed)
	})

	t.Run("one failure never aborts siblings", func(t *testing.T) {
		ran := make([]bool, 50)
		result := s.settleAll(50, func(i int) error {
			ran[i] = true
			if i == 0 {
				return errors.New("first one fails")
			}
			return nil
		})
		assert.Equal(t, 50, result.Total)
		assert.Equal(t, 1, result.Failed)
		for i, r := range ran {
			assert.True(t, r, "item %d should have run", i)
		}
	})
}

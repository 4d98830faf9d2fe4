package deadline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassifyTiers(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		deadline time.Time
		wantDays int
		wantTier Tier
	}{
		{"one day past", now.Add(-24 * time.Hour), -1, TierOverdue},
		{"far past", now.Add(-45 * 24 * time.Hour), -45, TierOverdue},
		{"due now", now, 0, TierCritical},
		{"fourteen days out", now.Add(14 * 24 * time.Hour), 14, TierCritical},
		{"fifteen days out", now.Add(15 * 24 * time.Hour), 15, TierSoon},
		{"twenty-nine days out", now.Add(29 * 24 * time.Hour), 29, TierSoon},
		{"thirty days out", now.Add(30 * 24 * time.Hour), 30, TierSafe},
		{"far future", now.Add(365 * 24 * time.Hour), 365, TierSafe},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.deadline, now)
			assert.Equal(t, tt.wantDays, got.DaysUntil)
			assert.Equal(t, tt.wantTier, got.Tier)
		})
	}
}

func TestClassifyTruncatesPartialDays(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	// 36 hours out is still "1 day" until the deadline
	got := Classify(now.Add(36*time.Hour), now)
	assert.Equal(t, 1, got.DaysUntil)
	assert.Equal(t, TierCritical, got.Tier)

	// 12 hours past truncates to 0, not -1: still critical, not overdue
	got = Classify(now.Add(-12*time.Hour), now)
	assert.Equal(t, 0, got.DaysUntil)
	assert.Equal(t, TierCritical, got.Tier)
}

func TestClassifyLabels(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "overdue by 3 days", Classify(now.Add(-3*24*time.Hour), now).Label)
	assert.Equal(t, "due today", Classify(now, now).Label)
	assert.Equal(t, "due tomorrow", Classify(now.Add(24*time.Hour), now).Label)
	assert.Equal(t, "20 days until Jan 21, 2026", Classify(now.Add(20*24*time.Hour), now).Label)
}

func TestClassifyIsDeterministic(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)
	deadline := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	first := Classify(deadline, now)
	second := Classify(deadline, now)
	assert.Equal(t, first, second)
}

package syncer

import (
	"testing"
	"time"

	"github.com/creatordesk/channelsync/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func testPolicy(t *testing.T) (Policy, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))
	return NewPolicy(UniformThresholds(24*time.Hour), clock), clock
}

func TestPolicy_IsFresh(t *testing.T) {
	policy, clock := testPolicy(t)

	tests := []struct {
		name        string
		lastUpdated time.Time
		want        bool
	}{
		{"one hour old", clock.Now().Add(-1 * time.Hour), true},
		{"just inside the threshold", clock.Now().Add(-24 * time.Hour), true},
		{"25 hours old", clock.Now().Add(-25 * time.Hour), false},
		{"zero time", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.IsFresh(domain.DatasetProfile, tt.lastUpdated))
		})
	}
}

func TestPolicy_PerDatasetThresholds(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))
	policy := NewPolicy(Thresholds{
		Profile:      1 * time.Hour,
		Metrics:      24 * time.Hour,
		Demographics: 24 * time.Hour,
		Performance:  24 * time.Hour,
	}, clock)

	twoHoursAgo := clock.Now().Add(-2 * time.Hour)
	assert.False(t, policy.IsFresh(domain.DatasetProfile, twoHoursAgo))
	assert.True(t, policy.IsFresh(domain.DatasetMetrics, twoHoursAgo))
}

func TestPolicy_DemographicsFresh(t *testing.T) {
	policy, clock := testPolicy(t)
	recent := clock.Now().Add(-1 * time.Hour)
	old := clock.Now().Add(-25 * time.Hour)

	row := func(dim, value string, updated time.Time) domain.DemographicRow {
		return domain.DemographicRow{Dimension: dim, Value: value, ViewerPercentage: 50, LastUpdated: updated}
	}

	t.Run("nil snapshot is stale", func(t *testing.T) {
		assert.False(t, policy.DemographicsFresh(nil))
	})

	t.Run("recent but empty gender list is stale", func(t *testing.T) {
		snap := &domain.DemographicsSnapshot{
			Countries: []domain.DemographicRow{row(domain.DimensionCountry, "US", recent)},
		}
		assert.False(t, policy.DemographicsFresh(snap))
	})

	t.Run("recent with gender rows is fresh", func(t *testing.T) {
		snap := &domain.DemographicsSnapshot{
			Gender: []domain.DemographicRow{row(domain.DimensionGender, "female", recent)},
		}
		assert.True(t, policy.DemographicsFresh(snap))
	})

	t.Run("old snapshot is stale even when complete", func(t *testing.T) {
		snap := &domain.DemographicsSnapshot{
			Gender: []domain.DemographicRow{row(domain.DimensionGender, "female", old)},
		}
		assert.False(t, policy.DemographicsFresh(snap))
	})
}

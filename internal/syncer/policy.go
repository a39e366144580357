package syncer

import (
	"time"

	"github.com/creatordesk/channelsync/internal/domain"
	"github.com/jonboulle/clockwork"
)

// Thresholds holds the per-dataset staleness thresholds. They are the single
// place the freshness windows are configured; fetch code never carries its
// own constants.
type Thresholds struct {
	Profile      time.Duration
	Metrics      time.Duration
	Demographics time.Duration
	Performance  time.Duration
}

// UniformThresholds applies one window to every dataset.
func UniformThresholds(window time.Duration) Thresholds {
	return Thresholds{
		Profile:      window,
		Metrics:      window,
		Demographics: window,
		Performance:  window,
	}
}

// Policy decides whether a stored snapshot is fresh enough to serve without
// contacting the provider.
type Policy struct {
	thresholds Thresholds
	clock      clockwork.Clock
}

func NewPolicy(thresholds Thresholds, clock clockwork.Clock) Policy {
	return Policy{thresholds: thresholds, clock: clock}
}

// IsFresh reports whether a snapshot written at lastUpdated is still within
// the dataset's threshold. The zero time (no snapshot) is never fresh.
func (p Policy) IsFresh(kind domain.Dataset, lastUpdated time.Time) bool {
	if lastUpdated.IsZero() {
		return false
	}
	return p.clock.Now().Sub(lastUpdated) <= p.threshold(kind)
}

// DemographicsFresh applies the completeness gate on top of the age check: a
// snapshot with an empty gender list was left behind by a partial sync and is
// stale no matter how recent it is.
func (p Policy) DemographicsFresh(snap *domain.DemographicsSnapshot) bool {
	if snap == nil || len(snap.Gender) == 0 {
		return false
	}
	return p.IsFresh(domain.DatasetDemographics, snap.LastUpdated())
}

func (p Policy) threshold(kind domain.Dataset) time.Duration {
	switch kind {
	case domain.DatasetProfile:
		return p.thresholds.Profile
	case domain.DatasetMetrics:
		return p.thresholds.Metrics
	case domain.DatasetDemographics:
		return p.thresholds.Demographics
	case domain.DatasetPerformance:
		return p.thresholds.Performance
	default:
		return 0
	}
}

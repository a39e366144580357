package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Dataset identifies one of the four independently synchronized datasets.
type Dataset string

const (
	DatasetProfile      Dataset = "profile"
	DatasetMetrics      Dataset = "metrics"
	DatasetDemographics Dataset = "demographics"
	DatasetPerformance  Dataset = "performance"
)

// ProfileSnapshot is the locally persisted channel profile. One row per
// creator, fully overwritten on refresh.
type ProfileSnapshot struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// MetricsSnapshot holds channel-wide aggregate metrics. One row per creator,
// fully overwritten on refresh.
type MetricsSnapshot struct {
	TotalSubscribers      int64     `json:"totalSubscribers"`
	TotalViews            int64     `json:"totalViews"`
	TotalVideos           int64     `json:"totalVideos"`
	AvgLikesPerVideo      float64   `json:"avgLikesPerVideo"`
	AvgEngagementPerVideo float64   `json:"avgEngagementPerVideo"`
	LastUpdated           time.Time `json:"lastUpdated"`
}

// Demographic dimensions reported by the provider.
const (
	DimensionGender   = "gender"
	DimensionAgeGroup = "ageGroup"
	DimensionCountry  = "country"
)

// DemographicRow is one audience slice, unique per (creator, dimension, value).
type DemographicRow struct {
	Dimension        string    `json:"dimension"`
	Value            string    `json:"value"`
	ViewerPercentage float64   `json:"viewerPercentage"`
	LastUpdated      time.Time `json:"lastUpdated"`
}

// DemographicsSnapshot groups stored demographic rows by dimension. Rows are
// a partial collection: a missing value is "unknown", not an error.
type DemographicsSnapshot struct {
	Gender    []DemographicRow `json:"gender"`
	AgeGroups []DemographicRow `json:"ageGroups"`
	Countries []DemographicRow `json:"countries"`
}

// Rows flattens the snapshot back into row form.
func (s *DemographicsSnapshot) Rows() []DemographicRow {
	rows := make([]DemographicRow, 0, len(s.Gender)+len(s.AgeGroups)+len(s.Countries))
	rows = append(rows, s.Gender...)
	rows = append(rows, s.AgeGroups...)
	rows = append(rows, s.Countries...)
	return rows
}

// Empty reports whether no rows are stored at all.
func (s *DemographicsSnapshot) Empty() bool {
	return len(s.Gender) == 0 && len(s.AgeGroups) == 0 && len(s.Countries) == 0
}

// LastUpdated returns the newest row timestamp, or the zero time when empty.
func (s *DemographicsSnapshot) LastUpdated() time.Time {
	var newest time.Time
	for _, row := range s.Rows() {
		if row.LastUpdated.After(newest) {
			newest = row.LastUpdated
		}
	}
	return newest
}

// GroupDemographics buckets flat rows into a snapshot by dimension.
func GroupDemographics(rows []DemographicRow) *DemographicsSnapshot {
	snap := &DemographicsSnapshot{}
	for _, row := range rows {
		switch row.Dimension {
		case DimensionGender:
			snap.Gender = append(snap.Gender, row)
		case DimensionAgeGroup:
			snap.AgeGroups = append(snap.AgeGroups, row)
		case DimensionCountry:
			snap.Countries = append(snap.Countries, row)
		}
	}
	return snap
}

// PerformancePoint is one day of channel performance, unique per (creator, date).
type PerformancePoint struct {
	Date        time.Time `json:"date"`
	Views       int64     `json:"views"`
	Likes       int64     `json:"likes"`
	Comments    int64     `json:"comments"`
	Shares      int64     `json:"shares"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// PerformanceSeries is an ascending-by-date sequence of daily points.
type PerformanceSeries []PerformancePoint

// LastUpdated returns the newest point timestamp, or the zero time when empty.
func (s PerformanceSeries) LastUpdated() time.Time {
	var newest time.Time
	for _, p := range s {
		if p.LastUpdated.After(newest) {
			newest = p.LastUpdated
		}
	}
	return newest
}

// ProfileStore persists profile snapshots keyed by creator.
type ProfileStore interface {
	// Get returns ErrSnapshotNotFound when no snapshot is stored.
	Get(ctx context.Context, creatorID uuid.UUID) (*ProfileSnapshot, error)
	Upsert(ctx context.Context, creatorID uuid.UUID, snap ProfileSnapshot) error
}

// MetricsStore persists aggregate metrics snapshots keyed by creator.
type MetricsStore interface {
	Get(ctx context.Context, creatorID uuid.UUID) (*MetricsSnapshot, error)
	Upsert(ctx context.Context, creatorID uuid.UUID, snap MetricsSnapshot) error
}

// DemographicsStore persists demographic rows keyed by (creator, dimension, value).
type DemographicsStore interface {
	// Get returns an empty (never nil) snapshot when nothing is stored.
	Get(ctx context.Context, creatorID uuid.UUID) (*DemographicsSnapshot, error)
	// Upsert writes rows one by one within a single transaction per sync.
	Upsert(ctx context.Context, creatorID uuid.UUID, rows []DemographicRow) error
}

// PerformanceStore persists daily performance points keyed by (creator, date).
type PerformanceStore interface {
	// GetRange returns points with from <= date <= to in ascending date order.
	// An empty range is a valid result, not an error.
	GetRange(ctx context.Context, creatorID uuid.UUID, from, to time.Time) (PerformanceSeries, error)
	Upsert(ctx context.Context, creatorID uuid.UUID, points []PerformancePoint) error
}

package youtube

import (
	"time"

	"github.com/creatordesk/channelsync/internal/domain"
)

// videoAverages computes per-video like and engagement averages. A channel
// with no returned videos yields 0 for both, never a division by zero.
func videoAverages(videoCount int, totalLikes, totalComments int64) (avgLikes, avgEngagement float64) {
	if videoCount == 0 {
		return 0, 0
	}
	n := float64(videoCount)
	avgLikes = float64(totalLikes) / n
	avgEngagement = float64(totalLikes+totalComments) / n
	return avgLikes, avgEngagement
}

type countryViews struct {
	Code  string
	Views float64
}

// normalizeCountryViews converts raw per-country view counts into viewer
// percentages of the total. A zero total yields 0% for every row rather than
// dropping rows.
func normalizeCountryViews(views []countryViews, now time.Time) []domain.DemographicRow {
	var total float64
	for _, v := range views {
		total += v.Views
	}

	rows := make([]domain.DemographicRow, 0, len(views))
	for _, v := range views {
		var pct float64
		if total > 0 {
			pct = v.Views / total * 100
		}
		rows = append(rows, domain.DemographicRow{
			Dimension:        domain.DimensionCountry,
			Value:            v.Code,
			ViewerPercentage: pct,
			LastUpdated:      now,
		})
	}
	return rows
}

// rowString extracts a string cell from an Analytics API report row.
func rowString(cell any) string {
	s, _ := cell.(string)
	return s
}

// rowFloat extracts a numeric cell from an Analytics API report row.
func rowFloat(cell any) float64 {
	switch v := cell.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	default:
		return 0
	}
}

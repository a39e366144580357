// Package youtube adapts the YouTube Data and Analytics APIs into the four
// dataset fetchers the sync engine consumes.
package youtube

import (
	"context"
	"fmt"
	"time"

	"github.com/creatordesk/channelsync/internal/domain"
	"github.com/jonboulle/clockwork"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	youtubeapi "google.golang.org/api/youtube/v3"
	youtubeanalytics "google.golang.org/api/youtubeanalytics/v2"
)

const (
	// recentVideoLimit caps the per-video statistics fan-in.
	recentVideoLimit = 50
	// dateLayout is the date format the Analytics API expects.
	dateLayout = "2006-01-02"
)

// Client implements domain.AnalyticsProvider. API services are constructed
// per call from the passed credentials via a static token source, so there is
// no shared mutable credential slot between concurrent syncs.
type Client struct {
	clock     clockwork.Clock
	extraOpts []option.ClientOption
}

// NewClient creates the provider client. Extra options (custom endpoint,
// custom HTTP client) are merged into every service construction; tests use
// them to point the client at a fake server.
func NewClient(clock clockwork.Clock, extraOpts ...option.ClientOption) *Client {
	return &Client{clock: clock, extraOpts: extraOpts}
}

func (c *Client) options(creds domain.CredentialPair) []option.ClientOption {
	ts := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: creds.AccessToken,
		TokenType:   "Bearer",
		Expiry:      creds.Expiry,
	})
	opts := []option.ClientOption{option.WithTokenSource(ts)}
	return append(opts, c.extraOpts...)
}

func (c *Client) dataService(ctx context.Context, creds domain.CredentialPair) (*youtubeapi.Service, error) {
	svc, err := youtubeapi.NewService(ctx, c.options(creds)...)
	if err != nil {
		return nil, classify("youtube.new", err)
	}
	return svc, nil
}

func (c *Client) analyticsService(ctx context.Context, creds domain.CredentialPair) (*youtubeanalytics.Service, error) {
	svc, err := youtubeanalytics.NewService(ctx, c.options(creds)...)
	if err != nil {
		return nil, classify("youtubeanalytics.new", err)
	}
	return svc, nil
}

// FetchProfile returns the channel title and description.
func (c *Client) FetchProfile(ctx context.Context, creds domain.CredentialPair) (*domain.ProfileSnapshot, error) {
	svc, err := c.dataService(ctx, creds)
	if err != nil {
		return nil, err
	}

	resp, err := svc.Channels.List([]string{"snippet"}).Mine(true).Context(ctx).Do()
	if err != nil {
		return nil, classify("channels.list", err)
	}
	if len(resp.Items) == 0 {
		return nil, domain.ErrChannelNotFound
	}

	snippet := resp.Items[0].Snippet
	return &domain.ProfileSnapshot{
		Title:       snippet.Title,
		Description: snippet.Description,
		LastUpdated: c.clock.Now(),
	}, nil
}

// FetchMetrics combines channel statistics with per-video statistics of the
// most recent videos (capped at 50) into one aggregate snapshot.
func (c *Client) FetchMetrics(ctx context.Context, creds domain.CredentialPair) (*domain.MetricsSnapshot, error) {
	svc, err := c.dataService(ctx, creds)
	if err != nil {
		return nil, err
	}

	channels, err := svc.Channels.List([]string{"id", "statistics"}).Mine(true).Context(ctx).Do()
	if err != nil {
		return nil, classify("channels.list", err)
	}
	if len(channels.Items) == 0 {
		return nil, domain.ErrChannelNotFound
	}
	channel := channels.Items[0]

	videoIDs, err := c.recentVideoIDs(ctx, svc, channel.Id)
	if err != nil {
		return nil, err
	}

	var totalLikes, totalComments int64
	var sampledVideos int
	if len(videoIDs) > 0 {
		videos, err := svc.Videos.List([]string{"statistics"}).Id(videoIDs...).Context(ctx).Do()
		if err != nil {
			return nil, classify("videos.list", err)
		}
		// Statistics may cover fewer videos than were asked for (deleted or
		// private ones drop out); the averages divide by what came back.
		sampledVideos = len(videos.Items)
		for _, v := range videos.Items {
			if v.Statistics == nil {
				continue
			}
			totalLikes += int64(v.Statistics.LikeCount)
			totalComments += int64(v.Statistics.CommentCount)
		}
	}

	avgLikes, avgEngagement := videoAverages(sampledVideos, totalLikes, totalComments)

	stats := channel.Statistics
	return &domain.MetricsSnapshot{
		TotalSubscribers:      int64(stats.SubscriberCount),
		TotalViews:            int64(stats.ViewCount),
		TotalVideos:           int64(stats.VideoCount),
		AvgLikesPerVideo:      avgLikes,
		AvgEngagementPerVideo: avgEngagement,
		LastUpdated:           c.clock.Now(),
	}, nil
}

func (c *Client) recentVideoIDs(ctx context.Context, svc *youtubeapi.Service, channelID string) ([]string, error) {
	resp, err := svc.Search.List([]string{"id"}).
		ChannelId(channelID).
		Type("video").
		Order("date").
		MaxResults(recentVideoLimit).
		Context(ctx).
		Do()
	if err != nil {
		return nil, classify("search.list", err)
	}

	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id != nil && item.Id.VideoId != "" {
			ids = append(ids, item.Id.VideoId)
		}
	}
	return ids, nil
}

// FetchDemographics runs the three audience report queries. Gender and age
// group arrive as viewer percentages; country arrives as raw view counts and
// is normalized into percentages here.
func (c *Client) FetchDemographics(ctx context.Context, creds domain.CredentialPair) ([]domain.DemographicRow, error) {
	svc, err := c.analyticsService(ctx, creds)
	if err != nil {
		return nil, err
	}

	start := domain.AnalysisWindowStart.Format(dateLayout)
	end := c.clock.Now().Format(dateLayout)
	now := c.clock.Now()

	var rows []domain.DemographicRow

	gender, err := c.percentageReport(ctx, svc, domain.DimensionGender, "gender", start, end, now)
	if err != nil {
		return nil, err
	}
	rows = append(rows, gender...)

	ages, err := c.percentageReport(ctx, svc, domain.DimensionAgeGroup, "ageGroup", start, end, now)
	if err != nil {
		return nil, err
	}
	rows = append(rows, ages...)

	countries, err := c.countryReport(ctx, svc, start, end, now)
	if err != nil {
		return nil, err
	}
	rows = append(rows, countries...)

	return rows, nil
}

func (c *Client) percentageReport(ctx context.Context, svc *youtubeanalytics.Service, dimension, apiDimension, start, end string, now time.Time) ([]domain.DemographicRow, error) {
	resp, err := svc.Reports.Query().
		Ids("channel==MINE").
		Metrics("viewerPercentage").
		Dimensions(apiDimension).
		StartDate(start).
		EndDate(end).
		Context(ctx).
		Do()
	if err != nil {
		return nil, classify("reports.query/"+apiDimension, err)
	}

	rows := make([]domain.DemographicRow, 0, len(resp.Rows))
	for _, r := range resp.Rows {
		if len(r) < 2 {
			continue
		}
		rows = append(rows, domain.DemographicRow{
			Dimension:        dimension,
			Value:            rowString(r[0]),
			ViewerPercentage: rowFloat(r[1]),
			LastUpdated:      now,
		})
	}
	return rows, nil
}

func (c *Client) countryReport(ctx context.Context, svc *youtubeanalytics.Service, start, end string, now time.Time) ([]domain.DemographicRow, error) {
	resp, err := svc.Reports.Query().
		Ids("channel==MINE").
		Metrics("views").
		Dimensions("country").
		Sort("-views").
		StartDate(start).
		EndDate(end).
		Context(ctx).
		Do()
	if err != nil {
		return nil, classify("reports.query/country", err)
	}

	views := make([]countryViews, 0, len(resp.Rows))
	for _, r := range resp.Rows {
		if len(r) < 2 {
			continue
		}
		views = append(views, countryViews{Code: rowString(r[0]), Views: rowFloat(r[1])})
	}

	return normalizeCountryViews(views, now), nil
}

// FetchPerformance returns the daily performance rows for the given window.
func (c *Client) FetchPerformance(ctx context.Context, creds domain.CredentialPair, from, to time.Time) ([]domain.PerformancePoint, error) {
	svc, err := c.analyticsService(ctx, creds)
	if err != nil {
		return nil, err
	}

	resp, err := svc.Reports.Query().
		Ids("channel==MINE").
		Metrics("views,likes,comments,shares").
		Dimensions("day").
		Sort("day").
		StartDate(from.Format(dateLayout)).
		EndDate(to.Format(dateLayout)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, classify("reports.query/day", err)
	}

	now := c.clock.Now()
	points := make([]domain.PerformancePoint, 0, len(resp.Rows))
	for _, r := range resp.Rows {
		if len(r) < 5 {
			continue
		}
		day, err := time.Parse(dateLayout, rowString(r[0]))
		if err != nil {
			return nil, &domain.ProviderError{Op: "reports.query/day", Err: fmt.Errorf("unparseable day %q: %w", rowString(r[0]), err)}
		}
		points = append(points, domain.PerformancePoint{
			Date:        day,
			Views:       int64(rowFloat(r[1])),
			Likes:       int64(rowFloat(r[2])),
			Comments:    int64(rowFloat(r[3])),
			Shares:      int64(rowFloat(r[4])),
			LastUpdated: now,
		})
	}
	return points, nil
}

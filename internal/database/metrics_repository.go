package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/creatordesk/channelsync/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MetricsRepo implements domain.MetricsStore backed by PostgreSQL.
type MetricsRepo struct {
	pool *pgxpool.Pool
}

func NewMetricsRepo(pool *pgxpool.Pool) *MetricsRepo {
	return &MetricsRepo{pool: pool}
}

func (r *MetricsRepo) Get(ctx context.Context, creatorID uuid.UUID) (*domain.MetricsSnapshot, error) {
	var snap domain.MetricsSnapshot
	err := r.pool.QueryRow(ctx, `
		SELECT total_subscribers, total_views, total_videos,
		       avg_likes_per_video, avg_engagement_per_video, last_updated
		FROM metrics_snapshots
		WHERE creator_id = $1
	`, creatorID).Scan(
		&snap.TotalSubscribers, &snap.TotalViews, &snap.TotalVideos,
		&snap.AvgLikesPerVideo, &snap.AvgEngagementPerVideo, &snap.LastUpdated,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics snapshot: %w", err)
	}
	return &snap, nil
}

func (r *MetricsRepo) Upsert(ctx context.Context, creatorID uuid.UUID, snap domain.MetricsSnapshot) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO metrics_snapshots (
			creator_id, total_subscribers, total_views, total_videos,
			avg_likes_per_video, avg_engagement_per_video, last_updated
		)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (creator_id) DO UPDATE SET
			total_subscribers = EXCLUDED.total_subscribers,
			total_views = EXCLUDED.total_views,
			total_videos = EXCLUDED.total_videos,
			avg_likes_per_video = EXCLUDED.avg_likes_per_video,
			avg_engagement_per_video = EXCLUDED.avg_engagement_per_video,
			last_updated = NOW()
	`, creatorID, snap.TotalSubscribers, snap.TotalViews, snap.TotalVideos,
		snap.AvgLikesPerVideo, snap.AvgEngagementPerVideo)
	if err != nil {
		return fmt.Errorf("failed to upsert metrics snapshot: %w", err)
	}
	return nil
}

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/creatordesk/channelsync/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PerformanceRepo implements domain.PerformanceStore backed by PostgreSQL.
type PerformanceRepo struct {
	pool *pgxpool.Pool
}

func NewPerformanceRepo(pool *pgxpool.Pool) *PerformanceRepo {
	return &PerformanceRepo{pool: pool}
}

func (r *PerformanceRepo) GetRange(ctx context.Context, creatorID uuid.UUID, from, to time.Time) (domain.PerformanceSeries, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT day, views, likes, comments, shares, last_updated
		FROM performance_series
		WHERE creator_id = $1 AND day >= $2 AND day <= $3
		ORDER BY day ASC
	`, creatorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query performance series: %w", err)
	}
	defer rows.Close()

	var series domain.PerformanceSeries
	for rows.Next() {
		var p domain.PerformancePoint
		if err := rows.Scan(&p.Date, &p.Views, &p.Likes, &p.Comments, &p.Shares, &p.LastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan performance point: %w", err)
		}
		series = append(series, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read performance series: %w", err)
	}

	return series, nil
}

// Upsert writes the daily points one by one inside a single transaction.
func (r *PerformanceRepo) Upsert(ctx context.Context, creatorID uuid.UUID, points []domain.PerformancePoint) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	for _, p := range points {
		_, err := tx.Exec(ctx, `
			INSERT INTO performance_series (creator_id, day, views, likes, comments, shares, last_updated)
			VALUES ($1, $2, $3, $4, $5, $6, NOW())
			ON CONFLICT (creator_id, day) DO UPDATE SET
				views = EXCLUDED.views,
				likes = EXCLUDED.likes,
				comments = EXCLUDED.comments,
				shares = EXCLUDED.shares,
				last_updated = NOW()
		`, creatorID, p.Date, p.Views, p.Likes, p.Comments, p.Shares)
		if err != nil {
			return fmt.Errorf("failed to upsert performance point %s: %w", p.Date.Format("2006-01-02"), err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit performance series: %w", err)
	}
	return nil
}

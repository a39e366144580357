package database

import (
	"context"
	"fmt"

	"github.com/creatordesk/channelsync/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DemographicsRepo implements domain.DemographicsStore backed by PostgreSQL.
type DemographicsRepo struct {
	pool *pgxpool.Pool
}

func NewDemographicsRepo(pool *pgxpool.Pool) *DemographicsRepo {
	return &DemographicsRepo{pool: pool}
}

func (r *DemographicsRepo) Get(ctx context.Context, creatorID uuid.UUID) (*domain.DemographicsSnapshot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT dimension, dim_value, viewer_percentage, last_updated
		FROM demographics_snapshots
		WHERE creator_id = $1
		ORDER BY dimension, viewer_percentage DESC
	`, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to query demographics: %w", err)
	}
	defer rows.Close()

	snap := &domain.DemographicsSnapshot{}
	for rows.Next() {
		var row domain.DemographicRow
		if err := rows.Scan(&row.Dimension, &row.Value, &row.ViewerPercentage, &row.LastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan demographic row: %w", err)
		}
		switch row.Dimension {
		case domain.DimensionGender:
			snap.Gender = append(snap.Gender, row)
		case domain.DimensionAgeGroup:
			snap.AgeGroups = append(snap.AgeGroups, row)
		case domain.DimensionCountry:
			snap.Countries = append(snap.Countries, row)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read demographics: %w", err)
	}

	return snap, nil
}

// Upsert writes the rows inside a single transaction: all rows commit
// together, and a failed row rolls back the whole snapshot.
func (r *DemographicsRepo) Upsert(ctx context.Context, creatorID uuid.UUID, rows []domain.DemographicRow) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	for _, row := range rows {
		_, err := tx.Exec(ctx, `
			INSERT INTO demographics_snapshots (creator_id, dimension, dim_value, viewer_percentage, last_updated)
			VALUES ($1, $2, $3, $4, NOW())
			ON CONFLICT (creator_id, dimension, dim_value) DO UPDATE SET
				viewer_percentage = EXCLUDED.viewer_percentage,
				last_updated = NOW()
		`, creatorID, row.Dimension, row.Value, row.ViewerPercentage)
		if err != nil {
			return fmt.Errorf("failed to upsert demographic row %s/%s: %w", row.Dimension, row.Value, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit demographics: %w", err)
	}
	return nil
}

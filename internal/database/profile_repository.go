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

// ProfileRepo implements domain.ProfileStore backed by PostgreSQL.
type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

func (r *ProfileRepo) Get(ctx context.Context, creatorID uuid.UUID) (*domain.ProfileSnapshot, error) {
	var snap domain.ProfileSnapshot
	err := r.pool.QueryRow(ctx, `
		SELECT title, description, last_updated
		FROM profile_snapshots
		WHERE creator_id = $1
	`, creatorID).Scan(&snap.Title, &snap.Description, &snap.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile snapshot: %w", err)
	}
	return &snap, nil
}

func (r *ProfileRepo) Upsert(ctx context.Context, creatorID uuid.UUID, snap domain.ProfileSnapshot) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO profile_snapshots (creator_id, title, description, last_updated)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (creator_id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			last_updated = NOW()
	`, creatorID, snap.Title, snap.Description)
	if err != nil {
		return fmt.Errorf("failed to upsert profile snapshot: %w", err)
	}
	return nil
}

package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/creatordesk/channelsync/internal/crypto"
	"github.com/creatordesk/channelsync/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CredentialRepo implements domain.CredentialStore backed by PostgreSQL.
// Tokens are encrypted at rest via the injected crypto service.
type CredentialRepo struct {
	pool   *pgxpool.Pool
	crypto crypto.Service
}

func NewCredentialRepo(pool *pgxpool.Pool, cryptoSvc crypto.Service) *CredentialRepo {
	return &CredentialRepo{pool: pool, crypto: cryptoSvc}
}

func (r *CredentialRepo) Get(ctx context.Context, creatorID uuid.UUID) (*domain.CredentialPair, error) {
	var pair domain.CredentialPair
	err := r.pool.QueryRow(ctx, `
		SELECT access_token, refresh_token, token_expiry
		FROM credentials
		WHERE creator_id = $1
	`, creatorID).Scan(&pair.AccessToken, &pair.RefreshToken, &pair.Expiry)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCredentialsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credentials: %w", err)
	}

	pair.AccessToken, err = r.crypto.Decrypt(pair.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt access token: %w", err)
	}
	pair.RefreshToken, err = r.crypto.Decrypt(pair.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt refresh token: %w", err)
	}

	return &pair, nil
}

func (r *CredentialRepo) Upsert(ctx context.Context, creatorID uuid.UUID, pair domain.CredentialPair) error {
	encAccess, err := r.crypto.Encrypt(pair.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt access token: %w", err)
	}
	encRefresh, err := r.crypto.Encrypt(pair.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt refresh token: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO credentials (creator_id, access_token, refresh_token, token_expiry, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (creator_id) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_expiry = EXCLUDED.token_expiry,
			updated_at = NOW()
	`, creatorID, encAccess, encRefresh, pair.Expiry)
	if err != nil {
		return fmt.Errorf("failed to upsert credentials: %w", err)
	}
	return nil
}

func (r *CredentialRepo) Delete(ctx context.Context, creatorID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM credentials WHERE creator_id = $1`, creatorID); err != nil {
		return fmt.Errorf("failed to delete credentials: %w", err)
	}
	return nil
}

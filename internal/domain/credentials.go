package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CredentialPair holds the OAuth tokens for one creator. It is a plain value:
// provider calls take a copy of it instead of mutating a shared client, so
// concurrent syncs for different creators can never observe each other's
// tokens.
type CredentialPair struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// CredentialStore persists one CredentialPair per creator.
// Token encryption is handled at the repository layer, not here.
type CredentialStore interface {
	// Get returns ErrCredentialsNotFound when no pair is stored for the
	// creator. Storage errors propagate unchanged so callers can tell
	// "not connected" apart from "storage down".
	Get(ctx context.Context, creatorID uuid.UUID) (*CredentialPair, error)
	Upsert(ctx context.Context, creatorID uuid.UUID, pair CredentialPair) error
	Delete(ctx context.Context, creatorID uuid.UUID) error
}

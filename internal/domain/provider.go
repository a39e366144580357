package domain

import (
	"context"
	"fmt"
	"time"
)

// AnalysisWindowStart is the fixed start of the analytics reporting window.
// Report queries run from this date through "today"; history before it is not
// mirrored.
var AnalysisWindowStart = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// AnalyticsProvider fetches and normalizes the four datasets from the external
// analytics source. Credentials are passed by value into every call; expired
// or revoked tokens surface as a *ProviderError with CredentialRejected set,
// never as an in-place refresh (the credential layer owns refresh).
type AnalyticsProvider interface {
	FetchProfile(ctx context.Context, creds CredentialPair) (*ProfileSnapshot, error)
	FetchMetrics(ctx context.Context, creds CredentialPair) (*MetricsSnapshot, error)
	FetchDemographics(ctx context.Context, creds CredentialPair) ([]DemographicRow, error)
	FetchPerformance(ctx context.Context, creds CredentialPair, from, to time.Time) ([]PerformancePoint, error)
}

// ProviderError wraps any failure talking to the analytics provider:
// transport errors, 5xx responses, quota rejections, and timeouts all look
// the same to the caller and trigger the same cache-fallback behavior.
type ProviderError struct {
	Op                 string // provider operation, e.g. "channels.list"
	StatusCode         int    // HTTP status if known, 0 otherwise
	RateLimited        bool
	CredentialRejected bool
	Err                error
}

func (e *ProviderError) Error() string {
	switch {
	case e.RateLimited:
		return fmt.Sprintf("provider rate limited during %s: %v", e.Op, e.Err)
	case e.CredentialRejected:
		return fmt.Sprintf("provider rejected credentials during %s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("provider error during %s: %v", e.Op, e.Err)
	}
}

func (e *ProviderError) Unwrap() error { return e.Err }

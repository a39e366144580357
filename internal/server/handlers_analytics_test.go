package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/creatordesk/channelsync/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleGetAnalytics_ReturnsEnvelope(t *testing.T) {
	creatorID := uuid.New()
	var syncedID uuid.UUID

	srv := newTestServer(t, withSyncService(&mockSyncService{
		syncFn: func(ctx context.Context, id uuid.UUID) (*domain.SyncResult, error) {
			syncedID = id
			return &domain.SyncResult{
				Success: true,
				Profile: domain.OK(&domain.ProfileSnapshot{
					Title:       "My Channel",
					LastUpdated: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
				}, domain.SourceCache),
				Metrics: domain.Failed[*domain.MetricsSnapshot](errors.New("quota exceeded")),
			}, nil
		},
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/creators/"+creatorID.String()+"/analytics", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, creatorID, syncedID)

	body := rec.Body.String()
	assert.Contains(t, body, `"success":true`)
	assert.Contains(t, body, `"My Channel"`)
	assert.Contains(t, body, `"source":"cache"`)
	// a single failed dataset never changes the response status
	assert.Contains(t, body, `"quota exceeded"`)
}

func TestHandleGetAnalytics_EmptyPerformanceSeriesSerializesAsEmptyList(t *testing.T) {
	srv := newTestServer(t, withSyncService(&mockSyncService{
		syncFn: func(ctx context.Context, id uuid.UUID) (*domain.SyncResult, error) {
			return &domain.SyncResult{
				Success:     true,
				Performance: domain.OK(domain.PerformanceSeries{}, domain.SourceLive),
			}, nil
		},
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/creators/"+uuid.NewString()+"/analytics", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Performance struct {
			Success bool                      `json:"success"`
			Data    []domain.PerformancePoint `json:"data"`
		} `json:"performance"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Performance.Success)
	require.NotNil(t, envelope.Performance.Data, "a channel with no rows yet still gets an empty list, not a missing field")
	assert.Empty(t, envelope.Performance.Data)
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}

func TestHandleGetAnalytics_InvalidCreatorID(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/creators/not-a-uuid/analytics", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid creator ID")
}

func TestHandleGetAnalytics_AccountNotConnected(t *testing.T) {
	srv := newTestServer(t, withSyncService(&mockSyncService{
		syncFn: func(ctx context.Context, id uuid.UUID) (*domain.SyncResult, error) {
			return nil, domain.ErrCredentialsNotFound
		},
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/creators/"+uuid.NewString()+"/analytics", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "account not connected")
}

func TestHandleGetAnalytics_ProviderOutage(t *testing.T) {
	srv := newTestServer(t, withSyncService(&mockSyncService{
		syncFn: func(ctx context.Context, id uuid.UUID) (*domain.SyncResult, error) {
			return nil, &domain.ProviderError{Op: "token refresh", StatusCode: 503, Err: errors.New("unavailable")}
		},
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/creators/"+uuid.NewString()+"/analytics", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "analytics provider unavailable")
}

package server

import (
	"context"
	"testing"

	"github.com/creatordesk/channelsync/internal/config"
	"github.com/creatordesk/channelsync/internal/domain"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// --- Mock implementations ---

type mockSyncService struct {
	syncFn func(ctx context.Context, creatorID uuid.UUID) (*domain.SyncResult, error)
}

func (m *mockSyncService) Sync(ctx context.Context, creatorID uuid.UUID) (*domain.SyncResult, error) {
	if m.syncFn != nil {
		return m.syncFn(ctx, creatorID)
	}
	return &domain.SyncResult{Success: true}, nil
}

type mockOAuthFlow struct {
	authCodeURLFn func(state string) string
	exchangeFn    func(ctx context.Context, code string) (domain.CredentialPair, error)
}

func (m *mockOAuthFlow) AuthCodeURL(state string) string {
	if m.authCodeURLFn != nil {
		return m.authCodeURLFn(state)
	}
	return "https://accounts.google.com/o/oauth2/auth?state=" + state
}

func (m *mockOAuthFlow) Exchange(ctx context.Context, code string) (domain.CredentialPair, error) {
	if m.exchangeFn != nil {
		return m.exchangeFn(ctx, code)
	}
	return domain.CredentialPair{AccessToken: "access", RefreshToken: "refresh"}, nil
}

type mockCredentialStore struct {
	getFn    func(ctx context.Context, creatorID uuid.UUID) (*domain.CredentialPair, error)
	upsertFn func(ctx context.Context, creatorID uuid.UUID, pair domain.CredentialPair) error
	deleteFn func(ctx context.Context, creatorID uuid.UUID) error
}

func (m *mockCredentialStore) Get(ctx context.Context, creatorID uuid.UUID) (*domain.CredentialPair, error) {
	if m.getFn != nil {
		return m.getFn(ctx, creatorID)
	}
	return nil, domain.ErrCredentialsNotFound
}

func (m *mockCredentialStore) Upsert(ctx context.Context, creatorID uuid.UUID, pair domain.CredentialPair) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, creatorID, pair)
	}
	return nil
}

func (m *mockCredentialStore) Delete(ctx context.Context, creatorID uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, creatorID)
	}
	return nil
}

// mockRedisClient provides a minimal mock for health check testing
type mockRedisClient struct {
	pingErr error
}

func (m *mockRedisClient) Ping(ctx context.Context) *goredis.StatusCmd {
	cmd := goredis.NewStatusCmd(ctx)
	if m.pingErr != nil {
		cmd.SetErr(m.pingErr)
	} else {
		cmd.SetVal("PONG")
	}
	return cmd
}

// mockPgxPool provides a minimal mock for PostgreSQL health checks
type mockPgxPool struct {
	pingErr error
}

func (m *mockPgxPool) Ping(ctx context.Context) error {
	return m.pingErr
}

// --- Test server construction ---

type serverOption func(*testServerDeps)

type testServerDeps struct {
	sync        syncService
	oauth       oauthFlow
	credentials domain.CredentialStore
	db          postgresHealthChecker
	redis       redisHealthChecker
	rateLimit   float64
	rateBurst   int
}

func withSyncService(s syncService) serverOption {
	return func(d *testServerDeps) { d.sync = s }
}

func withOAuthFlow(o oauthFlow) serverOption {
	return func(d *testServerDeps) { d.oauth = o }
}

func withCredentialStore(c domain.CredentialStore) serverOption {
	return func(d *testServerDeps) { d.credentials = c }
}

func withPostgresHealthCheck(p postgresHealthChecker) serverOption {
	return func(d *testServerDeps) { d.db = p }
}

func withRedisHealthCheck(r redisHealthChecker) serverOption {
	return func(d *testServerDeps) { d.redis = r }
}

func withRateLimit(ratePerSecond float64, burst int) serverOption {
	return func(d *testServerDeps) {
		d.rateLimit = ratePerSecond
		d.rateBurst = burst
	}
}

func newTestServer(t *testing.T, opts ...serverOption) *Server {
	t.Helper()

	deps := &testServerDeps{
		sync:        &mockSyncService{},
		oauth:       &mockOAuthFlow{},
		credentials: &mockCredentialStore{},
		db:          &mockPgxPool{},
		redis:       &mockRedisClient{},
		rateLimit:   1000,
		rateBurst:   1000,
	}
	for _, opt := range opts {
		opt(deps)
	}

	cfg := &config.Config{
		AppEnv:       "test",
		Port:         "0",
		APIRateLimit: deps.rateLimit,
		APIRateBurst: deps.rateBurst,
	}

	return NewServer(cfg, deps.sync, deps.oauth, deps.credentials, deps.db, deps.redis)
}

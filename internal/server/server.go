// Package server exposes the HTTP surface: the analytics endpoint, the
// channel connect/disconnect flow, and the observability endpoints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/creatordesk/channelsync/internal/config"
	"github.com/creatordesk/channelsync/internal/domain"
	apperrors "github.com/creatordesk/channelsync/internal/errors"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// syncService runs one full analytics sync for a creator.
type syncService interface {
	Sync(ctx context.Context, creatorID uuid.UUID) (*domain.SyncResult, error)
}

// oauthFlow is the Google authorization-code flow for connecting a channel.
type oauthFlow interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (domain.CredentialPair, error)
}

type Server struct {
	echo        *echo.Echo
	config      *config.Config
	syncer      syncService
	oauth       oauthFlow
	credentials domain.CredentialStore
	db          postgresHealthChecker
	redis       redisHealthChecker
	startTime   time.Time
}

func NewServer(
	cfg *config.Config,
	syncer syncService,
	oauth oauthFlow,
	credentials domain.CredentialStore,
	db postgresHealthChecker,
	redis redisHealthChecker,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:        e,
		config:      cfg,
		syncer:      syncer,
		oauth:       oauth,
		credentials: credentials,
		db:          db,
		redis:       redis,
		startTime:   time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

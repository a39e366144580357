package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/creatordesk/channelsync/internal/errors"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	oauthStateCookie = "oauth_state"
	oauthStateMaxAge = 10 * time.Minute
	oauthTimeout     = 10 * time.Second
)

func generateOAuthState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate OAuth state: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// handleConnect starts the Google consent flow for a creator. The state token
// and the creator ID travel together in a short-lived cookie so the callback
// can verify the state and knows which creator to attach the tokens to.
func (s *Server) handleConnect(c echo.Context) error {
	creatorID, err := uuid.Parse(c.QueryParam("creator_id"))
	if err != nil {
		return apperrors.ValidationError("invalid or missing creator_id").
			WithContext("creator_id", c.QueryParam("creator_id"))
	}

	state, err := generateOAuthState()
	if err != nil {
		return apperrors.InternalError("failed to start OAuth flow", err)
	}

	c.SetCookie(&http.Cookie{
		Name:     oauthStateCookie,
		Value:    state + ":" + creatorID.String(),
		Path:     "/auth",
		MaxAge:   int(oauthStateMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.config.AppEnv == "production",
		SameSite: http.SameSiteLaxMode,
	})

	return c.Redirect(302, s.oauth.AuthCodeURL(state))
}

// handleOAuthCallback finishes the consent flow: verifies the state, exchanges
// the authorization code, and stores the credential pair for the creator.
func (s *Server) handleOAuthCallback(c echo.Context) error {
	code := c.QueryParam("code")
	if code == "" {
		return apperrors.ValidationError("missing code parameter")
	}

	cookie, err := c.Cookie(oauthStateCookie)
	if err != nil {
		return apperrors.ValidationError("missing OAuth state")
	}
	state, creatorIDStr, ok := strings.Cut(cookie.Value, ":")
	if !ok || state == "" {
		return apperrors.ValidationError("malformed OAuth state")
	}
	if c.QueryParam("state") != state {
		return apperrors.ValidationError("OAuth state mismatch")
	}
	creatorID, err := uuid.Parse(creatorIDStr)
	if err != nil {
		return apperrors.ValidationError("malformed OAuth state")
	}
	c.SetCookie(&http.Cookie{
		Name:     oauthStateCookie,
		Path:     "/auth",
		MaxAge:   -1,
		HttpOnly: true,
	})

	ctx, cancel := context.WithTimeout(c.Request().Context(), oauthTimeout)
	defer cancel()

	pair, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return apperrors.ExternalError("failed to authenticate with Google", err)
	}

	if err := s.credentials.Upsert(ctx, creatorID, pair); err != nil {
		return apperrors.InternalError("failed to save credentials", err).
			WithContext("creator_id", creatorID.String())
	}

	slog.Info("Channel connected", "creator_id", creatorID.String())
	if err := c.JSON(200, map[string]string{"status": "connected"}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

// handleDisconnect removes a creator's stored credentials. Cached snapshots
// are kept: historical analytics stay readable until the creator reconnects.
func (s *Server) handleDisconnect(c echo.Context) error {
	creatorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperrors.ValidationError("invalid creator ID").WithContext("id", c.Param("id"))
	}
	c.Set("creatorID", creatorID)

	if err := s.credentials.Delete(c.Request().Context(), creatorID); err != nil {
		return err
	}

	slog.Info("Channel disconnected", "creator_id", creatorID.String())
	if err := c.JSON(200, map[string]string{"status": "disconnected"}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

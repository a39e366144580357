package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/creatordesk/channelsync/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stateCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == oauthStateCookie {
			return cookie
		}
	}
	return nil
}

func TestHandleConnect_RedirectsToConsentPage(t *testing.T) {
	creatorID := uuid.New()
	srv := newTestServer(t, withOAuthFlow(&mockOAuthFlow{
		authCodeURLFn: func(state string) string {
			return "https://accounts.google.com/o/oauth2/auth?state=" + state
		},
	}))

	req := httptest.NewRequest(http.MethodGet, "/auth/connect?creator_id="+creatorID.String(), nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)

	cookie := stateCookie(rec)
	require.NotNil(t, cookie, "state cookie must be set")
	assert.True(t, cookie.HttpOnly)
	assert.Contains(t, cookie.Value, ":"+creatorID.String())

	location := rec.Header().Get("Location")
	assert.Contains(t, location, "accounts.google.com")
	assert.Contains(t, location, "state=")
}

func TestHandleConnect_MissingCreatorID(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/connect", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "creator_id")
}

func TestHandleOAuthCallback_StoresCredentials(t *testing.T) {
	creatorID := uuid.New()

	var storedID uuid.UUID
	var storedPair domain.CredentialPair
	creds := &mockCredentialStore{
		upsertFn: func(ctx context.Context, id uuid.UUID, pair domain.CredentialPair) error {
			storedID = id
			storedPair = pair
			return nil
		},
	}
	oauth := &mockOAuthFlow{
		exchangeFn: func(ctx context.Context, code string) (domain.CredentialPair, error) {
			assert.Equal(t, "authcode123", code)
			return domain.CredentialPair{AccessToken: "at", RefreshToken: "rt"}, nil
		},
	}
	srv := newTestServer(t, withOAuthFlow(oauth), withCredentialStore(creds))

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=authcode123&state=abc123", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "abc123:" + creatorID.String()})
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"connected"`)
	assert.Equal(t, creatorID, storedID)
	assert.Equal(t, "at", storedPair.AccessToken)
	assert.Equal(t, "rt", storedPair.RefreshToken)

	cookie := stateCookie(rec)
	require.NotNil(t, cookie)
	assert.Negative(t, cookie.MaxAge, "state cookie must be cleared")
}

func TestHandleOAuthCallback_MissingCode(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?state=abc", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing code")
}

func TestHandleOAuthCallback_StateMismatch(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=x&state=tampered", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "original:" + uuid.NewString()})
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "state mismatch")
}

func TestHandleOAuthCallback_MissingStateCookie(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=x&state=abc", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing OAuth state")
}

func TestHandleOAuthCallback_ExchangeFails(t *testing.T) {
	srv := newTestServer(t, withOAuthFlow(&mockOAuthFlow{
		exchangeFn: func(ctx context.Context, code string) (domain.CredentialPair, error) {
			return domain.CredentialPair{}, errors.New("invalid_grant")
		},
	}))

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=expired&state=abc", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "abc:" + uuid.NewString()})
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "failed to authenticate")
}

func TestHandleDisconnect_RemovesCredentials(t *testing.T) {
	creatorID := uuid.New()

	var deletedID uuid.UUID
	creds := &mockCredentialStore{
		deleteFn: func(ctx context.Context, id uuid.UUID) error {
			deletedID = id
			return nil
		},
	}
	srv := newTestServer(t, withCredentialStore(creds))

	req := httptest.NewRequest(http.MethodPost, "/api/creators/"+creatorID.String()+"/disconnect", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"disconnected"`)
	assert.Equal(t, creatorID, deletedID)
}

func TestHandleDisconnect_NotConnected(t *testing.T) {
	srv := newTestServer(t, withCredentialStore(&mockCredentialStore{
		deleteFn: func(ctx context.Context, id uuid.UUID) error {
			return domain.ErrCredentialsNotFound
		},
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/creators/"+uuid.NewString()+"/disconnect", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "account not connected")
}

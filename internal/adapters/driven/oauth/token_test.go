package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alcove-dev/alcove/internal/core/domain"
	"github.com/alcove-dev/alcove/internal/core/ports/driven"
)

func testApp(tokenURL string) driven.OAuthApp {
	return driven.OAuthApp{
		ClientID:     "client-123",
		ClientSecret: "secret-456",
		AuthURL:      "https://accounts.example.com/auth",
		TokenURL:     tokenURL,
		RedirectURI:  "http://localhost:8431/callback",
		Scopes:       []string{"read", "write"},
	}
}

func TestAuthCodeURL(t *testing.T) {
	ex := NewExchanger()

	raw := ex.AuthCodeURL(testApp(""), "state-xyz")

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "accounts.example.com", parsed.Host)
	assert.Equal(t, "code", parsed.Query().Get("response_type"))
	assert.Equal(t, "client-123", parsed.Query().Get("client_id"))
	assert.Equal(t, "state-xyz", parsed.Query().Get("state"))
	assert.Equal(t, "read write", parsed.Query().Get("scope"))
	assert.Equal(t, "http://localhost:8431/callback", parsed.Query().Get("redirect_uri"))
}

func TestExchange(t *testing.T) {
	var gotForm url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"access_token": "access-1",
			"refresh_token": "refresh-1",
			"token_type": "Bearer",
			"expires_in": 3600,
			"scope": "read"
		}`))
	}))
	defer srv.Close()

	ex := NewExchanger()
	cred, err := ex.Exchange(context.Background(), testApp(srv.URL), "code-abc")
	require.NoError(t, err)

	assert.Equal(t, "authorization_code", gotForm.Get("grant_type"))
	assert.Equal(t, "code-abc", gotForm.Get("code"))
	assert.Equal(t, "client-123", gotForm.Get("client_id"))
	assert.Equal(t, "secret-456", gotForm.Get("client_secret"))

	assert.Equal(t, "access-1", cred.AccessToken)
	assert.Equal(t, "refresh-1", cred.RefreshToken)
	assert.Equal(t, "read", cred.Scope)
	assert.WithinDuration(t, time.Now().Add(time.Hour), cred.ExpiresAt, time.Minute)
}

func TestExchange_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "invalid_grant", "error_description": "code expired"}`))
	}))
	defer srv.Close()

	ex := NewExchanger()
	_, err := ex.Exchange(context.Background(), testApp(srv.URL), "stale-code")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_grant")
	assert.Contains(t, err.Error(), "code expired")
}

func TestRefresh(t *testing.T) {
	var gotForm url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token": "fresh-access", "expires_in": 1800}`))
	}))
	defer srv.Close()

	ex := NewExchanger()
	cred, err := ex.Refresh(context.Background(), testApp(srv.URL), "refresh-1")
	require.NoError(t, err)

	assert.Equal(t, "refresh_token", gotForm.Get("grant_type"))
	assert.Equal(t, "refresh-1", gotForm.Get("refresh_token"))
	assert.Equal(t, "fresh-access", cred.AccessToken)
	assert.Empty(t, cred.RefreshToken, "provider may omit a rotated refresh token")
}

func TestRefresh_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "invalid_grant", "error_description": "token revoked"}`))
	}))
	defer srv.Close()

	ex := NewExchanger()
	_, err := ex.Refresh(context.Background(), testApp(srv.URL), "revoked")
	assert.ErrorIs(t, err, domain.ErrTokenRefreshFailed)
}

func TestRefresh_UnreachableEndpointIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	srv.Close()

	ex := NewExchanger()
	_, err := ex.Refresh(context.Background(), testApp(srv.URL), "refresh-1")
	require.Error(t, err)
	assert.True(t, domain.IsTransient(err))
	assert.NotErrorIs(t, err, domain.ErrTokenRefreshFailed)
}

func TestRefresh_ServerErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ex := NewExchanger()
	_, err := ex.Refresh(context.Background(), testApp(srv.URL), "refresh-1")
	require.Error(t, err)
	assert.True(t, domain.IsTransient(err))
	assert.NotErrorIs(t, err, domain.ErrTokenRefreshFailed)
}

func TestExchange_MissingAccessToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"token_type": "Bearer"}`))
	}))
	defer srv.Close()

	ex := NewExchanger()
	_, err := ex.Exchange(context.Background(), testApp(srv.URL), "code")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no access token")
}

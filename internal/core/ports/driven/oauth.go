package driven

import (
	"context"

	"github.com/alcove-dev/alcove/internal/core/domain"
)

// OAuthApp holds one plugin's OAuth client configuration, loaded from the
// plugin's credential material file.
type OAuthApp struct {
	// ClientID is the OAuth client ID from the provider's console.
	ClientID string
	// ClientSecret is the matching client secret.
	ClientSecret string
	// AuthURL is the authorization endpoint.
	AuthURL string
	// TokenURL is the token exchange endpoint.
	TokenURL string
	// RedirectURI is the callback URI.
	RedirectURI string
	// Scopes are the OAuth scopes to request.
	Scopes []string
}

// TokenExchanger performs the OAuth wire operations for the auth service.
// The state machine itself lives in the core; this port only talks to the
// provider's endpoints.
type TokenExchanger interface {
	// AuthCodeURL builds the authorization URL carrying the given state.
	AuthCodeURL(app OAuthApp, state string) string

	// Exchange trades an authorization code for tokens.
	Exchange(ctx context.Context, app OAuthApp, code string) (*domain.Credential, error)

	// Refresh trades a refresh token for a new access token.
	// Returns domain.ErrTokenRefreshFailed (wrapped) when the provider
	// rejects the refresh token.
	Refresh(ctx context.Context, app OAuthApp, refreshToken string) (*domain.Credential, error)
}

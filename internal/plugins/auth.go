package plugins

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/alcove-dev/alcove/internal/core/domain"
)

// Authenticator supplies per-plugin access tokens. The auth service
// satisfies it; plugins depend on this narrow view so tests can stub
// token handling without the full OAuth lifecycle.
type Authenticator interface {
	// Token returns a valid access token, refreshing an expired one at
	// most once.
	Token(ctx context.Context, pluginName string) (string, error)

	// State returns the credential lifecycle state without network I/O.
	State(ctx context.Context, pluginName string) domain.AuthState
}

// HasCredential reports whether the plugin holds usable credential
// state. An expired credential counts: Token refreshes it on use.
func HasCredential(ctx context.Context, auth Authenticator, pluginName string) bool {
	switch auth.State(ctx, pluginName) {
	case domain.AuthStateAuthenticated, domain.AuthStateExpired:
		return true
	default:
		return false
	}
}

// tokenSourceAdapter adapts an Authenticator to oauth2.TokenSource so
// Google API clients can use our token management.
type tokenSourceAdapter struct {
	auth       Authenticator
	pluginName string
	ctx        context.Context
}

// TokenSource creates an oauth2.TokenSource backed by the given
// Authenticator. The returned source can be passed to
// option.WithTokenSource() when building Google API services.
func TokenSource(ctx context.Context, auth Authenticator, pluginName string) oauth2.TokenSource {
	return &tokenSourceAdapter{auth: auth, pluginName: pluginName, ctx: ctx}
}

// Token implements oauth2.TokenSource.
func (t *tokenSourceAdapter) Token() (*oauth2.Token, error) {
	accessToken, err := t.auth.Token(t.ctx, t.pluginName)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}, nil
}

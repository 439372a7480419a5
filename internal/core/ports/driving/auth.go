package driving

import (
	"context"

	"github.com/alcove-dev/alcove/internal/core/domain"
)

// AuthService drives the per-plugin OAuth credential lifecycle.
type AuthService interface {
	// StartAuth issues an authorization URL for the plugin and moves it
	// to the authorization-pending state.
	StartAuth(ctx context.Context, pluginName string) (authURL string, state string, err error)

	// CompleteAuth exchanges the callback's authorization code for tokens
	// and stores them. state must match the pending authorization.
	CompleteAuth(ctx context.Context, pluginName, state, code string) error

	// Token returns a valid access token for the plugin, refreshing an
	// expired one at most once. Fails with domain.ErrAuthRequired when no
	// credential is stored and domain.ErrAuthExpired when the refresh is
	// rejected.
	Token(ctx context.Context, pluginName string) (string, error)

	// State returns the plugin's credential lifecycle state.
	State(ctx context.Context, pluginName string) domain.AuthState
}

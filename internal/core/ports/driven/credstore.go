package driven

import (
	"context"

	"github.com/alcove-dev/alcove/internal/core/domain"
)

// CredentialStore persists OAuth credentials, one per plugin.
// All mutation goes through the auth service's single-writer path.
type CredentialStore interface {
	// Save stores credentials. Creates if new, updates if the plugin
	// already has a row.
	Save(ctx context.Context, cred domain.Credential) error

	// GetByPlugin retrieves credentials for a plugin.
	// Returns domain.ErrNotFound if none are stored.
	GetByPlugin(ctx context.Context, pluginName string) (*domain.Credential, error)
}

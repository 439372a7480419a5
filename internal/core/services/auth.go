package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alcove-dev/alcove/internal/core/domain"
	"github.com/alcove-dev/alcove/internal/core/ports/driven"
	"github.com/alcove-dev/alcove/internal/core/ports/driving"
	"github.com/alcove-dev/alcove/internal/logger"
)

// Ensure OAuthManager implements the interface.
var _ driving.AuthService = (*OAuthManager)(nil)

// OAuthManager owns the per-plugin credential lifecycle:
//
//	Unauthenticated -> AuthorizationPending -> Authenticated
//	               -> (Expired -> Authenticated | Unauthenticated)
//
// Refresh is an explicit, observable transition here rather than a side
// effect buried in plugin fetch calls, and is attempted at most once per
// authenticated call. All credential writes go through this single-writer
// path.
type OAuthManager struct {
	creds     driven.CredentialStore
	exchanger driven.TokenExchanger
	apps      map[string]driven.OAuthApp

	mu      sync.Mutex
	pending map[string]string // state -> plugin name
}

// NewOAuthManager creates the credential lifecycle service.
// apps maps plugin names to their OAuth client configuration; plugins
// absent from the map cannot start an authorization flow.
func NewOAuthManager(
	creds driven.CredentialStore,
	exchanger driven.TokenExchanger,
	apps map[string]driven.OAuthApp,
) *OAuthManager {
	return &OAuthManager{
		creds:     creds,
		exchanger: exchanger,
		apps:      apps,
		pending:   make(map[string]string),
	}
}

// StartAuth issues an authorization URL and records the pending state.
func (m *OAuthManager) StartAuth(_ context.Context, pluginName string) (string, string, error) {
	app, ok := m.apps[pluginName]
	if !ok {
		return "", "", fmt.Errorf("%w: no OAuth client configured for %s", domain.ErrInvalidInput, pluginName)
	}

	state := uuid.NewString()
	m.mu.Lock()
	m.pending[state] = pluginName
	m.mu.Unlock()

	return m.exchanger.AuthCodeURL(app, state), state, nil
}

// CompleteAuth exchanges the callback's authorization code for tokens and
// stores them, exiting the pending state.
func (m *OAuthManager) CompleteAuth(ctx context.Context, pluginName, state, code string) error {
	m.mu.Lock()
	owner, ok := m.pending[state]
	if ok {
		delete(m.pending, state)
	}
	m.mu.Unlock()

	if !ok || owner != pluginName {
		return fmt.Errorf("%w: unknown or mismatched authorization state", domain.ErrInvalidInput)
	}

	app := m.apps[pluginName]
	fresh, err := m.exchanger.Exchange(ctx, app, code)
	if err != nil {
		return fmt.Errorf("exchange authorization code for %s: %w", pluginName, err)
	}

	cred := m.merge(ctx, pluginName, fresh)
	if err := m.creds.Save(ctx, *cred); err != nil {
		return fmt.Errorf("%w: save credential for %s: %w", domain.ErrPersistence, pluginName, err)
	}

	logger.Info("plugin %s authenticated (expires %s)", pluginName, cred.ExpiresAt.Format(time.RFC3339))
	return nil
}

// Token returns a valid access token, refreshing an expired one at most
// once. A rejected refresh transitions the plugin to unauthenticated; the
// row stays in storage so the failure mode is distinguishable from never
// having authorised. A refresh that fails for transport reasons keeps the
// stored tokens and surfaces a transient error.
func (m *OAuthManager) Token(ctx context.Context, pluginName string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cred, err := m.creds.GetByPlugin(ctx, pluginName)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("%w: plugin %s", domain.ErrAuthRequired, pluginName)
		}
		return "", fmt.Errorf("%w: load credential for %s: %w", domain.ErrPersistence, pluginName, err)
	}

	switch cred.State() {
	case domain.AuthStateAuthenticated:
		return cred.AccessToken, nil
	case domain.AuthStateUnauthenticated:
		return "", fmt.Errorf("%w: plugin %s", domain.ErrAuthRequired, pluginName)
	}

	// Expired: one refresh attempt, never silently retried.
	if !cred.HasRefreshToken() {
		return "", fmt.Errorf("%w: plugin %s has no refresh token", domain.ErrAuthExpired, pluginName)
	}

	app, ok := m.apps[pluginName]
	if !ok {
		return "", fmt.Errorf("%w: no OAuth client configured for %s", domain.ErrAuthExpired, pluginName)
	}

	fresh, refreshErr := m.exchanger.Refresh(ctx, app, cred.RefreshToken)
	if refreshErr != nil {
		// The token endpoint was unreachable: the stored refresh token is
		// still good, so keep it and let the caller retry.
		if domain.IsTransient(refreshErr) {
			return "", fmt.Errorf("refresh token for %s: %w", pluginName, refreshErr)
		}

		// Revoked or invalid refresh token: transition to unauthenticated
		// but keep the row.
		cred.AccessToken = ""
		cred.RefreshToken = ""
		cred.UpdatedAt = time.Now().UTC()
		if err := m.creds.Save(ctx, *cred); err != nil {
			logger.Warn("persist unauthenticated state for %s: %v", pluginName, err)
		}
		return "", fmt.Errorf("%w: plugin %s: %v", domain.ErrAuthExpired, pluginName, refreshErr)
	}

	cred.AccessToken = fresh.AccessToken
	if fresh.RefreshToken != "" {
		cred.RefreshToken = fresh.RefreshToken
	}
	cred.ExpiresAt = fresh.ExpiresAt
	if fresh.Scope != "" {
		cred.Scope = fresh.Scope
	}
	cred.UpdatedAt = time.Now().UTC()

	if err := m.creds.Save(ctx, *cred); err != nil {
		return "", fmt.Errorf("%w: save refreshed credential for %s: %w", domain.ErrPersistence, pluginName, err)
	}

	logger.Debug("refreshed token for %s (expires %s)", pluginName, cred.ExpiresAt.Format(time.RFC3339))
	return cred.AccessToken, nil
}

// State returns the plugin's credential lifecycle state.
func (m *OAuthManager) State(ctx context.Context, pluginName string) domain.AuthState {
	m.mu.Lock()
	for _, owner := range m.pending {
		if owner == pluginName {
			m.mu.Unlock()
			return domain.AuthStatePending
		}
	}
	m.mu.Unlock()

	cred, err := m.creds.GetByPlugin(ctx, pluginName)
	if err != nil {
		return domain.AuthStateUnauthenticated
	}
	return cred.State()
}

// merge folds freshly exchanged tokens into any existing credential so
// CreatedAt and a previously granted refresh token survive re-authorisation.
func (m *OAuthManager) merge(ctx context.Context, pluginName string, fresh *domain.Credential) *domain.Credential {
	now := time.Now().UTC()
	cred := &domain.Credential{
		ID:         uuid.NewString(),
		PluginName: pluginName,
		CreatedAt:  now,
	}
	if existing, err := m.creds.GetByPlugin(ctx, pluginName); err == nil {
		cred.ID = existing.ID
		cred.CreatedAt = existing.CreatedAt
		cred.RefreshToken = existing.RefreshToken
	}

	cred.AccessToken = fresh.AccessToken
	if fresh.RefreshToken != "" {
		cred.RefreshToken = fresh.RefreshToken
	}
	cred.ExpiresAt = fresh.ExpiresAt
	cred.Scope = fresh.Scope
	cred.UpdatedAt = now
	return cred
}

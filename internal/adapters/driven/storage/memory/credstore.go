package memory

import (
	"context"
	"sync"

	"github.com/alcove-dev/alcove/internal/core/domain"
	"github.com/alcove-dev/alcove/internal/core/ports/driven"
)

// Ensure CredentialStore implements the interface.
var _ driven.CredentialStore = (*CredentialStore)(nil)

// CredentialStore is an in-memory implementation of driven.CredentialStore.
type CredentialStore struct {
	mu    sync.RWMutex
	creds map[string]domain.Credential
}

// NewCredentialStore creates an empty in-memory credential store.
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{creds: make(map[string]domain.Credential)}
}

// Save stores credentials keyed by plugin name.
func (s *CredentialStore) Save(_ context.Context, cred domain.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[cred.PluginName] = cred
	return nil
}

// GetByPlugin retrieves credentials for a plugin.
func (s *CredentialStore) GetByPlugin(_ context.Context, pluginName string) (*domain.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cred, ok := s.creds[pluginName]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := cred
	return &clone, nil
}

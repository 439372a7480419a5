package domain

import "time"

// AuthState is the credential lifecycle state for a plugin.
type AuthState string

const (
	// AuthStateUnauthenticated means no usable token material is stored.
	AuthStateUnauthenticated AuthState = "unauthenticated"
	// AuthStatePending means an authorization URL has been issued and the
	// callback carrying the authorization code is awaited.
	AuthStatePending AuthState = "authorization_pending"
	// AuthStateAuthenticated means a valid access token is present.
	AuthStateAuthenticated AuthState = "authenticated"
	// AuthStateExpired means the access token's expiry has passed; a refresh
	// is attempted before the next authenticated call.
	AuthStateExpired AuthState = "expired"
)

// Credential stores OAuth token material for one plugin.
// Created on successful authorization-code exchange, mutated in place on
// refresh, never silently deleted: an expired-and-unrefreshable credential
// transitions the plugin to unauthenticated but stays in storage.
type Credential struct {
	// ID is the unique identifier (UUID).
	ID string

	// PluginName is the owning plugin; one credential per plugin.
	PluginName string

	// AccessToken is the bearer token for API access.
	AccessToken string

	// RefreshToken is used to obtain new access tokens.
	RefreshToken string

	// ExpiresAt is when the access token expires. Zero means no expiry known.
	ExpiresAt time.Time

	// Scope is the granted OAuth scope string.
	Scope string

	// CreatedAt is when the credential was first stored.
	CreatedAt time.Time

	// UpdatedAt is when the credential was last mutated (exchange or refresh).
	UpdatedAt time.Time
}

// IsExpired returns true if the access token's expiry has passed.
func (c *Credential) IsExpired() bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(c.ExpiresAt)
}

// HasRefreshToken returns true if a refresh token is available.
func (c *Credential) HasRefreshToken() bool {
	return c.RefreshToken != ""
}

// State derives the lifecycle state from the stored token material.
// AuthStatePending is tracked by the auth service, not by stored tokens,
// so it is never returned here.
func (c *Credential) State() AuthState {
	if c == nil || c.AccessToken == "" {
		return AuthStateUnauthenticated
	}
	if c.IsExpired() {
		return AuthStateExpired
	}
	return AuthStateAuthenticated
}

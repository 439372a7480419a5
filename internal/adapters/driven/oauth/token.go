// Package oauth implements the token exchange port against standard
// OAuth 2.0 authorization-code endpoints.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alcove-dev/alcove/internal/core/domain"
	"github.com/alcove-dev/alcove/internal/core/ports/driven"
)

// Ensure Exchanger implements the interface.
var _ driven.TokenExchanger = (*Exchanger)(nil)

// tokenResponse holds the provider's token endpoint response.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope"`
}

// Exchanger performs authorization-code and refresh-token exchanges over
// HTTP. It is provider-agnostic; per-plugin endpoints and client
// credentials arrive in the OAuthApp.
type Exchanger struct {
	client *http.Client
}

// NewExchanger creates a token exchanger with a bounded request timeout.
func NewExchanger() *Exchanger {
	return &Exchanger{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// AuthCodeURL builds the authorization URL carrying the given state.
func (e *Exchanger) AuthCodeURL(app driven.OAuthApp, state string) string {
	params := url.Values{}
	params.Set("response_type", "code")
	params.Set("client_id", app.ClientID)
	params.Set("redirect_uri", app.RedirectURI)
	params.Set("state", state)
	if len(app.Scopes) > 0 {
		params.Set("scope", strings.Join(app.Scopes, " "))
	}
	// Ask for a refresh token where the provider supports offline access.
	params.Set("access_type", "offline")

	return app.AuthURL + "?" + params.Encode()
}

// Exchange trades an authorization code for tokens.
func (e *Exchanger) Exchange(ctx context.Context, app driven.OAuthApp, code string) (*domain.Credential, error) {
	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("client_id", app.ClientID)
	data.Set("client_secret", app.ClientSecret)
	data.Set("code", code)
	data.Set("redirect_uri", app.RedirectURI)

	resp, err := e.post(ctx, app.TokenURL, data)
	if err != nil {
		return nil, fmt.Errorf("authorization code exchange: %w", err)
	}
	return toCredential(resp), nil
}

// Refresh trades a refresh token for a new access token.
func (e *Exchanger) Refresh(ctx context.Context, app driven.OAuthApp, refreshToken string) (*domain.Credential, error) {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("client_id", app.ClientID)
	data.Set("client_secret", app.ClientSecret)
	data.Set("refresh_token", refreshToken)

	resp, err := e.post(ctx, app.TokenURL, data)
	if err != nil {
		// A transport failure reaching the endpoint says nothing about
		// the refresh token itself; only a provider rejection does.
		if domain.IsTransient(err) {
			return nil, fmt.Errorf("refresh token exchange: %w", err)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrTokenRefreshFailed, err)
	}
	return toCredential(resp), nil
}

// post submits one form-encoded token request and decodes the response.
func (e *Exchanger) post(ctx context.Context, tokenURL string, data url.Values) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: token request: %w", domain.ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("%w: token endpoint status %d", domain.ErrTransient, resp.StatusCode)
		}
		var errResp struct {
			Error       string `json:"error"`
			Description string `json:"error_description"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
			return nil, fmt.Errorf("token error: %s - %s", errResp.Error, errResp.Description)
		}
		return nil, fmt.Errorf("token request failed with status %d", resp.StatusCode)
	}

	var tokenResp tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("token response carries no access token")
	}

	return &tokenResp, nil
}

// toCredential maps a token response onto the domain credential shape.
// PluginName and identity fields are filled in by the auth service.
func toCredential(resp *tokenResponse) *domain.Credential {
	cred := &domain.Credential{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		Scope:        resp.Scope,
	}
	if resp.ExpiresIn > 0 {
		cred.ExpiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	return cred
}

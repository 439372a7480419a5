// Package ticktick implements the TickTick task adapter against the
// TickTick v2 REST API.
package ticktick

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/alcove-dev/alcove/internal/core/domain"
	"github.com/alcove-dev/alcove/internal/core/ports/driven"
	"github.com/alcove-dev/alcove/internal/logger"
	"github.com/alcove-dev/alcove/internal/plugins"
)

// Ensure Plugin implements the interfaces.
var (
	_ driven.Plugin          = (*Plugin)(nil)
	_ driven.AuthAwarePlugin = (*Plugin)(nil)
)

// DefaultBaseURL is the TickTick v2 API endpoint.
const DefaultBaseURL = "https://api.ticktick.com/api/v2"

// batchQuery requests both open and completed tasks in one call.
type batchQuery struct {
	Queries []queryClause `json:"queries"`
}

type queryClause struct {
	Query      string   `json:"query"`
	ProjectIDs []string `json:"projectIds"`
	Status     []int    `json:"status"`
}

// batchResponse tolerates both envelope shapes the endpoint returns.
type batchResponse struct {
	Tasks []task `json:"tasks"`
	Data  []task `json:"data"`
}

// Plugin fetches tasks (open and completed) from the authenticated
// user's TickTick account.
type Plugin struct {
	auth    plugins.Authenticator
	http    *http.Client
	baseURL string
	limiter *plugins.RateLimiter
}

// New creates the TickTick plugin.
func New(auth plugins.Authenticator) *Plugin {
	return &Plugin{
		auth:    auth,
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: DefaultBaseURL,
		limiter: plugins.NewRateLimiter(plugins.TickTickRateLimit),
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "ticktick"
}

// ConfigSchema declares the recognised configuration options.
func (p *Plugin) ConfigSchema() domain.ConfigSchema {
	return domain.ConfigSchema{
		"client_id": {
			Type:        "string",
			Description: "OAuth client ID from the TickTick developer portal",
		},
		"client_secret": {
			Type:        "string",
			Description: "OAuth client secret from the TickTick developer portal",
		},
	}
}

// IsAuthenticated reports whether usable credential state exists.
func (p *Plugin) IsAuthenticated(ctx context.Context) bool {
	return plugins.HasCredential(ctx, p.auth, p.Name())
}

// TestConnection verifies the API is reachable by fetching the user
// profile.
func (p *Plugin) TestConnection(ctx context.Context) error {
	var out map[string]any
	return p.request(ctx, http.MethodGet, "/user", nil, &out)
}

// Fetch retrieves all tasks in one batch query. Tasks carry no reliable
// server-side date filter, so the since hint is ignored; dedup makes
// the full fetch safe.
func (p *Plugin) Fetch(ctx context.Context, _ domain.PluginConfig, _ time.Time) (<-chan domain.RawItem, <-chan error) {
	itemsCh := make(chan domain.RawItem)
	errsCh := make(chan error, 1)

	go func() {
		defer close(itemsCh)
		defer close(errsCh)

		tasks, err := p.listTasks(ctx)
		if err != nil {
			errsCh <- fmt.Errorf("fetch tasks: %w", err)
			return
		}
		logger.Debug("ticktick: %d tasks fetched", len(tasks))

		for _, t := range tasks {
			select {
			case <-ctx.Done():
				return
			case itemsCh <- taskToItem(t):
			}
		}
	}()

	return itemsCh, errsCh
}

// listTasks queries open and completed tasks via the batch endpoint.
func (p *Plugin) listTasks(ctx context.Context) ([]task, error) {
	query := batchQuery{
		Queries: []queryClause{{
			ProjectIDs: []string{},
			Status:     []int{statusOpen, statusCompleted},
		}},
	}

	var resp batchResponse
	if err := p.request(ctx, http.MethodPost, "/batch/check/0", query, &resp); err != nil {
		return nil, err
	}

	if len(resp.Tasks) > 0 {
		return resp.Tasks, nil
	}
	return resp.Data, nil
}

// request performs one authenticated API call.
func (p *Plugin) request(ctx context.Context, method, path string, body, out any) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}

	token, err := p.auth.Token(ctx, p.Name())
	if err != nil {
		return err
	}

	var reqBody io.Reader = http.NoBody
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: ticktick request: %w", domain.ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(resp.Body)
		return plugins.ClassifyStatus(resp.StatusCode, string(detail))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Package gmail implements the Gmail data-source adapter on top of the
// official Google API client.
package gmail

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

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

// Plugin fetches emails from the authenticated user's Gmail account.
type Plugin struct {
	auth    plugins.Authenticator
	limiter *plugins.RateLimiter
}

// New creates the Gmail plugin.
func New(auth plugins.Authenticator) *Plugin {
	return &Plugin{
		auth:    auth,
		limiter: plugins.NewRateLimiter(plugins.GmailRateLimit),
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "gmail"
}

// ConfigSchema declares the recognised configuration options.
func (p *Plugin) ConfigSchema() domain.ConfigSchema {
	return domain.ConfigSchema{
		"days_back": {
			Type:        "int",
			Default:     "7",
			Description: "limits lookback window when no prior run exists",
		},
		"max_results": {
			Type:        "int",
			Default:     "100",
			Description: "caps fetch count per run (0 = unlimited)",
		},
		"query": {
			Type:        "string",
			Description: "Gmail search query overriding the date-based default",
		},
		"label_ids": {
			Type:        "string",
			Description: "comma-separated label IDs to fetch (empty = all mail)",
		},
		"client_id": {
			Type:        "string",
			Description: "OAuth client ID from the Google Cloud console",
		},
		"client_secret": {
			Type:        "string",
			Description: "OAuth client secret from the Google Cloud console",
		},
	}
}

// IsAuthenticated reports whether usable credential state exists.
func (p *Plugin) IsAuthenticated(ctx context.Context) bool {
	return plugins.HasCredential(ctx, p.auth, p.Name())
}

// TestConnection verifies the Gmail API is reachable with the stored
// credential by fetching the user's profile.
func (p *Plugin) TestConnection(ctx context.Context) error {
	svc, err := p.service(ctx)
	if err != nil {
		return err
	}
	if _, err := svc.Users.GetProfile("me").Context(ctx).Do(); err != nil {
		return plugins.ClassifyGoogleError(err)
	}
	return nil
}

// Fetch lists message IDs matching the lookback query, then retrieves
// each message in full. Both channels close when the fetch ends.
func (p *Plugin) Fetch(ctx context.Context, cfg domain.PluginConfig, since time.Time) (<-chan domain.RawItem, <-chan error) {
	itemsCh := make(chan domain.RawItem)
	errsCh := make(chan error, 1)

	go func() {
		defer close(itemsCh)
		defer close(errsCh)

		parsed := ParseConfig(cfg)

		svc, err := p.service(ctx)
		if err != nil {
			errsCh <- err
			return
		}

		ids, err := p.listMessageIDs(ctx, svc, parsed, since)
		if err != nil {
			errsCh <- err
			return
		}
		logger.Debug("gmail: %d messages matched query", len(ids))

		for _, id := range ids {
			if err := p.limiter.Wait(ctx); err != nil {
				errsCh <- err
				return
			}

			msg, err := svc.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
			if err != nil {
				errsCh <- fmt.Errorf("get message %s: %w", id, plugins.ClassifyGoogleError(err))
				return
			}

			select {
			case <-ctx.Done():
				return
			case itemsCh <- MessageToItem(msg):
			}
		}
	}()

	return itemsCh, errsCh
}

// service builds the Gmail API client bound to our token management.
func (p *Plugin) service(ctx context.Context) (*gmail.Service, error) {
	ts := plugins.TokenSource(ctx, p.auth, p.Name())
	svc, err := gmail.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return svc, nil
}

// listMessageIDs pages through the message list for the effective query
// and returns the matched IDs, capped at the configured maximum.
func (p *Plugin) listMessageIDs(ctx context.Context, svc *gmail.Service, cfg *Config, since time.Time) ([]string, error) {
	query := buildQuery(cfg, since)
	logger.Debug("gmail query: %q (max %d)", query, cfg.MaxResults)

	var ids []string
	pageToken := ""
	for {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		call := svc.Users.Messages.List("me").Q(query).MaxResults(pageSize(cfg.MaxResults, len(ids))).Context(ctx)
		if len(cfg.LabelIDs) > 0 {
			call = call.LabelIds(cfg.LabelIDs...)
		}
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("list messages: %w", plugins.ClassifyGoogleError(err))
		}

		for _, msg := range resp.Messages {
			ids = append(ids, msg.Id)
		}

		if cfg.MaxResults > 0 && int64(len(ids)) >= cfg.MaxResults {
			return ids[:cfg.MaxResults], nil
		}
		if resp.NextPageToken == "" {
			return ids, nil
		}
		pageToken = resp.NextPageToken
	}
}

// buildQuery resolves the effective search query: an explicit query
// wins; otherwise the window opens at the since hint or days_back ago.
func buildQuery(cfg *Config, since time.Time) string {
	if cfg.Query != "" {
		return cfg.Query
	}
	after := since
	if after.IsZero() {
		after = time.Now().UTC().AddDate(0, 0, -cfg.DaysBack)
	}
	return "after:" + after.Format("2006/01/02")
}

// pageSize bounds one list page so a small max_results never over-fetches.
func pageSize(maxResults int64, fetched int) int64 {
	if maxResults <= 0 {
		return maxPageSize
	}
	remaining := maxResults - int64(fetched)
	if remaining < maxPageSize {
		return remaining
	}
	return maxPageSize
}

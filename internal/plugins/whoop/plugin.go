// Package whoop implements the WHOOP health-data adapter against the
// WHOOP developer REST API.
package whoop

import (
	"context"
	"fmt"
	"strconv"
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

// DefaultDaysBack is the lookback window when no prior run exists.
const DefaultDaysBack = 365

// Plugin fetches recovery, sleep and workout measurements from the
// authenticated user's WHOOP account.
type Plugin struct {
	auth   plugins.Authenticator
	client *client
}

// New creates the WHOOP plugin.
func New(auth plugins.Authenticator) *Plugin {
	return &Plugin{
		auth:   auth,
		client: newClient(auth, DefaultBaseURL),
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "whoop"
}

// ConfigSchema declares the recognised configuration options.
func (p *Plugin) ConfigSchema() domain.ConfigSchema {
	return domain.ConfigSchema{
		"days_back": {
			Type:        "int",
			Default:     strconv.Itoa(DefaultDaysBack),
			Description: "limits lookback window when no prior run exists",
		},
		"client_id": {
			Type:        "string",
			Description: "OAuth client ID from the WHOOP developer portal",
		},
		"client_secret": {
			Type:        "string",
			Description: "OAuth client secret from the WHOOP developer portal",
		},
	}
}

// IsAuthenticated reports whether usable credential state exists.
func (p *Plugin) IsAuthenticated(ctx context.Context) bool {
	return plugins.HasCredential(ctx, p.auth, p.Name())
}

// TestConnection verifies the API is reachable by fetching the profile.
func (p *Plugin) TestConnection(ctx context.Context) error {
	prof, err := p.client.profile(ctx)
	if err != nil {
		return err
	}
	if prof.UserID == 0 {
		return fmt.Errorf("whoop profile carries no user ID")
	}
	return nil
}

// Fetch retrieves recovery, sleep and workout records for the lookback
// window. Both channels close when the fetch ends.
func (p *Plugin) Fetch(ctx context.Context, cfg domain.PluginConfig, since time.Time) (<-chan domain.RawItem, <-chan error) {
	itemsCh := make(chan domain.RawItem)
	errsCh := make(chan error, 1)

	go func() {
		defer close(itemsCh)
		defer close(errsCh)

		start, end := fetchWindow(cfg, since)
		logger.Debug("whoop: fetching %s to %s", start.Format("2006-01-02"), end.Format("2006-01-02"))

		recoveries, err := collect[recoveryRecord](ctx, p.client, "/developer/v1/recovery", start, end)
		if err != nil {
			errsCh <- fmt.Errorf("fetch recovery: %w", err)
			return
		}
		for _, rec := range recoveries {
			if !send(ctx, itemsCh, recoveryToItem(rec)) {
				return
			}
		}

		sleeps, err := collect[sleepRecord](ctx, p.client, "/developer/v1/cycle/sleep", start, end)
		if err != nil {
			errsCh <- fmt.Errorf("fetch sleep: %w", err)
			return
		}
		for _, slp := range sleeps {
			if !send(ctx, itemsCh, sleepToItem(slp)) {
				return
			}
		}

		workouts, err := collect[workoutRecord](ctx, p.client, "/developer/v1/cycle/workout", start, end)
		if err != nil {
			errsCh <- fmt.Errorf("fetch workouts: %w", err)
			return
		}
		for _, w := range workouts {
			if !send(ctx, itemsCh, workoutToItem(w)) {
				return
			}
		}
	}()

	return itemsCh, errsCh
}

// send delivers one item unless the context ends first.
func send(ctx context.Context, ch chan<- domain.RawItem, item domain.RawItem) bool {
	select {
	case <-ctx.Done():
		return false
	case ch <- item:
		return true
	}
}

// fetchWindow resolves the fetch time range from the since hint or the
// configured lookback.
func fetchWindow(cfg domain.PluginConfig, since time.Time) (time.Time, time.Time) {
	end := time.Now().UTC()
	if !since.IsZero() {
		return since.UTC(), end
	}

	daysBack := DefaultDaysBack
	if val := cfg["days_back"]; val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			daysBack = n
		}
	}
	return end.AddDate(0, 0, -daysBack), end
}

// recoveryToItem maps one recovery measurement. Recovery is daily, so
// the measurement date is the stable identifier.
func recoveryToItem(rec recoveryRecord) domain.RawItem {
	date := rec.CreatedAt.UTC().Format("2006-01-02")
	return domain.RawItem{
		SourceID: "recovery_" + date,
		ItemType: "whoop_recovery",
		Title:    "Recovery - " + date,
		Content:  formatRecovery(rec),
		Metadata: map[string]any{
			"date":               date,
			"recovery_score":     rec.Score.RecoveryScore,
			"resting_heart_rate": rec.Score.RestingHeartRate,
			"hrv":                rec.Score.HRVMilli,
		},
		SourceTimestamp: rec.CreatedAt.UTC().Truncate(24 * time.Hour),
	}
}

// sleepToItem maps one sleep activity, keyed by the night it started.
func sleepToItem(slp sleepRecord) domain.RawItem {
	start := slp.Start
	if start.IsZero() {
		start = slp.CreatedAt
	}
	date := start.UTC().Format("2006-01-02")
	return domain.RawItem{
		SourceID: "sleep_" + date,
		ItemType: "whoop_sleep",
		Title:    "Sleep - " + date,
		Content:  formatSleep(slp),
		Metadata: map[string]any{
			"date":             date,
			"sleep_score":      slp.Score.StageSummary.TotalSleepNeedScore,
			"total_sleep_ms":   slp.Score.StageSummary.TotalSleepMilli,
			"sleep_efficiency": slp.Score.SleepEfficiencyPercentage,
		},
		SourceTimestamp: start.UTC(),
	}
}

// workoutToItem maps one workout, keyed by its API identifier.
func workoutToItem(w workoutRecord) domain.RawItem {
	date := w.Start.UTC().Format("2006-01-02")
	return domain.RawItem{
		SourceID: fmt.Sprintf("workout_%d", w.ID),
		ItemType: "whoop_workout",
		Title:    "Workout - " + date,
		Content:  formatWorkout(w),
		Metadata: map[string]any{
			"date":         date,
			"strain_score": w.Score.Strain,
			"sport_id":     w.SportID,
			"workout_id":   w.ID,
		},
		SourceTimestamp: w.Start.UTC(),
	}
}

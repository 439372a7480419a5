package gmail

import (
	"strconv"
	"strings"

	"github.com/alcove-dev/alcove/internal/core/domain"
)

// Default fetch window and page sizing.
const (
	DefaultDaysBack   = 7
	DefaultMaxResults = 100
	maxPageSize       = 500
)

// Config holds the Gmail adapter's parsed configuration.
type Config struct {
	// LabelIDs limits fetching to specific label IDs (optional).
	LabelIDs []string
	// Query is a Gmail search query; when set it replaces the
	// date-based default.
	Query string
	// MaxResults caps the total number of messages fetched per run.
	// Zero or negative means unlimited.
	MaxResults int64
	// DaysBack bounds the lookback window when no since hint exists.
	DaysBack int
}

// ParseConfig extracts the adapter configuration from the plugin's
// config section. Unparseable values fall back to defaults.
func ParseConfig(cfg domain.PluginConfig) *Config {
	parsed := &Config{
		MaxResults: DefaultMaxResults,
		DaysBack:   DefaultDaysBack,
	}

	if val := cfg["label_ids"]; val != "" {
		parsed.LabelIDs = strings.Split(val, ",")
		for i := range parsed.LabelIDs {
			parsed.LabelIDs[i] = strings.TrimSpace(parsed.LabelIDs[i])
		}
	}

	parsed.Query = cfg["query"]

	if val := cfg["max_results"]; val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			parsed.MaxResults = n
		}
	}

	if val := cfg["days_back"]; val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			parsed.DaysBack = n
		}
	}

	return parsed
}

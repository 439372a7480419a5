package domain

// ConfigOption describes one recognised plugin configuration option.
// The core validates presence of required options before invoking fetch
// but never interprets their semantics.
type ConfigOption struct {
	// Type is the option value type ("string", "int", "bool").
	Type string

	// Default is the rendered default value, informational for UIs.
	Default string

	// Description states the option's effect, e.g.
	// "limits lookback window" for days_back.
	Description string

	// Required marks options that must be present before fetch.
	Required bool
}

// ConfigSchema maps option names to their declarations.
type ConfigSchema map[string]ConfigOption

// PluginConfig holds a plugin's configured option values.
// Values are strings parsed by the plugin itself, matching how the
// config file stores them.
type PluginConfig map[string]string

// PluginStatus is the caller-visible state of a configured plugin.
type PluginStatus struct {
	// Name is the plugin identifier.
	Name string

	// Enabled is the plugin's enabled flag from configuration.
	Enabled bool

	// RequiresAuth is true for plugins backed by OAuth credentials.
	RequiresAuth bool

	// AuthState is the credential lifecycle state. AuthStateAuthenticated
	// for no-auth plugins so UIs need no special casing.
	AuthState AuthState

	// LastRun is the most recent import run for the plugin, if any.
	LastRun *ImportRun
}

// Stats summarises the store contents for the control plane.
type Stats struct {
	// TotalRecords is the number of stored records.
	TotalRecords int

	// EmbeddedRecords is the number of records carrying a current embedding.
	EmbeddedRecords int

	// RecordsByPlugin maps plugin name to its record count.
	RecordsByPlugin map[string]int
}

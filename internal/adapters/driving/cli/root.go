// Package cli implements the cobra command surface. Commands are thin:
// they parse flags, call the core services, and render output.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/alcove-dev/alcove/internal/adapters/driving/watch"
	"github.com/alcove-dev/alcove/internal/core/ports/driven"
	"github.com/alcove-dev/alcove/internal/core/ports/driving"
	"github.com/alcove-dev/alcove/internal/core/services"
	"github.com/alcove-dev/alcove/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Injected services. Set by Execute before any command runs; commands
// nil-check the ones they need so a partially wired binary degrades
// with a clear message instead of a panic.
var (
	importerService driving.Importer
	searchService   driving.SearchService
	authService     driving.AuthService
	pluginService   driving.PluginService
	embedderService *services.Embedder
	chatService     driven.ChatService
	scheduler       *services.Scheduler
	watcher         *watch.Watcher
	configStore     driven.ConfigStore
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "alcove",
	Short: "Personal data vault with semantic search",
	Long: `Alcove imports your personal data (mail, health metrics, tasks,
dropped files) into a local store and answers natural-language questions
over it using embedding-based semantic search.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug output")
}

// Services bundles everything the commands need.
type Services struct {
	Importer  driving.Importer
	Search    driving.SearchService
	Auth      driving.AuthService
	Plugins   driving.PluginService
	Embedder  *services.Embedder
	Chat      driven.ChatService
	Scheduler *services.Scheduler
	Watcher   *watch.Watcher
	Config    driven.ConfigStore
}

// Execute wires the services into the command tree and runs it.
func Execute(svc Services) error {
	importerService = svc.Importer
	searchService = svc.Search
	authService = svc.Auth
	pluginService = svc.Plugins
	embedderService = svc.Embedder
	chatService = svc.Chat
	scheduler = svc.Scheduler
	watcher = svc.Watcher
	configStore = svc.Config

	return rootCmd.Execute()
}

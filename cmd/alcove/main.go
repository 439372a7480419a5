// Command alcove is the personal data vault CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alcove-dev/alcove/internal/adapters/driven/config/file"
	"github.com/alcove-dev/alcove/internal/adapters/driven/embedding/ollama"
	embeddingopenai "github.com/alcove-dev/alcove/internal/adapters/driven/embedding/openai"
	llmopenai "github.com/alcove-dev/alcove/internal/adapters/driven/llm/openai"
	"github.com/alcove-dev/alcove/internal/adapters/driven/oauth"
	"github.com/alcove-dev/alcove/internal/adapters/driven/storage/sqlite"
	"github.com/alcove-dev/alcove/internal/adapters/driving/cli"
	drivingoauth "github.com/alcove-dev/alcove/internal/adapters/driving/oauth"
	"github.com/alcove-dev/alcove/internal/adapters/driving/watch"
	"github.com/alcove-dev/alcove/internal/core/ports/driven"
	"github.com/alcove-dev/alcove/internal/core/services"
	"github.com/alcove-dev/alcove/internal/logger"
	"github.com/alcove-dev/alcove/internal/plugins/fileupload"
	"github.com/alcove-dev/alcove/internal/plugins/gmail"
	"github.com/alcove-dev/alcove/internal/plugins/ticktick"
	"github.com/alcove-dev/alcove/internal/plugins/whoop"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	config, err := file.NewConfigStore(os.Getenv("ALCOVE_CONFIG_DIR"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := sqlite.NewStore(config.GetString("storage.data_dir"))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	// Runs left open by a crashed process are failed, never resumed.
	if n, err := store.ImportRunStore().FailAbandoned(context.Background()); err == nil && n > 0 {
		logger.Warn("marked %d abandoned import runs as failed", n)
	}

	auth := services.NewOAuthManager(store.CredentialStore(), oauth.NewExchanger(), oauthApps(config))

	registry := services.NewRegistry()
	registry.Register(gmail.New(auth))
	registry.Register(whoop.New(auth))
	registry.Register(ticktick.New(auth))
	registry.Register(fileupload.New(config))

	embeddingSvc := newEmbeddingService(config)

	var embedder *services.Embedder
	if embeddingSvc != nil {
		embedder = services.NewEmbedder(store.RecordStore(), embeddingSvc)
	}

	model := ""
	if embeddingSvc != nil {
		model = embeddingSvc.ModelName()
	}

	normalizer := services.NewNormalizer(store.RecordStore())
	importer := services.NewImporter(registry, config, store.ImportRunStore(), normalizer, embedder)
	search := services.NewSearchEngine(store.RecordStore(), embeddingSvc)
	plugins := services.NewPluginManager(registry, config, store.RecordStore(), store.ImportRunStore(), auth, model)

	interval := time.Duration(config.GetInt("import.interval_hours")) * time.Hour
	scheduler := services.NewScheduler(importer, interval)

	var watcher *watch.Watcher
	if dir := config.PluginSection("fileupload")["upload_dir"]; dir != "" {
		watcher = watch.New(importer, "fileupload", dir, 0)
	}

	chat := newChatService(config)
	if chat != nil {
		defer chat.Close()
	}

	return cli.Execute(cli.Services{
		Importer:  importer,
		Search:    search,
		Auth:      auth,
		Plugins:   plugins,
		Embedder:  embedder,
		Chat:      chat,
		Scheduler: scheduler,
		Watcher:   watcher,
		Config:    config,
	})
}

// oauthApps builds the per-plugin OAuth client configuration from the
// config file. Plugins without a configured client_id are left out; the
// auth service rejects StartAuth for them with a clear error.
func oauthApps(config driven.ConfigStore) map[string]driven.OAuthApp {
	redirectURI := fmt.Sprintf("http://localhost:%d/callback", drivingoauth.DefaultPort)

	endpoints := map[string]driven.OAuthApp{
		"gmail": {
			AuthURL:  "https://accounts.google.com/o/oauth2/v2/auth",
			TokenURL: "https://oauth2.googleapis.com/token",
			Scopes:   []string{"https://www.googleapis.com/auth/gmail.readonly"},
		},
		"whoop": {
			AuthURL:  "https://api.prod.whoop.com/oauth/oauth2/auth",
			TokenURL: "https://api.prod.whoop.com/oauth/oauth2/token",
			Scopes: []string{
				"offline", "read:profile", "read:recovery", "read:sleep", "read:workout",
			},
		},
		"ticktick": {
			AuthURL:  "https://ticktick.com/oauth/authorize",
			TokenURL: "https://ticktick.com/oauth/token",
			Scopes:   []string{"tasks:read"},
		},
	}

	apps := make(map[string]driven.OAuthApp)
	for name, app := range endpoints {
		section := config.PluginSection(name)
		if section["client_id"] == "" {
			continue
		}
		app.ClientID = section["client_id"]
		app.ClientSecret = section["client_secret"]
		app.RedirectURI = redirectURI
		apps[name] = app
	}
	return apps
}

// newEmbeddingService selects the embedding provider from configuration.
// Returns nil when none is usable; import still works, search and embed
// report the embedding engine as unavailable.
func newEmbeddingService(config driven.ConfigStore) driven.EmbeddingService {
	provider := config.GetString("embedding.provider")
	if provider == "" {
		provider = "openai"
	}

	switch provider {
	case "openai":
		svc, err := embeddingopenai.NewService(embeddingopenai.Config{
			APIKey:  config.GetString("embedding.api_key"),
			BaseURL: config.GetString("embedding.base_url"),
			Model:   config.GetString("embedding.model"),
		})
		if err != nil {
			logger.Warn("embedding disabled: %v", err)
			return nil
		}
		return svc
	case "ollama":
		return ollama.NewService(ollama.Config{
			BaseURL: config.GetString("embedding.base_url"),
			Model:   config.GetString("embedding.model"),
		})
	default:
		logger.Warn("unknown embedding provider %q, embedding disabled", provider)
		return nil
	}
}

// newChatService builds the chat client when an API key is configured.
func newChatService(config driven.ConfigStore) driven.ChatService {
	apiKey := config.GetString("llm.api_key")
	if apiKey == "" {
		return nil
	}

	client, err := llmopenai.NewClient(llmopenai.Config{
		APIKey:  apiKey,
		BaseURL: config.GetString("llm.base_url"),
		Model:   config.GetString("llm.model"),
	})
	if err != nil {
		logger.Warn("chat disabled: %v", err)
		return nil
	}
	return client
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alcove-dev/alcove/internal/adapters/driving/oauth"
)

// authTimeout bounds how long we wait for the user to finish the
// provider's consent screen.
const authTimeout = 3 * time.Minute

var authCmd = &cobra.Command{
	Use:   "auth [plugin]",
	Short: "Authorize a plugin with its provider",
	Long: `Starts the OAuth flow for a plugin. A browser window opens on the
provider's consent screen; the callback is captured by a temporary local
server and the resulting tokens are stored.

The plugin's client_id and client_secret must be configured first, e.g.:

  [plugins.gmail]
  client_id = "..."
  client_secret = "..."`,
	Args: cobra.ExactArgs(1),
	RunE: runAuth,
}

var authStatusCmd = &cobra.Command{
	Use:   "status [plugin]",
	Short: "Show a plugin's credential state",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuthStatus,
}

func init() {
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuth(cmd *cobra.Command, args []string) error {
	if authService == nil {
		return errors.New("auth service not configured")
	}

	plugin := args[0]
	ctx := context.Background()

	authURL, state, err := authService.StartAuth(ctx, plugin)
	if err != nil {
		return fmt.Errorf("start authorization: %w", err)
	}

	server := oauth.NewCallbackServer(oauth.DefaultPort, state)
	if err := server.Start(); err != nil {
		return fmt.Errorf("start callback server: %w", err)
	}
	defer server.Stop()

	cmd.Println("Opening browser for authorization...")
	cmd.Printf("If the browser does not open, visit:\n\n  %s\n\n", authURL)
	if err := oauth.OpenBrowser(authURL); err != nil {
		cmd.Printf("Could not open browser: %v\n", err)
	}

	code, err := server.WaitForCode(authTimeout)
	if err != nil {
		return fmt.Errorf("authorization callback: %w", err)
	}

	if err := authService.CompleteAuth(ctx, plugin, state, code); err != nil {
		return fmt.Errorf("complete authorization: %w", err)
	}

	cmd.Printf("%s authorized.\n", plugin)
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	if authService == nil {
		return errors.New("auth service not configured")
	}

	state := authService.State(context.Background(), args[0])
	cmd.Printf("%s: %s\n", args[0], state)
	return nil
}

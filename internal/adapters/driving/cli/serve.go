package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run scheduled imports until interrupted",
	Long: `Runs the import scheduler in the foreground. Enabled plugins are
imported on the configured interval, and the file upload directory is
watched for new files when configured. Stop with Ctrl-C.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if scheduler == nil {
		return errors.New("scheduler not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scheduler.Start(ctx)
	defer scheduler.Stop()

	if watcher != nil {
		if err := watcher.Start(ctx); err != nil {
			cmd.Printf("File watch disabled: %v\n", err)
		} else {
			defer watcher.Stop()
		}
	}

	cmd.Println("Scheduler running. Press Ctrl-C to stop.")
	<-ctx.Done()
	cmd.Println("Shutting down.")
	return nil
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "Inspect configured plugins",
}

var pluginsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered plugins and their state",
	RunE:  runPluginsList,
}

var pluginsTestCmd = &cobra.Command{
	Use:   "test [plugin]",
	Short: "Check connectivity for a plugin",
	Args:  cobra.ExactArgs(1),
	RunE:  runPluginsTest,
}

var pluginsSchemaCmd = &cobra.Command{
	Use:   "schema [plugin]",
	Short: "Show a plugin's configuration options",
	Args:  cobra.ExactArgs(1),
	RunE:  runPluginsSchema,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show record store statistics",
	RunE:  runStats,
}

func init() {
	pluginsCmd.AddCommand(pluginsListCmd)
	pluginsCmd.AddCommand(pluginsTestCmd)
	pluginsCmd.AddCommand(pluginsSchemaCmd)
	rootCmd.AddCommand(pluginsCmd)
	rootCmd.AddCommand(statsCmd)
}

func runPluginsList(cmd *cobra.Command, _ []string) error {
	if pluginService == nil {
		return errors.New("plugin service not configured")
	}

	statuses, err := pluginService.List(context.Background())
	if err != nil {
		return fmt.Errorf("list plugins: %w", err)
	}

	for _, status := range statuses {
		enabled := "disabled"
		if status.Enabled {
			enabled = "enabled"
		}

		cmd.Printf("%s (%s)\n", status.Name, enabled)
		if status.RequiresAuth {
			cmd.Printf("  auth: %s\n", status.AuthState)
		}
		if status.LastRun != nil {
			cmd.Printf("  last run: %s at %s (%d imported)\n",
				status.LastRun.Status,
				status.LastRun.StartedAt.Format("2006-01-02 15:04"),
				status.LastRun.ItemsInserted)
		}
	}
	return nil
}

func runPluginsTest(cmd *cobra.Command, args []string) error {
	if pluginService == nil {
		return errors.New("plugin service not configured")
	}

	name := args[0]
	if err := pluginService.TestConnection(context.Background(), name); err != nil {
		return fmt.Errorf("connection check for %s failed: %w", name, err)
	}

	cmd.Printf("%s: connection OK\n", name)
	return nil
}

func runPluginsSchema(cmd *cobra.Command, args []string) error {
	if pluginService == nil {
		return errors.New("plugin service not configured")
	}

	name := args[0]
	schema, err := pluginService.Schema(context.Background(), name)
	if err != nil {
		return fmt.Errorf("schema for %s: %w", name, err)
	}

	keys := make([]string, 0, len(schema))
	for key := range schema {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	cmd.Printf("Configuration options for %s:\n", name)
	for _, key := range keys {
		opt := schema[key]
		required := ""
		if opt.Required {
			required = ", required"
		}
		cmd.Printf("  %s (%s%s)", key, opt.Type, required)
		if opt.Default != "" {
			cmd.Printf(" [default: %s]", opt.Default)
		}
		cmd.Println()
		if opt.Description != "" {
			cmd.Printf("      %s\n", opt.Description)
		}
	}
	return nil
}

func runStats(cmd *cobra.Command, _ []string) error {
	if pluginService == nil {
		return errors.New("plugin service not configured")
	}

	stats, err := pluginService.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}

	cmd.Printf("Records: %d total, %d embedded\n", stats.TotalRecords, stats.EmbeddedRecords)

	names := make([]string, 0, len(stats.RecordsByPlugin))
	for name := range stats.RecordsByPlugin {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cmd.Printf("  %s: %d\n", name, stats.RecordsByPlugin[name])
	}
	return nil
}

// Package fileupload implements the no-auth local drop-directory
// adapter. Text files placed in the configured directory are imported
// as records; the file name is the stable source identifier.
package fileupload

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alcove-dev/alcove/internal/core/domain"
	"github.com/alcove-dev/alcove/internal/core/ports/driven"
	"github.com/alcove-dev/alcove/internal/logger"
)

// Ensure Plugin implements the interface. The source needs no
// authentication, so AuthAwarePlugin is deliberately not implemented.
var _ driven.Plugin = (*Plugin)(nil)

// maxFileBytes bounds one imported file.
const maxFileBytes = 1 << 20 // 1 MiB

// textExtensions lists the file types imported as text.
var textExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".json":     true,
	".log":      true,
}

// Plugin imports text files from a local drop directory.
type Plugin struct {
	config driven.ConfigStore
}

// New creates the file upload plugin. The config store backs the
// connection check; fetch config arrives per call like any plugin.
func New(config driven.ConfigStore) *Plugin {
	return &Plugin{config: config}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "fileupload"
}

// ConfigSchema declares the recognised configuration options.
func (p *Plugin) ConfigSchema() domain.ConfigSchema {
	return domain.ConfigSchema{
		"upload_dir": {
			Type:        "string",
			Description: "directory scanned for dropped files",
			Required:    true,
		},
	}
}

// TestConnection verifies the drop directory exists and is readable.
func (p *Plugin) TestConnection(_ context.Context) error {
	dir := p.config.PluginSection(p.Name())["upload_dir"]
	if dir == "" {
		return fmt.Errorf("%w: upload_dir is not set", domain.ErrValidation)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("upload dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("upload dir %s is not a directory", dir)
	}
	return nil
}

// Fetch walks the drop directory and emits one item per text file.
// Files older than the since hint are skipped; dedup makes the overlap
// from re-scans safe.
func (p *Plugin) Fetch(ctx context.Context, cfg domain.PluginConfig, since time.Time) (<-chan domain.RawItem, <-chan error) {
	itemsCh := make(chan domain.RawItem)
	errsCh := make(chan error, 1)

	go func() {
		defer close(itemsCh)
		defer close(errsCh)

		dir := cfg["upload_dir"]
		entries, err := listFiles(dir)
		if err != nil {
			errsCh <- err
			return
		}
		logger.Debug("fileupload: %d candidate files in %s", len(entries), dir)

		for _, entry := range entries {
			select {
			case <-ctx.Done():
				return
			default:
			}

			info, err := entry.Info()
			if err != nil {
				continue
			}
			if !since.IsZero() && info.ModTime().Before(since) {
				continue
			}

			item, err := fileToItem(dir, entry.Name(), info)
			if err != nil {
				logger.Debug("fileupload: skipping %s: %v", entry.Name(), err)
				continue
			}

			select {
			case <-ctx.Done():
				return
			case itemsCh <- item:
			}
		}
	}()

	return itemsCh, errsCh
}

// listFiles returns the importable entries of the drop directory.
func listFiles(dir string) ([]fs.DirEntry, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: upload_dir is not set", domain.ErrValidation)
	}

	all, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read upload dir: %w", err)
	}

	var entries []fs.DirEntry
	for _, entry := range all {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if !textExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// fileToItem reads one file into the raw item shape.
func fileToItem(dir, name string, info fs.FileInfo) (domain.RawItem, error) {
	if info.Size() > maxFileBytes {
		return domain.RawItem{}, fmt.Errorf("file exceeds %d bytes", maxFileBytes)
	}

	content, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return domain.RawItem{}, fmt.Errorf("read file: %w", err)
	}

	title := strings.TrimSuffix(name, filepath.Ext(name))
	return domain.RawItem{
		SourceID: name,
		ItemType: "document",
		Title:    title,
		Content:  string(content),
		Metadata: map[string]any{
			"filename":  name,
			"extension": strings.ToLower(filepath.Ext(name)),
			"size":      info.Size(),
		},
		SourceTimestamp: info.ModTime().UTC(),
	}, nil
}

package fileupload

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alcove-dev/alcove/internal/adapters/driven/storage/memory"
	"github.com/alcove-dev/alcove/internal/core/domain"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func drain(t *testing.T, p *Plugin, cfg domain.PluginConfig, since time.Time) ([]domain.RawItem, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	itemsCh, errsCh := p.Fetch(ctx, cfg, since)

	var items []domain.RawItem
	for itemsCh != nil || errsCh != nil {
		select {
		case item, ok := <-itemsCh:
			if !ok {
				itemsCh = nil
				continue
			}
			items = append(items, item)
		case err, ok := <-errsCh:
			if !ok {
				errsCh = nil
				continue
			}
			if err != nil {
				return items, err
			}
		}
	}
	return items, nil
}

func testPlugin(uploadDir string) *Plugin {
	return New(memory.NewConfigStore(map[string]any{
		"plugins.fileupload.upload_dir": uploadDir,
	}))
}

func TestFetch_ImportsTextFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.md", "# Meeting notes\n\ndiscussed roadmap")
	writeFile(t, dir, "todo.txt", "buy milk")
	writeFile(t, dir, "image.png", "binary")
	writeFile(t, dir, ".hidden.txt", "skip me")

	items, err := drain(t, testPlugin(dir), domain.PluginConfig{"upload_dir": dir}, time.Time{})
	require.NoError(t, err)
	require.Len(t, items, 2)

	byID := map[string]domain.RawItem{}
	for _, item := range items {
		byID[item.SourceID] = item
	}

	notes := byID["notes.md"]
	assert.Equal(t, "document", notes.ItemType)
	assert.Equal(t, "notes", notes.Title)
	assert.Contains(t, notes.Content, "discussed roadmap")
	assert.Equal(t, ".md", notes.Metadata["extension"])
	assert.WithinDuration(t, time.Now().UTC(), notes.SourceTimestamp, time.Minute)

	_, imported := byID["image.png"]
	assert.False(t, imported, "non-text files are skipped")
}

func TestFetch_SinceHintSkipsOldFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "old.txt", "old")
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "old.txt"), old, old))
	writeFile(t, dir, "new.txt", "new")

	items, err := drain(t, testPlugin(dir), domain.PluginConfig{"upload_dir": dir}, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "new.txt", items[0].SourceID)
}

func TestFetch_MissingDir(t *testing.T) {
	_, err := drain(t, testPlugin(""), domain.PluginConfig{"upload_dir": filepath.Join(t.TempDir(), "absent")}, time.Time{})
	require.Error(t, err)
}

func TestFetch_UnsetDirFailsValidation(t *testing.T) {
	_, err := drain(t, testPlugin(""), domain.PluginConfig{}, time.Time{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestFetch_SkipsOversizedFiles(t *testing.T) {
	dir := t.TempDir()
	big := make([]byte, maxFileBytes+1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "big.txt"), big, 0o644))
	writeFile(t, dir, "small.txt", "fits")

	items, err := drain(t, testPlugin(dir), domain.PluginConfig{"upload_dir": dir}, time.Time{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "small.txt", items[0].SourceID)
}

func TestTestConnection(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, testPlugin(dir).TestConnection(context.Background()))

	assert.Error(t, testPlugin(filepath.Join(dir, "absent")).TestConnection(context.Background()))

	err := testPlugin("").TestConnection(context.Background())
	assert.ErrorIs(t, err, domain.ErrValidation)
}

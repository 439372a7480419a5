package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alcove-dev/alcove/internal/core/domain"
)

// watchMockImporter records every triggered run.
type watchMockImporter struct {
	mu       sync.Mutex
	contexts []domain.RunContext
}

func (m *watchMockImporter) Run(_ context.Context, rc domain.RunContext) ([]domain.ImportRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contexts = append(m.contexts, rc)
	return nil, nil
}

func (m *watchMockImporter) Runs(_ context.Context, _ string, _ int) ([]domain.ImportRun, error) {
	return nil, nil
}

func (m *watchMockImporter) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.contexts)
}

func (m *watchMockImporter) last() domain.RunContext {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.contexts[len(m.contexts)-1]
}

func TestWatcher_TriggersTargetedRun(t *testing.T) {
	dir := t.TempDir()
	importer := &watchMockImporter{}
	w := New(importer, "fileupload", dir, 50*time.Millisecond)

	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "drop.txt"), []byte("hi"), 0o644))

	assert.Eventually(t, func() bool { return importer.count() >= 1 }, 3*time.Second, 10*time.Millisecond)

	rc := importer.last()
	assert.Equal(t, []string{"fileupload"}, rc.Plugins)
	assert.Equal(t, domain.TriggerWatch, rc.Trigger)
}

func TestWatcher_DebounceCoalescesBursts(t *testing.T) {
	dir := t.TempDir()
	importer := &watchMockImporter{}
	w := New(importer, "fileupload", dir, 200*time.Millisecond)

	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	for i := 0; i < 5; i++ {
		name := filepath.Join(dir, "f"+string(rune('a'+i))+".txt")
		require.NoError(t, os.WriteFile(name, []byte("x"), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return importer.count() >= 1 }, 3*time.Second, 10*time.Millisecond)

	// The burst lands within one debounce window.
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 1, importer.count())
}

func TestWatcher_StopHaltsTriggers(t *testing.T) {
	dir := t.TempDir()
	importer := &watchMockImporter{}
	w := New(importer, "fileupload", dir, 50*time.Millisecond)

	require.NoError(t, w.Start(context.Background()))
	w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "late.txt"), []byte("x"), 0o644))
	time.Sleep(200 * time.Millisecond)
	assert.Zero(t, importer.count())
}

func TestWatcher_StartIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	w := New(&watchMockImporter{}, "fileupload", dir, 50*time.Millisecond)

	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Start(context.Background()))
	w.Stop()
}

func TestWatcher_MissingDirFails(t *testing.T) {
	w := New(&watchMockImporter{}, "fileupload", filepath.Join(t.TempDir(), "absent"), 0)
	assert.Error(t, w.Start(context.Background()))
}

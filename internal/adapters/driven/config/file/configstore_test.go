package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("embedding.provider", "ollama"))

	val, ok := store.Get("embedding.provider")
	assert.True(t, ok)
	assert.Equal(t, "ollama", val)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("embedding.model", "nomic-embed-text"))
	require.NoError(t, store.Set("plugins.whoop.days_back", 30))
	require.NoError(t, store.Set("plugins.gmail.enabled", true))

	assert.Equal(t, "nomic-embed-text", store.GetString("embedding.model"))
	assert.Equal(t, 30, store.GetInt("plugins.whoop.days_back"))
	assert.True(t, store.GetBool("plugins.gmail.enabled"))

	// Missing keys yield zero values.
	assert.Equal(t, "", store.GetString("nonexistent"))
	assert.Equal(t, 0, store.GetInt("nonexistent"))
	assert.False(t, store.GetBool("nonexistent"))

	// Type mismatch yields zero values too.
	assert.Equal(t, "", store.GetString("plugins.whoop.days_back"))
	assert.Equal(t, 0, store.GetInt("embedding.model"))
}

func TestConfigStore_PersistsAcrossLoads(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store.Set("plugins.gmail.enabled", true))
	require.NoError(t, store.Set("plugins.gmail.query", "is:important"))

	reopened, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.True(t, reopened.GetBool("plugins.gmail.enabled"))
	assert.Equal(t, "is:important", reopened.GetString("plugins.gmail.query"))
}

func TestConfigStore_LoadsNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
[plugins.whoop]
enabled = true
days_back = 14

[plugins.gmail]
enabled = false
query = "label:inbox"
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.True(t, store.GetBool("plugins.whoop.enabled"))
	assert.Equal(t, 14, store.GetInt("plugins.whoop.days_back"))
	assert.Equal(t, "label:inbox", store.GetString("plugins.gmail.query"))
}

func TestConfigStore_PluginSection(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("plugins.whoop.enabled", true))
	require.NoError(t, store.Set("plugins.whoop.days_back", 14))
	require.NoError(t, store.Set("plugins.whoop.client_id", "abc"))
	require.NoError(t, store.Set("plugins.gmail.query", "label:inbox"))

	section := store.PluginSection("whoop")
	assert.Equal(t, map[string]string{
		"enabled":   "true",
		"days_back": "14",
		"client_id": "abc",
	}, section)

	assert.Empty(t, store.PluginSection("ticktick"))
}

func TestConfigStore_SavedFileStaysNested(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("plugins.gmail.enabled", true))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[plugins")
	assert.NotContains(t, string(data), `"plugins.gmail.enabled"`)
}

func TestConfigStore_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), nil, 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	_, ok := store.Get("anything")
	assert.False(t, ok)
}

func TestFlattenUnflattenRoundTrip(t *testing.T) {
	nested := map[string]any{
		"embedding": map[string]any{
			"provider": "ollama",
			"model":    "nomic-embed-text",
		},
		"plugins": map[string]any{
			"whoop": map[string]any{
				"enabled": true,
			},
		},
		"verbose": false,
	}

	flat := flattenMap(nested, "")
	assert.Equal(t, "ollama", flat["embedding.provider"])
	assert.Equal(t, true, flat["plugins.whoop.enabled"])
	assert.Equal(t, false, flat["verbose"])

	assert.Equal(t, nested, unflattenMap(flat))
}

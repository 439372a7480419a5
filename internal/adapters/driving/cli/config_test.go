package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alcove-dev/alcove/internal/adapters/driven/storage/memory"
)

func TestRunConfigSetAndGet(t *testing.T) {
	configStore = memory.NewConfigStore(nil)
	defer func() { configStore = nil }()

	cmd, buf := newTestCmd()
	require.NoError(t, runConfigSet(cmd, []string{"plugins.gmail.enabled", "true"}))
	assert.Contains(t, buf.String(), "plugins.gmail.enabled updated")

	enabled := configStore.GetBool("plugins.gmail.enabled")
	assert.True(t, enabled, "true is stored as a boolean")

	cmd, buf = newTestCmd()
	require.NoError(t, runConfigGet(cmd, []string{"plugins.gmail.enabled"}))
	assert.Contains(t, buf.String(), "plugins.gmail.enabled = true")
}

func TestRunConfigGet_Unset(t *testing.T) {
	configStore = memory.NewConfigStore(nil)
	defer func() { configStore = nil }()

	cmd, buf := newTestCmd()
	require.NoError(t, runConfigGet(cmd, []string{"llm.model"}))
	assert.Contains(t, buf.String(), "llm.model is not set")
}

func TestRunConfigGet_MasksSecrets(t *testing.T) {
	configStore = memory.NewConfigStore(map[string]any{
		"llm.api_key": "sk-secret-value-1234",
	})
	defer func() { configStore = nil }()

	cmd, buf := newTestCmd()
	require.NoError(t, runConfigGet(cmd, []string{"llm.api_key"}))

	out := buf.String()
	assert.Contains(t, out, "1234")
	assert.NotContains(t, out, "sk-secret-value")
}

func TestMaskValue(t *testing.T) {
	assert.Equal(t, "****", maskValue("abc"))
	assert.Equal(t, "********5678", maskValue("sk-12345678"))
}

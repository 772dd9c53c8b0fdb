package cli

import (
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useTempConfigHome points XDG at a throwaway directory. xdg caches paths
// at init, so it must be reloaded after the env changes.
func useTempConfigHome(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	xdg.Reload()
	t.Cleanup(xdg.Reload)
}

func TestLoadConfig_Defaults(t *testing.T) {
	useTempConfigHome(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultServerURL, cfg.ServerURL)
	assert.Empty(t, cfg.Token)
}

func TestConfigSaveAndLoad(t *testing.T) {
	useTempConfigHome(t)

	cfg := &Config{
		ServerURL: "https://registry.example.com",
		Token:     "claw_abc_def",
	}
	require.NoError(t, cfg.Save())

	loaded, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://registry.example.com", loaded.ServerURL)
	assert.Equal(t, "claw_abc_def", loaded.Token)
}

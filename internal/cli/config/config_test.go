package config

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steviee/assetguard/internal/state"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	viper.Reset()
	t.Cleanup(viper.Reset)
	return dir
}

func TestNewCommand(t *testing.T) {
	cmd := NewCommand()

	assert.Equal(t, "config", cmd.Use)
	assert.Equal(t, "Manage configuration", cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.NotEmpty(t, cmd.Example)
	assert.Contains(t, cmd.Aliases, "cfg")

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"show", "path"}, names)
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		set      map[string]string
		wantURL  string
		wantBase func(dir string) string
	}{
		{
			name:     "defaults use the XDG data directory",
			wantURL:  state.DefaultConfig().Distribution.URL,
			wantBase: func(dir string) string { return filepath.Join(dir, "data", state.AppDirName) },
		},
		{
			name:     "overrides win over the file",
			set:      map[string]string{KeyBaseDir: "/srv/games", KeyDistributionURL: "http://example.invalid/d.json"},
			wantURL:  "http://example.invalid/d.json",
			wantBase: func(string) string { return "/srv/games" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			for k, v := range tt.set {
				viper.Set(k, v)
			}

			cfg, layout, err := Load(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, cfg.Distribution.URL)
			assert.Equal(t, tt.wantBase(dir), layout.Base)
		})
	}
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("distribution:\n  url: http://example.invalid/custom.json\n"), 0644))
	viper.Set(KeyConfig, path)

	cfg, _, err := Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "http://example.invalid/custom.json", cfg.Distribution.URL)
	assert.NoFileExists(t, filepath.Join(dir, "config", state.AppDirName, state.ConfigFileName))
}

func TestShowCommand(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		isolate(t)
		var out bytes.Buffer
		require.NoError(t, runShow(context.Background(), &out))
		assert.Contains(t, out.String(), "distribution:")
		assert.Contains(t, out.String(), "asset_validators: 10")
	})

	t.Run("json", func(t *testing.T) {
		isolate(t)
		viper.Set(KeyJSON, true)

		var out bytes.Buffer
		require.NoError(t, runShow(context.Background(), &out))

		var result map[string]interface{}
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		assert.Equal(t, "success", result["status"])
	})
}

func TestPathCommand(t *testing.T) {
	dir := isolate(t)
	cmd := NewCommand()
	cmd.SetArgs([]string{"path"})

	var out bytes.Buffer
	cmd.SetOut(&out)
	require.NoError(t, cmd.Execute())
	assert.Equal(t, filepath.Join(dir, "config", state.AppDirName, state.ConfigFileName)+"\n", out.String())
}

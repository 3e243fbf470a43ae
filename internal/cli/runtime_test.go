package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	goruntime "runtime"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steviee/assetguard/internal/cli/config"
	"github.com/steviee/assetguard/internal/extract"
	"github.com/steviee/assetguard/internal/state"
)

func TestRunRuntime_Installed(t *testing.T) {
	dir := isolate(t)
	cfg := state.DefaultConfig()
	cfg.Runtime.AdoptiumURL = "http://127.0.0.1:1"
	require.NoError(t, state.SaveConfig(context.Background(), cfg))

	layout := state.NewLayout(filepath.Join(dir, "data", state.AppDirName))
	exe := extract.JavaExecutable(filepath.Join(layout.RuntimeDir(), "jdk8u392-b08-jre"), goruntime.GOOS)
	require.NoError(t, state.AtomicWrite(exe, []byte("java"), 0755))

	t.Run("text", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, runRuntime(context.Background(), &out, 0))
		assert.Equal(t, exe+"\n", out.String())
	})

	t.Run("json", func(t *testing.T) {
		viper.Set(config.KeyJSON, true)
		defer viper.Set(config.KeyJSON, false)

		var out bytes.Buffer
		require.NoError(t, runRuntime(context.Background(), &out, 0))

		var result struct {
			Status string        `json:"status"`
			Data   RuntimeResult `json:"data"`
		}
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		assert.Equal(t, "success", result.Status)
		assert.Equal(t, exe, result.Data.JavaExec)
		assert.False(t, result.Data.Downloaded)
	})
}

func TestRunRuntime_Unreachable(t *testing.T) {
	isolate(t)
	cfg := state.DefaultConfig()
	cfg.Runtime.AdoptiumURL = "http://127.0.0.1:1"
	require.NoError(t, state.SaveConfig(context.Background(), cfg))

	var out bytes.Buffer
	err := runRuntime(context.Background(), &out, 17)
	require.Error(t, err)
	assert.Empty(t, out.String())
}

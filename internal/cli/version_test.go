package cli

import (
	"bytes"
	"encoding/json"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVersionCommand(t *testing.T) {
	cmd := NewVersionCommand("1.0.0", "abc123", "2025-11-05", "goreleaser")

	assert.Equal(t, "version", cmd.Use)
	assert.Equal(t, "Print version information", cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.NotEmpty(t, cmd.Example)
}

func TestVersionCommand_Output(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "text",
			args: []string{"version"},
			want: []string{
				"assetguard version 1.0.0\n",
				"Commit: abc123\n",
				"Built: 2025-11-05 by goreleaser\n",
				"Go: " + runtime.Version() + " " + runtime.GOOS + "/" + runtime.GOARCH + "\n",
			},
		},
		{
			name: "shorthand json flag off",
			args: []string{"--json=false", "version"},
			want: []string{"assetguard version 1.0.0\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			cmd := NewRootCommand("1.0.0", "abc123", "2025-11-05", "goreleaser")
			cmd.SetArgs(tt.args)

			var out bytes.Buffer
			cmd.SetOut(&out)
			cmd.SetErr(&out)

			require.NoError(t, cmd.Execute())
			for _, want := range tt.want {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}

func TestVersionCommand_JSON(t *testing.T) {
	isolate(t)
	cmd := NewRootCommand("1.0.0", "abc123", "2025-11-05", "goreleaser")
	cmd.SetArgs([]string{"--json", "version"})

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	require.NoError(t, cmd.Execute())

	var result struct {
		Status string      `json:"status"`
		Data   VersionInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, "success", result.Status)
	assert.Equal(t, VersionInfo{
		Version:   "1.0.0",
		Commit:    "abc123",
		Date:      "2025-11-05",
		BuiltBy:   "goreleaser",
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}, result.Data)
}

func TestVersionCommand_RejectsArgs(t *testing.T) {
	isolate(t)
	cmd := NewRootCommand("dev", "unknown", "unknown", "unknown")
	cmd.SetArgs([]string{"version", "extra"})

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	assert.Error(t, cmd.Execute())
}

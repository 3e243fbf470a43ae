package servers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/steviee/assetguard/internal/cli/config"
	"github.com/steviee/assetguard/internal/distribution"
)

// isJSONMode checks if JSON output mode is enabled
func isJSONMode() bool {
	return config.JSONMode()
}

// requireServerID validates that exactly one server id is provided
func requireServerID(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("server id is required\nUsage: %s\n\nRun '%s --help' for more information", cmd.UseLine(), cmd.CommandPath())
	}
	if len(args) > 1 {
		return fmt.Errorf("only one server id allowed, got: %v\nUsage: %s\n\nRun '%s --help' for more information", args, cmd.UseLine(), cmd.CommandPath())
	}
	return nil
}

// pullIndex loads the configuration and pulls the distribution index,
// falling back to the cached copy.
func pullIndex(ctx context.Context) (*distribution.Index, error) {
	cfg, layout, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}

	client, err := distribution.NewClient(&distribution.Config{
		URL:              cfg.Distribution.URL,
		Timeout:          cfg.Distribution.Timeout,
		SchemaConstraint: cfg.Distribution.SchemaConstraint,
		CachePath:        layout.DistributionPath(),
	})
	if err != nil {
		return nil, err
	}
	return client.Pull(ctx)
}

// Output is the JSON envelope of every command in this group
type Output struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
}

func writeJSON(stdout io.Writer, data interface{}) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(Output{Status: "success", Data: data})
}

// outputError prints err as JSON in JSON mode and returns it
func outputError(stdout io.Writer, jsonMode bool, err error) error {
	if jsonMode {
		_ = json.NewEncoder(stdout).Encode(Output{Status: "error", Error: err.Error()})
	}
	return err
}

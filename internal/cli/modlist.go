package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/steviee/assetguard/internal/cli/config"
	"github.com/steviee/assetguard/internal/guard"
)

// ModListResult is the output of the modlist command
type ModListResult struct {
	Server  string `json:"server"`
	Forge   string `json:"forge"`
	ModList string `json:"modList,omitempty"`
}

// NewModListCommand creates the modlist command
func NewModListCommand() *cobra.Command {
	var enable, disable []string

	cmd := &cobra.Command{
		Use:   "modlist [server-id]",
		Short: "Rewrite the Forge mod list of a server",
		Long: `Rewrite mods/mod_list.json of a server instance from the distribution.

The Forge jar must already be downloaded, e.g. by a previous validate run.
Minecraft 1.13 and newer do not use a mod list; nothing is written for them.`,
		Example: `  # Rewrite the mod list of the main server
  assetguard modlist

  # Rewrite it with an optional mod turned off
  assetguard modlist myserver-1.12.2 --disable com.example:shaders:2.1`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			serverID := ""
			if len(args) == 1 {
				serverID = args[0]
			}
			opts := validateOptions{serverID: serverID, enable: enable, disable: disable}
			return runModList(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringSliceVar(&enable, "enable", nil, "enable optional modules by id")
	cmd.Flags().StringSliceVar(&disable, "disable", nil, "disable optional modules by id")

	return cmd
}

func runModList(ctx context.Context, stdout io.Writer, opts validateOptions) error {
	jsonMode := config.JSONMode()

	cfg, layout, err := config.Load(ctx)
	if err != nil {
		return outputError(stdout, jsonMode, err)
	}

	gc := guard.FromState(cfg, layout)
	gc.Selection = opts.selection()

	g, err := guard.New(gc)
	if err != nil {
		return outputError(stdout, jsonMode, err)
	}

	server, err := g.LoadServer(ctx, opts.serverID)
	if err != nil {
		return outputError(stdout, jsonMode, err)
	}

	fd, err := g.LoadForgeData(server)
	if err != nil {
		return outputError(stdout, jsonMode, err)
	}

	path, err := g.WriteModList(server, fd)
	if err != nil {
		return outputError(stdout, jsonMode, err)
	}

	out := ModListResult{Server: server.ID, Forge: fd.ID, ModList: path}
	if jsonMode {
		return writeJSON(stdout, "success", out)
	}

	if path == "" {
		_, _ = fmt.Fprintf(stdout, "Minecraft %s does not use a mod list.\n", server.MinecraftVersion)
		return nil
	}
	_, _ = fmt.Fprintf(stdout, "Wrote %s\n", path)
	return nil
}

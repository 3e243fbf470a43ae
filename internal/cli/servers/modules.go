package servers

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/steviee/assetguard/internal/distribution"
)

// ModuleItem is a node of the module tree in JSON output
type ModuleItem struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Required bool         `json:"required"`
	Default  bool         `json:"default"`
	Size     int64        `json:"size"`
	Children []ModuleItem `json:"children,omitempty"`
}

// NewModulesCommand creates the servers modules subcommand
func NewModulesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "modules <server-id>",
		Short: "Show the module tree of a server",
		Example: `  # Show modules
  assetguard servers modules myserver-1.12.2`,
		Args: requireServerID,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModules(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}
}

func runModules(ctx context.Context, stdout io.Writer, serverID string) error {
	jsonMode := isJSONMode()

	index, err := pullIndex(ctx)
	if err != nil {
		return outputError(stdout, jsonMode, err)
	}
	server, err := index.Server(serverID)
	if err != nil {
		return outputError(stdout, jsonMode, err)
	}

	if jsonMode {
		return writeJSON(stdout, map[string]interface{}{"server": server.ID, "modules": moduleItems(server.Modules)})
	}

	_, _ = fmt.Fprintf(stdout, "%s (Minecraft %s)\n", server.ID, server.MinecraftVersion)
	writeTree(stdout, server.Modules, 1)
	return nil
}

func moduleItems(modules []*distribution.Module) []ModuleItem {
	items := make([]ModuleItem, 0, len(modules))
	for _, m := range modules {
		items = append(items, ModuleItem{
			ID:       m.ID,
			Type:     string(m.Type),
			Required: m.IsRequired(),
			Default:  m.EnabledByDefault(),
			Size:     m.Artifact.Size,
			Children: moduleItems(m.SubModules),
		})
	}
	return items
}

func writeTree(stdout io.Writer, modules []*distribution.Module, depth int) {
	for _, m := range modules {
		flag := ""
		if !m.IsRequired() {
			flag = " [optional, off]"
			if m.EnabledByDefault() {
				flag = " [optional, on]"
			}
		}
		_, _ = fmt.Fprintf(stdout, "%s%s  %s  %s%s\n",
			strings.Repeat("  ", depth), m.ID, m.Type, units.HumanSize(float64(m.Artifact.Size)), flag)
		writeTree(stdout, m.SubModules, depth+1)
	}
}

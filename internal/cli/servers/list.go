package servers

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/steviee/assetguard/internal/distribution"
)

// ServerItem is a server in list output
type ServerItem struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	MinecraftVersion string `json:"minecraftVersion"`
	Version          string `json:"version"`
	Modules          int    `json:"modules"`
	Main             bool   `json:"main"`
}

// NewListCommand creates the servers list subcommand
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List servers of the distribution",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		Example: `  # List servers
  assetguard servers list

  # JSON output for scripting
  assetguard servers list --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func runList(ctx context.Context, stdout io.Writer) error {
	jsonMode := isJSONMode()

	index, err := pullIndex(ctx)
	if err != nil {
		return outputError(stdout, jsonMode, err)
	}

	items := serverItems(index)
	if jsonMode {
		return writeJSON(stdout, map[string]interface{}{"servers": items, "count": len(items)})
	}
	return outputListTable(stdout, items)
}

func countModules(modules []*distribution.Module) int {
	n := 0
	for _, m := range modules {
		m.Walk(func(*distribution.Module) { n++ })
	}
	return n
}

func serverItems(index *distribution.Index) []ServerItem {
	main, _ := index.MainServer()
	items := make([]ServerItem, 0, len(index.Servers))
	for _, s := range index.Servers {
		items = append(items, ServerItem{
			ID:               s.ID,
			Name:             s.Name,
			MinecraftVersion: s.MinecraftVersion,
			Version:          s.Version,
			Modules:          countModules(s.Modules),
			Main:             s == main,
		})
	}
	return items
}

func outputListTable(stdout io.Writer, items []ServerItem) error {
	if len(items) == 0 {
		_, _ = fmt.Fprintln(stdout, "No servers in distribution.")
		return nil
	}

	idWidth := len("ID")
	nameWidth := len("NAME")
	for _, item := range items {
		if len(item.ID) > idWidth {
			idWidth = len(item.ID)
		}
		if len(item.Name) > nameWidth {
			nameWidth = len(item.Name)
		}
	}

	_, _ = fmt.Fprintf(stdout, "  %-*s  %-*s  %-9s  %7s\n", idWidth, "ID", nameWidth, "NAME", "MINECRAFT", "MODULES")
	for _, item := range items {
		marker := " "
		if item.Main {
			marker = "*"
		}
		_, _ = fmt.Fprintf(stdout, "%s %-*s  %-*s  %-9s  %7d\n", marker, idWidth, item.ID, nameWidth, item.Name, item.MinecraftVersion, item.Modules)
	}
	return nil
}

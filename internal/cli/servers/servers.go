// Package servers implements the servers command group, which inspects the
// servers of the distribution and the upstream version list.
package servers

import (
	"github.com/spf13/cobra"
)

// NewCommand creates the servers command group
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "servers",
		Short: "Inspect distribution servers",
		Long: `Inspect the servers declared by the distribution index.

Commands in this group list servers, show the module tree of a server and
list the Minecraft versions known upstream.`,
		Example: `  # List all servers
  assetguard servers list

  # Show the modules of a server
  assetguard servers modules myserver-1.12.2

  # List upstream Minecraft releases
  assetguard servers versions`,
		Aliases: []string{"server", "srv"},
	}

	cmd.AddCommand(NewListCommand())
	cmd.AddCommand(NewModulesCommand())
	cmd.AddCommand(NewVersionsCommand())

	return cmd
}

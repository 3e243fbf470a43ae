package servers

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/steviee/assetguard/internal/cli/config"
	"github.com/steviee/assetguard/internal/minecraft"
	"github.com/steviee/assetguard/internal/state"
)

// VersionsFlags holds the flags of the versions command
type VersionsFlags struct {
	Type      string
	Limit     int
	Installed bool
}

// VersionItem is a Minecraft version in versions output
type VersionItem struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	ReleaseTime string `json:"releaseTime"`
	Installed   bool   `json:"installed"`
}

// NewVersionsCommand creates the servers versions subcommand
func NewVersionsCommand() *cobra.Command {
	flags := &VersionsFlags{}

	cmd := &cobra.Command{
		Use:   "versions",
		Short: "List Minecraft versions known upstream",
		Long: `List Minecraft Java Edition versions from the version manifest.

Versions whose version data is already present in the game directory are
marked as installed. By default only releases are shown.`,
		Example: `  # List the latest 20 releases
  assetguard servers versions

  # List snapshots
  assetguard servers versions --type snapshot --limit 50

  # Only versions present in the game directory
  assetguard servers versions --type all --installed`,
		Aliases: []string{"list-remote"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersions(cmd.Context(), cmd.OutOrStdout(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.Type, "type", "release", "filter by type: release, snapshot, all")
	cmd.Flags().IntVar(&flags.Limit, "limit", 20, "limit number of results (0 for unlimited)")
	cmd.Flags().BoolVar(&flags.Installed, "installed", false, "only show installed versions")

	return cmd
}

func runVersions(ctx context.Context, stdout io.Writer, flags *VersionsFlags) error {
	jsonMode := isJSONMode()

	if flags.Type != "release" && flags.Type != "snapshot" && flags.Type != "all" {
		return outputError(stdout, jsonMode, fmt.Errorf("invalid type %q: must be release, snapshot, or all", flags.Type))
	}

	cfg, layout, err := config.Load(ctx)
	if err != nil {
		return outputError(stdout, jsonMode, err)
	}

	client := minecraft.NewClient(&minecraft.Config{
		ManifestURL: cfg.Minecraft.ManifestURL,
		Timeout:     cfg.Downloads.MetadataTimeout,
	})

	manifest, err := client.GetVersionManifest(ctx)
	if err != nil {
		return outputError(stdout, jsonMode, fmt.Errorf("fetch version manifest: %w", err))
	}

	items := versionItems(layout, minecraft.FilterVersions(manifest.Versions, flags.Type, 0), flags)

	if jsonMode {
		return writeJSON(stdout, map[string]interface{}{
			"latest": map[string]string{
				"release":  manifest.Latest.Release,
				"snapshot": manifest.Latest.Snapshot,
			},
			"versions": items,
			"count":    len(items),
			"total":    len(manifest.Versions),
		})
	}

	_, _ = fmt.Fprintf(stdout, "Latest release:  %s\n", manifest.Latest.Release)
	_, _ = fmt.Fprintf(stdout, "Latest snapshot: %s\n\n", manifest.Latest.Snapshot)
	return outputVersionsTable(stdout, items)
}

// versionItems marks installed versions and applies the installed filter
// and the limit.
func versionItems(layout state.Layout, versions []minecraft.VersionInfo, flags *VersionsFlags) []VersionItem {
	items := make([]VersionItem, 0, len(versions))
	for _, v := range versions {
		_, err := os.Stat(layout.VersionFile(v.ID, ".json"))
		installed := err == nil
		if flags.Installed && !installed {
			continue
		}

		items = append(items, VersionItem{
			ID:          v.ID,
			Type:        v.Type,
			ReleaseTime: v.ReleaseTime,
			Installed:   installed,
		})
		if flags.Limit > 0 && len(items) >= flags.Limit {
			break
		}
	}
	return items
}

func outputVersionsTable(stdout io.Writer, items []VersionItem) error {
	if len(items) == 0 {
		_, _ = fmt.Fprintln(stdout, "No matching versions.")
		return nil
	}

	idWidth := len("VERSION")
	for _, item := range items {
		if len(item.ID) > idWidth {
			idWidth = len(item.ID)
		}
	}

	_, _ = fmt.Fprintf(stdout, "%-*s  %-8s  %-10s  %s\n", idWidth, "VERSION", "TYPE", "RELEASED", "INSTALLED")
	for _, item := range items {
		installed := ""
		if item.Installed {
			installed = "yes"
		}
		_, _ = fmt.Fprintf(stdout, "%-*s  %-8s  %-10s  %s\n", idWidth, item.ID, item.Type, releaseDate(item.ReleaseTime), installed)
	}
	return nil
}

// releaseDate shortens an RFC 3339 timestamp to its date
func releaseDate(releaseTime string) string {
	t, err := time.Parse(time.RFC3339, releaseTime)
	if err != nil {
		return releaseTime
	}
	return t.Format("2006-01-02")
}

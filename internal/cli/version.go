package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
)

// VersionInfo contains version information for the application
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	BuiltBy   string `json:"built_by"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func newVersionInfo(version, commit, date, builtBy string) VersionInfo {
	return VersionInfo{
		Version:   version,
		Commit:    commit,
		Date:      date,
		BuiltBy:   builtBy,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// NewVersionCommand creates the version command
func NewVersionCommand(version, commit, date, builtBy string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print the assetguard version, the commit and date it was built from, and the platform it runs on.",
		Example: `  # Display version information
  assetguard version

  # Output in JSON format
  assetguard version --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := newVersionInfo(version, commit, date, builtBy)
			if IsJSONOutput() {
				return writeJSON(cmd.OutOrStdout(), "success", info)
			}
			return printVersionText(cmd.OutOrStdout(), info)
		},
	}
}

// printVersionText prints version information in human-readable format
func printVersionText(w io.Writer, info VersionInfo) error {
	_, err := fmt.Fprintf(w, "assetguard version %s\nCommit: %s\nBuilt: %s by %s\nGo: %s %s\n",
		info.Version, info.Commit, info.Date, info.BuiltBy, info.GoVersion, info.Platform)
	if err != nil {
		return fmt.Errorf("write version: %w", err)
	}
	return nil
}

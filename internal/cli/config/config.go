// Package config implements the config command group and resolves the
// effective configuration shared by every command.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/steviee/assetguard/internal/state"
)

// Viper keys bound to global flags.
const (
	KeyConfig          = "config"
	KeyJSON            = "json"
	KeyBaseDir         = "base-dir"
	KeyDistributionURL = "distribution-url"
)

// JSONMode reports whether JSON output was requested.
func JSONMode() bool {
	return viper.GetBool(KeyJSON)
}

// Load reads the configuration file and applies flag and environment
// overrides. It returns the configuration and the directory layout it
// points at.
func Load(ctx context.Context) (*state.Config, state.Layout, error) {
	var cfg *state.Config
	var err error
	if path := viper.GetString(KeyConfig); path != "" {
		cfg, err = state.LoadConfigFile(path)
	} else {
		cfg, err = state.LoadConfig(ctx)
	}
	if err != nil {
		return nil, state.Layout{}, fmt.Errorf("load config: %w", err)
	}

	if v := viper.GetString(KeyDistributionURL); v != "" {
		cfg.Distribution.URL = v
	}
	if v := viper.GetString(KeyBaseDir); v != "" {
		cfg.Paths.BaseDir = v
	}

	base, err := cfg.ResolveBaseDir()
	if err != nil {
		return nil, state.Layout{}, fmt.Errorf("resolve base directory: %w", err)
	}
	return cfg, state.NewLayout(base), nil
}

// NewCommand creates the config command group
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `View assetguard configuration settings.

Configuration is stored in ~/.config/assetguard/config.yaml by default.
Global flags and ASSETGUARD_* environment variables override the file.`,
		Example: `  # View the effective configuration
  assetguard config show

  # Show configuration file path
  assetguard config path`,
		Aliases: []string{"cfg"},
	}

	cmd.AddCommand(newShowCommand())
	cmd.AddCommand(newPathCommand())

	return cmd
}

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func runShow(ctx context.Context, stdout io.Writer) error {
	cfg, _, err := Load(ctx)
	if err != nil {
		return err
	}

	if JSONMode() {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{"status": "success", "data": cfg})
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	_, err = stdout.Write(data)
	return err
}

func newPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := state.GetConfigPath()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	}
}

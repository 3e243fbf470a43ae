package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/steviee/assetguard/internal/cli/config"
	"github.com/steviee/assetguard/internal/cli/servers"
	"github.com/steviee/assetguard/internal/state"
)

var (
	// Global flags
	cfgFile         string
	jsonOut         bool
	quiet           bool
	verbose         bool
	baseDir         string
	distributionURL string

	// Global logger
	logger *slog.Logger
)

// NewRootCommand creates and returns the root cobra command
func NewRootCommand(version, commit, date, builtBy string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "assetguard",
		Short: "Validate and download Minecraft game files",
		Long: `assetguard keeps a launcher's game directory in sync with a distribution index.

For a server of the distribution it:
  - Resolves every module and checks it against its declared checksum
  - Validates the Minecraft version, asset objects, libraries and client jar
  - Optionally installs a Java runtime
  - Downloads whatever is missing or corrupt with bounded concurrency
  - Finalizes Forge and writes the legacy mod list

Files that are already valid are never downloaded again.`,
		Example: `  # Validate the main server of the distribution
  assetguard validate

  # Validate a specific server and install a Java runtime
  assetguard validate myserver-1.12.2 --runtime

  # List servers of the distribution
  assetguard servers list

  # Use a different game directory
  assetguard --base-dir /srv/launcher validate`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Initialize logger based on flags
			if err := initLogger(cmd.ErrOrStderr()); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			// Initialize config
			if err := initConfig(cmd); err != nil {
				logger.Error("failed to initialize config", "error", err)
				return fmt.Errorf("failed to initialize config: %w", err)
			}

			return nil
		},
	}

	// Add global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/assetguard/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&baseDir, "base-dir", "", "game directory (overrides paths.base_dir)")
	rootCmd.PersistentFlags().StringVar(&distributionURL, "distribution-url", "", "distribution index URL (overrides distribution.url)")

	// Mark json and quiet as mutually exclusive
	rootCmd.MarkFlagsMutuallyExclusive("json", "quiet")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	// Add version command
	rootCmd.AddCommand(NewVersionCommand(version, commit, date, builtBy))

	rootCmd.AddCommand(NewValidateCommand())
	rootCmd.AddCommand(NewRuntimeCommand())
	rootCmd.AddCommand(NewModListCommand())
	rootCmd.AddCommand(NewServersCommand())
	rootCmd.AddCommand(NewConfigCommand())

	return rootCmd
}

// NewServersCommand creates the servers command group
func NewServersCommand() *cobra.Command {
	return servers.NewCommand()
}

// NewConfigCommand creates the config command group
func NewConfigCommand() *cobra.Command {
	return config.NewCommand()
}

// initLogger initializes the global logger based on flags
func initLogger(out io.Writer) error {
	var level slog.Level
	var handler slog.Handler

	// Determine log level
	switch {
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelDebug
	default:
		level = slog.LevelInfo
	}

	// Create handler based on output format
	opts := &slog.HandlerOptions{
		Level: level,
	}

	if jsonOut {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	logger = slog.New(handler)
	slog.SetDefault(logger)

	return nil
}

// initConfig reads in config file and ENV variables if set, and binds the
// global flags to their viper keys.
func initConfig(cmd *cobra.Command) error {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		configDir, err := state.GetConfigDir()
		if err != nil {
			return err
		}

		// Search config in ~/.config/assetguard directory
		viper.AddConfigPath(configDir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match
	viper.SetEnvPrefix("ASSETGUARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	flags := cmd.Root().PersistentFlags()
	for _, key := range []string{config.KeyConfig, config.KeyJSON, config.KeyBaseDir, config.KeyDistributionURL} {
		if err := viper.BindPFlag(key, flags.Lookup(key)); err != nil {
			return fmt.Errorf("bind flag %s: %w", key, err)
		}
	}

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if the default config file doesn't exist
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			return fmt.Errorf("read config file: %w", err)
		}
	} else {
		logger.Debug("using config file", "path", viper.ConfigFileUsed())
	}

	return applyLogLevel(cmd.ErrOrStderr())
}

// applyLogLevel switches the logger to logging.level from the configuration
// file unless --quiet or --verbose was given.
func applyLogLevel(out io.Writer) error {
	if quiet || verbose {
		return nil
	}

	name := viper.GetString("logging.level")
	if name == "" {
		return nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return fmt.Errorf("invalid logging.level %q: %w", name, err)
	}

	opts := &slog.HandlerOptions{Level: level}
	if jsonOut {
		logger = slog.New(slog.NewJSONHandler(out, opts))
	} else {
		logger = slog.New(slog.NewTextHandler(out, opts))
	}
	slog.SetDefault(logger)
	return nil
}

// GetLogger returns the global logger instance
func GetLogger() *slog.Logger {
	return logger
}

// IsJSONOutput returns true if JSON output is enabled by flag or environment
func IsJSONOutput() bool {
	return jsonOut || config.JSONMode()
}

// IsQuiet returns true if quiet mode is enabled
func IsQuiet() bool {
	return quiet
}

// IsVerbose returns true if verbose mode is enabled
func IsVerbose() bool {
	return verbose
}

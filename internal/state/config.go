package state

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the user configuration for assetguard.
type Config struct {
	Distribution DistributionConfig `yaml:"distribution"`
	Minecraft    MinecraftConfig    `yaml:"minecraft"`
	Paths        PathsConfig        `yaml:"paths"`
	Downloads    DownloadsConfig    `yaml:"downloads"`
	Runtime      RuntimeConfig      `yaml:"runtime"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// DistributionConfig holds where the distribution index comes from.
type DistributionConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
	// SchemaConstraint is a semver constraint the index version must satisfy.
	SchemaConstraint string `yaml:"schema_constraint"`
}

// MinecraftConfig holds the upstream metadata and asset endpoints.
type MinecraftConfig struct {
	ManifestURL string `yaml:"manifest_url"`
	ResourceURL string `yaml:"resource_url"`
}

// PathsConfig holds filesystem locations.
type PathsConfig struct {
	// BaseDir holds distribution.json, common/, instances/ and runtime/.
	// Empty means the XDG data directory.
	BaseDir string `yaml:"base_dir"`
}

// DownloadsConfig holds download engine tuning.
type DownloadsConfig struct {
	Concurrency      map[string]int `yaml:"concurrency"`
	AssetValidators  int            `yaml:"asset_validators"`
	ItemTimeout      time.Duration  `yaml:"item_timeout"`
	MetadataTimeout  time.Duration  `yaml:"metadata_timeout"`
	Retries          int            `yaml:"retries"`
	ProgressThrottle bool           `yaml:"progress_throttle"`
}

// RuntimeConfig holds the Java runtime used by the pack.xz unpacker.
type RuntimeConfig struct {
	JavaMajor   int    `yaml:"java_major"`
	ImageType   string `yaml:"image_type"`
	JavaExec    string `yaml:"java_exec"`
	UnpackerJar string `yaml:"unpacker_jar"`
	AdoptiumURL string `yaml:"adoptium_url"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Distribution: DistributionConfig{
			URL:              "https://raw.githubusercontent.com/WesterosCraftCode/ElectronLauncher/master/app/assets/distribution.json",
			Timeout:          3 * time.Second,
			SchemaConstraint: ">= 1.0.0, < 2.0.0",
		},
		Minecraft: MinecraftConfig{
			ManifestURL: "https://launchermeta.mojang.com/mc/game/version_manifest.json",
			ResourceURL: "https://resources.download.minecraft.net",
		},
		Downloads: DownloadsConfig{
			Concurrency: map[string]int{
				"assets":    20,
				"libraries": 5,
				"files":     5,
				"forge":     5,
				"runtime":   1,
			},
			AssetValidators:  10,
			ItemTimeout:      10 * time.Minute,
			MetadataTimeout:  5 * time.Second,
			Retries:          1,
			ProgressThrottle: true,
		},
		Runtime: RuntimeConfig{
			JavaMajor:   8,
			ImageType:   "jre",
			JavaExec:    "java",
			UnpackerJar: "resources/libraries/java/PackXZExtract.jar",
			AdoptiumURL: "https://api.adoptium.net",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads the configuration from the config file.
// If the file doesn't exist, it creates a new one with defaults.
// If the file is corrupted, it backs up the corrupted file and creates a fresh one.
func LoadConfig(ctx context.Context) (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("get config path: %w", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := SaveConfig(ctx, cfg); err != nil {
			return nil, fmt.Errorf("save default config: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		backupPath := configPath + ".corrupted"
		if backupErr := os.Rename(configPath, backupPath); backupErr != nil {
			return nil, fmt.Errorf("config file is corrupted and failed to create backup: %w (original error: %v)", backupErr, err)
		}

		cfg := DefaultConfig()
		if saveErr := SaveConfig(ctx, cfg); saveErr != nil {
			return nil, fmt.Errorf("config file was corrupted (backed up to %s), failed to save fresh config: %w (original error: %v)", backupPath, saveErr, err)
		}
		return cfg, nil
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadConfigFile loads the configuration from an explicit path. Unlike
// LoadConfig it never creates or repairs the file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveConfig saves the configuration to the config file using atomic writes.
func SaveConfig(ctx context.Context, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := ValidateConfig(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	configPath, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("get config path: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := AtomicWrite(configPath, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// ValidateConfig validates the configuration.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if cfg.Distribution.URL == "" {
		return fmt.Errorf("distribution url cannot be empty")
	}

	urls := []struct{ name, value string }{
		{"distribution url", cfg.Distribution.URL},
		{"manifest url", cfg.Minecraft.ManifestURL},
		{"resource url", cfg.Minecraft.ResourceURL},
		{"adoptium url", cfg.Runtime.AdoptiumURL},
	}
	for _, u := range urls {
		if err := ValidateURL(u.name, u.value); err != nil {
			return err
		}
	}

	if cfg.Distribution.Timeout <= 0 {
		return fmt.Errorf("distribution timeout must be positive, got %v", cfg.Distribution.Timeout)
	}

	for category, limit := range cfg.Downloads.Concurrency {
		if limit < 1 {
			return fmt.Errorf("concurrency for %s must be >= 1, got %d", category, limit)
		}
	}

	if cfg.Downloads.AssetValidators < 1 {
		return fmt.Errorf("asset validators must be >= 1, got %d", cfg.Downloads.AssetValidators)
	}

	if cfg.Downloads.Retries < 0 {
		return fmt.Errorf("retries must be >= 0, got %d", cfg.Downloads.Retries)
	}

	if err := ValidateJavaVersion(cfg.Runtime.JavaMajor); err != nil {
		return err
	}

	if err := ValidateImageType(cfg.Runtime.ImageType); err != nil {
		return err
	}

	return ValidateLogLevel(cfg.Logging.Level)
}

// ResolveBaseDir returns the configured base directory or the XDG data directory.
func (c *Config) ResolveBaseDir() (string, error) {
	if c.Paths.BaseDir != "" {
		return c.Paths.BaseDir, nil
	}
	return GetDataDir()
}

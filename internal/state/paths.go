package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	securejoin "github.com/cyphar/filepath-securejoin"
)

const (
	// AppDirName is the directory name used under the XDG config and data homes.
	AppDirName = "assetguard"

	ConfigFileName       = "config.yaml"
	DistributionFileName = "distribution.json"
	LockFileName         = ".assetguard.lock"
)

// GetConfigDir returns ~/.config/assetguard, honoring XDG_CONFIG_HOME.
func GetConfigDir() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get user home directory: %w", err)
		}
		configHome = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configHome, AppDirName), nil
}

// GetDataDir returns ~/.local/share/assetguard, honoring XDG_DATA_HOME.
// It is the default base directory for game files.
func GetDataDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get user home directory: %w", err)
		}
		dataHome = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataHome, AppDirName), nil
}

// GetConfigPath returns the path to the main configuration file.
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, ConfigFileName), nil
}

// Layout resolves the on-disk locations of game files below a base directory.
//
//	<base>/distribution.json
//	<base>/common/{libraries,modstore,versions,assets}
//	<base>/instances/<server id>
//	<base>/runtime/x64
type Layout struct {
	Base string
}

// NewLayout returns a Layout rooted at base.
func NewLayout(base string) Layout {
	return Layout{Base: base}
}

func (l Layout) DistributionPath() string { return filepath.Join(l.Base, DistributionFileName) }
func (l Layout) LockPath() string         { return filepath.Join(l.Base, LockFileName) }
func (l Layout) CommonDir() string        { return filepath.Join(l.Base, "common") }
func (l Layout) LibrariesDir() string     { return filepath.Join(l.CommonDir(), "libraries") }
func (l Layout) ModstoreDir() string      { return filepath.Join(l.CommonDir(), "modstore") }
func (l Layout) VersionsDir() string      { return filepath.Join(l.CommonDir(), "versions") }
func (l Layout) AssetsDir() string        { return filepath.Join(l.CommonDir(), "assets") }
func (l Layout) InstancesDir() string     { return filepath.Join(l.Base, "instances") }
func (l Layout) RuntimeDir() string       { return filepath.Join(l.Base, "runtime", "x64") }

// InstanceDir returns the directory of a single server instance.
func (l Layout) InstanceDir(serverID string) string {
	return filepath.Join(l.InstancesDir(), serverID)
}

// VersionFile returns versions/<id>/<id><ext>.
func (l Layout) VersionFile(id, ext string) string {
	return filepath.Join(l.VersionsDir(), id, id+ext)
}

// AssetIndexPath returns assets/indexes/<id>.json.
func (l Layout) AssetIndexPath(id string) string {
	return filepath.Join(l.AssetsDir(), "indexes", id+".json")
}

// ErrUnsafePath is returned for a relative path that would leave its root.
var ErrUnsafePath = errors.New("path escapes its root directory")

// SafeJoin joins a remote-supplied relative path onto root. Absolute paths
// and paths climbing out of root are rejected; symlinks inside root are
// resolved without leaving it.
func SafeJoin(root, rel string) (string, error) {
	rel = filepath.FromSlash(rel)
	if rel == "" || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, rel)
	}
	return securejoin.SecureJoin(root, rel)
}

// AssetObjectPath returns assets/objects/<hash[:2]>/<hash>. The hash must
// pass ValidObjectHash.
func (l Layout) AssetObjectPath(hash string) string {
	return filepath.Join(l.AssetsDir(), "objects", hash[:2], hash)
}

// LogConfigPath returns assets/log_configs/<id>.
func (l Layout) LogConfigPath(id string) string {
	return filepath.Join(l.AssetsDir(), "log_configs", id)
}

// Init creates the top-level directories of the layout.
func (l Layout) Init() error {
	for _, dir := range []string{l.LibrariesDir(), l.ModstoreDir(), l.VersionsDir(), l.AssetsDir(), l.InstancesDir(), l.RuntimeDir()} {
		if err := EnsureDir(dir); err != nil {
			return err
		}
	}
	return nil
}

// EnsureDir ensures that a directory exists, creating it if necessary.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("ensure directory %s: %w", path, err)
	}
	return nil
}

package minecraft

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/steviee/assetguard/internal/errdefs"
	"github.com/steviee/assetguard/internal/state"
)

// VersionData is the per-version descriptor published upstream. Only the
// fields the asset guard consumes are decoded.
type VersionData struct {
	ID         string        `json:"id"`
	Type       string        `json:"type"`
	MainClass  string        `json:"mainClass"`
	Assets     string        `json:"assets"`
	AssetIndex AssetIndexRef `json:"assetIndex"`
	Downloads  struct {
		Client *Download `json:"client"`
		Server *Download `json:"server"`
	} `json:"downloads"`
	Libraries []Library `json:"libraries"`
	Logging   struct {
		Client *LoggingConfig `json:"client"`
	} `json:"logging"`
}

// AssetIndexRef points at the asset object index of a version.
type AssetIndexRef struct {
	ID        string `json:"id"`
	SHA1      string `json:"sha1"`
	Size      int64  `json:"size"`
	TotalSize int64  `json:"totalSize"`
	URL       string `json:"url"`
}

// Download is a single upstream file with its SHA1 digest.
type Download struct {
	ID   string `json:"id,omitempty"`
	Path string `json:"path,omitempty"`
	SHA1 string `json:"sha1"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

// LoggingConfig describes the client log configuration file.
type LoggingConfig struct {
	Argument string   `json:"argument"`
	File     Download `json:"file"`
	Type     string   `json:"type"`
}

// LoadVersionData returns the descriptor of version. A cached copy under
// versions/<id>/<id>.json is used unless it is absent, unreadable or force
// is set; otherwise the descriptor is downloaded and cached.
func (c *Client) LoadVersionData(ctx context.Context, layout state.Layout, version string, force bool) (*VersionData, error) {
	path := layout.VersionFile(version, ".json")

	if !force {
		vd, err := readVersionData(path)
		if err == nil {
			slog.Debug("using cached version data", "version", version, "path", path)
			return vd, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("cached version data is unusable, downloading again", "version", version, "error", err)
		}
	}

	url, err := c.GetVersionURL(ctx, version)
	if err != nil {
		return nil, err
	}

	slog.Info("downloading version data", "version", version)
	body, err := c.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	var vd VersionData
	if err := json.Unmarshal(body, &vd); err != nil {
		return nil, &errdefs.ParseError{What: "version " + version, Err: err}
	}

	if err := state.AtomicWrite(path, body, 0644); err != nil {
		slog.Warn("failed to cache version data", "path", path, "error", err)
	}

	return &vd, nil
}

func readVersionData(path string) (*VersionData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var vd VersionData
	if err := json.Unmarshal(data, &vd); err != nil {
		return nil, &errdefs.ParseError{What: path, Err: err}
	}
	return &vd, nil
}

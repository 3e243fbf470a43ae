// Package minecraft resolves upstream game metadata: the version manifest,
// per-version descriptors, the asset object index and the libraries a
// version declares.
package minecraft

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/steviee/assetguard/internal/errdefs"
)

const (
	// VersionManifestURL is the Mojang API endpoint for the version manifest.
	VersionManifestURL = "https://launchermeta.mojang.com/mc/game/version_manifest.json"

	// ResourceURL is the base URL of the content-addressed asset store.
	ResourceURL = "https://resources.download.minecraft.net"

	// DefaultTimeout is the default timeout for metadata requests.
	DefaultTimeout = 5 * time.Second

	// DefaultAssetValidators is the number of asset objects hashed concurrently.
	DefaultAssetValidators = 10

	// UserAgent is the user agent string sent with API requests.
	UserAgent = "assetguard/dev (https://github.com/steviee/assetguard)"
)

// VersionManifest represents the Mojang version manifest response.
type VersionManifest struct {
	Latest struct {
		Release  string `json:"release"`
		Snapshot string `json:"snapshot"`
	} `json:"latest"`
	Versions []VersionInfo `json:"versions"`
}

// VersionInfo represents a single Minecraft version entry.
type VersionInfo struct {
	ID          string `json:"id"`
	Type        string `json:"type"` // "release" or "snapshot"
	URL         string `json:"url"`
	Time        string `json:"time"`
	ReleaseTime string `json:"releaseTime"`
}

// Client is a Minecraft metadata client.
type Client struct {
	httpClient      *http.Client
	userAgent       string
	manifestURL     string
	resourceURL     string
	assetValidators int
	cache           *Cache
}

// Config holds client configuration.
type Config struct {
	ManifestURL string
	ResourceURL string
	Timeout     time.Duration
	UserAgent   string
	// AssetValidators bounds concurrent hashing while resolving the asset index.
	AssetValidators int
	DisableCache    bool
	CacheTTL        time.Duration
}

// NewClient creates a new Minecraft metadata client.
func NewClient(config *Config) *Client {
	if config == nil {
		config = &Config{}
	}

	if config.ManifestURL == "" {
		config.ManifestURL = VersionManifestURL
	}

	if config.ResourceURL == "" {
		config.ResourceURL = ResourceURL
	}

	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}

	if config.UserAgent == "" {
		config.UserAgent = UserAgent
	}

	if config.AssetValidators <= 0 {
		config.AssetValidators = DefaultAssetValidators
	}

	var cache *Cache
	if !config.DisableCache {
		cache = NewCache(DefaultCacheSize, config.CacheTTL)
	}

	slog.Debug("creating Minecraft metadata client",
		"manifest_url", config.ManifestURL,
		"timeout", config.Timeout,
		"cache_enabled", !config.DisableCache)

	return &Client{
		httpClient:      &http.Client{Timeout: config.Timeout},
		userAgent:       config.UserAgent,
		manifestURL:     config.ManifestURL,
		resourceURL:     strings.TrimSuffix(config.ResourceURL, "/"),
		assetValidators: config.AssetValidators,
		cache:           cache,
	}
}

// fetch performs a GET and returns the body. Transport failures and non-200
// responses are reported as NetworkError.
func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &errdefs.NetworkError{Op: "get", URL: url, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, &errdefs.NetworkError{Op: "get", URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errdefs.NetworkError{Op: "read body", URL: url, Err: err}
	}
	return body, nil
}

// GetVersionManifest fetches the version manifest from Mojang API.
// Every entry is added to the client's cache.
func (c *Client) GetVersionManifest(ctx context.Context) (*VersionManifest, error) {
	slog.Debug("fetching Minecraft version manifest",
		"url", c.manifestURL)

	body, err := c.fetch(ctx, c.manifestURL)
	if err != nil {
		return nil, err
	}

	var manifest VersionManifest
	if err := json.Unmarshal(body, &manifest); err != nil {
		return nil, &errdefs.ParseError{What: "version manifest", Err: err}
	}

	if c.cache != nil {
		for _, v := range manifest.Versions {
			c.cache.Set(v)
		}
	}

	slog.Debug("fetched version manifest",
		"total_versions", len(manifest.Versions),
		"latest_release", manifest.Latest.Release,
		"latest_snapshot", manifest.Latest.Snapshot)

	return &manifest, nil
}

// GetVersionURL returns the descriptor URL of a version, consulting the cache
// before the manifest.
func (c *Client) GetVersionURL(ctx context.Context, version string) (string, error) {
	if c.cache != nil {
		if entry := c.cache.Get(version); entry != nil {
			slog.Debug("version URL cache hit", "version", version)
			return entry.Version.URL, nil
		}
	}

	manifest, err := c.GetVersionManifest(ctx)
	if err != nil {
		return "", err
	}

	for _, v := range manifest.Versions {
		if v.ID == version {
			return v.URL, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrVersionNotFound, version)
}

// ClearCache clears the version URL cache.
func (c *Client) ClearCache() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// FilterVersions filters versions by type and applies a limit.
// Valid types are "release", "snapshot", or "all".
// If limit is 0 or negative, all matching versions are returned.
func FilterVersions(versions []VersionInfo, versionType string, limit int) []VersionInfo {
	filtered := make([]VersionInfo, 0)

	for _, v := range versions {
		if versionType != "all" && v.Type != versionType {
			continue
		}

		filtered = append(filtered, v)

		if limit > 0 && len(filtered) >= limit {
			break
		}
	}

	return filtered
}

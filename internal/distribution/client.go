// Package distribution fetches and models the distribution index, the root
// manifest listing every installable server and its module tree.
package distribution

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/steviee/assetguard/internal/errdefs"
	"github.com/steviee/assetguard/internal/state"
)

const (
	// DefaultTimeout bounds the distribution fetch.
	DefaultTimeout = 3 * time.Second

	// UserAgent is the user agent string sent with requests.
	UserAgent = "assetguard/dev (https://github.com/steviee/assetguard)"
)

// Config holds client configuration.
type Config struct {
	URL       string
	Timeout   time.Duration
	UserAgent string
	// SchemaConstraint, when set, must be satisfied by Index.Version.
	SchemaConstraint string
	// CachePath is where the raw document is persisted after a successful pull.
	CachePath string
}

// Client retrieves the distribution index.
type Client struct {
	httpClient *http.Client
	url        string
	userAgent  string
	constraint *semver.Constraints
	cachePath  string
}

// NewClient creates a new distribution client.
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		config = &Config{}
	}

	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}

	if config.UserAgent == "" {
		config.UserAgent = UserAgent
	}

	c := &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		url:        config.URL,
		userAgent:  config.UserAgent,
		cachePath:  config.CachePath,
	}

	if config.SchemaConstraint != "" {
		constraint, err := semver.NewConstraint(config.SchemaConstraint)
		if err != nil {
			return nil, fmt.Errorf("parse schema constraint %q: %w", config.SchemaConstraint, err)
		}
		c.constraint = constraint
	}

	slog.Debug("creating distribution client",
		"url", config.URL,
		"timeout", config.Timeout)

	return c, nil
}

// PullRemote fetches, parses and caches the distribution index. A failure to
// write the cache is logged and does not fail the pull.
func (c *Client) PullRemote(ctx context.Context) (*Index, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	slog.Debug("fetching distribution index", "url", c.url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &errdefs.NetworkError{Op: "fetch distribution", URL: c.url, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &errdefs.NetworkError{Op: "fetch distribution", URL: c.url, StatusCode: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errdefs.NetworkError{Op: "read distribution", URL: c.url, Err: err}
	}

	index, err := c.parse(raw)
	if err != nil {
		return nil, err
	}

	if c.cachePath != "" {
		if err := state.AtomicWrite(c.cachePath, raw, 0644); err != nil {
			slog.Warn("failed to cache distribution index", "path", c.cachePath, "error", err)
		}
	}

	slog.Debug("fetched distribution index",
		"version", index.Version,
		"servers", len(index.Servers))

	return index, nil
}

// LoadLocal parses a previously cached distribution document.
func (c *Client) LoadLocal(path string) (*Index, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errdefs.FS("read", path, err)
	}
	return c.parse(raw)
}

// Pull tries the remote index first and falls back to the local cache when
// the remote is unreachable.
func (c *Client) Pull(ctx context.Context) (*Index, error) {
	index, err := c.PullRemote(ctx)
	if err == nil || c.cachePath == "" {
		return index, err
	}

	slog.Warn("distribution fetch failed, using cached copy", "error", err, "path", c.cachePath)
	local, localErr := c.LoadLocal(c.cachePath)
	if localErr != nil {
		return nil, err
	}
	return local, nil
}

func (c *Client) parse(raw []byte) (*Index, error) {
	var index Index
	if err := json.Unmarshal(raw, &index); err != nil {
		return nil, &errdefs.ParseError{What: "distribution index", Err: err}
	}

	if err := c.checkSchema(index.Version); err != nil {
		return nil, err
	}

	if len(index.Servers) == 0 {
		return nil, &errdefs.ParseError{What: "distribution index", Err: ErrNoServers}
	}

	return &index, nil
}

func (c *Client) checkSchema(version string) error {
	if c.constraint == nil {
		return nil
	}

	v, err := semver.NewVersion(version)
	if err != nil {
		slog.Warn("distribution has no parseable schema version", "version", version, "error", err)
		return nil
	}

	if !c.constraint.Check(v) {
		return &errdefs.ParseError{
			What: "distribution index",
			Err:  fmt.Errorf("%w: %s does not satisfy %s", ErrUnsupportedSchema, version, c.constraint),
		}
	}
	return nil
}

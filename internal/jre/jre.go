// Package jre resolves downloadable Java runtimes from the Adoptium API.
package jre

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/steviee/assetguard/internal/artifact"
	"github.com/steviee/assetguard/internal/errdefs"
)

const (
	// DefaultBaseURL is the Adoptium API endpoint.
	DefaultBaseURL = "https://api.adoptium.net"

	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 10 * time.Second

	// DefaultImageType selects a JRE rather than a full JDK.
	DefaultImageType = "jre"

	// UserAgent is the user agent string sent with API requests.
	UserAgent = "assetguard/dev (https://github.com/steviee/assetguard)"
)

// ErrNoRelease is returned when no runtime matches the request.
var ErrNoRelease = fmt.Errorf("no runtime release available")

// Release is a single entry of the latest-assets response.
type Release struct {
	ReleaseName string `json:"release_name"`
	Vendor      string `json:"vendor"`
	Binary      struct {
		OS           string  `json:"os"`
		Architecture string  `json:"architecture"`
		ImageType    string  `json:"image_type"`
		Package      Package `json:"package"`
	} `json:"binary"`
	Version struct {
		Major   int    `json:"major"`
		Semver  string `json:"semver"`
		OpenJDK string `json:"openjdk_version"`
	} `json:"version"`
}

// Package is the downloadable archive of a release.
type Package struct {
	Name     string `json:"name"`
	Link     string `json:"link"`
	Size     int64  `json:"size"`
	Checksum string `json:"checksum"`
}

// Artifact returns the archive as an artifact stored in dir.
func (r *Release) Artifact(dir string) artifact.Artifact {
	p := r.Binary.Package
	return artifact.Artifact{
		ID:   r.ReleaseName,
		Hash: strings.ToLower(p.Checksum),
		Algo: artifact.SHA256,
		Size: p.Size,
		URL:  p.Link,
		Path: filepath.Join(dir, p.Name),
	}
}

// Client is an Adoptium API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	imageType  string
}

// Config holds client configuration.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	ImageType string
}

// NewClient creates a new Adoptium API client.
func NewClient(config *Config) *Client {
	if config == nil {
		config = &Config{}
	}

	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}

	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}

	if config.UserAgent == "" {
		config.UserAgent = UserAgent
	}

	if config.ImageType == "" {
		config.ImageType = DefaultImageType
	}

	return &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		baseURL:    strings.TrimSuffix(config.BaseURL, "/"),
		userAgent:  config.UserAgent,
		imageType:  config.ImageType,
	}
}

// OSName maps a GOOS value to the Adoptium OS name.
func OSName(goos string) string {
	if goos == "darwin" {
		return "mac"
	}
	return goos
}

// Latest returns the newest x64 HotSpot runtime of a Java major version for goos.
func (c *Client) Latest(ctx context.Context, major int, goos string) (*Release, error) {
	q := url.Values{}
	q.Set("architecture", "x64")
	q.Set("image_type", c.imageType)
	q.Set("os", OSName(goos))
	q.Set("vendor", "eclipse")
	endpoint := fmt.Sprintf("%s/v3/assets/latest/%d/hotspot?%s", c.baseURL, major, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	slog.Debug("fetching latest runtime", "major", major, "os", OSName(goos))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &errdefs.NetworkError{Op: "get", URL: endpoint, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, &errdefs.NetworkError{Op: "get", URL: endpoint, StatusCode: resp.StatusCode}
	}

	var releases []Release
	if err := json.NewDecoder(resp.Body).Decode(&releases); err != nil {
		return nil, &errdefs.ParseError{What: "runtime releases", Err: err}
	}

	for i := range releases {
		if releases[i].Binary.Package.Link != "" {
			slog.Debug("found runtime",
				"release", releases[i].ReleaseName,
				"size", releases[i].Binary.Package.Size)
			return &releases[i], nil
		}
	}
	return nil, fmt.Errorf("%w: java %d on %s", ErrNoRelease, major, OSName(goos))
}

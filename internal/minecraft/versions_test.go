package minecraft

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steviee/assetguard/internal/errdefs"
)

func sha1Hex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// upstream is a fake metadata server. Routes map a path to a body; hits
// counts requests per path.
type upstream struct {
	*httptest.Server
	mu     sync.Mutex
	routes map[string]string
	hits   map[string]int
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()
	u := &upstream{routes: make(map[string]string), hits: make(map[string]int)}
	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		u.hits[r.URL.Path]++
		body, ok := u.routes[r.URL.Path]
		u.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(u.Close)
	return u
}

func (u *upstream) set(path, body string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.routes[path] = body
}

func (u *upstream) count(path string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.hits[path]
}

func (u *upstream) client() *Client {
	return NewClient(&Config{
		ManifestURL: u.URL + "/manifest.json",
		ResourceURL: u.URL + "/objects/",
		Timeout:     2 * time.Second,
	})
}

func manifestJSON(baseURL string) string {
	return fmt.Sprintf(`{
		"latest": {"release": "1.12.2", "snapshot": "17w50a"},
		"versions": [
			{"id": "17w50a", "type": "snapshot", "url": "%[1]s/v/17w50a.json"},
			{"id": "1.12.2", "type": "release", "url": "%[1]s/v/1.12.2.json"}
		]
	}`, baseURL)
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name            string
		config          *Config
		expectedUA      string
		expectedTimeout time.Duration
		expectCache     bool
	}{
		{
			name:            "nil config uses defaults",
			config:          nil,
			expectedUA:      UserAgent,
			expectedTimeout: DefaultTimeout,
			expectCache:     true,
		},
		{
			name: "custom config",
			config: &Config{
				Timeout:   10 * time.Second,
				UserAgent: "custom-agent",
			},
			expectedUA:      "custom-agent",
			expectedTimeout: 10 * time.Second,
			expectCache:     true,
		},
		{
			name:            "disable cache",
			config:          &Config{DisableCache: true},
			expectedUA:      UserAgent,
			expectedTimeout: DefaultTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(tt.config)

			require.NotNil(t, client)
			assert.Equal(t, tt.expectedUA, client.userAgent)
			assert.Equal(t, tt.expectedTimeout, client.httpClient.Timeout)
			assert.Equal(t, DefaultAssetValidators, client.assetValidators)
			assert.Equal(t, tt.expectCache, client.cache != nil)
		})
	}
}

func TestClient_GetVersionManifest(t *testing.T) {
	tests := []struct {
		name           string
		serverStatus   int
		serverResponse string
		wantErr        error
		validateResult func(*testing.T, *VersionManifest)
	}{
		{
			name:           "successful request",
			serverStatus:   http.StatusOK,
			serverResponse: manifestJSON("https://example.com"),
			validateResult: func(t *testing.T, manifest *VersionManifest) {
				assert.Equal(t, "1.12.2", manifest.Latest.Release)
				assert.Equal(t, "17w50a", manifest.Latest.Snapshot)
				require.Len(t, manifest.Versions, 2)
				assert.Equal(t, "release", manifest.Versions[1].Type)
			},
		},
		{
			name:         "404 not found",
			serverStatus: http.StatusNotFound,
			wantErr:      errdefs.ErrNetwork,
		},
		{
			name:         "500 internal server error",
			serverStatus: http.StatusInternalServerError,
			wantErr:      errdefs.ErrNetwork,
		},
		{
			name:           "invalid JSON",
			serverStatus:   http.StatusOK,
			serverResponse: `invalid json`,
			wantErr:        errdefs.ErrParse,
		},
		{
			name:           "empty response",
			serverStatus:   http.StatusOK,
			serverResponse: `{}`,
			validateResult: func(t *testing.T, manifest *VersionManifest) {
				assert.Empty(t, manifest.Latest.Release)
				assert.Empty(t, manifest.Versions)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "application/json", r.Header.Get("Accept"))
				assert.NotEmpty(t, r.Header.Get("User-Agent"))

				w.WriteHeader(tt.serverStatus)
				if tt.serverResponse != "" {
					_, _ = w.Write([]byte(tt.serverResponse))
				}
			}))
			defer server.Close()

			client := NewClient(&Config{ManifestURL: server.URL})
			manifest, err := client.GetVersionManifest(context.Background())

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.validateResult(t, manifest)
		})
	}
}

func TestClient_GetVersionManifest_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		_, _ = w.Write([]byte(`{"latest":{},"versions":[]}`))
	}))
	defer server.Close()

	client := NewClient(&Config{ManifestURL: server.URL})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetVersionManifest(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, errdefs.ErrNetwork)
}

func TestClient_GetVersionURL(t *testing.T) {
	u := newUpstream(t)
	u.set("/manifest.json", manifestJSON(u.URL))
	client := u.client()
	ctx := context.Background()

	url, err := client.GetVersionURL(ctx, "1.12.2")
	require.NoError(t, err)
	assert.Equal(t, u.URL+"/v/1.12.2.json", url)

	url, err = client.GetVersionURL(ctx, "17w50a")
	require.NoError(t, err)
	assert.Equal(t, u.URL+"/v/17w50a.json", url)
	assert.Equal(t, 1, u.count("/manifest.json"), "second lookup served from cache")

	_, err = client.GetVersionURL(ctx, "0.0.1")
	assert.ErrorIs(t, err, ErrVersionNotFound)
	assert.Equal(t, 2, u.count("/manifest.json"), "cache miss refetches the manifest")

	client.ClearCache()
	_, err = client.GetVersionURL(ctx, "1.12.2")
	require.NoError(t, err)
	assert.Equal(t, 3, u.count("/manifest.json"))
}

func TestFilterVersions(t *testing.T) {
	versions := []VersionInfo{
		{ID: "1.21.10", Type: "release"},
		{ID: "1.21.9", Type: "release"},
		{ID: "25w45a", Type: "snapshot"},
		{ID: "1.21.8", Type: "release"},
		{ID: "25w44a", Type: "snapshot"},
		{ID: "1.21.7", Type: "release"},
	}

	tests := []struct {
		name          string
		versionType   string
		limit         int
		expectedCount int
		expectedFirst string
		expectedLast  string
	}{
		{
			name:          "filter releases with limit",
			versionType:   "release",
			limit:         2,
			expectedCount: 2,
			expectedFirst: "1.21.10",
			expectedLast:  "1.21.9",
		},
		{
			name:          "filter snapshots with limit",
			versionType:   "snapshot",
			limit:         1,
			expectedCount: 1,
			expectedFirst: "25w45a",
			expectedLast:  "25w45a",
		},
		{
			name:          "filter all versions",
			versionType:   "all",
			limit:         0,
			expectedCount: 6,
			expectedFirst: "1.21.10",
			expectedLast:  "1.21.7",
		},
		{
			name:          "limit larger than results",
			versionType:   "snapshot",
			limit:         100,
			expectedCount: 2,
			expectedFirst: "25w45a",
			expectedLast:  "25w44a",
		},
		{
			name:          "negative limit returns all",
			versionType:   "release",
			limit:         -1,
			expectedCount: 4,
			expectedFirst: "1.21.10",
			expectedLast:  "1.21.7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FilterVersions(versions, tt.versionType, tt.limit)

			assert.Len(t, result, tt.expectedCount)
			if tt.expectedCount > 0 {
				assert.Equal(t, tt.expectedFirst, result[0].ID)
				assert.Equal(t, tt.expectedLast, result[len(result)-1].ID)
			}
		})
	}
}

func TestFilterVersions_EmptyInput(t *testing.T) {
	result := FilterVersions([]VersionInfo{}, "all", 10)
	assert.Empty(t, result)
}

package jre

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steviee/assetguard/internal/artifact"
	"github.com/steviee/assetguard/internal/errdefs"
)

const latestResponse = `[
	{
		"binary": {
			"architecture": "x64",
			"image_type": "jre",
			"os": "linux",
			"package": {
				"checksum": "A1B2C3",
				"link": "https://github.com/adoptium/temurin8-binaries/releases/download/jdk8u402-b06/OpenJDK8U-jre_x64_linux_hotspot_8u402b06.tar.gz",
				"name": "OpenJDK8U-jre_x64_linux_hotspot_8u402b06.tar.gz",
				"size": 41234567
			}
		},
		"release_name": "jdk8u402-b06",
		"vendor": "eclipse",
		"version": {"major": 8, "semver": "8.0.402+6", "openjdk_version": "1.8.0_402-b06"}
	}
]`

func TestNewClient(t *testing.T) {
	c := NewClient(nil)
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, UserAgent, c.userAgent)
	assert.Equal(t, DefaultImageType, c.imageType)
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)

	c = NewClient(&Config{BaseURL: "https://mirror.example.com/", ImageType: "jdk", Timeout: time.Second})
	assert.Equal(t, "https://mirror.example.com", c.baseURL)
	assert.Equal(t, "jdk", c.imageType)
}

func TestOSName(t *testing.T) {
	assert.Equal(t, "mac", OSName("darwin"))
	assert.Equal(t, "windows", OSName("windows"))
	assert.Equal(t, "linux", OSName("linux"))
}

func TestClient_Latest(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantErr  error
		wantName string
	}{
		{name: "success", status: http.StatusOK, body: latestResponse, wantName: "jdk8u402-b06"},
		{name: "no releases", status: http.StatusOK, body: `[]`, wantErr: ErrNoRelease},
		{name: "not found", status: http.StatusNotFound, wantErr: errdefs.ErrNetwork},
		{name: "malformed", status: http.StatusOK, body: `{`, wantErr: errdefs.ErrParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v3/assets/latest/8/hotspot", r.URL.Path)
				assert.Equal(t, "x64", r.URL.Query().Get("architecture"))
				assert.Equal(t, "jre", r.URL.Query().Get("image_type"))
				assert.Equal(t, "linux", r.URL.Query().Get("os"))
				assert.NotEmpty(t, r.Header.Get("User-Agent"))

				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			rel, err := NewClient(&Config{BaseURL: server.URL}).Latest(context.Background(), 8, "linux")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, rel.ReleaseName)
			assert.Equal(t, 8, rel.Version.Major)
		})
	}
}

func TestRelease_Artifact(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(latestResponse))
	}))
	defer server.Close()

	rel, err := NewClient(&Config{BaseURL: server.URL}).Latest(context.Background(), 8, "linux")
	require.NoError(t, err)

	a := rel.Artifact("/data/runtime/x64")
	assert.Equal(t, "jdk8u402-b06", a.ID)
	assert.Equal(t, "a1b2c3", a.Hash)
	assert.Equal(t, artifact.SHA256, a.Algo)
	assert.Equal(t, int64(41234567), a.Size)
	assert.Equal(t, filepath.Join("/data/runtime/x64", "OpenJDK8U-jre_x64_linux_hotspot_8u402b06.tar.gz"), a.Path)
}

package forge

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/steviee/assetguard/internal/artifact"
	"github.com/steviee/assetguard/internal/distribution"
	"github.com/steviee/assetguard/internal/download"
	"github.com/steviee/assetguard/internal/errdefs"
	"github.com/steviee/assetguard/internal/integrity"
	"github.com/steviee/assetguard/internal/state"
)

// VersionEntry is the name of the version descriptor inside a Forge jar.
const VersionEntry = "version.json"

// DefaultLibraryURL is the repository used for Forge libraries without a url.
const DefaultLibraryURL = "https://libraries.minecraft.net/"

// Data is the version descriptor shipped by Forge.
type Data struct {
	ID                 string    `json:"id"`
	InheritsFrom       string    `json:"inheritsFrom"`
	MainClass          string    `json:"mainClass"`
	MinecraftArguments string    `json:"minecraftArguments,omitempty"`
	Libraries          []Library `json:"libraries"`
}

// Library is a library declared by a Forge version descriptor.
type Library struct {
	Name      string   `json:"name"`
	URL       string   `json:"url,omitempty"`
	Checksums []string `json:"checksums,omitempty"`
	ServerReq *bool    `json:"serverreq,omitempty"`
	ClientReq *bool    `json:"clientreq,omitempty"`
}

// ForClient reports whether the library is needed by the client.
func (l Library) ForClient() bool {
	return l.ClientReq == nil || *l.ClientReq
}

func parseData(raw []byte, what string) (*Data, error) {
	var d Data
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, &errdefs.ParseError{What: what, Err: err}
	}
	if d.ID == "" {
		return nil, &errdefs.ParseError{What: what, Err: errors.New("missing id")}
	}
	return &d, nil
}

// FinalizeForgeAsset extracts version.json from a downloaded Forge jar and
// stores it as versions/<id>/<id>.json. An existing descriptor is left in
// place and returned so local edits survive.
func FinalizeForgeAsset(layout state.Layout, jarPath string) (*Data, error) {
	raw, err := integrity.ReadZipEntry(jarPath, VersionEntry)
	if err == fs.ErrNotExist {
		return nil, &errdefs.MissingArtifactError{Container: jarPath, Entry: VersionEntry}
	}
	if err != nil {
		return nil, err
	}

	d, err := parseData(raw, VersionEntry+" in "+filepath.Base(jarPath))
	if err != nil {
		return nil, err
	}

	versionFile := layout.VersionFile(d.ID, ".json")
	if _, err := os.Stat(versionFile); err == nil {
		slog.Debug("using existing forge version data", "id", d.ID, "path", versionFile)
		return LoadVersionManifest(versionFile)
	}

	if err := state.AtomicWrite(versionFile, raw, 0644); err != nil {
		return nil, errdefs.FS("write", versionFile, err)
	}
	slog.Debug("stored forge version data", "id", d.ID, "path", versionFile)
	return d, nil
}

// LoadVersionManifest reads a Forge version descriptor from disk.
func LoadVersionManifest(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errdefs.FS("read", path, err)
	}
	return parseData(raw, path)
}

// ResolveLibraries returns a tracker of the client libraries declared by d
// that fail checksum validation. Libraries with several accepted checksums
// are validated with integrity.ValidateForgeChecksum.
func ResolveLibraries(layout state.Layout, d *Data) *download.Tracker[artifact.Library] {
	var queue []artifact.Library
	for _, lib := range d.Libraries {
		if !lib.ForClient() {
			continue
		}

		c, err := distribution.ParseCoordinate(lib.Name, distribution.TypeLibrary)
		if err != nil {
			slog.Warn("skipping forge library with malformed name", "library", lib.Name, "error", err)
			continue
		}

		path, err := state.SafeJoin(layout.LibrariesDir(), c.MavenPath())
		if err != nil {
			slog.Warn("skipping forge library with unsafe path", "library", lib.Name, "error", err)
			continue
		}
		if integrity.ValidateForgeChecksum(path, lib.Checksums) {
			continue
		}

		base := lib.URL
		if base == "" {
			base = DefaultLibraryURL
		}
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}

		a := artifact.Artifact{
			ID:   lib.Name,
			Algo: artifact.SHA1,
			URL:  base + c.MavenPath(),
			Path: path,
		}
		if len(lib.Checksums) == 1 {
			a.Hash = lib.Checksums[0]
		}
		queue = append(queue, artifact.Library{Artifact: a})
	}

	slog.Debug("resolved forge libraries",
		"id", d.ID,
		"declared", len(d.Libraries),
		"queued", len(queue))

	return download.NewTracker(download.CategoryForge, queue, nil)
}

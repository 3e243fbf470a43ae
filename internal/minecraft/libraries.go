package minecraft

import (
	"log/slog"
	"strings"

	"github.com/steviee/assetguard/internal/artifact"
	"github.com/steviee/assetguard/internal/download"
	"github.com/steviee/assetguard/internal/integrity"
	"github.com/steviee/assetguard/internal/state"
)

// Library is an upstream library declaration.
type Library struct {
	Name      string `json:"name"`
	Downloads struct {
		Artifact    *Download           `json:"artifact"`
		Classifiers map[string]Download `json:"classifiers"`
	} `json:"downloads"`
	Rules   []Rule            `json:"rules"`
	Natives map[string]string `json:"natives"`
}

// Rule allows or disallows a library, optionally only on one OS.
type Rule struct {
	Action string `json:"action"`
	OS     *struct {
		Name string `json:"name"`
	} `json:"os"`
}

// OSName maps a GOOS value to the upstream OS name.
func OSName(goos string) string {
	switch goos {
	case "darwin":
		return "osx"
	case "windows":
		return "windows"
	case "linux":
		return "linux"
	default:
		return "unknown_os"
	}
}

// Allowed reports whether the library applies to the given upstream OS
// name. Without rules a library is always allowed; otherwise the last
// matching rule decides, starting from disallowed.
func (l *Library) Allowed(osName string) bool {
	if len(l.Rules) == 0 {
		return true
	}

	allowed := false
	for _, r := range l.Rules {
		if r.OS != nil && r.OS.Name != osName {
			continue
		}
		allowed = r.Action == "allow"
	}
	return allowed
}

// NativeClassifier returns the natives classifier for osName, if any.
func (l *Library) NativeClassifier(osName string) (string, bool) {
	classifier, ok := l.Natives[osName]
	if !ok || classifier == "" {
		return "", false
	}
	return strings.ReplaceAll(classifier, "${arch}", "64"), true
}

// Artifacts returns the files the library contributes on goos.
func (l *Library) Artifacts(layout state.Layout, goos string) []artifact.Library {
	osName := OSName(goos)
	if !l.Allowed(osName) {
		return nil
	}

	var out []artifact.Library
	if d := l.Downloads.Artifact; d != nil && d.URL != "" {
		if a, ok := libraryArtifact(layout, l.Name, *d); ok {
			out = append(out, artifact.Library{Artifact: a})
		}
	}

	if classifier, ok := l.NativeClassifier(osName); ok {
		d, found := l.Downloads.Classifiers[classifier]
		if !found {
			slog.Warn("library declares natives without a matching classifier",
				"library", l.Name,
				"classifier", classifier)
		} else if a, ok := libraryArtifact(layout, l.Name+":"+classifier, d); ok {
			out = append(out, artifact.Library{Artifact: a, Native: true})
		}
	}
	return out
}

func libraryArtifact(layout state.Layout, id string, d Download) (artifact.Artifact, bool) {
	path, err := state.SafeJoin(layout.LibrariesDir(), d.Path)
	if err != nil {
		slog.Warn("skipping library with unsafe path", "library", id, "error", err)
		return artifact.Artifact{}, false
	}
	return artifact.Artifact{
		ID:   id,
		Hash: d.SHA1,
		Algo: artifact.SHA1,
		Size: d.Size,
		URL:  d.URL,
		Path: path,
	}, true
}

// ResolveLibraries returns a tracker of the libraries of vd that apply to
// goos and are missing or invalid.
func ResolveLibraries(layout state.Layout, vd *VersionData, goos string) *download.Tracker[artifact.Library] {
	var queue []artifact.Library
	for i := range vd.Libraries {
		for _, lib := range vd.Libraries[i].Artifacts(layout, goos) {
			if !integrity.ValidateArtifact(lib.Artifact) {
				queue = append(queue, lib)
			}
		}
	}

	slog.Debug("resolved libraries",
		"version", vd.ID,
		"declared", len(vd.Libraries),
		"queued", len(queue))

	return download.NewTracker(download.CategoryLibraries, queue, nil)
}

// ResolveMiscellaneous returns a tracker of the client jar and the client
// log configuration of vd when they are missing or invalid.
func ResolveMiscellaneous(layout state.Layout, vd *VersionData) *download.Tracker[artifact.Artifact] {
	var candidates []artifact.Artifact

	if d := vd.Downloads.Client; d != nil && d.URL != "" {
		candidates = append(candidates, artifact.Artifact{
			ID:   vd.ID + ".jar",
			Hash: d.SHA1,
			Algo: artifact.SHA1,
			Size: d.Size,
			URL:  d.URL,
			Path: layout.VersionFile(vd.ID, ".jar"),
		})
	}

	if lc := vd.Logging.Client; lc != nil && lc.File.URL != "" && lc.File.ID != "" {
		candidates = append(candidates, artifact.Artifact{
			ID:   lc.File.ID,
			Hash: lc.File.SHA1,
			Algo: artifact.SHA1,
			Size: lc.File.Size,
			URL:  lc.File.URL,
			Path: layout.LogConfigPath(lc.File.ID),
		})
	}

	var queue []artifact.Artifact
	for _, a := range candidates {
		if !integrity.ValidateArtifact(a) {
			queue = append(queue, a)
		}
	}
	return download.NewTracker(download.CategoryFiles, queue, nil)
}

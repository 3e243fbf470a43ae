// Package resolver flattens a distribution module tree into the artifacts
// that still need to be downloaded.
package resolver

import (
	"fmt"
	"log/slog"

	"github.com/steviee/assetguard/internal/artifact"
	"github.com/steviee/assetguard/internal/distribution"
	"github.com/steviee/assetguard/internal/integrity"
	"github.com/steviee/assetguard/internal/state"
)

// ValidateFunc reports whether the file at path matches the expected hash.
type ValidateFunc func(path string, algo artifact.HashAlgo, hash string) bool

// Result is the outcome of resolving a module tree.
type Result struct {
	// Artifacts lists the files that are missing or invalid, with their
	// download paths.
	Artifacts []artifact.Artifact
	TotalSize int64
	// Extract lists downloaded archives that must be unpacked afterwards.
	Extract []string
	// Skipped lists modules dropped because of a malformed coordinate or an
	// install path outside their root.
	Skipped []string
}

func (r *Result) merge(o Result) {
	r.Artifacts = append(r.Artifacts, o.Artifacts...)
	r.TotalSize += o.TotalSize
	r.Extract = append(r.Extract, o.Extract...)
	r.Skipped = append(r.Skipped, o.Skipped...)
}

// Resolver computes install paths for modules and checks them on disk.
type Resolver struct {
	layout   state.Layout
	validate ValidateFunc
	// selection overrides whether an optional module is enabled.
	selection map[string]bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithValidator replaces the integrity check, mainly for tests.
func WithValidator(fn ValidateFunc) Option {
	return func(r *Resolver) { r.validate = fn }
}

// WithSelection sets the enabled state of optional modules by id.
func WithSelection(selection map[string]bool) Option {
	return func(r *Resolver) { r.selection = selection }
}

// New creates a Resolver rooted at layout.
func New(layout state.Layout, opts ...Option) *Resolver {
	r := &Resolver{
		layout:   layout,
		validate: integrity.ValidateLocal,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveModules walks modules recursively and returns every artifact that
// fails validation along with the summed size.
func (r *Resolver) ResolveModules(modules []*distribution.Module, serverID string) Result {
	var res Result

	for _, m := range modules {
		if !m.Enabled(r.selection) {
			slog.Debug("skipping disabled optional module", "module", m.ID)
			continue
		}

		a, err := r.ArtifactFor(m, serverID)
		if err != nil {
			slog.Warn("skipping unresolvable module", "module", m.ID, "server", serverID, "error", err)
			res.Skipped = append(res.Skipped, m.ID)
			continue
		}

		validationPath := artifact.StripPackSuffix(a.Path)
		if !r.validate(validationPath, a.Algo, a.Hash) {
			res.Artifacts = append(res.Artifacts, a)
			res.TotalSize += a.Size
			if validationPath != a.Path {
				res.Extract = append(res.Extract, a.Path)
			}
		}

		if len(m.SubModules) > 0 {
			res.merge(r.ResolveModules(m.SubModules, serverID))
		}
	}

	return res
}

// ArtifactFor builds the artifact of a single module with its install path.
func (r *Resolver) ArtifactFor(m *distribution.Module, serverID string) (artifact.Artifact, error) {
	p, err := r.ModulePath(m, serverID)
	if err != nil {
		return artifact.Artifact{}, err
	}
	return artifact.Artifact{
		ID:   m.ID,
		Hash: m.Artifact.ExpectedHash(),
		Algo: artifact.MD5,
		Size: m.Artifact.Size,
		URL:  m.Artifact.URL,
		Path: p,
	}, nil
}

// ModulePath computes where a module is installed: the type-specific root
// joined with either the explicit artifact path or the Maven layout. Paths
// that would leave the root fail with state.ErrUnsafePath.
func (r *Resolver) ModulePath(m *distribution.Module, serverID string) (string, error) {
	c, err := m.Coordinate()
	if err != nil {
		return "", err
	}

	rel := m.Artifact.Path
	if rel == "" {
		rel = c.MavenPath()
	}

	var root string
	switch m.Type {
	case distribution.TypeLibrary, distribution.TypeForgeHosted, distribution.TypeFabricHosted:
		root = r.layout.LibrariesDir()
	case distribution.TypeForgeMod, distribution.TypeFabricMod:
		root = r.layout.ModstoreDir()
	case distribution.TypeVersionManifest:
		root = r.layout.VersionsDir()
		rel = c.Artifact + "/" + c.Artifact + ".json"
	default:
		if serverID == "" {
			return "", fmt.Errorf("file module %s needs a server id", m.ID)
		}
		root = r.layout.InstanceDir(serverID)
	}

	path, err := state.SafeJoin(root, rel)
	if err != nil {
		return "", fmt.Errorf("module %s: %w", m.ID, err)
	}
	return path, nil
}

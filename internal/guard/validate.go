package guard

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"

	"github.com/steviee/assetguard/internal/artifact"
	"github.com/steviee/assetguard/internal/distribution"
	"github.com/steviee/assetguard/internal/download"
	"github.com/steviee/assetguard/internal/events"
	"github.com/steviee/assetguard/internal/extract"
	"github.com/steviee/assetguard/internal/forge"
	"github.com/steviee/assetguard/internal/integrity"
	"github.com/steviee/assetguard/internal/minecraft"
	"github.com/steviee/assetguard/internal/resolver"
	"github.com/steviee/assetguard/internal/state"
)

// Result is the outcome of ValidateEverything.
type Result struct {
	Server      *distribution.Server
	VersionData *minecraft.VersionData
	// ForgeData is nil for servers without a Forge module.
	ForgeData *forge.Data
	// ModListPath is set when a legacy mod list was written.
	ModListPath string
	JavaExec    string
	// Summaries holds one entry per download pass.
	Summaries []*download.Summary
}

// Downloaded returns the number of files fetched across all passes.
func (r *Result) Downloaded() int {
	n := 0
	for _, s := range r.Summaries {
		n += s.Downloaded
	}
	return n
}

// Err combines the item failures of every pass, or returns nil.
func (r *Result) Err() error {
	var result *multierror.Error
	for _, s := range r.Summaries {
		if err := s.Err(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (g *AssetGuard) resolver() *resolver.Resolver {
	return resolver.New(g.layout, resolver.WithSelection(g.selection))
}

// PullDistribution fetches the distribution index, falling back to the
// cached copy when the remote is unreachable.
func (g *AssetGuard) PullDistribution(ctx context.Context) (*distribution.Index, error) {
	return g.distro.Pull(ctx)
}

// LoadServer pulls the distribution and returns the server with the given
// id, or the main server when id is empty. Servers whose id or Minecraft
// version cannot be used as a directory name are rejected.
func (g *AssetGuard) LoadServer(ctx context.Context, id string) (*distribution.Server, error) {
	index, err := g.PullDistribution(ctx)
	if err != nil {
		return nil, err
	}

	var server *distribution.Server
	if id == "" {
		server, err = index.MainServer()
	} else {
		server, err = index.Server(id)
	}
	if err != nil {
		return nil, err
	}

	if err := state.ValidateServerID(server.ID); err != nil {
		return nil, err
	}
	if err := state.ValidateVersion(server.MinecraftVersion); err != nil {
		return nil, fmt.Errorf("server %s: %w", server.ID, err)
	}
	return server, nil
}

// ValidateDistribution queues every enabled module of server that is
// missing or invalid. Packed modules are also queued for extraction.
func (g *AssetGuard) ValidateDistribution(server *distribution.Server) resolver.Result {
	g.observer.Notify(events.Validate(PhaseDistribution))

	res := g.resolver().ResolveModules(server.Modules, server.ID)
	g.enqueue(download.NewTracker(download.CategoryForge, res.Artifacts, nil), res.Extract...)

	slog.Debug("validated distribution modules",
		"server", server.ID,
		"queued", len(res.Artifacts),
		"size", res.TotalSize,
		"extract", len(res.Extract))

	return res
}

// LoadVersionData returns the version data for version.
func (g *AssetGuard) LoadVersionData(ctx context.Context, version string, force bool) (*minecraft.VersionData, error) {
	g.observer.Notify(events.Validate(PhaseVersion))
	return g.mc.LoadVersionData(ctx, g.layout, version, force)
}

// ValidateAssets queues the asset objects of vd that are missing or invalid.
func (g *AssetGuard) ValidateAssets(ctx context.Context, vd *minecraft.VersionData, force bool) error {
	g.observer.Notify(events.Validate(PhaseAssets))

	t, err := g.mc.ResolveAssetIndex(ctx, g.layout, vd, force, g.observer)
	if err != nil {
		return err
	}
	g.enqueue(t)
	return nil
}

// ValidateLibraries queues the libraries of vd that apply to this OS.
func (g *AssetGuard) ValidateLibraries(vd *minecraft.VersionData) {
	g.observer.Notify(events.Validate(PhaseLibraries))
	g.enqueue(minecraft.ResolveLibraries(g.layout, vd, g.goos))
}

// ValidateMiscellaneous queues the client jar and log configuration of vd.
func (g *AssetGuard) ValidateMiscellaneous(vd *minecraft.VersionData) {
	g.observer.Notify(events.Validate(PhaseFiles))
	g.enqueue(minecraft.ResolveMiscellaneous(g.layout, vd))
}

// installedRuntime returns the executable of a runtime already extracted
// below the runtime directory, or "".
func (g *AssetGuard) installedRuntime() string {
	dir := g.layout.RuntimeDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		exe := extract.JavaExecutable(filepath.Join(dir, e.Name()), g.goos)
		if _, err := os.Stat(exe); err == nil {
			return exe
		}
	}
	return ""
}

// ValidateRuntime makes sure a Java runtime is available. An installed
// runtime is used as is; otherwise the latest release is queued and
// extracted once downloaded.
func (g *AssetGuard) ValidateRuntime(ctx context.Context) error {
	g.observer.Notify(events.Validate(PhaseRuntime))

	if exe := g.installedRuntime(); exe != "" {
		slog.Debug("using installed runtime", "java", exe)
		g.setJavaExecutable(exe)
		return nil
	}

	release, err := g.jre.Latest(ctx, g.javaMajor, g.goos)
	if err != nil {
		return err
	}

	dest := g.layout.RuntimeDir()
	a := release.Artifact(dest)
	install := func(ctx context.Context, a artifact.Artifact) error {
		exe, err := extract.ExtractRuntimeArchive(ctx, a.Path, dest, g.goos)
		if err != nil {
			return err
		}
		g.setJavaExecutable(exe)
		return nil
	}

	// A verified archive left behind by an interrupted pass only needs
	// extracting.
	if integrity.ValidateArtifact(a) {
		return install(ctx, a)
	}

	g.enqueue(download.NewTracker(download.CategoryRuntime, []artifact.Artifact{a}, install))
	return nil
}

// LoadForgeData returns the Forge version data of server. A VersionManifest
// submodule of the Forge module takes precedence over the version.json
// inside the Forge jar.
func (g *AssetGuard) LoadForgeData(server *distribution.Server) (*forge.Data, error) {
	g.observer.Notify(events.Validate(PhaseForge))

	m := server.FindModule(distribution.TypeForgeHosted)
	if m == nil {
		return nil, fmt.Errorf("%w: %s", forge.ErrNoForgeModule, server.ID)
	}

	r := g.resolver()
	for _, sm := range m.SubModules {
		if sm.Type != distribution.TypeVersionManifest {
			continue
		}
		path, err := r.ModulePath(sm, server.ID)
		if err != nil {
			return nil, err
		}
		return forge.LoadVersionManifest(path)
	}

	path, err := r.ModulePath(m, server.ID)
	if err != nil {
		return nil, err
	}
	return forge.FinalizeForgeAsset(g.layout, path)
}

// ValidateForgeLibraries queues the client libraries of fd that fail their
// checksums and returns how many were queued.
func (g *AssetGuard) ValidateForgeLibraries(fd *forge.Data) int {
	t := forge.ResolveLibraries(g.layout, fd)
	if t.Len() > 0 {
		g.enqueue(t)
	}
	return t.Len()
}

// WriteModList writes the legacy mod list of server. Minecraft 1.13 and
// newer do not read it; "" is returned for them.
func (g *AssetGuard) WriteModList(server *distribution.Server, fd *forge.Data) (string, error) {
	if forge.MCVersionAtLeast("1.13", server.MinecraftVersion) {
		return "", nil
	}
	mods := forge.EnabledMods(server.Modules, g.selection)
	list, err := forge.BuildModList(g.layout, server.ID, fd.ID, mods)
	if err != nil {
		return "", err
	}
	return forge.WriteModList(g.layout, server.ID, list)
}

// ValidateEverything runs a full pass for a server (the main server when
// serverID is empty): it validates every category, downloads what is
// missing and finalizes Forge. The base directory is locked for the
// duration of the pass; ErrLockHeld is returned when another pass keeps it
// locked past the configured wait.
//
// Item failures do not fail the pass; they are reported through
// Result.Err. Forge finalization is skipped when the Forge jar itself
// could not be fetched.
func (g *AssetGuard) ValidateEverything(ctx context.Context, serverID string) (*Result, error) {
	lock, err := state.LockLayout(ctx, g.layout, g.lockWait)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			slog.Warn("failed to release lock", "path", lock.Path(), "error", err)
		}
	}()

	g.Reset()

	server, err := g.LoadServer(ctx, serverID)
	if err != nil {
		return nil, err
	}
	res := &Result{Server: server}

	g.ValidateDistribution(server)

	vd, err := g.LoadVersionData(ctx, server.MinecraftVersion, false)
	if err != nil {
		return res, err
	}
	res.VersionData = vd

	if err := g.ValidateAssets(ctx, vd, false); err != nil {
		return res, err
	}
	g.ValidateLibraries(vd)
	g.ValidateMiscellaneous(vd)

	if g.runtime {
		if err := g.ValidateRuntime(ctx); err != nil {
			return res, err
		}
	}

	summary, err := g.ProcessDownloadQueues(ctx)
	if summary != nil {
		res.Summaries = append(res.Summaries, summary)
	}
	if err != nil {
		return res, err
	}
	res.JavaExec = g.JavaExecutable()

	forgeModule := server.FindModule(distribution.TypeForgeHosted)
	if forgeModule == nil {
		return res, nil
	}
	for _, id := range summary.FailedIDs(download.CategoryForge) {
		if id == forgeModule.ID {
			slog.Warn("forge jar unavailable, skipping forge finalization", "module", id)
			return res, nil
		}
	}

	fd, err := g.LoadForgeData(server)
	if err != nil {
		return res, err
	}
	res.ForgeData = fd

	if g.ValidateForgeLibraries(fd) > 0 {
		summary, err := g.ProcessDownloadQueues(ctx, download.CategoryForge)
		if summary != nil {
			res.Summaries = append(res.Summaries, summary)
		}
		if err != nil {
			return res, err
		}
	}

	path, err := g.WriteModList(server, fd)
	if err != nil {
		return res, err
	}
	res.ModListPath = path

	slog.Debug("validation finished",
		"server", server.ID,
		"downloaded", res.Downloaded(),
		"modlist", path)

	return res, nil
}

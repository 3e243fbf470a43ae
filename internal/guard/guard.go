// Package guard orchestrates a validation pass: it resolves what a server
// needs, queues everything missing or corrupt, drains the queues and
// finalizes Forge.
package guard

import (
	"context"
	goruntime "runtime"
	"sync"
	"time"

	"github.com/steviee/assetguard/internal/distribution"
	"github.com/steviee/assetguard/internal/download"
	"github.com/steviee/assetguard/internal/events"
	"github.com/steviee/assetguard/internal/extract"
	"github.com/steviee/assetguard/internal/jre"
	"github.com/steviee/assetguard/internal/minecraft"
	"github.com/steviee/assetguard/internal/state"
)

// Validation phases announced with validate events.
const (
	PhaseDistribution = "distribution"
	PhaseVersion      = "version"
	PhaseAssets       = "assets"
	PhaseLibraries    = "libraries"
	PhaseFiles        = "files"
	PhaseRuntime      = "runtime"
	PhaseDownload     = "download"
	PhaseForge        = "forge"
)

// Config holds AssetGuard configuration.
type Config struct {
	Layout       state.Layout
	Distribution *distribution.Config
	Minecraft    *minecraft.Config
	JRE          *jre.Config
	Engine       *download.Config
	Observer     events.Observer
	// Selection enables or disables optional modules by id.
	Selection map[string]bool
	// GOOS selects library natives and the runtime build. Empty means the
	// running OS.
	GOOS string
	// JavaMajor is the runtime version fetched by ValidateRuntime.
	JavaMajor int
	// Runtime makes ValidateEverything also validate the Java runtime.
	Runtime bool
	// JavaExec runs the pack.xz unpacker until ValidateRuntime installs a
	// runtime.
	JavaExec string
	// UnpackerJar enables pack.xz extraction when no Engine.Unpacker is set.
	UnpackerJar string
	// LockWait bounds how long ValidateEverything waits for another pass
	// holding the base directory. Zero means state.DefaultLockWait.
	LockWait time.Duration
}

// FromState builds a guard configuration from the user configuration.
func FromState(cfg *state.Config, layout state.Layout) *Config {
	return &Config{
		Layout: layout,
		Distribution: &distribution.Config{
			URL:              cfg.Distribution.URL,
			Timeout:          cfg.Distribution.Timeout,
			SchemaConstraint: cfg.Distribution.SchemaConstraint,
		},
		Minecraft: &minecraft.Config{
			ManifestURL:     cfg.Minecraft.ManifestURL,
			ResourceURL:     cfg.Minecraft.ResourceURL,
			Timeout:         cfg.Downloads.MetadataTimeout,
			AssetValidators: cfg.Downloads.AssetValidators,
		},
		JRE: &jre.Config{
			BaseURL:   cfg.Runtime.AdoptiumURL,
			ImageType: cfg.Runtime.ImageType,
		},
		Engine: &download.Config{
			Limits:      cfg.Downloads.Concurrency,
			ItemTimeout: cfg.Downloads.ItemTimeout,
			Retries:     cfg.Downloads.Retries,
		},
		JavaMajor:   cfg.Runtime.JavaMajor,
		JavaExec:    cfg.Runtime.JavaExec,
		UnpackerJar: cfg.Runtime.UnpackerJar,
	}
}

// AssetGuard validates and downloads everything a server needs. Download
// queues are rebuilt on every pass and emptied when they are processed.
type AssetGuard struct {
	layout    state.Layout
	distro    *distribution.Client
	mc        *minecraft.Client
	jre       *jre.Client
	engine    *download.Engine
	observer  events.Observer
	selection map[string]bool
	goos      string
	javaMajor int
	runtime   bool
	lockWait  time.Duration

	mu       sync.Mutex
	queues   []download.Queue
	extract  []string
	javaExec string
}

// New creates an AssetGuard.
func New(config *Config) (*AssetGuard, error) {
	if config == nil {
		config = &Config{}
	}

	if config.Observer == nil {
		config.Observer = events.Discard
	}

	if config.GOOS == "" {
		config.GOOS = goruntime.GOOS
	}

	if config.JavaMajor == 0 {
		config.JavaMajor = 8
	}

	distCfg := config.Distribution
	if distCfg == nil {
		distCfg = &distribution.Config{}
	}
	if distCfg.CachePath == "" {
		distCfg.CachePath = config.Layout.DistributionPath()
	}
	distro, err := distribution.NewClient(distCfg)
	if err != nil {
		return nil, err
	}

	engineCfg := download.Config{}
	if config.Engine != nil {
		engineCfg = *config.Engine
	}
	engineCfg.Observer = config.Observer

	g := &AssetGuard{
		layout:    config.Layout,
		distro:    distro,
		mc:        minecraft.NewClient(config.Minecraft),
		jre:       jre.NewClient(config.JRE),
		observer:  config.Observer,
		selection: config.Selection,
		goos:      config.GOOS,
		javaMajor: config.JavaMajor,
		runtime:   config.Runtime,
		lockWait:  config.LockWait,
		javaExec:  config.JavaExec,
	}

	if engineCfg.Unpacker == nil && config.UnpackerJar != "" {
		jar := config.UnpackerJar
		engineCfg.Unpacker = extract.UnpackerFunc(func(ctx context.Context, archives []string) error {
			return extract.NewPackXZUnpacker(g.JavaExecutable(), jar).Unpack(ctx, archives)
		})
	}
	g.engine = download.NewEngine(&engineCfg)

	return g, nil
}

// Layout returns the directory layout the guard writes into.
func (g *AssetGuard) Layout() state.Layout {
	return g.layout
}

// JavaExecutable returns the runtime executable found or installed by
// ValidateRuntime, or the configured one before it ran.
func (g *AssetGuard) JavaExecutable() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.javaExec
}

func (g *AssetGuard) setJavaExecutable(path string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.javaExec = path
}

func (g *AssetGuard) enqueue(q download.Queue, extract ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queues = append(g.queues, q)
	g.extract = append(g.extract, extract...)
}

// Pending returns the number of queued items and their declared size.
func (g *AssetGuard) Pending() (items int, size int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, q := range g.queues {
		items += q.Len()
		size += q.Size()
	}
	return items, size
}

// Reset drops every queued download.
func (g *AssetGuard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queues = nil
	g.extract = nil
}

// takePlan removes the queues of the given categories (all when empty) and
// returns them as a download plan.
func (g *AssetGuard) takePlan(categories []string) download.Plan {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(categories) == 0 {
		plan := download.Plan{Queues: g.queues, Extract: g.extract}
		g.queues = nil
		g.extract = nil
		return plan
	}

	want := make(map[string]bool, len(categories))
	for _, c := range categories {
		want[c] = true
	}

	var plan download.Plan
	var keep []download.Queue
	for _, q := range g.queues {
		if want[q.Category()] {
			plan.Queues = append(plan.Queues, q)
		} else {
			keep = append(keep, q)
		}
	}
	g.queues = keep

	// Extraction only concerns distribution modules, which live in the forge
	// category.
	if want[download.CategoryForge] {
		plan.Extract = g.extract
		g.extract = nil
	}
	return plan
}

// ProcessDownloadQueues drains the queued categories, or every category when
// none are given. See download.Engine.ProcessQueues for error semantics.
func (g *AssetGuard) ProcessDownloadQueues(ctx context.Context, categories ...string) (*download.Summary, error) {
	g.observer.Notify(events.Validate(PhaseDownload))
	return g.engine.ProcessQueues(ctx, g.takePlan(categories))
}

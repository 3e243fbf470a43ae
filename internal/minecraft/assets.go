package minecraft

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/steviee/assetguard/internal/artifact"
	"github.com/steviee/assetguard/internal/download"
	"github.com/steviee/assetguard/internal/errdefs"
	"github.com/steviee/assetguard/internal/events"
	"github.com/steviee/assetguard/internal/integrity"
	"github.com/steviee/assetguard/internal/state"
)

// AssetIndex maps logical asset names to content-addressed objects.
type AssetIndex struct {
	Objects map[string]AssetObject `json:"objects"`
}

// AssetObject is one entry of the asset index.
type AssetObject struct {
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}

// AssetURL returns the download URL of an object in the resource store.
func (c *Client) AssetURL(hash string) string {
	return c.resourceURL + "/" + hash[:2] + "/" + hash
}

// loadAssetIndex returns the asset index of vd, downloading it when the
// cached copy is missing, fails its SHA1 check, or force is set.
func (c *Client) loadAssetIndex(ctx context.Context, layout state.Layout, vd *VersionData, force bool) (*AssetIndex, error) {
	ref := vd.AssetIndex
	if ref.ID == "" || ref.URL == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoAssetIndex, vd.ID)
	}
	path := layout.AssetIndexPath(ref.ID)

	var data []byte
	if !force && integrity.ValidateLocal(path, artifact.SHA1, ref.SHA1) {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, errdefs.FS("read", path, err)
		}
	} else {
		slog.Debug("downloading asset index", "id", ref.ID, "url", ref.URL)
		body, err := c.fetch(ctx, ref.URL)
		if err != nil {
			return nil, err
		}
		if err := state.AtomicWrite(path, body, 0644); err != nil {
			slog.Warn("failed to cache asset index", "path", path, "error", err)
		}
		data = body
	}

	var index AssetIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, &errdefs.ParseError{What: "asset index " + ref.ID, Err: err}
	}
	return &index, nil
}

// ResolveAssetIndex loads the asset index of vd and returns a tracker holding
// every object that is missing or fails validation. Objects are hashed with
// bounded concurrency and a progress event is sent per object.
func (c *Client) ResolveAssetIndex(ctx context.Context, layout state.Layout, vd *VersionData, force bool, observer events.Observer) (*download.Tracker[artifact.Asset], error) {
	if observer == nil {
		observer = events.Discard
	}

	index, err := c.loadAssetIndex(ctx, layout, vd, force)
	if err != nil {
		return nil, err
	}

	// Several names may share one object; each hash is fetched once.
	names := make([]string, 0, len(index.Objects))
	for name := range index.Objects {
		names = append(names, name)
	}
	sort.Strings(names)

	seen := make(map[string]bool, len(names))
	candidates := make([]artifact.Asset, 0, len(names))
	for _, name := range names {
		obj := index.Objects[name]
		if !state.ValidObjectHash(obj.Hash) {
			slog.Warn("skipping asset with invalid hash", "name", name, "error", ErrInvalidAssetEntry)
			continue
		}
		if seen[obj.Hash] {
			continue
		}
		seen[obj.Hash] = true
		candidates = append(candidates, artifact.Asset{
			Artifact: artifact.Artifact{
				ID:   name,
				Hash: obj.Hash,
				Algo: artifact.SHA1,
				Size: obj.Size,
				URL:  c.AssetURL(obj.Hash),
				Path: layout.AssetObjectPath(obj.Hash),
			},
			Name: name,
		})
	}

	var (
		mu      sync.Mutex
		queued  = make([]bool, len(candidates))
		checked int64
	)
	total := int64(len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.assetValidators)
	for i := range candidates {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			a := candidates[i].Artifact
			invalid := !integrity.ValidateLocal(a.Path, a.Algo, a.Hash)

			mu.Lock()
			defer mu.Unlock()
			queued[i] = invalid
			checked++
			observer.Notify(events.Progress(download.CategoryAssets, checked, total))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var assets []artifact.Asset
	for i, a := range candidates {
		if queued[i] {
			assets = append(assets, a)
		}
	}

	slog.Debug("resolved asset index",
		"id", vd.AssetIndex.ID,
		"objects", len(candidates),
		"queued", len(assets))

	return download.NewTracker(download.CategoryAssets, assets, nil), nil
}

package forge

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/steviee/assetguard/internal/distribution"
	"github.com/steviee/assetguard/internal/state"
)

// AbsolutePrefix marks an absolute repository root in a mod list.
const AbsolutePrefix = "absolute:"

// ModList is the mod_list.json read by legacy Forge to locate mods in the
// shared mod store.
type ModList struct {
	RepositoryRoot string   `json:"repositoryRoot"`
	ModRef         []string `json:"modRef"`
}

// ModListPath returns mods/mod_list.json inside a server instance.
func ModListPath(layout state.Layout, serverID string) string {
	return filepath.Join(layout.InstanceDir(serverID), "mods", "mod_list.json")
}

// EnabledMods returns the Forge mods of modules that are enabled under
// selection, descending into the submodules of enabled modules.
func EnabledMods(modules []*distribution.Module, selection map[string]bool) []*distribution.Module {
	var mods []*distribution.Module
	for _, m := range modules {
		if !m.Enabled(selection) {
			continue
		}
		if m.Type == distribution.TypeForgeMod {
			mods = append(mods, m)
		}
		mods = append(mods, EnabledMods(m.SubModules, selection)...)
	}
	return mods
}

// BuildModList builds the mod list of a server instance for the Forge build
// forgeID. Builds that require an absolute root get the absolute mod store
// path; older builds get the mod store relative to the instance directory.
func BuildModList(layout state.Layout, serverID, forgeID string, mods []*distribution.Module) (*ModList, error) {
	list := &ModList{ModRef: make([]string, 0, len(mods))}

	if RequiresAbsolute(forgeID) {
		abs, err := filepath.Abs(layout.ModstoreDir())
		if err != nil {
			return nil, fmt.Errorf("resolve mod store: %w", err)
		}
		list.RepositoryRoot = AbsolutePrefix + abs
	} else {
		rel, err := filepath.Rel(layout.InstanceDir(serverID), layout.ModstoreDir())
		if err != nil {
			return nil, fmt.Errorf("relativize mod store: %w", err)
		}
		list.RepositoryRoot = filepath.ToSlash(rel) + "/"
	}

	for _, m := range mods {
		c, err := m.Coordinate()
		if err != nil {
			slog.Warn("skipping mod with malformed id", "module", m.ID, "error", err)
			continue
		}
		if m.Type == distribution.TypeForgeMod {
			list.ModRef = append(list.ModRef, c.ExtensionlessID())
		} else {
			list.ModRef = append(list.ModRef, c.ExtensionlessID()+"@"+c.Extension)
		}
	}
	return list, nil
}

// WriteModList stores list as the mod list of a server instance and returns
// its path.
func WriteModList(layout state.Layout, serverID string, list *ModList) (string, error) {
	data, err := json.MarshalIndent(list, "", "    ")
	if err != nil {
		return "", fmt.Errorf("marshal mod list: %w", err)
	}

	path := ModListPath(layout, serverID)
	if err := state.AtomicWrite(path, data, 0644); err != nil {
		return "", fmt.Errorf("write mod list: %w", err)
	}

	slog.Debug("wrote mod list", "path", path, "mods", len(list.ModRef))
	return path, nil
}

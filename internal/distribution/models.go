package distribution

import (
	"fmt"
	"strings"
)

// ModuleType is the kind of a distribution module.
type ModuleType string

const (
	TypeLibrary         ModuleType = "Library"
	TypeForgeHosted     ModuleType = "ForgeHosted"
	TypeFabricHosted    ModuleType = "FabricHosted"
	TypeForgeMod        ModuleType = "ForgeMod"
	TypeFabricMod       ModuleType = "FabricMod"
	TypeFile            ModuleType = "File"
	TypeVersionManifest ModuleType = "VersionManifest"
)

// DefaultExtension returns the file extension used when a module id has no @ext suffix.
func (t ModuleType) DefaultExtension() string {
	switch t {
	case TypeLibrary, TypeForgeHosted, TypeFabricHosted, TypeForgeMod, TypeFabricMod:
		return "jar"
	default:
		return ""
	}
}

// IsMod reports whether modules of this type live in the modstore.
func (t ModuleType) IsMod() bool {
	return t == TypeForgeMod || t == TypeFabricMod
}

// Index is the root distribution document.
type Index struct {
	Version string    `json:"version"`
	RSS     string    `json:"rss"`
	Servers []*Server `json:"servers"`
}

// Server is an installable server or modpack.
type Server struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Icon             string    `json:"icon,omitempty"`
	Version          string    `json:"version"`
	Address          string    `json:"address"`
	MinecraftVersion string    `json:"minecraftVersion"`
	MainServer       bool      `json:"mainServer"`
	AutoConnect      bool      `json:"autoconnect"`
	Modules          []*Module `json:"modules"`
}

// Module is a node of a server's artifact tree.
type Module struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Type       ModuleType `json:"type"`
	Required   *Required  `json:"required,omitempty"`
	Artifact   Artifact   `json:"artifact"`
	SubModules []*Module  `json:"subModules,omitempty"`
}

// Artifact is the downloadable file declared by a module.
type Artifact struct {
	Size int64  `json:"size"`
	MD5  string `json:"MD5,omitempty"`
	// Hash is an alternate spelling used by some distributions.
	Hash string `json:"hash,omitempty"`
	URL  string `json:"url"`
	// Path overrides the Maven layout relative to the type root.
	Path string `json:"path,omitempty"`
}

// Required describes whether a module must be installed.
type Required struct {
	Value *bool `json:"value,omitempty"`
	Def   *bool `json:"def,omitempty"`
}

// MainServer returns the server flagged as main, or the first server.
func (i *Index) MainServer() (*Server, error) {
	if len(i.Servers) == 0 {
		return nil, ErrNoServers
	}
	for _, s := range i.Servers {
		if s.MainServer {
			return s, nil
		}
	}
	return i.Servers[0], nil
}

// Server returns the server with the given id.
func (i *Index) Server(id string) (*Server, error) {
	for _, s := range i.Servers {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrServerNotFound, id)
}

// ExpectedHash returns the declared MD5, lowercased.
func (a Artifact) ExpectedHash() string {
	if a.MD5 != "" {
		return strings.ToLower(a.MD5)
	}
	return strings.ToLower(a.Hash)
}

// IsRequired reports whether the module must be installed. A module without
// a requirement block is required.
func (m *Module) IsRequired() bool {
	if m.Required == nil || m.Required.Value == nil {
		return true
	}
	return *m.Required.Value
}

// EnabledByDefault reports whether an optional module is enabled by default.
func (m *Module) EnabledByDefault() bool {
	if m.Required == nil || m.Required.Def == nil {
		return true
	}
	return *m.Required.Def
}

// Enabled reports whether the module is installed given a selection of
// optional module ids. Required modules are always enabled.
func (m *Module) Enabled(selection map[string]bool) bool {
	if m.IsRequired() {
		return true
	}
	if v, ok := selection[m.ID]; ok {
		return v
	}
	return m.EnabledByDefault()
}

// Coordinate parses the module id.
func (m *Module) Coordinate() (Coordinate, error) {
	return ParseCoordinate(m.ID, m.Type)
}

// Walk calls fn for m and every descendant in depth-first order.
func (m *Module) Walk(fn func(*Module)) {
	fn(m)
	for _, sm := range m.SubModules {
		sm.Walk(fn)
	}
}

// FindModule returns the first module of type t in the tree, searching
// top-level modules first.
func (s *Server) FindModule(t ModuleType) *Module {
	var found *Module
	for _, m := range s.Modules {
		m.Walk(func(mm *Module) {
			if found == nil && mm.Type == t {
				found = mm
			}
		})
		if found != nil {
			return found
		}
	}
	return nil
}

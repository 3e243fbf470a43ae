package distribution

import (
	"fmt"
	"path"
	"strings"
)

// Coordinate is a parsed Maven identifier group:artifact:version[:classifier][@ext].
type Coordinate struct {
	Group      string
	Artifact   string
	Version    string
	Classifier string
	Extension  string
}

// ParseCoordinate parses id. When id carries no @ext suffix the extension
// defaults by module type.
func ParseCoordinate(id string, t ModuleType) (Coordinate, error) {
	base, ext, hasExt := strings.Cut(id, "@")
	parts := strings.Split(base, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return Coordinate{}, fmt.Errorf("%w: %q", ErrMalformedCoordinate, id)
	}
	for _, p := range parts {
		if p == "" {
			return Coordinate{}, fmt.Errorf("%w: %q", ErrMalformedCoordinate, id)
		}
	}

	c := Coordinate{
		Group:    parts[0],
		Artifact: parts[1],
		Version:  parts[2],
	}
	if len(parts) == 4 {
		c.Classifier = parts[3]
	}
	if hasExt && ext != "" {
		c.Extension = ext
	} else {
		c.Extension = t.DefaultExtension()
	}
	return c, nil
}

// FileName returns artifact-version[-classifier][.ext].
func (c Coordinate) FileName() string {
	name := c.Artifact + "-" + c.Version
	if c.Classifier != "" {
		name += "-" + c.Classifier
	}
	if c.Extension != "" {
		name += "." + c.Extension
	}
	return name
}

// MavenPath returns the slash-separated repository path of the artifact.
func (c Coordinate) MavenPath() string {
	segments := strings.Split(c.Group, ".")
	segments = append(segments, c.Artifact, c.Version, c.FileName())
	return path.Join(segments...)
}

// ExtensionlessID returns group:artifact:version[:classifier], the form used
// in mod lists.
func (c Coordinate) ExtensionlessID() string {
	id := c.Group + ":" + c.Artifact + ":" + c.Version
	if c.Classifier != "" {
		id += ":" + c.Classifier
	}
	return id
}

// String returns the full coordinate including the extension.
func (c Coordinate) String() string {
	if c.Extension == "" {
		return c.ExtensionlessID()
	}
	return c.ExtensionlessID() + "@" + c.Extension
}

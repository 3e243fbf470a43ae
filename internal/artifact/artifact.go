// Package artifact holds the value types describing a downloadable file.
package artifact

import "strings"

// HashAlgo names the digest used to verify an artifact.
type HashAlgo string

const (
	// MD5 is used by distribution-declared artifacts.
	MD5 HashAlgo = "md5"
	// SHA1 is used by upstream-declared artifacts.
	SHA1 HashAlgo = "sha1"
	// SHA256 is used by runtime archives.
	SHA256 HashAlgo = "sha256"
)

// PackXZSuffix marks a legacy compressed library that must be unpacked after download.
const PackXZSuffix = ".pack.xz"

// Artifact is a concrete downloadable file.
type Artifact struct {
	// ID identifies the artifact in logs and events.
	ID   string
	Hash string
	Algo HashAlgo
	Size int64
	URL  string
	// Path is the destination on disk.
	Path string
}

// Asset is a content-addressed game asset.
type Asset struct {
	Artifact
	// Name is the logical asset name from the index, e.g. "minecraft/sounds/ambient/cave/cave1.ogg".
	Name string
}

// Library is an upstream-declared library artifact.
type Library struct {
	Artifact
	// Native is set when the artifact is a natives classifier jar.
	Native bool
}

// Downloadable is implemented by every type that can sit in a download queue.
type Downloadable interface {
	Target() Artifact
}

// Target returns the artifact itself.
func (a Artifact) Target() Artifact { return a }

// IsPacked reports whether the artifact path carries the legacy pack.xz suffix.
func (a Artifact) IsPacked() bool {
	return HasPackSuffix(a.Path)
}

// HasPackSuffix reports whether path ends in the pack.xz suffix, case-insensitively.
func HasPackSuffix(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), PackXZSuffix)
}

// StripPackSuffix removes the pack.xz suffix from path if present.
func StripPackSuffix(path string) string {
	if !HasPackSuffix(path) {
		return path
	}
	return path[:len(path)-len(PackXZSuffix)]
}

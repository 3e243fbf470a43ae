// Package integrity validates local files against declared content hashes.
package integrity

import (
	"archive/zip"
	"bufio"
	"bytes"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/steviee/assetguard/internal/artifact"
	"github.com/steviee/assetguard/internal/errdefs"
)

// ChecksumsEntry is the name of the checksum manifest shipped inside legacy jars.
const ChecksumsEntry = "checksums.sha1"

// ErrUnsupportedAlgo is returned for an unknown hash algorithm.
var ErrUnsupportedAlgo = errors.New("unsupported hash algorithm")

func newHash(algo artifact.HashAlgo) (hash.Hash, error) {
	switch artifact.HashAlgo(strings.ToLower(string(algo))) {
	case artifact.MD5:
		return md5.New(), nil
	case artifact.SHA1:
		return sha1.New(), nil
	case artifact.SHA256:
		return sha256.New(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgo, algo)
	}
}

// HashReader returns the lowercase hex digest of everything read from r.
func HashReader(r io.Reader, algo artifact.HashAlgo) (string, error) {
	h, err := newHash(algo)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashFile returns the lowercase hex digest of the file at path.
func HashFile(path string, algo artifact.HashAlgo) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errdefs.FS("open", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	sum, err := HashReader(f, algo)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return sum, nil
}

// ValidateLocal reports whether the file at path exists and matches expected.
// An empty expected hash skips the content check.
func ValidateLocal(path string, algo artifact.HashAlgo, expected string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if expected == "" {
		return true
	}

	sum, err := HashFile(path, algo)
	if err != nil {
		slog.Debug("hash local file", "path", path, "error", err)
		return false
	}
	return strings.EqualFold(sum, expected)
}

// ValidateArtifact validates an artifact at its destination path.
func ValidateArtifact(a artifact.Artifact) bool {
	return ValidateLocal(a.Path, a.Algo, a.Hash)
}

// ValidateForgeChecksum validates a file against a set of accepted SHA1 hashes.
// Jars whose top-level hash is not accepted fall through to ValidateJarDeep.
func ValidateForgeChecksum(path string, checksums []string) bool {
	if _, err := os.Stat(path); err != nil {
		return false
	}
	if len(checksums) == 0 {
		return true
	}

	sum, err := HashFile(path, artifact.SHA1)
	if err != nil {
		slog.Debug("hash local file", "path", path, "error", err)
		return false
	}
	if containsFold(checksums, sum) {
		return true
	}
	if !strings.HasSuffix(strings.ToLower(path), ".jar") {
		return false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		slog.Debug("read jar", "path", path, "error", errdefs.FS("read", path, err))
		return false
	}
	return ValidateJarDeep(data, checksums)
}

// ValidateJarDeep verifies a jar that ships a checksums.sha1 manifest. The
// manifest's own hash must be accepted and every entry it lists must match.
func ValidateJarDeep(jar []byte, checksums []string) bool {
	zr, err := zip.NewReader(bytes.NewReader(jar), int64(len(jar)))
	if err != nil {
		slog.Debug("open jar", "error", err)
		return false
	}

	hashes := make(map[string]string, len(zr.File))
	var expected map[string]string

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		data, err := readZipEntry(f)
		if err != nil {
			slog.Debug("read jar entry", "entry", f.Name, "error", err)
			return false
		}
		if f.Name == ChecksumsEntry {
			expected = ParseChecksums(string(data))
		}
		sum := sha1.Sum(data)
		hashes[f.Name] = hex.EncodeToString(sum[:])
	}

	manifestHash, ok := hashes[ChecksumsEntry]
	if !ok || !containsFold(checksums, manifestHash) {
		return false
	}

	for name, want := range expected {
		if !strings.EqualFold(hashes[name], want) {
			slog.Debug("jar entry hash mismatch", "entry", name, "expected", want, "actual", hashes[name])
			return false
		}
	}
	return true
}

// ParseChecksums parses "<hash> <name>" lines into a name to hash map.
func ParseChecksums(content string) map[string]string {
	out := make(map[string]string)
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		hashPart, name, ok := strings.Cut(line, " ")
		if !ok || name == "" {
			continue
		}
		out[name] = hashPart
	}
	return out
}

// ReadZipEntry returns the content of the named entry in the zip file at path.
// It returns fs.ErrNotExist when the entry is absent.
func ReadZipEntry(path, name string) ([]byte, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, errdefs.FS("open", path, err)
	}
	defer func() {
		_ = zr.Close()
	}()

	for _, f := range zr.File {
		if f.Name == name {
			return readZipEntry(f)
		}
	}
	return nil, fs.ErrNotExist
}

func readZipEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rc.Close()
	}()
	return io.ReadAll(rc)
}

func containsFold(list []string, s string) bool {
	return slices.ContainsFunc(list, func(v string) bool {
		return strings.EqualFold(v, s)
	})
}

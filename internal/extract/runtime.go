package extract

import (
	"archive/tar"
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/klauspost/pgzip"
	"github.com/ulikunitz/xz"

	"github.com/steviee/assetguard/internal/errdefs"
)

// ErrUnsupportedArchive is returned for an archive type with no extractor.
var ErrUnsupportedArchive = errors.New("unsupported archive format")

// ErrEmptyArchive is returned when an archive has no top-level directory.
var ErrEmptyArchive = errors.New("archive has no top-level directory")

// JavaExecutable returns the java binary inside a runtime root for goos.
func JavaExecutable(root, goos string) string {
	switch goos {
	case "windows":
		return filepath.Join(root, "bin", "javaw.exe")
	case "darwin":
		return filepath.Join(root, "Contents", "Home", "bin", "java")
	default:
		return filepath.Join(root, "bin", "java")
	}
}

// ExtractRuntimeArchive unpacks a zip, tar.gz or tar.xz runtime into destDir,
// removes the archive and returns the path of the runtime's java executable
// for goos. An empty goos means the running OS.
func ExtractRuntimeArchive(ctx context.Context, archivePath, destDir, goos string) (string, error) {
	if goos == "" {
		goos = runtime.GOOS
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", errdefs.FS("mkdir", destDir, err)
	}

	lower := strings.ToLower(archivePath)
	var (
		root string
		err  error
	)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		root, err = extractZip(ctx, archivePath, destDir)
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		root, err = extractTar(ctx, archivePath, destDir, func(r io.Reader) (io.Reader, error) {
			return pgzip.NewReader(r)
		})
	case strings.HasSuffix(lower, ".tar.xz"):
		root, err = extractTar(ctx, archivePath, destDir, func(r io.Reader) (io.Reader, error) {
			return xz.NewReader(r)
		})
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedArchive, filepath.Base(archivePath))
	}
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", filepath.Base(archivePath), err)
	}
	if root == "" {
		return "", fmt.Errorf("extract %s: %w", filepath.Base(archivePath), ErrEmptyArchive)
	}

	if err := os.Remove(archivePath); err != nil {
		slog.Warn("failed to remove runtime archive", "path", archivePath, "error", err)
	}

	exe := JavaExecutable(filepath.Join(destDir, root), goos)
	slog.Debug("extracted runtime", "archive", archivePath, "java", exe)
	return exe, nil
}

// topLevel returns the first path segment of an archive entry name.
func topLevel(name string) string {
	name = strings.TrimPrefix(filepath.ToSlash(name), "./")
	first, _, _ := strings.Cut(name, "/")
	return first
}

func extractZip(ctx context.Context, archivePath, destDir string) (string, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", errdefs.FS("open", archivePath, err)
	}
	defer func() {
		_ = zr.Close()
	}()

	var root string
	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if root == "" {
			root = topLevel(f.Name)
		}

		target, err := securejoin.SecureJoin(destDir, f.Name)
		if err != nil {
			return "", err
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return "", errdefs.FS("mkdir", target, err)
			}
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open entry %s: %w", f.Name, err)
		}
		err = writeFile(target, rc, f.Mode().Perm())
		_ = rc.Close()
		if err != nil {
			return "", err
		}
	}
	return root, nil
}

func extractTar(ctx context.Context, archivePath, destDir string, decompress func(io.Reader) (io.Reader, error)) (string, error) {
	inFile, err := os.Open(archivePath)
	if err != nil {
		return "", errdefs.FS("open", archivePath, err)
	}
	defer func() {
		_ = inFile.Close()
	}()

	stream, err := decompress(inFile)
	if err != nil {
		return "", fmt.Errorf("create decompressor: %w", err)
	}
	if closer, ok := stream.(io.Closer); ok {
		defer func() {
			_ = closer.Close()
		}()
	}

	tarReader := tar.NewReader(stream)
	var root string
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read tar header: %w", err)
		}

		if root == "" {
			root = topLevel(header.Name)
		}

		target, err := securejoin.SecureJoin(destDir, header.Name)
		if err != nil {
			return "", err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return "", errdefs.FS("mkdir", target, err)
			}
		case tar.TypeReg:
			if err := writeFile(target, tarReader, header.FileInfo().Mode().Perm()); err != nil {
				return "", err
			}
		case tar.TypeSymlink:
			if err := writeSymlink(destDir, target, header.Linkname); err != nil {
				return "", err
			}
		default:
			slog.Debug("skipping unsupported tar entry", "name", header.Name, "type", header.Typeflag)
		}
	}
	return root, nil
}

func writeFile(target string, r io.Reader, perm os.FileMode) error {
	if perm == 0 {
		perm = 0644
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errdefs.FS("mkdir", filepath.Dir(target), err)
	}

	outFile, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return errdefs.FS("create", target, err)
	}
	if _, err := io.Copy(outFile, r); err != nil {
		_ = outFile.Close()
		return errdefs.FS("write", target, err)
	}
	return errdefs.FS("close", target, outFile.Close())
}

// writeSymlink creates target -> linkname when the link resolves inside destDir.
func writeSymlink(destDir, target, linkname string) error {
	resolved := linkname
	if !filepath.IsAbs(linkname) {
		resolved = filepath.Join(filepath.Dir(target), linkname)
	}
	rel, err := filepath.Rel(destDir, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		slog.Warn("skipping symlink escaping runtime directory", "link", target, "target", linkname)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errdefs.FS("mkdir", filepath.Dir(target), err)
	}
	_ = os.Remove(target)
	return errdefs.FS("symlink", target, os.Symlink(linkname, target))
}

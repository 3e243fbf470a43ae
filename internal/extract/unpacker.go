// Package extract unpacks downloaded archives: legacy pack.xz libraries
// through an external tool and Java runtime archives natively.
package extract

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/steviee/assetguard/internal/errdefs"
)

// Unpacker turns downloaded pack.xz archives into the files they replace.
type Unpacker interface {
	Unpack(ctx context.Context, archives []string) error
}

// UnpackerFunc adapts a function to the Unpacker interface.
type UnpackerFunc func(ctx context.Context, archives []string) error

// Unpack calls f(ctx, archives).
func (f UnpackerFunc) Unpack(ctx context.Context, archives []string) error {
	return f(ctx, archives)
}

// PackXZUnpacker runs the PackXZExtract tool on a Java runtime:
//
//	java -jar PackXZExtract.jar -packxz a.jar.pack.xz,b.jar.pack.xz
type PackXZUnpacker struct {
	JavaExec string
	ToolJar  string
}

// NewPackXZUnpacker returns an unpacker using the given java executable and tool jar.
func NewPackXZUnpacker(javaExec, toolJar string) *PackXZUnpacker {
	if javaExec == "" {
		javaExec = "java"
	}
	return &PackXZUnpacker{JavaExec: javaExec, ToolJar: toolJar}
}

// Args returns the tool arguments for archives.
func (u *PackXZUnpacker) Args(archives []string) []string {
	return []string{"-jar", u.ToolJar, "-packxz", strings.Join(archives, ",")}
}

// Unpack runs the tool once over all archives and waits for it to exit.
// A non-zero exit is reported as a SubprocessError.
func (u *PackXZUnpacker) Unpack(ctx context.Context, archives []string) error {
	if len(archives) == 0 {
		return nil
	}

	cmd := exec.CommandContext(ctx, u.JavaExec, u.Args(archives)...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	slog.Debug("running pack.xz extractor", "java", u.JavaExec, "archives", len(archives))

	err := cmd.Run()
	if err == nil {
		slog.Debug("pack.xz extractor finished", "archives", len(archives))
		return nil
	}

	subErr := &errdefs.SubprocessError{
		Command: u.JavaExec + " -jar " + u.ToolJar,
		Output:  strings.TrimSpace(out.String()),
		Err:     err,
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		subErr.ExitCode = exitErr.ExitCode()
	}
	if ctx.Err() != nil {
		subErr.Err = ctx.Err()
	}
	return subErr
}

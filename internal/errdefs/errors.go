// Package errdefs defines the error taxonomy shared by the validation pipeline.
//
// Each kind has a sentinel usable with errors.Is and a typed error usable with
// errors.As that carries the failing operation and its target.
package errdefs

import (
	"errors"
	"fmt"
)

// Error kinds.
var (
	ErrNetwork         = errors.New("network error")
	ErrParse           = errors.New("parse error")
	ErrIntegrity       = errors.New("integrity error")
	ErrMissingArtifact = errors.New("missing artifact")
	ErrSubprocess      = errors.New("subprocess error")
	ErrFileSystem      = errors.New("filesystem error")
)

// NetworkError reports a bad status, timeout or transport failure on a fetch.
type NetworkError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: unexpected status code %d", e.Op, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// ParseError reports a malformed JSON document or manifest.
type ParseError struct {
	What string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.What, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// IntegrityError reports a hash mismatch on a file that was just written.
type IntegrityError struct {
	Path     string
	Algo     string
	Expected string
	Actual   string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s mismatch for %s: expected %s, got %s", e.Algo, e.Path, e.Expected, e.Actual)
}

func (e *IntegrityError) Is(target error) bool { return target == ErrIntegrity }

// MissingArtifactError reports an expected entry that is absent, such as
// version.json inside a Forge jar.
type MissingArtifactError struct {
	Container string
	Entry     string
}

func (e *MissingArtifactError) Error() string {
	return fmt.Sprintf("%s not found in %s", e.Entry, e.Container)
}

func (e *MissingArtifactError) Is(target error) bool { return target == ErrMissingArtifact }

// SubprocessError reports an external tool that failed to start or exited non-zero.
type SubprocessError struct {
	Command  string
	ExitCode int
	Output   string
	Err      error
}

func (e *SubprocessError) Error() string {
	if e.ExitCode != 0 {
		return fmt.Sprintf("%s exited with code %d", e.Command, e.ExitCode)
	}
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *SubprocessError) Unwrap() error { return e.Err }

func (e *SubprocessError) Is(target error) bool { return target == ErrSubprocess }

// FileSystemError reports a read, write or mkdir failure.
type FileSystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileSystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileSystemError) Unwrap() error { return e.Err }

func (e *FileSystemError) Is(target error) bool { return target == ErrFileSystem }

// FS wraps err as a FileSystemError, returning nil for a nil err.
func FS(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &FileSystemError{Op: op, Path: path, Err: err}
}

// Package nasm runs the external assembler that turns a stub's .nasm source
// into a flat binary image.
package nasm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"

	"stubgen/internal/stub"
)

// DefaultPath is the assembler executable looked up in PATH.
const DefaultPath = "nasm"

// EnvPath overrides DefaultPath when set.
const EnvPath = "STUBGEN_ASSEMBLER"

var (
	// ErrMissingSource is returned when <name>.nasm does not exist.
	// It also matches fs.ErrNotExist.
	ErrMissingSource = fmt.Errorf("assembly source not found: %w", fs.ErrNotExist)

	// ErrMissingArtifact is returned when the assembler succeeded but left no binary.
	ErrMissingArtifact = errors.New("assembler produced no binary")
)

// AssemblyError reports a non-zero exit of the assembler.
type AssemblyError struct {
	Name     stub.Name
	ExitCode int
	Output   []byte // combined stdout and stderr, unmodified
	Err      error
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("assembling %s failed (exit %d): %v", e.Name.Source(), e.ExitCode, e.Err)
}

func (e *AssemblyError) Unwrap() error { return e.Err }

// Assembler invokes the assembler binary in a directory.
type Assembler struct {
	// Path of the assembler executable. Empty means $STUBGEN_ASSEMBLER or DefaultPath.
	Path string

	// Dir is the working directory holding sources and receiving binaries.
	// Empty means the current directory.
	Dir string

	// Stdout and Stderr receive the assembler's output as it runs.
	// Nil means os.Stderr for both.
	Stdout io.Writer
	Stderr io.Writer
}

// New returns an Assembler for dir using the configured executable.
func New(path, dir string) *Assembler {
	return &Assembler{Path: path, Dir: dir}
}

func (a *Assembler) path() string {
	if a.Path != "" {
		return a.Path
	}
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultPath
}

func (a *Assembler) join(file string) string {
	if a.Dir == "" {
		return file
	}
	return filepath.Join(a.Dir, file)
}

// Assemble runs the assembler on <name>.nasm and returns the path of the
// binary it wrote. The source path is passed as the only argument.
func (a *Assembler) Assemble(ctx context.Context, name stub.Name) (string, error) {
	if err := name.Validate(); err != nil {
		return "", err
	}

	src := a.join(name.Source())
	if _, err := os.Stat(src); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrMissingSource, src)
		}
		return "", fmt.Errorf("cannot access source: %w", err)
	}

	var captured bytes.Buffer
	stdout, stderr := a.Stdout, a.Stderr
	if stdout == nil {
		stdout = os.Stderr
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	cmd := exec.CommandContext(ctx, a.path(), name.Source())
	cmd.Dir = a.Dir
	cmd.Stdout = io.MultiWriter(stdout, &captured)
	cmd.Stderr = io.MultiWriter(stderr, &captured)

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return "", &AssemblyError{
			Name:     name,
			ExitCode: exitCode,
			Output:   captured.Bytes(),
			Err:      err,
		}
	}

	bin := a.join(name.Binary())
	if _, err := os.Stat(bin); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrMissingArtifact, bin)
		}
		return "", fmt.Errorf("cannot access binary: %w", err)
	}
	return bin, nil
}

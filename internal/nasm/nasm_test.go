package nasm

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// copyAssembler copies the source to the extension-less artifact, the way
// nasm -f bin names its output.
const copyAssembler = "#!/bin/sh\ncp \"$1\" \"${1%.nasm}\"\n"

const failingAssembler = "#!/bin/sh\necho \"$1:3: error: parser: instruction expected\" >&2\nexit 1\n"

const silentAssembler = "#!/bin/sh\nexit 0\n"

func writeScript(t *testing.T, dir, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script assemblers need a POSIX shell")
	}
	path := filepath.Join(dir, "fake-nasm")
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAssemble(t *testing.T) {
	dir := t.TempDir()
	tool := writeScript(t, t.TempDir(), copyAssembler)

	src := []byte{0x90, 0x90, 0xc3}
	if err := os.WriteFile(filepath.Join(dir, "x86_32_stub.nasm"), src, 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	a := &Assembler{Path: tool, Dir: dir, Stdout: &out, Stderr: &out}
	bin, err := a.Assemble(context.Background(), "x86_32_stub")
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if bin != filepath.Join(dir, "x86_32_stub") {
		t.Errorf("binary path = %q", bin)
	}
	got, err := os.ReadFile(bin)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, src) {
		t.Errorf("artifact = %x, want %x", got, src)
	}
}

func TestAssembleFailure(t *testing.T) {
	dir := t.TempDir()
	tool := writeScript(t, t.TempDir(), failingAssembler)
	if err := os.WriteFile(filepath.Join(dir, "broken.nasm"), []byte("bits 32\nnot an insn\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var stderr bytes.Buffer
	a := &Assembler{Path: tool, Dir: dir, Stdout: &stderr, Stderr: &stderr}
	_, err := a.Assemble(context.Background(), "broken")

	var asmErr *AssemblyError
	if !errors.As(err, &asmErr) {
		t.Fatalf("got %v, want *AssemblyError", err)
	}
	if asmErr.ExitCode != 1 {
		t.Errorf("exit code = %d, want 1", asmErr.ExitCode)
	}
	want := "broken.nasm:3: error: parser: instruction expected\n"
	if string(asmErr.Output) != want {
		t.Errorf("captured output = %q, want %q", asmErr.Output, want)
	}
	if stderr.String() != want {
		t.Errorf("forwarded output = %q, want %q", stderr.String(), want)
	}
	if !strings.Contains(err.Error(), "broken.nasm") {
		t.Errorf("error %q does not name the source", err)
	}
}

func TestAssembleMissingSource(t *testing.T) {
	dir := t.TempDir()
	tool := writeScript(t, t.TempDir(), copyAssembler)

	a := &Assembler{Path: tool, Dir: dir}
	_, err := a.Assemble(context.Background(), "absent")
	if !errors.Is(err, ErrMissingSource) {
		t.Fatalf("got %v, want ErrMissingSource", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error %v does not match fs.ErrNotExist", err)
	}
}

func TestAssembleMissingArtifact(t *testing.T) {
	dir := t.TempDir()
	tool := writeScript(t, t.TempDir(), silentAssembler)
	if err := os.WriteFile(filepath.Join(dir, "quiet.nasm"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	a := &Assembler{Path: tool, Dir: dir}
	if _, err := a.Assemble(context.Background(), "quiet"); !errors.Is(err, ErrMissingArtifact) {
		t.Fatalf("got %v, want ErrMissingArtifact", err)
	}
}

func TestAssembleInvalidName(t *testing.T) {
	a := &Assembler{Path: "/nonexistent", Dir: t.TempDir()}
	if _, err := a.Assemble(context.Background(), "../etc/passwd"); err == nil {
		t.Fatal("expected invalid name error")
	}
}

func TestAssemblerPathFromEnv(t *testing.T) {
	t.Setenv(EnvPath, "/opt/nasm/bin/nasm")
	if got := New("", "").path(); got != "/opt/nasm/bin/nasm" {
		t.Errorf("path() = %q", got)
	}
	if got := New("yasm", "").path(); got != "yasm" {
		t.Errorf("explicit path() = %q", got)
	}

	t.Setenv(EnvPath, "")
	if got := New("", "").path(); got != DefaultPath {
		t.Errorf("default path() = %q", got)
	}
}

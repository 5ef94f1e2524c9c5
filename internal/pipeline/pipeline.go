// Package pipeline drives the per-stub sequence: assemble, read the binary
// image, transcode it, write the C file.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"stubgen/internal/carray"
	"stubgen/internal/report"
	"stubgen/internal/stub"
)

// ErrStale is returned by Verify when a generated file no longer matches
// its binary image.
var ErrStale = errors.New("generated stub out of date")

// Assembler produces the binary image for a stub and returns its path.
type Assembler interface {
	Assemble(ctx context.Context, name stub.Name) (string, error)
}

// Runner processes stubs one at a time in a single directory.
type Runner struct {
	Assembler Assembler
	Dir       string
	Logger    *log.Logger
}

func (r *Runner) logger() *log.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return log.Default()
}

func (r *Runner) join(file string) string {
	if r.Dir == "" {
		return file
	}
	return filepath.Join(r.Dir, file)
}

// Run processes names in order. It stops at the first failure and returns
// the results of the stubs completed before it; their files are kept.
func (r *Runner) Run(ctx context.Context, names stub.Set) ([]report.Result, error) {
	if err := names.Validate(); err != nil {
		return nil, err
	}

	results := make([]report.Result, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := r.process(ctx, name)
		if err != nil {
			r.logger().Error("Stub failed", "stub", name, "error", err)
			return results, fmt.Errorf("stub %s: %w", name, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func (r *Runner) process(ctx context.Context, name stub.Name) (report.Result, error) {
	lg := r.logger()
	lg.Info("Processing", "stub", name)

	bin, err := r.Assembler.Assemble(ctx, name)
	if err != nil {
		return report.Result{}, err
	}

	data, err := os.ReadFile(bin)
	if err != nil {
		return report.Result{}, fmt.Errorf("failed to read binary: %w", err)
	}
	lg.Debug("Read binary", "path", bin, "size", len(data))

	var buf bytes.Buffer
	if err := carray.Encode(&buf, name, data); err != nil {
		return report.Result{}, err
	}

	out := r.join(name.Output())
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return report.Result{}, fmt.Errorf("failed to write output: %w", err)
	}
	lg.Debug("Wrote declaration", "path", out, "identifier", name.Identifier())

	res := report.NewResult(name, data)
	res.Source = r.join(name.Source())
	res.Binary = bin
	res.Output = out
	return res, nil
}

// Verify compares each generated file byte for byte with the declaration
// of the binary image the assembler last produced, without running the
// assembler. Every stub is checked; ErrStale is returned if any differ.
func Verify(dir string, names stub.Set) ([]report.Result, error) {
	if err := names.Validate(); err != nil {
		return nil, err
	}

	join := func(f string) string {
		if dir == "" {
			return f
		}
		return filepath.Join(dir, f)
	}

	var stale []string
	results := make([]report.Result, 0, len(names))
	for _, name := range names {
		bin := join(name.Binary())
		data, err := os.ReadFile(bin)
		if err != nil {
			return results, fmt.Errorf("stub %s: failed to read binary: %w", name, err)
		}

		out := join(name.Output())
		text, err := os.ReadFile(out)
		if err != nil {
			return results, fmt.Errorf("stub %s: failed to read output: %w", name, err)
		}

		want, err := carray.Declaration(name, data)
		if err != nil {
			return results, fmt.Errorf("stub %s: %w", name, err)
		}
		match := bytes.Equal(text, []byte(want))
		if !match {
			stale = append(stale, string(name))
			logStale(out, name, text, data)
		}

		res := report.NewResult(name, data)
		res.Source = join(name.Source())
		res.Binary = bin
		res.Output = out
		res.Match = &match
		results = append(results, res)
	}

	if len(stale) > 0 {
		return results, fmt.Errorf("%w: %v", ErrStale, stale)
	}
	return results, nil
}

// logStale explains at debug level why a generated file differs.
func logStale(path string, name stub.Name, text, data []byte) {
	declName, declData, err := carray.Decode(string(text))
	switch {
	case err != nil:
		log.Debug("Undecodable declaration", "path", path, "error", err)
	case declName != name:
		log.Debug("Declaration names another stub", "path", path, "want", name.Identifier(), "got", declName.Identifier())
	case !bytes.Equal(declData, data):
		log.Debug("Declaration holds other bytes", "path", path, "size", len(declData), "want", len(data))
	default:
		log.Debug("Declaration layout differs", "path", path)
	}
}

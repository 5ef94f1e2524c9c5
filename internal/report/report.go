// Package report records what a run produced and renders it for people and
// for scripts.
package report

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"stubgen/internal/stub"
)

// Result describes one processed stub.
type Result struct {
	Name   string `json:"name" jsonschema:"title=Name,description=Stub name"`
	Arch   string `json:"arch" jsonschema:"title=Architecture,enum=x86_32,enum=x86_64,enum=unknown"`
	Size   int    `json:"size" jsonschema:"title=Size,description=Binary image size in bytes,minimum=0"`
	Digest string `json:"digest" jsonschema:"title=Digest,description=SHA-256 of the binary image"`
	Source string `json:"source" jsonschema:"title=Source,description=Assembly source path"`
	Binary string `json:"binary" jsonschema:"title=Binary,description=Assembler output path"`
	Output string `json:"output,omitempty" jsonschema:"title=Output,description=Generated C file path"`
	Match  *bool  `json:"match,omitempty" jsonschema:"title=Match,description=Set by verify: generated file matches the binary"`
}

// Report is the JSON document written by --json.
type Report struct {
	Results []Result `json:"results"`
	Error   string   `json:"error,omitempty"`
}

// Digest returns the hex SHA-256 of data.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// NewResult fills the fields derived from the stub and its image.
func NewResult(name stub.Name, data []byte) Result {
	return Result{
		Name:   string(name),
		Arch:   name.Arch().String(),
		Size:   len(data),
		Digest: Digest(data),
	}
}

// WriteJSON writes results and the run error, if any, as indented JSON.
func WriteJSON(w io.Writer, results []Result, runErr error) error {
	r := Report{Results: results}
	if r.Results == nil {
		r.Results = []Result{}
	}
	if runErr != nil {
		r.Error = runErr.Error()
	}
	bts, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	_, err = fmt.Fprintln(w, string(bts))
	return err
}

// Status is "ok" or "stale" for verified results and "" otherwise.
func Status(r Result) string {
	switch {
	case r.Match == nil:
		return ""
	case *r.Match:
		return "ok"
	default:
		return "stale"
	}
}

// Markdown renders results as a markdown table, headed by title unless it
// is empty.
func Markdown(title string, results []Result) string {
	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "# %s\n\n", title)
	}
	if len(results) == 0 {
		b.WriteString("No stubs processed.\n")
		return b.String()
	}

	verify := false
	for _, r := range results {
		if r.Match != nil {
			verify = true
			break
		}
	}

	if verify {
		b.WriteString("| Stub | Arch | Bytes | Status |\n|---|---|---:|---|\n")
	} else {
		b.WriteString("| Stub | Arch | Bytes | Output | SHA-256 |\n|---|---|---:|---|---|\n")
	}
	for _, r := range results {
		if verify {
			status := "up to date"
			if Status(r) == "stale" {
				status = "**stale**"
			}
			fmt.Fprintf(&b, "| `%s` | %s | %d | %s |\n", r.Name, r.Arch, r.Size, status)
			continue
		}
		fmt.Fprintf(&b, "| `%s` | %s | %d | `%s` | `%s` |\n", r.Name, r.Arch, r.Size, r.Output, shortDigest(r.Digest))
	}
	return b.String()
}

// Plain renders one line per result, for piped output.
func Plain(w io.Writer, results []Result) error {
	for _, r := range results {
		var err error
		switch status := Status(r); status {
		case "ok", "stale":
			_, err = fmt.Fprintf(w, "%s\t%s\t%d bytes\n", r.Name, status, r.Size)
		default:
			_, err = fmt.Fprintf(w, "%s\t%s\t%d bytes\t%s\n", r.Output, r.Arch, r.Size, r.Digest)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}

// Package stub defines stub names, the default stub set, and the
// architecture each stub targets.
package stub

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidName is returned for names that cannot form a C identifier.
var ErrInvalidName = errors.New("invalid stub name")

// Name identifies a stub. It is the base name of the assembly source and
// the suffix of the generated array identifier.
type Name string

// Arch is the target architecture of a stub.
type Arch int

const (
	ArchUnknown Arch = iota
	ArchX86_32
	ArchX86_64
)

func (a Arch) String() string {
	switch a {
	case ArchX86_32:
		return "x86_32"
	case ArchX86_64:
		return "x86_64"
	default:
		return "unknown"
	}
}

// Bits returns the operand size used when decoding code for a.
func (a Arch) Bits() int {
	switch a {
	case ArchX86_32:
		return 32
	case ArchX86_64:
		return 64
	default:
		return 0
	}
}

// Default is the stub set consumed by the loader, in processing order.
var Default = Set{
	"x86_32_stub",
	"x86_64_mswin_stub",
	"x86_64_linux_stub",
}

// Set is an ordered list of stubs.
type Set []Name

// Validate checks every name in order and returns the first failure.
func (s Set) Validate() error {
	seen := make(map[Name]bool, len(s))
	for _, n := range s {
		if err := n.Validate(); err != nil {
			return err
		}
		if seen[n] {
			return fmt.Errorf("%w: %q listed twice", ErrInvalidName, string(n))
		}
		seen[n] = true
	}
	return nil
}

// Validate reports whether n can be used as an identifier fragment.
func (n Name) Validate() error {
	if n == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	for i := 0; i < len(n); i++ {
		c := n[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return fmt.Errorf("%w: %q has %q at offset %d", ErrInvalidName, string(n), c, i)
		}
	}
	return nil
}

// Source is the assembly source file name.
func (n Name) Source() string { return string(n) + ".nasm" }

// Binary is the file name the assembler writes the raw image to.
func (n Name) Binary() string { return string(n) }

// Output is the generated C file name.
func (n Name) Output() string { return string(n) + ".c" }

// Identifier is the name of the generated array.
func (n Name) Identifier() string { return "STUB_" + string(n) }

// Arch infers the target architecture from the name prefix.
func (n Name) Arch() Arch {
	switch {
	case strings.HasPrefix(string(n), "x86_32"):
		return ArchX86_32
	case strings.HasPrefix(string(n), "x86_64"):
		return ArchX86_64
	default:
		return ArchUnknown
	}
}

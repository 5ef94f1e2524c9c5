package stub

import (
	"errors"
	"testing"
)

func TestNameValidate(t *testing.T) {
	tests := []struct {
		name    Name
		wantErr bool
	}{
		{"x86_32_stub", false},
		{"x86_64_mswin_stub", false},
		{"_private", false},
		{"A1", false},
		{"", true},
		{"1stub", true},
		{"bad-name", true},
		{"has space", true},
		{"dot.nasm", true},
		{"../escape", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			err := tt.name.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidName) {
				t.Errorf("error %v does not wrap ErrInvalidName", err)
			}
		})
	}
}

func TestSetValidate(t *testing.T) {
	if err := Default.Validate(); err != nil {
		t.Fatalf("default set invalid: %v", err)
	}

	dup := Set{"a", "b", "a"}
	if err := dup.Validate(); !errors.Is(err, ErrInvalidName) {
		t.Errorf("duplicate set: got %v, want ErrInvalidName", err)
	}

	bad := Set{"ok", "not ok"}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidName) {
		t.Errorf("bad set: got %v, want ErrInvalidName", err)
	}
}

func TestFileNames(t *testing.T) {
	n := Name("x86_32_stub")
	if got := n.Source(); got != "x86_32_stub.nasm" {
		t.Errorf("Source() = %q", got)
	}
	if got := n.Binary(); got != "x86_32_stub" {
		t.Errorf("Binary() = %q", got)
	}
	if got := n.Output(); got != "x86_32_stub.c" {
		t.Errorf("Output() = %q", got)
	}
	if got := n.Identifier(); got != "STUB_x86_32_stub" {
		t.Errorf("Identifier() = %q", got)
	}
}

func TestArch(t *testing.T) {
	tests := []struct {
		name Name
		want Arch
		bits int
	}{
		{"x86_32_stub", ArchX86_32, 32},
		{"x86_64_mswin_stub", ArchX86_64, 64},
		{"x86_64_linux_stub", ArchX86_64, 64},
		{"arm64_stub", ArchUnknown, 0},
	}
	for _, tt := range tests {
		if got := tt.name.Arch(); got != tt.want {
			t.Errorf("%s.Arch() = %v, want %v", tt.name, got, tt.want)
		}
		if got := tt.name.Arch().Bits(); got != tt.bits {
			t.Errorf("%s bits = %d, want %d", tt.name, got, tt.bits)
		}
	}
}

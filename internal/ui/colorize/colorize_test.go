package colorize

import (
	"strings"
	"testing"
)

func TestNoColor(t *testing.T) {
	t.Setenv(EnvNoColor, "1")

	code := "nop\nret\n"
	got, err := Assembly(code)
	if err != nil {
		t.Fatal(err)
	}
	if got != code {
		t.Errorf("Assembly with colors disabled = %q", got)
	}
	if got := Listing("00000000  90  nop\n"); got != "00000000  90  nop\n" {
		t.Errorf("Listing with colors disabled = %q", got)
	}
}

func TestHighlightKeepsText(t *testing.T) {
	t.Setenv(EnvNoColor, "")

	decl := "unsigned char STUB_x[] = {\n    0x90, 0xc3\n};\n"
	got, err := C(decl)
	if err != nil {
		t.Fatal(err)
	}
	if StripANSI(got) != decl {
		t.Errorf("highlighting changed text:\n%q", StripANSI(got))
	}

	listing := "00000000  90  nop\n00000001  c3  ret\n"
	if got := StripANSI(Listing(listing)); got != listing {
		t.Errorf("Listing changed text:\n%q", got)
	}
}

func TestStyleRegistered(t *testing.T) {
	if StubDark == nil || getStyle().Name != StyleName {
		t.Errorf("style %q not registered", StyleName)
	}
	if !strings.Contains(StripANSI("\x1b[31mred\x1b[0m"), "red") {
		t.Error("StripANSI lost text")
	}
}

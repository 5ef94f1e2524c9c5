package styles

import (
	"strings"
	"testing"
)

func TestRenderMarkdown(t *testing.T) {
	md := "# Stubs\n\n| Stub | Bytes |\n|---|---:|\n| `x86_32_stub` | 3 |\n"
	out := RenderMarkdown(md, 80)
	if !strings.Contains(out, "x86_32_stub") || !strings.Contains(out, "Stubs") {
		t.Errorf("rendered report lost content:\n%s", out)
	}
}

func TestBadges(t *testing.T) {
	if !strings.Contains(OK.Render("ok"), "ok") || !strings.Contains(Stale.Render("stale"), "stale") {
		t.Error("badges dropped their text")
	}
}

func TestBadge(t *testing.T) {
	for _, status := range []string{"ok", "stale", ""} {
		if got := Badge(status); !strings.Contains(got, status) {
			t.Errorf("Badge(%q) = %q", status, got)
		}
	}
}

package disasm

import (
	"strings"
	"testing"

	"stubgen/internal/stub"
)

func TestDecode(t *testing.T) {
	s, err := Decode([]byte{0x90, 0x90, 0xc3}, stub.ArchX86_32)
	if err != nil {
		t.Fatal(err)
	}
	wantOps := []string{"nop", "nop", "ret"}
	if len(s) != len(wantOps) {
		t.Fatalf("got %d instructions, want %d", len(s), len(wantOps))
	}
	for i, op := range wantOps {
		if s[i].Op != op {
			t.Errorf("inst %d op = %q, want %q", i, s[i].Op, op)
		}
		if s[i].Off != uint64(i) {
			t.Errorf("inst %d off = %d", i, s[i].Off)
		}
	}
}

func TestDecodeModes(t *testing.T) {
	// mov ebx, [esp+4] in 32-bit mode
	code := []byte{0x8b, 0x5c, 0x24, 0x04}
	s, err := Decode(code, stub.ArchX86_32)
	if err != nil {
		t.Fatal(err)
	}
	if len(s) != 1 || s[0].Op != "mov" || len(s[0].Raw) != 4 {
		t.Fatalf("unexpected stream: %+v", s)
	}

	// 48 89 c3 is mov rbx, rax in 64-bit mode
	s, err = Decode([]byte{0x48, 0x89, 0xc3}, stub.ArchX86_64)
	if err != nil {
		t.Fatal(err)
	}
	if len(s) != 1 || s[0].Op != "mov" || !strings.Contains(s[0].Text, "rbx") {
		t.Fatalf("unexpected stream: %+v", s)
	}
}

func TestDecodeTruncated(t *testing.T) {
	// mov eax, imm32 without its immediate
	s, err := Decode([]byte{0x90, 0xb8}, stub.ArchX86_32)
	if err != nil {
		t.Fatal(err)
	}
	if len(s) != 2 {
		t.Fatalf("got %d instructions", len(s))
	}
	if s[1].Op != "db" || s[1].Text != "db 0xb8" {
		t.Errorf("trailing byte = %+v", s[1])
	}
}

func TestDecodeUnknownArch(t *testing.T) {
	if _, err := Decode([]byte{0x90}, stub.ArchUnknown); err == nil {
		t.Fatal("expected error for unknown architecture")
	}
}

func TestStreamString(t *testing.T) {
	s, err := Decode([]byte{0xc3}, stub.ArchX86_64)
	if err != nil {
		t.Fatal(err)
	}
	got := s.String()
	if !strings.HasPrefix(got, "00000000  c3") || !strings.HasSuffix(got, "ret\n") {
		t.Errorf("listing = %q", got)
	}
}

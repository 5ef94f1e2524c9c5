// Package disasm decodes flat stub images into a linear instruction stream.
package disasm

import (
	"fmt"
	"strings"

	"golang.org/x/arch/x86/x86asm"

	"stubgen/internal/stub"
)

// Inst is a simplified decoded instruction.
type Inst struct {
	Off  uint64 // offset of instruction within the image
	Text string // Intel-syntax disassembly
	Op   string // mnemonic in lowercase
	Raw  []byte // raw encoding
}

// Stream is a linear sequence of instructions.
type Stream []Inst

// Decode disassembles code linearly from offset zero. Bytes that do not
// decode are emitted as one-byte "db" entries so decoding always advances.
func Decode(code []byte, arch stub.Arch) (Stream, error) {
	mode := arch.Bits()
	if mode == 0 {
		return nil, fmt.Errorf("no decoder for architecture %s", arch)
	}

	var out Stream
	for off := 0; off < len(code); {
		inst, err := x86asm.Decode(code[off:], mode)
		if err != nil || inst.Len == 0 {
			out = append(out, Inst{
				Off:  uint64(off),
				Text: fmt.Sprintf("db 0x%02x", code[off]),
				Op:   "db",
				Raw:  code[off : off+1],
			})
			off++
			continue
		}
		out = append(out, Inst{
			Off:  uint64(off),
			Text: x86asm.IntelSyntax(inst, uint64(off), nil),
			Op:   strings.ToLower(inst.Op.String()),
			Raw:  code[off : off+inst.Len],
		})
		off += inst.Len
	}
	return out, nil
}

// String formats the stream as a listing: offset, hex bytes, instruction.
func (s Stream) String() string {
	var b strings.Builder
	for _, in := range s {
		fmt.Fprintf(&b, "%08x  %-20x  %s\n", in.Off, in.Raw, in.Text)
	}
	return b.String()
}

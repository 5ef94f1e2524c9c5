// Package carray renders raw stub images as C array declarations that the
// loader includes verbatim, and parses them back.
//
// The layout is fixed:
//
//	#pragma once
//
//	unsigned char STUB_name[] = {
//	    0x90, 0x90, 0x90, 0x90, 0x90, 0x90, 0x90, 0x90,
//	    0xc3
//	};
//
// Bytes are grouped eight per line, each line indented by four spaces. Every
// literal except the last is followed by ", ", so wrapped lines keep the
// trailing space after the comma.
package carray

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"stubgen/internal/stub"
)

const (
	// BytesPerLine is the number of byte literals on each element line.
	BytesPerLine = 8

	// Indent prefixes every element line.
	Indent = "    "

	// Guard is the header guard emitted before the declaration.
	Guard = "#pragma once"

	// ElemType is the C element type of the array.
	ElemType = "unsigned char"

	separator = ", "
	hexDigits = "0123456789abcdef"
)

var (
	// ErrInvalidName is stub.ErrInvalidName, re-exported for callers of Encode.
	ErrInvalidName = stub.ErrInvalidName

	// ErrMalformed is returned by Decode for text that is not an array declaration.
	ErrMalformed = errors.New("malformed array declaration")
)

// Encode writes the declaration of data as STUB_<name> to w.
func Encode(w io.Writer, name stub.Name, data []byte) error {
	if err := name.Validate(); err != nil {
		return err
	}
	var buf bytes.Buffer
	buf.Grow(encodedLen(name, len(data)))
	writeDeclaration(&buf, name, data)
	_, err := w.Write(buf.Bytes())
	return err
}

// Declaration returns the declaration text of data as STUB_<name>.
func Declaration(name stub.Name, data []byte) (string, error) {
	var sb strings.Builder
	if err := Encode(&sb, name, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func writeDeclaration(buf *bytes.Buffer, name stub.Name, data []byte) {
	buf.WriteString(Guard)
	buf.WriteString("\n\n")
	buf.WriteString(ElemType)
	buf.WriteByte(' ')
	buf.WriteString(name.Identifier())
	buf.WriteString("[] = {")

	last := len(data) - 1
	for i, b := range data {
		if i%BytesPerLine == 0 {
			buf.WriteByte('\n')
			buf.WriteString(Indent)
		}
		buf.WriteString("0x")
		buf.WriteByte(hexDigits[b>>4])
		buf.WriteByte(hexDigits[b&0x0f])
		if i != last {
			buf.WriteString(separator)
		}
	}

	buf.WriteString("\n};\n")
}

// encodedLen is the exact size of the declaration, used to size the buffer.
func encodedLen(name stub.Name, n int) int {
	size := len(Guard) + 2 + len(ElemType) + 1 + len(name.Identifier()) + len("[] = {") + len("\n};\n")
	if n == 0 {
		return size
	}
	lines := (n + BytesPerLine - 1) / BytesPerLine
	return size + lines*(1+len(Indent)) + n*4 + (n-1)*len(separator)
}

// Decode parses an array declaration and returns the stub name and the bytes
// it holds. It is lenient: the guard is optional and whitespace between
// tokens is not significant. Compare against Declaration to check that a
// file has Encode's exact layout.
func Decode(text string) (stub.Name, []byte, error) {
	rest := strings.TrimSpace(text)

	if after, ok := strings.CutPrefix(rest, Guard); ok {
		rest = strings.TrimSpace(after)
	}

	rest, ok := strings.CutPrefix(rest, ElemType)
	if !ok {
		return "", nil, fmt.Errorf("%w: missing %q", ErrMalformed, ElemType)
	}
	rest = strings.TrimSpace(rest)

	open := strings.Index(rest, "[")
	if open < 0 {
		return "", nil, fmt.Errorf("%w: missing array brackets", ErrMalformed)
	}
	ident := strings.TrimSpace(rest[:open])
	name, ok := strings.CutPrefix(ident, "STUB_")
	if !ok {
		return "", nil, fmt.Errorf("%w: identifier %q lacks STUB_ prefix", ErrMalformed, ident)
	}
	if err := stub.Name(name).Validate(); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	rest = strings.TrimSpace(rest[open+1:])
	rest, ok = strings.CutPrefix(rest, "]")
	if !ok {
		return "", nil, fmt.Errorf("%w: unterminated brackets", ErrMalformed)
	}
	rest = strings.TrimSpace(rest)
	rest, ok = strings.CutPrefix(rest, "=")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing initializer", ErrMalformed)
	}
	rest = strings.TrimSpace(rest)
	rest, ok = strings.CutPrefix(rest, "{")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing opening brace", ErrMalformed)
	}
	rest, ok = strings.CutSuffix(rest, ";")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing statement terminator", ErrMalformed)
	}
	rest = strings.TrimSpace(rest)
	body, ok := strings.CutSuffix(rest, "}")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing closing brace", ErrMalformed)
	}

	data, err := decodeBody(body)
	if err != nil {
		return "", nil, err
	}
	return stub.Name(name), data, nil
}

func decodeBody(body string) ([]byte, error) {
	if strings.TrimSpace(body) == "" {
		return []byte{}, nil
	}
	fields := strings.Split(body, ",")
	data := make([]byte, 0, len(fields))
	for i, f := range fields {
		f = strings.TrimSpace(f)
		b, ok := parseLiteral(f)
		if !ok {
			return nil, fmt.Errorf("%w: element %d: bad literal %q", ErrMalformed, i, f)
		}
		data = append(data, b)
	}
	return data, nil
}

func parseLiteral(s string) (byte, bool) {
	if len(s) != 4 || s[0] != '0' || s[1] != 'x' {
		return 0, false
	}
	hi := strings.IndexByte(hexDigits, s[2])
	lo := strings.IndexByte(hexDigits, s[3])
	if hi < 0 || lo < 0 {
		return 0, false
	}
	return byte(hi<<4 | lo), true
}

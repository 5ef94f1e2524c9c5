// Package colorize highlights NASM listings and generated C declarations
// for terminal output.
package colorize

import (
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// EnvNoColor disables highlighting when set to any value.
const EnvNoColor = "STUBGEN_NO_COLOR"

// Enabled reports whether highlighting is on.
func Enabled() bool {
	return os.Getenv(EnvNoColor) == ""
}

// getLexer returns the first registered lexer among candidates
func getLexer(candidates ...string) chroma.Lexer {
	for _, name := range candidates {
		if lexer := lexers.Get(name); lexer != nil {
			return lexer
		}
	}
	return nil
}

// getStyle returns the stub style with fallbacks
func getStyle() *chroma.Style {
	candidates := []string{StyleName, "dracula", "monokai"}
	for _, name := range candidates {
		if style := styles.Get(name); style != nil {
			return style
		}
	}
	return styles.Fallback
}

// getTerminalFormatter returns an appropriate terminal formatter
func getTerminalFormatter() chroma.Formatter {
	// Try high-color first, then fallback
	candidates := []string{"terminal16m", "terminal256"}
	for _, name := range candidates {
		if formatter := formatters.Get(name); formatter != nil {
			return formatter
		}
	}
	return formatters.Fallback
}

// Assembly highlights Intel-syntax x86 code with the NASM lexer.
func Assembly(code string) (string, error) {
	return highlight(code, "nasm", "gas")
}

// C highlights a generated array declaration.
func C(code string) (string, error) {
	return highlight(code, "c", "cpp")
}

func highlight(code string, lexerNames ...string) (string, error) {
	if !Enabled() {
		return code, nil
	}

	lexer := getLexer(lexerNames...)
	if lexer == nil {
		// Return plain text if no lexer available
		return code, nil
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code, err
	}

	var buf strings.Builder
	if err := getTerminalFormatter().Format(&buf, getStyle(), iterator); err != nil {
		return code, err
	}
	return buf.String(), nil
}

// Listing highlights a disassembly listing line by line, keeping the
// offset and byte columns gray and handing the instruction to Assembly.
// Lines are expected as "offset  bytes  instruction".
func Listing(listing string) string {
	if !Enabled() {
		return listing
	}

	var b strings.Builder
	for _, line := range strings.SplitAfter(listing, "\n") {
		if line == "" {
			continue
		}
		b.WriteString(listingLine(line))
	}
	return b.String()
}

func listingLine(line string) string {
	body, nl := strings.CutSuffix(line, "\n")
	parts := strings.SplitN(body, "  ", 3)
	if len(parts) < 3 {
		out, _ := Assembly(body)
		return strings.ReplaceAll(out, "\n", "") + newline(nl)
	}

	gray := "\033[38;2;79;79;79m"
	reset := "\033[0m"
	insn, err := Assembly(parts[2])
	if err != nil {
		insn = parts[2]
	}
	// the lexer appends a newline, possibly wrapped in escapes
	insn = strings.ReplaceAll(insn, "\n", "")
	return gray + parts[0] + "  " + parts[1] + reset + "  " + insn + newline(nl)
}

func newline(ok bool) string {
	if ok {
		return "\n"
	}
	return ""
}

// StripANSI removes ANSI escape codes and returns the plain string
func StripANSI(s string) string {
	var result strings.Builder
	inEscape := false

	for _, r := range s {
		if r == '\x1b' {
			inEscape = true
		} else if inEscape {
			if r == 'm' {
				inEscape = false
			}
		} else {
			result.WriteRune(r)
		}
	}

	return result.String()
}

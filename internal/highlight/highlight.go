// Package highlight applies ANSI terminal syntax highlighting to command
// lines typed into the kyev-cli REPL.
package highlight

import (
	"bytes"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

var (
	lexer     chroma.Lexer
	formatter chroma.Formatter
	style     *chroma.Style
)

func init() {
	lexer = lexers.Get("bash")
	formatter = formatters.Get("terminal256")
	style = styles.Get("monokai")
}

// Command returns s with ANSI syntax highlighting applied, treating it as a
// shell-style command line (the closest lexer chroma ships to RSP's
// command-name-plus-arguments grammar). On error or empty input, s is
// returned unchanged.
func Command(s string) string {
	if s == "" {
		return s
	}

	iterator, err := lexer.Tokenise(nil, s)
	if err != nil {
		return s
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return s
	}

	return strings.TrimRight(buf.String(), "\n")
}

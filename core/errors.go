package core

import (
	"fmt"
	"strings"

	"github.com/rivo/uniseg"
)

type LexError struct {
	Char   rune
	Reason string
	Pos    position
}

func (e *LexError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("Lex error at %s: %s", e.Pos, e.Reason)
	}
	return fmt.Sprintf("Lex error at %s: unrecognized character %q", e.Pos, e.Char)
}

func (e *LexError) Line() int {
	return e.Pos.line
}

// ErrorWithContext renders the error followed by the offending source line
// and a caret under the column where it occurred.
func (e *LexError) ErrorWithContext(source string) string {
	return e.Error() + "\n" + sourceContext(source, e.Pos)
}

type ParseError struct {
	Reason string
	Pos    position
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Parse error at %s: %s", e.Pos, e.Reason)
}

func (e *ParseError) Line() int {
	return e.Pos.line
}

func (e *ParseError) ErrorWithContext(source string) string {
	return e.Error() + "\n" + sourceContext(source, e.Pos)
}

func sourceContext(source string, pos position) string {
	lines := strings.Split(source, "\n")
	if pos.line < 1 || pos.line > len(lines) {
		return ""
	}

	line := strings.TrimRight(lines[pos.line-1], "\r")
	runes := []rune(line)

	col := pos.col
	if col > len(runes) {
		col = len(runes)
	}

	// tabs keep their width so the caret lines up with the source above it
	prefix := []rune{}
	for _, r := range runes[:col] {
		if r == '\t' {
			prefix = append(prefix, '\t')
		}
	}
	width := uniseg.StringWidth(strings.ReplaceAll(string(runes[:col]), "\t", ""))

	gutter := fmt.Sprintf("%4d | ", pos.line)
	return gutter + line + "\n" +
		strings.Repeat(" ", len(gutter)) + string(prefix) + strings.Repeat(" ", width) + "^"
}

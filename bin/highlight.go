package main

import (
	"io"
	"strings"

	"github.com/alecthomas/chroma"
	"github.com/alecthomas/chroma/formatters"
	"github.com/alecthomas/chroma/styles"
	"github.com/fatih/color"

	"github.com/kocha-lang/kocha/core"
)

var (
	keywordColor = color.New(color.FgBlue, color.Bold)
	stringColor  = color.New(color.FgGreen)
	numberColor  = color.New(color.FgMagenta)
	errorColor   = color.New(color.FgRed)
	bannerColor  = color.New(color.FgCyan, color.Bold)
)

// highlight colours a REPL line as it is typed. Lines that do not lex yet,
// such as an open string, are shown as typed.
func highlight(line []rune) string {
	tokens, err := core.Tokenize(string(line))
	if err != nil {
		return string(line)
	}

	builder := strings.Builder{}

	i := 0
	for _, token := range tokens {
		if token.Kind == core.EOF {
			break
		}

		start := token.Pos.Offset
		end := start + int(token.Length)
		if start > i {
			builder.WriteString(string(line[i:start]))
		}

		text := string(line[start:end])
		switch {
		case token.Kind == core.STRING_LITERAL:
			builder.WriteString(stringColor.Sprint(text))
		case token.Kind == core.NUMBER_LITERAL:
			builder.WriteString(numberColor.Sprint(text))
		case token.Kind.IsKeyword():
			builder.WriteString(keywordColor.Sprint(text))
		default:
			builder.WriteString(text)
		}

		i = end
	}

	if i < len(line) {
		builder.WriteString(string(line[i:]))
	}

	return builder.String()
}

var kochaLexer = chroma.MustNewLazyLexer(
	&chroma.Config{
		Name:      "Kocha",
		Aliases:   []string{"kocha"},
		Filenames: []string{"*.kc", "*.kocha"},
	},
	func() chroma.Rules {
		return chroma.Rules{
			"root": {
				{Pattern: `#[^\n]*`, Type: chroma.CommentSingle, Mutator: nil},
				{Pattern: `\s+`, Type: chroma.Text, Mutator: nil},
				{Pattern: `"[^"]*"?`, Type: chroma.LiteralString, Mutator: nil},
				{Pattern: `\d+(\.\d+)?`, Type: chroma.LiteralNumber, Mutator: nil},
				{Pattern: chroma.Words(``, `\b`, "xullas", "jovob", "endi", "fn", "qaytar", "agar", "yemasa", "oxiri", "aylan", "qarama", "toxta"), Type: chroma.Keyword, Mutator: nil},
				{Pattern: chroma.Words(``, `\b`, "va", "yoki"), Type: chroma.OperatorWord, Mutator: nil},
				{Pattern: chroma.Words(``, `\b`, "true", "false", "null", "lagmon", "pustoy"), Type: chroma.KeywordConstant, Mutator: nil},
				{Pattern: chroma.Words(``, `\b`, "korsat", "gapir", "son", "shara", "kelishtir"), Type: chroma.NameBuiltin, Mutator: nil},
				{Pattern: `[\p{L}_][\p{L}\p{N}_]*`, Type: chroma.Name, Mutator: nil},
				{Pattern: `==|!=|>=|<=|[-+*/%<>=]`, Type: chroma.Operator, Mutator: nil},
				{Pattern: `[(){}\[\],.;:]`, Type: chroma.Punctuation, Mutator: nil},
			},
		}
	},
)

// highlightSource writes source through chroma. Without colour the noop
// formatter reproduces the text unchanged.
func highlightSource(w io.Writer, source string, style string, colored bool) error {
	formatter := formatters.Get("noop")
	if colored {
		formatter = formatters.Get("terminal256")
	}

	iterator, err := kochaLexer.Tokenise(nil, source)
	if err != nil {
		return err
	}

	return formatter.Format(w, styles.Get(style), iterator)
}

package core

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	UNKNOWN tokenKind = iota
	EOF

	// punctuation
	COMMA
	DOT
	COLON
	SEMICOLON
	LEFT_PAREN
	RIGHT_PAREN
	LEFT_BRACKET
	RIGHT_BRACKET
	LEFT_BRACE
	RIGHT_BRACE
	EQUALS // = or endi

	// binary operators
	PLUS
	MINUS
	TIMES
	DIVIDE
	MODULUS
	AND
	OR
	GREATER
	LESS
	EQ
	GEQ
	LEQ
	NEQ

	// keywords
	LET_KEYWORD
	CONST_KEYWORD
	FN_KEYWORD
	RETURN_KEYWORD
	IF_KEYWORD
	ELIF_KEYWORD
	ELSE_KEYWORD
	WHILE_KEYWORD
	CONTINUE_KEYWORD
	BREAK_KEYWORD

	// literals
	IDENTIFIER
	STRING_LITERAL
	NUMBER_LITERAL
)

var keywords = map[string]tokenKind{
	"xullas": LET_KEYWORD,
	"jovob":  CONST_KEYWORD,
	"endi":   EQUALS,
	"fn":     FN_KEYWORD,
	"qaytar": RETURN_KEYWORD,
	"agar":   IF_KEYWORD,
	"yemasa": ELIF_KEYWORD,
	"oxiri":  ELSE_KEYWORD,
	"va":     AND,
	"yoki":   OR,
	"aylan":  WHILE_KEYWORD,
	"qarama": CONTINUE_KEYWORD,
	"toxta":  BREAK_KEYWORD,
}

func (k tokenKind) String() string {
	switch k {
	case EOF:
		return "end of input"
	case COMMA:
		return ","
	case DOT:
		return "."
	case COLON:
		return ":"
	case SEMICOLON:
		return ";"
	case LEFT_PAREN:
		return "("
	case RIGHT_PAREN:
		return ")"
	case LEFT_BRACKET:
		return "["
	case RIGHT_BRACKET:
		return "]"
	case LEFT_BRACE:
		return "{"
	case RIGHT_BRACE:
		return "}"
	case EQUALS:
		return "="

	case PLUS:
		return "+"
	case MINUS:
		return "-"
	case TIMES:
		return "*"
	case DIVIDE:
		return "/"
	case MODULUS:
		return "%"
	case AND:
		return "va"
	case OR:
		return "yoki"
	case GREATER:
		return ">"
	case LESS:
		return "<"
	case EQ:
		return "=="
	case GEQ:
		return ">="
	case LEQ:
		return "<="
	case NEQ:
		return "!="

	case LET_KEYWORD:
		return "xullas"
	case CONST_KEYWORD:
		return "jovob"
	case FN_KEYWORD:
		return "fn"
	case RETURN_KEYWORD:
		return "qaytar"
	case IF_KEYWORD:
		return "agar"
	case ELIF_KEYWORD:
		return "yemasa"
	case ELSE_KEYWORD:
		return "oxiri"
	case WHILE_KEYWORD:
		return "aylan"
	case CONTINUE_KEYWORD:
		return "qarama"
	case BREAK_KEYWORD:
		return "toxta"

	case IDENTIFIER:
		return "identifier"
	case STRING_LITERAL:
		return "string"
	case NUMBER_LITERAL:
		return "number"

	default:
		return "<unknown>"
	}
}

type position struct {
	line   int
	col    int
	Offset int
}

func (p position) Line() int {
	return p.line
}

func (p position) String() string {
	return fmt.Sprintf("[%d:%d]", p.line, p.col)
}

type Token struct {
	Kind    tokenKind
	Pos     position
	Payload string
	Length  uint
}

// Text is the token's source text; string literals are returned without quotes.
func (t Token) Text() string {
	switch t.Kind {
	case IDENTIFIER, STRING_LITERAL, NUMBER_LITERAL:
		return t.Payload
	default:
		if t.Payload != "" {
			return t.Payload
		}
		return t.Kind.String()
	}
}

func (t Token) String() string {
	switch t.Kind {
	case IDENTIFIER:
		return fmt.Sprintf("var(%s)", t.Payload)
	case STRING_LITERAL:
		return fmt.Sprintf("string(%s)", t.Payload)
	case NUMBER_LITERAL:
		return fmt.Sprintf("number(%s)", t.Payload)
	default:
		return t.Text()
	}
}

// endsOperand reports whether a token of this kind can finish an operand,
// in which case a following '-' is a binary operator.
func (k tokenKind) endsOperand() bool {
	switch k {
	case IDENTIFIER, NUMBER_LITERAL, STRING_LITERAL, RIGHT_PAREN, RIGHT_BRACKET:
		return true
	}
	return false
}

// IsKeyword reports whether the kind is spelled as a reserved word.
func (k tokenKind) IsKeyword() bool {
	return (k >= LET_KEYWORD && k <= BREAK_KEYWORD) || k == AND || k == OR
}

type tokenizer struct {
	source []rune
	index  int
	line   int
	col    int
	tokens []Token
}

func NewTokenizer(source string) tokenizer {
	return tokenizer{
		source: []rune(source),
		index:  0,
		line:   1,
		col:    0,
	}
}

func (t *tokenizer) isEOF() bool {
	return t.index >= len(t.source)
}

func (t *tokenizer) next() rune {
	char := t.source[t.index]
	t.index++

	if char == '\n' {
		t.line++
		t.col = 0
	} else {
		t.col++
	}

	return char
}

func (t *tokenizer) peek() rune {
	return t.source[t.index]
}

func (t *tokenizer) peekAhead(n int) rune {
	if t.index+n >= len(t.source) {
		return ' '
	}

	return t.source[t.index+n]
}

func (t *tokenizer) pos() position {
	return position{
		line:   t.line,
		col:    t.col,
		Offset: t.index,
	}
}

func isIdentStart(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

func isIdentPart(ch rune) bool {
	return isIdentStart(ch) || unicode.IsDigit(ch)
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func (t *tokenizer) readWhile(pred func(rune) bool) string {
	read := []rune{}
	for !t.isEOF() && pred(t.peek()) {
		read = append(read, t.next())
	}

	return string(read)
}

func (t *tokenizer) readNumber() string {
	literal := []rune{}
	dot := false

	for !t.isEOF() {
		ch := t.peek()
		if isDigit(ch) {
			literal = append(literal, t.next())
		} else if ch == '.' && !dot && isDigit(t.peekAhead(1)) {
			dot = true
			literal = append(literal, t.next())
		} else {
			break
		}
	}

	return string(literal)
}

func (t *tokenizer) lastKind() tokenKind {
	if len(t.tokens) == 0 {
		return UNKNOWN
	}
	return t.tokens[len(t.tokens)-1].Kind
}

func (t *tokenizer) emit(kind tokenKind, pos position, payload string) {
	t.tokens = append(t.tokens, Token{
		Kind:    kind,
		Pos:     pos,
		Payload: payload,
		Length:  uint(t.index - pos.Offset),
	})
}

// twoChar emits long when the next rune is '=', otherwise short.
func (t *tokenizer) twoChar(pos position, short, long tokenKind) {
	if !t.isEOF() && t.peek() == '=' {
		t.next()
		t.emit(long, pos, "")
		return
	}
	t.emit(short, pos, "")
}

func (t *tokenizer) nextToken() error {
	pos := t.pos()
	ch := t.next()

	switch ch {
	case ',':
		t.emit(COMMA, pos, "")
	case '.':
		t.emit(DOT, pos, "")
	case ':':
		t.emit(COLON, pos, "")
	case ';':
		t.emit(SEMICOLON, pos, "")
	case '(':
		t.emit(LEFT_PAREN, pos, "")
	case ')':
		t.emit(RIGHT_PAREN, pos, "")
	case '[':
		t.emit(LEFT_BRACKET, pos, "")
	case ']':
		t.emit(RIGHT_BRACKET, pos, "")
	case '{':
		t.emit(LEFT_BRACE, pos, "")
	case '}':
		t.emit(RIGHT_BRACE, pos, "")
	case '=':
		t.twoChar(pos, EQUALS, EQ)
	case '>':
		t.twoChar(pos, GREATER, GEQ)
	case '<':
		t.twoChar(pos, LESS, LEQ)
	case '!':
		if t.isEOF() || t.peek() != '=' {
			return &LexError{Char: ch, Pos: pos}
		}
		t.next()
		t.emit(NEQ, pos, "")
	case '+':
		t.emit(PLUS, pos, "")
	case '-':
		if !t.isEOF() && isDigit(t.peek()) && !t.lastKind().endsOperand() {
			t.emit(NUMBER_LITERAL, pos, "-"+t.readNumber())
			return nil
		}
		t.emit(MINUS, pos, "")
	case '*':
		t.emit(TIMES, pos, "")
	case '/':
		t.emit(DIVIDE, pos, "")
	case '%':
		t.emit(MODULUS, pos, "")
	case '#':
		// the newline is left for the whitespace skip so line counting stays exact
		t.readWhile(func(r rune) bool { return r != '\n' })
	case '"':
		builder := strings.Builder{}
		for !t.isEOF() && t.peek() != '"' {
			builder.WriteRune(t.next())
		}

		if t.isEOF() {
			return &LexError{Char: ch, Pos: pos, Reason: "unterminated string"}
		}

		t.next()
		t.emit(STRING_LITERAL, pos, builder.String())
	default:
		switch {
		case isDigit(ch):
			t.emit(NUMBER_LITERAL, pos, string(ch)+t.readNumber())
		case isIdentStart(ch):
			word := string(ch) + t.readWhile(isIdentPart)
			if kind, ok := keywords[word]; ok {
				t.emit(kind, pos, word)
			} else {
				t.emit(IDENTIFIER, pos, word)
			}
		default:
			return &LexError{Char: ch, Pos: pos}
		}
	}

	return nil
}

// Tokenize scans the whole source. The result always ends with an EOF token.
func (t *tokenizer) Tokenize() ([]Token, error) {
	t.tokens = []Token{}

	for {
		for !t.isEOF() && unicode.IsSpace(t.peek()) {
			t.next()
		}
		if t.isEOF() {
			break
		}

		if err := t.nextToken(); err != nil {
			return t.tokens, err
		}
	}

	t.emit(EOF, t.pos(), "")
	return t.tokens, nil
}

// Tokenize is a shorthand for NewTokenizer(source).Tokenize().
func Tokenize(source string) ([]Token, error) {
	tokenizer := NewTokenizer(source)
	return tokenizer.Tokenize()
}

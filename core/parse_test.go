package core

import (
	"errors"
	"strings"
	"testing"

	"github.com/kr/pretty"
)

func mustParse(t *testing.T, source string) *Program {
	t.Helper()
	program, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse(%q): %v", source, err)
	}
	return program
}

func TestParsePrinted(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"10 - 4 - 3", "((10 - 4) - 3)"},
		{"a > 1 va b < 2", "((a > 1) va (b < 2))"},
		{"a endi b endi 3", "a = b = 3"},
		{"xullas a endi -5;", "xullas a = -5"},
		{"xullas a", "xullas a"},
		{"jovob PI = 3.14", "jovob PI = 3.14"},
		{"fn add(a, b) { qaytar a + b }", "fn add(a, b) { qaytar (a + b) }"},
		{"fn f() { qaytar }", "fn f() { qaytar }"},
		{"obj.items[0].qosh(1)", "obj.items[0].qosh(1)"},
		{"f(1)(2)", "f(1)(2)"},
		{"[1, \"a\", []]", "[1, \"a\", []]"},
		{"{ a: 1, b, c }", "{ a: 1, b, c }"},
		{"{ a, }", "{ a }"},
		{"{}", "{}"},
		{"agar (a > 1) { 1 } yemasa (a > 0) { 2 } oxiri { 3 }",
			"agar (a > 1) { 1 } yemasa (a > 0) { 2 } oxiri { 3 }"},
		{"aylan (i < 3) { qarama; toxta }", "aylan (i < 3) { qarama; toxta }"},
	}

	for _, tt := range tests {
		program := mustParse(t, tt.source)
		if got := program.String(); got != tt.want {
			t.Errorf("Parse(%q) = %q, want %q", tt.source, got, tt.want)
		}
	}
}

func TestParseTree(t *testing.T) {
	program := mustParse(t, "xullas a endi 1 + 2 * 3")

	want := &Program{
		node: node{line: 1},
		Body: []Node{
			&VariableDeclaration{
				node: node{line: 1},
				Name: "a",
				Value: &BinaryExpression{
					node:     node{line: 1},
					Left:     &NumericLiteral{node: node{line: 1}, Value: 1},
					Operator: PLUS,
					Right: &BinaryExpression{
						node:     node{line: 1},
						Left:     &NumericLiteral{node: node{line: 1}, Value: 2},
						Operator: TIMES,
						Right:    &NumericLiteral{node: node{line: 1}, Value: 3},
					},
				},
			},
		},
	}

	if diff := pretty.Diff(want, program); len(diff) > 0 {
		t.Fatalf("unexpected tree:\n%s", strings.Join(diff, "\n"))
	}
}

func TestParseOptionalSemicolons(t *testing.T) {
	program := mustParse(t, "xullas a endi 1;; a endi 2\nkorsat(a);")
	if len(program.Body) != 3 {
		t.Fatalf("got %d statements: %s", len(program.Body), program)
	}
}

func TestParseLines(t *testing.T) {
	source := "xullas a endi 1\n\nagar (a > 0) {\n  a endi 2\n}\noxiri {\n}\n"
	program := mustParse(t, source)

	if got := program.Body[0].Line(); got != 1 {
		t.Errorf("declaration on line %d, want 1", got)
	}

	stmt := program.Body[1].(*IfStatement)
	if stmt.Line() != 3 {
		t.Errorf("agar on line %d, want 3", stmt.Line())
	}
	if got := stmt.Body[0].Line(); got != 4 {
		t.Errorf("assignment on line %d, want 4", got)
	}
	if got := stmt.Children[0].Line(); got != 6 {
		t.Errorf("oxiri on line %d, want 6", got)
	}
}

func TestParseIfChildren(t *testing.T) {
	program := mustParse(t, "agar a { } yemasa b { } yemasa c { } oxiri { }")

	stmt := program.Body[0].(*IfStatement)
	want := []NodeKind{ElifStatementNode, ElifStatementNode, ElseStatementNode}
	if len(stmt.Children) != len(want) {
		t.Fatalf("got %d children, want %d", len(stmt.Children), len(want))
	}
	for i, child := range stmt.Children {
		if child.Kind() != want[i] {
			t.Errorf("child %d is %s, want %s", i, child.Kind(), want[i])
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		reason string
		line   int
	}{
		{"second else", "agar a { } oxiri { } oxiri { }", "only one oxiri", 1},
		{"elif after else", "agar a { } oxiri { }\nyemasa b { }", "cannot follow oxiri", 2},
		{"orphan elif", "yemasa a { }", "must follow an agar", 1},
		{"orphan else", "\noxiri { }", "must follow an agar", 2},
		{"const without value", "jovob a;", "must be initialized", 1},
		{"duplicate parameter", "fn f(a, a) { }", "duplicate parameter", 1},
		{"missing block", "agar a korsat(a)", "expected block", 1},
		{"unclosed call", "korsat(1, 2", "unexpected", 1},
		{"object key", "{ 1: 2 }", "unexpected", 1},
		{"dangling operator", "1 +", "end of input", 1},
		{"minus without number", "xullas a endi - b", "expected a number", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.source)

			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("got %v, want a ParseError", err)
			}
			if !strings.Contains(parseErr.Reason, tt.reason) {
				t.Errorf("reason %q does not mention %q", parseErr.Reason, tt.reason)
			}
			if parseErr.Line() != tt.line {
				t.Errorf("line %d, want %d", parseErr.Line(), tt.line)
			}
		})
	}
}

func TestParseLexErrorPassesThrough(t *testing.T) {
	_, err := Parse("xullas a endi $")

	var lexErr *LexError
	if !errors.As(err, &lexErr) {
		t.Fatalf("got %v, want a LexError", err)
	}
}

func TestErrorWithContext(t *testing.T) {
	source := "xullas a endi 1\nxullas b endi )"
	_, err := Parse(source)

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("got %v, want a ParseError", err)
	}

	lines := strings.Split(parseErr.ErrorWithContext(source), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines: %q", len(lines), lines)
	}
	if lines[1] != "   2 | xullas b endi )" {
		t.Errorf("source line = %q", lines[1])
	}
	if caret := strings.Index(lines[2], "^"); caret != strings.Index(lines[1], ")") {
		t.Errorf("caret at %d, want under ')' at %d", caret, strings.Index(lines[1], ")"))
	}
}

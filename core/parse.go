package core

import (
	"fmt"
	"strconv"

	"golang.org/x/exp/slices"
)

type parser struct {
	tokens []Token
	index  int
}

var (
	logicalOps        = []tokenKind{AND, OR}
	relationalOps     = []tokenKind{GREATER, LESS, EQ, NEQ, GEQ, LEQ}
	additiveOps       = []tokenKind{PLUS, MINUS}
	multiplicativeOps = []tokenKind{TIMES, DIVIDE, MODULUS}
)

func NewParser(tokens []Token) parser {
	return parser{
		tokens: tokens,
		index:  0,
	}
}

func (p *parser) isEOF() bool {
	return p.index >= len(p.tokens) || p.tokens[p.index].Kind == EOF
}

func (p *parser) peek() Token {
	if p.index >= len(p.tokens) {
		return Token{Kind: EOF}
	}
	return p.tokens[p.index]
}

func (p *parser) next() Token {
	tok := p.peek()

	if p.index < len(p.tokens) {
		p.index++
	}

	return tok
}

func (p *parser) expect(kind tokenKind) (Token, error) {
	next := p.next()
	if next.Kind != kind {
		return Token{Kind: UNKNOWN}, &ParseError{
			Reason: fmt.Sprintf("unexpected token %s, expected %s", next, kind),
			Pos:    next.Pos,
		}
	}

	return next, nil
}

// skipTerminator eats an optional ';' after a simple statement.
func (p *parser) skipTerminator() {
	if p.peek().Kind == SEMICOLON {
		p.next()
	}
}

func (p *parser) errorAt(tok Token, format string, args ...interface{}) error {
	return &ParseError{
		Reason: fmt.Sprintf(format, args...),
		Pos:    tok.Pos,
	}
}

func (p *parser) parseStatement() (Node, error) {
	start := p.peek()

	var stmt Node
	var err error

	switch start.Kind {
	case LET_KEYWORD, CONST_KEYWORD:
		stmt, err = p.parseVarDeclaration()
	case FN_KEYWORD:
		stmt, err = p.parseFnDeclaration()
	case RETURN_KEYWORD:
		stmt, err = p.parseReturnStatement()
	case IF_KEYWORD:
		stmt, err = p.parseIfStatement()
	case ELIF_KEYWORD:
		return nil, p.errorAt(start, "yemasa must follow an agar statement")
	case ELSE_KEYWORD:
		return nil, p.errorAt(start, "oxiri must follow an agar statement")
	case WHILE_KEYWORD:
		stmt, err = p.parseWhileStatement()
	case CONTINUE_KEYWORD:
		p.next()
		p.skipTerminator()
		stmt = &ContinueStatement{}
	case BREAK_KEYWORD:
		p.next()
		p.skipTerminator()
		stmt = &BreakStatement{}
	default:
		stmt, err = p.parseExpression()
		if err == nil {
			p.skipTerminator()
		}
	}

	if err != nil {
		return nil, err
	}

	stmt.(interface{ setLine(int) }).setLine(start.Pos.line)
	return stmt, nil
}

// parseBlock parses '{' statement* '}'.
func (p *parser) parseBlock() ([]Node, error) {
	if _, err := p.expect(LEFT_BRACE); err != nil {
		return nil, err
	}

	body := []Node{}
	for !p.isEOF() && p.peek().Kind != RIGHT_BRACE {
		if p.peek().Kind == SEMICOLON {
			p.next()
			continue
		}

		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}

	if _, err := p.expect(RIGHT_BRACE); err != nil {
		return nil, err
	}

	return body, nil
}

// xullas a endi 4;
// jovob b = 4;
// xullas c;
func (p *parser) parseVarDeclaration() (Node, error) {
	keyword := p.next()
	isConst := keyword.Kind == CONST_KEYWORD

	ident, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}

	if p.peek().Kind != EQUALS {
		if isConst {
			return nil, p.errorAt(keyword, "constant %s must be initialized", ident.Payload)
		}
		p.skipTerminator()
		return &VariableDeclaration{Name: ident.Payload, IsConst: false}, nil
	}
	p.next()

	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.skipTerminator()

	return &VariableDeclaration{Name: ident.Payload, IsConst: isConst, Value: value}, nil
}

// fn name (a, b) { ... }
func (p *parser) parseFnDeclaration() (Node, error) {
	p.next()

	name, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(LEFT_PAREN); err != nil {
		return nil, err
	}

	params := []string{}
	for !p.isEOF() && p.peek().Kind != RIGHT_PAREN {
		param, err := p.expect(IDENTIFIER)
		if err != nil {
			return nil, err
		}
		if slices.Contains(params, param.Payload) {
			return nil, p.errorAt(param, "duplicate parameter %s", param.Payload)
		}
		params = append(params, param.Payload)

		if p.peek().Kind != RIGHT_PAREN {
			if _, err := p.expect(COMMA); err != nil {
				return nil, err
			}
		}
	}

	if _, err := p.expect(RIGHT_PAREN); err != nil {
		return nil, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	return &FunctionDeclaration{Name: name.Payload, Params: params, Body: body}, nil
}

func (p *parser) parseReturnStatement() (Node, error) {
	p.next()

	switch p.peek().Kind {
	case SEMICOLON, RIGHT_BRACE, EOF:
		p.skipTerminator()
		return &ReturnStatement{}, nil
	}

	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.skipTerminator()

	return &ReturnStatement{Value: value}, nil
}

func (p *parser) parseConditional() (Node, []Node, error) {
	condition, err := p.parseExpression()
	if err != nil {
		return nil, nil, err
	}

	if p.peek().Kind != LEFT_BRACE {
		return nil, nil, p.errorAt(p.peek(), "expected block after condition, got %s", p.peek())
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, nil, err
	}

	return condition, body, nil
}

// agar (a > 5 va b < 4) { ... } yemasa (...) { ... } oxiri { ... }
func (p *parser) parseIfStatement() (Node, error) {
	p.next()

	condition, body, err := p.parseConditional()
	if err != nil {
		return nil, err
	}

	stmt := &IfStatement{Condition: condition, Body: body}
	seenElse := false

	for {
		tok := p.peek()

		switch tok.Kind {
		case ELIF_KEYWORD:
			if seenElse {
				return nil, p.errorAt(tok, "yemasa cannot follow oxiri")
			}
			p.next()
			condition, body, err := p.parseConditional()
			if err != nil {
				return nil, err
			}
			elif := &ElifStatement{Condition: condition, Body: body}
			elif.setLine(tok.Pos.line)
			stmt.Children = append(stmt.Children, elif)
		case ELSE_KEYWORD:
			if seenElse {
				return nil, p.errorAt(tok, "agar can contain only one oxiri")
			}
			seenElse = true
			p.next()
			body, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			els := &ElseStatement{Body: body}
			els.setLine(tok.Pos.line)
			stmt.Children = append(stmt.Children, els)
		default:
			return stmt, nil
		}
	}
}

// aylan (i < 10) { ... }
func (p *parser) parseWhileStatement() (Node, error) {
	p.next()

	condition, body, err := p.parseConditional()
	if err != nil {
		return nil, err
	}

	return &WhileStatement{Condition: condition, Body: body}, nil
}

// Orders of precedence, lowest first:
//
//	assignment
//	object
//	logical (va, yoki)
//	relational
//	additive
//	multiplicative
//	call / member
//	primary
func (p *parser) parseExpression() (Node, error) {
	return p.parseAssignmentExpression()
}

func (p *parser) parseAssignmentExpression() (Node, error) {
	start := p.peek()

	left, err := p.parseObjectExpression()
	if err != nil {
		return nil, err
	}

	if p.peek().Kind != EQUALS {
		return left, nil
	}
	p.next()

	value, err := p.parseAssignmentExpression()
	if err != nil {
		return nil, err
	}

	node := &AssignmentExpression{Owner: left, Value: value}
	node.setLine(start.Pos.line)
	return node, nil
}

// { key: value, key, other }
func (p *parser) parseObjectExpression() (Node, error) {
	if p.peek().Kind != LEFT_BRACE {
		return p.parseLogicalExpression()
	}

	open := p.next()
	object := &ObjectLiteral{Properties: []*Property{}}
	object.setLine(open.Pos.line)

	for !p.isEOF() && p.peek().Kind != RIGHT_BRACE {
		key, err := p.expect(IDENTIFIER)
		if err != nil {
			return nil, err
		}

		prop := &Property{Key: key.Payload}
		prop.setLine(key.Pos.line)

		switch p.peek().Kind {
		case COMMA:
			// { key, }
			p.next()
			object.Properties = append(object.Properties, prop)
			continue
		case RIGHT_BRACE:
			// { key }
			object.Properties = append(object.Properties, prop)
			continue
		}

		if _, err := p.expect(COLON); err != nil {
			return nil, err
		}

		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		prop.Value = value
		object.Properties = append(object.Properties, prop)

		if p.peek().Kind != RIGHT_BRACE {
			if _, err := p.expect(COMMA); err != nil {
				return nil, err
			}
		}
	}

	if _, err := p.expect(RIGHT_BRACE); err != nil {
		return nil, err
	}

	return object, nil
}

// parseBinary folds a left-associative chain of ops, each operand parsed by
// operand.
func (p *parser) parseBinary(ops []tokenKind, operand func() (Node, error)) (Node, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}

	for slices.Contains(ops, p.peek().Kind) {
		op := p.next()

		right, err := operand()
		if err != nil {
			return nil, err
		}

		binary := &BinaryExpression{Left: left, Right: right, Operator: op.Kind}
		binary.setLine(left.Line())
		left = binary
	}

	return left, nil
}

func (p *parser) parseLogicalExpression() (Node, error) {
	return p.parseBinary(logicalOps, p.parseRelationalExpression)
}

func (p *parser) parseRelationalExpression() (Node, error) {
	return p.parseBinary(relationalOps, p.parseAdditiveExpression)
}

func (p *parser) parseAdditiveExpression() (Node, error) {
	return p.parseBinary(additiveOps, p.parseMultiplicativeExpression)
}

func (p *parser) parseMultiplicativeExpression() (Node, error) {
	return p.parseBinary(multiplicativeOps, p.parseCallMemberExpression)
}

// parseCallMemberExpression chains .name, [expr] and (args) onto a primary
// expression, so f()() and obj.method()[0] both parse.
func (p *parser) parseCallMemberExpression() (Node, error) {
	node, err := p.parsePrimaryExpression()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()

		switch tok.Kind {
		case DOT:
			p.next()
			ident, err := p.expect(IDENTIFIER)
			if err != nil {
				return nil, err
			}
			prop := &Identifier{Symbol: ident.Payload}
			prop.setLine(ident.Pos.line)

			member := &MemberExpression{Object: node, Property: prop, Computed: false}
			member.setLine(node.Line())
			node = member
		case LEFT_BRACKET:
			p.next()
			prop, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(RIGHT_BRACKET); err != nil {
				return nil, err
			}

			member := &MemberExpression{Object: node, Property: prop, Computed: true}
			member.setLine(node.Line())
			node = member
		case LEFT_PAREN:
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}

			call := &CallExpression{Caller: node, Args: args}
			call.setLine(node.Line())
			node = call
		default:
			return node, nil
		}
	}
}

func (p *parser) parseArgs() ([]Node, error) {
	if _, err := p.expect(LEFT_PAREN); err != nil {
		return nil, err
	}

	args := []Node{}
	for !p.isEOF() && p.peek().Kind != RIGHT_PAREN {
		arg, err := p.parseAssignmentExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		if p.peek().Kind != RIGHT_PAREN {
			if _, err := p.expect(COMMA); err != nil {
				return nil, err
			}
		}
	}

	if _, err := p.expect(RIGHT_PAREN); err != nil {
		return nil, err
	}

	return args, nil
}

func (p *parser) parsePrimaryExpression() (Node, error) {
	tok := p.next()

	switch tok.Kind {
	case IDENTIFIER:
		node := &Identifier{Symbol: tok.Payload}
		node.setLine(tok.Pos.line)
		return node, nil
	case NUMBER_LITERAL:
		return p.parseNumber(tok, false)
	case STRING_LITERAL:
		node := &StringLiteral{Value: tok.Payload}
		node.setLine(tok.Pos.line)
		return node, nil
	case MINUS:
		num, err := p.expect(NUMBER_LITERAL)
		if err != nil {
			return nil, p.errorAt(tok, "expected a number after '-'")
		}
		return p.parseNumber(num, true)
	case LEFT_PAREN:
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RIGHT_PAREN); err != nil {
			return nil, err
		}
		return value, nil
	case LEFT_BRACKET:
		array := &ArrayLiteral{Elements: []Node{}}
		array.setLine(tok.Pos.line)

		for !p.isEOF() && p.peek().Kind != RIGHT_BRACKET {
			element, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			array.Elements = append(array.Elements, element)

			if p.peek().Kind != RIGHT_BRACKET {
				if _, err := p.expect(COMMA); err != nil {
					return nil, err
				}
			}
		}

		if _, err := p.expect(RIGHT_BRACKET); err != nil {
			return nil, err
		}
		return array, nil
	case EOF:
		return nil, p.errorAt(tok, "unexpected end of input")
	}

	return nil, p.errorAt(tok, "unexpected token %s at start of expression", tok)
}

func (p *parser) parseNumber(tok Token, negate bool) (Node, error) {
	f, err := strconv.ParseFloat(tok.Payload, 64)
	if err != nil {
		return nil, &ParseError{Reason: err.Error(), Pos: tok.Pos}
	}
	if negate {
		f = -f
	}

	node := &NumericLiteral{Value: f}
	node.setLine(tok.Pos.line)
	return node, nil
}

func (p *parser) parse() (*Program, error) {
	program := &Program{Body: []Node{}}
	program.setLine(1)

	for !p.isEOF() {
		if p.peek().Kind == SEMICOLON {
			p.next()
			continue
		}

		stmt, err := p.parseStatement()
		if err != nil {
			return program, err
		}

		program.Body = append(program.Body, stmt)
	}

	return program, nil
}

package core

import (
	"fmt"
	"strconv"
	"strings"
)

type NodeKind int

const (
	ProgramNode NodeKind = iota
	VariableDeclarationNode
	FunctionDeclarationNode
	ReturnStatementNode
	ContinueStatementNode
	BreakStatementNode
	IfStatementNode
	ElifStatementNode
	ElseStatementNode
	WhileStatementNode

	BinaryExpressionNode
	AssignmentExpressionNode
	MemberExpressionNode
	CallExpressionNode

	IdentifierNode
	NumericLiteralNode
	StringLiteralNode
	PropertyNode
	ObjectLiteralNode
	ArrayLiteralNode
)

var nodeKindNames = [...]string{
	ProgramNode:              "Program",
	VariableDeclarationNode:  "VariableDeclaration",
	FunctionDeclarationNode:  "FunctionDeclaration",
	ReturnStatementNode:      "ReturnStatement",
	ContinueStatementNode:    "ContinueStatement",
	BreakStatementNode:       "BreakStatement",
	IfStatementNode:          "IfStatement",
	ElifStatementNode:        "ElifStatement",
	ElseStatementNode:        "ElseStatement",
	WhileStatementNode:       "WhileStatement",
	BinaryExpressionNode:     "BinaryExpression",
	AssignmentExpressionNode: "AssignmentExpression",
	MemberExpressionNode:     "MemberExpression",
	CallExpressionNode:       "CallExpression",
	IdentifierNode:           "Identifier",
	NumericLiteralNode:       "NumericLiteral",
	StringLiteralNode:        "StringLiteral",
	PropertyNode:             "Property",
	ObjectLiteralNode:        "ObjectLiteral",
	ArrayLiteralNode:         "ArrayLiteral",
}

func (k NodeKind) String() string {
	if int(k) < len(nodeKindNames) {
		return nodeKindNames[k]
	}
	return "<unknown node>"
}

// Node is any statement or expression. Every expression is also a valid
// statement.
type Node interface {
	Kind() NodeKind
	Line() int
	String() string
}

type node struct {
	line int
}

func (n node) Line() int {
	return n.line
}

func (n *node) setLine(line int) {
	n.line = line
}

func blockString(body []Node) string {
	if len(body) == 0 {
		return "{}"
	}
	stmts := make([]string, len(body))
	for i, stmt := range body {
		stmts[i] = stmt.String()
	}
	return "{ " + strings.Join(stmts, "; ") + " }"
}

type Program struct {
	node
	Body []Node
}

func (n *Program) Kind() NodeKind { return ProgramNode }

func (n *Program) String() string {
	stmts := make([]string, len(n.Body))
	for i, stmt := range n.Body {
		stmts[i] = stmt.String()
	}
	return strings.Join(stmts, "\n")
}

type VariableDeclaration struct {
	node
	Name    string
	IsConst bool
	Value   Node // nil when declared without an initializer
}

func (n *VariableDeclaration) Kind() NodeKind { return VariableDeclarationNode }

func (n *VariableDeclaration) String() string {
	keyword := "xullas"
	if n.IsConst {
		keyword = "jovob"
	}
	if n.Value == nil {
		return fmt.Sprintf("%s %s", keyword, n.Name)
	}
	return fmt.Sprintf("%s %s = %s", keyword, n.Name, n.Value)
}

type FunctionDeclaration struct {
	node
	Name   string
	Params []string
	Body   []Node
}

func (n *FunctionDeclaration) Kind() NodeKind { return FunctionDeclarationNode }

func (n *FunctionDeclaration) String() string {
	return fmt.Sprintf("fn %s(%s) %s", n.Name, strings.Join(n.Params, ", "), blockString(n.Body))
}

type ReturnStatement struct {
	node
	Value Node // nil for a bare qaytar
}

func (n *ReturnStatement) Kind() NodeKind { return ReturnStatementNode }

func (n *ReturnStatement) String() string {
	if n.Value == nil {
		return "qaytar"
	}
	return fmt.Sprintf("qaytar %s", n.Value)
}

type ContinueStatement struct {
	node
}

func (n *ContinueStatement) Kind() NodeKind { return ContinueStatementNode }
func (n *ContinueStatement) String() string { return "qarama" }

type BreakStatement struct {
	node
}

func (n *BreakStatement) Kind() NodeKind { return BreakStatementNode }
func (n *BreakStatement) String() string { return "toxta" }

type IfStatement struct {
	node
	Condition Node
	Body      []Node
	// Children holds the trailing ElifStatement and ElseStatement clauses in
	// source order. At most one ElseStatement, always last.
	Children []Node
}

func (n *IfStatement) Kind() NodeKind { return IfStatementNode }

func (n *IfStatement) String() string {
	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf("agar %s %s", n.Condition, blockString(n.Body)))
	for _, child := range n.Children {
		builder.WriteString(" ")
		builder.WriteString(child.String())
	}
	return builder.String()
}

type ElifStatement struct {
	node
	Condition Node
	Body      []Node
}

func (n *ElifStatement) Kind() NodeKind { return ElifStatementNode }

func (n *ElifStatement) String() string {
	return fmt.Sprintf("yemasa %s %s", n.Condition, blockString(n.Body))
}

type ElseStatement struct {
	node
	Body []Node
}

func (n *ElseStatement) Kind() NodeKind { return ElseStatementNode }

func (n *ElseStatement) String() string {
	return fmt.Sprintf("oxiri %s", blockString(n.Body))
}

type WhileStatement struct {
	node
	Condition Node
	Body      []Node
}

func (n *WhileStatement) Kind() NodeKind { return WhileStatementNode }

func (n *WhileStatement) String() string {
	return fmt.Sprintf("aylan %s %s", n.Condition, blockString(n.Body))
}

type BinaryExpression struct {
	node
	Left     Node
	Right    Node
	Operator tokenKind
}

func (n *BinaryExpression) Kind() NodeKind { return BinaryExpressionNode }

func (n *BinaryExpression) String() string {
	return "(" + n.Left.String() + " " + n.Operator.String() + " " + n.Right.String() + ")"
}

type AssignmentExpression struct {
	node
	Owner Node
	Value Node
}

func (n *AssignmentExpression) Kind() NodeKind { return AssignmentExpressionNode }

func (n *AssignmentExpression) String() string {
	return fmt.Sprintf("%s = %s", n.Owner, n.Value)
}

type MemberExpression struct {
	node
	Object   Node
	Property Node
	Computed bool
}

func (n *MemberExpression) Kind() NodeKind { return MemberExpressionNode }

func (n *MemberExpression) String() string {
	if n.Computed {
		return n.Object.String() + "[" + n.Property.String() + "]"
	}
	return n.Object.String() + "." + n.Property.String()
}

type CallExpression struct {
	node
	Caller Node
	Args   []Node
}

func (n *CallExpression) Kind() NodeKind { return CallExpressionNode }

func (n *CallExpression) String() string {
	args := make([]string, len(n.Args))
	for i, arg := range n.Args {
		args[i] = arg.String()
	}
	return fmt.Sprintf("%s(%s)", n.Caller, strings.Join(args, ", "))
}

type Identifier struct {
	node
	Symbol string
}

func (n *Identifier) Kind() NodeKind { return IdentifierNode }
func (n *Identifier) String() string { return n.Symbol }

type NumericLiteral struct {
	node
	Value float64
}

func (n *NumericLiteral) Kind() NodeKind { return NumericLiteralNode }

func (n *NumericLiteral) String() string {
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

type StringLiteral struct {
	node
	Value string
}

func (n *StringLiteral) Kind() NodeKind { return StringLiteralNode }
func (n *StringLiteral) String() string { return `"` + n.Value + `"` }

type Property struct {
	node
	Key   string
	Value Node // nil means the value is the variable named Key
}

func (n *Property) Kind() NodeKind { return PropertyNode }

func (n *Property) String() string {
	if n.Value == nil {
		return n.Key
	}
	return n.Key + ": " + n.Value.String()
}

type ObjectLiteral struct {
	node
	Properties []*Property
}

func (n *ObjectLiteral) Kind() NodeKind { return ObjectLiteralNode }

func (n *ObjectLiteral) String() string {
	if len(n.Properties) == 0 {
		return "{}"
	}
	props := make([]string, len(n.Properties))
	for i, prop := range n.Properties {
		props[i] = prop.String()
	}
	return "{ " + strings.Join(props, ", ") + " }"
}

type ArrayLiteral struct {
	node
	Elements []Node
}

func (n *ArrayLiteral) Kind() NodeKind { return ArrayLiteralNode }

func (n *ArrayLiteral) String() string {
	items := make([]string, len(n.Elements))
	for i, item := range n.Elements {
		items[i] = item.String()
	}
	return "[" + strings.Join(items, ", ") + "]"
}

package core

import "fmt"

// Parse tokenizes and parses source into a Program.
func Parse(source string) (*Program, error) {
	tokenizer := NewTokenizer(source)
	tokens, err := tokenizer.Tokenize()
	if err != nil {
		return nil, err
	}

	parser := NewParser(tokens)
	return parser.parse()
}

// Evaluate runs an already parsed node against env.
func Evaluate(ctx *Context, node Node, env *Environment) (Value, error) {
	return NewInterpreter(ctx).Evaluate(node, env)
}

// Interpret parses and runs source in env, which persists between calls so
// a REPL can keep its bindings.
func Interpret(ctx *Context, env *Environment, source string) (Value, error) {
	program, err := Parse(source)
	if err != nil {
		return nil, err
	}

	return Evaluate(ctx, program, env)
}

// Run interprets source in a fresh global scope.
func Run(ctx *Context, source string) (Value, error) {
	return Interpret(ctx, CreateGlobalScope(ctx), source)
}

func formatArity(name string, want, got int) string {
	return fmt.Sprintf("%s takes %d arguments, got %d", name, want, got)
}

package core

import (
	"errors"
	"log/slog"
	"math"
)

type flowKind int

const (
	flowNormal flowKind = iota
	flowContinue
	flowBreak
	flowReturn
)

func (f flowKind) keyword() string {
	switch f {
	case flowContinue:
		return "qarama"
	case flowBreak:
		return "toxta"
	case flowReturn:
		return "qaytar"
	default:
		return ""
	}
}

// completion is what running a statement produces: its value plus whether
// control leaves the enclosing body early. Every body runner checks it after
// each statement and hands anything but flowNormal straight back up.
type completion struct {
	flow  flowKind
	value Value
}

func normal(v Value) completion {
	return completion{flow: flowNormal, value: v}
}

// maxCallDepth bounds nested user function calls so runaway recursion
// becomes a RuntimeError instead of exhausting the Go stack.
const maxCallDepth = 10000

type Interpreter struct {
	context *Context
	log     *slog.Logger
	depth   int
}

func NewInterpreter(context *Context) *Interpreter {
	return &Interpreter{
		context: context,
		log:     context.logger(),
	}
}

// Evaluate runs node in env. A Program runs to completion, a top-level
// qaytar ends it early with its value.
func (in *Interpreter) Evaluate(node Node, env *Environment) (Value, error) {
	var c completion
	var err error

	if program, ok := node.(*Program); ok {
		c, err = in.execBody(program.Body, env)
	} else {
		c, err = in.exec(node, env)
	}
	if err != nil {
		return nil, err
	}

	switch c.flow {
	case flowContinue, flowBreak:
		return nil, newRuntimeError(InvalidControlFlow, node.Line(), "%s used outside of a loop", c.flow.keyword())
	}
	return c.value, nil
}

func (in *Interpreter) execBody(body []Node, scope *Environment) (completion, error) {
	var last Value = null

	for _, stmt := range body {
		c, err := in.exec(stmt, scope)
		if err != nil {
			return completion{}, err
		}
		if c.flow != flowNormal {
			return c, nil
		}
		last = c.value
	}

	return normal(last), nil
}

func (in *Interpreter) exec(node Node, env *Environment) (completion, error) {
	switch node := node.(type) {
	case *Program:
		return in.execBody(node.Body, env)
	case *VariableDeclaration:
		var value Value = null
		if node.Value != nil {
			v, err := in.eval(node.Value, env)
			if err != nil {
				return completion{}, err
			}
			value = v
		}
		v, err := env.Declare(node.Name, value, node.IsConst, node.Line())
		return normal(v), err
	case *FunctionDeclaration:
		fn := &FunctionValue{
			Name:   node.Name,
			Params: node.Params,
			Body:   node.Body,
			Scope:  env,
		}
		v, err := env.Declare(node.Name, fn, true, node.Line())
		return normal(v), err
	case *ReturnStatement:
		if node.Value == nil {
			return completion{flow: flowReturn, value: null}, nil
		}
		v, err := in.eval(node.Value, env)
		if err != nil {
			return completion{}, err
		}
		return completion{flow: flowReturn, value: v}, nil
	case *ContinueStatement:
		return completion{flow: flowContinue, value: null}, nil
	case *BreakStatement:
		return completion{flow: flowBreak, value: null}, nil
	case *IfStatement:
		return in.execIf(node, env)
	case *ElifStatement, *ElseStatement:
		_, c, err := in.execBranch(node, env)
		return c, err
	case *WhileStatement:
		return in.execWhile(node, env)
	default:
		v, err := in.eval(node, env)
		return normal(v), err
	}
}

func (in *Interpreter) execIf(node *IfStatement, env *Environment) (completion, error) {
	condition, err := in.eval(node.Condition, env)
	if err != nil {
		return completion{}, err
	}

	if condition.Truthy() {
		return in.execBody(node.Body, NewEnvironment(env))
	}

	for _, child := range node.Children {
		matched, c, err := in.execBranch(child, env)
		if err != nil || matched {
			return c, err
		}
	}

	return normal(null), nil
}

// execBranch runs an elif or else clause, reporting whether it was taken.
func (in *Interpreter) execBranch(node Node, env *Environment) (bool, completion, error) {
	switch node := node.(type) {
	case *ElifStatement:
		condition, err := in.eval(node.Condition, env)
		if err != nil {
			return false, completion{}, err
		}
		if !condition.Truthy() {
			return false, normal(null), nil
		}
		c, err := in.execBody(node.Body, NewEnvironment(env))
		return true, c, err
	case *ElseStatement:
		c, err := in.execBody(node.Body, NewEnvironment(env))
		return true, c, err
	}

	return false, completion{}, newRuntimeError(InvalidControlFlow, node.Line(), "%s cannot follow agar", node.Kind())
}

func (in *Interpreter) execWhile(node *WhileStatement, env *Environment) (completion, error) {
	// one scope for the whole loop: declarations persist across iterations
	scope := NewEnvironment(env)

	for {
		condition, err := in.eval(node.Condition, env)
		if err != nil {
			return completion{}, err
		}
		if !condition.Truthy() {
			break
		}

		c, err := in.execBody(node.Body, scope)
		if err != nil {
			return completion{}, err
		}

		switch c.flow {
		case flowBreak:
			return normal(null), nil
		case flowReturn:
			return c, nil
		}
	}

	return normal(null), nil
}

func (in *Interpreter) eval(node Node, env *Environment) (Value, error) {
	switch node := node.(type) {
	case *NumericLiteral:
		return NumberValue(node.Value), nil
	case *StringLiteral:
		return StringValue(node.Value), nil
	case *Identifier:
		return env.Get(node.Symbol, node.Line())
	case *BinaryExpression:
		return in.evalBinary(node, env)
	case *AssignmentExpression:
		return in.evalAssignment(node, env)
	case *ObjectLiteral:
		return in.evalObject(node, env)
	case *ArrayLiteral:
		items := make([]Value, 0, len(node.Elements))
		for _, element := range node.Elements {
			v, err := in.eval(element, env)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return NewArray(items...), nil
	case *CallExpression:
		return in.evalCall(node, env)
	case *MemberExpression:
		object, err := in.eval(node.Object, env)
		if err != nil {
			return nil, err
		}
		return in.member(object, node, env)
	}

	return nil, newRuntimeError(InvalidControlFlow, node.Line(), "%s is not an expression", node.Kind())
}

func (in *Interpreter) evalAssignment(node *AssignmentExpression, env *Environment) (Value, error) {
	ident, ok := node.Owner.(*Identifier)
	if !ok {
		return nil, newRuntimeError(InvalidAssignment, node.Line(), "cannot assign to %s", node.Owner)
	}

	value, err := in.eval(node.Value, env)
	if err != nil {
		return nil, err
	}

	return env.Assign(ident.Symbol, value, node.Line())
}

func (in *Interpreter) evalObject(node *ObjectLiteral, env *Environment) (Value, error) {
	object := NewObject()

	for _, prop := range node.Properties {
		var value Value
		var err error

		if prop.Value == nil {
			value, err = env.Get(prop.Key, prop.Line())
		} else {
			value, err = in.eval(prop.Value, env)
		}
		if err != nil {
			return nil, err
		}

		object.Set(prop.Key, value)
	}

	return object, nil
}

func (in *Interpreter) evalBinary(node *BinaryExpression, env *Environment) (Value, error) {
	left, err := in.eval(node.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := in.eval(node.Right, env)
	if err != nil {
		return nil, err
	}

	switch node.Operator {
	case GREATER, LESS, EQ, NEQ, GEQ, LEQ:
		return evalRelational(node, left, right)
	case AND, OR:
		a, okA := left.(BoolValue)
		b, okB := right.(BoolValue)
		if !okA || !okB {
			return nil, newRuntimeError(TypeMismatch, node.Line(),
				"%s requires two booleans, got %s and %s", node.Operator, left.Type(), right.Type())
		}
		if node.Operator == AND {
			return a && b, nil
		}
		return a || b, nil
	}

	a, okA := left.(NumberValue)
	b, okB := right.(NumberValue)
	if !okA || !okB {
		// arithmetic on anything but two numbers yields null rather than failing
		return null, nil
	}

	switch node.Operator {
	case PLUS:
		return a + b, nil
	case MINUS:
		return a - b, nil
	case TIMES:
		return a * b, nil
	case DIVIDE:
		if b == 0 {
			return nil, newRuntimeError(DivisionByZero, node.Line(), "cannot divide %s by zero", a)
		}
		return a / b, nil
	case MODULUS:
		if b == 0 {
			return nil, newRuntimeError(DivisionByZero, node.Line(), "cannot take %s modulo zero", a)
		}
		return NumberValue(math.Mod(float64(a), float64(b))), nil
	}

	return nil, newRuntimeError(TypeMismatch, node.Line(), "unknown operator %s", node.Operator)
}

func evalRelational(node *BinaryExpression, left, right Value) (Value, error) {
	switch a := left.(type) {
	case NumberValue:
		if b, ok := right.(NumberValue); ok {
			return compare(node.Operator, a, b), nil
		}
	case StringValue:
		if b, ok := right.(StringValue); ok {
			return compare(node.Operator, a, b), nil
		}
	}

	return nil, newRuntimeError(TypeMismatch, node.Line(),
		"cannot compare %s with %s, compare numbers with numbers and strings with strings", left.Type(), right.Type())
}

func compare[T NumberValue | StringValue](op tokenKind, a, b T) BoolValue {
	switch op {
	case GREATER:
		return a > b
	case LESS:
		return a < b
	case EQ:
		return a == b
	case NEQ:
		return a != b
	case GEQ:
		return a >= b
	default:
		return a <= b
	}
}

func (in *Interpreter) evalCall(node *CallExpression, env *Environment) (Value, error) {
	var callee Value
	var err error

	// arr.qosh(x) and friends act on the array itself rather than a property
	if member, ok := node.Caller.(*MemberExpression); ok && !member.Computed {
		object, err := in.eval(member.Object, env)
		if err != nil {
			return nil, err
		}

		name := member.Property.(*Identifier).Symbol
		if arr, ok := object.(*ArrayValue); ok && isArrayMethod(name) {
			args, err := in.evalArgs(node.Args, env)
			if err != nil {
				return nil, err
			}
			v, rerr := callArrayMethod(arr, name, args)
			if rerr != nil {
				return nil, rerr.at(node.Line())
			}
			return v, nil
		}

		callee, err = in.member(object, member, env)
		if err != nil {
			return nil, err
		}
	} else {
		callee, err = in.eval(node.Caller, env)
		if err != nil {
			return nil, err
		}
	}

	args, err := in.evalArgs(node.Args, env)
	if err != nil {
		return nil, err
	}

	switch fn := callee.(type) {
	case NativeFnValue:
		in.log.Debug("native call", "fn", fn.Name, "args", len(args), "line", node.Line())
		result, rerr := fn.Fn(args, env)
		if rerr != nil {
			return nil, rerr.at(node.Line())
		}
		if result == nil {
			return null, nil
		}
		return result, nil
	case *FunctionValue:
		return in.callFunction(fn, args, node.Line())
	}

	return nil, newRuntimeError(NotCallable, node.Line(), "%s is not a function, it cannot be called", nestedString(callee))
}

func (in *Interpreter) evalArgs(nodes []Node, env *Environment) ([]Value, error) {
	args := make([]Value, 0, len(nodes))
	for _, arg := range nodes {
		v, err := in.eval(arg, env)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

func (in *Interpreter) callFunction(fn *FunctionValue, args []Value, line int) (Value, error) {
	if len(args) != len(fn.Params) {
		return nil, newRuntimeError(ArityMismatch, line,
			"fn %s takes %d arguments, got %d", fn.Name, len(fn.Params), len(args))
	}

	if in.depth >= maxCallDepth {
		return nil, newRuntimeError(StackOverflow, line,
			"fn %s exceeded the maximum call depth of %d", fn.Name, maxCallDepth)
	}
	in.depth++
	defer func() { in.depth-- }()

	in.log.Debug("call", "fn", fn.Name, "args", len(args), "line", line, "depth", in.depth)

	scope := NewEnvironment(fn.Scope)
	for i, param := range fn.Params {
		if _, err := scope.Declare(param, args[i], false, line); err != nil {
			return nil, err
		}
	}

	var last Value = null
	for _, stmt := range fn.Body {
		c, err := in.exec(stmt, scope)
		if err != nil {
			var rerr *RuntimeError
			if errors.As(err, &rerr) {
				rerr.unwindThrough(fn.Name, line)
			}
			return nil, err
		}

		switch c.flow {
		case flowReturn:
			return c.value, nil
		case flowContinue, flowBreak:
			err := newRuntimeError(InvalidControlFlow, stmt.Line(), "%s used outside of a loop", c.flow.keyword())
			err.unwindThrough(fn.Name, line)
			return nil, err
		}
		last = c.value
	}

	return last, nil
}

func (in *Interpreter) member(object Value, node *MemberExpression, env *Environment) (Value, error) {
	if !node.Computed {
		name := node.Property.(*Identifier).Symbol

		switch object := object.(type) {
		case *ObjectValue:
			if v, ok := object.Get(name); ok {
				return v, nil
			}
			return null, nil
		case *ArrayValue:
			if !isArrayMethod(name) {
				return nil, newRuntimeError(InvalidMember, node.Line(), "array has no property %q", name)
			}
			if arrayMethods[name] == "length" {
				return NumberValue(len(object.Items)), nil
			}
			return boundArrayMethod(object, name), nil
		}

		return nil, newRuntimeError(InvalidMember, node.Line(), "cannot read property %q of %s", name, object.Type())
	}

	key, err := in.eval(node.Property, env)
	if err != nil {
		return nil, err
	}

	switch object := object.(type) {
	case *ObjectValue:
		name, ok := key.(StringValue)
		if !ok {
			return nil, newRuntimeError(TypeMismatch, node.Line(), "object keys are strings, got %s", key.Type())
		}
		if v, ok := object.Get(string(name)); ok {
			return v, nil
		}
		return null, nil
	case *ArrayValue:
		index, ok := key.(NumberValue)
		if !ok || index != NumberValue(math.Trunc(float64(index))) {
			return nil, newRuntimeError(TypeMismatch, node.Line(), "array index must be a whole number, got %s", nestedString(key))
		}
		if index < 0 || float64(index) >= float64(len(object.Items)) {
			return nil, newRuntimeError(IndexOutOfBounds, node.Line(),
				"index %s out of bounds for array of length %d", index, len(object.Items))
		}
		return object.Items[int(index)], nil
	}

	return nil, newRuntimeError(InvalidMember, node.Line(), "cannot index into %s", object.Type())
}

// arrayMethods maps every accepted pseudo-method name to its canonical name.
var arrayMethods = map[string]string{
	"qosh":   "push",
	"chop":   "pop",
	"sur":    "shift",
	"yuqot":  "clear",
	"razmer": "length",
	"push":   "push",
	"pop":    "pop",
	"shift":  "shift",
	"clear":  "clear",
	"length": "length",
}

func isArrayMethod(name string) bool {
	_, ok := arrayMethods[name]
	return ok
}

func callArrayMethod(arr *ArrayValue, name string, args []Value) (Value, *RuntimeError) {
	method := arrayMethods[name]

	want := 0
	if method == "push" {
		want = 1
	}
	if len(args) != want {
		return nil, &RuntimeError{
			Kind:   ArityMismatch,
			Reason: formatArity(name, want, len(args)),
		}
	}

	switch method {
	case "push":
		arr.Push(args[0])
		return arr, nil
	case "pop":
		return arr.Pop(), nil
	case "shift":
		return arr.Shift(), nil
	case "clear":
		arr.Clear()
		return arr, nil
	default:
		return NumberValue(len(arr.Items)), nil
	}
}

func boundArrayMethod(arr *ArrayValue, name string) NativeFnValue {
	return NativeFnValue{
		Name: name,
		Fn: func(args []Value, _ *Environment) (Value, *RuntimeError) {
			return callArrayMethod(arr, name, args)
		},
	}
}

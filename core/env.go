package core

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"
)

type ErrorKind int

const (
	UndeclaredVariable ErrorKind = iota + 1
	DeclarationConflict
	ConstantViolation
	TypeMismatch
	DivisionByZero
	ArityMismatch
	IndexOutOfBounds
	NotCallable
	InvalidMember
	InvalidAssignment
	InvalidControlFlow
	StackOverflow
)

var (
	ErrUndeclaredVariable  = errors.New("undeclared variable")
	ErrDeclarationConflict = errors.New("declaration conflict")
	ErrConstantViolation   = errors.New("constant violation")
	ErrTypeMismatch        = errors.New("type mismatch")
	ErrDivisionByZero      = errors.New("division by zero")
	ErrArityMismatch       = errors.New("arity mismatch")
	ErrIndexOutOfBounds    = errors.New("index out of bounds")
	ErrNotCallable         = errors.New("not callable")
	ErrInvalidMember       = errors.New("invalid member access")
	ErrInvalidAssignment   = errors.New("invalid assignment target")
	ErrInvalidControlFlow  = errors.New("invalid control flow")
	ErrStackOverflow       = errors.New("stack overflow")
)

var kindSentinels = map[ErrorKind]error{
	UndeclaredVariable:  ErrUndeclaredVariable,
	DeclarationConflict: ErrDeclarationConflict,
	ConstantViolation:   ErrConstantViolation,
	TypeMismatch:        ErrTypeMismatch,
	DivisionByZero:      ErrDivisionByZero,
	ArityMismatch:       ErrArityMismatch,
	IndexOutOfBounds:    ErrIndexOutOfBounds,
	NotCallable:         ErrNotCallable,
	InvalidMember:       ErrInvalidMember,
	InvalidAssignment:   ErrInvalidAssignment,
	InvalidControlFlow:  ErrInvalidControlFlow,
	StackOverflow:       ErrStackOverflow,
}

func (k ErrorKind) String() string {
	if sentinel, ok := kindSentinels[k]; ok {
		return sentinel.Error()
	}
	return "runtime error"
}

type stackEntry struct {
	name string
	line int
}

func (e stackEntry) String() string {
	return fmt.Sprintf("  in fn %s [line %d]", e.name, e.line)
}

// traceEdge is how many frames Error prints from each end of a long trace.
const traceEdge = 10

type RuntimeError struct {
	Kind   ErrorKind
	Reason string
	Line   int

	stackTrace []stackEntry
}

func newRuntimeError(kind ErrorKind, line int, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{
		Kind:   kind,
		Reason: fmt.Sprintf(format, args...),
		Line:   line,
	}
}

func (e *RuntimeError) Error() string {
	msg := fmt.Sprintf("Runtime error [line %d]: %s", e.Line, e.Reason)
	if len(e.stackTrace) == 0 {
		return msg
	}

	entries := e.stackTrace
	omitted := 0
	if len(entries) > 2*traceEdge {
		omitted = len(entries) - 2*traceEdge
	}

	trace := []string{}
	for i, entry := range entries {
		if omitted > 0 && i == traceEdge {
			trace = append(trace, fmt.Sprintf("  ... %d more", omitted))
		}
		if omitted > 0 && i >= traceEdge && i < traceEdge+omitted {
			continue
		}
		trace = append(trace, entry.String())
	}
	return msg + "\n" + strings.Join(trace, "\n")
}

// Is matches the sentinel error of the same kind.
func (e *RuntimeError) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && sentinel == target
}

// at fills in the line for errors raised without one, such as by natives.
func (e *RuntimeError) at(line int) *RuntimeError {
	if e.Line == 0 {
		e.Line = line
	}
	return e
}

func (e *RuntimeError) unwindThrough(name string, line int) {
	e.stackTrace = append(e.stackTrace, stackEntry{name: name, line: line})
}

// Environment is one lexical scope. parent is a back-reference only; a scope
// never writes into its parent's map except through Assign.
type Environment struct {
	parent    *Environment
	variables map[string]Value
	constants map[string]struct{}
}

func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		parent:    parent,
		variables: make(map[string]Value),
		constants: make(map[string]struct{}),
	}
}

func (e *Environment) Parent() *Environment {
	return e.parent
}

func (e *Environment) Declare(name string, value Value, isConst bool, line int) (Value, error) {
	if _, ok := e.variables[name]; ok {
		return nil, newRuntimeError(DeclarationConflict, line, "variable %q already declared in this scope", name)
	}

	if isConst {
		e.constants[name] = struct{}{}
	}
	e.variables[name] = value
	return value, nil
}

// Resolve returns the nearest scope in the chain that declares name.
func (e *Environment) Resolve(name string, line int) (*Environment, error) {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.variables[name]; ok {
			return env, nil
		}
	}

	return nil, newRuntimeError(UndeclaredVariable, line, "variable %q is not declared", name)
}

func (e *Environment) Assign(name string, value Value, line int) (Value, error) {
	env, err := e.Resolve(name, line)
	if err != nil {
		return nil, err
	}

	if _, ok := env.constants[name]; ok {
		return nil, newRuntimeError(ConstantViolation, line, "constant %q cannot be reassigned", name)
	}

	env.variables[name] = value
	return value, nil
}

func (e *Environment) Get(name string, line int) (Value, error) {
	env, err := e.Resolve(name, line)
	if err != nil {
		return nil, err
	}

	return env.variables[name], nil
}

type NativeFn func(args []Value, env *Environment) (Value, *RuntimeError)

type NativeFnValue struct {
	Name string
	Fn   NativeFn
}

func (v NativeFnValue) String() string {
	return fmt.Sprintf("<native fn %s>", v.Name)
}

func (v NativeFnValue) Eq(u Value) bool {
	if w, ok := u.(NativeFnValue); ok {
		return v.Name == w.Name
	}
	return false
}

func (v NativeFnValue) Truthy() bool {
	return true
}

func (v NativeFnValue) Type() ValueType {
	return NativeFnType
}

// LineReader supplies lines to the gapir native.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

type stdinReader struct {
	out     io.Writer
	scanner *bufio.Scanner
}

func (r *stdinReader) ReadLine(prompt string) (string, error) {
	fmt.Fprint(r.out, prompt)
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}

// NewLineReader reads lines from in, writing prompts to out.
func NewLineReader(in io.Reader, out io.Writer) LineReader {
	return &stdinReader{out: out, scanner: bufio.NewScanner(in)}
}

// Context carries everything the embedder hands the interpreter: the native
// functions to seed the root scope with and the host resources they use.
type Context struct {
	// file being run, "<stdin>" for the REPL
	RootPath string

	Builtins []NativeFnValue

	Stdout io.Writer
	Stdin  LineReader
	Rand   *rand.Rand
	Logger *slog.Logger
}

func NewContext(rootPath string) Context {
	return Context{
		RootPath: rootPath,
		Builtins: []NativeFnValue{},
		Stdout:   os.Stdout,
		Stdin:    NewLineReader(os.Stdin, os.Stdout),
		Rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
		Logger:   slog.Default(),
	}
}

func (c *Context) LoadFunc(name string, fn NativeFn) {
	c.Builtins = append(c.Builtins, NativeFnValue{
		Name: name,
		Fn:   fn,
	})
}

func (c *Context) RequireArgLen(fnName string, args []Value, count int) *RuntimeError {
	if len(args) != count {
		return &RuntimeError{
			Kind:   ArityMismatch,
			Reason: fmt.Sprintf("%s requires %d arguments, got %d", fnName, count, len(args)),
		}
	}

	return nil
}

func (c *Context) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

var globalConstants = []struct {
	name  string
	value Value
}{
	{"true", BoolValue(true)},
	{"false", BoolValue(false)},
	{"null", null},
	{"lagmon", BoolValue(false)},
	{"pustoy", null},
}

// CreateGlobalScope builds the root scope: the constant globals followed by
// every native loaded into the context, all declared constant.
func CreateGlobalScope(ctx *Context) *Environment {
	env := NewEnvironment(nil)

	for _, global := range globalConstants {
		if _, err := env.Declare(global.name, global.value, true, 0); err != nil {
			ctx.logger().Warn("global declared twice", "name", global.name)
		}
	}

	for _, builtin := range ctx.Builtins {
		if _, err := env.Declare(builtin.Name, builtin, true, 0); err != nil {
			ctx.logger().Warn("native shadowed by an earlier binding", "name", builtin.Name)
		}
	}

	return env
}

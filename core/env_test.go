package core

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestEnvironmentDeclareAndGet(t *testing.T) {
	env := NewEnvironment(nil)

	if _, err := env.Declare("a", NumberValue(1), false, 1); err != nil {
		t.Fatal(err)
	}

	v, err := env.Get("a", 2)
	if err != nil {
		t.Fatal(err)
	}
	if !v.Eq(NumberValue(1)) {
		t.Fatalf("a = %s, want 1", v)
	}

	_, err = env.Declare("a", NumberValue(2), false, 3)
	if !errors.Is(err, ErrDeclarationConflict) {
		t.Fatalf("redeclare: got %v, want %v", err, ErrDeclarationConflict)
	}
}

func TestEnvironmentShadowing(t *testing.T) {
	parent := NewEnvironment(nil)
	parent.Declare("a", NumberValue(1), true, 1)

	child := NewEnvironment(parent)
	if _, err := child.Declare("a", StringValue("inner"), false, 2); err != nil {
		t.Fatalf("shadowing a parent binding: %v", err)
	}

	v, _ := child.Get("a", 3)
	if !v.Eq(StringValue("inner")) {
		t.Fatalf("child sees %s", v)
	}
	v, _ = parent.Get("a", 3)
	if !v.Eq(NumberValue(1)) {
		t.Fatalf("parent sees %s", v)
	}
}

func TestEnvironmentAssignWalksChain(t *testing.T) {
	root := NewEnvironment(nil)
	root.Declare("count", NumberValue(0), false, 1)

	inner := NewEnvironment(NewEnvironment(root))
	if _, err := inner.Assign("count", NumberValue(5), 4); err != nil {
		t.Fatal(err)
	}

	owner, err := inner.Resolve("count", 4)
	if err != nil {
		t.Fatal(err)
	}
	if owner != root {
		t.Fatal("count resolved to the wrong scope")
	}
	if v, _ := root.Get("count", 5); !v.Eq(NumberValue(5)) {
		t.Fatalf("count = %s, want 5", v)
	}
}

func TestEnvironmentErrors(t *testing.T) {
	root := NewEnvironment(nil)
	root.Declare("PI", NumberValue(3.14), true, 1)
	child := NewEnvironment(root)

	_, err := child.Assign("PI", NumberValue(3), 7)
	var rerr *RuntimeError
	if !errors.As(err, &rerr) || rerr.Kind != ConstantViolation {
		t.Fatalf("got %v, want a constant violation", err)
	}
	if rerr.Line != 7 {
		t.Errorf("line %d, want 7", rerr.Line)
	}

	if _, err := child.Get("missing", 9); !errors.Is(err, ErrUndeclaredVariable) {
		t.Errorf("Get: got %v, want %v", err, ErrUndeclaredVariable)
	}
	if _, err := child.Assign("missing", null, 9); !errors.Is(err, ErrUndeclaredVariable) {
		t.Errorf("Assign: got %v, want %v", err, ErrUndeclaredVariable)
	}
}

func TestCreateGlobalScope(t *testing.T) {
	ctx := NewContext("<test>")
	ctx.LoadFunc("ikki", func(args []Value, _ *Environment) (Value, *RuntimeError) {
		return NumberValue(2), nil
	})
	env := CreateGlobalScope(&ctx)

	for name, want := range map[string]Value{
		"true":   BoolValue(true),
		"false":  BoolValue(false),
		"lagmon": BoolValue(false),
		"null":   null,
		"pustoy": null,
	} {
		v, err := env.Get(name, 0)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if !v.Eq(want) {
			t.Errorf("%s = %s, want %s", name, v, want)
		}
	}

	if _, err := env.Get("ikki", 0); err != nil {
		t.Fatalf("native not declared: %v", err)
	}
	if _, err := env.Assign("true", BoolValue(false), 1); !errors.Is(err, ErrConstantViolation) {
		t.Fatalf("globals must be constant, got %v", err)
	}
}

func TestRequireArgLen(t *testing.T) {
	ctx := NewContext("<test>")

	if err := ctx.RequireArgLen("f", []Value{null}, 1); err != nil {
		t.Fatalf("unexpected %v", err)
	}

	err := ctx.RequireArgLen("f", nil, 2)
	if err == nil || err.Kind != ArityMismatch {
		t.Fatalf("got %v, want an arity mismatch", err)
	}
}

func TestValueStrings(t *testing.T) {
	object := NewObject()
	object.Set("a", NumberValue(1))
	object.Set("b", StringValue("x"))
	object.Set("a", NumberValue(2))

	tests := []struct {
		value Value
		want  string
	}{
		{NumberValue(3), "3"},
		{NumberValue(2.5), "2.5"},
		{StringValue("salom"), "salom"},
		{BoolValue(true), "true"},
		{null, "null"},
		{NewArray(), "[]"},
		{NewArray(NumberValue(1), StringValue("a")), `[ 1, "a" ]`},
		{NewObject(), "{}"},
		{object, `{ a: 2, b: "x" }`},
	}

	for _, tt := range tests {
		if got := tt.value.String(); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
}

func TestValueTruthy(t *testing.T) {
	truthy := []Value{BoolValue(true), NumberValue(-1), StringValue("0"), NewArray(), NewObject()}
	falsy := []Value{BoolValue(false), NumberValue(0), StringValue(""), null}

	for _, v := range truthy {
		if !v.Truthy() {
			t.Errorf("%s (%s) should be truthy", v, v.Type())
		}
	}
	for _, v := range falsy {
		if v.Truthy() {
			t.Errorf("%s (%s) should be falsy", v, v.Type())
		}
	}
}

func TestArrayValueMutation(t *testing.T) {
	arr := NewArray(NumberValue(1), NumberValue(2), NumberValue(3))

	if v := arr.Shift(); !v.Eq(NumberValue(1)) {
		t.Errorf("Shift = %s", v)
	}
	if v := arr.Pop(); !v.Eq(NumberValue(3)) {
		t.Errorf("Pop = %s", v)
	}
	arr.Push(StringValue("x"))
	if !arr.Eq(NewArray(NumberValue(2), StringValue("x"))) {
		t.Errorf("array = %s", arr)
	}

	arr.Clear()
	if v := arr.Pop(); v != null {
		t.Errorf("Pop on empty = %s, want null", v)
	}
	if v := arr.Shift(); v != null {
		t.Errorf("Shift on empty = %s, want null", v)
	}
}

func TestCreateGlobalScopeShadowedNative(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := NewContext("<test>")
	ctx.Logger = slog.New(slog.NewTextHandler(buf, nil))
	ctx.LoadFunc("true", func(args []Value, _ *Environment) (Value, *RuntimeError) {
		return null, nil
	})

	env := CreateGlobalScope(&ctx)

	if v, _ := env.Get("true", 0); !v.Eq(BoolValue(true)) {
		t.Errorf("true = %s, the global must win", v)
	}
	if !strings.Contains(buf.String(), "name=true") {
		t.Errorf("expected a warning naming the shadowed native, got %q", buf.String())
	}
}

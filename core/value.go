package core

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

type ValueType int

const (
	NullType ValueType = iota
	NumberType
	StringType
	BoolType
	ObjectType
	ArrayType
	FunctionType
	NativeFnType
)

func (t ValueType) String() string {
	switch t {
	case NullType:
		return "null"
	case NumberType:
		return "number"
	case StringType:
		return "string"
	case BoolType:
		return "boolean"
	case ObjectType:
		return "object"
	case ArrayType:
		return "array"
	case FunctionType:
		return "function"
	case NativeFnType:
		return "native-fn"
	default:
		return "<unknown>"
	}
}

type Value interface {
	String() string
	Eq(v Value) bool
	Truthy() bool
	Type() ValueType
}

type NullValue struct{}

func (v NullValue) String() string {
	return "null"
}

func (v NullValue) Eq(other Value) bool {
	_, ok := other.(NullValue)
	return ok
}

func (v NullValue) Truthy() bool {
	return false
}

func (v NullValue) Type() ValueType {
	return NullType
}

var null = NullValue{}

// Null is the single null value.
func Null() Value {
	return null
}

type NumberValue float64

func (v NumberValue) String() string {
	return strconv.FormatFloat(float64(v), 'f', -1, 64)
}

func (v NumberValue) Eq(u Value) bool {
	if w, ok := u.(NumberValue); ok {
		return v == w
	}
	return false
}

func (v NumberValue) Truthy() bool {
	return v != 0
}

func (v NumberValue) Type() ValueType {
	return NumberType
}

type StringValue string

func (v StringValue) String() string {
	return string(v)
}

func (v StringValue) Eq(u Value) bool {
	if w, ok := u.(StringValue); ok {
		return v == w
	}
	return false
}

func (v StringValue) Truthy() bool {
	return len(v) > 0
}

func (v StringValue) Type() ValueType {
	return StringType
}

type BoolValue bool

func (v BoolValue) String() string {
	if v {
		return "true"
	}
	return "false"
}

func (v BoolValue) Eq(u Value) bool {
	if w, ok := u.(BoolValue); ok {
		return v == w
	}
	return false
}

func (v BoolValue) Truthy() bool {
	return bool(v)
}

func (v BoolValue) Type() ValueType {
	return BoolType
}

// nestedString quotes strings so they stay distinguishable inside containers.
func nestedString(v Value) string {
	if s, ok := v.(StringValue); ok {
		return strconv.Quote(string(s))
	}
	return v.String()
}

// ObjectValue keeps its keys in insertion order.
type ObjectValue struct {
	keys  []string
	props map[string]Value
}

func NewObject() *ObjectValue {
	return &ObjectValue{
		keys:  []string{},
		props: make(map[string]Value),
	}
}

func (v *ObjectValue) Set(key string, value Value) {
	if _, ok := v.props[key]; !ok {
		v.keys = append(v.keys, key)
	}
	v.props[key] = value
}

func (v *ObjectValue) Get(key string) (Value, bool) {
	value, ok := v.props[key]
	return value, ok
}

func (v *ObjectValue) Keys() []string {
	return v.keys
}

func (v *ObjectValue) Len() int {
	return len(v.keys)
}

func (v *ObjectValue) String() string {
	if len(v.keys) == 0 {
		return "{}"
	}
	entries := make([]string, len(v.keys))
	for i, key := range v.keys {
		entries[i] = key + ": " + nestedString(v.props[key])
	}

	return "{ " + strings.Join(entries, ", ") + " }"
}

func (v *ObjectValue) Eq(u Value) bool {
	w, ok := u.(*ObjectValue)
	if !ok {
		return false
	}
	if v == w {
		return true
	}
	if len(v.keys) != len(w.keys) {
		return false
	}
	for key, value := range v.props {
		if other, ok := w.props[key]; !ok || !value.Eq(other) {
			return false
		}
	}

	return true
}

func (v *ObjectValue) Truthy() bool {
	return true
}

func (v *ObjectValue) Type() ValueType {
	return ObjectType
}

// ArrayValue is shared by reference; the pseudo-methods mutate Items in place.
type ArrayValue struct {
	Items []Value
}

func NewArray(items ...Value) *ArrayValue {
	if items == nil {
		items = []Value{}
	}
	return &ArrayValue{Items: items}
}

func (v *ArrayValue) Push(item Value) {
	v.Items = append(v.Items, item)
}

// Pop removes and returns the last item, or null when empty.
func (v *ArrayValue) Pop() Value {
	if len(v.Items) == 0 {
		return null
	}
	last := v.Items[len(v.Items)-1]
	v.Items = slices.Delete(v.Items, len(v.Items)-1, len(v.Items))
	return last
}

// Shift removes and returns the first item, or null when empty.
func (v *ArrayValue) Shift() Value {
	if len(v.Items) == 0 {
		return null
	}
	first := v.Items[0]
	v.Items = slices.Delete(v.Items, 0, 1)
	return first
}

func (v *ArrayValue) Clear() {
	v.Items = []Value{}
}

func (v *ArrayValue) String() string {
	if len(v.Items) == 0 {
		return "[]"
	}
	items := make([]string, len(v.Items))
	for i, item := range v.Items {
		items[i] = nestedString(item)
	}
	return "[ " + strings.Join(items, ", ") + " ]"
}

func (v *ArrayValue) Eq(u Value) bool {
	w, ok := u.(*ArrayValue)
	if !ok {
		return false
	}
	return slices.EqualFunc(v.Items, w.Items, func(a, b Value) bool {
		return a.Eq(b)
	})
}

func (v *ArrayValue) Truthy() bool {
	return true
}

func (v *ArrayValue) Type() ValueType {
	return ArrayType
}

// FunctionValue is a closure: Scope is the live declaration scope, shared,
// so later changes to it are visible to calls.
type FunctionValue struct {
	Name   string
	Params []string
	Body   []Node
	Scope  *Environment
}

func (v *FunctionValue) String() string {
	return fmt.Sprintf("fn %s(%s)", v.Name, strings.Join(v.Params, ", "))
}

func (v *FunctionValue) Eq(u Value) bool {
	w, ok := u.(*FunctionValue)
	return ok && v == w
}

func (v *FunctionValue) Truthy() bool {
	return true
}

func (v *FunctionValue) Type() ValueType {
	return FunctionType
}

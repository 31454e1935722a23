package modules

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kocha-lang/kocha/core"
)

type _math struct {
	ctx *core.Context
}

func loadMath(ctx *core.Context) error {
	// wrapper struct to allow access to the context
	c := &_math{ctx: ctx}

	ctx.LoadFunc("son", c.son)
	ctx.LoadFunc("shara", c.shara)
	ctx.LoadFunc("kelishtir", c.kelishtir)
	return nil
}

// son converts a string to a number; text that is not a number gives null.
func (c *_math) son(args []core.Value, _ *core.Environment) (core.Value, *core.RuntimeError) {
	if err := c.ctx.RequireArgLen("son", args, 1); err != nil {
		return nil, err
	}

	switch arg := args[0].(type) {
	case core.NumberValue:
		return arg, nil
	case core.StringValue:
		text := strings.TrimSpace(string(arg))
		if text == "" {
			return core.NumberValue(0), nil
		}
		f, err := strconv.ParseFloat(text, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return core.Null(), nil
		}
		return core.NumberValue(f), nil
	default:
		return core.Null(), nil
	}
}

// maxSafeInteger is the largest magnitude a float64 holds exactly.
const maxSafeInteger = 1 << 53

func safeInteger(n core.NumberValue) bool {
	return math.Abs(float64(n)) <= maxSafeInteger
}

// shara returns a random whole number in [min, max].
func (c *_math) shara(args []core.Value, _ *core.Environment) (core.Value, *core.RuntimeError) {
	if err := c.ctx.RequireArgLen("shara", args, 2); err != nil {
		return nil, err
	}

	lo, okLo := args[0].(core.NumberValue)
	hi, okHi := args[1].(core.NumberValue)
	if !okLo || !okHi {
		return nil, &core.RuntimeError{
			Kind:   core.TypeMismatch,
			Reason: fmt.Sprintf("shara requires two numbers, got %s and %s", args[0].Type(), args[1].Type()),
		}
	}

	if !safeInteger(lo) || !safeInteger(hi) {
		return nil, &core.RuntimeError{
			Kind:   core.TypeMismatch,
			Reason: fmt.Sprintf("shara: bounds must lie within ±%d, got [%s, %s]", maxSafeInteger, lo, hi),
		}
	}

	min := int64(math.Ceil(float64(lo)))
	max := int64(math.Floor(float64(hi)))
	if max < min {
		return nil, &core.RuntimeError{
			Kind:   core.TypeMismatch,
			Reason: fmt.Sprintf("shara: empty range [%s, %s]", lo, hi),
		}
	}

	return core.NumberValue(min + c.ctx.Rand.Int63n(max-min+1)), nil
}

// kelishtir rounds half up, so -2.5 becomes -2.
func (c *_math) kelishtir(args []core.Value, _ *core.Environment) (core.Value, *core.RuntimeError) {
	if err := c.ctx.RequireArgLen("kelishtir", args, 1); err != nil {
		return nil, err
	}

	switch arg := args[0].(type) {
	case core.NumberValue:
		return core.NumberValue(math.Floor(float64(arg) + 0.5)), nil
	default:
		return nil, &core.RuntimeError{
			Kind:   core.TypeMismatch,
			Reason: fmt.Sprintf("kelishtir does not support type %s", arg.Type()),
		}
	}
}

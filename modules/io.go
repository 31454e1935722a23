package modules

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kocha-lang/kocha/core"
)

type _io struct {
	ctx *core.Context
}

func loadIO(ctx *core.Context) error {
	c := &_io{ctx: ctx}

	ctx.LoadFunc("korsat", c.korsat)
	ctx.LoadFunc("gapir", c.gapir)
	return nil
}

// korsat prints its arguments separated by spaces.
func (c *_io) korsat(args []core.Value, _ *core.Environment) (core.Value, *core.RuntimeError) {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = arg.String()
	}

	if _, err := fmt.Fprintln(c.ctx.Stdout, strings.Join(parts, " ")); err != nil {
		return nil, &core.RuntimeError{
			Reason: fmt.Sprintf("korsat: %s", err),
		}
	}
	return core.Null(), nil
}

// gapir shows a prompt and reads one line. End of input reads as "".
func (c *_io) gapir(args []core.Value, _ *core.Environment) (core.Value, *core.RuntimeError) {
	if len(args) != 1 {
		return core.Null(), nil
	}
	prompt, ok := args[0].(core.StringValue)
	if !ok {
		return core.Null(), nil
	}

	line, err := c.ctx.Stdin.ReadLine(string(prompt))
	if errors.Is(err, io.EOF) {
		return core.StringValue(""), nil
	} else if err != nil {
		return nil, &core.RuntimeError{
			Reason: fmt.Sprintf("gapir: %s", err),
		}
	}

	return core.StringValue(line), nil
}

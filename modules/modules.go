package modules

import "github.com/kocha-lang/kocha/core"

// Initialize loads every native function into ctx. It must run before
// core.CreateGlobalScope so the natives end up in the root scope.
func Initialize(ctx *core.Context) error {
	loaders := []func(*core.Context) error{
		loadIO,
		loadMath,
	}

	for _, load := range loaders {
		if err := load(ctx); err != nil {
			return err
		}
	}
	return nil
}

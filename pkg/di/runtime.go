// Package di wires the dependencies command handlers resolve at run time.
package di

import (
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

// Injector is the dependency container handed to command handlers.
type Injector = do.Injector

// Module registers one or more dependencies on an injector.
type Module func(Injector) error

// Runtime owns the module list and builds a fresh injector per invocation,
// so commands never observe instances leaked from a previous run.
type Runtime struct {
	modules []Module
}

// New creates a runtime from the given modules. Nil modules are skipped.
func New(modules ...Module) *Runtime {
	return &Runtime{modules: modules}
}

// Invoke builds an injector, applies the runtime's modules followed by any
// extra ones in order, and runs the handler. The injector is shut down when
// the handler returns.
func (r *Runtime) Invoke(handler func(Injector) error, extra ...Module) error {
	injector := do.New()
	defer injector.Shutdown()

	err := applyModules(injector, r.modules)
	if err != nil {
		return err
	}

	err = applyModules(injector, extra)
	if err != nil {
		return err
	}

	return handler(injector)
}

func applyModules(injector Injector, modules []Module) error {
	for _, module := range modules {
		if module == nil {
			continue
		}

		err := module(injector)
		if err != nil {
			return err
		}
	}

	return nil
}

// RunEWithRuntime adapts a handler to a cobra RunE that invokes it through
// the runtime.
func RunEWithRuntime(
	runtime *Runtime,
	handler func(cmd *cobra.Command, injector Injector) error,
) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		return runtime.Invoke(func(injector Injector) error {
			return handler(cmd, injector)
		})
	}
}

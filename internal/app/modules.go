package app

import (
	"io"

	"github.com/vk/declrt/internal/registry"
	"github.com/vk/declrt/modules/env_vars"
	"github.com/vk/declrt/modules/print"
	"github.com/vk/declrt/modules/steps"
)

// CoreModules returns the definitive list of all modules that are compiled
// into the declrt binary. Printed output goes to out.
func CoreModules(out io.Writer) []registry.Module {
	return []registry.Module{
		&steps.Module{},
		&print.Module{Out: out},
		&env_vars.Module{},
	}
}

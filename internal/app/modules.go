package app

import (
	"github.com/specialistvlad/unitgrid/internal/registry"
	"github.com/specialistvlad/unitgrid/modules/assert"
	"github.com/specialistvlad/unitgrid/modules/env"
	"github.com/specialistvlad/unitgrid/modules/http_probe"
	"github.com/specialistvlad/unitgrid/modules/print"
	"github.com/specialistvlad/unitgrid/modules/sleep"
)

// coreModules is the definitive list of all modules that are compiled into
// the unitgrid binary.
var coreModules = []registry.Module{
	&assert.Module{},
	&env.Module{},
	&http_probe.Module{},
	&print.Module{},
	&sleep.Module{},
}

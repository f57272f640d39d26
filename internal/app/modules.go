package app

import (
	"github.com/specialistvlad/contractexplorer/internal/registry"
	"github.com/specialistvlad/contractexplorer/modules/sac"
)

// coreModules is the definitive list of all contract modules that are
// compiled into the explorer binary.
var coreModules = []registry.Module{
	&sac.Module{},
}

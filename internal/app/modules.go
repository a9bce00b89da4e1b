package app

import (
	"github.com/specialistvlad/mlgridgo/internal/registry"
	"github.com/specialistvlad/mlgridgo/modules/clean"
	"github.com/specialistvlad/mlgridgo/modules/download"
	"github.com/specialistvlad/mlgridgo/modules/split"
	"github.com/specialistvlad/mlgridgo/modules/train"
)

// coreModules is the definitive list of all step modules that are compiled
// into the mlgridgo binary.
var coreModules = []registry.Module{
	&download.Module{},
	&clean.Module{},
	&split.Module{},
	&train.Module{},
}

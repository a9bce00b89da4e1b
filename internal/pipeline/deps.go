package pipeline

import (
	"github.com/specialistvlad/mlgridgo/internal/artifact"
	"github.com/specialistvlad/mlgridgo/internal/tracking"
)

// Deps carries the shared collaborators every step handler receives. The
// driver injects them explicitly; nothing is communicated through process
// environment.
type Deps struct {
	// Store is the artifact registry steps read inputs from and register
	// outputs into.
	Store artifact.Store

	// Run is the tracking run opened for this pipeline invocation. Steps
	// log params and metrics into it.
	Run tracking.Run

	// Project and Group identify the tracking project and run group, for
	// steps that include them in descriptions or logs.
	Project string
	Group   string

	// WorkDir is a scratch directory owned by the invocation. Steps write
	// intermediate files (downloads, CSVs awaiting registration) here.
	WorkDir string
}

package artifact

import (
	"context"
	"time"
)

// SaveRequest describes one artifact registration.
type SaveRequest struct {
	Name        string
	Type        string
	Description string
	SourcePath  string
}

// Meta is the metadata recorded alongside every artifact version.
type Meta struct {
	Name        string    `json:"name"`
	Version     int       `json:"version"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	File        string    `json:"file"`
	CreatedAt   time.Time `json:"created_at"`
}

// Location is a resolved artifact version: where its data file lives plus
// the metadata it was registered with.
type Location struct {
	Name    string
	Version int
	Path    string
	Meta    Meta
}

// Ref returns the exact (non-latest) reference for the location.
func (l *Location) Ref() Ref {
	return Ref{Name: l.Name, Version: l.Version}
}

// Store is the artifact registry steps read from and write to. Versioning
// and consistency are entirely the store's responsibility; steps only deal
// in references.
type Store interface {
	// Save registers the file at req.SourcePath under req.Name as a new
	// version and returns its location.
	Save(ctx context.Context, req SaveRequest) (*Location, error)

	// Resolve parses the reference string and returns the location of the
	// selected version. Resolving a name or version that does not exist is
	// an error.
	Resolve(ctx context.Context, ref string) (*Location, error)

	// Versions lists the registered version numbers for a name, ascending.
	// A name with no versions yields an empty slice, not an error.
	Versions(name string) ([]int, error)
}

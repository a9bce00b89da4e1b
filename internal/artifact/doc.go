// Package artifact implements the named, versioned artifact contract shared
// by all pipeline steps. An artifact is a file registered under a stable
// name; every registration creates a new monotonically increasing version,
// and the selector "latest" always resolves to the highest version at read
// time. Nothing is ever overwritten or mutated in place.
package artifact

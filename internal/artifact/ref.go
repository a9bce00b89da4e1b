package artifact

import (
	"fmt"
	"strconv"
	"strings"
)

// LatestVersion is the sentinel version number meaning "highest available".
const LatestVersion = 0

// Ref is a parsed artifact reference: a name plus a version selector.
// Produced by one step, consumed by the next.
type Ref struct {
	Name    string
	Version int // LatestVersion means latest
}

// String renders the reference in its canonical "name:vN" or "name:latest" form.
func (r Ref) String() string {
	if r.Version == LatestVersion {
		return r.Name + ":latest"
	}
	return fmt.Sprintf("%s:v%d", r.Name, r.Version)
}

// ParseRef parses an artifact reference of the form "name", "name:latest",
// or "name:vN". A bare name selects the latest version.
func ParseRef(s string) (Ref, error) {
	name, selector, found := strings.Cut(s, ":")
	if name == "" {
		return Ref{}, fmt.Errorf("artifact reference %q has an empty name", s)
	}
	if strings.ContainsAny(name, `/\`) {
		return Ref{}, fmt.Errorf("artifact name %q must not contain path separators", name)
	}
	if !found || selector == "latest" {
		return Ref{Name: name, Version: LatestVersion}, nil
	}

	numStr, ok := strings.CutPrefix(selector, "v")
	if !ok {
		return Ref{}, fmt.Errorf("artifact reference %q has invalid version selector %q (want \"latest\" or \"vN\")", s, selector)
	}
	version, err := strconv.Atoi(numStr)
	if err != nil || version < 1 {
		return Ref{}, fmt.Errorf("artifact reference %q has invalid version selector %q (want \"latest\" or \"vN\")", s, selector)
	}
	return Ref{Name: name, Version: version}, nil
}

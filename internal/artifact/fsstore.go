package artifact

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/specialistvlad/mlgridgo/internal/ctxlog"
)

// FSStore is a Store backed by a local directory. Layout:
//
//	<root>/<name>/v<N>/<file>
//	<root>/<name>/v<N>/meta.json
type FSStore struct {
	root string
}

// NewFSStore creates a filesystem-backed store rooted at dir, creating the
// directory if needed.
func NewFSStore(dir string) (*FSStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("artifact store root must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact store root %s: %w", dir, err)
	}
	return &FSStore{root: dir}, nil
}

// Root returns the store's root directory.
func (s *FSStore) Root() string { return s.root }

// Save registers a new version of the named artifact.
func (s *FSStore) Save(ctx context.Context, req SaveRequest) (*Location, error) {
	logger := ctxlog.FromContext(ctx)

	if _, err := ParseRef(req.Name); err != nil {
		return nil, err
	}
	if strings.Contains(req.Name, ":") {
		return nil, fmt.Errorf("artifact name %q must not contain a version selector", req.Name)
	}

	versions, err := s.Versions(req.Name)
	if err != nil {
		return nil, err
	}
	next := 1
	if len(versions) > 0 {
		next = versions[len(versions)-1] + 1
	}

	fileName := filepath.Base(req.SourcePath)
	versionDir := filepath.Join(s.root, req.Name, fmt.Sprintf("v%d", next))
	if err := os.MkdirAll(versionDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create version directory: %w", err)
	}

	if err := copyFile(req.SourcePath, filepath.Join(versionDir, fileName)); err != nil {
		return nil, fmt.Errorf("failed to store artifact data for '%s': %w", req.Name, err)
	}

	meta := Meta{
		Name:        req.Name,
		Version:     next,
		Type:        req.Type,
		Description: req.Description,
		File:        fileName,
		CreatedAt:   time.Now().UTC(),
	}
	metaBytes, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode artifact metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(versionDir, "meta.json"), metaBytes, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write artifact metadata: %w", err)
	}

	logger.Info("📦 Artifact registered.", "name", req.Name, "version", next, "type", req.Type)
	return &Location{
		Name:    req.Name,
		Version: next,
		Path:    filepath.Join(versionDir, fileName),
		Meta:    meta,
	}, nil
}

// Resolve returns the location of the version selected by the reference.
func (s *FSStore) Resolve(ctx context.Context, refStr string) (*Location, error) {
	logger := ctxlog.FromContext(ctx)

	ref, err := ParseRef(refStr)
	if err != nil {
		return nil, err
	}

	version := ref.Version
	if version == LatestVersion {
		versions, err := s.Versions(ref.Name)
		if err != nil {
			return nil, err
		}
		if len(versions) == 0 {
			return nil, fmt.Errorf("artifact '%s' has no registered versions", ref.Name)
		}
		version = versions[len(versions)-1]
	}

	versionDir := filepath.Join(s.root, ref.Name, fmt.Sprintf("v%d", version))
	metaBytes, err := os.ReadFile(filepath.Join(versionDir, "meta.json"))
	if err != nil {
		return nil, fmt.Errorf("artifact '%s' version v%d does not exist: %w", ref.Name, version, err)
	}
	var meta Meta
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return nil, fmt.Errorf("corrupt metadata for artifact '%s' v%d: %w", ref.Name, version, err)
	}

	logger.Debug("Resolved artifact reference.", "ref", refStr, "version", version)
	return &Location{
		Name:    ref.Name,
		Version: version,
		Path:    filepath.Join(versionDir, meta.File),
		Meta:    meta,
	}, nil
}

// Versions lists the registered version numbers for a name, ascending.
func (s *FSStore) Versions(name string) ([]int, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list versions for artifact '%s': %w", name, err)
	}

	var versions []int
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		numStr, ok := strings.CutPrefix(e.Name(), "v")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(numStr)
		if err != nil || n < 1 {
			continue
		}
		versions = append(versions, n)
	}
	sort.Ints(versions)
	return versions, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

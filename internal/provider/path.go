package provider

import (
	"context"
	"path/filepath"

	"github.com/frederic-klein/descry/internal/bundlecache"
)

// Path resolves a bundle that already lives on disk, outside the
// bundle cache. Nothing is ever downloaded; the path itself is the
// only cache candidate. Content under the path can change at any
// time, so path bundles report as mutable and any cached manifest is
// only a per-process memo.
type Path struct {
	path    string
	name    string
	version string
	dev     bool
}

// NewPath creates a provider for a bundle at a fixed filesystem path.
// name and version are optional overrides; the defaults are the path
// basename and "latest".
func NewPath(path, name, version string) *Path {
	return newPath(path, name, version, false)
}

// NewDev is NewPath for work-in-progress bundles; the resulting
// provider additionally reports IsDev.
func NewDev(path, name, version string) *Path {
	return newPath(path, name, version, true)
}

func newPath(path, name, version string, dev bool) *Path {
	if name == "" {
		name = filepath.Base(path)
	}
	if version == "" {
		version = "latest"
	}
	return &Path{path: path, name: name, version: version, dev: dev}
}

// SystemName returns the bundle name.
func (p *Path) SystemName() string {
	return p.name
}

// Version returns the pinned version, or "latest" when none was given.
func (p *Path) Version() string {
	return p.version
}

// CacheCandidates returns the bundle path itself; path bundles are
// never copied into the cache roots.
func (p *Path) CacheCandidates(bundlecache.Roots) []string {
	return []string{p.path}
}

// Materialize is a no-op: there is nothing to fetch for a bundle that
// already lives on disk.
func (p *Path) Materialize(context.Context, string) error {
	return nil
}

// Versions returns the single pinned version; filesystem bundles have
// no version history to enumerate.
func (p *Path) Versions(context.Context) ([]string, error) {
	return []string{p.version}, nil
}

// IsImmutable reports false: the backing files can change between
// calls.
func (p *Path) IsImmutable() bool {
	return false
}

// IsDev reports whether this bundle points at work-in-progress code.
func (p *Path) IsDev() bool {
	return p.dev
}

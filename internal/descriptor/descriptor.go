// Package descriptor is the resolution core: it turns a bundle
// identity into a provider-backed handle that can locate a cached
// copy, materialize it on demand, and expose its manifest and version
// history.
package descriptor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/frederic-klein/descry/internal/bundlecache"
	"github.com/frederic-klein/descry/internal/manifest"
	"github.com/frederic-klein/descry/internal/provider"
	"github.com/frederic-klein/descry/internal/version"
)

// Options carries the environment a descriptor resolves in. The cache
// roots come from the hosting configuration layer; descriptors never
// discover or persist them on their own.
type Options struct {
	Roots       bundlecache.Roots
	StoreMirror string
	GitBinary   string
	Logger      *log.Logger
}

// Descriptor combines one bundle identity with one provider variant.
// The identity never changes after construction; the manifest, once
// loaded, is cached for the lifetime of the instance.
type Descriptor struct {
	identity Identity
	provider provider.Provider
	opts     Options
	logger   *log.Logger

	mu       sync.Mutex
	manifest *manifest.Manifest
}

// New creates a descriptor from an identity. The "type" key selects
// the provider variant; each variant validates its own key set.
// Unrecognized extra keys are warned about but tolerated.
func New(id Identity, opts Options) (*Descriptor, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	typ, ok := id["type"]
	if !ok {
		return nil, fmt.Errorf("descriptor %v is missing required key \"type\": %w", id, ErrMalformed)
	}

	var p provider.Provider
	switch typ {
	case provider.TypeStore:
		if err := id.validateKeys(logger, []string{"name", "version"}, []string{"label"}); err != nil {
			return nil, err
		}
		p = provider.NewStore(opts.StoreMirror, id["name"], id["version"])

	case provider.TypeGit:
		if err := id.validateKeys(logger, []string{"path", "version"}, nil); err != nil {
			return nil, err
		}
		p = provider.NewGit(id["path"], id["version"], opts.GitBinary)

	case provider.TypePath:
		if err := id.validateKeys(logger, []string{"path"}, []string{"name", "version"}); err != nil {
			return nil, err
		}
		p = provider.NewPath(id["path"], id["name"], id["version"])

	case provider.TypeDev:
		if err := id.validateKeys(logger, []string{"path"}, []string{"name", "version"}); err != nil {
			return nil, err
		}
		p = provider.NewDev(id["path"], id["name"], id["version"])

	default:
		return nil, fmt.Errorf("unknown descriptor type %q: %w", typ, ErrMalformed)
	}

	return &Descriptor{
		identity: id.clone(),
		provider: p,
		opts:     opts,
		logger:   logger,
	}, nil
}

// NewWithProvider creates a descriptor backed by an externally
// constructed provider. The core only depends on the provider's
// behavior, so callers can plug in variants beyond the built-in set.
func NewWithProvider(id Identity, p provider.Provider, opts Options) (*Descriptor, error) {
	if _, ok := id["type"]; !ok {
		return nil, fmt.Errorf("descriptor %v is missing required key \"type\": %w", id, ErrMalformed)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Descriptor{
		identity: id.clone(),
		provider: p,
		opts:     opts,
		logger:   logger,
	}, nil
}

// FromURIString is a convenience constructor from the canonical URI
// form.
func FromURIString(uri string, opts Options) (*Descriptor, error) {
	id, err := FromURI(uri)
	if err != nil {
		return nil, err
	}
	return New(id, opts)
}

// Identity returns a copy of the descriptor's identity.
func (d *Descriptor) Identity() Identity {
	return d.identity.clone()
}

// Type returns the provider variant name.
func (d *Descriptor) Type() string {
	return d.identity.Type()
}

// URI returns the canonical string form of the identity.
func (d *Descriptor) URI() string {
	// the identity was validated at construction, so this cannot fail
	uri, _ := d.identity.URI()
	return uri
}

// SystemName returns the short bundle name.
func (d *Descriptor) SystemName() string {
	return d.provider.SystemName()
}

// Version returns the version this descriptor is pinned to.
func (d *Descriptor) Version() string {
	return d.provider.Version()
}

// Path returns the directory holding the local copy of the bundle, or
// the empty string when no cache candidate has one. The first
// candidate containing the metadata file wins.
func (d *Descriptor) Path() string {
	for _, candidate := range d.provider.CacheCandidates(d.opts.Roots) {
		metadata := filepath.Join(candidate, bundlecache.MetadataFile)
		if _, err := os.Stat(metadata); err == nil {
			return candidate
		}
	}
	return ""
}

// ExistsLocal reports whether the bundle has a local copy.
func (d *Descriptor) ExistsLocal() bool {
	return d.Path() != ""
}

// EnsureLocal materializes the bundle under the primary cache root if
// no local copy exists yet. Calling it again once local is a no-op.
func (d *Descriptor) EnsureLocal(ctx context.Context) error {
	if d.ExistsLocal() {
		return nil
	}

	target := d.opts.Roots.PrimaryPath(d.Type(), d.provider.SystemName(), d.provider.Version())
	d.logger.Debug("materializing bundle", "uri", d.URI(), "target", target)

	if err := d.provider.Materialize(ctx, target); err != nil {
		return fmt.Errorf("materializing %s: %w", d.URI(), err)
	}
	return nil
}

// Manifest returns the bundle's metadata, materializing the bundle
// first if needed. The result is cached on the instance and never
// re-read from disk, even if the backing files change afterwards.
func (d *Descriptor) Manifest(ctx context.Context) (*manifest.Manifest, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.manifest != nil {
		return d.manifest, nil
	}

	if err := d.EnsureLocal(ctx); err != nil {
		return nil, err
	}

	path := d.Path()
	if path == "" {
		return nil, fmt.Errorf("bundle %s has no %s after materialization: %w",
			d.URI(), bundlecache.MetadataFile, ErrMetadataMissing)
	}

	m, err := manifest.Load(filepath.Join(path, bundlecache.MetadataFile))
	if err != nil {
		return nil, err
	}

	d.manifest = m
	return m, nil
}

// Versions enumerates the version tags the provider knows for this
// bundle.
func (d *Descriptor) Versions(ctx context.Context) ([]string, error) {
	tags, err := d.provider.Versions(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerating versions for %s: %w", d.SystemName(), err)
	}
	return tags, nil
}

// LatestVersion resolves the most recent version satisfying pattern.
// With an empty pattern the provider's own notion of latest is used
// when it has one; otherwise the numerically greatest tag wins.
func (d *Descriptor) LatestVersion(ctx context.Context, pattern string) (string, error) {
	if pattern == "" {
		if lv, ok := d.provider.(provider.LatestVersioner); ok {
			latest, err := lv.LatestVersion(ctx)
			if err != nil {
				return "", fmt.Errorf("resolving latest version for %s: %w", d.SystemName(), err)
			}
			return latest, nil
		}
		pattern = "vx.x.x"
	}

	tags, err := d.Versions(ctx)
	if err != nil {
		return "", err
	}
	return version.Match(d.SystemName(), tags, pattern)
}

// Latest resolves the most recent version satisfying pattern and
// returns a new descriptor pinned to it. The receiver is unchanged.
func (d *Descriptor) Latest(ctx context.Context, pattern string) (*Descriptor, error) {
	tag, err := d.LatestVersion(ctx, pattern)
	if err != nil {
		return nil, err
	}

	id := d.identity.clone()
	id["version"] = tag
	return New(id, d.opts)
}

// Deprecation reports whether the pinned version is deprecated.
// Providers without deprecation tracking report active.
func (d *Descriptor) Deprecation(ctx context.Context) (bool, string, error) {
	if dep, ok := d.provider.(provider.Deprecator); ok {
		return dep.Deprecation(ctx)
	}
	return false, "", nil
}

// Changelog returns the release notes summary and URL for the pinned
// version. Providers without changelogs return empty values.
func (d *Descriptor) Changelog(ctx context.Context) (string, string, error) {
	if cl, ok := d.provider.(provider.Changelogger); ok {
		return cl.Changelog(ctx)
	}
	return "", "", nil
}

// IsDev reports whether this descriptor points at work-in-progress
// code.
func (d *Descriptor) IsDev() bool {
	if dm, ok := d.provider.(provider.DevMarker); ok {
		return dm.IsDev()
	}
	return false
}

// IsImmutable reports whether the content at the pinned version can
// never change. Mutable descriptors still memoize their manifest per
// instance; keeping that memo valid across external edits is the
// caller's concern.
func (d *Descriptor) IsImmutable() bool {
	if mm, ok := d.provider.(provider.MutableMarker); ok {
		return mm.IsImmutable()
	}
	return true
}

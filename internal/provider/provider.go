// Package provider implements the sources a bundle can be published
// through: the central bundle store, git repositories, and plain
// filesystem paths. The resolution core only depends on the Provider
// interface and never inspects transport details.
package provider

import (
	"context"

	"github.com/frederic-klein/descry/internal/bundlecache"
)

// Descriptor type names, as they appear in the "type" key of a
// descriptor identity and as the first segment of cache paths.
const (
	TypeStore = "store"
	TypeGit   = "git"
	TypePath  = "path"
	TypeDev   = "dev"
)

// Provider is the contract every bundle source implements.
type Provider interface {
	// SystemName returns the short bundle name, suitable for use in
	// configuration files and as a folder name on disk.
	SystemName() string

	// Version returns the version string this provider is pinned to.
	Version() string

	// CacheCandidates returns the on-disk locations where a cached
	// copy of the bundle may reside, in probe order.
	CacheCandidates(roots bundlecache.Roots) []string

	// Materialize populates target with the bundle payload. It must
	// be idempotent and all-or-nothing: the metadata file becomes
	// visible under target only once the full bundle is in place.
	Materialize(ctx context.Context, target string) error

	// Versions enumerates the version tags known for this bundle.
	Versions(ctx context.Context) ([]string, error)
}

// LatestVersioner is implemented by providers with a native notion of
// "most recent version" (e.g. the store's release order). Without it,
// latest is derived from Versions.
type LatestVersioner interface {
	LatestVersion(ctx context.Context) (string, error)
}

// Deprecator is implemented by providers that track deprecation.
type Deprecator interface {
	// Deprecation reports whether the pinned version is deprecated,
	// and if so why.
	Deprecation(ctx context.Context) (bool, string, error)
}

// Changelogger is implemented by providers that expose changelogs.
type Changelogger interface {
	// Changelog returns a summary and an URL; either may be empty.
	Changelog(ctx context.Context) (string, string, error)
}

// DevMarker is implemented by providers pointing at work-in-progress
// code rather than released bundles.
type DevMarker interface {
	IsDev() bool
}

// MutableMarker is implemented by providers whose content at a fixed
// version can change, invalidating long-lived caches.
type MutableMarker interface {
	IsImmutable() bool
}

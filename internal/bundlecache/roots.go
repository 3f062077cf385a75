// Package bundlecache computes the on-disk locations where a realized
// bundle copy may live. It only builds paths; probing and writing are
// left to the caller.
package bundlecache

import "path/filepath"

// MetadataFile is the fixed-name metadata file every realized bundle
// exposes at its root. A cache candidate without it does not count as
// a local copy.
const MetadataFile = "info.yml"

// legacyDirs maps bundle categories to the extra directory level used
// by the pre-rework cache layout. Kept so caches written by older
// releases keep resolving after an upgrade.
var legacyDirs = map[string]string{
	"app":       "apps",
	"engine":    "engines",
	"framework": "frameworks",
}

// Roots describes the cache roots for bundle storage. Primary is the
// only root ever written to; Fallbacks are read-only and consulted in
// order when a bundle is not found under Primary.
type Roots struct {
	Primary   string
	Fallbacks []string
}

// CachePaths returns every candidate path for the given bundle, in
// probe order: for each root (primary first, then fallbacks in order)
// the current-style path root/typ/name/version, followed by the
// legacy-style path root/<legacy>/typ/name/version when typ has a
// legacy directory. Pure; performs no I/O.
func (r Roots) CachePaths(typ, name, version string) []string {
	roots := make([]string, 0, len(r.Fallbacks)+1)
	roots = append(roots, r.Primary)
	roots = append(roots, r.Fallbacks...)

	legacy, hasLegacy := legacyDirs[typ]

	paths := make([]string, 0, len(roots)*2)
	for _, root := range roots {
		paths = append(paths, filepath.Join(root, typ, name, version))
		if hasLegacy {
			paths = append(paths, filepath.Join(root, legacy, typ, name, version))
		}
	}
	return paths
}

// PrimaryPath returns the current-style path under the primary root.
// This is the only valid materialization target.
func (r Roots) PrimaryPath(typ, name, version string) string {
	return filepath.Join(r.Primary, typ, name, version)
}

package bundlecache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoots_CachePaths_Order(t *testing.T) {
	roots := Roots{
		Primary:   filepath.FromSlash("/P"),
		Fallbacks: []string{filepath.FromSlash("/F1"), filepath.FromSlash("/F2")},
	}

	got := roots.CachePaths("app", "foo", "v1.0.0")

	want := []string{
		filepath.FromSlash("/P/app/foo/v1.0.0"),
		filepath.FromSlash("/P/apps/app/foo/v1.0.0"),
		filepath.FromSlash("/F1/app/foo/v1.0.0"),
		filepath.FromSlash("/F1/apps/app/foo/v1.0.0"),
		filepath.FromSlash("/F2/app/foo/v1.0.0"),
		filepath.FromSlash("/F2/apps/app/foo/v1.0.0"),
	}
	assert.Equal(t, want, got)
}

func TestRoots_CachePaths_LegacyDirs(t *testing.T) {
	roots := Roots{Primary: filepath.FromSlash("/P")}

	tests := []struct {
		typ    string
		legacy string
	}{
		{"app", "apps"},
		{"engine", "engines"},
		{"framework", "frameworks"},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			got := roots.CachePaths(tt.typ, "foo", "v2.1.0")
			want := []string{
				filepath.FromSlash("/P/" + tt.typ + "/foo/v2.1.0"),
				filepath.FromSlash("/P/" + tt.legacy + "/" + tt.typ + "/foo/v2.1.0"),
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestRoots_CachePaths_NoLegacyEntry(t *testing.T) {
	roots := Roots{Primary: filepath.FromSlash("/P"), Fallbacks: []string{filepath.FromSlash("/F")}}

	// Provider types outside the three bundle categories have no
	// legacy layout to fall back to.
	got := roots.CachePaths("store", "foo", "v1.0.0")

	want := []string{
		filepath.FromSlash("/P/store/foo/v1.0.0"),
		filepath.FromSlash("/F/store/foo/v1.0.0"),
	}
	assert.Equal(t, want, got)
}

func TestRoots_PrimaryPath(t *testing.T) {
	roots := Roots{
		Primary:   filepath.FromSlash("/P"),
		Fallbacks: []string{filepath.FromSlash("/F1")},
	}

	got := roots.PrimaryPath("engine", "tk-maya", "v0.3.1")
	assert.Equal(t, filepath.FromSlash("/P/engine/tk-maya/v0.3.1"), got)
}

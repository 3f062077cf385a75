package provider

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frederic-klein/descry/internal/bundlecache"
)

func TestPath_Defaults(t *testing.T) {
	p := NewPath(filepath.FromSlash("/work/bundles/tk-testapp"), "", "")

	assert.Equal(t, "tk-testapp", p.SystemName())
	assert.Equal(t, "latest", p.Version())
	assert.False(t, p.IsDev())
	assert.False(t, p.IsImmutable())
}

func TestPath_Overrides(t *testing.T) {
	p := NewPath("/work/bundles/checkout", "tk-testapp", "v0.1.0")

	assert.Equal(t, "tk-testapp", p.SystemName())
	assert.Equal(t, "v0.1.0", p.Version())
}

func TestPath_CacheCandidates(t *testing.T) {
	p := NewPath("/work/bundles/tk-testapp", "", "")
	roots := bundlecache.Roots{Primary: "/P", Fallbacks: []string{"/F"}}

	// The bundle lives outside the cache roots entirely.
	assert.Equal(t, []string{"/work/bundles/tk-testapp"}, p.CacheCandidates(roots))
}

func TestPath_MaterializeIsNoop(t *testing.T) {
	p := NewPath("/work/bundles/tk-testapp", "", "")
	require.NoError(t, p.Materialize(context.Background(), "/ignored"))
}

func TestPath_Versions(t *testing.T) {
	p := NewPath("/work/bundles/tk-testapp", "", "v0.1.0")

	tags, err := p.Versions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"v0.1.0"}, tags)
}

func TestDev_Marker(t *testing.T) {
	p := NewDev("/work/bundles/tk-testapp", "", "")

	assert.True(t, p.IsDev())
	assert.False(t, p.IsImmutable())
}

package provider

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/frederic-klein/descry/internal/bundlecache"
)

func TestGit_SystemName(t *testing.T) {
	tests := []struct {
		repo string
		want string
	}{
		{"git@example.com:bundles/tk-maya.git", "tk-maya"},
		{"https://example.com/bundles/tk-nuke.git", "tk-nuke"},
		{"https://example.com/bundles/tk-houdini", "tk-houdini"},
		{"/mnt/repos/tk-shell.git", "tk-shell"},
		{"git@example.com:tk-flat.git", "tk-flat"},
	}

	for _, tt := range tests {
		t.Run(tt.repo, func(t *testing.T) {
			g := NewGit(tt.repo, "v1.0.0", "")
			assert.Equal(t, tt.want, g.SystemName())
		})
	}
}

func TestGit_CacheCandidates(t *testing.T) {
	g := NewGit("git@example.com:bundles/tk-maya.git", "v1.2.3", "")
	roots := bundlecache.Roots{Primary: filepath.FromSlash("/P")}

	assert.Equal(t, []string{
		filepath.FromSlash("/P/git/tk-maya/v1.2.3"),
	}, g.CacheCandidates(roots))
}

func TestParseLsRemoteTags(t *testing.T) {
	out := "" +
		"91ca23fd6d5e859c16cf63f4a2ea2f2a4365f854\tHEAD\n" +
		"a94a8fe5ccb19ba61c4c0873d391e987982fbbd3\trefs/heads/main\n" +
		"b2c3d4e5f60718293a4b5c6d7e8f9012a3b4c5d6\trefs/tags/v1.0.0\n" +
		"c3d4e5f60718293a4b5c6d7e8f9012a3b4c5d6e7\trefs/tags/v1.0.0^{}\n" +
		"d4e5f60718293a4b5c6d7e8f9012a3b4c5d6e7f8\trefs/tags/v1.2.3\n" +
		"e5f60718293a4b5c6d7e8f9012a3b4c5d6e7f8a9\trefs/tags/nightly\n"

	got := parseLsRemoteTags(out)
	assert.Equal(t, []string{"v1.0.0", "v1.2.3", "nightly"}, got)
}

func TestParseLsRemoteTags_Empty(t *testing.T) {
	assert.Empty(t, parseLsRemoteTags(""))
}

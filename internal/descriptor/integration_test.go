package descriptor

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frederic-klein/descry/internal/bundlecache"
)

// End-to-end coverage of the built-in provider variants through the
// descriptor surface.

func storeServer(t *testing.T) *httptest.Server {
	t.Helper()

	var buf bytes.Buffer
	gzw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gzw)
	content := "display_name: Publish App\n"
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name: bundlecache.MetadataFile,
		Mode: 0644,
		Size: int64(len(content)),
	}))
	_, err := tw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gzw.Close())
	tarball := buf.Bytes()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/bundles/tk-publish/versions", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"versions": ["v1.2.1", "v1.2.3", "v1.2.3.2", "v1.4.1", "v1.4.2.1", "v1.4.2.2"]}`))
	})
	mux.HandleFunc("/api/v1/bundles/tk-publish/latest", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"version": "v1.4.2.2"}`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		// every /download endpoint serves the same payload
		if filepath.Base(r.URL.Path) == "download" {
			w.Write(tarball)
			return
		}
		http.NotFound(w, r)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestStoreDescriptor_EndToEnd(t *testing.T) {
	server := storeServer(t)
	opts := Options{
		Roots:       bundlecache.Roots{Primary: t.TempDir()},
		StoreMirror: server.URL,
	}

	d, err := FromURIString("descry:descriptor:store?name=tk-publish&version=v1.0.0", opts)
	require.NoError(t, err)

	// Resolve latest within the v1.2 line and pin a new descriptor.
	pinned, err := d.Latest(context.Background(), "v1.2.x")
	require.NoError(t, err)
	assert.Equal(t, "v1.2.3.2", pinned.Version())
	assert.Equal(t, "descry:descriptor:store?name=tk-publish&version=v1.2.3.2", pinned.URI())

	// The original descriptor is untouched.
	assert.Equal(t, "v1.0.0", d.Version())

	// Materialize and read the manifest.
	m, err := pinned.Manifest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Publish App", m.DisplayName)

	wantPath := opts.Roots.PrimaryPath("store", "tk-publish", "v1.2.3.2")
	assert.Equal(t, wantPath, pinned.Path())
}

func TestStoreDescriptor_ProviderLatest(t *testing.T) {
	server := storeServer(t)
	opts := Options{
		Roots:       bundlecache.Roots{Primary: t.TempDir()},
		StoreMirror: server.URL,
	}

	d, err := New(Identity{"type": "store", "name": "tk-publish", "version": "v1.0.0"}, opts)
	require.NoError(t, err)

	// No pattern: the store's own release order decides.
	latest, err := d.LatestVersion(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "v1.4.2.2", latest)
}

func TestPathDescriptor_EndToEnd(t *testing.T) {
	bundleDir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(bundleDir, bundlecache.MetadataFile),
		[]byte("display_name: Local App\n"), 0644))

	opts := Options{Roots: bundlecache.Roots{Primary: t.TempDir()}}
	d, err := New(Identity{"type": "path", "path": bundleDir}, opts)
	require.NoError(t, err)

	assert.True(t, d.ExistsLocal())
	assert.Equal(t, bundleDir, d.Path())
	assert.False(t, d.IsImmutable())
	assert.False(t, d.IsDev())

	m, err := d.Manifest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Local App", m.DisplayName)
}

func TestDevDescriptor_Markers(t *testing.T) {
	opts := Options{Roots: bundlecache.Roots{Primary: t.TempDir()}}
	d, err := New(Identity{"type": "dev", "path": t.TempDir(), "name": "tk-wip"}, opts)
	require.NoError(t, err)

	assert.True(t, d.IsDev())
	assert.False(t, d.IsImmutable())
	assert.Equal(t, "tk-wip", d.SystemName())
}

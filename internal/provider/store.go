package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/frederic-klein/descry/internal/archive"
	"github.com/frederic-klein/descry/internal/bundlecache"
	"github.com/frederic-klein/descry/internal/fetch"
)

// DefaultStoreMirror is the bundle store used when no mirror is
// configured.
const DefaultStoreMirror = "https://store.descry.dev"

// Store resolves bundles published through the central bundle store.
// Released versions are immutable, so cached copies never go stale.
type Store struct {
	mirror  string
	name    string
	version string
	client  *http.Client
	fetcher *fetch.Fetcher
}

// NewStore creates a store provider for one (name, version) pair.
func NewStore(mirror, name, version string) *Store {
	if mirror == "" {
		mirror = DefaultStoreMirror
	}
	return &Store{
		mirror:  strings.TrimSuffix(mirror, "/"),
		name:    name,
		version: version,
		client:  &http.Client{},
		fetcher: fetch.New(1),
	}
}

// SystemName returns the bundle name.
func (s *Store) SystemName() string {
	return s.name
}

// Version returns the pinned version tag.
func (s *Store) Version() string {
	return s.version
}

// CacheCandidates returns the cache locations for this bundle.
func (s *Store) CacheCandidates(roots bundlecache.Roots) []string {
	return roots.CachePaths(TypeStore, s.name, s.version)
}

// Materialize downloads the release tarball and unpacks it into
// target. The payload is staged in a sibling directory and renamed
// into place so the bundle only ever appears fully populated.
func (s *Store) Materialize(ctx context.Context, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	downloadURL := fmt.Sprintf("%s/api/v1/bundles/%s/%s/download",
		s.mirror, url.PathEscape(s.name), url.PathEscape(s.version))

	tarball := target + ".download"
	if err := s.fetcher.Fetch(ctx, downloadURL, tarball); err != nil {
		return err
	}
	defer os.Remove(tarball)

	staging, err := os.MkdirTemp(filepath.Dir(target), "."+filepath.Base(target)+"-")
	if err != nil {
		return fmt.Errorf("creating staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := archive.ExtractTarGz(tarball, staging); err != nil {
		return err
	}

	if err := os.Rename(staging, target); err != nil {
		return fmt.Errorf("moving bundle into place: %w", err)
	}
	return nil
}

// Versions enumerates all version tags the store knows for this
// bundle.
func (s *Store) Versions(ctx context.Context) ([]string, error) {
	var payload struct {
		Versions []string `json:"versions"`
	}
	path := fmt.Sprintf("/api/v1/bundles/%s/versions", url.PathEscape(s.name))
	if err := s.getJSON(ctx, path, &payload); err != nil {
		return nil, err
	}
	return payload.Versions, nil
}

// LatestVersion returns the store's most recent release for this
// bundle.
func (s *Store) LatestVersion(ctx context.Context) (string, error) {
	var payload struct {
		Version string `json:"version"`
	}
	path := fmt.Sprintf("/api/v1/bundles/%s/latest", url.PathEscape(s.name))
	if err := s.getJSON(ctx, path, &payload); err != nil {
		return "", err
	}
	return payload.Version, nil
}

// releaseInfo is the store's per-release metadata record.
type releaseInfo struct {
	Deprecated         bool   `json:"deprecated"`
	DeprecationMessage string `json:"deprecation_message"`
	Changelog          string `json:"changelog"`
	ChangelogURL       string `json:"changelog_url"`
}

func (s *Store) release(ctx context.Context) (*releaseInfo, error) {
	var payload releaseInfo
	path := fmt.Sprintf("/api/v1/bundles/%s/%s",
		url.PathEscape(s.name), url.PathEscape(s.version))
	if err := s.getJSON(ctx, path, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Deprecation reports whether the pinned release has been retired.
func (s *Store) Deprecation(ctx context.Context) (bool, string, error) {
	rel, err := s.release(ctx)
	if err != nil {
		return false, "", err
	}
	return rel.Deprecated, rel.DeprecationMessage, nil
}

// Changelog returns the release notes for the pinned version.
func (s *Store) Changelog(ctx context.Context) (string, string, error) {
	rel, err := s.release(ctx)
	if err != nil {
		return "", "", err
	}
	return rel.Changelog, rel.ChangelogURL, nil
}

func (s *Store) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.mirror+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("querying bundle store: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("bundle %s not found in store", s.name)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bundle store error: HTTP %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing store response: %w", err)
	}
	return nil
}

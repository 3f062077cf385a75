package provider

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/frederic-klein/descry/internal/bundlecache"
)

// Git resolves bundles published as tags in a git repository. Tags are
// expected on the form vX.Y.Z; anything else is ignored during version
// enumeration.
type Git struct {
	repo    string
	version string
	binary  string
}

// NewGit creates a git provider for one (repository, tag) pair. The
// repository can be any URL the configured git binary understands.
func NewGit(repo, version, binary string) *Git {
	if binary == "" {
		binary = "git"
	}
	return &Git{
		repo:    strings.TrimSuffix(repo, "/"),
		version: version,
		binary:  binary,
	}
}

// SystemName derives the bundle name from the repository basename,
// e.g. "git@example.com:bundles/tk-maya.git" -> "tk-maya".
func (g *Git) SystemName() string {
	base := g.repo
	if idx := strings.LastIndexAny(base, "/:"); idx != -1 {
		base = base[idx+1:]
	}
	return strings.TrimSuffix(base, ".git")
}

// Version returns the pinned tag.
func (g *Git) Version() string {
	return g.version
}

// CacheCandidates returns the cache locations for this bundle.
func (g *Git) CacheCandidates(roots bundlecache.Roots) []string {
	return roots.CachePaths(TypeGit, g.SystemName(), g.version)
}

// Materialize makes a shallow clone of the pinned tag, strips the git
// bookkeeping, and renames the result into target in one step.
func (g *Git) Materialize(ctx context.Context, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	staging, err := os.MkdirTemp(filepath.Dir(target), "."+filepath.Base(target)+"-")
	if err != nil {
		return fmt.Errorf("creating staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	checkout := filepath.Join(staging, "checkout")
	cmd := exec.CommandContext(ctx, g.binary,
		"clone", "--depth", "1", "--branch", g.version, g.repo, checkout)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("cloning %s at %s: %w: %s",
			g.repo, g.version, err, strings.TrimSpace(stderr.String()))
	}

	if err := os.RemoveAll(filepath.Join(checkout, ".git")); err != nil {
		return fmt.Errorf("removing git metadata: %w", err)
	}

	if err := os.Rename(checkout, target); err != nil {
		return fmt.Errorf("moving bundle into place: %w", err)
	}
	return nil
}

// Versions lists the repository's version tags via ls-remote, without
// requiring a local clone.
func (g *Git) Versions(ctx context.Context) ([]string, error) {
	cmd := exec.CommandContext(ctx, g.binary, "ls-remote", "--tags", g.repo)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("listing tags for %s: %w: %s",
			g.repo, err, strings.TrimSpace(stderr.String()))
	}

	return parseLsRemoteTags(stdout.String()), nil
}

// parseLsRemoteTags extracts tag names from git ls-remote output.
// Peeled entries (refs/tags/v1.2.3^{}) are collapsed into their tag.
func parseLsRemoteTags(out string) []string {
	seen := make(map[string]bool)
	var tags []string

	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		ref := fields[1]
		if !strings.HasPrefix(ref, "refs/tags/") {
			continue
		}
		tag := strings.TrimSuffix(strings.TrimPrefix(ref, "refs/tags/"), "^{}")
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	return tags
}

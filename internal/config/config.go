// Package config loads the descry configuration: where the bundle
// cache roots live and how the providers reach their sources. Values
// come from defaults, an optional YAML config file, and DESCRY_*
// environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/frederic-klein/descry/internal/bundlecache"
	"github.com/frederic-klein/descry/internal/provider"
)

// AppName is the application name, used for config and cache
// directories.
const AppName = "descry"

// Config carries the resolved settings.
type Config struct {
	CacheRoot     string
	FallbackRoots []string
	StoreMirror   string
	GitBinary     string
	FetchWorkers  int
}

// Roots returns the bundle cache roots described by the config.
func (c *Config) Roots() bundlecache.Roots {
	return bundlecache.Roots{
		Primary:   c.CacheRoot,
		Fallbacks: c.FallbackRoots,
	}
}

// Dir returns the descry configuration directory,
// $XDG_CONFIG_HOME/descry (or the platform equivalent).
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config directory: %w", err)
	}
	return filepath.Join(base, AppName), nil
}

// DefaultCacheRoot returns the default primary bundle cache root,
// ~/.descry/bundle_cache.
func DefaultCacheRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, "."+AppName, "bundle_cache"), nil
}

// Load reads the configuration. When path is non-empty that file is
// used exclusively and must exist; otherwise config.yaml under Dir()
// is read when present.
func Load(path string) (*Config, error) {
	cacheRoot, err := DefaultCacheRoot()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetDefault("cache_root", cacheRoot)
	v.SetDefault("fallback_roots", []string{})
	v.SetDefault("store.mirror", provider.DefaultStoreMirror)
	v.SetDefault("git.binary", "git")
	v.SetDefault("fetch.workers", 4)

	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
			// no config file is fine, defaults apply
		}
	}

	return &Config{
		CacheRoot:     v.GetString("cache_root"),
		FallbackRoots: v.GetStringSlice("fallback_roots"),
		StoreMirror:   v.GetString("store.mirror"),
		GitBinary:     v.GetString("git.binary"),
		FetchWorkers:  v.GetInt("fetch.workers"),
	}, nil
}

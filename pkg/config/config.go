package config

import (
	"strings"
	"time"

	"github.com/arthur-debert/silkmod/pkg/errors"
)

// Config is the root configuration object
type Config struct {
	Game      Game      `koanf:"game"`
	Loader    Loader    `koanf:"loader"`
	Cache     Cache     `koanf:"cache"`
	Remote    Remote    `koanf:"remote"`
	Conflicts Conflicts `koanf:"conflicts"`
	Output    Output    `koanf:"output"`
}

// Game locates the game installation
type Game struct {
	Dir string `koanf:"dir"`
}

// Loader describes the installed plugin loader
type Loader struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	GitHubOwner string `koanf:"github_owner"`
	GitHubRepo  string `koanf:"github_repo"`
}

// Cache sizes the compatibility cache and the batch checker
type Cache struct {
	Size        int           `koanf:"size"`
	TTL         time.Duration `koanf:"ttl"`
	Concurrency int           `koanf:"concurrency"`
}

// Remote configures the package index and release lookups
type Remote struct {
	ThunderstoreURL string        `koanf:"thunderstore_url"`
	Community       string        `koanf:"community"`
	GitHubAPI       string        `koanf:"github_api"`
	Timeout         time.Duration `koanf:"timeout"`
	UserAgent       string        `koanf:"user_agent"`
}

// Conflicts tunes the config-overlap scan
type Conflicts struct {
	ConfigExtensions []string `koanf:"config_extensions"`
	AttributionKeys  []string `koanf:"attribution_keys"`
	Ignore           []string `koanf:"ignore"`
}

// Output selects how commands render results
type Output struct {
	Format string `koanf:"format"`
}

var validFormats = map[string]bool{
	"auto": true,
	"term": true,
	"text": true,
	"json": true,
}

// Validate checks the decoded configuration for values silkmod cannot run with
func (c *Config) Validate() error {
	if c.Cache.Size <= 0 {
		return errors.Newf(errors.ErrConfigValid, "cache.size must be positive, got %d", c.Cache.Size).
			WithDetail("key", "cache.size")
	}
	if c.Cache.TTL <= 0 {
		return errors.Newf(errors.ErrConfigValid, "cache.ttl must be positive, got %s", c.Cache.TTL).
			WithDetail("key", "cache.ttl")
	}
	if c.Cache.Concurrency <= 0 {
		return errors.Newf(errors.ErrConfigValid, "cache.concurrency must be positive, got %d", c.Cache.Concurrency).
			WithDetail("key", "cache.concurrency")
	}
	if c.Remote.Timeout < 0 {
		return errors.Newf(errors.ErrConfigValid, "remote.timeout must not be negative, got %s", c.Remote.Timeout).
			WithDetail("key", "remote.timeout")
	}
	if !validFormats[strings.ToLower(c.Output.Format)] {
		return errors.Newf(errors.ErrConfigValid, "output.format must be one of auto, term, text, json; got %q", c.Output.Format).
			WithDetail("key", "output.format")
	}
	return nil
}

// HasConfigExtension reports whether files with ext take part in the config scan
func (c Conflicts) HasConfigExtension(ext string) bool {
	for _, e := range c.ConfigExtensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

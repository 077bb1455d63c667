package config

import (
	"sync"
)

var (
	globalMu     sync.RWMutex
	globalConfig *Config
)

// Initialize sets up the global configuration. A nil cfg installs the
// embedded defaults.
func Initialize(cfg *Config) {
	if cfg == nil {
		cfg = Default()
	}
	globalMu.Lock()
	globalConfig = cfg
	globalMu.Unlock()
}

// Get returns the current configuration
func Get() *Config {
	globalMu.RLock()
	cfg := globalConfig
	globalMu.RUnlock()
	if cfg == nil {
		Initialize(nil)
		return Get()
	}
	return cfg
}

// Default returns the configuration built from embedded defaults only
func Default() *Config {
	cfg, err := load("", nil, false)
	if err != nil {
		// Broken embedded defaults are a build problem, not a runtime one
		panic("silkmod: invalid embedded defaults: " + err.Error())
	}
	return cfg
}

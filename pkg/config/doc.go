// Package config loads silkmod's configuration.
//
// Values are layered with koanf: the embedded defaults.toml first, then the
// user's config.toml, then SILKMOD_<SECTION>_<KEY> environment variables.
// The merged tree is decoded into Config with mapstructure hooks so
// durations and comma separated lists can be written as plain strings.
package config

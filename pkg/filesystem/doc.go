// Package filesystem provides the types.FS implementations silkmod runs on:
// the real OS filesystem for the game directory and an afero-backed one,
// used with an in-memory afero.Fs in tests.
package filesystem

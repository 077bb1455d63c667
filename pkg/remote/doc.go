// Package remote talks to the places mods and the loader are published:
// the Thunderstore package index for the game's community and GitHub
// releases for BepInEx itself.
//
// Every call takes a context and makes a single attempt. Failures are
// returned as errors.ErrRemote.
package remote

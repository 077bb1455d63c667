// Package paths provides centralized path handling for silkmod.
//
// Two families of paths live here: silkmod's own XDG directories (data,
// config, cache, state) and the game-relative layout the BepInEx loader
// expects (plugins, config, core). Nothing outside this package should
// join path fragments for either.
package paths

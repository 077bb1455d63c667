// Package conflicts finds incompatibilities among installed mods and an
// optional candidate.
//
// Detection runs five passes over installed ∪ {candidate}:
//
//   - file: two mods shipping the same relative path
//   - dependency: a pair whose mutual resolution reports a conflict
//   - version: one id present with more than one version
//   - load order: reads the loader config, reports nothing
//   - config: loader config files attributed to more than one mod
//
// Each conflict carries a proposed Resolution. ResolveConflict runs it
// through an ActionExecutor, asking for confirmation unless the
// resolution is marked auto-resolvable.
package conflicts

// Package resolver checks a mod's declared dependencies against the set of
// installed mods.
//
// Each dependency string is parsed into a types.DependencyConstraint and
// lands in exactly one place of the outcome: Resolved, Missing, or a
// version_mismatch conflict. Optional dependencies whose target is absent
// are dropped. Two-party circular references and an unmet loader
// requirement are reported as extra conflicts.
//
// Resolve never returns an error and never panics; anything unexpected is
// turned into a resolution_error conflict on an invalid outcome.
package resolver

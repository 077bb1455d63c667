// Package compat answers "will this mod load?" for installed mods.
//
// A Checker resolves a mod against the other enabled mods in the ledger and
// turns the outcome into a types.CompatibilityResult. Results are kept in a
// bounded, expiring Cache owned by the caller; nothing is stored globally.
package compat

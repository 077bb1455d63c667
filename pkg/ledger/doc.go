// Package ledger persists the list of installed mods.
//
// The ledger is a JSON array of types.ModDescriptor stored at
// <data dir>/installed.json. It is always read and written wholesale; a
// save writes a temporary file next to the ledger and renames it over the
// old one.
package ledger

// Package manifest reads mod packages.
//
// A mod ships as a zip holding a manifest.json (Thunderstore layout) either
// at the root or one directory deep. The manifest is decoded into an
// explicit schema and mapped onto types.ModDescriptor. When no manifest is
// present the descriptor is derived from the archive's file name.
package manifest

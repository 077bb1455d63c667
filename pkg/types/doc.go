// Package types defines the core data model shared across silkmod.
// This includes mod descriptors, dependency constraints, resolution outcomes,
// conflicts and their proposed resolutions, as well as the filesystem
// interface every component reads and writes through.
package types

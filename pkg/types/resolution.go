package types

import (
	"strings"
	"time"
)

// ResolutionOutcome is the result of resolving one mod's dependencies.
// Every input constraint lands in exactly one of Resolved, Missing or a
// per-constraint conflict; optional constraints whose target is absent are
// dropped. Circular-dependency and loader conflicts are appended on top.
type ResolutionOutcome struct {
	ModID     string                 `json:"mod_id"`
	Resolved  []DependencyConstraint `json:"resolved"`
	Missing   []DependencyConstraint `json:"missing"`
	Conflicts []Conflict             `json:"conflicts"`

	// LoaderRequirement is the loader constraint found in the mod metadata, if any
	LoaderRequirement string `json:"loader_requirement,omitempty"`

	IsValid bool `json:"is_valid"`
}

// HasConflictWith reports whether any conflict names the given mod id
func (o ResolutionOutcome) HasConflictWith(modID string) bool {
	for _, c := range o.Conflicts {
		if c.Involves(modID) {
			return true
		}
	}
	return false
}

// CompatibilityStatus is the verdict of a compatibility check
type CompatibilityStatus string

const (
	CompatibilityCompatible   CompatibilityStatus = "compatible"
	CompatibilityIncompatible CompatibilityStatus = "incompatible"
	CompatibilityUnknown      CompatibilityStatus = "unknown"
)

// CompatibilityResult is the outcome of checking one mod against the install
type CompatibilityResult struct {
	ModID   string              `json:"mod_id"`
	Status  CompatibilityStatus `json:"status"`
	Reasons []string            `json:"reasons,omitempty"`

	CheckedAt time.Time `json:"checked_at"`
}

func equalFold(a, b string) bool {
	return strings.EqualFold(a, b)
}

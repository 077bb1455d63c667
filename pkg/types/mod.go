package types

import (
	"strings"
	"time"
)

// ModDescriptor is the parsed metadata identifying one mod package.
// It is immutable for the duration of a resolution pass; reinstalling a mod
// supersedes its descriptor instead of mutating it.
type ModDescriptor struct {
	// ID is the mod identifier used in dependency strings
	ID string `json:"id"`

	// Name is the display name
	Name string `json:"name"`

	// Version is the free-text version as declared by the author
	Version string `json:"version"`

	Description string `json:"description,omitempty"`
	Author      string `json:"author,omitempty"`
	WebsiteURL  string `json:"website_url,omitempty"`

	// Dependencies are raw dependency strings, in declaration order
	Dependencies []string `json:"dependencies,omitempty"`

	Tags []string `json:"tags,omitempty"`
	Icon string   `json:"icon,omitempty"`

	// InstallPath is the mod's folder inside the plugins directory (installed mods only)
	InstallPath string `json:"install_path,omitempty"`

	// InstalledAt is when the mod was recorded in the ledger
	InstalledAt *time.Time `json:"installed_at,omitempty"`

	// Enabled is false when the mod folder has been disabled
	Enabled bool `json:"enabled"`
}

// DisplayName returns the name if set, falling back to the id
func (m ModDescriptor) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	return m.ID
}

// MatchesID reports whether id names this mod, ignoring case
func (m ModDescriptor) MatchesID(id string) bool {
	return strings.EqualFold(m.ID, id)
}

// FindMod looks up a mod by id, case-insensitively
func FindMod(mods []ModDescriptor, id string) (ModDescriptor, bool) {
	for _, m := range mods {
		if m.MatchesID(id) {
			return m, true
		}
	}
	return ModDescriptor{}, false
}

// ConstraintOperator is the comparison attached to a dependency reference
type ConstraintOperator string

const (
	// OperatorAny places no requirement on the version
	OperatorAny ConstraintOperator = ""
	// OperatorExact requires the exact version
	OperatorExact ConstraintOperator = "="
	// OperatorGreaterEqual requires the version or newer
	OperatorGreaterEqual ConstraintOperator = ">="
	// OperatorLessEqual requires the version or older
	OperatorLessEqual ConstraintOperator = "<="
	// OperatorTilde requires the same major.minor at or above the patch level
	OperatorTilde ConstraintOperator = "~"
)

// DependencyConstraint is the parsed form of one dependency string
type DependencyConstraint struct {
	// Raw is the dependency string as declared
	Raw string `json:"raw"`

	// ModID is the target mod id
	ModID string `json:"mod_id"`

	Operator ConstraintOperator `json:"operator,omitempty"`
	Version  string             `json:"version,omitempty"`

	// Optional constraints that are not installed are dropped from resolution
	Optional bool `json:"optional,omitempty"`
}

// ConstraintString renders the operator and version, e.g. ">=1.2.0"
func (c DependencyConstraint) ConstraintString() string {
	if c.Version == "" {
		return ""
	}
	if c.Operator == OperatorExact {
		return c.Version
	}
	return string(c.Operator) + c.Version
}

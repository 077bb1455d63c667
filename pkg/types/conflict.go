package types

// ConflictKind categorizes an incompatibility among mods
type ConflictKind string

const (
	ConflictFileOverlap        ConflictKind = "file_overlap"
	ConflictDependency         ConflictKind = "dependency"
	ConflictVersionDuplicate   ConflictKind = "version_duplicate"
	ConflictLoadOrder          ConflictKind = "load_order"
	ConflictConfigOverlap      ConflictKind = "config_overlap"
	ConflictMissingDependency  ConflictKind = "missing_dependency"
	ConflictVersionMismatch    ConflictKind = "version_mismatch"
	ConflictCircularDependency ConflictKind = "circular_dependency"
	ConflictResolutionError    ConflictKind = "resolution_error"
)

// Severity ranks how harmful a conflict is
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Rank orders severities from least to most severe
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 2
	case SeverityWarning:
		return 1
	default:
		return 0
	}
}

// ActionType is the vocabulary of resolution actions understood by the installer
type ActionType string

const (
	ActionRename  ActionType = "rename"
	ActionDisable ActionType = "disable"
	ActionDelete  ActionType = "delete"
	ActionReorder ActionType = "reorder"
	ActionMerge   ActionType = "merge"
)

// ResolutionAction is one step of a proposed resolution
type ResolutionAction struct {
	Type  ActionType `json:"type"`
	ModID string     `json:"mod_id"`

	// Path is the file or folder the action applies to, relative to the mod
	// folder. Disable actions carry the mod's install folder instead.
	Path string `json:"path,omitempty"`

	// Target is the destination for rename actions
	Target string `json:"target,omitempty"`

	Description string `json:"description,omitempty"`
}

// Resolution is an ordered list of actions that would clear a conflict
type Resolution struct {
	Strategy string `json:"strategy"`

	// CanAutoResolve allows the actions to run without user confirmation
	CanAutoResolve bool `json:"can_auto_resolve"`

	Actions []ResolutionAction `json:"actions"`
}

// Conflict is a detected incompatibility among a set of mods.
// Conflicts are never mutated after creation.
type Conflict struct {
	ID       string       `json:"id"`
	Kind     ConflictKind `json:"kind"`
	Severity Severity     `json:"severity"`

	// Mods are the ids involved, in registration order
	Mods []string `json:"mods"`

	// Paths are the files involved, when the conflict is file based
	Paths []string `json:"paths,omitempty"`

	Message    string      `json:"message"`
	Resolution *Resolution `json:"resolution,omitempty"`
}

// Involves reports whether the conflict names the mod id
func (c Conflict) Involves(modID string) bool {
	for _, m := range c.Mods {
		if equalFold(m, modID) {
			return true
		}
	}
	return false
}

package resolver

import (
	"fmt"

	"github.com/arthur-debert/silkmod/pkg/logging"
	"github.com/arthur-debert/silkmod/pkg/types"
	"github.com/arthur-debert/silkmod/pkg/version"
)

// Resolver resolves dependencies. The zero value is not usable; use New.
type Resolver struct {
	extractor       LoaderRequirementExtractor
	loaderVersion   string
	loaderInstalled bool
}

// Option configures a Resolver
type Option func(*Resolver)

// WithLoaderVersion sets the installed loader version. Without it loader
// requirements are recorded but not enforced.
func WithLoaderVersion(v string) Option {
	return func(r *Resolver) { r.loaderVersion = v }
}

// WithLoaderInstalled marks the loader as present. With no loader version
// set, dependencies on the loader pack then resolve instead of being missing.
// A known version implies the loader is installed.
func WithLoaderInstalled(installed bool) Option {
	return func(r *Resolver) { r.loaderInstalled = installed }
}

// WithExtractor replaces the loader requirement heuristic
func WithExtractor(e LoaderRequirementExtractor) Option {
	return func(r *Resolver) {
		if e != nil {
			r.extractor = e
		}
	}
}

// New creates a Resolver
func New(opts ...Option) *Resolver {
	r := &Resolver{extractor: RegexExtractor{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve resolves mod against installed with the default Resolver
func Resolve(mod types.ModDescriptor, installed []types.ModDescriptor) types.ResolutionOutcome {
	return New().Resolve(mod, installed)
}

// Resolve classifies every dependency of mod against installed
func (r *Resolver) Resolve(mod types.ModDescriptor, installed []types.ModDescriptor) (outcome types.ResolutionOutcome) {
	logger := logging.GetLogger("resolver").With().Str("mod", mod.ID).Logger()

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error().Interface("panic", rec).Msg("Resolution aborted")
			outcome = types.ResolutionOutcome{
				ModID:    mod.ID,
				Resolved: []types.DependencyConstraint{},
				Missing:  []types.DependencyConstraint{},
				Conflicts: []types.Conflict{{
					ID:       conflictID(types.ConflictResolutionError, mod.ID, ""),
					Kind:     types.ConflictResolutionError,
					Severity: types.SeverityCritical,
					Mods:     []string{mod.ID},
					Message:  fmt.Sprintf("resolution of %s failed: %v", mod.ID, rec),
				}},
				IsValid: false,
			}
		}
	}()

	outcome = types.ResolutionOutcome{
		ModID:     mod.ID,
		Resolved:  []types.DependencyConstraint{},
		Missing:   []types.DependencyConstraint{},
		Conflicts: []types.Conflict{},
	}

	for _, raw := range mod.Dependencies {
		dc := ParseConstraint(raw)
		if dc.ModID == "" {
			logger.Debug().Str("dependency", raw).Msg("Skipping empty dependency")
			continue
		}
		r.classify(mod, dc, installed, &outcome)
	}

	outcome.Conflicts = append(outcome.Conflicts, circularConflicts(mod, installed)...)

	loaderOK := true
	if req, ok := r.extractor.Extract(mod); ok {
		outcome.LoaderRequirement = req
		loaderOK = r.checkLoader(mod, req, &outcome)
	}

	outcome.IsValid = len(outcome.Missing) == 0 && len(outcome.Conflicts) == 0 && loaderOK

	logger.Debug().
		Int("resolved", len(outcome.Resolved)).
		Int("missing", len(outcome.Missing)).
		Int("conflicts", len(outcome.Conflicts)).
		Bool("valid", outcome.IsValid).
		Msg("Resolved dependencies")
	return outcome
}

// ResolveAll resolves every installed mod against the others
func (r *Resolver) ResolveAll(installed []types.ModDescriptor) []types.ResolutionOutcome {
	outcomes := make([]types.ResolutionOutcome, 0, len(installed))
	for i, mod := range installed {
		others := make([]types.ModDescriptor, 0, len(installed)-1)
		others = append(others, installed[:i]...)
		others = append(others, installed[i+1:]...)
		outcomes = append(outcomes, r.Resolve(mod, others))
	}
	return outcomes
}

func (r *Resolver) classify(mod types.ModDescriptor, dc types.DependencyConstraint, installed []types.ModDescriptor, outcome *types.ResolutionOutcome) {
	target, found := types.FindMod(installed, dc.ModID)

	if !found && IsLoaderID(dc.ModID) {
		switch {
		case r.loaderVersion != "":
			if loaderSatisfies(r.loaderVersion, constraintOf(dc)) {
				outcome.Resolved = append(outcome.Resolved, dc)
			} else {
				outcome.Conflicts = append(outcome.Conflicts,
					mismatchConflict(mod.ID, dc, LoaderName, r.loaderVersion))
			}
			return
		case r.loaderInstalled:
			// present at an unknown version, the constraint cannot be checked
			outcome.Resolved = append(outcome.Resolved, dc)
			return
		}
	}

	if !found {
		if !dc.Optional {
			outcome.Missing = append(outcome.Missing, dc)
		}
		return
	}

	if version.Satisfies(version.Parse(target.Version), constraintOf(dc)) {
		outcome.Resolved = append(outcome.Resolved, dc)
		return
	}
	outcome.Conflicts = append(outcome.Conflicts, mismatchConflict(mod.ID, dc, target.ID, target.Version))
}

// checkLoader enforces the extracted requirement when the loader version is known
func (r *Resolver) checkLoader(mod types.ModDescriptor, req string, outcome *types.ResolutionOutcome) bool {
	if r.loaderVersion == "" {
		return true
	}
	if loaderSatisfies(r.loaderVersion, version.ParseConstraint(req)) {
		return true
	}
	if !outcome.HasConflictWith(LoaderName) {
		dc := types.DependencyConstraint{Raw: LoaderName + req, ModID: LoaderName}
		c := version.ParseConstraint(req)
		dc.Operator, dc.Version = c.Operator, c.Target.String()
		outcome.Conflicts = append(outcome.Conflicts, mismatchConflict(mod.ID, dc, LoaderName, r.loaderVersion))
	}
	return false
}

func mismatchConflict(modID string, dc types.DependencyConstraint, targetID, installedVersion string) types.Conflict {
	return types.Conflict{
		ID:       conflictID(types.ConflictVersionMismatch, modID, targetID),
		Kind:     types.ConflictVersionMismatch,
		Severity: types.SeverityCritical,
		Mods:     []string{modID, targetID},
		Message: fmt.Sprintf("%s requires %s %s, installed version is %s",
			modID, dc.ModID, dc.ConstraintString(), installedVersion),
	}
}

// circularConflicts reports installed dependencies that name mod back.
// Only direct two-party cycles are detected.
func circularConflicts(mod types.ModDescriptor, installed []types.ModDescriptor) []types.Conflict {
	var conflicts []types.Conflict
	seen := map[string]bool{}

	for _, raw := range mod.Dependencies {
		dc := ParseConstraint(raw)
		target, found := types.FindMod(installed, dc.ModID)
		if !found || target.MatchesID(mod.ID) || seen[target.ID] {
			continue
		}
		for _, back := range target.Dependencies {
			if ParseConstraint(back).ModID != "" && mod.MatchesID(ParseConstraint(back).ModID) {
				seen[target.ID] = true
				conflicts = append(conflicts, types.Conflict{
					ID:       conflictID(types.ConflictCircularDependency, mod.ID, target.ID),
					Kind:     types.ConflictCircularDependency,
					Severity: types.SeverityWarning,
					Mods:     []string{mod.ID, target.ID},
					Message:  fmt.Sprintf("%s and %s depend on each other", mod.ID, target.ID),
				})
				break
			}
		}
	}
	return conflicts
}

func conflictID(kind types.ConflictKind, a, b string) string {
	if b == "" {
		return fmt.Sprintf("%s:%s", kind, a)
	}
	return fmt.Sprintf("%s:%s:%s", kind, a, b)
}

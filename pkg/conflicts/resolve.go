package conflicts

import (
	"context"

	"github.com/arthur-debert/silkmod/pkg/errors"
	"github.com/arthur-debert/silkmod/pkg/logging"
	"github.com/arthur-debert/silkmod/pkg/types"
)

// ActionExecutor carries out one resolution action
type ActionExecutor interface {
	Execute(ctx context.Context, action types.ResolutionAction) error
}

// ErrResolutionRequiresConfirmation is returned when a resolution that is
// not auto-resolvable is run without confirmation. Match it with errors.Is.
var ErrResolutionRequiresConfirmation = errors.New(errors.ErrNeedsConfirmation, "conflict resolution requires confirmation")

// ResolveConflict runs the conflict's actions in order, stopping at the
// first failure
func ResolveConflict(ctx context.Context, conflict types.Conflict, executor ActionExecutor, confirmed bool) error {
	logger := logging.GetLogger("conflicts.resolve").With().Str("conflict", conflict.ID).Logger()

	if conflict.Resolution == nil || len(conflict.Resolution.Actions) == 0 {
		return errors.Newf(errors.ErrActionInvalid, "conflict %s has no resolution", conflict.ID).
			WithDetail("conflict", conflict.ID)
	}
	if !conflict.Resolution.CanAutoResolve && !confirmed {
		return errors.Wrapf(ErrResolutionRequiresConfirmation, errors.ErrNeedsConfirmation,
			"conflict %s (%s) must be confirmed before resolving", conflict.ID, conflict.Severity).
			WithDetail("conflict", conflict.ID)
	}

	for i, action := range conflict.Resolution.Actions {
		if err := ctx.Err(); err != nil {
			return err
		}
		logger.Info().
			Int("step", i+1).
			Str("action", string(action.Type)).
			Str("mod", action.ModID).
			Str("path", action.Path).
			Msg("Running resolution action")
		if err := executor.Execute(ctx, action); err != nil {
			return errors.Wrapf(err, errors.ErrActionExecute, "action %d (%s) of conflict %s failed", i+1, action.Type, conflict.ID).
				WithDetail("conflict", conflict.ID).
				WithDetail("action", string(action.Type))
		}
	}
	return nil
}

// AutoResolvable filters conflicts whose resolution may run unattended
func AutoResolvable(conflicts []types.Conflict) []types.Conflict {
	var out []types.Conflict
	for _, c := range conflicts {
		if c.Resolution != nil && c.Resolution.CanAutoResolve && len(c.Resolution.Actions) > 0 {
			out = append(out, c)
		}
	}
	return out
}

package installer

import (
	"context"
	"path/filepath"

	"github.com/arthur-debert/silkmod/pkg/errors"
	"github.com/arthur-debert/silkmod/pkg/types"
)

// Execute carries out one conflict resolution action. Paths in actions are
// relative to the mod's folder and may not leave it.
func (i *Installer) Execute(ctx context.Context, action types.ResolutionAction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger := i.logger.With().
		Str("action", string(action.Type)).
		Str("mod", action.ModID).
		Logger()

	switch action.Type {
	case types.ActionReorder:
		logger.Info().Msg("Load order is decided by the loader, nothing to do")
		return nil
	case types.ActionMerge:
		return errors.Newf(errors.ErrNotImplemented, "merging %s must be done by hand", action.Path).
			WithDetail("mod", action.ModID).
			WithDetail("path", action.Path)
	case types.ActionDisable:
		return i.disableCopy(ctx, action)
	case types.ActionRename, types.ActionDelete:
	default:
		return errors.Newf(errors.ErrActionInvalid, "unknown action type %q", action.Type)
	}

	mod, err := i.ledger.Get(action.ModID)
	if err != nil {
		return err
	}
	dir := i.currentDir(mod)

	if action.Type == types.ActionDelete && action.Path == "" {
		return i.Uninstall(ctx, mod.ID, Options{Force: true})
	}

	source, err := resolveIn(dir, action.Path)
	if err != nil {
		return err
	}

	if action.Type == types.ActionDelete {
		if i.dryRun {
			logger.Info().Str("path", source).Msg("Dry run: would delete")
			return nil
		}
		if err := i.fs.RemoveAll(source); err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to delete %s", source)
		}
		i.invalidate()
		logger.Info().Str("path", source).Msg("Deleted")
		return nil
	}

	if action.Target == "" {
		return errors.New(errors.ErrActionInvalid, "rename action requires a target").
			WithDetail("path", action.Path)
	}
	target, err := resolveIn(dir, action.Target)
	if err != nil {
		return err
	}
	if i.dryRun {
		logger.Info().Str("from", source).Str("to", target).Msg("Dry run: would rename")
		return nil
	}
	if err := i.fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", filepath.Dir(target))
	}
	if err := i.fs.Rename(source, target); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to rename %s", source).
			WithDetail("target", target)
	}
	i.invalidate()
	logger.Info().Str("from", source).Str("to", target).Msg("Renamed")
	return nil
}

func resolveIn(dir, rel string) (string, error) {
	if rel == "" || filepath.IsAbs(rel) {
		return "", errors.Newf(errors.ErrActionInvalid, "invalid action path %q", rel)
	}
	full := filepath.Join(dir, filepath.FromSlash(rel))
	if !within(dir, full) || full == filepath.Clean(dir) {
		return "", errors.Newf(errors.ErrActionInvalid, "action path %q leaves the mod folder", rel).
			WithDetail("path", rel)
	}
	return full, nil
}

// disableCopy disables the installed mod, refusing when the action names
// a folder other than the one the ledger records
func (i *Installer) disableCopy(ctx context.Context, action types.ResolutionAction) error {
	if action.Path != "" {
		mod, err := i.ledger.Get(action.ModID)
		if err != nil {
			return err
		}
		if filepath.Clean(action.Path) != filepath.Clean(i.installDir(mod)) {
			return errors.Newf(errors.ErrActionInvalid, "%s is not the installed copy of %s", action.Path, mod.ID).
				WithDetail("mod", mod.ID).
				WithDetail("path", action.Path)
		}
	}
	return i.Disable(ctx, action.ModID)
}

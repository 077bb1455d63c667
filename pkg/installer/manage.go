package installer

import (
	"context"
	"strings"

	"github.com/arthur-debert/silkmod/pkg/errors"
	"github.com/arthur-debert/silkmod/pkg/filesystem"
	"github.com/arthur-debert/silkmod/pkg/resolver"
	"github.com/arthur-debert/silkmod/pkg/types"
)

// Uninstall removes a mod's folder and its ledger record. Mods that other
// enabled mods require are kept unless opts.Force is set.
func (i *Installer) Uninstall(ctx context.Context, id string, opts Options) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	mod, err := i.ledger.Get(id)
	if err != nil {
		return err
	}
	logger := i.logger.With().Str("mod", mod.ID).Logger()

	installed, err := i.ledger.Load()
	if err != nil {
		return err
	}
	if dependents := Dependents(installed, mod.ID); len(dependents) > 0 && !opts.Force {
		return errors.Newf(errors.ErrMissingDependency, "%s is required by %s", mod.ID, strings.Join(dependents, ", ")).
			WithDetail("id", mod.ID).
			WithDetail("dependents", dependents)
	}

	if i.dryRun || opts.DryRun {
		logger.Info().Str("dir", i.currentDir(mod)).Msg("Dry run: would uninstall")
		return nil
	}

	if err := i.removeFolders(mod); err != nil {
		return err
	}
	if err := i.ledger.Remove(mod.ID); err != nil {
		return err
	}
	i.invalidate()

	logger.Info().Msg("Mod uninstalled")
	return nil
}

// Enable moves a disabled mod back into the plugins folder
func (i *Installer) Enable(ctx context.Context, id string) error {
	return i.setEnabled(ctx, id, true)
}

// Disable moves a mod's folder aside so the loader skips it
func (i *Installer) Disable(ctx context.Context, id string) error {
	return i.setEnabled(ctx, id, false)
}

func (i *Installer) setEnabled(ctx context.Context, id string, enabled bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	mod, err := i.ledger.Get(id)
	if err != nil {
		return err
	}
	logger := i.logger.With().Str("mod", mod.ID).Bool("enabled", enabled).Logger()

	if mod.Enabled == enabled {
		logger.Debug().Msg("Already in requested state")
		return nil
	}

	from := i.currentDir(mod)
	updated := mod
	updated.Enabled = enabled
	to := i.currentDir(updated)

	if i.dryRun {
		logger.Info().Str("from", from).Str("to", to).Msg("Dry run: would move mod folder")
		return nil
	}

	exists, err := filesystem.Exists(i.fs, from)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to check %s", from)
	}
	if exists {
		if err := i.fs.Rename(from, to); err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to move %s to %s", from, to).
				WithDetail("id", mod.ID)
		}
	} else {
		logger.Warn().Str("dir", from).Msg("Mod folder missing, updating ledger only")
	}

	if err := i.ledger.Upsert(updated); err != nil {
		return err
	}
	i.invalidate()

	logger.Info().Msg("Mod state changed")
	return nil
}

// Dependents lists the enabled mods that require id
func Dependents(installed []types.ModDescriptor, id string) []string {
	var out []string
	for _, m := range installed {
		if !m.Enabled || m.MatchesID(id) {
			continue
		}
		for _, raw := range m.Dependencies {
			dc := resolver.ParseConstraint(raw)
			if !dc.Optional && strings.EqualFold(dc.ModID, id) {
				out = append(out, m.ID)
				break
			}
		}
	}
	return out
}

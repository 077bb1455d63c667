package installer

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/arthur-debert/silkmod/pkg/compat"
	"github.com/arthur-debert/silkmod/pkg/conflicts"
	"github.com/arthur-debert/silkmod/pkg/errors"
	"github.com/arthur-debert/silkmod/pkg/filesystem"
	"github.com/arthur-debert/silkmod/pkg/ledger"
	"github.com/arthur-debert/silkmod/pkg/logging"
	"github.com/arthur-debert/silkmod/pkg/manifest"
	"github.com/arthur-debert/silkmod/pkg/paths"
	"github.com/arthur-debert/silkmod/pkg/resolver"
	"github.com/arthur-debert/silkmod/pkg/types"
	"github.com/arthur-debert/silkmod/pkg/version"
	"github.com/rs/zerolog"
)

// Options tune a single install or uninstall
type Options struct {
	// Force installs despite missing dependencies or critical conflicts,
	// reinstalls the same version and uninstalls mods others depend on
	Force bool

	// DryRun runs every check but changes nothing
	DryRun bool
}

// InstallResult describes what Install found and did
type InstallResult struct {
	Mod       types.ModDescriptor     `json:"mod"`
	Outcome   types.ResolutionOutcome `json:"outcome"`
	Conflicts []types.Conflict        `json:"conflicts"`

	// Replaced is the previously installed version, if any
	Replaced *types.ModDescriptor `json:"replaced,omitempty"`

	// Backup is the snapshot taken of the replaced version
	Backup *Snapshot `json:"backup,omitempty"`

	DryRun bool `json:"dry_run"`
}

// Installer applies changes to the plugins folder and the ledger
type Installer struct {
	fs       types.FS
	paths    paths.Paths
	ledger   ledger.Ledger
	resolver *resolver.Resolver
	detector *conflicts.Detector
	cache    *compat.Cache
	writer   snapshotWriter
	dryRun   bool
	now      func() time.Time
	logger   zerolog.Logger
}

// Option configures an Installer
type Option func(*Installer)

// WithResolver sets the dependency resolver
func WithResolver(r *resolver.Resolver) Option {
	return func(i *Installer) { i.resolver = r }
}

// WithDetector sets the conflict detector
func WithDetector(d *conflicts.Detector) Option {
	return func(i *Installer) { i.detector = d }
}

// WithCache attaches a compatibility cache that is purged after changes
func WithCache(c *compat.Cache) Option {
	return func(i *Installer) { i.cache = c }
}

// WithDryRun makes every operation a dry run
func WithDryRun(dryRun bool) Option {
	return func(i *Installer) { i.dryRun = dryRun }
}

// WithClock overrides the clock used to name backups
func WithClock(now func() time.Time) Option {
	return func(i *Installer) { i.now = now }
}

// New creates an Installer. The resolver and detector default to ones
// built from the given paths.
func New(fs types.FS, p paths.Paths, l ledger.Ledger, opts ...Option) *Installer {
	i := &Installer{
		fs:     fs,
		paths:  p,
		ledger: l,
		writer: newSnapshotWriter(fs),
		now:    time.Now,
		logger: logging.GetLogger("installer"),
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.resolver == nil {
		i.resolver = resolver.New()
	}
	if i.detector == nil {
		i.detector = conflicts.New(fs, conflicts.WithPaths(p), conflicts.WithResolver(i.resolver))
	}
	return i
}

// Install adds the mod in archivePath to the plugins folder. A previously
// installed version of the same mod is backed up and replaced.
func (i *Installer) Install(ctx context.Context, archivePath string, opts Options) (InstallResult, error) {
	if err := ctx.Err(); err != nil {
		return InstallResult{}, err
	}
	dryRun := i.dryRun || opts.DryRun
	result := InstallResult{DryRun: dryRun}

	archive, err := manifest.OpenArchive(archivePath)
	if err != nil {
		return result, err
	}
	defer func() { _ = archive.Close() }()

	mod := archive.Descriptor
	logger := logging.ForMod("installer", mod.ID, mod.Version)
	defer logging.LogOperationStart(logger, "install")()

	installed, err := i.ledger.Load()
	if err != nil {
		return result, err
	}

	existing, hasExisting := types.FindMod(installed, mod.ID)
	if hasExisting {
		result.Replaced = &existing
		if version.Equal(existing.Version, mod.Version) && !opts.Force {
			return result, errors.Newf(errors.ErrModInstalled, "%s %s is already installed", mod.ID, mod.Version).
				WithDetail("id", mod.ID).
				WithDetail("version", mod.Version)
		}
	}

	others := enabledExcept(installed, mod.ID)
	result.Outcome = i.resolver.Resolve(mod, others)

	index := conflicts.FileIndex{mod.ID: archive.Files}
	for _, m := range others {
		files, err := filesystem.ListFiles(i.fs, i.installDir(m))
		if err != nil {
			logger.Warn().Err(err).Str("other", m.ID).Msg("Cannot list mod files")
			continue
		}
		index[m.ID] = files
	}
	result.Conflicts = i.detector.DetectWithFiles(others, &mod, index)

	if err := blocking(mod, result.Outcome, result.Conflicts); err != nil {
		if !opts.Force {
			result.Mod = mod
			return result, err
		}
		logger.Warn().Err(err).Msg("Installing despite problems (forced)")
	}

	dest := i.paths.ModDir(mod.ID)
	mod.InstallPath = dest
	mod.Enabled = true
	result.Mod = mod

	if dryRun {
		logger.Info().Str("dest", dest).Int("files", len(archive.Files)).Msg("Dry run: would install")
		return result, nil
	}

	if hasExisting {
		snapshot, err := i.Backup(ctx, []string{existing.ID})
		if err != nil {
			return result, err
		}
		result.Backup = &snapshot
		if err := i.removeFolders(existing); err != nil {
			return result, err
		}
	}

	if err := i.extract(archive, dest); err != nil {
		if hasExisting {
			i.rollback(*result.Backup, existing, dest, logger)
		}
		return result, err
	}
	if err := i.ledger.Upsert(mod); err != nil {
		return result, err
	}
	i.invalidate()

	logger.Info().Str("dest", dest).Int("files", len(archive.Files)).Msg("Mod installed")
	return result, nil
}

func (i *Installer) extract(archive *manifest.Archive, dest string) error {
	if err := i.fs.MkdirAll(dest, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", dest)
	}
	return archive.ExtractTo(i.fs, dest)
}

// rollback puts the replaced version back after a failed extraction. When
// that fails too the ledger record is dropped, since its folder is gone.
func (i *Installer) rollback(snap Snapshot, existing types.ModDescriptor, dest string, logger zerolog.Logger) {
	if err := i.fs.RemoveAll(dest); err != nil {
		logger.Warn().Err(err).Str("dest", dest).Msg("Cannot clean up partial install")
	}
	err := i.restore(snap, existing, i.currentDir(existing))
	if err == nil {
		logger.Info().Str("backup", snap.ID).Msg("Restored previous version")
		return
	}
	logger.Error().Err(err).Str("backup", snap.ID).Msg("Cannot restore previous version")
	if err := i.ledger.Remove(existing.ID); err != nil {
		logger.Error().Err(err).Msg("Cannot drop stale ledger record")
	}
	i.invalidate()
}

// blocking reports the first reason an install should not proceed
func blocking(mod types.ModDescriptor, outcome types.ResolutionOutcome, found []types.Conflict) error {
	if len(outcome.Missing) > 0 {
		names := make([]string, 0, len(outcome.Missing))
		for _, m := range outcome.Missing {
			names = append(names, m.ModID)
		}
		return errors.Newf(errors.ErrMissingDependency, "%s is missing dependencies: %s", mod.ID, strings.Join(names, ", ")).
			WithDetail("missing", names)
	}
	for _, group := range [][]types.Conflict{outcome.Conflicts, found} {
		for _, c := range group {
			if c.Severity == types.SeverityCritical {
				return errors.New(codeFor(c.Kind), c.Message).WithDetail("conflict", c.ID)
			}
		}
	}
	return nil
}

func codeFor(kind types.ConflictKind) errors.ErrorCode {
	switch kind {
	case types.ConflictFileOverlap, types.ConflictConfigOverlap:
		return errors.ErrFileConflict
	case types.ConflictCircularDependency:
		return errors.ErrCircularDependency
	case types.ConflictMissingDependency:
		return errors.ErrMissingDependency
	case types.ConflictResolutionError:
		return errors.ErrResolution
	default:
		return errors.ErrVersionMismatch
	}
}

func enabledExcept(mods []types.ModDescriptor, id string) []types.ModDescriptor {
	var out []types.ModDescriptor
	for _, m := range mods {
		if m.Enabled && !m.MatchesID(id) {
			out = append(out, m)
		}
	}
	return out
}

// installDir is where the mod lives while enabled
func (i *Installer) installDir(m types.ModDescriptor) string {
	if m.InstallPath != "" {
		return m.InstallPath
	}
	return i.paths.ModDir(m.ID)
}

// currentDir is where the mod lives right now
func (i *Installer) currentDir(m types.ModDescriptor) string {
	if m.Enabled {
		return i.installDir(m)
	}
	return i.installDir(m) + paths.DisabledSuffix
}

func (i *Installer) removeFolders(m types.ModDescriptor) error {
	for _, dir := range []string{i.installDir(m), i.installDir(m) + paths.DisabledSuffix} {
		if err := i.fs.RemoveAll(dir); err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to remove %s", dir)
		}
	}
	return nil
}

func (i *Installer) invalidate() {
	if i.cache != nil {
		i.cache.Purge()
	}
}

// within reports whether target stays inside dir
func within(dir, target string) bool {
	rel, err := filepath.Rel(dir, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

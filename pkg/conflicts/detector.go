package conflicts

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/silkmod/pkg/config"
	"github.com/arthur-debert/silkmod/pkg/filesystem"
	"github.com/arthur-debert/silkmod/pkg/logging"
	"github.com/arthur-debert/silkmod/pkg/paths"
	"github.com/arthur-debert/silkmod/pkg/resolver"
	"github.com/arthur-debert/silkmod/pkg/types"
	"github.com/rs/zerolog"
)

// FileIndex maps a mod id to the payload paths it ships, relative to the
// mod folder and slash separated
type FileIndex map[string][]string

// Detector runs the conflict passes
type Detector struct {
	fs               types.FS
	pluginsDir       string
	loaderConfigDir  string
	loaderConfigPath string
	resolver         *resolver.Resolver
	settings         config.Conflicts
	logger           zerolog.Logger
}

// Option configures a Detector
type Option func(*Detector)

// WithPluginsDir lets Detect read mod folders that have no InstallPath
func WithPluginsDir(dir string) Option {
	return func(d *Detector) { d.pluginsDir = dir }
}

// WithLoaderConfig enables the load order and config passes
func WithLoaderConfig(dir, cfgFile string) Option {
	return func(d *Detector) {
		d.loaderConfigDir = dir
		d.loaderConfigPath = cfgFile
	}
}

// WithPaths takes the plugins and loader config locations from p
func WithPaths(p paths.Paths) Option {
	return func(d *Detector) {
		d.pluginsDir = p.PluginsDir()
		d.loaderConfigDir = p.LoaderConfigDir()
		d.loaderConfigPath = p.LoaderConfigPath()
	}
}

// WithResolver sets the resolver used by the dependency pass
func WithResolver(r *resolver.Resolver) Option {
	return func(d *Detector) {
		if r != nil {
			d.resolver = r
		}
	}
}

// WithSettings overrides the config scan settings
func WithSettings(s config.Conflicts) Option {
	return func(d *Detector) { d.settings = s }
}

// New creates a Detector reading through fs
func New(fs types.FS, opts ...Option) *Detector {
	d := &Detector{
		fs:       fs,
		resolver: resolver.New(),
		settings: config.Default().Conflicts,
		logger:   logging.GetLogger("conflicts"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect runs every pass, reading each mod's files from its folder
func (d *Detector) Detect(installed []types.ModDescriptor, candidate *types.ModDescriptor) []types.Conflict {
	index := FileIndex{}
	for _, m := range registration(installed, candidate) {
		dir := d.modDir(m)
		if dir == "" {
			continue
		}
		files, err := filesystem.ListFiles(d.fs, dir)
		if err != nil {
			d.logger.Warn().Err(err).Str("mod", m.ID).Str("dir", dir).Msg("Cannot list mod files")
			continue
		}
		index[m.ID] = append(index[m.ID], files...)
	}
	return d.DetectWithFiles(installed, candidate, index)
}

// DetectWithFiles runs every pass with caller supplied file lists
func (d *Detector) DetectWithFiles(installed []types.ModDescriptor, candidate *types.ModDescriptor, index FileIndex) (conflicts []types.Conflict) {
	defer func() {
		if rec := recover(); rec != nil {
			d.logger.Error().Interface("panic", rec).Msg("Conflict detection aborted")
			conflicts = append(conflicts, types.Conflict{
				ID:       string(types.ConflictResolutionError) + ":detect",
				Kind:     types.ConflictResolutionError,
				Severity: types.SeverityCritical,
				Message:  fmt.Sprintf("conflict detection failed: %v", rec),
			})
		}
	}()

	defer logging.LogOperationStart(d.logger, "detect")()

	mods := registration(installed, candidate)
	conflicts = []types.Conflict{}

	conflicts = append(conflicts, d.filePass(mods, index)...)
	conflicts = append(conflicts, d.dependencyPass(mods)...)
	conflicts = append(conflicts, d.versionPass(mods)...)
	conflicts = append(conflicts, d.loadOrderPass(mods)...)
	conflicts = append(conflicts, d.configPass(mods)...)

	d.logger.Debug().
		Int("mods", len(mods)).
		Int("conflicts", len(conflicts)).
		Msg("Conflict detection finished")
	return conflicts
}

// registration returns installed followed by the candidate
func registration(installed []types.ModDescriptor, candidate *types.ModDescriptor) []types.ModDescriptor {
	mods := make([]types.ModDescriptor, 0, len(installed)+1)
	mods = append(mods, installed...)
	if candidate != nil {
		mods = append(mods, *candidate)
	}
	return mods
}

func (d *Detector) modDir(m types.ModDescriptor) string {
	if m.InstallPath != "" {
		return m.InstallPath
	}
	if d.pluginsDir == "" || strings.TrimSpace(m.ID) == "" {
		return ""
	}
	return filepath.Join(d.pluginsDir, m.ID)
}

// HighestSeverity returns the most severe level among conflicts, or
// info when there are none
func HighestSeverity(conflicts []types.Conflict) types.Severity {
	highest := types.SeverityInfo
	for _, c := range conflicts {
		if c.Severity.Rank() > highest.Rank() {
			highest = c.Severity
		}
	}
	return highest
}

// Involving filters conflicts down to those naming modID
func Involving(conflicts []types.Conflict, modID string) []types.Conflict {
	var out []types.Conflict
	for _, c := range conflicts {
		if c.Involves(modID) {
			out = append(out, c)
		}
	}
	return out
}

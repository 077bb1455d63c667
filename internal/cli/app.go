package cli

import (
	"net/http"
	"os"

	"github.com/arthur-debert/silkmod/pkg/compat"
	"github.com/arthur-debert/silkmod/pkg/config"
	"github.com/arthur-debert/silkmod/pkg/conflicts"
	"github.com/arthur-debert/silkmod/pkg/filesystem"
	"github.com/arthur-debert/silkmod/pkg/installer"
	"github.com/arthur-debert/silkmod/pkg/ledger"
	"github.com/arthur-debert/silkmod/pkg/output"
	"github.com/arthur-debert/silkmod/pkg/paths"
	"github.com/arthur-debert/silkmod/pkg/resolver"
	"github.com/arthur-debert/silkmod/pkg/types"
	"github.com/spf13/cobra"
)

// globalFlags holds the persistent flags shared by every command
type globalFlags struct {
	verbosity  int
	dryRun     bool
	force      bool
	gameDir    string
	format     string
	configPath string
}

// app is everything a command needs, built once per invocation
type app struct {
	flags     *globalFlags
	paths     paths.Paths
	cfg       *config.Config
	fs        types.FS
	ledger    ledger.Ledger
	resolver  *resolver.Resolver
	detector  *conflicts.Detector
	cache     *compat.Cache
	checker   *compat.Checker
	installer *installer.Installer
	client    *http.Client
	out       output.Renderer
}

// newApp resolves paths and configuration, then wires the components.
// The game directory comes from --game-dir, SILKMOD_GAME_DIR, game.dir
// in the config file or the working directory, in that order.
func newApp(cmd *cobra.Command, flags *globalFlags) (*app, error) {
	p, err := paths.New(flags.gameDir)
	if err != nil {
		return nil, err
	}

	configPath := flags.configPath
	if configPath == "" {
		configPath = p.ConfigFilePath()
	}
	cfg, err := config.LoadConfiguration(configPath)
	if err != nil {
		return nil, err
	}
	if flags.gameDir == "" && cfg.Game.Dir != "" && !gameDirFromEnv() {
		if p, err = paths.New(cfg.Game.Dir); err != nil {
			return nil, err
		}
	}
	config.Initialize(cfg)

	format := flags.format
	if format == "" {
		format = cfg.Output.Format
	}
	f, err := output.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	renderer, err := output.NewRenderer(f, cmd.OutOrStdout())
	if err != nil {
		return nil, err
	}

	fs := filesystem.NewOS()
	l := ledger.New(fs, p.LedgerPath())
	r := resolver.New(loaderOptions(fs, p, cfg.Loader)...)
	d := conflicts.New(fs,
		conflicts.WithPaths(p),
		conflicts.WithResolver(r),
		conflicts.WithSettings(cfg.Conflicts),
	)
	cache := compat.NewCache(cfg.Cache.Size, cfg.Cache.TTL)

	return &app{
		flags:    flags,
		paths:    p,
		cfg:      cfg,
		fs:       fs,
		ledger:   l,
		resolver: r,
		detector: d,
		cache:    cache,
		checker:  compat.NewChecker(l, r, cache, p.GameDir(), cfg.Cache.Concurrency),
		installer: installer.New(fs, p, l,
			installer.WithResolver(r),
			installer.WithDetector(d),
			installer.WithCache(cache),
			installer.WithDryRun(flags.dryRun),
		),
		client: &http.Client{Timeout: cfg.Remote.Timeout},
		out:    renderer,
	}, nil
}

func (a *app) options() installer.Options {
	return installer.Options{Force: a.flags.force, DryRun: a.flags.dryRun}
}

// enabledMods returns the enabled mods in the ledger, leaving out skip
func (a *app) enabledMods(skip string) ([]types.ModDescriptor, error) {
	installed, err := a.ledger.Load()
	if err != nil {
		return nil, err
	}
	var out []types.ModDescriptor
	for _, m := range installed {
		if m.Enabled && (skip == "" || !m.MatchesID(skip)) {
			out = append(out, m)
		}
	}
	return out, nil
}

// loaderOptions prefers the configured loader version over what is found
// in the game folder
func loaderOptions(fs types.FS, p paths.Paths, loader config.Loader) []resolver.Option {
	if loader.Version != "" {
		return []resolver.Option{resolver.WithLoaderVersion(loader.Version), resolver.WithLoaderInstalled(true)}
	}
	found := installer.DetectLoader(fs, p)
	return []resolver.Option{resolver.WithLoaderVersion(found.Version), resolver.WithLoaderInstalled(found.Installed)}
}

func gameDirFromEnv() bool {
	return os.Getenv(paths.EnvGameDir) != ""
}

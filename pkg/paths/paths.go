package paths

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/silkmod/pkg/errors"
)

// Environment variable names
const (
	// EnvGameDir points at the game installation directory
	EnvGameDir = "SILKMOD_GAME_DIR"

	// EnvDataDir overrides the XDG data directory for silkmod
	EnvDataDir = "SILKMOD_DATA_DIR"

	// EnvConfigDir overrides the XDG config directory for silkmod
	EnvConfigDir = "SILKMOD_CONFIG_DIR"

	// EnvCacheDir overrides the XDG cache directory for silkmod
	EnvCacheDir = "SILKMOD_CACHE_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Fixed names. The loader layout is dictated by BepInEx and the data
// layout must stay stable across silkmod versions.
const (
	AppDirName = "silkmod"

	LoaderDirName    = "BepInEx"
	PluginsDirName   = "plugins"
	ConfigDirName    = "config"
	CoreDirName      = "core"
	LoaderConfigFile = "BepInEx.cfg"
	LoaderLogFile    = "LogOutput.log"

	LedgerFileName = "installed.json"
	BackupsDirName = "backups"
	LogFileName    = "silkmod.log"
	ConfigFileName = "config.toml"

	// DisabledSuffix is appended to a mod folder to keep the loader from loading it
	DisabledSuffix = ".disabled"

	// GameExecutableName is the executable base name on every platform
	GameExecutableName = "Hollow Knight Silksong"
)

// Paths provides centralized path management for silkmod
type Paths interface {
	GameDir() string
	LoaderDir() string
	PluginsDir() string
	ModDir(modID string) string
	DisabledModDir(modID string) string
	LoaderConfigDir() string
	LoaderConfigPath() string
	LoaderCoreDir() string
	LoaderLogPath() string
	GameExecutable(goos string) string
	DataDir() string
	ConfigDir() string
	CacheDir() string
	StateDir() string
	LedgerPath() string
	BackupsDir() string
	ConfigFilePath() string
	LogFilePath() string
	NormalizePath(path string) (string, error)
}

type paths struct {
	gameDir   string
	xdgData   string
	xdgConfig string
	xdgCache  string
	xdgState  string
}

// New creates a Paths instance for the given game directory.
// If gameDir is empty, SILKMOD_GAME_DIR is used; if that is unset too the
// current working directory is assumed to be the game directory.
func New(gameDir string) (Paths, error) {
	p := &paths{}

	if gameDir == "" {
		gameDir = os.Getenv(EnvGameDir)
	}
	if gameDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to get current directory")
		}
		gameDir = cwd
	}

	abs, err := filepath.Abs(expandHome(gameDir))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for game directory")
	}
	p.gameDir = abs

	p.setupXDGDirs()
	return p, nil
}

// setupXDGDirs initializes XDG directories, respecting environment overrides
func (p *paths) setupXDGDirs() {
	if dataDir := os.Getenv(EnvDataDir); dataDir != "" {
		p.xdgData = expandHome(dataDir)
	} else {
		p.xdgData = filepath.Join(xdg.DataHome, AppDirName)
	}

	if configDir := os.Getenv(EnvConfigDir); configDir != "" {
		p.xdgConfig = expandHome(configDir)
	} else {
		p.xdgConfig = filepath.Join(xdg.ConfigHome, AppDirName)
	}

	if cacheDir := os.Getenv(EnvCacheDir); cacheDir != "" {
		p.xdgCache = expandHome(cacheDir)
	} else {
		p.xdgCache = filepath.Join(xdg.CacheHome, AppDirName)
	}

	p.xdgState = filepath.Join(xdg.StateHome, AppDirName)
}

// expandHome expands a leading ~ to the home directory
func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}

	// ~someone else
	return path
}

// ExpandHome expands ~ in paths
func ExpandHome(path string) string {
	return expandHome(path)
}

func (p *paths) GameDir() string   { return p.gameDir }
func (p *paths) LoaderDir() string { return filepath.Join(p.gameDir, LoaderDirName) }
func (p *paths) PluginsDir() string {
	return filepath.Join(p.LoaderDir(), PluginsDirName)
}

// ModDir returns the folder a mod is installed into
func (p *paths) ModDir(modID string) string {
	return filepath.Join(p.PluginsDir(), modID)
}

// DisabledModDir returns where a disabled mod's folder is moved
func (p *paths) DisabledModDir(modID string) string {
	return p.ModDir(modID) + DisabledSuffix
}

func (p *paths) LoaderConfigDir() string { return filepath.Join(p.LoaderDir(), ConfigDirName) }
func (p *paths) LoaderConfigPath() string {
	return filepath.Join(p.LoaderConfigDir(), LoaderConfigFile)
}
func (p *paths) LoaderCoreDir() string { return filepath.Join(p.LoaderDir(), CoreDirName) }

// LoaderLogPath is the log the loader rewrites on every game start
func (p *paths) LoaderLogPath() string { return filepath.Join(p.LoaderDir(), LoaderLogFile) }

// GameExecutable returns the game binary for the given GOOS; an empty goos
// means the running platform
func (p *paths) GameExecutable(goos string) string {
	if goos == "" {
		goos = runtime.GOOS
	}
	switch goos {
	case "windows":
		return filepath.Join(p.gameDir, GameExecutableName+".exe")
	case "darwin":
		return filepath.Join(p.gameDir, GameExecutableName+".app")
	default:
		return filepath.Join(p.gameDir, GameExecutableName+".x86_64")
	}
}

func (p *paths) DataDir() string        { return p.xdgData }
func (p *paths) ConfigDir() string      { return p.xdgConfig }
func (p *paths) CacheDir() string       { return p.xdgCache }
func (p *paths) StateDir() string       { return p.xdgState }
func (p *paths) LedgerPath() string     { return filepath.Join(p.xdgData, LedgerFileName) }
func (p *paths) BackupsDir() string     { return filepath.Join(p.xdgData, BackupsDirName) }
func (p *paths) ConfigFilePath() string { return filepath.Join(p.xdgConfig, ConfigFileName) }
func (p *paths) LogFilePath() string    { return filepath.Join(p.xdgState, LogFileName) }

// NormalizePath expands home, makes the path absolute and cleans it
func (p *paths) NormalizePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New(errors.ErrInvalidInput, "empty path")
	}

	abs, err := filepath.Abs(expandHome(path))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path")
	}
	return filepath.Clean(abs), nil
}

package installer

import (
	"bufio"
	"bytes"
	"regexp"

	"github.com/arthur-debert/silkmod/pkg/filesystem"
	"github.com/arthur-debert/silkmod/pkg/logging"
	"github.com/arthur-debert/silkmod/pkg/paths"
	"github.com/arthur-debert/silkmod/pkg/types"
	"github.com/arthur-debert/silkmod/pkg/version"
)

// LoaderInfo describes the plugin loader found in the game folder
type LoaderInfo struct {
	Installed bool   `json:"installed"`
	Version   string `json:"version,omitempty"`
}

// The loader's log opens with a banner such as
// "[Message:   BepInEx] BepInEx 5.4.23.2 - Hollow Knight Silksong"
var loaderBannerPattern = regexp.MustCompile(`\bBepInEx\s+v?(\d+(?:\.\d+){1,3})\b`)

// bannerLines bounds how far into the log the banner is looked for
const bannerLines = 20

// DetectLoader looks for the loader's core folder. The version is read
// from the loader log when the game has been started with it at least once.
func DetectLoader(fsys types.FS, p paths.Paths) LoaderInfo {
	logger := logging.GetLogger("installer.loader")

	entries, err := fsys.ReadDir(p.LoaderCoreDir())
	if err != nil || len(entries) == 0 {
		logger.Debug().Str("dir", p.LoaderCoreDir()).Msg("Loader not found")
		return LoaderInfo{}
	}

	info := LoaderInfo{Installed: true}
	exists, err := filesystem.Exists(fsys, p.LoaderLogPath())
	if err != nil || !exists {
		logger.Debug().Msg("Loader found, version unknown")
		return info
	}
	data, err := fsys.ReadFile(p.LoaderLogPath())
	if err != nil {
		logger.Warn().Err(err).Str("path", p.LoaderLogPath()).Msg("Cannot read loader log")
		return info
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for n := 0; n < bannerLines && scanner.Scan(); n++ {
		if m := loaderBannerPattern.FindStringSubmatch(scanner.Text()); m != nil {
			info.Version = version.Parse(m[1]).String()
			break
		}
	}
	logger.Debug().Str("version", info.Version).Msg("Loader found")
	return info
}

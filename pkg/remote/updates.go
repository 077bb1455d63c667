package remote

import (
	"context"

	"github.com/arthur-debert/silkmod/pkg/logging"
	"github.com/arthur-debert/silkmod/pkg/types"
	"github.com/arthur-debert/silkmod/pkg/version"
)

// Update is a newer published version of an installed mod
type Update struct {
	ModID       string `json:"mod_id"`
	Installed   string `json:"installed"`
	Latest      string `json:"latest"`
	DownloadURL string `json:"download_url"`
}

// PackageLister is the part of Thunderstore CheckUpdates needs
type PackageLister interface {
	ListPackages(ctx context.Context) ([]Package, error)
}

// CheckUpdates compares installed mods with the package index. Mods that
// are not on the index are skipped.
func CheckUpdates(ctx context.Context, index PackageLister, installed []types.ModDescriptor) ([]Update, error) {
	packages, err := index.ListPackages(ctx)
	if err != nil {
		return nil, err
	}

	logger := logging.GetLogger("remote.updates")
	var updates []Update
	for _, mod := range installed {
		p, ok := findPackage(packages, mod.ID)
		if !ok {
			logger.Debug().Str("mod", mod.ID).Msg("Not on the package index")
			continue
		}
		latest, ok := p.Latest()
		if !ok {
			continue
		}
		if version.CompareStrings(latest.VersionNumber, mod.Version) > 0 {
			updates = append(updates, Update{
				ModID:       mod.ID,
				Installed:   mod.Version,
				Latest:      latest.VersionNumber,
				DownloadURL: latest.DownloadURL,
			})
		}
	}
	return updates, nil
}

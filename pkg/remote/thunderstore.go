package remote

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/arthur-debert/silkmod/pkg/config"
	"github.com/arthur-debert/silkmod/pkg/errors"
	"github.com/arthur-debert/silkmod/pkg/manifest"
	"github.com/arthur-debert/silkmod/pkg/types"
	"github.com/arthur-debert/silkmod/pkg/version"
)

// Package is one entry of the Thunderstore package index
type Package struct {
	Name         string           `json:"name"`
	FullName     string           `json:"full_name"`
	Owner        string           `json:"owner"`
	PackageURL   string           `json:"package_url"`
	DateUpdated  time.Time        `json:"date_updated"`
	IsDeprecated bool             `json:"is_deprecated"`
	Categories   []string         `json:"categories"`
	Versions     []PackageVersion `json:"versions"`
}

// PackageVersion is one published version of a package
type PackageVersion struct {
	Name          string   `json:"name"`
	FullName      string   `json:"full_name"`
	Description   string   `json:"description"`
	Icon          string   `json:"icon"`
	VersionNumber string   `json:"version_number"`
	Dependencies  []string `json:"dependencies"`
	DownloadURL   string   `json:"download_url"`
	Downloads     int64    `json:"downloads"`
	WebsiteURL    string   `json:"website_url"`
	IsActive      bool     `json:"is_active"`
	FileSize      int64    `json:"file_size"`
}

// Latest returns the highest version number, not trusting index order
func (p Package) Latest() (PackageVersion, bool) {
	if len(p.Versions) == 0 {
		return PackageVersion{}, false
	}
	best := p.Versions[0]
	for _, v := range p.Versions[1:] {
		if version.CompareStrings(v.VersionNumber, best.VersionNumber) > 0 {
			best = v
		}
	}
	return best, true
}

// Descriptor maps the version onto a ModDescriptor. Thunderstore
// references become Name>=Version dependency strings.
func (v PackageVersion) Descriptor(owner string) types.ModDescriptor {
	deps := make([]string, 0, len(v.Dependencies))
	for _, d := range v.Dependencies {
		if ref, ok := manifest.ParseFullName(d); ok {
			deps = append(deps, fmt.Sprintf("%s>=%s", ref.Name, ref.Version))
			continue
		}
		deps = append(deps, d)
	}
	return types.ModDescriptor{
		ID:           v.Name,
		Name:         v.Name,
		Version:      v.VersionNumber,
		Description:  v.Description,
		Author:       owner,
		WebsiteURL:   v.WebsiteURL,
		Dependencies: deps,
		Icon:         v.Icon,
		Enabled:      true,
	}
}

// Thunderstore reads a community's package index
type Thunderstore struct {
	baseURL   string
	community string
	transport transport
}

// NewThunderstore creates a client from the remote settings; client may be nil
func NewThunderstore(cfg config.Remote, client *http.Client) *Thunderstore {
	return &Thunderstore{
		baseURL:   strings.TrimRight(cfg.ThunderstoreURL, "/"),
		community: cfg.Community,
		transport: newTransport(client, cfg.Timeout, cfg.UserAgent),
	}
}

// IndexURL is the package list endpoint for the community
func (t *Thunderstore) IndexURL() string {
	return fmt.Sprintf("%s/c/%s/api/v1/package/", t.baseURL, t.community)
}

// ListPackages downloads the full package index
func (t *Thunderstore) ListPackages(ctx context.Context) ([]Package, error) {
	var packages []Package
	if err := t.transport.getJSON(ctx, t.IndexURL(), &packages); err != nil {
		return nil, err
	}
	return packages, nil
}

// FindPackage looks a package up by name or full name, ignoring case
func (t *Thunderstore) FindPackage(ctx context.Context, name string) (Package, error) {
	packages, err := t.ListPackages(ctx)
	if err != nil {
		return Package{}, err
	}
	if p, ok := findPackage(packages, name); ok {
		return p, nil
	}
	return Package{}, errors.Newf(errors.ErrNotFound, "package %q not found in %s", name, t.community).
		WithDetail("name", name)
}

// LatestVersion returns the newest published version of a package
func (t *Thunderstore) LatestVersion(ctx context.Context, name string) (PackageVersion, error) {
	p, err := t.FindPackage(ctx, name)
	if err != nil {
		return PackageVersion{}, err
	}
	latest, ok := p.Latest()
	if !ok {
		return PackageVersion{}, errors.Newf(errors.ErrNotFound, "package %q has no versions", name)
	}
	return latest, nil
}

func findPackage(packages []Package, name string) (Package, bool) {
	for _, p := range packages {
		if strings.EqualFold(p.Name, name) || strings.EqualFold(p.FullName, name) {
			return p, true
		}
	}
	return Package{}, false
}

package remote

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/arthur-debert/silkmod/pkg/arch"
	"github.com/arthur-debert/silkmod/pkg/config"
	"github.com/arthur-debert/silkmod/pkg/errors"
)

// Release is a GitHub release
type Release struct {
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	HTMLURL     string    `json:"html_url"`
	PublishedAt time.Time `json:"published_at"`
	Prerelease  bool      `json:"prerelease"`
	Assets      []Asset   `json:"assets"`
}

// Asset is a file attached to a release
type Asset struct {
	Name        string `json:"name"`
	DownloadURL string `json:"browser_download_url"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// GitHub reads release metadata
type GitHub struct {
	baseURL   string
	transport transport
}

// NewGitHub creates a client from the remote settings; client may be nil
func NewGitHub(cfg config.Remote, client *http.Client) *GitHub {
	return &GitHub{
		baseURL:   strings.TrimRight(cfg.GitHubAPI, "/"),
		transport: newTransport(client, cfg.Timeout, cfg.UserAgent),
	}
}

// LatestRelease returns the newest non-draft, non-prerelease release
func (g *GitHub) LatestRelease(ctx context.Context, owner, repo string) (Release, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", g.baseURL, owner, repo)
	var release Release
	if err := g.transport.getJSON(ctx, url, &release); err != nil {
		return Release{}, err
	}
	return release, nil
}

var platformTokens = map[string]string{
	"windows": "win",
	"linux":   "linux",
	"darwin":  "macos",
}

// SelectLoaderAsset picks the loader build for a platform and architecture.
// Current BepInEx names assets BepInEx_<platform>_<arch>_<version>.zip;
// older releases used BepInEx_<arch>_<version>.zip for Windows and
// BepInEx_unix_<version>.zip elsewhere, which are accepted as fallbacks.
func SelectLoaderAsset(assets []Asset, goos string, a arch.Architecture) (Asset, error) {
	platform, ok := platformTokens[goos]
	if !ok {
		return Asset{}, errors.Newf(errors.ErrInvalidInput, "unsupported platform %q", goos).
			WithDetail("goos", goos)
	}
	archToken := string(a)

	var fallback *Asset
	for i := range assets {
		name := strings.ToLower(assets[i].Name)
		if !strings.HasSuffix(name, ".zip") {
			continue
		}
		tokens := strings.FieldsFunc(strings.TrimSuffix(name, ".zip"), func(r rune) bool {
			return r == '_' || r == '-'
		})

		if hasToken(tokens, platform) && hasToken(tokens, archToken) {
			return assets[i], nil
		}
		if fallback != nil {
			continue
		}
		switch goos {
		case "windows":
			if hasToken(tokens, archToken) && !hasToken(tokens, "unix") &&
				!hasToken(tokens, "linux") && !hasToken(tokens, "macos") {
				fallback = &assets[i]
			}
		default:
			if hasToken(tokens, "unix") {
				fallback = &assets[i]
			}
		}
	}
	if fallback != nil {
		return *fallback, nil
	}
	return Asset{}, errors.Newf(errors.ErrNotFound, "no loader asset for %s/%s", goos, a).
		WithDetail("goos", goos).
		WithDetail("arch", string(a))
}

func hasToken(tokens []string, want string) bool {
	for _, t := range tokens {
		if t == want {
			return true
		}
	}
	return false
}

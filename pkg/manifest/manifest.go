package manifest

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/arthur-debert/silkmod/pkg/errors"
	"github.com/arthur-debert/silkmod/pkg/types"
)

// FileName is the manifest's name inside a mod archive
const FileName = "manifest.json"

// File is the on-disk manifest schema. Both the Thunderstore keys and the
// shorter keys some authors use are accepted.
type File struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Author        string   `json:"author"`
	VersionNumber string   `json:"version_number"`
	Version       string   `json:"version"`
	Description   string   `json:"description"`
	WebsiteURL    string   `json:"website_url"`
	Dependencies  []string `json:"dependencies"`
	Tags          []string `json:"tags"`
	Icon          string   `json:"icon"`
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseManifest decodes manifest.json content.
// version_number wins over version; id wins over name for the identifier
// and name wins over id for the display name.
func ParseManifest(data []byte) (types.ModDescriptor, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return types.ModDescriptor{}, errors.Wrap(err, errors.ErrManifestParse, "invalid manifest JSON")
	}
	return f.Descriptor()
}

// Descriptor maps the manifest onto a ModDescriptor
func (f File) Descriptor() (types.ModDescriptor, error) {
	id := firstNonEmpty(f.ID, f.Name)
	if id == "" {
		return types.ModDescriptor{}, errors.New(errors.ErrManifestParse, "manifest has neither id nor name")
	}

	return types.ModDescriptor{
		ID:           id,
		Name:         firstNonEmpty(f.Name, f.ID),
		Version:      firstNonEmpty(f.VersionNumber, f.Version),
		Description:  strings.TrimSpace(f.Description),
		Author:       f.Author,
		WebsiteURL:   f.WebsiteURL,
		Dependencies: compact(f.Dependencies),
		Tags:         compact(f.Tags),
		Icon:         f.Icon,
		Enabled:      true,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// compact trims entries and drops blanks
func compact(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

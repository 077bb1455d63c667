package manifest

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/arthur-debert/silkmod/pkg/types"
)

// FullName is a Thunderstore package reference, Team-Name-1.2.3
type FullName struct {
	Team    string
	Name    string
	Version string
}

var (
	fullNamePattern  = regexp.MustCompile(`^([A-Za-z0-9_.]+)-([A-Za-z0-9_.]+)-(\d+(?:\.\d+){0,3})$`)
	shortNamePattern = regexp.MustCompile(`^([A-Za-z0-9_.]+)-(\d+(?:\.\d+){0,3})$`)
)

// ParseFullName splits Team-Name-1.2.3. Anything else reports false.
func ParseFullName(s string) (FullName, bool) {
	m := fullNamePattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return FullName{}, false
	}
	return FullName{Team: m[1], Name: m[2], Version: m[3]}, true
}

// String renders the reference back in dashed form
func (n FullName) String() string {
	parts := []string{}
	for _, p := range []string{n.Team, n.Name, n.Version} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "-")
}

// FromFileName derives a descriptor from an archive name such as
// Team-Name-1.2.3.zip or Name-1.2.3.zip. Other names become the id with no
// version.
func FromFileName(path string) types.ModDescriptor {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	if n, ok := ParseFullName(base); ok {
		return types.ModDescriptor{ID: n.Name, Name: n.Name, Author: n.Team, Version: n.Version, Enabled: true}
	}
	if m := shortNamePattern.FindStringSubmatch(base); m != nil {
		return types.ModDescriptor{ID: m[1], Name: m[1], Version: m[2], Enabled: true}
	}
	return types.ModDescriptor{ID: base, Name: base, Enabled: true}
}

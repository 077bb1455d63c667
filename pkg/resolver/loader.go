package resolver

import (
	"regexp"
	"strings"

	"github.com/arthur-debert/silkmod/pkg/types"
	"github.com/arthur-debert/silkmod/pkg/version"
)

// LoaderName is how the plugin loader is named in conflicts
const LoaderName = "BepInEx"

// LoaderRequirementExtractor finds the loader version a mod needs.
// ok is false when the mod states no requirement; that is not an error.
type LoaderRequirementExtractor interface {
	Extract(mod types.ModDescriptor) (constraint string, ok bool)
}

// IsLoaderID reports whether a dependency id names the plugin loader
// (BepInEx, BepInExPack, BepInExPack_Silksong...)
func IsLoaderID(id string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(id)), "bepinex")
}

// NormalizeLoaderVersion maps Thunderstore pack numbering onto loader
// numbering: BepInExPack 5.4.2100 ships BepInEx 5.4.21.
func NormalizeLoaderVersion(v version.Version) version.Version {
	if v.Patch >= 100 {
		v.Patch /= 100
	}
	return v
}

var (
	loaderOperatorPattern = regexp.MustCompile(`(?i)\bbepinex(?:pack)?\s*(>=|<=|~|=)\s*v?(\d+(?:\.\d+)*)`)
	loaderPackPattern     = regexp.MustCompile(`(?i)\bbepinex-bepinexpack\w*-(\d+(?:\.\d+)*)`)
	loaderPhrasePattern   = regexp.MustCompile(`(?i)\brequires\s+bepinex(?:pack)?\s+v?(\d+(?:\.\d+)*)`)
)

// RegexExtractor is the default heuristic: it scans dependency strings
// first, then the description, for the forms "BepInEx >= 5.4.21",
// "BepInEx-BepInExPack-5.4.2100" and "requires BepInEx 5.4".
type RegexExtractor struct{}

// Extract implements LoaderRequirementExtractor
func (RegexExtractor) Extract(mod types.ModDescriptor) (string, bool) {
	sources := append(append([]string{}, mod.Dependencies...), mod.Description)

	for _, s := range sources {
		if m := loaderPackPattern.FindStringSubmatch(s); m != nil {
			return ">=" + NormalizeLoaderVersion(version.Parse(m[1])).String(), true
		}
		if m := loaderOperatorPattern.FindStringSubmatch(s); m != nil {
			return m[1] + version.Parse(m[2]).String(), true
		}
		if m := loaderPhrasePattern.FindStringSubmatch(s); m != nil {
			return ">=" + version.Parse(m[1]).String(), true
		}
	}
	return "", false
}

// loaderSatisfies evaluates a loader constraint against the installed
// loader, with both sides in loader numbering
func loaderSatisfies(installed string, c version.Constraint) bool {
	c.Target = NormalizeLoaderVersion(c.Target)
	return version.Satisfies(NormalizeLoaderVersion(version.Parse(installed)), c)
}

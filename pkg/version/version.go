// Package version parses the free-form version strings found in mod
// manifests and evaluates dependency constraints against them.
//
// Parsing is deliberately lenient: everything except digits and dots is
// stripped and the result is padded to major.minor.patch, so a string with
// no digits at all becomes 0.0.0 instead of an error. ParseStrict exists for
// callers that want to warn about that case.
//
// Comparison and constraint checks run through github.com/Masterminds/semver/v3
// once a version has been normalized.
package version

import (
	"fmt"
	"strconv"
	"strings"

	mm "github.com/Masterminds/semver/v3"
	"github.com/arthur-debert/silkmod/pkg/errors"
)

// Version is a normalized major.minor.patch triple
type Version struct {
	Major uint64
	Minor uint64
	Patch uint64
}

// Zero is the version every unparseable string collapses to
var Zero = Version{}

// Parse normalizes raw into a Version. It never fails.
func Parse(raw string) Version {
	v, _ := parse(raw)
	return v
}

// ParseStrict behaves like Parse but reports input without any digits
func ParseStrict(raw string) (Version, error) {
	v, ok := parse(raw)
	if !ok {
		return v, errors.Newf(errors.ErrVersionParse, "version %q contains no digits", raw).
			WithDetail("raw", raw)
	}
	return v, nil
}

func parse(raw string) (Version, bool) {
	var b strings.Builder
	hasDigit := false
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
			b.WriteRune(r)
		case r == '.':
			b.WriteRune(r)
		}
	}

	parts := make([]uint64, 0, 3)
	for _, p := range strings.Split(b.String(), ".") {
		if p == "" {
			continue
		}
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			n = 0
		}
		parts = append(parts, n)
		if len(parts) == 3 {
			break
		}
	}
	for len(parts) < 3 {
		parts = append(parts, 0)
	}

	return Version{Major: parts[0], Minor: parts[1], Patch: parts[2]}, hasDigit
}

// String renders the normalized form
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// MarshalText encodes the normalized form
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText parses leniently
func (v *Version) UnmarshalText(text []byte) error {
	*v = Parse(string(text))
	return nil
}

func (v Version) semver() *mm.Version {
	return mm.New(v.Major, v.Minor, v.Patch, "", "")
}

// Compare returns -1, 0 or 1 comparing a to b major, then minor, then patch
func Compare(a, b Version) int {
	return a.semver().Compare(b.semver())
}

// CompareStrings parses both strings leniently and compares them
func CompareStrings(a, b string) int {
	return Compare(Parse(a), Parse(b))
}

// Equal reports whether two raw strings normalize to the same version
func Equal(a, b string) bool {
	return CompareStrings(a, b) == 0
}

// Max returns the highest of the given versions, or Zero when none are given.
// The first of several equal maxima wins.
func Max(versions ...Version) Version {
	if len(versions) == 0 {
		return Zero
	}
	best := versions[0]
	for _, v := range versions[1:] {
		if Compare(v, best) > 0 {
			best = v
		}
	}
	return best
}

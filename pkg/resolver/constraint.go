package resolver

import (
	"strings"

	"github.com/arthur-debert/silkmod/pkg/manifest"
	"github.com/arthur-debert/silkmod/pkg/types"
	"github.com/arthur-debert/silkmod/pkg/version"
)

const optionalSuffix = "(optional)"

// ParseConstraint reads one dependency string.
//
// Accepted forms are "Id", "Id>=1.2", "Id<=1.2", "Id~1.2", "Id=1.2" and
// Thunderstore references "Team-Id-1.2.3", which pin a minimum version.
// A leading "?" or a trailing "?" or "(optional)" marks the dependency
// optional.
func ParseConstraint(raw string) types.DependencyConstraint {
	dc := types.DependencyConstraint{Raw: raw}

	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "?") {
		dc.Optional = true
		s = strings.TrimSpace(s[1:])
	}
	if strings.HasSuffix(strings.ToLower(s), optionalSuffix) {
		dc.Optional = true
		s = strings.TrimSpace(s[:len(s)-len(optionalSuffix)])
	}
	if strings.HasSuffix(s, "?") {
		dc.Optional = true
		s = strings.TrimSpace(s[:len(s)-1])
	}

	if ref, ok := manifest.ParseFullName(s); ok {
		dc.ModID = ref.Name
		dc.Operator = types.OperatorGreaterEqual
		dc.Version = ref.Version
		return dc
	}

	idx := strings.IndexAny(s, "><=~")
	if idx < 0 {
		dc.ModID = s
		return dc
	}

	dc.ModID = strings.TrimSpace(s[:idx])
	rest := strings.TrimSpace(s[idx:])
	c := version.ParseConstraint(rest)
	dc.Operator = c.Operator
	dc.Version = strings.TrimSpace(strings.TrimLeft(rest, "<>=~ "))
	return dc
}

// constraintOf converts a parsed dependency into a version constraint
func constraintOf(dc types.DependencyConstraint) version.Constraint {
	return version.NewConstraint(dc.Operator, dc.Version)
}

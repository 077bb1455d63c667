// pkg/version/version_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test lenient parsing, comparison and constraint evaluation

package version_test

import (
	"testing"

	"github.com/arthur-debert/silkmod/pkg/errors"
	"github.com/arthur-debert/silkmod/pkg/types"
	"github.com/arthur-debert/silkmod/pkg/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"1.2.3", "1.2.3"},
		{"1.2", "1.2.0"},
		{"1", "1.0.0"},
		{"v2.0.1", "2.0.1"},
		{"1.2.3.4", "1.2.3"},
		{"1..2", "1.2.0"},
		{"abc", "0.0.0"},
		{"", "0.0.0"},
		{"version 5.4.2100", "5.4.2100"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, version.Parse(tt.raw).String())
		})
	}
}

func TestParseStrict(t *testing.T) {
	v, err := version.ParseStrict("1.4")
	require.NoError(t, err)
	assert.Equal(t, "1.4.0", v.String())

	v, err = version.ParseStrict("latest")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrVersionParse))
	assert.Equal(t, version.Zero, v, "unparseable input still defaults to zero")
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"equal_after_padding", "1.2", "1.2.0", 0},
		{"equal_with_prefix", "v1.0.0", "1.0", 0},
		{"major_wins", "2.0.0", "1.9.9", 1},
		{"minor_wins", "1.3.0", "1.2.9", 1},
		{"patch_wins", "1.2.3", "1.2.4", -1},
		{"numeric_not_lexical", "1.10.0", "1.9.0", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, version.CompareStrings(tt.a, tt.b))
			assert.Equal(t, -tt.want, version.CompareStrings(tt.b, tt.a))
		})
	}
}

func TestParseConstraint(t *testing.T) {
	tests := []struct {
		raw    string
		op     types.ConstraintOperator
		target string
	}{
		{"", types.OperatorAny, "0.0.0"},
		{">=1.0.0", types.OperatorGreaterEqual, "1.0.0"},
		{"<=2.1", types.OperatorLessEqual, "2.1.0"},
		{"~1.2.0", types.OperatorTilde, "1.2.0"},
		{"=1.2.3", types.OperatorExact, "1.2.3"},
		{"1.2.3", types.OperatorExact, "1.2.3"},
		{">= 3.0", types.OperatorGreaterEqual, "3.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			c := version.ParseConstraint(tt.raw)
			assert.Equal(t, tt.op, c.Operator)
			assert.Equal(t, tt.target, c.Target.String())
		})
	}
}

func TestSatisfiesTilde(t *testing.T) {
	c := version.ParseConstraint("~1.2.0")

	for _, ok := range []string{"1.2.0", "1.2.9"} {
		assert.True(t, version.Satisfies(version.Parse(ok), c), "%s should satisfy ~1.2.0", ok)
	}
	for _, bad := range []string{"1.1.9", "1.3.0"} {
		assert.False(t, version.Satisfies(version.Parse(bad), c), "%s should not satisfy ~1.2.0", bad)
	}
}

func TestSatisfiesGreaterEqualMatchesCompare(t *testing.T) {
	target := version.Parse("2.0.0")
	c := version.ParseConstraint(">=2.0.0")

	for _, raw := range []string{"1.9.9", "2.0.0", "2.0.1", "10.0", "0.1"} {
		v := version.Parse(raw)
		assert.Equal(t, version.Compare(v, target) >= 0, version.Satisfies(v, c), raw)
	}
}

func TestSatisfies(t *testing.T) {
	tests := []struct {
		name       string
		installed  string
		constraint string
		want       bool
	}{
		{"empty_always_satisfies", "0.0.1", "", true},
		{"exact_match", "1.2", "1.2.0", true},
		{"exact_mismatch", "1.2.1", "1.2.0", false},
		{"less_equal_below", "1.0.0", "<=1.0.0", true},
		{"less_equal_above", "1.0.1", "<=1.0.0", false},
		{"garbage_installed_is_zero", "unknown", ">=0.0.0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, version.SatisfiesString(tt.installed, tt.constraint))
		})
	}
}

func TestMax(t *testing.T) {
	assert.Equal(t, version.Zero, version.Max())

	best := version.Max(version.Parse("1.2.0"), version.Parse("1.10.0"), version.Parse("1.9.5"))
	assert.Equal(t, "1.10.0", best.String())
}

func TestConstraintString(t *testing.T) {
	assert.Equal(t, "", version.Any.String())
	assert.Equal(t, "~1.2.0", version.ParseConstraint("~1.2").String())
	assert.Equal(t, "1.0.0", version.NewConstraint(types.OperatorAny, "1").String())
}

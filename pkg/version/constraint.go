package version

import (
	"strings"

	mm "github.com/Masterminds/semver/v3"
	"github.com/arthur-debert/silkmod/pkg/types"
)

// Constraint is a single version requirement: exact, >=, <=, ~ or none
type Constraint struct {
	Operator types.ConstraintOperator
	Target   Version
}

// Any is the empty constraint, satisfied by every version
var Any = Constraint{Operator: types.OperatorAny}

// ParseConstraint reads ">=X", "<=X", "~X", "=X" or a bare "X" (exact).
// An empty string yields Any.
func ParseConstraint(raw string) Constraint {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Any
	}

	for _, op := range []types.ConstraintOperator{
		types.OperatorGreaterEqual,
		types.OperatorLessEqual,
		types.OperatorTilde,
		types.OperatorExact,
	} {
		if strings.HasPrefix(raw, string(op)) {
			rest := strings.TrimLeft(strings.TrimPrefix(raw, string(op)), "= ")
			return Constraint{Operator: op, Target: Parse(rest)}
		}
	}

	return Constraint{Operator: types.OperatorExact, Target: Parse(raw)}
}

// NewConstraint builds a constraint from an operator and a raw version
func NewConstraint(op types.ConstraintOperator, raw string) Constraint {
	if op == types.OperatorAny && strings.TrimSpace(raw) == "" {
		return Any
	}
	if op == types.OperatorAny {
		op = types.OperatorExact
	}
	return Constraint{Operator: op, Target: Parse(raw)}
}

// String renders the constraint in dependency-string form
func (c Constraint) String() string {
	switch c.Operator {
	case types.OperatorAny:
		return ""
	case types.OperatorExact:
		return c.Target.String()
	default:
		return string(c.Operator) + c.Target.String()
	}
}

// semverExpression maps the constraint onto Masterminds syntax. The tilde
// operator carries the same meaning there: >=target, <(major, minor+1, 0).
func (c Constraint) semverExpression() string {
	switch c.Operator {
	case types.OperatorGreaterEqual:
		return ">= " + c.Target.String()
	case types.OperatorLessEqual:
		return "<= " + c.Target.String()
	case types.OperatorTilde:
		return "~" + c.Target.String()
	default:
		return "= " + c.Target.String()
	}
}

// Satisfies reports whether installed meets the constraint
func Satisfies(installed Version, c Constraint) bool {
	if c.Operator == types.OperatorAny {
		return true
	}

	mc, err := mm.NewConstraint(c.semverExpression())
	if err != nil {
		return satisfiesByCompare(installed, c)
	}
	return mc.Check(installed.semver())
}

// SatisfiesString parses both sides leniently and checks the constraint
func SatisfiesString(installed, constraint string) bool {
	return Satisfies(Parse(installed), ParseConstraint(constraint))
}

func satisfiesByCompare(installed Version, c Constraint) bool {
	cmp := Compare(installed, c.Target)
	switch c.Operator {
	case types.OperatorGreaterEqual:
		return cmp >= 0
	case types.OperatorLessEqual:
		return cmp <= 0
	case types.OperatorTilde:
		upper := Version{Major: c.Target.Major, Minor: c.Target.Minor + 1}
		return cmp >= 0 && Compare(installed, upper) < 0
	default:
		return cmp == 0
	}
}

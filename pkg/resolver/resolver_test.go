// pkg/resolver/resolver_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test dependency classification, cycles and loader requirements

package resolver

import (
	"encoding/json"
	"testing"

	"github.com/arthur-debert/silkmod/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mod(id, ver string, deps ...string) types.ModDescriptor {
	return types.ModDescriptor{ID: id, Name: id, Version: ver, Dependencies: deps, Enabled: true}
}

func TestResolveClassification(t *testing.T) {
	installed := []types.ModDescriptor{
		mod("Needle", "1.2.0"),
		mod("Thread", "0.9.0"),
	}

	candidate := mod("Silkbind", "1.0.0",
		"needle>=1.0.0", // resolved, case-insensitive
		"Thread>=1.0.0", // mismatch
		"Spool",         // missing
		"?Bell>=2.0",    // optional and absent: dropped
		"Thread?",       // optional but present: resolved
	)

	outcome := Resolve(candidate, installed)

	assert.Equal(t, "Silkbind", outcome.ModID)
	require.Len(t, outcome.Resolved, 2)
	assert.Equal(t, "needle", outcome.Resolved[0].ModID)
	assert.Equal(t, "Thread", outcome.Resolved[1].ModID)

	require.Len(t, outcome.Missing, 1)
	assert.Equal(t, "Spool", outcome.Missing[0].ModID)

	require.Len(t, outcome.Conflicts, 1)
	c := outcome.Conflicts[0]
	assert.Equal(t, types.ConflictVersionMismatch, c.Kind)
	assert.Equal(t, []string{"Silkbind", "Thread"}, c.Mods)
	assert.Contains(t, c.Message, ">=1.0.0")
	assert.True(t, outcome.HasConflictWith("thread"))

	assert.False(t, outcome.IsValid)
}

func TestResolveEachConstraintLandsOnce(t *testing.T) {
	installed := []types.ModDescriptor{mod("A", "1.0"), mod("B", "2.0")}
	deps := []string{"A>=1.0", "B<=1.0", "C", "A~1.0"}

	outcome := Resolve(mod("X", "1.0", deps...), installed)

	total := len(outcome.Resolved) + len(outcome.Missing) + len(outcome.Conflicts)
	assert.Equal(t, len(deps), total)
}

func TestResolveValid(t *testing.T) {
	outcome := Resolve(mod("Silkbind", "1.0", "Needle~1.2"), []types.ModDescriptor{mod("Needle", "1.2.7")})

	assert.True(t, outcome.IsValid)
	assert.Empty(t, outcome.Missing)
	assert.Empty(t, outcome.Conflicts)
}

func TestResolveNoDependencies(t *testing.T) {
	outcome := Resolve(mod("Lonely", "1.0"), nil)

	assert.True(t, outcome.IsValid)
	assert.NotNil(t, outcome.Resolved)
	assert.NotNil(t, outcome.Missing)
	assert.NotNil(t, outcome.Conflicts)
}

func TestResolveCircular(t *testing.T) {
	installed := []types.ModDescriptor{mod("B", "1.0", "a>=1.0")}

	outcome := Resolve(mod("A", "1.0", "B"), installed)

	require.Len(t, outcome.Resolved, 1)
	require.Len(t, outcome.Conflicts, 1)
	assert.Equal(t, types.ConflictCircularDependency, outcome.Conflicts[0].Kind)
	assert.Equal(t, []string{"A", "B"}, outcome.Conflicts[0].Mods)
	assert.False(t, outcome.IsValid)

	t.Run("longer cycles are not reported", func(t *testing.T) {
		installed := []types.ModDescriptor{mod("B", "1.0", "C"), mod("C", "1.0", "A")}
		outcome := Resolve(mod("A", "1.0", "B"), installed)
		assert.Empty(t, outcome.Conflicts)
	})
}

func TestResolveLoaderRequirement(t *testing.T) {
	candidate := mod("Silkbind", "1.0", "BepInEx-BepInExPack-5.4.2100")

	t.Run("unknown loader is missing and requirement recorded", func(t *testing.T) {
		outcome := New().Resolve(candidate, nil)
		assert.Equal(t, ">=5.4.21", outcome.LoaderRequirement)
		require.Len(t, outcome.Missing, 1)
		assert.False(t, outcome.IsValid)
	})

	t.Run("installed loader of unknown version resolves", func(t *testing.T) {
		silksong := mod("Silkbind", "1.0", "BepInEx-BepInExPack_Silksong-5.4.2304")
		outcome := New(WithLoaderVersion(""), WithLoaderInstalled(true)).Resolve(silksong, nil)
		assert.True(t, outcome.IsValid)
		assert.Empty(t, outcome.Missing)
		require.Len(t, outcome.Resolved, 1)
		assert.Equal(t, "BepInExPack_Silksong", outcome.Resolved[0].ModID)
		assert.Equal(t, ">=5.4.23", outcome.LoaderRequirement)
	})

	t.Run("known loader version wins over presence", func(t *testing.T) {
		outcome := New(WithLoaderVersion("5.4.19"), WithLoaderInstalled(true)).Resolve(candidate, nil)
		assert.False(t, outcome.IsValid)
		assert.True(t, outcome.HasConflictWith(LoaderName))
	})

	t.Run("satisfied loader resolves", func(t *testing.T) {
		outcome := New(WithLoaderVersion("5.4.23")).Resolve(candidate, nil)
		assert.True(t, outcome.IsValid)
		require.Len(t, outcome.Resolved, 1)
		assert.Equal(t, "BepInExPack", outcome.Resolved[0].ModID)
	})

	t.Run("old loader is a single mismatch", func(t *testing.T) {
		outcome := New(WithLoaderVersion("5.4.19")).Resolve(candidate, nil)
		assert.False(t, outcome.IsValid)
		require.Len(t, outcome.Conflicts, 1)
		assert.Equal(t, types.ConflictVersionMismatch, outcome.Conflicts[0].Kind)
		assert.True(t, outcome.HasConflictWith(LoaderName))
	})

	t.Run("description requirement enforced", func(t *testing.T) {
		m := mod("Needle", "1.0")
		m.Description = "requires BepInEx 6.0"
		outcome := New(WithLoaderVersion("5.4.21")).Resolve(m, nil)
		assert.False(t, outcome.IsValid)
		require.Len(t, outcome.Conflicts, 1)
		assert.Equal(t, []string{"Needle", LoaderName}, outcome.Conflicts[0].Mods)
	})

	t.Run("description requirement not enforced without loader version", func(t *testing.T) {
		m := mod("Needle", "1.0")
		m.Description = "requires BepInEx 6.0"
		outcome := New().Resolve(m, nil)
		assert.True(t, outcome.IsValid)
		assert.Equal(t, ">=6.0.0", outcome.LoaderRequirement)
	})
}

type panickingExtractor struct{}

func (panickingExtractor) Extract(types.ModDescriptor) (string, bool) {
	panic("extractor exploded")
}

func TestResolveRecoversFromPanic(t *testing.T) {
	r := New(WithExtractor(panickingExtractor{}))

	outcome := r.Resolve(mod("Silkbind", "1.0", "Needle"), []types.ModDescriptor{mod("Needle", "1.0")})

	assert.False(t, outcome.IsValid)
	assert.Empty(t, outcome.Resolved)
	require.Len(t, outcome.Conflicts, 1)
	assert.Equal(t, types.ConflictResolutionError, outcome.Conflicts[0].Kind)
	assert.Contains(t, outcome.Conflicts[0].Message, "extractor exploded")
}

func TestResolveAll(t *testing.T) {
	installed := []types.ModDescriptor{
		mod("A", "1.0", "B>=2.0"),
		mod("B", "1.5"),
		mod("C", "1.0", "A"),
	}

	outcomes := New().ResolveAll(installed)

	require.Len(t, outcomes, 3)
	assert.False(t, outcomes[0].IsValid)
	assert.True(t, outcomes[1].IsValid)
	assert.True(t, outcomes[2].IsValid)
}

func TestOutcomeRoundTrip(t *testing.T) {
	first := Resolve(mod("A", "1.0", "B"), nil)
	second := Resolve(mod("C", "1.0", "D"), []types.ModDescriptor{mod("D", "1.0")})

	data, err := json.Marshal([]types.ResolutionOutcome{first, second})
	require.NoError(t, err)

	var decoded []types.ResolutionOutcome
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)

	assert.Equal(t, first.Missing, decoded[0].Missing)
	assert.Empty(t, decoded[0].Resolved)
	assert.Equal(t, second.Resolved, decoded[1].Resolved)
	assert.Empty(t, decoded[1].Missing)
}

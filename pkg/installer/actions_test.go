// pkg/installer/actions_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Real filesystem in temp dirs
// PURPOSE: Test resolution actions and running whole conflict resolutions

package installer

import (
	"context"
	"testing"

	"github.com/arthur-debert/silkmod/pkg/conflicts"
	"github.com/arthur-debert/silkmod/pkg/errors"
	"github.com/arthur-debert/silkmod/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute(t *testing.T) {
	tests := []struct {
		name   string
		action types.ResolutionAction
		code   errors.ErrorCode
		check  func(t *testing.T, e *env)
	}{
		{
			name:   "rename",
			action: types.ResolutionAction{Type: types.ActionRename, ModID: "Alpha", Path: "Shared.json", Target: "Shared.json.conflict-Alpha"},
			check: func(t *testing.T, e *env) {
				assert.NoFileExists(t, e.modFile("Alpha", "Shared.json"))
				assert.FileExists(t, e.modFile("Alpha", "Shared.json.conflict-Alpha"))
			},
		},
		{
			name:   "delete file",
			action: types.ResolutionAction{Type: types.ActionDelete, ModID: "Alpha", Path: "Shared.json"},
			check: func(t *testing.T, e *env) {
				assert.NoFileExists(t, e.modFile("Alpha", "Shared.json"))
				assert.FileExists(t, e.modFile("Alpha", "Alpha.dll"))
			},
		},
		{
			name:   "delete whole mod",
			action: types.ResolutionAction{Type: types.ActionDelete, ModID: "Alpha"},
			check: func(t *testing.T, e *env) {
				assert.NoDirExists(t, e.paths.ModDir("Alpha"))
				_, err := e.ledger.Get("Alpha")
				assert.True(t, errors.IsErrorCode(err, errors.ErrModNotFound))
			},
		},
		{
			name:   "disable",
			action: types.ResolutionAction{Type: types.ActionDisable, ModID: "Alpha"},
			check: func(t *testing.T, e *env) {
				assert.DirExists(t, e.paths.DisabledModDir("Alpha"))
			},
		},
		{
			name:   "reorder is a no-op",
			action: types.ResolutionAction{Type: types.ActionReorder, ModID: "Alpha"},
			check: func(t *testing.T, e *env) {
				assert.FileExists(t, e.modFile("Alpha", "Shared.json"))
			},
		},
		{
			name:   "merge is manual",
			action: types.ResolutionAction{Type: types.ActionMerge, ModID: "Alpha", Path: "Shared.json"},
			code:   errors.ErrNotImplemented,
		},
		{
			name:   "unknown type",
			action: types.ResolutionAction{Type: "explode", ModID: "Alpha"},
			code:   errors.ErrActionInvalid,
		},
		{
			name:   "escaping path",
			action: types.ResolutionAction{Type: types.ActionDelete, ModID: "Alpha", Path: "../Beta/Beta.dll"},
			code:   errors.ErrActionInvalid,
		},
		{
			name:   "escaping target",
			action: types.ResolutionAction{Type: types.ActionRename, ModID: "Alpha", Path: "Shared.json", Target: "../../x.json"},
			code:   errors.ErrActionInvalid,
		},
		{
			name:   "rename without target",
			action: types.ResolutionAction{Type: types.ActionRename, ModID: "Alpha", Path: "Shared.json"},
			code:   errors.ErrActionInvalid,
		},
		{
			name:   "unknown mod",
			action: types.ResolutionAction{Type: types.ActionRename, ModID: "Ghost", Path: "a", Target: "b"},
			code:   errors.ErrModNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			e.install("Alpha", "1.0.0", nil, map[string]string{"Alpha.dll": "a", "Shared.json": "{}"})
			e.install("Beta", "1.0.0", nil, map[string]string{"Beta.dll": "b"})

			err := e.inst.Execute(context.Background(), tt.action)
			if tt.code != "" {
				require.Error(t, err)
				assert.Equal(t, tt.code, errors.GetErrorCode(err))
				return
			}
			require.NoError(t, err)
			tt.check(t, e)
		})
	}
}

func TestExecute_DryRun(t *testing.T) {
	e := newEnv(t)
	e.install("Alpha", "1.0.0", nil, map[string]string{"Shared.json": "{}"})

	dry := New(e.inst.fs, e.paths, e.ledger, WithDryRun(true))
	require.NoError(t, dry.Execute(context.Background(), types.ResolutionAction{
		Type: types.ActionRename, ModID: "Alpha", Path: "Shared.json", Target: "Shared.json.bak",
	}))
	require.NoError(t, dry.Execute(context.Background(), types.ResolutionAction{
		Type: types.ActionDisable, ModID: "Alpha",
	}))
	assert.FileExists(t, e.modFile("Alpha", "Shared.json"))
	assert.NoFileExists(t, e.modFile("Alpha", "Shared.json.bak"))
}

func TestExecute_DisableChecksInstalledCopy(t *testing.T) {
	e := newEnv(t)
	e.install("Alpha", "1.0.0", nil, map[string]string{"Alpha.dll": "a"})

	err := e.inst.Execute(context.Background(), types.ResolutionAction{
		Type: types.ActionDisable, ModID: "Alpha", Path: "/elsewhere/Alpha",
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrActionInvalid))
	assert.DirExists(t, e.paths.ModDir("Alpha"))

	require.NoError(t, e.inst.Execute(context.Background(), types.ResolutionAction{
		Type: types.ActionDisable, ModID: "Alpha", Path: e.paths.ModDir("Alpha"),
	}))
	assert.DirExists(t, e.paths.DisabledModDir("Alpha"))
}

func TestResolveFileOverlapWithInstaller(t *testing.T) {
	e := newEnv(t)
	e.install("Alpha", "1.0.0", nil, map[string]string{"settings.json": "alpha"})
	e.install("Beta", "1.0.0", nil, map[string]string{"settings.json": "beta"})

	installed, err := e.ledger.List()
	require.NoError(t, err)
	found := conflicts.New(e.inst.fs, conflicts.WithPaths(e.paths)).Detect(installed, nil)
	require.Len(t, found, 1)
	c := found[0]
	assert.Equal(t, types.ConflictFileOverlap, c.Kind)
	assert.Equal(t, types.SeverityWarning, c.Severity)
	require.True(t, c.Resolution.CanAutoResolve)

	require.NoError(t, conflicts.ResolveConflict(context.Background(), c, e.inst, false))

	assert.NoFileExists(t, e.modFile("Alpha", "settings.json"))
	assert.FileExists(t, e.modFile("Alpha", "settings.json"+conflicts.ConflictSuffix+"Alpha"))
	assert.FileExists(t, e.modFile("Beta", "settings.json"))

	installed, err = e.ledger.List()
	require.NoError(t, err)
	assert.Empty(t, conflicts.New(e.inst.fs, conflicts.WithPaths(e.paths)).Detect(installed, nil))
}

// pkg/conflicts/resolve_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test confirmation gating and action execution order

package conflicts

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/arthur-debert/silkmod/pkg/errors"
	"github.com/arthur-debert/silkmod/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingExecutor struct {
	ran    []types.ResolutionAction
	failOn types.ActionType
}

func (r *recordingExecutor) Execute(_ context.Context, action types.ResolutionAction) error {
	if action.Type == r.failOn {
		return stderrors.New("boom")
	}
	r.ran = append(r.ran, action)
	return nil
}

func conflictWith(auto bool, actions ...types.ResolutionAction) types.Conflict {
	return types.Conflict{
		ID:         "file_overlap:Shared.dll",
		Kind:       types.ConflictFileOverlap,
		Severity:   types.SeverityCritical,
		Resolution: &types.Resolution{Strategy: "keep_last", CanAutoResolve: auto, Actions: actions},
	}
}

func TestResolveConflict(t *testing.T) {
	rename := types.ResolutionAction{Type: types.ActionRename, ModID: "A", Path: "x.dll", Target: "x.dll.conflict-A"}
	disable := types.ResolutionAction{Type: types.ActionDisable, ModID: "B"}
	ctx := context.Background()

	t.Run("auto-resolvable runs every action in order", func(t *testing.T) {
		exec := &recordingExecutor{}
		require.NoError(t, ResolveConflict(ctx, conflictWith(true, rename, disable), exec, false))
		assert.Equal(t, []types.ResolutionAction{rename, disable}, exec.ran)
	})

	t.Run("needs confirmation", func(t *testing.T) {
		exec := &recordingExecutor{}
		err := ResolveConflict(ctx, conflictWith(false, rename), exec, false)
		require.Error(t, err)
		assert.True(t, stderrors.Is(err, ErrResolutionRequiresConfirmation))
		assert.True(t, errors.IsErrorCode(err, errors.ErrNeedsConfirmation))
		assert.Empty(t, exec.ran)
	})

	t.Run("confirmed runs", func(t *testing.T) {
		exec := &recordingExecutor{}
		require.NoError(t, ResolveConflict(ctx, conflictWith(false, rename), exec, true))
		assert.Len(t, exec.ran, 1)
	})

	t.Run("stops at first failure", func(t *testing.T) {
		exec := &recordingExecutor{failOn: types.ActionRename}
		err := ResolveConflict(ctx, conflictWith(true, rename, disable), exec, false)
		assert.True(t, errors.IsErrorCode(err, errors.ErrActionExecute))
		assert.Empty(t, exec.ran)
	})

	t.Run("no resolution", func(t *testing.T) {
		err := ResolveConflict(ctx, types.Conflict{ID: "x"}, &recordingExecutor{}, true)
		assert.True(t, errors.IsErrorCode(err, errors.ErrActionInvalid))
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		err := ResolveConflict(cancelled, conflictWith(true, rename), &recordingExecutor{}, false)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestAutoResolvable(t *testing.T) {
	rename := types.ResolutionAction{Type: types.ActionRename}
	list := []types.Conflict{
		conflictWith(true, rename),
		conflictWith(false, rename),
		conflictWith(true),
		{ID: "bare"},
	}
	assert.Len(t, AutoResolvable(list), 1)
}

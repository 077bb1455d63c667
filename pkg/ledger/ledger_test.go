// pkg/ledger/ledger_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: In-memory FS
// PURPOSE: Test ledger persistence, supersession and lookups

package ledger

import (
	"testing"
	"time"

	"github.com/arthur-debert/silkmod/pkg/errors"
	"github.com/arthur-debert/silkmod/pkg/filesystem"
	"github.com/arthur-debert/silkmod/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ledgerPath = "/data/silkmod/installed.json"

func newTestLedger(t *testing.T) (Ledger, types.FS) {
	t.Helper()
	fs := filesystem.NewMemory()
	l := New(fs, ledgerPath)
	l.(*fileLedger).now = func() time.Time {
		return time.Date(2025, 9, 4, 12, 0, 0, 0, time.UTC)
	}
	return l, fs
}

func TestLoadMissingLedgerIsEmpty(t *testing.T) {
	l, _ := newTestLedger(t)

	mods, err := l.Load()
	require.NoError(t, err)
	assert.Empty(t, mods)
	assert.NotNil(t, mods)
}

func TestUpsertAndGet(t *testing.T) {
	l, _ := newTestLedger(t)

	require.NoError(t, l.Upsert(types.ModDescriptor{ID: "Silkbind", Version: "1.0.0", Enabled: true}))
	require.NoError(t, l.Upsert(types.ModDescriptor{ID: "Needle", Version: "0.2.0", Enabled: true}))

	mod, err := l.Get("silkbind")
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", mod.Version)
	require.NotNil(t, mod.InstalledAt)
	assert.Equal(t, 2025, mod.InstalledAt.Year())

	t.Run("supersedes by id ignoring case", func(t *testing.T) {
		require.NoError(t, l.Upsert(types.ModDescriptor{ID: "SILKBIND", Version: "1.1.0"}))

		mods, err := l.List()
		require.NoError(t, err)
		require.Len(t, mods, 2)
		assert.Equal(t, "Needle", mods[0].ID)
		assert.Equal(t, "SILKBIND", mods[1].ID)
		assert.Equal(t, "1.1.0", mods[1].Version)
	})

	t.Run("rejects empty id", func(t *testing.T) {
		err := l.Upsert(types.ModDescriptor{Version: "1.0.0"})
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	})
}

func TestRemove(t *testing.T) {
	l, _ := newTestLedger(t)
	require.NoError(t, l.Save([]types.ModDescriptor{{ID: "A"}, {ID: "B"}}))

	require.NoError(t, l.Remove("a"))
	mods, err := l.List()
	require.NoError(t, err)
	require.Len(t, mods, 1)
	assert.Equal(t, "B", mods[0].ID)

	err = l.Remove("A")
	assert.True(t, errors.IsErrorCode(err, errors.ErrModNotFound))
}

func TestGetUnknown(t *testing.T) {
	l, _ := newTestLedger(t)

	_, err := l.Get("ghost")
	assert.True(t, errors.IsErrorCode(err, errors.ErrModNotFound))
	assert.Equal(t, "ghost", errors.GetErrorDetails(err)["id"])
}

func TestSaveWritesWholesale(t *testing.T) {
	l, fs := newTestLedger(t)

	require.NoError(t, l.Save([]types.ModDescriptor{{ID: "Zeta"}, {ID: "alpha"}}))

	_, err := fs.Stat(ledgerPath + ".tmp")
	assert.Error(t, err, "temporary file should be renamed away")

	other := New(fs, ledgerPath)
	mods, err := other.Load()
	require.NoError(t, err)
	require.Len(t, mods, 2)
	assert.Equal(t, "alpha", mods[0].ID)
	assert.Equal(t, "Zeta", mods[1].ID)
	assert.Equal(t, ledgerPath, other.Path())
}

func TestCorruptLedger(t *testing.T) {
	l, fs := newTestLedger(t)
	require.NoError(t, fs.MkdirAll("/data/silkmod", 0755))
	require.NoError(t, fs.WriteFile(ledgerPath, []byte("{not json"), 0644))

	_, err := l.Load()
	assert.True(t, errors.IsErrorCode(err, errors.ErrLedger))
}

// pkg/filesystem/filesystem_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Real filesystem (temp dirs), afero in-memory filesystem
// PURPOSE: Test both FS implementations and the walking helpers

package filesystem

import (
	"path/filepath"
	"testing"

	"github.com/arthur-debert/silkmod/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseFS(t *testing.T, fs types.FS, root string) {
	t.Helper()

	dir := filepath.Join(root, "BepInEx", "plugins", "Silkbind")
	require.NoError(t, fs.MkdirAll(dir, 0755))
	require.NoError(t, fs.WriteFile(filepath.Join(dir, "Silkbind.dll"), []byte("dll"), 0644))

	content, err := fs.ReadFile(filepath.Join(dir, "Silkbind.dll"))
	require.NoError(t, err)
	assert.Equal(t, []byte("dll"), content)

	_, err = fs.ReadFile(dir)
	assert.Error(t, err, "reading a directory should fail")

	renamed := dir + ".disabled"
	require.NoError(t, fs.Rename(dir, renamed))
	exists, err := Exists(fs, dir)
	require.NoError(t, err)
	assert.False(t, exists)

	entries, err := fs.ReadDir(renamed)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Silkbind.dll", entries[0].Name())

	require.NoError(t, fs.RemoveAll(renamed))
	exists, err = Exists(fs, renamed)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestOSFileSystem(t *testing.T) {
	exerciseFS(t, NewOS(), t.TempDir())
}

func TestMemoryFileSystem(t *testing.T) {
	exerciseFS(t, NewMemory(), "/game")
}

func TestListFiles(t *testing.T) {
	fs := NewMemory()
	root := "/game/BepInEx/plugins/Needlework"
	require.NoError(t, fs.MkdirAll(filepath.Join(root, "assets"), 0755))
	require.NoError(t, fs.WriteFile(filepath.Join(root, "Needlework.dll"), []byte("a"), 0644))
	require.NoError(t, fs.WriteFile(filepath.Join(root, "assets", "thread.png"), []byte("b"), 0644))

	files, err := ListFiles(fs, root)
	require.NoError(t, err)
	assert.Equal(t, []string{"Needlework.dll", "assets/thread.png"}, files)

	files, err = ListFiles(fs, "/game/missing")
	require.NoError(t, err)
	assert.Empty(t, files)
}

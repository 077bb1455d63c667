package filesystem

import (
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/silkmod/pkg/types"
)

// ListFiles returns every regular file below root as a slash-separated path
// relative to root, sorted. A missing root yields no files.
func ListFiles(fsys types.FS, root string) ([]string, error) {
	var files []string
	if err := walk(fsys, root, "", &files); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func walk(fsys types.FS, root, rel string, files *[]string) error {
	entries, err := fsys.ReadDir(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return err
	}
	for _, entry := range entries {
		child := path.Join(rel, entry.Name())
		if entry.IsDir() {
			if err := walk(fsys, root, child, files); err != nil {
				return err
			}
			continue
		}
		*files = append(*files, child)
	}
	return nil
}

// Exists reports whether name exists, treating any stat error other than
// not-exist as existence being unknown (false with the error)
func Exists(fsys types.FS, name string) (bool, error) {
	_, err := fsys.Stat(name)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

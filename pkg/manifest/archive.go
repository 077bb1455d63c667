package manifest

import (
	"archive/zip"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/silkmod/pkg/errors"
	"github.com/arthur-debert/silkmod/pkg/logging"
	"github.com/arthur-debert/silkmod/pkg/types"
)

// MetadataFiles ship with every Thunderstore package and carry no game
// content, so they never count as overlapping payload
var MetadataFiles = map[string]bool{
	"manifest.json": true,
	"icon.png":      true,
	"readme.md":     true,
	"changelog.md":  true,
	"license":       true,
	"license.md":    true,
	"license.txt":   true,
}

// IsMetadataFile reports whether rel (relative to the mod folder) is package metadata
func IsMetadataFile(rel string) bool {
	if strings.Contains(rel, "/") {
		return false
	}
	return MetadataFiles[strings.ToLower(rel)]
}

// Archive is an opened mod package
type Archive struct {
	Path       string
	Descriptor types.ModDescriptor

	// Files are payload paths relative to the manifest's directory, sorted
	Files []string

	// HasManifest is false when Descriptor came from the file name
	HasManifest bool

	reader *zip.ReadCloser
	prefix string
}

// OpenArchive opens a mod zip and reads its manifest
func OpenArchive(archivePath string) (*Archive, error) {
	logger := logging.GetLogger("manifest.archive")

	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrArchive, "failed to open archive %s", archivePath).
			WithDetail("path", archivePath)
	}

	a := &Archive{Path: archivePath, reader: zr}

	manifestEntry := findManifest(zr.File)
	if manifestEntry != nil {
		a.prefix = path.Dir(manifestEntry.Name)
		if a.prefix == "." {
			a.prefix = ""
		}
		data, err := readEntry(manifestEntry)
		if err != nil {
			_ = zr.Close()
			return nil, errors.Wrapf(err, errors.ErrArchive, "failed to read %s", manifestEntry.Name)
		}
		desc, err := ParseManifest(data)
		if err != nil {
			_ = zr.Close()
			return nil, errors.Wrapf(err, errors.ErrManifestParse, "invalid manifest in %s", filepath.Base(archivePath)).
				WithDetail("path", archivePath)
		}
		a.Descriptor = desc
		a.HasManifest = true
	} else {
		a.Descriptor = FromFileName(archivePath)
		logger.Debug().
			Str("archive", archivePath).
			Str("id", a.Descriptor.ID).
			Msg("No manifest found, using file name")
	}

	for _, f := range zr.File {
		rel, ok := a.relative(f)
		if !ok {
			continue
		}
		a.Files = append(a.Files, rel)
	}
	sort.Strings(a.Files)

	logger.Debug().
		Str("archive", archivePath).
		Str("id", a.Descriptor.ID).
		Int("files", len(a.Files)).
		Msg("Archive opened")

	return a, nil
}

// ReadArchive opens, reads and closes a mod zip
func ReadArchive(archivePath string) (types.ModDescriptor, []string, error) {
	a, err := OpenArchive(archivePath)
	if err != nil {
		return types.ModDescriptor{}, nil, err
	}
	defer func() { _ = a.Close() }()
	return a.Descriptor, a.Files, nil
}

// Close releases the underlying zip reader
func (a *Archive) Close() error {
	if a.reader == nil {
		return nil
	}
	err := a.reader.Close()
	a.reader = nil
	return err
}

// ExtractTo writes every payload file below dest through fsys
func (a *Archive) ExtractTo(fsys types.FS, dest string) error {
	if a.reader == nil {
		return errors.New(errors.ErrArchive, "archive is closed")
	}

	for _, f := range a.reader.File {
		rel, ok := a.relative(f)
		if !ok {
			continue
		}
		target := filepath.Join(dest, filepath.FromSlash(rel))

		if err := fsys.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", filepath.Dir(target))
		}
		data, err := readEntry(f)
		if err != nil {
			return errors.Wrapf(err, errors.ErrArchive, "failed to read %s", f.Name)
		}
		if err := fsys.WriteFile(target, data, 0644); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", target)
		}
	}
	return nil
}

// relative maps a zip entry to its payload path. Directories, entries
// outside the manifest's directory and unsafe names are skipped.
func (a *Archive) relative(f *zip.File) (string, bool) {
	if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
		return "", false
	}
	name := path.Clean(strings.ReplaceAll(f.Name, "\\", "/"))
	if a.prefix != "" {
		if !strings.HasPrefix(name, a.prefix+"/") {
			return "", false
		}
		name = strings.TrimPrefix(name, a.prefix+"/")
	}
	if name == "." || path.IsAbs(name) || name == ".." || strings.HasPrefix(name, "../") {
		return "", false
	}
	return name, true
}

// findManifest looks at the root first, then one directory deep
func findManifest(files []*zip.File) *zip.File {
	var nested *zip.File
	for _, f := range files {
		name := strings.ReplaceAll(f.Name, "\\", "/")
		switch strings.Count(name, "/") {
		case 0:
			if strings.EqualFold(name, FileName) {
				return f
			}
		case 1:
			if nested == nil && strings.EqualFold(path.Base(name), FileName) {
				nested = f
			}
		}
	}
	return nested
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}

// IsArchive reports whether path looks like a mod package
func IsArchive(p string) bool {
	info, err := os.Stat(p)
	if err != nil || info.IsDir() {
		return false
	}
	return strings.EqualFold(filepath.Ext(p), ".zip")
}

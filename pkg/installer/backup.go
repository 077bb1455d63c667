package installer

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arthur-debert/silkmod/pkg/errors"
	"github.com/arthur-debert/silkmod/pkg/filesystem"
	"github.com/arthur-debert/silkmod/pkg/logging"
	"github.com/arthur-debert/silkmod/pkg/paths"
	"github.com/arthur-debert/silkmod/pkg/types"
	"github.com/arthur-debert/synthfs/pkg/synthfs"
	"github.com/arthur-debert/synthfs/pkg/synthfs/core"
	sfs "github.com/arthur-debert/synthfs/pkg/synthfs/filesystem"
	"github.com/arthur-debert/synthfs/pkg/synthfs/operations"
	"github.com/rs/zerolog"
)

const snapshotLayout = "20060102-150405"

// Snapshot is one backup of mod folders
type Snapshot struct {
	ID        string    `json:"id"`
	Dir       string    `json:"dir"`
	CreatedAt time.Time `json:"created_at"`
	Mods      []string  `json:"mods"`

	// Files are relative to Dir, prefixed with the mod id
	Files []string `json:"files"`

	DryRun bool `json:"dry_run"`
}

// snapshotFile is one file to write into a snapshot
type snapshotFile struct {
	target  string
	content []byte
	mode    fs.FileMode
}

type snapshotWriter interface {
	Write(ctx context.Context, dir string, files []snapshotFile) error
}

// Backup copies the folders of the given mods, or of every installed mod
// when ids is empty, into a new timestamped directory under the backups
// directory. The ledger file is copied alongside.
func (i *Installer) Backup(ctx context.Context, ids []string) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	defer logging.LogOperationStart(i.logger, "backup")()

	installed, err := i.ledger.Load()
	if err != nil {
		return Snapshot{}, err
	}
	mods := installed
	if len(ids) > 0 {
		mods = make([]types.ModDescriptor, 0, len(ids))
		for _, id := range ids {
			m, ok := types.FindMod(installed, id)
			if !ok {
				return Snapshot{}, errors.Newf(errors.ErrModNotFound, "mod %q is not installed", id).
					WithDetail("id", id)
			}
			mods = append(mods, m)
		}
	}

	created := i.now()
	snap := Snapshot{
		ID:        created.UTC().Format(snapshotLayout),
		CreatedAt: created,
		DryRun:    i.dryRun,
	}
	snap.Dir = i.uniqueSnapshotDir(snap.ID)
	snap.ID = filepath.Base(snap.Dir)

	var files []snapshotFile
	for _, m := range mods {
		dir := i.currentDir(m)
		rels, err := filesystem.ListFiles(i.fs, dir)
		if err != nil {
			return Snapshot{}, errors.Wrapf(err, errors.ErrFileAccess, "failed to list %s", dir)
		}
		snap.Mods = append(snap.Mods, m.ID)
		for _, rel := range rels {
			name := m.ID + "/" + rel
			snap.Files = append(snap.Files, name)
			if i.dryRun {
				continue
			}
			data, err := i.fs.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
			if err != nil {
				return Snapshot{}, errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", rel).
					WithDetail("mod", m.ID)
			}
			files = append(files, snapshotFile{
				target:  filepath.Join(snap.Dir, filepath.FromSlash(name)),
				content: data,
				mode:    0644,
			})
		}
	}

	if data, err := i.fs.ReadFile(i.ledger.Path()); err == nil {
		snap.Files = append(snap.Files, paths.LedgerFileName)
		files = append(files, snapshotFile{
			target:  filepath.Join(snap.Dir, paths.LedgerFileName),
			content: data,
			mode:    0644,
		})
	}

	logger := i.logger.With().Str("snapshot", snap.ID).Logger()
	if i.dryRun {
		logger.Info().Int("files", len(snap.Files)).Str("dir", snap.Dir).Msg("Dry run: would back up")
		return snap, nil
	}

	if err := i.writer.Write(ctx, snap.Dir, files); err != nil {
		return Snapshot{}, err
	}
	logger.Info().Int("files", len(files)).Str("dir", snap.Dir).Msg("Backup written")
	return snap, nil
}

// uniqueSnapshotDir appends a counter when a snapshot with the same
// timestamp already exists
func (i *Installer) uniqueSnapshotDir(id string) string {
	base := filepath.Join(i.paths.BackupsDir(), id)
	dir := base
	for n := 1; ; n++ {
		exists, err := filesystem.Exists(i.fs, dir)
		if err != nil || !exists {
			return dir
		}
		dir = fmt.Sprintf("%s-%d", base, n)
	}
}

// restore copies a snapshot's copy of mod back into dir
func (i *Installer) restore(snap Snapshot, mod types.ModDescriptor, dir string) error {
	prefix := mod.ID + "/"
	for _, name := range snap.Files {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		rel := filepath.FromSlash(strings.TrimPrefix(name, prefix))
		data, err := i.fs.ReadFile(filepath.Join(snap.Dir, filepath.FromSlash(name)))
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to read backup of %s", name)
		}
		target := filepath.Join(dir, rel)
		if err := i.fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", filepath.Dir(target))
		}
		if err := i.fs.WriteFile(target, data, 0644); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "failed to restore %s", target)
		}
	}
	return nil
}

// newSnapshotWriter writes through synthfs on the real filesystem and
// straight through fsys otherwise, so snapshots land next to the mods
func newSnapshotWriter(fsys types.FS) snapshotWriter {
	if filesystem.IsOS(fsys) {
		return newSynthfsWriter(fsys)
	}
	return &fsWriter{fs: fsys}
}

// fsWriter writes snapshot files one by one through a types.FS
type fsWriter struct {
	fs types.FS
}

func (w *fsWriter) Write(ctx context.Context, dir string, files []snapshotFile) error {
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !within(dir, f.target) {
			return errors.Newf(errors.ErrPermission, "backup target %s is outside %s", f.target, dir)
		}
		if err := w.fs.MkdirAll(filepath.Dir(f.target), 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", filepath.Dir(f.target))
		}
		if err := w.fs.WriteFile(f.target, f.content, f.mode); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "failed to write backup %s", dir)
		}
	}
	return nil
}

// synthfsWriter writes snapshot files to disk as a single synthfs pipeline
type synthfsWriter struct {
	dirs       types.FS
	filesystem synthfs.FileSystem
	logger     zerolog.Logger
}

func newSynthfsWriter(dirs types.FS) *synthfsWriter {
	return &synthfsWriter{
		dirs:       dirs,
		filesystem: sfs.NewOSFileSystem("/"),
		logger:     logging.GetLogger("installer.backup"),
	}
}

func (w *synthfsWriter) Write(ctx context.Context, dir string, files []snapshotFile) error {
	if len(files) == 0 {
		w.logger.Debug().Str("dir", dir).Msg("Nothing to back up")
		return nil
	}

	// Parent directories are created up front; the pipeline only creates files.
	created := map[string]bool{}
	for _, f := range files {
		parent := filepath.Dir(f.target)
		if created[parent] {
			continue
		}
		if err := w.dirs.MkdirAll(parent, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", parent)
		}
		created[parent] = true
	}

	pipeline := synthfs.NewMemPipeline()
	for _, f := range files {
		op, err := w.createFile(dir, f)
		if err != nil {
			return err
		}
		if err := pipeline.Add(op); err != nil {
			return errors.Wrapf(err, errors.ErrActionExecute, "failed to add %s to backup", f.target)
		}
	}

	result := synthfs.NewExecutor().Run(ctx, pipeline, w.filesystem)
	if result.GetError() != nil {
		w.logger.Error().Err(result.GetError()).Str("dir", dir).Msg("Backup pipeline failed")
		return errors.Wrapf(result.GetError(), errors.ErrFileWrite, "failed to write backup %s", dir)
	}
	return nil
}

func (w *synthfsWriter) createFile(dir string, f snapshotFile) (synthfs.Operation, error) {
	if !within(dir, f.target) {
		return nil, errors.Newf(errors.ErrPermission, "backup target %s is outside %s", f.target, dir)
	}
	abs, err := filepath.Abs(f.target)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "failed to resolve %s", f.target)
	}
	relPath, err := filepath.Rel("/", abs)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "failed to convert path: %s", f.target)
	}

	opID := core.OperationID("backup-" + strings.ReplaceAll(relPath, string(os.PathSeparator), "-"))
	op := operations.NewCreateFileOperation(opID, relPath)
	op.SetItem(&fileItem{path: relPath, content: f.content, mode: f.mode})
	return synthfs.NewOperationsPackageAdapter(op), nil
}

// fileItem carries content and mode into a synthfs create-file operation
type fileItem struct {
	path    string
	content []byte
	mode    fs.FileMode
}

func (f *fileItem) Path() string       { return f.path }
func (f *fileItem) Type() string       { return "file" }
func (f *fileItem) Content() []byte    { return f.content }
func (f *fileItem) Mode() fs.FileMode  { return f.mode }
func (f *fileItem) IsDir() bool        { return false }
func (f *fileItem) ModTime() time.Time { return time.Now() }
func (f *fileItem) Size() int64        { return int64(len(f.content)) }

package ledger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/arthur-debert/silkmod/pkg/errors"
	"github.com/arthur-debert/silkmod/pkg/logging"
	"github.com/arthur-debert/silkmod/pkg/types"
)

// Ledger records which mods are installed
type Ledger interface {
	// Load reads every record; a missing ledger file is an empty ledger
	Load() ([]types.ModDescriptor, error)
	// Save replaces the ledger contents
	Save(mods []types.ModDescriptor) error
	// Get finds a record by id, ignoring case
	Get(id string) (types.ModDescriptor, error)
	// Upsert adds a record or supersedes the one with the same id
	Upsert(mod types.ModDescriptor) error
	// Remove deletes the record with the given id
	Remove(id string) error
	// List returns the records sorted by id
	List() ([]types.ModDescriptor, error)
	// Path is the ledger file location
	Path() string
}

type fileLedger struct {
	fs   types.FS
	path string
	now  func() time.Time
	mu   sync.Mutex
}

// New creates a ledger backed by the JSON file at path
func New(fs types.FS, path string) Ledger {
	return &fileLedger{fs: fs, path: path, now: time.Now}
}

func (l *fileLedger) Path() string { return l.path }

func (l *fileLedger) Load() ([]types.ModDescriptor, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load()
}

func (l *fileLedger) load() ([]types.ModDescriptor, error) {
	data, err := l.fs.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []types.ModDescriptor{}, nil
		}
		return nil, errors.Wrapf(err, errors.ErrLedger, "failed to read ledger %s", l.path)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return []types.ModDescriptor{}, nil
	}

	var mods []types.ModDescriptor
	if err := json.Unmarshal(data, &mods); err != nil {
		return nil, errors.Wrapf(err, errors.ErrLedger, "ledger %s is corrupt", l.path).
			WithDetail("path", l.path)
	}
	return mods, nil
}

func (l *fileLedger) Save(mods []types.ModDescriptor) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.save(mods)
}

func (l *fileLedger) save(mods []types.ModDescriptor) error {
	if mods == nil {
		mods = []types.ModDescriptor{}
	}
	sort.SliceStable(mods, func(i, j int) bool {
		return strings.ToLower(mods[i].ID) < strings.ToLower(mods[j].ID)
	})

	data, err := json.MarshalIndent(mods, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrLedger, "failed to encode ledger")
	}

	if err := l.fs.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", filepath.Dir(l.path))
	}

	tmp := l.path + ".tmp"
	if err := l.fs.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", tmp)
	}
	if err := l.fs.Rename(tmp, l.path); err != nil {
		_ = l.fs.Remove(tmp)
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to replace ledger %s", l.path)
	}

	logger := logging.GetLogger("ledger")
	logger.Debug().
		Str("path", l.path).
		Int("mods", len(mods)).
		Msg("Ledger saved")
	return nil
}

func (l *fileLedger) Get(id string) (types.ModDescriptor, error) {
	mods, err := l.Load()
	if err != nil {
		return types.ModDescriptor{}, err
	}
	if mod, ok := types.FindMod(mods, id); ok {
		return mod, nil
	}
	return types.ModDescriptor{}, errors.Newf(errors.ErrModNotFound, "mod %q is not installed", id).
		WithDetail("id", id)
}

func (l *fileLedger) Upsert(mod types.ModDescriptor) error {
	if strings.TrimSpace(mod.ID) == "" {
		return errors.New(errors.ErrInvalidInput, "cannot record a mod without an id")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	mods, err := l.load()
	if err != nil {
		return err
	}

	if mod.InstalledAt == nil {
		now := l.now().UTC()
		mod.InstalledAt = &now
	}

	replaced := false
	for i := range mods {
		if mods[i].MatchesID(mod.ID) {
			mods[i] = mod
			replaced = true
			break
		}
	}
	if !replaced {
		mods = append(mods, mod)
	}
	return l.save(mods)
}

func (l *fileLedger) Remove(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	mods, err := l.load()
	if err != nil {
		return err
	}

	kept := mods[:0]
	found := false
	for _, m := range mods {
		if m.MatchesID(id) {
			found = true
			continue
		}
		kept = append(kept, m)
	}
	if !found {
		return errors.Newf(errors.ErrModNotFound, "mod %q is not installed", id).
			WithDetail("id", id)
	}
	return l.save(kept)
}

func (l *fileLedger) List() ([]types.ModDescriptor, error) {
	mods, err := l.Load()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(mods, func(i, j int) bool {
		return strings.ToLower(mods[i].ID) < strings.ToLower(mods[j].ID)
	})
	return mods, nil
}

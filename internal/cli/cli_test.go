// internal/cli/cli_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Real filesystem in temp dirs, httptest servers
// PURPOSE: Test the command tree end to end with JSON output

package cli

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arthur-debert/silkmod/pkg/errors"
	"github.com/arthur-debert/silkmod/pkg/installer"
	"github.com/arthur-debert/silkmod/pkg/paths"
	"github.com/arthur-debert/silkmod/pkg/remote"
	"github.com/arthur-debert/silkmod/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cliEnv struct {
	t       *testing.T
	root    string
	gameDir string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	root := t.TempDir()
	t.Setenv(paths.EnvDataDir, filepath.Join(root, "data"))
	t.Setenv(paths.EnvConfigDir, filepath.Join(root, "config"))
	t.Setenv(paths.EnvCacheDir, filepath.Join(root, "cache"))
	t.Setenv(paths.EnvGameDir, filepath.Join(root, "game"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(root, "state"))
	t.Setenv("NO_COLOR", "1")
	return &cliEnv{t: t, root: root, gameDir: filepath.Join(root, "game")}
}

// run executes the command tree and returns what it wrote
func (e *cliEnv) run(args ...string) (string, error) {
	e.t.Helper()
	rootCmd := NewRootCmd()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// runJSON executes with --format json and decodes the output into v
func (e *cliEnv) runJSON(v interface{}, args ...string) {
	e.t.Helper()
	out, err := e.run(append(args, "--format", "json")...)
	require.NoError(e.t, err, out)
	require.NoError(e.t, json.Unmarshal([]byte(out), v), out)
}

func zipBytes(t *testing.T, id, ver string, deps []string, files map[string]string) []byte {
	t.Helper()
	manifest, err := json.Marshal(map[string]interface{}{
		"name":           id,
		"version_number": ver,
		"dependencies":   deps,
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	entries := map[string]string{"manifest.json": string(manifest)}
	for name, content := range files {
		entries[name] = content
	}
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func (e *cliEnv) archive(id, ver string, deps []string, files map[string]string) string {
	e.t.Helper()
	p := filepath.Join(e.root, "downloads", id+"-"+ver+".zip")
	require.NoError(e.t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(e.t, os.WriteFile(p, zipBytes(e.t, id, ver, deps, files), 0644))
	return p
}

func (e *cliEnv) list() []types.ModDescriptor {
	e.t.Helper()
	var mods []types.ModDescriptor
	e.runJSON(&mods, "list")
	return mods
}

func TestListEmpty(t *testing.T) {
	e := newCLIEnv(t)
	assert.Empty(t, e.list())

	out, err := e.run("list", "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, MsgNoMods)
}

func TestInstallLifecycle(t *testing.T) {
	e := newCLIEnv(t)

	var result installer.InstallResult
	e.runJSON(&result, "install", e.archive("Needle", "1.0.0", nil, map[string]string{"Needle.dll": "x"}))
	assert.Equal(t, "Needle", result.Mod.ID)
	assert.True(t, result.Outcome.IsValid)
	assert.FileExists(t, filepath.Join(e.gameDir, "BepInEx", "plugins", "Needle", "Needle.dll"))

	mods := e.list()
	require.Len(t, mods, 1)
	assert.True(t, mods[0].Enabled)

	out, err := e.run("list", "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Needle")
	assert.Contains(t, out, "enabled")

	_, err = e.run("disable", "Needle")
	require.NoError(t, err)
	mods = e.list()
	require.Len(t, mods, 1)
	assert.False(t, mods[0].Enabled)
	assert.DirExists(t, filepath.Join(e.gameDir, "BepInEx", "plugins", "Needle.disabled"))

	_, err = e.run("enable", "needle")
	require.NoError(t, err)
	assert.True(t, e.list()[0].Enabled)

	out, err = e.run("uninstall", "Needle", "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Uninstalled Needle")
	assert.Empty(t, e.list())
	assert.NoDirExists(t, filepath.Join(e.gameDir, "BepInEx", "plugins", "Needle"))
}

func TestInstallMissingDependency(t *testing.T) {
	e := newCLIEnv(t)

	_, err := e.run("install", e.archive("Spool", "1.0.0", []string{"Needle>=1.0.0"}, nil))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrMissingDependency))
	assert.Empty(t, e.list())

	_, err = e.run("install", "--force", e.archive("Spool", "1.0.0", []string{"Needle>=1.0.0"}, nil))
	require.NoError(t, err)
	assert.Len(t, e.list(), 1)
}

func TestInstallNeedsLoaderInGameFolder(t *testing.T) {
	e := newCLIEnv(t)
	deps := []string{"BepInEx-BepInExPack_Silksong-5.4.2304"}

	_, err := e.run("install", e.archive("Spool", "1.0.0", deps, nil))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrMissingDependency))

	core := filepath.Join(e.gameDir, "BepInEx", "core")
	require.NoError(t, os.MkdirAll(core, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(core, "BepInEx.dll"), []byte("dll"), 0644))

	_, err = e.run("install", e.archive("Spool", "1.0.0", deps, nil))
	require.NoError(t, err)
	assert.Len(t, e.list(), 1)
}

func TestInstallDryRun(t *testing.T) {
	e := newCLIEnv(t)

	var result installer.InstallResult
	e.runJSON(&result, "install", "--dry-run", e.archive("Needle", "1.0.0", nil, nil))
	assert.True(t, result.DryRun)
	assert.Empty(t, e.list())
}

func TestUninstallUnknownMod(t *testing.T) {
	e := newCLIEnv(t)
	_, err := e.run("uninstall", "Ghost")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrModNotFound))
}

func TestResolve(t *testing.T) {
	e := newCLIEnv(t)
	_, err := e.run("install", e.archive("Needle", "1.2.0", nil, nil))
	require.NoError(t, err)

	tests := []struct {
		name     string
		deps     []string
		valid    bool
		resolved int
		missing  int
	}{
		{"satisfied", []string{"Needle>=1.0.0"}, true, 1, 0},
		{"mismatch", []string{"Needle>=2.0.0"}, false, 0, 0},
		{"missing", []string{"Thread"}, false, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var outcome types.ResolutionOutcome
			e.runJSON(&outcome, "resolve", e.archive("Spool-"+tt.name, "1.0.0", tt.deps, nil))
			assert.Equal(t, tt.valid, outcome.IsValid)
			assert.Len(t, outcome.Resolved, tt.resolved)
			assert.Len(t, outcome.Missing, tt.missing)
		})
	}

	t.Run("installed mod by id", func(t *testing.T) {
		var outcome types.ResolutionOutcome
		e.runJSON(&outcome, "resolve", "Needle")
		assert.Equal(t, "Needle", outcome.ModID)
		assert.True(t, outcome.IsValid)
	})
}

func TestConflicts(t *testing.T) {
	e := newCLIEnv(t)
	_, err := e.run("install", e.archive("Needle", "1.0.0", nil, map[string]string{"settings.json": "{}"}))
	require.NoError(t, err)
	_, err = e.run("install", e.archive("Thread", "1.0.0", nil, map[string]string{"settings.json": "{}"}))
	require.NoError(t, err, "warning level overlaps do not block installs")

	var result conflictsResult
	e.runJSON(&result, "conflicts")
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, types.ConflictFileOverlap, result.Conflicts[0].Kind)
	assert.Equal(t, types.SeverityWarning, result.Conflicts[0].Severity)
	assert.Equal(t, []string{"Needle", "Thread"}, result.Conflicts[0].Mods)

	t.Run("candidate", func(t *testing.T) {
		var preview conflictsResult
		e.runJSON(&preview, "conflicts", "--candidate", e.archive("Spool", "1.0.0", nil, map[string]string{"Thread.dll": "x"}))
		assert.Empty(t, preview.Conflicts)

		_, err := e.run("install", e.archive("Loom", "1.0.0", nil, map[string]string{"Loom.dll": "x"}))
		require.NoError(t, err)
		e.runJSON(&preview, "conflicts", "--candidate", e.archive("Spool", "1.0.0", nil, map[string]string{"Loom.dll": "y"}))
		require.Len(t, preview.Conflicts, 1)
		assert.Equal(t, types.SeverityCritical, preview.Conflicts[0].Severity)
	})

	t.Run("fix renames the losing copy", func(t *testing.T) {
		var fixed conflictsResult
		e.runJSON(&fixed, "conflicts", "--fix")
		require.Len(t, fixed.Resolved, 1)

		plugins := filepath.Join(e.gameDir, "BepInEx", "plugins")
		assert.NoFileExists(t, filepath.Join(plugins, "Needle", "settings.json"))
		assert.FileExists(t, filepath.Join(plugins, "Needle", "settings.json.conflict-Needle"))
		assert.FileExists(t, filepath.Join(plugins, "Thread", "settings.json"))

		e.runJSON(&fixed, "conflicts")
		assert.Empty(t, fixed.Conflicts)
	})

	t.Run("fix with candidate is rejected", func(t *testing.T) {
		_, err := e.run("conflicts", "--fix", "--candidate", "x.zip")
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	})
}

func TestCheck(t *testing.T) {
	e := newCLIEnv(t)
	_, err := e.run("install", e.archive("Needle", "1.0.0", nil, nil))
	require.NoError(t, err)
	_, err = e.run("install", e.archive("Spool", "1.0.0", []string{"Needle>=1.0.0"}, nil))
	require.NoError(t, err)
	_, err = e.run("disable", "Needle")
	require.NoError(t, err)

	var results []types.CompatibilityResult
	e.runJSON(&results, "check")
	require.Len(t, results, 2)

	byID := map[string]types.CompatibilityResult{}
	for _, r := range results {
		byID[r.ModID] = r
	}
	assert.Equal(t, types.CompatibilityCompatible, byID["Needle"].Status)
	assert.Equal(t, types.CompatibilityIncompatible, byID["Spool"].Status)

	e.runJSON(&results, "check", "Ghost")
	require.Len(t, results, 1)
	assert.Equal(t, types.CompatibilityUnknown, results[0].Status)
}

func TestArch(t *testing.T) {
	e := newCLIEnv(t)
	bin := filepath.Join(e.root, "not-a-binary")
	require.NoError(t, os.WriteFile(bin, []byte("hello"), 0644))

	var result archResult
	e.runJSON(&result, "arch", bin)
	assert.Equal(t, bin, result.Path)
	assert.Equal(t, "x64", string(result.Architecture))

	e.runJSON(&result, "arch")
	assert.True(t, strings.HasPrefix(result.Path, e.gameDir))
}

func TestBackup(t *testing.T) {
	e := newCLIEnv(t)
	_, err := e.run("install", e.archive("Needle", "1.0.0", nil, map[string]string{"Needle.dll": "x"}))
	require.NoError(t, err)

	var snap installer.Snapshot
	e.runJSON(&snap, "backup")
	assert.Equal(t, []string{"Needle"}, snap.Mods)
	assert.FileExists(t, filepath.Join(snap.Dir, "Needle", "Needle.dll"))
	assert.FileExists(t, filepath.Join(snap.Dir, paths.LedgerFileName))

	_, err = e.run("backup", "Ghost")
	assert.True(t, errors.IsErrorCode(err, errors.ErrModNotFound))
}

// thunderstoreServer serves a one-package index and its download
func thunderstoreServer(t *testing.T, latest string) *httptest.Server {
	t.Helper()
	archive := zipBytes(t, "Needle", latest, nil, map[string]string{"Needle.dll": "x"})

	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/c/hollow-knight-silksong/api/v1/package/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]remote.Package{{
			Name:     "Needle",
			FullName: "Weaver-Needle",
			Owner:    "Weaver",
			Versions: []remote.PackageVersion{
				{Name: "Needle", FullName: "Weaver-Needle-1.0.0", VersionNumber: "1.0.0", DownloadURL: srv.URL + "/dl/old.zip"},
				{Name: "Needle", FullName: "Weaver-Needle-" + latest, VersionNumber: latest, DownloadURL: srv.URL + "/dl/latest.zip"},
			},
		}})
	})
	mux.HandleFunc("/dl/latest.zip", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(archive)
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestInstallFromThunderstore(t *testing.T) {
	e := newCLIEnv(t)
	srv := thunderstoreServer(t, "1.1.0")
	t.Setenv("SILKMOD_REMOTE_THUNDERSTORE_URL", srv.URL)

	var result installer.InstallResult
	e.runJSON(&result, "install", "needle")
	assert.Equal(t, "Needle", result.Mod.ID)
	assert.Equal(t, "1.1.0", result.Mod.Version)
	assert.FileExists(t, filepath.Join(e.root, "cache", "downloads", "Weaver-Needle-1.1.0.zip"))

	_, err := e.run("install", "Unknown")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestUpdates(t *testing.T) {
	e := newCLIEnv(t)
	srv := thunderstoreServer(t, "1.10.0")
	t.Setenv("SILKMOD_REMOTE_THUNDERSTORE_URL", srv.URL)

	var updates []remote.Update
	e.runJSON(&updates, "updates")
	assert.Empty(t, updates)

	_, err := e.run("install", e.archive("Needle", "1.9.0", nil, nil))
	require.NoError(t, err)

	e.runJSON(&updates, "updates")
	require.Len(t, updates, 1)
	assert.Equal(t, "Needle", updates[0].ModID)
	assert.Equal(t, "1.9.0", updates[0].Installed)
	assert.Equal(t, "1.10.0", updates[0].Latest)
}

func TestLoader(t *testing.T) {
	e := newCLIEnv(t)

	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/BepInEx/BepInEx/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		var assets []remote.Asset
		for _, name := range []string{
			"BepInEx_win_x86_5.4.23.zip",
			"BepInEx_win_x64_5.4.23.zip",
			"BepInEx_linux_x86_5.4.23.zip",
			"BepInEx_linux_x64_5.4.23.zip",
			"BepInEx_macos_x64_5.4.23.zip",
		} {
			assets = append(assets, remote.Asset{Name: name, DownloadURL: srv.URL + "/dl/" + name})
		}
		_ = json.NewEncoder(w).Encode(remote.Release{TagName: "v5.4.23", Assets: assets})
	})
	mux.HandleFunc("/dl/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("loader"))
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	t.Setenv("SILKMOD_REMOTE_GITHUB_API", srv.URL)

	var result loaderResult
	e.runJSON(&result, "loader")
	assert.Equal(t, "v5.4.23", result.Release)
	assert.Equal(t, "x64", string(result.Architecture))
	assert.Contains(t, result.Asset.Name, "_x64_")
	assert.Empty(t, result.Path)

	dir := filepath.Join(e.root, "loader")
	e.runJSON(&result, "loader", "--download", dir, "--dry-run")
	assert.NoFileExists(t, result.Path)

	e.runJSON(&result, "loader", "--download", dir)
	data, err := os.ReadFile(result.Path)
	require.NoError(t, err)
	assert.Equal(t, "loader", string(data))
}

func TestRemoteErrorsAreCoded(t *testing.T) {
	e := newCLIEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	t.Setenv("SILKMOD_REMOTE_THUNDERSTORE_URL", srv.URL)

	_, err := e.run("updates")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrRemote))
}

func TestInvalidFormat(t *testing.T) {
	e := newCLIEnv(t)
	_, err := e.run("list", "--format", "yaml")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestRenderError(t *testing.T) {
	rootCmd := NewRootCmd()
	var out bytes.Buffer
	rootCmd.SetErr(&out)
	require.NoError(t, rootCmd.PersistentFlags().Set("format", "json"))

	renderError(rootCmd, errors.New(errors.ErrModNotFound, "mod \"Ghost\" is not installed").WithDetail("id", "Ghost"))

	var obj map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &obj))
	assert.Equal(t, "MOD_NOT_FOUND", obj["code"])
	assert.Equal(t, map[string]interface{}{"id": "Ghost"}, obj["details"])
}

func TestVersionAndTopics(t *testing.T) {
	e := newCLIEnv(t)

	out, err := e.run("version")
	require.NoError(t, err)
	assert.Contains(t, out, "silkmod version")

	out, err = e.run("topics")
	require.NoError(t, err)
	assert.Contains(t, out, "conflicts")
	assert.Contains(t, out, "--dry-run")

	out, err = e.run("topics", "dependencies")
	require.NoError(t, err)
	assert.Contains(t, out, "optional")

	out, err = e.run("help", "configuration")
	require.NoError(t, err)
	assert.Contains(t, out, "SILKMOD_DATA_DIR")

	_, err = e.run("topics", "nope")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestCompletion(t *testing.T) {
	e := newCLIEnv(t)
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			out, err := e.run("completion", shell)
			require.NoError(t, err)
			assert.Contains(t, out, "silkmod")
		})
	}

	_, err := e.run("completion", "tcsh")
	assert.Error(t, err)
}

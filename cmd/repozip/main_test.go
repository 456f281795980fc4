package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/quantmind-br/repozip/internal/config"
	"github.com/quantmind-br/repozip/internal/testutil"
	"github.com/quantmind-br/repozip/pkg/version"
)

// execute runs the root command in a fresh working directory with all flags
// restored to their defaults
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	chdirForTest(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())

	rootCmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCmd_WrongArgumentCount(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no arguments", nil},
		{"one argument", []string{"https://example/repo.git"}},
		{"two arguments", []string{"https://example/repo.git", "src/app"}},
		{"four arguments", []string{"https://example/repo.git", "src/app", "1.0", "extra"}},
		{"unknown long flag", []string{"--bogus"}},
		{"unknown short flag", []string{"-x"}},
		{"dash argument after three", []string{"a", "b", "c", "-x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := execute(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, usageText+"\n", output)

			cwd, err := os.Getwd()
			require.NoError(t, err)
			assert.Empty(t, testutil.ListEntries(t, cwd))
		})
	}
}

func TestRootCmd_Version(t *testing.T) {
	output, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, output, "repozip "+version.Short())
}

func TestRootCmd_Help(t *testing.T) {
	output, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, output, "clones a repository into a temporary workspace")
	assert.Contains(t, output, "--backend")
	assert.Contains(t, output, "--include all to archive the whole source directory")
}

func TestRootCmd_PrintConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		output, err := execute(t, "--print-config")
		require.NoError(t, err)

		var cfg config.Config
		require.NoError(t, yaml.Unmarshal([]byte(output), &cfg))
		assert.Equal(t, "tmp_repo", cfg.Workspace.Directory)
		assert.Equal(t, config.BackendShell, cfg.Fetch.Backend)
		assert.Equal(t, []string{".py", ".js", ".sh"}, cfg.Manifest.Extensions)
	})

	t.Run("flags override defaults", func(t *testing.T) {
		output, err := execute(t, "--print-config", "--backend", "native", "--depth", "1", "-w", "scratch", "--include", "all", "--progress")
		require.NoError(t, err)

		var cfg config.Config
		require.NoError(t, yaml.Unmarshal([]byte(output), &cfg))
		assert.Equal(t, config.BackendNative, cfg.Fetch.Backend)
		assert.Equal(t, 1, cfg.Fetch.Depth)
		assert.Equal(t, "scratch", cfg.Workspace.Directory)
		assert.Equal(t, config.IncludeAll, cfg.Archive.Include)
		assert.True(t, cfg.Archive.Progress)
	})

	t.Run("invalid backend", func(t *testing.T) {
		_, err := execute(t, "--print-config", "--backend", "svn")
		assert.Error(t, err)
	})
}

func TestRootCmd_Doctor(t *testing.T) {
	t.Run("git available", func(t *testing.T) {
		orig := execLookPath
		defer func() { execLookPath = orig }()
		execLookPath = func(string) (string, error) { return "/usr/bin/git", nil }

		output, err := execute(t, "--doctor")
		require.NoError(t, err)
		assert.Contains(t, output, "Checking system dependencies")
		assert.Contains(t, output, "git: OK (/usr/bin/git)")
		assert.Contains(t, output, "All critical checks passed!")
	})

	t.Run("git missing with shell backend", func(t *testing.T) {
		orig := execLookPath
		defer func() { execLookPath = orig }()
		execLookPath = func(string) (string, error) { return "", errors.New("not found") }

		output, err := execute(t, "--doctor")
		require.NoError(t, err)
		assert.Contains(t, output, "required by the shell backend")
		assert.Contains(t, output, "Some checks failed")
	})
}

func TestCheckWritePermissions(t *testing.T) {
	dir := t.TempDir()
	assert.True(t, checkWritePermissions(dir))
	assert.Empty(t, testutil.ListEntries(t, dir))

	assert.False(t, checkWritePermissions(filepath.Join(dir, "missing")))
}

func TestRun(t *testing.T) {
	t.Run("source not found exits cleanly", func(t *testing.T) {
		testutil.RequireGit(t)
		origin := testutil.InitRepo(t, t.TempDir(), map[string]string{"src/app/run.py": ""})

		output, err := execute(t, "--backend", "native", origin, "src/missing", "1.0")
		require.NoError(t, err)
		assert.Contains(t, output, "build failed: source directory not found")
	})

	t.Run("packages local repository", func(t *testing.T) {
		testutil.RequireGit(t)
		origin := testutil.InitRepo(t, t.TempDir(), map[string]string{
			"README.md":        "",
			"src/app/run.py":   "print('run')\n",
			"src/app/notes.md": "",
		})

		output, err := execute(t, "--backend", "native", origin, "src/app", "1.2.3")
		require.NoError(t, err)
		assert.Contains(t, output, "Build completed")

		cwd, err := os.Getwd()
		require.NoError(t, err)
		entries := testutil.ListEntries(t, cwd)
		require.Len(t, entries, 1)
		assert.Regexp(t, `^app\d{8}\.zip$`, entries[0])

		r, err := zip.OpenReader(filepath.Join(cwd, entries[0]))
		require.NoError(t, err)
		defer r.Close()

		var names []string
		for _, f := range r.File {
			names = append(names, f.Name)
		}
		assert.Equal(t, []string{"src/app/", "src/app/run.py", "src/app/version.json"}, names)
	})

	t.Run("version may start with a dash", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "missing")

		output, err := execute(t, "--backend", "native", missing, "src/app", "-rc1")
		require.NoError(t, err)
		assert.NotContains(t, output, "Usage:")
		assert.Contains(t, output, "version=-rc1")
		assert.Contains(t, output, "build failed: command execution failed")
	})

	t.Run("dash version is written to manifest", func(t *testing.T) {
		testutil.RequireGit(t)
		origin := testutil.InitRepo(t, t.TempDir(), map[string]string{"src/app/run.py": ""})

		output, err := execute(t, "--backend", "native", origin, "src/app", "-rc1")
		require.NoError(t, err)
		assert.Contains(t, output, "Build completed")

		cwd, err := os.Getwd()
		require.NoError(t, err)
		entries := testutil.ListEntries(t, cwd)
		require.Len(t, entries, 1)

		r, err := zip.OpenReader(filepath.Join(cwd, entries[0]))
		require.NoError(t, err)
		defer r.Close()

		f, err := r.Open("src/app/version.json")
		require.NoError(t, err)
		defer f.Close()
		data, err := io.ReadAll(f)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"version": "-rc1"`)
	})

	t.Run("invalid config file is an error", func(t *testing.T) {
		dir := t.TempDir()
		cfgPath := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(cfgPath, []byte("fetch: [unclosed"), 0644))

		_, err := execute(t, "--config", cfgPath, "url", "src", "1")
		assert.Error(t, err)
	})
}

// chdirForTest changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent of testing.T.Chdir, which needs Go 1.24)
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	oldDir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(oldDir); err != nil {
			t.Fatal(err)
		}
	})
}

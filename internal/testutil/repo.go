// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// WriteTree creates files under root. Keys are slash-separated relative paths;
// a key ending in "/" creates an empty directory.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()

	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if rel[len(rel)-1] == '/' {
			require.NoError(t, os.MkdirAll(path, 0755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

// ListEntries returns the sorted names of the immediate children of dir
func ListEntries(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

// InitRepo creates a git repository in dir holding files in a single commit
// and returns dir, which doubles as a clone URL for local transports.
func InitRepo(t *testing.T, dir string, files map[string]string) string {
	t.Helper()

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	WriteTree(t, dir, files)

	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.AddWithOptions(&git.AddOptions{All: true}))

	_, err = wt.Commit("initial import", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Fixture",
			Email: "fixture@example.com",
			When:  time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC),
		},
	})
	require.NoError(t, err)

	return dir
}

// RequireGit skips the test when no git binary is on PATH. Both the shell
// backend and go-git's local file transport shell out to it.
func RequireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
}

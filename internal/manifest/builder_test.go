package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"unicode/utf8"

	"github.com/quantmind-br/repozip/internal/domain"
	"github.com/quantmind-br/repozip/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scriptExtensions = []string{".py", ".js", ".sh"}

func newBuilder() *Builder {
	return NewBuilder(BuilderOptions{Extensions: scriptExtensions})
}

func TestNewBuilder_Defaults(t *testing.T) {
	b := NewBuilder(BuilderOptions{})
	assert.Equal(t, "version.json", b.Filename())
	assert.Equal(t, domain.ProductName, b.name)
	assert.False(t, b.Matches("a.py"))
}

func TestExtension(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"a.py", ".py"},
		{"archive.tar.sh", ".sh"},
		{"README", ""},
		{".py", ""},
		{"..py", ".py"},
		{"trailing.", ""},
		{"UPPER.PY", ".PY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Extension(tt.name))
		})
	}
}

func TestBuilder_Collect(t *testing.T) {
	t.Run("filters by extension", func(t *testing.T) {
		dir := t.TempDir()
		testutil.WriteTree(t, dir, map[string]string{
			"a.py":   "",
			"b.txt":  "",
			"c.sh":   "",
			"d.js":   "",
			"README": "",
		})

		files, err := newBuilder().Collect(dir)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"a.py", "c.sh", "d.js"}, files)
	})

	t.Run("match is case-sensitive", func(t *testing.T) {
		dir := t.TempDir()
		testutil.WriteTree(t, dir, map[string]string{
			"lower.py": "",
			"UPPER.PY": "",
			"mixed.Js": "",
		})

		files, err := newBuilder().Collect(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"lower.py"}, files)
	})

	t.Run("skips directories and nested files", func(t *testing.T) {
		dir := t.TempDir()
		testutil.WriteTree(t, dir, map[string]string{
			"pkg.py/":      "",
			"sub/inner.py": "",
			"top.sh":       "",
			".hidden.js":   "",
			".py":          "",
		})

		files, err := newBuilder().Collect(dir)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"top.sh", ".hidden.js"}, files)
	})

	t.Run("follows symlinks to files", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("symlinks need privileges on windows")
		}
		dir := t.TempDir()
		testutil.WriteTree(t, dir, map[string]string{"real.txt": ""})
		require.NoError(t, os.Symlink(filepath.Join(dir, "real.txt"), filepath.Join(dir, "link.py")))
		require.NoError(t, os.Symlink(filepath.Join(dir, "gone"), filepath.Join(dir, "dangling.py")))

		files, err := newBuilder().Collect(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"link.py"}, files)
	})

	t.Run("synthetic extension set", func(t *testing.T) {
		dir := t.TempDir()
		testutil.WriteTree(t, dir, map[string]string{"a.rb": "", "b.py": ""})

		b := NewBuilder(BuilderOptions{Extensions: []string{".rb"}})
		files, err := b.Collect(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"a.rb"}, files)
	})

	t.Run("empty directory yields empty list", func(t *testing.T) {
		files, err := newBuilder().Collect(t.TempDir())
		require.NoError(t, err)
		require.NotNil(t, files)
		assert.Empty(t, files)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := newBuilder().Collect(filepath.Join(t.TempDir(), "missing"))
		assert.Error(t, err)
	})
}

func TestBuilder_Build(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{"run.py": "", "notes.md": ""})

	m, err := newBuilder().Build(dir, "1.2.3")
	require.NoError(t, err)

	assert.Equal(t, "hello world", m.Name)
	assert.Equal(t, "1.2.3", m.Version)
	assert.Equal(t, []string{"run.py"}, m.Files)
}

func TestBuilder_Write(t *testing.T) {
	t.Run("round trips with special characters", func(t *testing.T) {
		dir := t.TempDir()
		testutil.WriteTree(t, dir, map[string]string{"a.py": "", "b.txt": "", "c.sh": "", "d.js": "", "README": ""})

		version := `1.0.0-β "rc" <&> \ ✓`
		b := newBuilder()
		m, err := b.Build(dir, version)
		require.NoError(t, err)

		path, err := b.Write(dir, m)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "version.json"), path)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, utf8.Valid(data))
		assert.Contains(t, string(data), "β")
		assert.Contains(t, string(data), "<&>")

		loaded, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "hello world", loaded.Name)
		assert.Equal(t, version, loaded.Version)
		assert.ElementsMatch(t, []string{"a.py", "c.sh", "d.js"}, loaded.Files)
	})

	t.Run("overwrites existing manifest", func(t *testing.T) {
		dir := t.TempDir()
		testutil.WriteTree(t, dir, map[string]string{"version.json": `{"stale": true}`})

		b := newBuilder()
		_, err := b.Write(dir, domain.NewManifest(domain.ProductName, "2.0", nil))
		require.NoError(t, err)

		loaded, err := Load(filepath.Join(dir, "version.json"))
		require.NoError(t, err)
		assert.Equal(t, "2.0", loaded.Version)
		assert.Empty(t, loaded.Files)
	})

	t.Run("custom filename", func(t *testing.T) {
		dir := t.TempDir()
		b := NewBuilder(BuilderOptions{Filename: "manifest.json", Extensions: scriptExtensions})
		path, err := b.Write(dir, domain.NewManifest("x", "1", nil))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "manifest.json"), path)
	})
}

func TestMarshal(t *testing.T) {
	t.Run("four-space indent and key order", func(t *testing.T) {
		data, err := Marshal(domain.NewManifest("hello world", "1.2.3", []string{"run.py", "deploy.sh"}))
		require.NoError(t, err)

		expected := "{\n" +
			"    \"name\": \"hello world\",\n" +
			"    \"version\": \"1.2.3\",\n" +
			"    \"files\": [\n" +
			"        \"run.py\",\n" +
			"        \"deploy.sh\"\n" +
			"    ]\n" +
			"}"
		assert.Equal(t, expected, string(data))
	})

	t.Run("nil files encode as empty array", func(t *testing.T) {
		data, err := Marshal(&domain.Manifest{Name: "n", Version: "v"})
		require.NoError(t, err)
		assert.Contains(t, string(data), `"files": []`)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, []any{}, decoded["files"])
	})
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "version.json"))
		assert.ErrorIs(t, err, ErrFileNotFound)
	})

	t.Run("invalid json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "version.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

		_, err := Load(path)
		assert.ErrorIs(t, err, ErrInvalidFormat)
	})
}

package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/quantmind-br/repozip/internal/domain"
	"github.com/quantmind-br/repozip/internal/utils"
)

// Builder scans a source directory and writes its manifest
type Builder struct {
	name       string
	filename   string
	extensions map[string]bool
	order      []string
	logger     *utils.Logger
}

// BuilderOptions contains options for creating a Builder
type BuilderOptions struct {
	// Name defaults to domain.ProductName
	Name string
	// Filename defaults to domain.ManifestFileName
	Filename string
	// Extensions are matched case-sensitively, including the leading dot
	Extensions []string
	Logger     *utils.Logger
}

// NewBuilder creates a manifest builder
func NewBuilder(opts BuilderOptions) *Builder {
	name := opts.Name
	if name == "" {
		name = domain.ProductName
	}
	filename := opts.Filename
	if filename == "" {
		filename = domain.ManifestFileName
	}
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	exts := make(map[string]bool, len(opts.Extensions))
	var order []string
	for _, ext := range opts.Extensions {
		if !exts[ext] {
			order = append(order, ext)
		}
		exts[ext] = true
	}

	return &Builder{
		name:       name,
		filename:   filename,
		extensions: exts,
		order:      order,
		logger:     logger.WithComponent("manifest"),
	}
}

// Filename returns the manifest file name
func (b *Builder) Filename() string {
	return b.filename
}

// Matches reports whether name carries one of the configured extensions
func (b *Builder) Matches(name string) bool {
	return b.extensions[Extension(name)]
}

// Extension returns the suffix of name starting at its final dot.
// A dotfile such as ".py" has no extension.
func Extension(name string) string {
	i := strings.LastIndex(name, ".")
	if i <= 0 || i == len(name)-1 {
		return ""
	}
	return name[i:]
}

// Collect returns the names of regular files directly inside dir whose extension
// matches. Order is the order the filesystem lists them in.
func (b *Builder) Collect(dir string) ([]string, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open source directory: %w", err)
	}
	defer f.Close()

	// File.ReadDir keeps the listing order, unlike os.ReadDir which sorts
	entries, err := f.ReadDir(-1)
	if err != nil {
		return nil, fmt.Errorf("failed to list source directory: %w", err)
	}

	files := []string{}
	for _, entry := range entries {
		if !b.Matches(entry.Name()) {
			continue
		}
		regular, err := isRegular(filepath.Join(dir, entry.Name()), entry)
		if err != nil {
			return nil, err
		}
		if regular {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}

// isRegular follows symlinks, so a link to a regular file counts as one
func isRegular(path string, entry fs.DirEntry) (bool, error) {
	if entry.Type()&fs.ModeSymlink == 0 {
		return entry.Type().IsRegular(), nil
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// Build scans dir and returns its manifest
func (b *Builder) Build(dir, version string) (*domain.Manifest, error) {
	b.logger.Info().Msgf("Collecting files with extensions %s in %s", strings.Join(b.order, ", "), dir)

	files, err := b.Collect(dir)
	if err != nil {
		return nil, err
	}

	b.logger.Info().
		Int("count", len(files)).
		Strs("files", files).
		Msgf("Found %d files", len(files))

	return domain.NewManifest(b.name, version, files), nil
}

// Write serializes m into dir, replacing any existing manifest, and returns its path
func (b *Builder) Write(dir string, m *domain.Manifest) (string, error) {
	path := filepath.Join(dir, b.filename)
	b.logger.Info().Msgf("Writing %s to %s", b.filename, path)

	data, err := Marshal(m)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}

	b.logger.Info().Msgf("%s created", b.filename)
	return path, nil
}

// Marshal encodes m as UTF-8 JSON indented by four spaces. Non-ASCII and
// HTML-sensitive characters are written literally and no trailing newline is added.
func Marshal(m *domain.Manifest) ([]byte, error) {
	if m.Files == nil {
		m = domain.NewManifest(m.Name, m.Version, nil)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Load reads a manifest back from path
func Load(path string) (*domain.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m domain.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return &m, nil
}

// Package archive packs a source directory into a dated zip file.
package archive

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"github.com/quantmind-br/repozip/internal/domain"
	"github.com/quantmind-br/repozip/internal/utils"
)

// DateLayout is the date suffix appended to archive names
const DateLayout = "20060102"

// Extension is the archive file extension
const Extension = ".zip"

// ArchiveName returns the archive base name for sourcePath on the day of now
func ArchiveName(sourcePath string, now time.Time) string {
	return utils.LastPathSegment(sourcePath) + now.Format(DateLayout)
}

// Selector reports whether an entry below the archive base is included.
// rel is slash-separated and relative to the base directory. Returning false
// for a directory skips its whole subtree.
type Selector func(rel string, d fs.DirEntry) bool

// All includes every entry
func All() Selector {
	return nil
}

// Only includes the named files directly inside the base directory
func Only(names ...string) Selector {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(rel string, d fs.DirEntry) bool {
		return !d.IsDir() && set[rel]
	}
}

// ProgressFactory creates a reporter for an archive of total entries
type ProgressFactory func(total int) domain.ProgressReporter

// Archiver writes zip archives
type Archiver struct {
	level    int
	progress ProgressFactory
	logger   *utils.Logger
}

// ArchiverOptions contains options for creating an Archiver
type ArchiverOptions struct {
	// Level is the DEFLATE level; zero means flate.DefaultCompression
	Level    int
	Progress ProgressFactory
	Logger   *utils.Logger
}

// NewArchiver creates a new archiver
func NewArchiver(opts ArchiverOptions) *Archiver {
	level := opts.Level
	if level == 0 {
		level = flate.DefaultCompression
	}
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Archiver{
		level:    level,
		progress: opts.Progress,
		logger:   logger.WithComponent("archive"),
	}
}

type entry struct {
	path string // on disk
	name string // inside the archive
	dir  bool
	info fs.FileInfo
}

// Create zips root/base into outDir and returns the absolute archive path.
// Entry names are relative to root, so the archive's single top-level entry
// is base itself. A nil selector includes everything. An existing archive with
// the same name is replaced.
func (a *Archiver) Create(root, base, outDir string, now time.Time, sel Selector) (string, error) {
	name := ArchiveName(base, now) + Extension
	target, err := filepath.Abs(filepath.Join(outDir, name))
	if err != nil {
		return "", fmt.Errorf("failed to resolve archive path: %w", err)
	}

	a.logger.Info().Msgf("Creating archive %s from %s", name, filepath.Join(root, base))

	entries, err := a.collect(root, base, sel)
	if err != nil {
		return "", err
	}

	if err := a.write(target, entries); err != nil {
		return "", err
	}

	a.logger.Info().
		Int("entries", len(entries)).
		Msgf("Archive created at %s", target)
	return target, nil
}

// collect walks base in lexical order. The base directory comes first.
func (a *Archiver) collect(root, base string, sel Selector) ([]entry, error) {
	baseDir := filepath.Join(root, filepath.FromSlash(base))
	baseName := filepath.ToSlash(filepath.Clean(filepath.FromSlash(base)))

	var entries []entry
	err := filepath.WalkDir(baseDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(baseDir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if rel != "." && sel != nil && !sel(rel, d) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		info, err := os.Stat(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				// dangling symlink
				return nil
			}
			return err
		}

		arcName := baseName
		if rel != "." {
			arcName = path.Join(baseName, rel)
		}

		switch {
		case d.IsDir():
			entries = append(entries, entry{path: p, name: arcName + "/", dir: true, info: info})
		case info.Mode().IsRegular():
			entries = append(entries, entry{path: p, name: arcName, info: info})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", baseDir, err)
	}
	return entries, nil
}

func (a *Archiver) write(target string, entries []entry) (err error) {
	if err := utils.EnsureDir(target); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close archive: %w", cerr)
		}
	}()

	zw := zip.NewWriter(f)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, a.level)
	})

	var reporter domain.ProgressReporter
	if a.progress != nil {
		reporter = a.progress(len(entries))
	}

	for _, e := range entries {
		if err := addEntry(zw, e); err != nil {
			return err
		}
		a.logger.Debug().Str("entry", e.name).Msg("Added archive entry")
		if reporter != nil {
			_ = reporter.Add(1)
		}
	}

	if reporter != nil {
		_ = reporter.Finish()
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	return nil
}

func addEntry(zw *zip.Writer, e entry) error {
	header, err := zip.FileInfoHeader(e.info)
	if err != nil {
		return fmt.Errorf("failed to build header for %s: %w", e.name, err)
	}
	header.Name = e.name

	if e.dir {
		header.Method = zip.Store
		_, err := zw.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("failed to add %s: %w", e.name, err)
		}
		return nil
	}

	header.Method = zip.Deflate
	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to add %s: %w", e.name, err)
	}

	src, err := os.Open(e.path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", e.path, err)
	}
	defer src.Close()

	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("failed to compress %s: %w", e.path, err)
	}
	return nil
}

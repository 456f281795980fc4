package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/quantmind-br/repozip/internal/domain"
	"github.com/quantmind-br/repozip/internal/utils"
)

// Manager owns the temporary clone directory for one run
type Manager struct {
	root   string
	source domain.RepositorySource
	logger *utils.Logger
}

// ManagerOptions contains options for creating a Manager
type ManagerOptions struct {
	Root   string
	Source domain.RepositorySource
	Logger *utils.Logger
}

// NewManager creates a workspace manager rooted at opts.Root
func NewManager(opts ManagerOptions) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Manager{
		root:   filepath.Clean(opts.Root),
		source: opts.Source,
		logger: logger.WithComponent("workspace"),
	}
}

// Root returns the workspace directory
func (m *Manager) Root() string {
	return m.root
}

// Reset removes the workspace if it exists. Calling it on an absent workspace is a no-op.
func (m *Manager) Reset() error {
	if !utils.Exists(m.root) {
		m.logger.Info().Msgf("Temporary directory %s is absent, skipping removal", m.root)
		return nil
	}

	m.logger.Info().Msgf("Temporary directory %s exists, removing", m.root)
	if _, err := utils.RemoveIfExists(m.root); err != nil {
		return fmt.Errorf("failed to reset workspace %s: %w", m.root, err)
	}
	m.logger.Info().Msgf("Directory %s removed", m.root)
	return nil
}

// Fetch clones url into the workspace through the configured source
func (m *Manager) Fetch(ctx context.Context, url string) error {
	if m.source == nil {
		return fmt.Errorf("workspace has no repository source")
	}

	logger := m.logger.WithURL(url)
	logger.Info().
		Str("backend", m.source.Name()).
		Msgf("Cloning repository %s into %s", url, m.root)
	if err := m.source.Fetch(ctx, url, m.root); err != nil {
		return err
	}
	logger.Info().Msg("Repository cloned")
	return nil
}

// Locate resolves rel under the workspace. The result must be an existing
// directory strictly below the workspace root.
func (m *Manager) Locate(rel string) (string, error) {
	path := filepath.Join(m.root, filepath.FromSlash(rel))

	if path == m.root || !utils.IsWithin(m.root, path) || !utils.IsDir(path) {
		return "", domain.NewSourceNotFoundError(path)
	}

	m.logger.Info().Msgf("Source found at %s", path)
	return path, nil
}

// Prune deletes every workspace entry that is not keep or one of its ancestors.
// Entries are visited in directory-listing order.
func (m *Manager) Prune(keep string) error {
	rel, err := filepath.Rel(m.root, filepath.Clean(keep))
	if err != nil || rel == "." || !utils.IsWithin(m.root, keep) {
		return fmt.Errorf("cannot prune %s: %s is not below the workspace", m.root, keep)
	}

	m.logger.Info().Msgf("Removing everything in %s except %s", m.root, keep)

	dir := m.root
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if err := m.pruneLevel(dir, part); err != nil {
			return err
		}
		dir = filepath.Join(dir, part)
	}

	m.logger.Info().Msg("Pruning complete")
	return nil
}

func (m *Manager) pruneLevel(dir, keepName string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.Name() == keepName {
			continue
		}
		item := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			m.logger.Info().Msgf("Removing directory: %s", item)
			if err := os.RemoveAll(item); err != nil {
				return fmt.Errorf("failed to remove directory %s: %w", item, err)
			}
			m.logger.Info().Msgf("Directory %s removed", item)
			continue
		}
		m.logger.Info().Msgf("Removing file: %s", item)
		if err := os.Remove(item); err != nil {
			return fmt.Errorf("failed to remove file %s: %w", item, err)
		}
		m.logger.Info().Msgf("File %s removed", item)
	}
	return nil
}

// Teardown removes the workspace
func (m *Manager) Teardown() error {
	m.logger.Info().Msgf("Removing temporary directory %s", m.root)
	if err := os.RemoveAll(m.root); err != nil {
		return fmt.Errorf("failed to remove workspace %s: %w", m.root, err)
	}
	m.logger.Info().Msgf("Temporary directory %s removed", m.root)
	return nil
}

package config

import (
	"os"
	"path/filepath"

	"github.com/quantmind-br/repozip/internal/domain"
)

// Default values
const (
	// Workspace defaults
	DefaultWorkspaceDir = "tmp_repo"

	// Output defaults
	DefaultOutputDir = "."

	// Fetch defaults
	DefaultFetchBackend = BackendShell
	DefaultFetchCommand = "git clone {url} {dest}"
	DefaultFetchDepth   = 0

	// Manifest defaults
	DefaultManifestName     = domain.ProductName
	DefaultManifestFilename = domain.ManifestFileName

	// Archive defaults
	DefaultArchiveInclude  = IncludeMatched
	DefaultArchiveProgress = false

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "pretty"
)

// DefaultExtensions are the script source extensions listed in the manifest
var DefaultExtensions = []string{".py", ".js", ".sh"}

// ConfigDir returns the config directory path
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".repozip"
	}
	return filepath.Join(home, ".repozip")
}

// ConfigFilePath returns the config file path
func ConfigFilePath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Workspace: WorkspaceConfig{
			Directory: DefaultWorkspaceDir,
		},
		Output: OutputConfig{
			Directory: DefaultOutputDir,
		},
		Fetch: FetchConfig{
			Backend: DefaultFetchBackend,
			Command: DefaultFetchCommand,
			Depth:   DefaultFetchDepth,
		},
		Manifest: ManifestConfig{
			Name:       DefaultManifestName,
			Filename:   DefaultManifestFilename,
			Extensions: append([]string(nil), DefaultExtensions...),
		},
		Archive: ArchiveConfig{
			Include:  DefaultArchiveInclude,
			Progress: DefaultArchiveProgress,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

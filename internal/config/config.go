package config

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Fetch backends
const (
	BackendShell  = "shell"
	BackendNative = "native"
)

// Archive include modes
const (
	IncludeMatched = "matched"
	IncludeAll     = "all"
)

// Config represents the application configuration
type Config struct {
	Workspace WorkspaceConfig `mapstructure:"workspace" yaml:"workspace"`
	Output    OutputConfig    `mapstructure:"output" yaml:"output"`
	Fetch     FetchConfig     `mapstructure:"fetch" yaml:"fetch"`
	Manifest  ManifestConfig  `mapstructure:"manifest" yaml:"manifest"`
	Archive   ArchiveConfig   `mapstructure:"archive" yaml:"archive"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
}

// WorkspaceConfig contains the temporary clone directory settings
type WorkspaceConfig struct {
	Directory string `mapstructure:"directory" yaml:"directory"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// Directory receives the archive; empty means the current working directory
	Directory string `mapstructure:"directory" yaml:"directory"`
}

// FetchConfig contains repository fetch settings
type FetchConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"`
	// Command is the shell clone template; {url} and {dest} are substituted
	Command string `mapstructure:"command" yaml:"command"`
	// Depth limits native clones; 0 clones full history
	Depth int `mapstructure:"depth" yaml:"depth"`
}

// ManifestConfig contains manifest generation settings
type ManifestConfig struct {
	Name       string   `mapstructure:"name" yaml:"name"`
	Filename   string   `mapstructure:"filename" yaml:"filename"`
	Extensions []string `mapstructure:"extensions" yaml:"extensions"`
}

// ArchiveConfig contains archive settings
type ArchiveConfig struct {
	Include  string `mapstructure:"include" yaml:"include"`
	Progress bool   `mapstructure:"progress" yaml:"progress"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Workspace.Directory) == "" {
		c.Workspace.Directory = DefaultWorkspaceDir
	}
	if c.Output.Directory == "" {
		c.Output.Directory = DefaultOutputDir
	}

	switch c.Fetch.Backend {
	case "":
		c.Fetch.Backend = DefaultFetchBackend
	case BackendShell, BackendNative:
	default:
		return fmt.Errorf("invalid fetch.backend %q: must be %q or %q", c.Fetch.Backend, BackendShell, BackendNative)
	}
	if c.Fetch.Command == "" {
		c.Fetch.Command = DefaultFetchCommand
	}
	if !strings.Contains(c.Fetch.Command, "{url}") || !strings.Contains(c.Fetch.Command, "{dest}") {
		return fmt.Errorf("invalid fetch.command %q: must contain {url} and {dest}", c.Fetch.Command)
	}
	if c.Fetch.Depth < 0 {
		c.Fetch.Depth = 0
	}

	if c.Manifest.Name == "" {
		c.Manifest.Name = DefaultManifestName
	}
	if c.Manifest.Filename == "" {
		c.Manifest.Filename = DefaultManifestFilename
	}
	if len(c.Manifest.Extensions) == 0 {
		c.Manifest.Extensions = append([]string(nil), DefaultExtensions...)
	}
	for _, ext := range c.Manifest.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("invalid manifest extension %q: must start with a dot", ext)
		}
	}

	switch c.Archive.Include {
	case "":
		c.Archive.Include = DefaultArchiveInclude
	case IncludeMatched, IncludeAll:
	default:
		return fmt.Errorf("invalid archive.include %q: must be %q or %q", c.Archive.Include, IncludeMatched, IncludeAll)
	}

	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
	return nil
}

// WriteYAML writes the configuration as YAML
func (c *Config) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}

package config

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// LocalConfigFile is picked up from the working directory when present
const LocalConfigFile = "repozip.yaml"

// EnvPrefix prefixes environment overrides (REPOZIP_*)
const EnvPrefix = "REPOZIP"

// Load loads configuration from file, environment, and defaults.
// Uses the global viper instance to access CLI flag bindings.
func Load(cfgFile string) (*Config, error) {
	return LoadWithViper(viper.GetViper(), cfgFile)
}

// LoadWithViper loads configuration through the given viper instance
func LoadWithViper(v *viper.Viper, cfgFile string) (*Config, error) {
	// Set defaults
	setDefaults(v)

	// Config file settings
	switch {
	case cfgFile != "":
		v.SetConfigFile(cfgFile)
	case fileExists(LocalConfigFile):
		v.SetConfigFile(LocalConfigFile)
	default:
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(ConfigDir())
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	// Environment variables (REPOZIP_*)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate and apply defaults for empty values
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	v.SetDefault("workspace.directory", DefaultWorkspaceDir)

	v.SetDefault("output.directory", DefaultOutputDir)

	v.SetDefault("fetch.backend", DefaultFetchBackend)
	v.SetDefault("fetch.command", DefaultFetchCommand)
	v.SetDefault("fetch.depth", DefaultFetchDepth)

	v.SetDefault("manifest.name", DefaultManifestName)
	v.SetDefault("manifest.filename", DefaultManifestFilename)
	v.SetDefault("manifest.extensions", DefaultExtensions)

	v.SetDefault("archive.include", DefaultArchiveInclude)
	v.SetDefault("archive.progress", DefaultArchiveProgress)

	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

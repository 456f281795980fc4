package git

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/quantmind-br/repozip/internal/config"
	"github.com/quantmind-br/repozip/internal/domain"
	"github.com/quantmind-br/repozip/internal/utils"
)

// Source names
const (
	ShellSourceName  = "shell"
	NativeSourceName = "native"
)

// ShellSource clones by running the git client through the host shell
type ShellSource struct {
	runner   CommandRunner
	template string
	logger   *utils.Logger
}

// ShellSourceOptions contains options for creating a ShellSource
type ShellSourceOptions struct {
	Runner CommandRunner
	// Template is the clone command line; {url} and {dest} are substituted verbatim
	Template string
	Logger   *utils.Logger
}

// NewShellSource creates a ShellSource
func NewShellSource(opts ShellSourceOptions) *ShellSource {
	template := opts.Template
	if template == "" {
		template = config.DefaultFetchCommand
	}
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &ShellSource{
		runner:   opts.Runner,
		template: template,
		logger:   logger,
	}
}

func (s *ShellSource) Name() string {
	return ShellSourceName
}

// Command renders the clone command for url and destination
func (s *ShellSource) Command(url, destination string) string {
	return strings.NewReplacer("{url}", url, "{dest}", destination).Replace(s.template)
}

// Fetch runs the clone command; a nonzero exit propagates as a command execution error
func (s *ShellSource) Fetch(ctx context.Context, url, destination string) error {
	command := s.Command(url, destination)
	s.logger.Debug().Str("command", command).Msg("Rendered clone command")
	_, err := s.runner.Run(ctx, command, "")
	return err
}

// NativeSource clones in-process through go-git
type NativeSource struct {
	client Client
	depth  int
	token  string
	logger *utils.Logger
}

// NativeSourceOptions contains options for creating a NativeSource
type NativeSourceOptions struct {
	Client Client
	// Depth limits history; 0 clones everything
	Depth int
	// Token enables HTTP basic auth when set
	Token  string
	Logger *utils.Logger
}

// NewNativeSource creates a NativeSource
func NewNativeSource(opts NativeSourceOptions) *NativeSource {
	client := opts.Client
	if client == nil {
		client = NewClient()
	}
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &NativeSource{
		client: client,
		depth:  opts.Depth,
		token:  opts.Token,
		logger: logger,
	}
}

func (s *NativeSource) Name() string {
	return NativeSourceName
}

// CloneOptions builds go-git clone options for url
func (s *NativeSource) CloneOptions(url string) *git.CloneOptions {
	opts := &git.CloneOptions{
		URL:   url,
		Depth: s.depth,
	}
	if s.token != "" {
		opts.Auth = &githttp.BasicAuth{
			Username: "token",
			Password: s.token,
		}
	}
	return opts
}

// Fetch clones url into destination. Failures are reported as command execution errors
// so callers see one error category regardless of backend.
func (s *NativeSource) Fetch(ctx context.Context, url, destination string) error {
	s.logger.Info().
		Str("url", url).
		Str("dest", destination).
		Int("depth", s.depth).
		Msg("Cloning repository with go-git")

	if _, err := s.client.PlainCloneContext(ctx, destination, false, s.CloneOptions(url)); err != nil {
		s.logger.Error().Err(err).Msg("Clone failed")
		return domain.NewCommandExecutionError(fmt.Sprintf("clone %s %s", url, destination), err)
	}

	s.logger.Info().Msg("Clone completed")
	return nil
}

// NewSource selects the repository source configured by cfg.Fetch.Backend
func NewSource(cfg *config.Config, runner CommandRunner, logger *utils.Logger) (domain.RepositorySource, error) {
	switch cfg.Fetch.Backend {
	case config.BackendShell, "":
		if runner == nil {
			return nil, fmt.Errorf("shell backend requires a command runner")
		}
		return NewShellSource(ShellSourceOptions{
			Runner:   runner,
			Template: cfg.Fetch.Command,
			Logger:   logger,
		}), nil
	case config.BackendNative:
		return NewNativeSource(NativeSourceOptions{
			Depth:  cfg.Fetch.Depth,
			Token:  os.Getenv("GITHUB_TOKEN"),
			Logger: logger,
		}), nil
	default:
		return nil, fmt.Errorf("unknown fetch backend: %s", cfg.Fetch.Backend)
	}
}

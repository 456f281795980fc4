package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/quantmind-br/repozip/internal/archive"
	"github.com/quantmind-br/repozip/internal/config"
	"github.com/quantmind-br/repozip/internal/domain"
	"github.com/quantmind-br/repozip/internal/git"
	"github.com/quantmind-br/repozip/internal/manifest"
	"github.com/quantmind-br/repozip/internal/runner"
	"github.com/quantmind-br/repozip/internal/utils"
	"github.com/quantmind-br/repozip/internal/workspace"
)

// Builder coordinates one packaging run
type Builder struct {
	config   *config.Config
	ws       *workspace.Manager
	manifest *manifest.Builder
	archiver *archive.Archiver
	clock    domain.Clock
	logger   *utils.Logger
}

// BuilderOptions contains options for creating a builder
type BuilderOptions struct {
	Config  *config.Config
	Verbose bool
	// Source overrides the backend selected by Config.Fetch.Backend
	Source domain.RepositorySource
	// Logger overrides the logger built from Config.Logging
	Logger *utils.Logger
	// Clock defaults to domain.SystemClock
	Clock domain.Clock
	// Progress enables an archive progress reporter
	Progress archive.ProgressFactory
}

// NewBuilder creates a new builder with the given configuration
func NewBuilder(opts BuilderOptions) (*Builder, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	clock := opts.Clock
	if clock == nil {
		clock = domain.SystemClock
	}

	logger := opts.Logger
	if logger == nil {
		logLevel := cfg.Logging.Level
		if opts.Verbose {
			logLevel = "debug"
		}
		logger = utils.NewLogger(utils.LoggerOptions{
			Level:   logLevel,
			Format:  cfg.Logging.Format,
			Verbose: opts.Verbose,
			Clock:   clock,
		})
	}

	source := opts.Source
	if source == nil {
		var err error
		source, err = git.NewSource(cfg, runner.New(runner.Options{Logger: logger}), logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create repository source: %w", err)
		}
	}

	return &Builder{
		config: cfg,
		ws: workspace.NewManager(workspace.ManagerOptions{
			Root:   utils.ExpandPath(cfg.Workspace.Directory),
			Source: source,
			Logger: logger,
		}),
		manifest: manifest.NewBuilder(manifest.BuilderOptions{
			Name:       cfg.Manifest.Name,
			Filename:   cfg.Manifest.Filename,
			Extensions: cfg.Manifest.Extensions,
			Logger:     logger,
		}),
		archiver: archive.NewArchiver(archive.ArchiverOptions{
			Progress: opts.Progress,
			Logger:   logger,
		}),
		clock:  clock,
		logger: logger,
	}, nil
}

// Logger returns the builder's logger
func (b *Builder) Logger() *utils.Logger {
	return b.logger
}

// Run executes a build and swallows a BuildError after logging it.
// The workspace is left in place on failure. Any other error is returned.
func (b *Builder) Run(ctx context.Context, req domain.Request) (*domain.Result, error) {
	result, err := b.Execute(ctx, req)
	if err == nil {
		return result, nil
	}

	var buildErr *domain.BuildError
	if !errors.As(err, &buildErr) {
		return nil, err
	}

	b.logger.Error().
		Str("kind", buildErr.Kind.String()).
		Msgf("build failed: %s", buildErr.Error())

	return &domain.Result{
		Success:  false,
		Message:  buildErr.Error(),
		Duration: result.Duration,
	}, nil
}

// Execute runs reset, fetch, locate, prune, manifest, archive and teardown in
// order. The first error aborts the remaining steps and is returned as is.
func (b *Builder) Execute(ctx context.Context, req domain.Request) (*domain.Result, error) {
	start := b.clock()
	result := &domain.Result{}

	b.logger.Info().
		Str("url", req.RepoURL).
		Str("source", req.SourcePath).
		Str("version", req.Version).
		Msg("Starting build")

	err := b.execute(ctx, req, result)
	result.Duration = b.clock().Sub(start)
	if err != nil {
		return result, err
	}

	result.Success = true
	result.Message = fmt.Sprintf("archive created at %s", result.ArchivePath)
	b.logger.Info().
		Str("archive", result.ArchivePath).
		Dur("duration", result.Duration).
		Msg("Build completed")
	return result, nil
}

func (b *Builder) execute(ctx context.Context, req domain.Request, result *domain.Result) error {
	ws := b.ws

	if err := ws.Reset(); err != nil {
		return err
	}
	if err := ws.Fetch(ctx, req.RepoURL); err != nil {
		return err
	}

	sourceDir, err := ws.Locate(req.SourcePath)
	if err != nil {
		return err
	}
	if err := ws.Prune(sourceDir); err != nil {
		return err
	}

	m, err := b.manifest.Build(sourceDir, req.Version)
	if err != nil {
		return err
	}
	if _, err := b.manifest.Write(sourceDir, m); err != nil {
		return err
	}
	result.Manifest = m

	base, err := filepath.Rel(ws.Root(), sourceDir)
	if err != nil {
		return fmt.Errorf("failed to resolve archive base: %w", err)
	}

	selector := archive.All()
	if b.config.Archive.Include == config.IncludeMatched {
		selector = archive.Only(append(append([]string{}, m.Files...), b.manifest.Filename())...)
	}

	outDir := utils.ExpandPath(b.config.Output.Directory)
	archivePath, err := b.archiver.Create(ws.Root(), base, outDir, b.clock(), selector)
	if err != nil {
		return err
	}
	result.ArchivePath = archivePath

	return ws.Teardown()
}

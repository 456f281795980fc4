package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/quantmind-br/repozip/internal/app"
	"github.com/quantmind-br/repozip/internal/config"
	"github.com/quantmind-br/repozip/internal/domain"
	"github.com/quantmind-br/repozip/internal/utils"
	"github.com/quantmind-br/repozip/pkg/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const usageText = "Usage:\n  repozip <repo_url> <relative_path_to_source> <version>"

var (
	cfgFile     string
	verbose     bool
	printConfig bool
	doctor      bool

	// Dependencies for testing
	execLookPath = exec.LookPath
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "repozip <repo_url> <relative_path_to_source> <version>",
	Short: "Package a repository subdirectory into a dated zip archive",
	Long: `repozip clones a repository into a temporary workspace, keeps only the
requested source directory, writes a version.json manifest listing its
script files and zips it as <name><YYYYMMDD>.zip.

By default the archive holds only the manifest and the files it lists.
Pass --include all to archive the whole source directory.`,
	Version:       version.Short(),
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.SetVersionTemplate(version.Full() + "\n")
	rootCmd.SetFlagErrorFunc(flagError)

	// Flags stop at the first positional so a version like -rc1 stays an argument
	rootCmd.Flags().SetInterspersed(false)

	rootCmd.Flags().StringVar(&cfgFile, "config", "", "config file (default is ./repozip.yaml or ~/.repozip/config.yaml)")
	rootCmd.Flags().StringP("workspace", "w", config.DefaultWorkspaceDir, "Temporary clone directory")
	rootCmd.Flags().StringP("output", "o", config.DefaultOutputDir, "Directory receiving the archive")
	rootCmd.Flags().StringP("backend", "b", config.DefaultFetchBackend, "Clone backend (shell, native)")
	rootCmd.Flags().Int("depth", config.DefaultFetchDepth, "Native clone depth (0=full history)")
	rootCmd.Flags().String("include", config.DefaultArchiveInclude, "Archive contents (matched, all)")
	rootCmd.Flags().Bool("progress", config.DefaultArchiveProgress, "Show archive progress on stderr")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.Flags().BoolVar(&printConfig, "print-config", false, "Print the effective configuration and exit")
	rootCmd.Flags().BoolVar(&doctor, "doctor", false, "Check system dependencies and exit")
}

// flagBindings maps config keys to the flags that override them
var flagBindings = map[string]string{
	"workspace.directory": "workspace",
	"output.directory":    "output",
	"fetch.backend":       "backend",
	"fetch.depth":         "depth",
	"archive.include":     "include",
	"archive.progress":    "progress",
}

// loadConfig rebinds cmd's flags to a reset global viper and loads the configuration
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	viper.Reset()
	for key, name := range flagBindings {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// flagError prints usage for unparseable flags, the same as a wrong argument count
func flagError(cmd *cobra.Command, _ error) error {
	fmt.Fprintln(cmd.OutOrStdout(), usageText)
	return nil
}

func run(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if doctor {
		return runDoctor(cmd, out)
	}

	if printConfig {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return cfg.WriteYAML(out)
	}

	if len(args) != 3 {
		fmt.Fprintln(out, usageText)
		return nil
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := utils.NewLogger(utils.LoggerOptions{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Output:  out,
		Verbose: verbose,
	})

	opts := app.BuilderOptions{
		Config:  cfg,
		Verbose: verbose,
		Logger:  logger,
	}
	if cfg.Archive.Progress {
		errOut := cmd.ErrOrStderr()
		opts.Progress = func(total int) domain.ProgressReporter {
			return utils.NewProgressBar(total, utils.DescArchiving, errOut)
		}
	}

	builder, err := app.NewBuilder(opts)
	if err != nil {
		return fmt.Errorf("failed to create builder: %w", err)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
			logger.Info().Msg("Shutting down gracefully...")
			cancel()
		case <-ctx.Done():
		}
	}()

	_, err = builder.Run(ctx, domain.Request{
		RepoURL:    args[0],
		SourcePath: args[1],
		Version:    args[2],
	})
	return err
}

// runDoctor reports whether the configured backend can run here
func runDoctor(cmd *cobra.Command, out io.Writer) error {
	fmt.Fprintln(out, "Checking system dependencies...")
	allPassed := true

	// Check 1: Config file
	fmt.Fprint(out, "  Config file: ")
	cfg, err := loadConfig(cmd)
	if err != nil {
		fmt.Fprintf(out, "FAILED (%v)\n", err)
		cfg = config.Default()
		allPassed = false
	} else if used := viper.ConfigFileUsed(); used != "" && utils.Exists(used) {
		fmt.Fprintf(out, "OK (%s)\n", used)
	} else {
		fmt.Fprintf(out, "OK (defaults; create %s to override)\n", config.ConfigFilePath())
	}

	// Check 2: git binary
	fmt.Fprint(out, "  git: ")
	if gitPath := checkGit(); gitPath != "" {
		fmt.Fprintf(out, "OK (%s)\n", gitPath)
	} else if cfg.Fetch.Backend == config.BackendShell {
		fmt.Fprintln(out, "NOT FOUND (required by the shell backend)")
		allPassed = false
	} else {
		fmt.Fprintln(out, "NOT FOUND (local clones will be unavailable)")
	}

	// Check 3: Write permissions for output dir
	fmt.Fprint(out, "  Write permissions: ")
	if checkWritePermissions(cfg.Output.Directory) {
		fmt.Fprintf(out, "OK (%s)\n", cfg.Output.Directory)
	} else {
		fmt.Fprintf(out, "FAILED (%s)\n", cfg.Output.Directory)
		allPassed = false
	}

	// Check 4: Leftover workspace
	fmt.Fprint(out, "  Workspace: ")
	if utils.Exists(cfg.Workspace.Directory) {
		fmt.Fprintf(out, "WARN (%s exists and will be removed on the next run)\n", cfg.Workspace.Directory)
	} else {
		fmt.Fprintln(out, "OK")
	}

	fmt.Fprintln(out)
	if allPassed {
		fmt.Fprintln(out, "All critical checks passed!")
	} else {
		fmt.Fprintln(out, "Some checks failed. Please resolve the issues above.")
	}
	return nil
}

// checkGit returns the path of the git binary, or "" when it is missing
func checkGit() string {
	path, err := execLookPath("git")
	if err != nil {
		return ""
	}
	return path
}

// checkWritePermissions checks if we can write to dir
func checkWritePermissions(dir string) bool {
	f, err := os.CreateTemp(dir, ".repozip_test_write")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}

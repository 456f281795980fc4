// Package runner executes command lines through the host shell.
package runner

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"runtime"
	"strings"

	"github.com/quantmind-br/repozip/internal/domain"
	"github.com/quantmind-br/repozip/internal/utils"
)

// Runner runs shell command lines and captures their output
type Runner struct {
	logger *utils.Logger
	shell  []string
}

// Options contains options for creating a Runner
type Options struct {
	Logger *utils.Logger
	// Shell overrides the interpreter prefix, e.g. []string{"bash", "-c"}
	Shell []string
}

// New creates a Runner using the platform shell unless one is given
func New(opts Options) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	shell := opts.Shell
	if len(shell) == 0 {
		shell = defaultShell()
	}
	return &Runner{
		logger: logger.WithComponent("runner"),
		shell:  shell,
	}
}

func defaultShell() []string {
	if runtime.GOOS == "windows" {
		return []string{"cmd", "/C"}
	}
	return []string{"sh", "-c"}
}

// Run executes command in dir, or in the current directory when dir is empty.
// It returns trimmed stdout. A nonzero exit yields a command execution BuildError;
// captured stderr is logged before the error is returned.
func (r *Runner) Run(ctx context.Context, command, dir string) (string, error) {
	where := dir
	if where == "" {
		where = "current"
	}
	r.logger.Info().
		Str("dir", where).
		Msgf("Running command: %s", command)

	args := append(append([]string(nil), r.shell[1:]...), command)
	// #nosec G204
	cmd := exec.CommandContext(ctx, r.shell[0], args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		r.logger.Error().
			Int("exit_code", exitCode).
			Msg("Command failed")
		r.logger.Error().
			Msgf("stderr: %s", strings.TrimSpace(stderr.String()))
		return "", domain.NewCommandExecutionError(command, err)
	}

	out := strings.TrimSpace(stdout.String())
	r.logger.Info().Msgf("Command succeeded, output:\n%s", out)
	return out, nil
}

package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tristendillon/forge/core/logger"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

type Options struct {
	Dir    string
	Script string
	Env    []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// ExitError reports a script that ran but exited non-zero.
type ExitError struct {
	Script string
	Code   int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%q exited with status %d", e.Script, e.Code)
}

// Run interprets Script with a POSIX shell so configured commands behave the
// same on every platform.
func Run(ctx context.Context, opts Options) error {
	prog, err := syntax.NewParser().Parse(strings.NewReader(opts.Script), "script")
	if err != nil {
		return fmt.Errorf("failed to parse script %q: %w", opts.Script, err)
	}

	stdout, stderr := opts.Stdout, opts.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	env := append(os.Environ(), opts.Env...)
	runnerOpts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(env...)),
		interp.StdIO(opts.Stdin, stdout, stderr),
	}
	if opts.Dir != "" {
		runnerOpts = append(runnerOpts, interp.Dir(opts.Dir))
	}

	runner, err := interp.New(runnerOpts...)
	if err != nil {
		return fmt.Errorf("failed to create interpreter: %w", err)
	}

	logger.Debug("Running %q in %s", opts.Script, opts.Dir)
	if err := runner.Run(ctx, prog); err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return &ExitError{Script: opts.Script, Code: int(exitStatus)}
		}
		return fmt.Errorf("script %q failed: %w", opts.Script, err)
	}
	return nil
}

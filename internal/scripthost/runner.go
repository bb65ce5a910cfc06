// SPDX-License-Identifier: MPL-2.0

package scripthost

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"packmule/pkg/pakref"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

type (
	// Runner executes package install scripts in an embedded POSIX shell.
	// Scripts never shell out to the system's /bin/sh; the interpreter
	// runs in-process and honors context cancellation.
	Runner struct {
		// Host receives progress reports while a script runs.
		Host Host

		// Dir is the working directory for scripts. Empty means the
		// process working directory.
		Dir string

		// Stdin, Stdout and Stderr are the script's standard streams.
		// Nil streams fall back to the process streams.
		Stdin          io.Reader
		Stdout, Stderr io.Writer
	}

	// Result is the outcome of one script run.
	Result struct {
		// ExitCode is the script's exit status. Zero means success.
		ExitCode int

		// Output and ErrOutput are only populated by RunCapture.
		Output    string
		ErrOutput string

		// Error is set when the run failed for a reason other than the
		// script exiting nonzero.
		Error error
	}
)

// NewRunner builds a Runner reporting to host and inheriting the
// process standard streams.
func NewRunner(host Host) *Runner {
	return &Runner{
		Host:   host,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Validate parses the script without running it, so descriptor problems
// surface before any side effects.
func (r *Runner) Validate(script string) error {
	if strings.TrimSpace(script) == "" {
		return fmt.Errorf("script has no content to execute")
	}
	if _, err := syntax.NewParser().Parse(strings.NewReader(script), "install"); err != nil {
		return fmt.Errorf("script syntax error: %w", err)
	}
	return nil
}

// Run executes the install script of pkg. The package's identity is
// exposed to the script as PKG_NAME, PKG_VERSION and PKG_REPOSITORY.
func (r *Runner) Run(ctx context.Context, pkg pakref.FullRef, script string) *Result {
	return r.run(ctx, pkg, script, r.Stdin, r.Stdout, r.Stderr, nil)
}

// RunCapture executes the script with captured output instead of the
// configured streams.
func (r *Runner) RunCapture(ctx context.Context, pkg pakref.FullRef, script string) *Result {
	var stdout, stderr bytes.Buffer
	result := r.run(ctx, pkg, script, nil, &stdout, &stderr, nil)
	result.Output = stdout.String()
	result.ErrOutput = stderr.String()
	return result
}

func (r *Runner) run(ctx context.Context, pkg pakref.FullRef, script string, stdin io.Reader, stdout, stderr io.Writer, extraEnv []string) *Result {
	prog, err := syntax.NewParser().Parse(strings.NewReader(script), "install")
	if err != nil {
		return &Result{ExitCode: 1, Error: fmt.Errorf("failed to parse script: %w", err)}
	}

	env := append(os.Environ(), packageEnv(pkg)...)
	env = append(env, extraEnv...)

	runner, err := interp.New(
		interp.Dir(r.Dir),
		interp.Env(expand.ListEnviron(env...)),
		interp.StdIO(stdin, stdout, stderr),
	)
	if err != nil {
		return &Result{ExitCode: 1, Error: fmt.Errorf("failed to create interpreter: %w", err)}
	}

	if r.Host != nil {
		r.Host.Progressf("running install script for %s", pkg.String())
	}

	if err := runner.Run(ctx, prog); err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return &Result{ExitCode: int(exitStatus)}
		}
		return &Result{ExitCode: 1, Error: fmt.Errorf("script execution failed: %w", err)}
	}

	return &Result{ExitCode: 0}
}

// packageEnv is the identity environment every install script sees.
func packageEnv(pkg pakref.FullRef) []string {
	return []string{
		"PKG_NAME=" + pkg.Name,
		"PKG_VERSION=" + pkg.Version.String(),
		"PKG_REPOSITORY=" + pkg.Repository,
	}
}

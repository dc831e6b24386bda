// Package shellexec runs POSIX shell snippets in-process through
// mvdan.cc/sh. Snippets are parsed once, up front, so a manifest full of
// broken syntax fails at load time rather than halfway through a run.
package shellexec

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"rigup/pkg/errors"
	"rigup/pkg/logging"
)

var log = logging.GetLogger("shellexec")

// Snippet is a parsed shell script ready to run.
type Snippet struct {
	// Name identifies the snippet in errors and logs
	Name string

	prog *syntax.File
}

// Parse validates and parses a shell script. The name is used as the
// script's file name in syntax errors.
func Parse(name, script string) (*Snippet, error) {
	prog, err := syntax.NewParser().Parse(strings.NewReader(script), name)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrShellParse, "syntax error in %s", name)
	}
	return &Snippet{Name: name, prog: prog}, nil
}

// Options control a single Run.
type Options struct {
	// Dir is the working directory; empty means the current directory
	Dir string

	// Env is extra environment entries in KEY=VALUE form, layered over
	// the process environment
	Env []string

	// Stdin, Stdout and Stderr default to the process's own streams
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes the snippet. A non-zero exit status comes back as an
// ErrShellRun error carrying the status in its details; the context
// cancels a running snippet.
func Run(ctx context.Context, s *Snippet, opts Options) error {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	environ := os.Environ()
	environ = append(environ, opts.Env...)

	runner, err := interp.New(
		interp.Dir(opts.Dir),
		interp.Env(expand.ListEnviron(environ...)),
		interp.StdIO(opts.Stdin, opts.Stdout, opts.Stderr),
	)
	if err != nil {
		return errors.Wrapf(err, errors.ErrShellRun, "failed to create interpreter for %s", s.Name)
	}

	log.Debug().Str("snippet", s.Name).Str("dir", opts.Dir).Msg("running shell snippet")

	if err := runner.Run(ctx, s.prog); err != nil {
		var status interp.ExitStatus
		if stderrors.As(err, &status) {
			return errors.Newf(errors.ErrShellRun, "%s exited with status %d", s.Name, int(status)).
				WithDetail("status", int(status))
		}
		return errors.Wrapf(err, errors.ErrShellRun, "%s failed", s.Name)
	}

	return nil
}

// Package gitrepo keeps a local checkout of a remote repository current:
// clone when it is absent, fast-forward pull when it is already there.
// Git itself does the work; rigup only shells out to it.
package gitrepo

import (
	"context"
	"os/exec"
	"path/filepath"

	"rigup/pkg/errors"
	"rigup/pkg/logging"
	"rigup/pkg/types"
)

var log = logging.GetLogger("gitrepo")

// Outcome reports what a Sync call did.
type Outcome string

const (
	// Cloned means the repository was cloned fresh
	Cloned Outcome = "cloned"
	// Updated means an existing checkout was fast-forwarded
	Updated Outcome = "updated"
)

// Runner executes an external command and returns its combined output.
// Tests substitute a fake; production uses GitRunner.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// GitRunner runs commands through os/exec.
func GitRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	logging.LogCommand(name, args)
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Syncer clones or updates git repositories.
type Syncer struct {
	fs     types.FS
	run    Runner
	notify types.Notifier
}

// New creates a Syncer. A nil run falls back to GitRunner.
func New(fs types.FS, run Runner, notify types.Notifier) *Syncer {
	if run == nil {
		run = GitRunner
	}
	return &Syncer{fs: fs, run: run, notify: notify}
}

// Sync makes dest a current checkout of url. A dest that already holds a
// .git directory is pulled with --ff-only; anything else at dest is an
// error rather than a silent overwrite.
func (s *Syncer) Sync(ctx context.Context, url, dest string) (Outcome, error) {
	if _, err := s.fs.Stat(filepath.Join(dest, ".git")); err == nil {
		return s.update(ctx, url, dest)
	}

	if _, err := s.fs.Stat(dest); err == nil {
		return "", errors.Newf(errors.ErrGitCommand,
			"%s exists but is not a git checkout", dest)
	}

	return s.clone(ctx, url, dest)
}

func (s *Syncer) clone(ctx context.Context, url, dest string) (Outcome, error) {
	if err := s.fs.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrDirCreate, "cannot create directory for %s", dest)
	}

	out, err := s.run(ctx, "git", "clone", url, dest)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrGitCommand,
			"git clone %s failed: %s", url, string(out))
	}

	log.Info().Str("url", url).Str("dest", dest).Msg("repository cloned")
	s.notify.Info("cloned %s", url)
	return Cloned, nil
}

func (s *Syncer) update(ctx context.Context, url, dest string) (Outcome, error) {
	out, err := s.run(ctx, "git", "-C", dest, "pull", "--ff-only")
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrGitCommand,
			"git pull in %s failed: %s", dest, string(out))
	}

	log.Info().Str("url", url).Str("dest", dest).Msg("repository updated")
	s.notify.Info("updated %s", dest)
	return Updated, nil
}

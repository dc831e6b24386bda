package recipes

import (
	"context"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"rigup/pkg/archive"
	"rigup/pkg/errors"
	"rigup/pkg/fetch"
	"rigup/pkg/gitrepo"
	"rigup/pkg/link"
	"rigup/pkg/logging"
	"rigup/pkg/paths"
	"rigup/pkg/rcfile"
	"rigup/pkg/shellexec"
	"rigup/pkg/types"
)

var log = logging.GetLogger("recipes")

// Recipe is one named unit of provisioning. Implementations run their
// steps against the services in Env.
type Recipe interface {
	Name() string
	Description() string
	NeedsSudo() bool
	Run(ctx context.Context, env *Env) error
}

// Env bundles the services recipe steps act through. All fields but
// Stdout/Stderr are required.
type Env struct {
	FS     types.FS
	Paths  paths.Paths
	Notify types.Notifier
	RC     *rcfile.Writer
	Links  *link.Installer
	Git    *gitrepo.Syncer
	Fetch  *fetch.Downloader

	// Home is the user's home directory, used to keep rc blocks portable
	Home string

	// Rerun ignores once-sentinels, running completed steps again
	Rerun bool

	// Stdout and Stderr carry shell step output; nil means the process
	// streams
	Stdout io.Writer
	Stderr io.Writer
}

// Build turns manifest specs into runnable recipes, preserving order.
func Build(specs []RecipeSpec) []Recipe {
	out := make([]Recipe, len(specs))
	for i := range specs {
		out[i] = &manifestRecipe{spec: specs[i]}
	}
	return out
}

// manifestRecipe runs the steps of one [[recipe]] table in order.
type manifestRecipe struct {
	spec RecipeSpec
}

func (r *manifestRecipe) Name() string        { return r.spec.Name }
func (r *manifestRecipe) Description() string { return r.spec.Description }
func (r *manifestRecipe) NeedsSudo() bool     { return r.spec.NeedsSudo }

func (r *manifestRecipe) Run(ctx context.Context, env *Env) error {
	for i := range r.spec.Steps {
		step := &r.spec.Steps[i]
		if err := runStep(ctx, env, r.spec.Name, step); err != nil {
			return errors.Wrapf(err, errors.ErrRecipeFailed,
				"recipe %q failed at step %d (%s)", r.spec.Name, i+1, step.Kind)
		}
	}
	return nil
}

func runStep(ctx context.Context, env *Env, recipe string, step *StepSpec) error {
	switch step.Kind {
	case StepShell:
		return runShell(ctx, env, recipe, step)
	case StepClone:
		return runClone(ctx, env, step)
	case StepFetch:
		return runFetch(ctx, env, step)
	case StepLink:
		return runLink(env, step)
	case StepRequire:
		return runRequire(env, step)
	default:
		// Validate catches this at load time.
		return errors.Newf(errors.ErrInternal, "unknown step kind %q", step.Kind)
	}
}

func runShell(ctx context.Context, env *Env, recipe string, step *StepSpec) error {
	if step.Once != "" && !env.Rerun && hasSentinel(env, step.Once) {
		env.Notify.Info("%s already done, skipping", step.Once)
		return nil
	}

	snippet := step.snippet
	if snippet == nil {
		// Loaded outside LoadManifest; parse late.
		parsed, err := shellexec.Parse(recipe, step.Script)
		if err != nil {
			return err
		}
		snippet = parsed
	}

	dir := step.Dir
	if dir == "" {
		dir = env.Paths.RigRoot()
	}

	err := shellexec.Run(ctx, snippet, shellexec.Options{
		Dir:    dir,
		Env:    step.Env,
		Stdout: env.Stdout,
		Stderr: env.Stderr,
	})
	if err != nil {
		return err
	}

	if step.Once != "" {
		if err := writeSentinel(env, step.Once); err != nil {
			return err
		}
	}
	return nil
}

func runClone(ctx context.Context, env *Env, step *StepSpec) error {
	dest := step.Dest
	if dest == "" {
		dest = repoName(step.URL)
	}
	if !filepath.IsAbs(dest) {
		dest = filepath.Join(env.Paths.SrcDir(), dest)
	}

	_, err := env.Git.Sync(ctx, step.URL, dest)
	return err
}

func runFetch(ctx context.Context, env *Env, step *StepSpec) error {
	downloaded, err := env.Fetch.Download(ctx, step.URL, env.Paths.CacheDir(), env.Rerun)
	if err != nil {
		return err
	}

	if step.Extract != "" {
		dest := step.Extract
		if !filepath.IsAbs(dest) {
			dest = filepath.Join(env.Paths.SrcDir(), dest)
		}
		if err := archive.Extract(downloaded, dest); err != nil {
			return err
		}
		env.Notify.Info("extracted %s into %s", filepath.Base(downloaded), dest)
		return nil
	}

	if step.Dest != "" {
		dest := step.Dest
		if !filepath.IsAbs(dest) {
			dest = filepath.Join(env.Paths.SrcDir(), dest)
		}
		if err := env.FS.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "cannot create directory for %s", dest)
		}
		data, err := env.FS.ReadFile(downloaded)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", downloaded)
		}
		if err := env.FS.WriteFile(dest, data, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", dest)
		}
		env.Notify.Info("installed %s", dest)
	}
	return nil
}

func runLink(env *Env, step *StepSpec) error {
	source := step.Source
	if !filepath.IsAbs(source) {
		source = filepath.Join(env.Paths.RigRoot(), source)
		if _, err := env.FS.Lstat(source); err != nil {
			// Clone and fetch steps place their output under the local
			// root, so sources may be relative to it as well.
			alt := filepath.Join(env.Paths.LocalRoot(), step.Source)
			if _, err := env.FS.Lstat(alt); err == nil {
				source = alt
			}
		}
	}

	target := step.Target
	if target == "" {
		target = filepath.Join(env.Paths.BinDir(), filepath.Base(source))
	} else if !filepath.IsAbs(target) {
		target = filepath.Join(env.Paths.BinDir(), target)
	}

	outcome, err := env.Links.Symlink(source, target)
	if err != nil {
		return err
	}
	switch outcome {
	case link.Declined:
		return errors.Newf(errors.ErrSymlinkCreate, "replacement of %s declined", target)
	case link.SourceMissing:
		return errors.Newf(errors.ErrFileNotFound, "link source %s missing", source)
	}
	return nil
}

func runRequire(env *Env, step *StepSpec) error {
	target := step.File
	if target == "" {
		target = env.Paths.RCFile()
	}

	body := rcfile.HomeRelative(step.Body, env.Paths.LocalRoot(), env.Home)
	_, err := env.RC.RequireBlock(target, rcfile.Block{Label: step.Label, Body: body})
	return err
}

func hasSentinel(env *Env, name string) bool {
	_, err := env.FS.Stat(env.Paths.SentinelPath(name))
	return err == nil
}

// writeSentinel records a completed run-once step with a timestamp.
func writeSentinel(env *Env, name string) error {
	if err := env.FS.MkdirAll(env.Paths.SentinelsDir(), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create sentinel directory")
	}
	content := "completed|" + time.Now().Format(time.RFC3339)
	path := env.Paths.SentinelPath(name)
	if err := env.FS.WriteFile(path, []byte(content), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write sentinel %s", path)
	}
	log.Debug().Str("sentinel", name).Msg("sentinel recorded")
	return nil
}

// repoName derives a checkout directory name from a git URL.
func repoName(rawURL string) string {
	name := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		name = u.Path
	}
	name = path.Base(name)
	return strings.TrimSuffix(name, ".git")
}

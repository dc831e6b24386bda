package recipes

import (
	"context"

	"rigup/pkg/logging"
)

// Status of one recipe after a run.
type Status string

const (
	// StatusOK means every step completed
	StatusOK Status = "ok"
	// StatusFailed means a step failed and the recipe stopped there
	StatusFailed Status = "failed"
	// StatusSkipped means an earlier recipe failed first
	StatusSkipped Status = "skipped"
)

// Result is the outcome of one recipe.
type Result struct {
	Name   string
	Status Status
	Err    error
}

// Summary is the outcome of a whole run.
type Summary struct {
	Results []Result
}

// Failed reports whether any recipe failed.
func (s *Summary) Failed() bool {
	for _, r := range s.Results {
		if r.Status == StatusFailed {
			return true
		}
	}
	return false
}

// SudoStarter is what the runner needs from pkg/sudo. Start validates
// and begins refreshing; Stop ends the loop.
type SudoStarter interface {
	Start(ctx context.Context) error
	Stop()
}

// Runner executes recipes in order, stopping at the first failure.
// Recipes after a failure are reported as skipped, never run.
type Runner struct {
	env  *Env
	sudo SudoStarter
}

// NewRunner creates a Runner. sudo may be nil when no recipe in the run
// needs elevated credentials.
func NewRunner(env *Env, sudo SudoStarter) *Runner {
	return &Runner{env: env, sudo: sudo}
}

// Run executes the recipes sequentially. Failures are captured in the
// summary rather than returned, so the caller always gets a full
// per-recipe account of the run.
func (r *Runner) Run(ctx context.Context, recipes []Recipe) *Summary {
	log := logging.GetLogger("recipes.runner")
	summary := &Summary{Results: make([]Result, 0, len(recipes))}

	failed := false
	for _, recipe := range recipes {
		if failed {
			summary.Results = append(summary.Results, Result{Name: recipe.Name(), Status: StatusSkipped})
			continue
		}

		r.env.Notify.Milestone("recipe %s", recipe.Name())
		done := logging.LogOperationStart(log, "recipe "+recipe.Name())

		err := r.runOne(ctx, recipe)
		done()

		if err != nil {
			log.Error().Err(err).Str("recipe", recipe.Name()).Msg("recipe failed")
			r.env.Notify.Info("recipe %s failed: %v", recipe.Name(), err)
			summary.Results = append(summary.Results, Result{Name: recipe.Name(), Status: StatusFailed, Err: err})
			failed = true
			continue
		}

		summary.Results = append(summary.Results, Result{Name: recipe.Name(), Status: StatusOK})
	}

	return summary
}

// runOne wraps a single recipe with its sudo keep-alive when needed.
func (r *Runner) runOne(ctx context.Context, recipe Recipe) error {
	if recipe.NeedsSudo() && r.sudo != nil {
		if err := r.sudo.Start(ctx); err != nil {
			return err
		}
		defer r.sudo.Stop()
	}

	return recipe.Run(ctx, r.env)
}

// Package sudo keeps cached sudo credentials warm while a recipe that
// needs them runs. The refresh loop is tied to the caller's context and
// an explicit Stop, never left running detached.
package sudo

import (
	"context"
	"os"
	"os/exec"
	"sync"
	"time"

	"rigup/pkg/errors"
	"rigup/pkg/logging"
)

var log = logging.GetLogger("sudo")

// DefaultRefreshInterval is used when the configuration does not set one.
const DefaultRefreshInterval = 30 * time.Second

// Runner executes an external command. Tests substitute a fake.
type Runner func(ctx context.Context, name string, args ...string) error

// execRunner runs sudo interactively so the initial validation can ask
// for a password.
func execRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// KeepAlive refreshes sudo credentials on a ticker.
type KeepAlive struct {
	interval time.Duration
	run      Runner

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a KeepAlive. A nil run uses the real sudo binary; a
// non-positive interval falls back to DefaultRefreshInterval.
func New(interval time.Duration, run Runner) *KeepAlive {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	if run == nil {
		run = execRunner
	}
	return &KeepAlive{interval: interval, run: run}
}

// Start validates credentials and then refreshes them periodically until
// Stop is called or ctx is cancelled. Validation failure means no loop
// is started.
func (k *KeepAlive) Start(ctx context.Context) error {
	if err := k.run(ctx, "sudo", "-v"); err != nil {
		return errors.Wrap(err, errors.ErrSudoValidate, "sudo credential validation failed")
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	if k.cancel != nil {
		return errors.New(errors.ErrInternal, "keep-alive already started")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	k.cancel = cancel
	k.done = make(chan struct{})

	go k.loop(loopCtx)

	log.Debug().Dur("interval", k.interval).Msg("sudo keep-alive started")
	return nil
}

func (k *KeepAlive) loop(ctx context.Context) {
	defer close(k.done)

	ticker := time.NewTicker(k.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// -n: never prompt from the background loop. If the cached
			// credentials expired anyway, the next recipe step fails
			// visibly instead of hanging on a hidden password prompt.
			if err := k.run(ctx, "sudo", "-n", "-v"); err != nil {
				log.Warn().Err(err).Msg("sudo refresh failed")
			}
		}
	}
}

// Stop ends the refresh loop and waits for it to exit. Safe to call
// more than once, and before Start.
func (k *KeepAlive) Stop() {
	k.mu.Lock()
	cancel, done := k.cancel, k.done
	k.cancel, k.done = nil, nil
	k.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	log.Debug().Msg("sudo keep-alive stopped")
}

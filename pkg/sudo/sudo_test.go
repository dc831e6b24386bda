// pkg/sudo/sudo_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Fake command runner (sudo is never invoked)
// PURPOSE: Test keep-alive validation, refresh and shutdown

package sudo_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rigup/pkg/errors"
	"rigup/pkg/sudo"
)

// fakeRunner records sudo invocations thread-safely
type fakeRunner struct {
	mu       sync.Mutex
	calls    [][]string
	firstErr error
}

func (f *fakeRunner) run(_ context.Context, name string, args ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, append([]string{name}, args...))
	if len(f.calls) == 1 {
		return f.firstErr
	}
	return nil
}

func (f *fakeRunner) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeRunner) call(i int) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[i]
}

func TestKeepAlive(t *testing.T) {
	t.Run("start validates credentials first", func(t *testing.T) {
		run := &fakeRunner{}
		k := sudo.New(time.Hour, run.run)

		require.NoError(t, k.Start(context.Background()))
		defer k.Stop()

		require.Equal(t, 1, run.count())
		assert.Equal(t, []string{"sudo", "-v"}, run.call(0))
	})

	t.Run("failed validation starts no loop", func(t *testing.T) {
		run := &fakeRunner{firstErr: context.DeadlineExceeded}
		k := sudo.New(time.Millisecond, run.run)

		err := k.Start(context.Background())
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrSudoValidate))

		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, 1, run.count(), "no refreshes after a failed validation")
	})

	t.Run("loop refreshes non-interactively until stopped", func(t *testing.T) {
		run := &fakeRunner{}
		k := sudo.New(5*time.Millisecond, run.run)

		require.NoError(t, k.Start(context.Background()))

		deadline := time.Now().Add(time.Second)
		for run.count() < 3 && time.Now().Before(deadline) {
			time.Sleep(time.Millisecond)
		}
		k.Stop()

		require.GreaterOrEqual(t, run.count(), 3)
		assert.Equal(t, []string{"sudo", "-n", "-v"}, run.call(1))

		settled := run.count()
		time.Sleep(25 * time.Millisecond)
		assert.Equal(t, settled, run.count(), "no refreshes after Stop")
	})

	t.Run("context cancellation ends the loop", func(t *testing.T) {
		run := &fakeRunner{}
		k := sudo.New(5*time.Millisecond, run.run)

		ctx, cancel := context.WithCancel(context.Background())
		require.NoError(t, k.Start(ctx))
		cancel()

		time.Sleep(25 * time.Millisecond)
		settled := run.count()
		time.Sleep(25 * time.Millisecond)
		assert.Equal(t, settled, run.count())

		k.Stop()
	})

	t.Run("stop before start is a no-op", func(t *testing.T) {
		k := sudo.New(time.Hour, (&fakeRunner{}).run)
		k.Stop()
		k.Stop()
	})

	t.Run("double start is refused", func(t *testing.T) {
		run := &fakeRunner{}
		k := sudo.New(time.Hour, run.run)

		require.NoError(t, k.Start(context.Background()))
		defer k.Stop()

		assert.Error(t, k.Start(context.Background()))
	})
}

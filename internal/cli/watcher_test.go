package cli

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/huddlekeeper/internal/securestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckIdle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, "", nil)
	require.NoError(t, env.store.Setup(ctx, []byte("1234")))
	require.NoError(t, env.app.openHuddle(ctx))

	env.clock.Advance(4 * time.Minute)
	assert.False(t, env.app.checkIdle(ctx))

	env.clock.Advance(time.Minute)
	assert.True(t, env.app.checkIdle(ctx))

	st, err := env.store.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, securestore.StateLocked, st)
	assert.Contains(t, env.out.String(), "Locked after inactivity")

	// already locked
	assert.False(t, env.app.checkIdle(ctx))
}

func TestCheckIdle_ActivityResetsTimer(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, "", nil)
	require.NoError(t, env.store.Setup(ctx, []byte("1234")))
	require.NoError(t, env.app.openHuddle(ctx))

	env.clock.Advance(4 * time.Minute)
	env.app.touch()
	env.clock.Advance(4 * time.Minute)
	assert.False(t, env.app.checkIdle(ctx))
}

func TestStartIdleWatcher_LocksAndStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	env := newTestEnv(t, "", nil)
	require.NoError(t, env.store.Setup(ctx, []byte("1234")))
	require.NoError(t, env.app.openHuddle(ctx))
	env.clock.Advance(10 * time.Minute)

	done := make(chan struct{})
	go func() {
		env.app.StartIdleWatcher(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool {
		st, err := env.store.State(context.Background())
		return err == nil && st == securestore.StateLocked
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestRun_LockedByWatcherPromptsUnlock(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, "\n1234\ntodo after unlock\nexit\n", nil)
	require.NoError(t, env.store.Setup(ctx, []byte("1234")))
	require.NoError(t, env.app.openHuddle(ctx))
	env.store.Lock()

	require.ErrorIs(t, env.app.repl(ctx), errExit)

	assert.Contains(t, env.out.String(), "Session is locked.")
	d := env.svc.Data()
	require.Len(t, d.Todo24, 1)
	assert.Equal(t, "after unlock", d.Todo24[0].Task)
}

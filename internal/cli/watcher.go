package cli

import (
	"context"
	"time"
)

// StartIdleWatcher locks the store once no input has arrived for the
// configured lock timeout. It returns when ctx is done.
func (a *App) StartIdleWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.checkIdle(ctx)
		}
	}
}

// checkIdle locks an unlocked store whose last input is older than the
// lock timeout and reports whether it did.
func (a *App) checkIdle(ctx context.Context) bool {
	idle := a.now().Sub(time.Unix(0, a.lastActivity.Load()))
	if idle < time.Duration(a.lockAfter.Load()) {
		return false
	}

	locked, err := a.isLocked(ctx)
	if err != nil {
		a.log.Error(ctx, "idle check failed", "error", err)
		return false
	}
	if locked {
		return false
	}

	a.vault.Lock()
	a.log.Info(ctx, "session locked after inactivity", "idle", idle.Round(time.Second).String())
	a.println("\nLocked after inactivity. Press Enter to unlock.")
	return true
}

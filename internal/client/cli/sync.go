package cli

import (
	"context"
	"fmt"
)

// RunSync hydrates an empty store and runs one reconciliation pass
func (a *App) RunSync(ctx context.Context) error {
	if err := a.Loader.Hydrate(ctx); err != nil {
		return fmt.Errorf("hydration failed: %w", err)
	}
	// A CLI invocation is short-lived, so let background hydration finish
	// before reconciling.
	a.Loader.Wait()

	result, err := a.Sync.Sync(ctx)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	fmt.Fprintf(a.Out, "Sync complete: pulled %d, pushed %d", result.Pulled, result.Pushed)
	if result.Deferred > 0 {
		fmt.Fprintf(a.Out, ", deferred %d", result.Deferred)
	}
	if result.Parked > 0 {
		fmt.Fprintf(a.Out, ", rejected %d (see 'flashsync status')", result.Parked)
	}
	if result.ConflictsResolved > 0 || result.ConflictsKept > 0 {
		fmt.Fprintf(a.Out, ", conflicts: %d remote, %d local",
			result.ConflictsResolved, result.ConflictsKept)
	}
	fmt.Fprintln(a.Out)

	return nil
}

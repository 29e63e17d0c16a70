package cli

import (
	"context"
	"fmt"
	"time"
)

// RunStatus prints the sync status: pending mutations and the last
// completed pass. The app stays fully readable and writable offline; this
// is the "last synced at" surface.
func (a *App) RunStatus(ctx context.Context) error {
	pending, err := a.Sync.PendingCount(ctx)
	if err != nil {
		return fmt.Errorf("failed to count pending mutations: %w", err)
	}

	cursor, err := a.Cursor.GetCursor(ctx)
	if err != nil {
		return fmt.Errorf("failed to load sync cursor: %w", err)
	}

	fmt.Fprintf(a.Out, "Pending mutations: %d\n", pending)
	fmt.Fprintf(a.Out, "Sync passes:       %d\n", cursor.SyncEpoch)
	if cursor.LastSyncedAt == 0 {
		fmt.Fprintln(a.Out, "Last synced:       never")
	} else {
		fmt.Fprintf(a.Out, "Last synced:       %s\n",
			time.UnixMilli(cursor.LastSyncedAt).Format(time.RFC3339))
	}

	return nil
}

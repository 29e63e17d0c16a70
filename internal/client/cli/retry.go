package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/nkarpov/flashsync/internal/client/storage"
)

// RunRetry clears the sync_error parking for a card so its mutations push
// again on the next pass
func (a *App) RunRetry(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing card id. Usage: flashsync retry <id>")
	}

	if err := a.Sync.RetryCard(ctx, args[0]); err != nil {
		if errors.Is(err, storage.ErrEntryNotFound) {
			return fmt.Errorf("no queued mutations for card %s", args[0])
		}
		return fmt.Errorf("failed to retry card: %w", err)
	}

	fmt.Fprintf(a.Out, "Card %s queued for retry\n", args[0])
	return nil
}

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/nkarpov/flashsync/internal/client/storage"
)

// RunDelete tombstones a flashcard locally and queues the deletion
func (a *App) RunDelete(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing card id. Usage: flashsync delete <id>")
	}

	if err := a.Cache.Delete(ctx, args[0]); err != nil {
		if errors.Is(err, storage.ErrCardNotFound) {
			return fmt.Errorf("card %s not found", args[0])
		}
		return fmt.Errorf("failed to delete card: %w", err)
	}

	fmt.Fprintf(a.Out, "Deleted card %s (pending sync)\n", args[0])
	return nil
}

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nkarpov/flashsync/internal/client/storage"
)

// RunGet prints one flashcard from the local store
func (a *App) RunGet(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing card id. Usage: flashsync get <id>")
	}

	card, err := a.Cache.Read(ctx, args[0])
	if err != nil {
		if errors.Is(err, storage.ErrCardNotFound) {
			return fmt.Errorf("card %s not found", args[0])
		}
		return fmt.Errorf("failed to get card: %w", err)
	}

	var content cardContent
	_ = json.Unmarshal(card.Content, &content)

	fmt.Fprintf(a.Out, "ID:         %s\n", card.ID)
	fmt.Fprintf(a.Out, "Word:       %s\n", content.Word)
	fmt.Fprintf(a.Out, "Definition: %s\n", content.Definition)
	if content.Example != "" {
		fmt.Fprintf(a.Out, "Example:    %s\n", content.Example)
	}
	fmt.Fprintf(a.Out, "State:      %s\n", card.SyncState)

	return nil
}

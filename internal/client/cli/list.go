package cli

import (
	"context"
	"encoding/json"
	"fmt"
)

// RunList prints all flashcards from the local store. An empty store is
// hydrated progressively first, so the first rows appear without waiting
// for the full collection.
func (a *App) RunList(ctx context.Context) error {
	if err := a.Loader.Hydrate(ctx); err != nil {
		// The store stays usable; reads just reflect what is local
		fmt.Fprintf(a.Out, "Warning: hydration unavailable: %v\n", err)
	}

	cards, err := a.Cache.ReadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list cards: %w", err)
	}

	if len(cards) == 0 {
		fmt.Fprintln(a.Out, "No flashcards yet. Use 'flashsync add' to create one.")
		return nil
	}

	fmt.Fprintf(a.Out, "Found %d card(s):\n", len(cards))
	for _, card := range cards {
		var content cardContent
		_ = json.Unmarshal(card.Content, &content)
		fmt.Fprintf(a.Out, "  %s  %-20s %s [%s]\n", card.ID, content.Word, content.Definition, card.SyncState)
	}

	return nil
}

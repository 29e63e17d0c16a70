package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
)

// cardContent is the payload the CLI authors. The sync engine treats it as
// an opaque blob; only the CLI ever looks inside.
type cardContent struct {
	Word       string `json:"word"`
	Definition string `json:"definition"`
	Example    string `json:"example,omitempty"`
}

// RunAdd creates a flashcard locally and queues it for push
func (a *App) RunAdd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(a.Out)
	word := fs.String("word", "", "Word or phrase to study")
	def := fs.String("def", "", "Definition")
	example := fs.String("example", "", "Optional usage example")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *word == "" || *def == "" {
		return fmt.Errorf("both -word and -def are required")
	}

	content, err := json.Marshal(cardContent{
		Word:       *word,
		Definition: *def,
		Example:    *example,
	})
	if err != nil {
		return fmt.Errorf("failed to encode content: %w", err)
	}

	card, err := a.Cache.Create(ctx, content)
	if err != nil {
		return fmt.Errorf("failed to add card: %w", err)
	}

	fmt.Fprintf(a.Out, "Added card %s (%s)\n", card.ID, card.SyncState)
	return nil
}

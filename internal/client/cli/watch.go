package cli

import (
	"context"
	"flag"
	"fmt"
	"time"
)

// RunWatch reconciles periodically until the context is cancelled.
// Triggers that land while a pass is running coalesce into one follow-up.
func (a *App) RunWatch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(a.Out)
	interval := fs.Duration("interval", 30*time.Second, "Time between reconciliation passes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.Loader.Hydrate(ctx); err != nil {
		fmt.Fprintf(a.Out, "Warning: hydration unavailable: %v\n", err)
	}

	fmt.Fprintf(a.Out, "Watching, syncing every %s (Ctrl-C to stop)\n", *interval)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for {
		a.Sync.Trigger(ctx)

		select {
		case <-ctx.Done():
			fmt.Fprintln(a.Out, "Stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Package cli implements the flashsync client commands.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/nkarpov/flashsync/internal/client/cache"
	"github.com/nkarpov/flashsync/internal/client/loader"
	"github.com/nkarpov/flashsync/internal/client/storage"
	syncsvc "github.com/nkarpov/flashsync/internal/client/sync"
)

// App bundles the client services the commands operate on
type App struct {
	Cache  cache.Service
	Sync   syncsvc.Service
	Loader *loader.Loader
	Cursor storage.CursorStorage
	Out    io.Writer
}

// Run dispatches a command. It returns the command's error; the caller
// decides how to exit.
func (a *App) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "add":
		return a.RunAdd(ctx, args)
	case "list":
		return a.RunList(ctx)
	case "get":
		return a.RunGet(ctx, args)
	case "delete":
		return a.RunDelete(ctx, args)
	case "sync":
		return a.RunSync(ctx)
	case "status":
		return a.RunStatus(ctx)
	case "retry":
		return a.RunRetry(ctx, args)
	case "watch":
		return a.RunWatch(ctx, args)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

// PrintUsage writes command help
func (a *App) PrintUsage() {
	fmt.Fprintln(a.Out, "Usage: flashsync [flags] <command>")
	fmt.Fprintln(a.Out)
	fmt.Fprintln(a.Out, "Commands:")
	fmt.Fprintln(a.Out, "  add -word <word> -def <definition>   add a flashcard")
	fmt.Fprintln(a.Out, "  list                                 list flashcards")
	fmt.Fprintln(a.Out, "  get <id>                             show one flashcard")
	fmt.Fprintln(a.Out, "  delete <id>                          delete a flashcard")
	fmt.Fprintln(a.Out, "  sync                                 reconcile with the server")
	fmt.Fprintln(a.Out, "  status                               show sync status")
	fmt.Fprintln(a.Out, "  retry <id>                           retry a rejected mutation")
	fmt.Fprintln(a.Out, "  watch [-interval 30s]                sync periodically until interrupted")
}

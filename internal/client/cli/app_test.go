package cli

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpClient "github.com/nkarpov/flashsync/internal/client/api"
	"github.com/nkarpov/flashsync/internal/client/cache"
	"github.com/nkarpov/flashsync/internal/client/events"
	"github.com/nkarpov/flashsync/internal/client/loader"
	"github.com/nkarpov/flashsync/internal/client/storage/boltdb"
	syncsvc "github.com/nkarpov/flashsync/internal/client/sync"
	"github.com/nkarpov/flashsync/pkg/api"
)

// newTestApp wires the full client stack against a mocked gateway
func newTestApp(t *testing.T, mockAPI *httpClient.ClientAPIMock) (*App, *bytes.Buffer) {
	t.Helper()

	store, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })

	logger := slog.Default()
	bus := events.NewBus()

	syncService := syncsvc.NewService(mockAPI, store, store, store, bus, logger)
	// Commands run synchronously in tests, so no background trigger
	cacheService := cache.NewService(store, store, bus, nil)
	hydrator := loader.NewLoader(mockAPI, store, store, bus, logger)

	out := &bytes.Buffer{}
	app := &App{
		Cache:  cacheService,
		Sync:   syncService,
		Loader: hydrator,
		Cursor: store,
		Out:    out,
	}

	return app, out
}

func emptyCollection(ctx context.Context, offset, limit int) (*api.CollectionPage, error) {
	return &api.CollectionPage{Offset: offset, Limit: limit}, nil
}

func TestApp_AddListGetDelete(t *testing.T) {
	mockAPI := &httpClient.ClientAPIMock{ListCardsFunc: emptyCollection}
	app, out := newTestApp(t, mockAPI)
	ctx := context.Background()

	require.NoError(t, app.Run(ctx, "add", []string{"-word", "hola", "-def", "hello"}))
	assert.Contains(t, out.String(), "Added card")
	assert.Contains(t, out.String(), "pending_create")

	out.Reset()
	require.NoError(t, app.Run(ctx, "list", nil))
	assert.Contains(t, out.String(), "Found 1 card(s)")
	assert.Contains(t, out.String(), "hola")

	// Pull the generated id out of the list output
	fields := strings.Fields(strings.Split(out.String(), "\n")[1])
	cardID := fields[0]

	out.Reset()
	require.NoError(t, app.Run(ctx, "get", []string{cardID}))
	assert.Contains(t, out.String(), "Word:       hola")
	assert.Contains(t, out.String(), "Definition: hello")

	out.Reset()
	require.NoError(t, app.Run(ctx, "delete", []string{cardID}))

	out.Reset()
	require.NoError(t, app.Run(ctx, "list", nil))
	assert.Contains(t, out.String(), "No flashcards yet")
}

func TestApp_Add_RequiresWordAndDef(t *testing.T) {
	app, _ := newTestApp(t, &httpClient.ClientAPIMock{})

	err := app.Run(context.Background(), "add", []string{"-word", "hola"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-def")
}

func TestApp_Get_Unknown(t *testing.T) {
	app, _ := newTestApp(t, &httpClient.ClientAPIMock{})

	err := app.Run(context.Background(), "get", []string{"missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestApp_SyncAndStatus(t *testing.T) {
	mockAPI := &httpClient.ClientAPIMock{
		ListCardsFunc:  emptyCollection,
		CreateCardFunc: func(ctx context.Context, card api.Card) error { return nil },
	}
	app, out := newTestApp(t, mockAPI)
	ctx := context.Background()

	require.NoError(t, app.Run(ctx, "add", []string{"-word", "hola", "-def", "hello"}))

	out.Reset()
	require.NoError(t, app.Run(ctx, "status", nil))
	assert.Contains(t, out.String(), "Pending mutations: 1")
	assert.Contains(t, out.String(), "Last synced:       never")

	out.Reset()
	require.NoError(t, app.Run(ctx, "sync", nil))
	assert.Contains(t, out.String(), "pushed 1")

	out.Reset()
	require.NoError(t, app.Run(ctx, "status", nil))
	assert.Contains(t, out.String(), "Pending mutations: 0")
	assert.Contains(t, out.String(), "Sync passes:       1")
	assert.NotContains(t, out.String(), "never")
}

func TestApp_UnknownCommand(t *testing.T) {
	app, _ := newTestApp(t, &httpClient.ClientAPIMock{})

	err := app.Run(context.Background(), "frobnicate", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

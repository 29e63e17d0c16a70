package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkarpov/flashsync/internal/server/storage/sqlite"
	"github.com/nkarpov/flashsync/pkg/api"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })

	handler := NewCollectionHandler(slog.Default(), store)
	handler.now = func() time.Time { return time.UnixMilli(1_000_000) }

	mux := http.NewServeMux()
	handler.Register(mux)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server
}

func doRequest(t *testing.T, server *httptest.Server, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, data
}

func createCard(t *testing.T, server *httptest.Server, id string, updatedAt int64) {
	t.Helper()

	resp, _ := doRequest(t, server, http.MethodPost, "/api/v1/collection", api.Card{
		ID:        id,
		Content:   json.RawMessage(fmt.Sprintf(`{"word":"word-%s"}`, id)),
		UpdatedAt: updatedAt,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestCollectionHandler_Create(t *testing.T) {
	server := newTestServer(t)

	resp, body := doRequest(t, server, http.MethodPost, "/api/v1/collection", api.Card{
		ID:        "card-1",
		Content:   json.RawMessage(`{"word":"hola"}`),
		UpdatedAt: 100,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var card api.Card
	require.NoError(t, json.Unmarshal(body, &card))
	assert.Equal(t, "card-1", card.ID)
	assert.Equal(t, int64(100), card.UpdatedAt)
}

func TestCollectionHandler_Create_ReplayedIsIdempotent(t *testing.T) {
	server := newTestServer(t)

	createCard(t, server, "card-1", 100)

	// A replayed create for the same id overwrites and reports 200
	resp, _ := doRequest(t, server, http.MethodPost, "/api/v1/collection", api.Card{
		ID:        "card-1",
		Content:   json.RawMessage(`{"word":"replayed"}`),
		UpdatedAt: 200,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doRequest(t, server, http.MethodGet, "/api/v1/collection/card-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var card api.Card
	require.NoError(t, json.Unmarshal(body, &card))
	assert.Equal(t, int64(200), card.UpdatedAt)
}

func TestCollectionHandler_Create_Validation(t *testing.T) {
	server := newTestServer(t)

	resp, body := doRequest(t, server, http.MethodPost, "/api/v1/collection", api.Card{
		Content: json.RawMessage(`{"word":"hola"}`),
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errResp api.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Equal(t, api.ErrCodeValidation, errResp.Error)
}

func TestCollectionHandler_Get_NotFound(t *testing.T) {
	server := newTestServer(t)

	resp, body := doRequest(t, server, http.MethodGet, "/api/v1/collection/missing", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var errResp api.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Equal(t, api.ErrCodeNotFound, errResp.Error)
}

func TestCollectionHandler_List(t *testing.T) {
	server := newTestServer(t)

	for i := 0; i < 5; i++ {
		createCard(t, server, fmt.Sprintf("card-%d", i), int64(100+i))
	}

	resp, body := doRequest(t, server, http.MethodGet, "/api/v1/collection?offset=2&limit=2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page api.CollectionPage
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 2, page.Offset)
	require.Len(t, page.Cards, 2)
	assert.Equal(t, "card-2", page.Cards[0].ID)
	assert.Equal(t, "card-3", page.Cards[1].ID)
}

func TestCollectionHandler_List_InvalidParams(t *testing.T) {
	server := newTestServer(t)

	resp, _ := doRequest(t, server, http.MethodGet, "/api/v1/collection?offset=abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doRequest(t, server, http.MethodGet, "/api/v1/collection?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCollectionHandler_Update(t *testing.T) {
	server := newTestServer(t)

	createCard(t, server, "card-1", 100)

	resp, body := doRequest(t, server, http.MethodPut, "/api/v1/collection/card-1", api.Card{
		ID:        "card-1",
		Content:   json.RawMessage(`{"word":"nuevo"}`),
		UpdatedAt: 200,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var card api.Card
	require.NoError(t, json.Unmarshal(body, &card))
	assert.Equal(t, int64(200), card.UpdatedAt)
	assert.JSONEq(t, `{"word":"nuevo"}`, string(card.Content))
}

func TestCollectionHandler_Update_IdMismatch(t *testing.T) {
	server := newTestServer(t)

	resp, body := doRequest(t, server, http.MethodPut, "/api/v1/collection/card-1", api.Card{
		ID:        "card-2",
		UpdatedAt: 200,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errResp api.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Equal(t, api.ErrCodeValidation, errResp.Error)
}

func TestCollectionHandler_Update_MissingCardCreates(t *testing.T) {
	server := newTestServer(t)

	// An update for an unknown id creates the record, keeping replays safe
	resp, _ := doRequest(t, server, http.MethodPut, "/api/v1/collection/card-1", api.Card{
		Content:   json.RawMessage(`{"word":"hola"}`),
		UpdatedAt: 100,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doRequest(t, server, http.MethodGet, "/api/v1/collection/card-1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCollectionHandler_Delete(t *testing.T) {
	server := newTestServer(t)

	createCard(t, server, "card-1", 100)

	resp, _ := doRequest(t, server, http.MethodDelete, "/api/v1/collection/card-1", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// The tombstone stays visible in the collection with a fresh updated_at
	resp, body := doRequest(t, server, http.MethodGet, "/api/v1/collection", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page api.CollectionPage
	require.NoError(t, json.Unmarshal(body, &page))
	require.Len(t, page.Cards, 1)
	assert.True(t, page.Cards[0].Deleted)
	assert.Equal(t, int64(1_000_000), page.Cards[0].UpdatedAt)
}

func TestCollectionHandler_Delete_NotFound(t *testing.T) {
	server := newTestServer(t)

	resp, _ := doRequest(t, server, http.MethodDelete, "/api/v1/collection/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/nkarpov/flashsync/internal/models"
	"github.com/nkarpov/flashsync/internal/server/storage"
	"github.com/nkarpov/flashsync/pkg/api"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 500
)

// CardStore defines the storage operations the collection handler needs
type CardStore interface {
	ListCards(ctx context.Context, offset, limit int) ([]*models.Flashcard, int, error)
	GetCard(ctx context.Context, id string) (*models.Flashcard, error)
	UpsertCard(ctx context.Context, card *models.Flashcard) (bool, error)
	DeleteCard(ctx context.Context, id string, updatedAt int64) error
}

// CollectionHandler handles the flashcard collection endpoints
type CollectionHandler struct {
	logger *slog.Logger
	store  CardStore
	now    func() time.Time
}

// NewCollectionHandler creates a new collection handler
func NewCollectionHandler(logger *slog.Logger, store CardStore) *CollectionHandler {
	return &CollectionHandler{
		logger: logger,
		store:  store,
		now:    time.Now,
	}
}

// Register wires the collection routes into the mux
func (h *CollectionHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/collection", h.handleList)
	mux.HandleFunc("POST /api/v1/collection", h.handleCreate)
	mux.HandleFunc("GET /api/v1/collection/{id}", h.handleGet)
	mux.HandleFunc("PUT /api/v1/collection/{id}", h.handleUpdate)
	mux.HandleFunc("DELETE /api/v1/collection/{id}", h.handleDelete)
}

// handleList serves GET /api/v1/collection?offset&limit
func (h *CollectionHandler) handleList(w http.ResponseWriter, r *http.Request) {
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, api.ErrCodeValidation, "invalid offset parameter")
		return
	}
	limit, err := queryInt(r, "limit", defaultPageLimit)
	if err != nil || limit <= 0 {
		h.writeError(w, http.StatusBadRequest, api.ErrCodeValidation, "invalid limit parameter")
		return
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	cards, total, err := h.store.ListCards(r.Context(), offset, limit)
	if err != nil {
		h.logger.Error("Failed to list cards", "error", err)
		h.writeError(w, http.StatusInternalServerError, api.ErrCodeInternal, "failed to list collection")
		return
	}

	page := api.CollectionPage{
		Cards:  make([]api.Card, 0, len(cards)),
		Offset: offset,
		Limit:  limit,
		Total:  total,
	}
	for _, card := range cards {
		page.Cards = append(page.Cards, cardToAPI(card))
	}

	h.writeJSON(w, http.StatusOK, page)
}

// handleGet serves GET /api/v1/collection/{id}
func (h *CollectionHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	card, err := h.store.GetCard(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrCardNotFound) {
			h.writeError(w, http.StatusNotFound, api.ErrCodeNotFound, "card not found")
			return
		}
		h.logger.Error("Failed to get card", "card_id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, api.ErrCodeInternal, "failed to get card")
		return
	}

	h.writeJSON(w, http.StatusOK, cardToAPI(card))
}

// handleCreate serves POST /api/v1/collection. A duplicate id is treated
// as an overwrite so that replayed creates stay idempotent.
func (h *CollectionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	card, ok := h.decodeCard(w, r)
	if !ok {
		return
	}

	existed, err := h.store.UpsertCard(r.Context(), card)
	if err != nil {
		h.logger.Error("Failed to create card", "card_id", card.ID, "error", err)
		h.writeError(w, http.StatusInternalServerError, api.ErrCodeInternal, "failed to create card")
		return
	}

	status := http.StatusCreated
	if existed {
		status = http.StatusOK
	}
	h.writeJSON(w, status, cardToAPI(card))
}

// handleUpdate serves PUT /api/v1/collection/{id}
func (h *CollectionHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	card, ok := h.decodeCard(w, r)
	if !ok {
		return
	}
	if card.ID != "" && card.ID != id {
		h.writeError(w, http.StatusBadRequest, api.ErrCodeValidation, "body id does not match path id")
		return
	}
	card.ID = id

	if _, err := h.store.UpsertCard(r.Context(), card); err != nil {
		h.logger.Error("Failed to update card", "card_id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, api.ErrCodeInternal, "failed to update card")
		return
	}

	h.writeJSON(w, http.StatusOK, cardToAPI(card))
}

// handleDelete serves DELETE /api/v1/collection/{id}. Deletes tombstone
// the record so clients still pulling observe the deletion.
func (h *CollectionHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	err := h.store.DeleteCard(r.Context(), id, h.now().UnixMilli())
	if err != nil {
		if errors.Is(err, storage.ErrCardNotFound) {
			h.writeError(w, http.StatusNotFound, api.ErrCodeNotFound, "card not found")
			return
		}
		h.logger.Error("Failed to delete card", "card_id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, api.ErrCodeInternal, "failed to delete card")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// decodeCard reads and validates a card body
func (h *CollectionHandler) decodeCard(w http.ResponseWriter, r *http.Request) (*models.Flashcard, bool) {
	var wireCard api.Card
	if err := json.NewDecoder(r.Body).Decode(&wireCard); err != nil {
		h.writeError(w, http.StatusBadRequest, api.ErrCodeValidation, "invalid request body")
		return nil, false
	}
	if wireCard.ID == "" && r.Method == http.MethodPost {
		h.writeError(w, http.StatusBadRequest, api.ErrCodeValidation, "card id is required")
		return nil, false
	}
	if wireCard.UpdatedAt == 0 {
		wireCard.UpdatedAt = h.now().UnixMilli()
	}

	return &models.Flashcard{
		ID:        wireCard.ID,
		Content:   wireCard.Content,
		UpdatedAt: wireCard.UpdatedAt,
		Deleted:   wireCard.Deleted,
	}, true
}

func (h *CollectionHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}

func (h *CollectionHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	h.writeJSON(w, status, api.ErrorResponse{Error: code, Message: message})
}

func cardToAPI(card *models.Flashcard) api.Card {
	return api.Card{
		ID:        card.ID,
		Content:   card.Content,
		UpdatedAt: card.UpdatedAt,
		Deleted:   card.Deleted,
	}
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, errors.New("invalid integer parameter")
	}
	return value, nil
}

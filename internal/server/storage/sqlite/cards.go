package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nkarpov/flashsync/internal/models"
	"github.com/nkarpov/flashsync/internal/server/storage"
)

// ListCards returns one page of the collection in stable id order,
// tombstones included, plus the total record count
func (s *Storage) ListCards(ctx context.Context, offset, limit int) ([]*models.Flashcard, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count cards: %w", err)
	}

	query := `
		SELECT id, content, updated_at, deleted
		FROM cards
		ORDER BY id
		LIMIT ? OFFSET ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list cards: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var cards []*models.Flashcard
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, 0, err
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("row iteration failed: %w", err)
	}

	return cards, total, nil
}

// GetCard retrieves a card by id
func (s *Storage) GetCard(ctx context.Context, id string) (*models.Flashcard, error) {
	query := `
		SELECT id, content, updated_at, deleted
		FROM cards
		WHERE id = ?
	`

	row := s.db.QueryRowContext(ctx, query, id)

	card, err := scanCard(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrCardNotFound
		}
		return nil, err
	}

	return card, nil
}

// UpsertCard creates or overwrites a card by id. A replayed create for an
// existing id is a plain overwrite, which keeps pushes idempotent.
func (s *Storage) UpsertCard(ctx context.Context, card *models.Flashcard) (bool, error) {
	existing, err := s.GetCard(ctx, card.ID)
	if err != nil && !errors.Is(err, storage.ErrCardNotFound) {
		return false, fmt.Errorf("failed to check existing card: %w", err)
	}

	query := `
		INSERT INTO cards (id, content, updated_at, deleted)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content = excluded.content,
			updated_at = excluded.updated_at,
			deleted = excluded.deleted
	`

	content := card.Content
	if len(content) == 0 {
		content = json.RawMessage(`{}`)
	}

	_, err = s.db.ExecContext(ctx, query,
		card.ID,
		string(content),
		card.UpdatedAt,
		boolToInt(card.Deleted),
	)
	if err != nil {
		return false, fmt.Errorf("failed to upsert card: %w", err)
	}

	return existing != nil, nil
}

// DeleteCard tombstones a card with the given modification time
func (s *Storage) DeleteCard(ctx context.Context, id string, updatedAt int64) error {
	query := `
		UPDATE cards
		SET deleted = 1, updated_at = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query, updatedAt, id)
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return storage.ErrCardNotFound
	}

	return nil
}

// scanner covers both sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanCard(row scanner) (*models.Flashcard, error) {
	var (
		card    models.Flashcard
		content string
		deleted int
	)

	if err := row.Scan(&card.ID, &content, &card.UpdatedAt, &deleted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan card: %w", err)
	}

	card.Content = json.RawMessage(content)
	card.Deleted = deleted != 0
	card.SyncState = models.SyncStateSynced

	return &card, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

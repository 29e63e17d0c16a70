package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/nkarpov/flashsync/pkg/api"
)

//go:generate moq -out client_mock.go . ClientAPI

// ClientAPI defines the remote collection gateway operations. All five are
// idempotent by card id.
type ClientAPI interface {
	// ListCards fetches one page of the collection, tombstones included.
	ListCards(ctx context.Context, offset, limit int) (*api.CollectionPage, error)

	// GetCard fetches a single card by id. Used to arbitrate replayed
	// creates: a conflicting id is only overwritten when the remote copy
	// is not strictly newer.
	GetCard(ctx context.Context, id string) (*api.Card, error)

	// CreateCard creates a card. A duplicate id yields a conflict error.
	CreateCard(ctx context.Context, card api.Card) error

	// UpdateCard overwrites a card by id.
	UpdateCard(ctx context.Context, card api.Card) error

	// DeleteCard tombstones a card by id.
	DeleteCard(ctx context.Context, id string) error
}

// Client is the HTTP client for the collection gateway
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new gateway client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			// Bounded timeout: expiry is treated as a transient failure
			Timeout: 15 * time.Second,
		},
	}
}

// ListCards fetches one page of the collection
func (c *Client) ListCards(ctx context.Context, offset, limit int) (*api.CollectionPage, error) {
	var resp api.CollectionPage
	path := "/api/v1/collection?offset=" + strconv.Itoa(offset) + "&limit=" + strconv.Itoa(limit)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("list request failed: %w", err)
	}
	return &resp, nil
}

// GetCard fetches a single card by id
func (c *Client) GetCard(ctx context.Context, id string) (*api.Card, error) {
	var resp api.Card
	path := "/api/v1/collection/" + url.PathEscape(id)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("get request failed: %w", err)
	}
	return &resp, nil
}

// CreateCard creates a card on the gateway
func (c *Client) CreateCard(ctx context.Context, card api.Card) error {
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/collection", card, nil); err != nil {
		return fmt.Errorf("create request failed: %w", err)
	}
	return nil
}

// UpdateCard overwrites a card by id
func (c *Client) UpdateCard(ctx context.Context, card api.Card) error {
	path := "/api/v1/collection/" + url.PathEscape(card.ID)
	if err := c.doRequest(ctx, http.MethodPut, path, card, nil); err != nil {
		return fmt.Errorf("update request failed: %w", err)
	}
	return nil
}

// DeleteCard tombstones a card by id
func (c *Client) DeleteCard(ctx context.Context, id string) error {
	path := "/api/v1/collection/" + url.PathEscape(id)
	if err := c.doRequest(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("delete request failed: %w", err)
	}
	return nil
}

// doRequest performs one HTTP round trip and maps non-2xx responses to
// *RequestError
func (c *Client) doRequest(ctx context.Context, method, path string, body, result interface{}) error {
	reqURL := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reqErr := &RequestError{StatusCode: resp.StatusCode}
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil {
			reqErr.Code = errResp.Error
			reqErr.Message = errResp.Message
		}
		return reqErr
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

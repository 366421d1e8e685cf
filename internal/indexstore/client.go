package indexstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/BrainDriveAI/document-processing-service/internal/chunking"
)

// TransientError marks an index failure worth retrying: network faults and
// 5xx responses. 4xx responses are permanent.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// Client communicates with the downstream chunk index (vector store
// ingestion API) over HTTP. A nil Client is valid and indexes nothing, for
// deployments that only want the chunking API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		return nil
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Enabled reports whether indexing is configured.
func (c *Client) Enabled() bool { return c != nil }

// batchRequest is the body for POST /chunks.
type batchRequest struct {
	DocumentID   string           `json:"document_id"`
	CollectionID string           `json:"collection_id,omitempty"`
	Chunks       []chunking.Chunk `json:"chunks"`
}

// IndexChunks ships one batch of chunks for a document. The caller decides
// batch sizing; the whole batch succeeds or fails together.
func (c *Client) IndexChunks(ctx context.Context, docID, collectionID string, chunks []chunking.Chunk) error {
	if c == nil || len(chunks) == 0 {
		return nil
	}
	body, err := json.Marshal(batchRequest{
		DocumentID:   docID,
		CollectionID: collectionID,
		Chunks:       chunks,
	})
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chunks", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransientError{Op: "index chunks", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated || resp.StatusCode == http.StatusAccepted {
		return nil
	}
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	statusErr := fmt.Errorf("index chunks for %s: status %d: %s", docID, resp.StatusCode, string(respBody))
	if resp.StatusCode >= 500 {
		return &TransientError{Op: "index chunks", Err: statusErr}
	}
	return statusErr
}

// DeleteDocument removes all indexed chunks for a document.
func (c *Client) DeleteDocument(ctx context.Context, docID string) error {
	if c == nil {
		return nil
	}
	u := c.baseURL + "/chunks?document_id=" + url.QueryEscape(docID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransientError{Op: "delete document", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("delete document %s: status %d: %s", docID, resp.StatusCode, string(respBody))
	}
	return nil
}

// Health checks the index's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	if c == nil {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransientError{Op: "health", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("index health: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// Close releases any resources.
func (c *Client) Close() {
	if c != nil {
		c.httpClient.CloseIdleConnections()
	}
}

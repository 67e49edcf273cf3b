package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/azmi-amirullah/minimarket-pos/internal/dto"
)

// RemoteClient talks to the canonical remote backend consumed by the sync
// adapter: a snapshot endpoint for the pull half and an upsert endpoint for
// the push half. Every call carries an explicit timeout so a stalled remote
// cannot wedge a sync worker.
type RemoteClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewRemoteClient(baseURL string) *RemoteClient {
	return &RemoteClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Enabled reports whether a remote backend is configured at all.
func (c *RemoteClient) Enabled() bool { return c.baseURL != "" }

// FetchSnapshot pulls the full canonical state in one request.
func (c *RemoteClient) FetchSnapshot(ctx context.Context) (*dto.RemoteSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/snapshot", nil)
	if err != nil {
		return nil, fmt.Errorf("remote: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote: fetch snapshot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remote: snapshot returned status %d", resp.StatusCode)
	}

	var snapshot dto.RemoteSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("remote: decode snapshot: %w", err)
	}
	return &snapshot, nil
}

// PushSales uploads local sales. The remote upserts by sale id, so retrying
// a previously pushed batch is harmless.
func (c *RemoteClient) PushSales(ctx context.Context, sales []dto.RemoteSale) error {
	body, err := json.Marshal(map[string]any{"sales": sales})
	if err != nil {
		return fmt.Errorf("remote: marshal sales: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sales", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("remote: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("remote: push sales: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("remote: push returned status %d", resp.StatusCode)
	}
	return nil
}

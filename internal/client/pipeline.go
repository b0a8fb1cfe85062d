// Package client provides an HTTP client for the Centsible pipeline API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// PipelineClient communicates with the pipeline endpoints of the API.
type PipelineClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewPipelineClient creates a new pipeline API client.
func NewPipelineClient(baseURL, apiKey string, httpClient *http.Client) *PipelineClient {
	return &PipelineClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// ComputeSnapshots triggers health snapshot computation and returns the count recorded.
func (c *PipelineClient) ComputeSnapshots(ctx context.Context, recordedAt time.Time) (int, error) {
	body := struct {
		RecordedAt string `json:"recorded_at"`
	}{RecordedAt: recordedAt.UTC().Format(time.RFC3339)}

	var result struct {
		SnapshotsRecorded int `json:"snapshots_recorded"`
	}
	if err := c.post(ctx, "/api/v1/pipeline/snapshots", body, &result); err != nil {
		return 0, fmt.Errorf("computing snapshots: %w", err)
	}
	return result.SnapshotsRecorded, nil
}

// SendReminders asks the API to publish reminders for bills due as of asOf
// and returns the count sent.
func (c *PipelineClient) SendReminders(ctx context.Context, asOf time.Time) (int, error) {
	body := struct {
		AsOf string `json:"as_of"`
	}{AsOf: asOf.UTC().Format(time.RFC3339)}

	var result struct {
		RemindersSent int `json:"reminders_sent"`
	}
	if err := c.post(ctx, "/api/v1/pipeline/reminders", body, &result); err != nil {
		return 0, fmt.Errorf("sending reminders: %w", err)
	}
	return result.RemindersSent, nil
}

func (c *PipelineClient) post(ctx context.Context, path string, body, out any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

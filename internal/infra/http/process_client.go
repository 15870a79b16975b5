package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"doc-analytics/internal/domain"
)

// processRequest is the wire form of a process call.
type processRequest struct {
	Action string `json:"action"`
	Item   string `json:"item"`
}

type processClient struct {
	client *http.Client
}

// NewProcessClient creates the HTTP implementation of domain.ProcessClient.
// The per-call deadline comes from the caller's context; the client timeout
// here is only a backstop.
func NewProcessClient(timeout time.Duration) domain.ProcessClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &processClient{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Process POSTs {action:"process", item} to the worker's /process endpoint
// and decodes the outcome. Transport failures, non-2xx statuses, malformed
// bodies and worker-reported errors all come back as errors: the queue counts
// them identically.
func (c *processClient) Process(ctx context.Context, worker domain.Worker, doc domain.Document) (*domain.ProcessResult, error) {
	body, err := json.Marshal(processRequest{Action: "process", Item: string(doc)})
	if err != nil {
		return nil, fmt.Errorf("failed to encode process request: %w", err)
	}

	url := strings.TrimRight(worker.Endpoint, "/") + "/process"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request to worker %s failed: %w", worker.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Read a small portion of the body for the error message.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("worker %s returned HTTP %d: %s", worker.ID, resp.StatusCode, string(snippet))
	}

	var result domain.ProcessResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("malformed response from worker %s: %w", worker.ID, err)
	}

	switch result.Status {
	case domain.StatusSuccess:
		return &result, nil
	case domain.StatusError:
		return nil, fmt.Errorf("worker %s reported error: %s", worker.ID, result.Message)
	default:
		return nil, fmt.Errorf("worker %s returned unknown status %q", worker.ID, result.Status)
	}
}

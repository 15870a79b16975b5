package domain

import "context"

// Worker describes a registered document processor. Endpoint is the base URL
// of its process API. ID is used for logging and discovery-driven removal
// only; routing never keys on it, and duplicate endpoints are allowed.
type Worker struct {
	ID       string `json:"id"`
	Endpoint string `json:"endpoint"`
}

// ProcessResult is a worker's answer to one process request.
type ProcessResult struct {
	Status  string   `json:"status"`
	Topics  []string `json:"topics,omitempty"`
	Message string   `json:"message,omitempty"`
}

// OK reports whether the worker accepted and processed the document.
func (r *ProcessResult) OK() bool {
	return r.Status == StatusSuccess
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ProcessClient sends a synchronous process request to one worker. The call
// must honor ctx for its deadline; any transport failure, malformed response
// or worker-reported error is returned as an error so the caller can count it.
type ProcessClient interface {
	Process(ctx context.Context, worker Worker, doc Document) (*ProcessResult, error)
}

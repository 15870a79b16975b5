package http

import "doc-analytics/internal/domain"

// RegisterDocumentsRequest is the DTO for registering a batch of documents.
// The list replaces any previously registered batch wholesale.
type RegisterDocumentsRequest struct {
	Documents []string `json:"documents" validate:"required,min=1,dive,required"`
}

// ToDomain converts the request to domain documents.
func (r *RegisterDocumentsRequest) ToDomain() []domain.Document {
	docs := make([]domain.Document, 0, len(r.Documents))
	for _, d := range r.Documents {
		docs = append(docs, domain.Document(d))
	}
	return docs
}

// WorkerRequest is the DTO for one worker descriptor.
type WorkerRequest struct {
	ID       string `json:"id" validate:"required,min=1,max=128"`
	Endpoint string `json:"endpoint" validate:"required,url"`
}

// RegisterWorkerRequest is the DTO for registering a worker.
type RegisterWorkerRequest struct {
	Worker WorkerRequest `json:"worker" validate:"required"`
}

// ToDomain converts the request to a domain worker.
func (r *RegisterWorkerRequest) ToDomain() domain.Worker {
	return domain.Worker{
		ID:       r.Worker.ID,
		Endpoint: r.Worker.Endpoint,
	}
}

// DistributionResponse is the wire form of a completed distribution pass.
type DistributionResponse struct {
	Status    string `json:"status"`
	Processed int    `json:"processed"`
	Errors    int    `json:"errors"`
}

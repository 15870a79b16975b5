package queue

import (
	"math/rand"

	"doc-analytics/internal/domain"
)

// Selector picks one worker from the roster for the next document. The queue
// tracks no per-worker load or health, so the policy has nothing honest to
// balance on; it is kept pluggable so tests can substitute a deterministic
// one.
type Selector interface {
	// Select returns one worker from the roster, or false when it is empty.
	Select(workers []domain.Worker) (domain.Worker, bool)
}

// randomSelector is the default policy: uniform random choice with
// replacement.
type randomSelector struct{}

// NewRandomSelector creates the default uniform-random policy.
func NewRandomSelector() Selector {
	return randomSelector{}
}

func (randomSelector) Select(workers []domain.Worker) (domain.Worker, bool) {
	if len(workers) == 0 {
		return domain.Worker{}, false
	}
	return workers[rand.Intn(len(workers))], true
}

package domain

// Document identifies one unit of work: a path to a markdown file that a
// processor can resolve and read. Documents are opaque to the queue; it never
// inspects the content, only hands the identifier to a worker.
type Document string

// DistributionOutcome is the result of one distribution pass. Outcomes are
// computed fresh per pass and never merged across passes.
type DistributionOutcome struct {
	Processed int `json:"processed"`
	Errors    int `json:"errors"`
}

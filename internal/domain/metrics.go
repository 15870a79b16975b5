package domain

// TopicMetrics is the running counter set owned by one topic aggregator.
// All four counters are monotonically non-decreasing; there is no reset.
type TopicMetrics struct {
	Topic     string `json:"topic"`
	LineCount int    `json:"line_count"`
	WordCount int    `json:"word_count"`
	CharCount int    `json:"char_count"`
	DocCount  int    `json:"doc_count"`
}

// Add folds another metrics snapshot into this one. Topic is kept as-is; the
// result collector uses this to merge snapshots from aggregators sharing a
// topic.
func (m *TopicMetrics) Add(other TopicMetrics) {
	m.LineCount += other.LineCount
	m.WordCount += other.WordCount
	m.CharCount += other.CharCount
	m.DocCount += other.DocCount
}

package domain

import "testing"

func TestTopicMetricsAdd(t *testing.T) {
	m := TopicMetrics{Topic: "Alpha", LineCount: 1, WordCount: 2, CharCount: 3, DocCount: 1}
	m.Add(TopicMetrics{Topic: "ignored", LineCount: 10, WordCount: 20, CharCount: 30, DocCount: 2})

	want := TopicMetrics{Topic: "Alpha", LineCount: 11, WordCount: 22, CharCount: 33, DocCount: 3}
	if m != want {
		t.Errorf("after Add: %+v, want %+v", m, want)
	}
}

package analytics

import (
	"errors"
	"reflect"
	"testing"

	"doc-analytics/internal/domain"
)

func TestAnalyzeContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    ContentStats
	}{
		{
			name:    "multi line content",
			content: "Line 1\nLine 2\nLine 3 with more words",
			want:    ContentStats{LineCount: 3, WordCount: 9, CharCount: 34},
		},
		{
			name:    "empty string",
			content: "",
			want:    ContentStats{},
		},
		{
			name:    "whitespace only",
			content: " \n\t\n  ",
			want:    ContentStats{},
		},
		{
			name:    "single line",
			content: "hello world",
			want:    ContentStats{LineCount: 1, WordCount: 2, CharCount: 11},
		},
		{
			name:    "trailing newlines stripped",
			content: "one two\n\n\n",
			want:    ContentStats{LineCount: 1, WordCount: 2, CharCount: 7},
		},
		{
			name:    "interior blank line counts as a line",
			content: "a\n\nb",
			want:    ContentStats{LineCount: 3, WordCount: 2, CharCount: 2},
		},
		{
			// Characters are code points, not bytes.
			name:    "multi byte characters",
			content: "café au lait",
			want:    ContentStats{LineCount: 1, WordCount: 3, CharCount: 12},
		},
		{
			name:    "cjk and emoji",
			content: "日本語 text\n☕",
			want:    ContentStats{LineCount: 2, WordCount: 3, CharCount: 9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeContent(tt.content)
			if got != tt.want {
				t.Errorf("AnalyzeContent(%q) = %+v, want %+v", tt.content, got, tt.want)
			}
		})
	}
}

func TestExtractTopics(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    map[string]string
	}{
		{
			name:    "two headings",
			content: "# Alpha\nbody a\n# Beta\nbody b",
			want: map[string]string{
				"Alpha": "# Alpha\nbody a",
				"Beta":  "# Beta\nbody b",
			},
		},
		{
			name:    "preamble before first heading",
			content: "intro text\n# Alpha\nbody",
			want: map[string]string{
				NoTopic: "intro text",
				"Alpha": "# Alpha\nbody",
			},
		},
		{
			name:    "no headings at all",
			content: "just some text\nmore text",
			want: map[string]string{
				NoTopic: "just some text\nmore text",
			},
		},
		{
			name:    "heading inside code fence ignored",
			content: "# Alpha\n```\n# Not A Heading\n```\nafter",
			want: map[string]string{
				"Alpha": "# Alpha\n```\n# Not A Heading\n```\nafter",
			},
		},
		{
			name:    "tilde fence ignored too",
			content: "# Alpha\n~~~\n# Hidden\n~~~",
			want: map[string]string{
				"Alpha": "# Alpha\n~~~\n# Hidden\n~~~",
			},
		},
		{
			name:    "h2 is not a topic boundary",
			content: "# Alpha\n## sub\ntext",
			want: map[string]string{
				"Alpha": "# Alpha\n## sub\ntext",
			},
		},
		{
			name:    "hash without space is not a heading",
			content: "#nope\ntext",
			want: map[string]string{
				NoTopic: "#nope\ntext",
			},
		},
		{
			name:    "blank preamble dropped",
			content: "\n\n# Alpha\nbody",
			want: map[string]string{
				"Alpha": "# Alpha\nbody",
			},
		},
		{
			name:    "whitespace only document yields nothing",
			content: "   \n\t\n",
			want:    map[string]string{},
		},
		{
			name:    "atx heading indented up to three spaces",
			content: "   # Alpha\nbody",
			want: map[string]string{
				"Alpha": "   # Alpha\nbody",
			},
		},
		{
			name:    "four space indent is a code block, not a heading",
			content: "    # Alpha\nbody",
			want: map[string]string{
				NoTopic: "    # Alpha\nbody",
			},
		},
		{
			name:    "setext heading",
			content: "Alpha\n===\nbody a\nBeta\n======\nbody b",
			want: map[string]string{
				"Alpha": "Alpha\n===\nbody a",
				"Beta":  "Beta\n======\nbody b",
			},
		},
		{
			name:    "setext heading after preamble",
			content: "intro\n\nAlpha\n===\nbody",
			want: map[string]string{
				NoTopic: "intro\n",
				"Alpha": "Alpha\n===\nbody",
			},
		},
		{
			name:    "underline with no text above is not a heading",
			content: "\n===\ntext",
			want: map[string]string{
				NoTopic: "\n===\ntext",
			},
		},
		{
			name:    "setext underline inside code fence ignored",
			content: "# Alpha\n```\nNot A Heading\n===\n```",
			want: map[string]string{
				"Alpha": "# Alpha\n```\nNot A Heading\n===\n```",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractTopics(tt.content)
			if err != nil {
				t.Fatalf("ExtractTopics returned error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractTopics(%q) = %v, want %v", tt.content, got, tt.want)
			}
		})
	}
}

func TestExtractTopicsEmptyInput(t *testing.T) {
	_, err := ExtractTopics("")
	if !errors.Is(err, domain.ErrInvalidContent) {
		t.Errorf("ExtractTopics(\"\") error = %v, want ErrInvalidContent", err)
	}
}

func TestAnalyzeDocument(t *testing.T) {
	content := "# Alpha\none two\n# Beta\nthree"

	t.Run("all topics", func(t *testing.T) {
		got, err := AnalyzeDocument(content, nil)
		if err != nil {
			t.Fatalf("AnalyzeDocument returned error: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 topics, got %d", len(got))
		}
		if got["Alpha"].WordCount != 3 {
			t.Errorf("Alpha word count = %d, want 3", got["Alpha"].WordCount)
		}
	})

	t.Run("case insensitive filter", func(t *testing.T) {
		got, err := AnalyzeDocument(content, []string{"beta"})
		if err != nil {
			t.Fatalf("AnalyzeDocument returned error: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("expected 1 topic, got %d", len(got))
		}
		if _, ok := got["Beta"]; !ok {
			t.Errorf("expected Beta topic, got %v", got)
		}
	})
}

// Package analytics holds the pure content functions: splitting a markdown
// document into topics by its top-level headings, and counting lines, words
// and characters of a text span.
package analytics

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"doc-analytics/internal/domain"
)

// NoTopic is the bucket for content that belongs to no h1 heading: the
// preamble before the first heading, or a whole document without headings.
const NoTopic = "(No Topic)"

// ContentStats are the counts for one text span.
type ContentStats struct {
	LineCount int `json:"line_count"`
	WordCount int `json:"word_count"`
	CharCount int `json:"char_count"`
}

// AnalyzeContent counts lines, words and characters. Trailing whitespace is
// stripped first, so an empty or blank string yields zero lines. Words are
// whitespace-delimited tokens summed per line; characters are code points
// summed per line with the newlines themselves excluded.
func AnalyzeContent(content string) ContentStats {
	if content == "" {
		return ContentStats{}
	}

	trimmed := strings.TrimRight(content, " \t\r\n")
	if trimmed == "" {
		return ContentStats{}
	}

	var stats ContentStats
	for _, line := range strings.Split(trimmed, "\n") {
		stats.LineCount++
		stats.WordCount += len(strings.Fields(line))
		stats.CharCount += utf8.RuneCountInString(line)
	}
	return stats
}

// ExtractTopics splits a markdown document at its h1 headings and returns
// topic name -> raw content. Both heading forms count: ATX (`# Title`,
// indented up to three spaces) and setext (`Title` underlined with `===`).
// Each topic's content runs from its heading line (inclusive) up to the next
// h1 or the end of the document. Content before the first heading, or a
// document with no headings at all, lands in NoTopic. Blank-only chunks are
// dropped. Empty input is an error.
func ExtractTopics(content string) (map[string]string, error) {
	if content == "" {
		return nil, domain.ErrInvalidContent
	}

	lines := strings.Split(content, "\n")

	type heading struct {
		line int
		text string
	}
	var headings []heading

	inFence := false
	for i, line := range lines {
		stripped := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(stripped, "```") || strings.HasPrefix(stripped, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if text, ok := h1Text(line); ok {
			headings = append(headings, heading{line: i, text: text})
			continue
		}
		if i > 0 && isSetextUnderline(line) {
			if text, ok := setextText(lines[i-1]); ok {
				headings = append(headings, heading{line: i - 1, text: text})
			}
		}
	}

	result := make(map[string]string)

	if len(headings) == 0 {
		if strings.TrimSpace(content) != "" {
			result[NoTopic] = content
		}
		return result, nil
	}

	if headings[0].line > 0 {
		preamble := strings.Join(lines[:headings[0].line], "\n")
		if strings.TrimSpace(preamble) != "" {
			result[NoTopic] = preamble
		}
	}

	for i, h := range headings {
		end := len(lines)
		if i < len(headings)-1 {
			end = headings[i+1].line
		}
		result[h.text] = strings.Join(lines[h.line:end], "\n")
	}

	return result, nil
}

// h1Text reports whether line is an ATX h1 heading and returns its text.
// Up to three leading spaces are allowed; four make an indented code block.
func h1Text(line string) (string, bool) {
	s := trimIndent(line)
	if !strings.HasPrefix(s, "# ") {
		return "", false
	}
	text := strings.TrimSpace(strings.TrimPrefix(s, "# "))
	if text == "" {
		return "", false
	}
	return text, true
}

// isSetextUnderline reports whether line is a setext h1 underline: only `=`
// characters, at least one, after up to three spaces of indent.
func isSetextUnderline(line string) bool {
	s := strings.TrimRight(trimIndent(line), " \t")
	if s == "" {
		return false
	}
	return strings.Count(s, "=") == len(s)
}

// setextText reports whether the line above an `===` underline can be a
// heading and returns its text. Blank lines, fence markers, ATX headings and
// stacked underlines cannot.
func setextText(line string) (string, bool) {
	stripped := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(stripped, "```") || strings.HasPrefix(stripped, "~~~") {
		return "", false
	}
	if _, atx := h1Text(line); atx {
		return "", false
	}
	if isSetextUnderline(line) {
		return "", false
	}
	text := strings.TrimSpace(line)
	if text == "" {
		return "", false
	}
	return text, true
}

// trimIndent strips up to three leading spaces.
func trimIndent(line string) string {
	for i := 0; i < 3 && strings.HasPrefix(line, " "); i++ {
		line = line[1:]
	}
	return line
}

// AnalyzeDocument extracts topics from content and returns per-topic stats,
// optionally filtered to the given topics (case-insensitive). This is the
// local-mode path: same math as the aggregators, no services involved.
func AnalyzeDocument(content string, topics []string) (map[string]ContentStats, error) {
	extracted, err := ExtractTopics(content)
	if err != nil {
		return nil, fmt.Errorf("extract topics: %w", err)
	}

	var wanted map[string]bool
	if len(topics) > 0 {
		wanted = make(map[string]bool, len(topics))
		for _, t := range topics {
			wanted[strings.ToLower(t)] = true
		}
	}

	results := make(map[string]ContentStats, len(extracted))
	for topic, text := range extracted {
		if wanted != nil && !wanted[strings.ToLower(topic)] {
			continue
		}
		results[topic] = AnalyzeContent(text)
	}
	return results, nil
}

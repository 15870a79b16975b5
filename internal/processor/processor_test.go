package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"doc-analytics/internal/domain"
)

type recordingPublisher struct {
	messages []domain.TopicMessage
	failOn   string
}

func (p *recordingPublisher) Publish(_ context.Context, msg domain.TopicMessage) error {
	if p.failOn != "" && msg.Topic == p.failOn {
		return fmt.Errorf("broker unavailable")
	}
	p.messages = append(p.messages, msg)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing test document: %v", err)
	}
	return path
}

func TestProcessBroadcastsEveryTopic(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "doc.md", "# Alpha\nbody a\n# Beta\nbody b")

	pub := &recordingPublisher{}
	proc := NewDocumentProcessor(NewFallbackResolver(""), pub, testLogger())

	result := proc.Process(context.Background(), domain.Document(path))
	if !result.OK() {
		t.Fatalf("result = %+v, want success", result)
	}

	sort.Strings(result.Topics)
	if len(result.Topics) != 2 || result.Topics[0] != "Alpha" || result.Topics[1] != "Beta" {
		t.Errorf("topics = %v, want [Alpha Beta]", result.Topics)
	}
	if len(pub.messages) != 2 {
		t.Fatalf("published %d messages, want 2", len(pub.messages))
	}
	for _, msg := range pub.messages {
		if msg.Topic == "Alpha" && msg.Content != "# Alpha\nbody a" {
			t.Errorf("Alpha content = %q", msg.Content)
		}
	}
}

func TestProcessMissingFile(t *testing.T) {
	pub := &recordingPublisher{}
	proc := NewDocumentProcessor(NewFallbackResolver(""), pub, testLogger())

	result := proc.Process(context.Background(), "/no/such/file.md")
	if result.Status != domain.StatusError {
		t.Fatalf("status = %q, want error", result.Status)
	}
	if result.Message == "" {
		t.Error("error result carries no message")
	}
	if len(pub.messages) != 0 {
		t.Errorf("published %d messages for a missing file", len(pub.messages))
	}
}

func TestProcessEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "empty.md", "")

	pub := &recordingPublisher{}
	proc := NewDocumentProcessor(NewFallbackResolver(""), pub, testLogger())

	result := proc.Process(context.Background(), domain.Document(path))
	if result.Status != domain.StatusError {
		t.Errorf("status = %q, want error for empty content", result.Status)
	}
}

func TestProcessPublishFailure(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "doc.md", "# Alpha\nbody")

	pub := &recordingPublisher{failOn: "Alpha"}
	proc := NewDocumentProcessor(NewFallbackResolver(""), pub, testLogger())

	result := proc.Process(context.Background(), domain.Document(path))
	if result.Status != domain.StatusError {
		t.Errorf("status = %q, want error when a broadcast fails", result.Status)
	}
}

func TestFallbackResolver(t *testing.T) {
	dir := t.TempDir()
	fallback := t.TempDir()
	direct := writeDoc(t, dir, "direct.md", "x")
	writeDoc(t, fallback, "mounted.md", "y")

	r := NewFallbackResolver(fallback)

	t.Run("direct path wins", func(t *testing.T) {
		got, err := r.Resolve(direct)
		if err != nil || got != direct {
			t.Errorf("Resolve(%q) = (%q, %v), want the direct path", direct, got, err)
		}
	})

	t.Run("falls back by basename", func(t *testing.T) {
		got, err := r.Resolve("/original/host/path/mounted.md")
		want := filepath.Join(fallback, "mounted.md")
		if err != nil || got != want {
			t.Errorf("Resolve = (%q, %v), want %q", got, err, want)
		}
	})

	t.Run("not found anywhere", func(t *testing.T) {
		_, err := r.Resolve("/nowhere/missing.md")
		if !errors.Is(err, domain.ErrFileNotFound) {
			t.Errorf("error = %v, want ErrFileNotFound", err)
		}
	})
}

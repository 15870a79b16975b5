// cmd/analytics/main.go
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"doc-analytics/internal/aggregator"
	"doc-analytics/internal/analytics"
	"doc-analytics/internal/bus"
	"doc-analytics/internal/domain"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "analytics",
		Usage: "analyze markdown documents per top-level topic",
		Commands: []*cli.Command{
			{
				Name:      "local",
				Usage:     "process documents in-process and print per-topic metrics",
				ArgsUsage: "FILE [FILE...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "topics",
						Usage: "comma-separated topics to report (default: all)",
					},
					&cli.BoolFlag{
						Name:  "quiet",
						Usage: "suppress progress logging",
					},
				},
				Action: localAction,
			},
			{
				Name:      "run",
				Usage:     "register documents with a queue node, distribute, and fetch merged results",
				ArgsUsage: "FILE [FILE...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "server",
						Value: "http://localhost:8080",
						Usage: "queue node base URL",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Value: 60 * time.Second,
						Usage: "overall request timeout",
					},
				},
				Action: runAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// localAction runs the whole pipeline inside the process: topics extracted
// from each file are broadcast over the in-memory bus, one aggregator per
// topic folds its stream, and the merged snapshots are printed as JSON.
func localAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("no files given")
	}

	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	var wanted map[string]bool
	if topics := c.String("topics"); topics != "" {
		wanted = make(map[string]bool)
		for _, t := range strings.Split(topics, ",") {
			wanted[strings.ToLower(strings.TrimSpace(t))] = true
		}
	}

	// First pass: extract every chunk so the bus buffer can hold them all
	// and each topic gets its subscription before anything is published.
	type chunk struct {
		topic   string
		content string
	}
	var chunks []chunk
	for _, path := range c.Args().Slice() {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Error("skipping unreadable file", "file", path, "error", err)
			continue
		}
		extracted, err := analytics.ExtractTopics(string(data))
		if err != nil {
			logger.Error("skipping file", "file", path, "error", err)
			continue
		}
		for topic, content := range extracted {
			if wanted != nil && !wanted[strings.ToLower(topic)] {
				continue
			}
			chunks = append(chunks, chunk{topic: topic, content: content})
		}
		logger.Info("extracted topics", "file", path, "topics", len(extracted))
	}

	b := bus.New(len(chunks))

	type subscription struct {
		agg    *aggregator.TopicAggregator
		ch     <-chan domain.TopicMessage
		cancel func()
	}
	subs := make(map[string]*subscription)
	for _, ck := range chunks {
		if _, ok := subs[ck.topic]; ok {
			continue
		}
		ch, cancel := b.Subscribe(ck.topic)
		subs[ck.topic] = &subscription{
			agg:    aggregator.NewTopicAggregator(ck.topic, logger),
			ch:     ch,
			cancel: cancel,
		}
	}

	ctx := context.Background()
	for _, ck := range chunks {
		if err := b.Publish(ctx, domain.TopicMessage{Topic: ck.topic, Content: ck.content}); err != nil {
			return err
		}
	}

	// Closing each subscription lets the drain loop below terminate once the
	// buffered messages are consumed.
	results := make(map[string]domain.TopicMetrics, len(subs))
	for topic, sub := range subs {
		sub.cancel()
		for msg := range sub.ch {
			sub.agg.ProcessContent(msg.Content)
		}
		results[topic] = sub.agg.Metrics()
	}

	return printMetrics(os.Stdout, results)
}

// runAction drives a running queue node over its HTTP API.
func runAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("no files given")
	}
	server := strings.TrimRight(c.String("server"), "/")
	client := &http.Client{Timeout: c.Duration("timeout")}

	docs := c.Args().Slice()
	regBody := map[string][]string{"documents": docs}
	if err := postJSON(client, server+"/register_documents", regBody, nil); err != nil {
		return fmt.Errorf("register documents: %w", err)
	}
	fmt.Fprintf(os.Stderr, "registered %d documents\n", len(docs))

	var dist struct {
		Status    string `json:"status"`
		Processed int    `json:"processed"`
		Errors    int    `json:"errors"`
	}
	if err := postJSON(client, server+"/distribute", struct{}{}, &dist); err != nil {
		return fmt.Errorf("distribute: %w", err)
	}
	fmt.Fprintf(os.Stderr, "distribution %s: %d processed, %d errors\n",
		dist.Status, dist.Processed, dist.Errors)

	resp, err := client.Get(server + "/results")
	if err != nil {
		return fmt.Errorf("fetch results: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("fetch results: status %d: %s", resp.StatusCode, string(body))
	}

	var envelope struct {
		Status  string                         `json:"status"`
		Results map[string]domain.TopicMetrics `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode results: %w", err)
	}
	return printMetrics(os.Stdout, envelope.Results)
}

func postJSON(client *http.Client, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(snippet))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// printMetrics writes the per-topic metrics as indented JSON, topics sorted
// for stable output.
func printMetrics(w io.Writer, results map[string]domain.TopicMetrics) error {
	topics := make([]string, 0, len(results))
	for t := range results {
		topics = append(topics, t)
	}
	sort.Strings(topics)

	ordered := make([]domain.TopicMetrics, 0, len(topics))
	for _, t := range topics {
		ordered = append(ordered, results[t])
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ordered)
}

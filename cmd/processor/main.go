// cmd/processor/main.go
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"doc-analytics/internal/config"
	"doc-analytics/internal/infra/etcd"
	"doc-analytics/internal/infra/kafka"
	"doc-analytics/internal/processor"
	"doc-analytics/internal/registry"
	"doc-analytics/internal/tracing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// 1. Init logger, tracer, config
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	tracerShutdown, err := tracing.InitTracer("doc-analytics-processor")
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tracerShutdown(context.Background()); err != nil {
			log.Printf("failed to shutdown tracer: %v", err)
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	workerID := uuid.New().String()
	advertiseURL := cfg.AdvertiseURL
	if advertiseURL == "" {
		advertiseURL = "http://localhost" + listenPort(cfg.HttpListenAddr)
	}
	log.Printf("Starting document processor %s, listening on %s, advertising %s",
		workerID, cfg.HttpListenAddr, advertiseURL)

	// 2. Create root context for lifecycle management
	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Setup graceful shutdown
	setupGracefulShutdown(cancel)

	// 4. Kafka publisher for topic broadcasts
	publisher, err := kafka.NewPublisher(cfg.KafkaBrokers, cfg.BroadcastTopic)
	if err != nil {
		log.Fatalf("Failed to create Kafka publisher: %v", err)
	}
	defer publisher.Close()

	// 5. Register this worker in etcd so the queue discovers it
	if len(cfg.EtcdEndpoints) > 0 {
		etcdClient, err := etcd.NewClient(cfg.EtcdEndpoints, cfg.EtcdTimeout)
		if err != nil {
			log.Fatalf("Failed to create etcd client: %v", err)
		}
		defer etcdClient.Close()
		log.Println("Connected to etcd.")

		reg := registry.NewRegistry(etcdClient, logger)
		regCtx, regCancel := context.WithTimeout(rootCtx, 5*time.Second)
		defer regCancel()
		key := registry.WorkerPrefix + workerID
		if err := reg.Register(regCtx, key, advertiseURL, int64(cfg.WorkerTTL.Seconds())); err != nil {
			log.Fatalf("Failed to register worker: %v", err)
		}

		defer func() {
			deregCtx, deregCancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer deregCancel()
			if err := reg.Deregister(deregCtx); err != nil {
				logger.Error("failed to deregister worker", "error", err)
			}
		}()
	}

	// 6. Instantiate processor and its HTTP surface
	resolver := processor.NewFallbackResolver(cfg.DocumentFallbackDir)
	docProcessor := processor.NewDocumentProcessor(resolver, publisher, logger)
	processServer := processor.NewServer(docProcessor, logger)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	processServer.RegisterRoutes(mux)

	server := &http.Server{
		Addr:    cfg.HttpListenAddr,
		Handler: mux,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// 7. Block until shutdown signal
	<-rootCtx.Done()
	log.Println("Shutting down document processor gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("HTTP server shutdown failed: %v", err)
	}

	log.Println("Document processor shut down.")
}

// listenPort extracts the ":port" suffix of a listen address.
func listenPort(addr string) string {
	if i := strings.LastIndex(addr, ":"); i >= 0 {
		return addr[i:]
	}
	return addr
}

func setupGracefulShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Printf("Received signal %v. Initiating graceful shutdown...", sig)
		cancel()
	}()
}

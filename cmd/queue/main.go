// cmd/queue/main.go
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	http_api "doc-analytics/internal/api/http"
	"doc-analytics/internal/collector"
	"doc-analytics/internal/config"
	"doc-analytics/internal/infra/etcd"
	http_infra "doc-analytics/internal/infra/http"
	"doc-analytics/internal/queue"
	"doc-analytics/internal/scheduler"
	"doc-analytics/internal/tracing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// 1. Initialize logger and tracer
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	tracerShutdown, err := tracing.InitTracer("doc-analytics-queue")
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tracerShutdown(context.Background()); err != nil {
			log.Printf("failed to shutdown tracer: %v", err)
		}
	}()

	log.Println("Starting worker queue node...")

	// 2. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	nodeID := uuid.New().String()
	log.Printf("Node ID: %s", nodeID)

	// 3. Create root context for lifecycle management
	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 4. Setup graceful shutdown
	setupGracefulShutdown(cancel)

	// 5. Instantiate the queue
	processClient := http_infra.NewProcessClient(cfg.ProcessTimeout)
	workerQueue := queue.NewWorkerQueue(processClient, nil, cfg.ProcessTimeout, logger)

	// 6. Wire etcd-backed discovery and the result collector when etcd is
	// configured; the manual registration API works either way.
	var results http_api.ResultSource
	if len(cfg.EtcdEndpoints) > 0 {
		etcdClient, err := etcd.NewClient(cfg.EtcdEndpoints, cfg.EtcdTimeout)
		if err != nil {
			log.Fatalf("Failed to create etcd client: %v", err)
		}
		defer etcdClient.Close()
		log.Println("Connected to etcd.")

		discovery := queue.NewWorkerDiscovery(etcdClient, workerQueue, logger)
		go discovery.WatchWorkers(rootCtx)

		results = collector.NewCollector(etcdClient, logger)
	}

	// 7. Optional cron-driven distribution passes
	if cfg.DistributeCron != "" {
		passScheduler := scheduler.NewPassScheduler(workerQueue, logger)
		if err := passScheduler.Schedule(cfg.DistributeCron); err != nil {
			log.Fatalf("Failed to schedule distribution passes: %v", err)
		}
		go func() {
			if err := passScheduler.Start(rootCtx); err != nil && err != context.Canceled {
				log.Printf("Pass scheduler stopped with error: %v", err)
			}
		}()
	}

	// 8. Register routes and metrics endpoint
	queueHandler := http_api.NewQueueHandler(workerQueue, results, logger)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	queueHandler.RegisterRoutes(mux)

	// 9. Start HTTP API server
	log.Printf("Starting HTTP API server on %s", cfg.HttpListenAddr)
	server := &http.Server{
		Addr:    cfg.HttpListenAddr,
		Handler: mux,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// 10. Block until shutdown
	<-rootCtx.Done()
	log.Println("Shutting down worker queue node gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("HTTP server shutdown failed: %v", err)
	}

	log.Println("Worker queue node shut down.")
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

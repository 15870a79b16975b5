// cmd/aggregator/main.go
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"doc-analytics/internal/aggregator"
	"doc-analytics/internal/config"
	"doc-analytics/internal/infra/etcd"
	"doc-analytics/internal/infra/kafka"
	"doc-analytics/internal/registry"
	"doc-analytics/internal/tracing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// 1. Init logger, tracer, config
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	tracerShutdown, err := tracing.InitTracer("doc-analytics-aggregator")
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tracerShutdown(context.Background()); err != nil {
			log.Printf("failed to shutdown tracer: %v", err)
		}
	}()

	if len(os.Args) < 2 || os.Args[1] == "" {
		log.Fatal("Usage: aggregator <topic>")
	}
	topic := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	instanceID := uuid.New().String()
	advertiseURL := cfg.AdvertiseURL
	if advertiseURL == "" {
		advertiseURL = "http://localhost" + listenPort(cfg.HttpListenAddr)
	}
	log.Printf("Starting topic aggregator %s for topic %q, listening on %s",
		instanceID, topic, cfg.HttpListenAddr)

	// 2. Create root context for lifecycle management
	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Setup graceful shutdown
	setupGracefulShutdown(cancel)

	// 4. Kafka subscriber. A unique group ID per instance fans the broadcast
	// stream out to every aggregator instead of load-balancing it.
	subscriber, err := kafka.NewSubscriber(cfg.KafkaBrokers, "aggregator-"+instanceID, cfg.BroadcastTopic, logger)
	if err != nil {
		log.Fatalf("Failed to create Kafka subscriber: %v", err)
	}
	defer subscriber.Close()

	// 5. Register in etcd so the result collector can find the snapshot endpoint
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
		key := registry.AggregatorPrefix + topic + "/" + instanceID
		if err := reg.Register(regCtx, key, advertiseURL, int64(cfg.WorkerTTL.Seconds())); err != nil {
			log.Fatalf("Failed to register aggregator: %v", err)
		}

		defer func() {
			deregCtx, deregCancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer deregCancel()
			if err := reg.Deregister(deregCtx); err != nil {
				logger.Error("failed to deregister aggregator", "error", err)
			}
		}()
	}

	// 6. Start the aggregator loop and its snapshot server
	agg := aggregator.NewTopicAggregator(topic, logger)
	go func() {
		if err := agg.Run(rootCtx, subscriber); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("aggregator loop exited", "error", err)
		}
	}()

	snapshotServer := aggregator.NewServer(agg, logger)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	snapshotServer.RegisterRoutes(mux)

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
	log.Println("Shutting down topic aggregator gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("HTTP server shutdown failed: %v", err)
	}

	log.Println("Topic aggregator shut down.")
}

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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	contentmongo "github.com/searchforge/searchforge/internal/content/adapters/repository/mongodb"
	"github.com/searchforge/searchforge/internal/content/adapters/repository/redisearch"
	"github.com/searchforge/searchforge/internal/content/app/service"
	"github.com/searchforge/searchforge/internal/content/domain/repository"
	"github.com/searchforge/searchforge/internal/geoip"
	"github.com/searchforge/searchforge/internal/platform/config"
	"github.com/searchforge/searchforge/internal/platform/database"
	"github.com/searchforge/searchforge/internal/platform/health"
	"github.com/searchforge/searchforge/internal/platform/logger"
	"github.com/searchforge/searchforge/internal/platform/messaging/kafka"
	"github.com/searchforge/searchforge/internal/platform/metrics"
	"github.com/searchforge/searchforge/internal/platform/middleware"
	"github.com/searchforge/searchforge/internal/platform/telemetry"
	sitemongo "github.com/searchforge/searchforge/internal/site/adapters/repository/mongodb"
	sponsormongo "github.com/searchforge/searchforge/internal/sponsor/adapters/repository/mongodb"
	websitemongo "github.com/searchforge/searchforge/internal/website/adapters/repository/mongodb"
)

func main() {
	cfg, err := config.Load("storage")
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	log := logger.New(cfg.Logger)
	log.Info("Starting Storage Service", "version", cfg.Version, "port", cfg.HTTP.Port)

	tel, err := telemetry.New(telemetry.Config{
		ServiceName:    cfg.Service.Name,
		JaegerEndpoint: cfg.Telemetry.JaegerEndpoint,
		TracingEnabled: cfg.Telemetry.TracingEnabled,
	})
	if err != nil {
		log.Fatal("failed to initialize telemetry", "error", err)
	}

	prom := metrics.NewMetrics("searchforge")

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer bootCancel()

	store, err := database.NewStore(database.Config{
		URI:      cfg.DocumentStore.URI,
		Database: cfg.DocumentStore.Database,
		Deadline: cfg.Request.Deadline,
	}, log)
	if err != nil {
		log.Fatal("failed to connect document store", "error", err)
	}
	store.SetMetrics(prom)

	contentRepo, err := contentmongo.NewContentRepository(bootCtx, store, log)
	if err != nil {
		log.Fatal("failed to initialize content repository", "error", err)
	}
	sponsorRepo, err := sponsormongo.NewSponsorRepository(bootCtx, store, log)
	if err != nil {
		log.Fatal("failed to initialize sponsor repository", "error", err)
	}
	siteRepo, err := sitemongo.NewSiteRepository(bootCtx, store, log)
	if err != nil {
		log.Fatal("failed to initialize site repository", "error", err)
	}
	websiteRepo, err := websitemongo.NewWebsiteRepository(bootCtx, store, log)
	if err != nil {
		log.Fatal("failed to initialize website repository", "error", err)
	}

	var searchIndex repository.SearchIndex = redisearch.Disabled{}
	var closeIndex func() error
	if cfg.SearchIndex.Configured() {
		idx, err := redisearch.NewIndex(bootCtx, redisearch.Config{
			URI:      cfg.SearchIndex.URI,
			Deadline: cfg.Request.Deadline,
		})
		if err != nil {
			// The coordinator degrades rather than refuses to start.
			log.Warn("search index unreachable, starting degraded", "error", err)
		} else {
			searchIndex = idx
			closeIndex = idx.Close
		}
	} else {
		log.Info("search index not configured, running document store only")
	}

	opts := []service.Option{
		service.WithMetrics(prom),
		service.WithTracer(tel.Tracer()),
		service.WithGeoResolver(geoip.Stub{}),
	}

	var publisher *kafka.EventPublisher
	if cfg.Kafka.Enabled {
		publisher, err = kafka.NewEventPublisher(&kafka.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		})
		if err != nil {
			log.Fatal("failed to create drift publisher", "error", err)
		}
		opts = append(opts, service.WithDriftPublisher(publisher))
	}

	content := service.NewContentService(contentRepo, searchIndex, service.Config{
		MaxQueue:    cfg.Reconciliation.MaxQueue,
		Interval:    cfg.Reconciliation.Interval,
		MaxAttempts: cfg.Reconciliation.MaxAttempts,
	}, log, opts...)
	if err := content.Start(); err != nil {
		log.Fatal("failed to start reconciler", "error", err)
	}

	healthHandler := health.NewHandler(cfg.Service.Name, cfg.Version)
	healthHandler.AddCheck("document_store", func(ctx context.Context) error {
		return store.Ping(ctx).Err()
	})
	if cfg.SearchIndex.Configured() {
		healthHandler.AddCheck("search_index", func(ctx context.Context) error {
			return searchIndex.Ping(ctx).Err()
		})
	}
	healthHandler.AddCheck("reconcile_queue", func(ctx context.Context) error {
		if depth := content.QueueDepth(); depth >= cfg.Reconciliation.MaxQueue {
			return fmt.Errorf("reconciliation queue full: %d entries", depth)
		}
		return nil
	})

	router := mux.NewRouter()
	router.Handle("/healthz", healthHandler).Methods(http.MethodGet)
	router.Handle("/metrics", prom.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/ops/reconcile", func(w http.ResponseWriter, r *http.Request) {
		content.Reconcile()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"queue_depth": content.QueueDepth(),
			"queue_drops": content.QueueDrops(),
		})
	}).Methods(http.MethodPost)
	router.HandleFunc("/ops/stats", func(w http.ResponseWriter, r *http.Request) {
		stats := map[string]interface{}{
			"reconcile_queue_depth": content.QueueDepth(),
			"reconcile_queue_drops": content.QueueDrops(),
		}
		if res := sponsorRepo.Count(r.Context(), ""); res.OK {
			stats["sponsors"] = res.Value
		}
		if res := siteRepo.CountActive(r.Context()); res.OK {
			stats["active_sites"] = res.Value
		}
		if res := websiteRepo.Count(r.Context()); res.OK {
			stats["websites"] = res.Value
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(stats)
	}).Methods(http.MethodGet)

	handler := middleware.Chain(router,
		middleware.Recovery(log),
		middleware.RequestLogging(log),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Error("server error", "error", err)
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", "error", err)
	}
	content.Stop()
	if closeIndex != nil {
		if err := closeIndex(); err != nil {
			log.Error("search index close error", "error", err)
		}
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			log.Error("drift publisher close error", "error", err)
		}
	}
	if err := tel.Shutdown(shutdownCtx); err != nil {
		log.Error("telemetry shutdown error", "error", err)
	}

	log.Info("Storage Service stopped gracefully")
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/app"
	"fintrack/internal/platform/audit"
	"fintrack/internal/platform/config"
	"fintrack/internal/platform/httpserver"
	"fintrack/internal/platform/logger"
	"fintrack/internal/platform/metrics"
	"fintrack/internal/platform/middleware"
	"fintrack/internal/platform/postgres"
	platformredis "fintrack/internal/platform/redis"
	"fintrack/internal/uow"
)

// main wires dependencies and keeps the process lifecycle small. Business
// logic lives in internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	if err := postgres.Migrate(db, "db/migrations"); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	m := metrics.New()
	outbox := audit.NewOutbox(db)
	factory := uow.NewPostgresFactory(db, outbox, m)
	service := app.NewService(factory, log)

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.SeedDemo {
		if err := service.SeedDemoData(ctx); err != nil {
			log.Fatalf("seed: %v", err)
		}
	}

	router := chi.NewRouter()
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.RequestMeta)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Addr, router)

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Printf("starting fintrack on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), httpserver.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if len(cfg.Kafka.Brokers) > 0 {
		sink, err := audit.NewKafka(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			log.Fatalf("kafka: %v", err)
		}
		defer sink.Close()

		var dedupe audit.Deduper
		if redisClient != nil {
			dedupe = audit.NewRedisDeduper(redisClient.Client, config.DedupeTTL)
		}
		worker := audit.NewWorker(outbox, sink, dedupe, log)
		group.Go(func() error {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
	log.Printf("fintrack stopped")
}

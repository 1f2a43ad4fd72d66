package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finman-app/backend/internal/api"
	"github.com/finman-app/backend/internal/auth"
	"github.com/finman-app/backend/internal/categories"
	"github.com/finman-app/backend/internal/config"
	"github.com/finman-app/backend/internal/jobs"
	"github.com/finman-app/backend/internal/jobs/inmemory"
	"github.com/finman-app/backend/internal/logger"
	"github.com/finman-app/backend/internal/scheduler"
	"github.com/finman-app/backend/internal/store/mongodb"
)

func main() {
	var port = flag.String("port", "", "HTTP server port (overrides PORT env)")
	flag.Parse()

	// Initialize logger
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *port != "" {
		cfg.Port = *port
	}

	ctx := context.Background()

	// Connect to the document store
	st, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer st.Close(context.Background())

	tokens := auth.NewJWTProvider(cfg.JWTSecret, cfg.TokenTTL)
	categoriesSvc := categories.NewService(st, cfg.CacheTTL)
	sched := scheduler.New(st, log)

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	// Charge-run jobs invoke the scheduler for one user each.
	jobHandler := func(ctx context.Context, job jobs.Job) error {
		chargeJob, ok := job.(*jobs.ChargeRunJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		result, err := sched.ProcessFixedExpenses(ctx, chargeJob.UserID)
		if err != nil {
			log.Error().
				Err(err).
				Str("job_id", chargeJob.JobID).
				Str("user_id", chargeJob.UserID).
				Msg("Charge run failed")
			return err
		}

		chargeJob.Processed = result.Processed
		log.Info().
			Str("job_id", chargeJob.JobID).
			Str("user_id", chargeJob.UserID).
			Int("processed", result.Processed).
			Msg("Charge run completed")
		return nil
	}

	go func() {
		log.Info().Msg("Starting job worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	handler := api.NewRouter(api.Deps{
		Store:      st,
		Tokens:     tokens,
		Categories: categoriesSvc,
		Scheduler:  sched,
		JobStore:   jobStore,
		Log:        log,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Server exited")
}

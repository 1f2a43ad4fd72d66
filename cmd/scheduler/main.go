package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finman-app/backend/internal/config"
	"github.com/finman-app/backend/internal/jobs"
	"github.com/finman-app/backend/internal/jobs/inmemory"
	"github.com/finman-app/backend/internal/logger"
	"github.com/finman-app/backend/internal/scheduler"
	"github.com/finman-app/backend/internal/store/mongodb"
)

// The scheduler binary sweeps every configured user on an interval: each
// tick enqueues one charge-run job per user, and the workers invoke the
// fixed-expense scheduler for each.
func main() {
	// Initialize logger
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer st.Close(context.Background())

	sched := scheduler.New(st, log)

	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	log.Info().Dur("interval", cfg.SchedulerInterval).Msg("Starting scheduler service")

	handler := func(ctx context.Context, job jobs.Job) error {
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
		if result.Processed > 0 {
			log.Info().
				Str("user_id", chargeJob.UserID).
				Int("processed", result.Processed).
				Msg("Applied fixed expenses")
		}
		return nil
	}

	if err := jobQueue.Start(ctx, handler); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	// Sweep immediately on startup, then on every tick.
	sweep := func() {
		userIDs, err := st.Categories().ListConfiguredUserIDs(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Failed to list configured users")
			return
		}

		log.Info().Int("users", len(userIDs)).Msg("Enqueueing charge runs")
		for _, userID := range userIDs {
			job := &jobs.ChargeRunJob{UserID: userID}
			if err := jobQueue.PublishChargeRun(ctx, job); err != nil {
				log.Error().Err(err).Str("user_id", userID).Msg("Failed to enqueue charge run")
			}
		}
	}

	ticker := time.NewTicker(cfg.SchedulerInterval)
	defer ticker.Stop()

	go func() {
		sweep()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sweep()
			}
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down scheduler service...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}
	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Scheduler service exited")
}

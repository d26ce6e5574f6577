package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/floatchat/floatchat/internal/aggregation"
	"github.com/floatchat/floatchat/internal/database"
	"github.com/floatchat/floatchat/internal/timer"
	"github.com/floatchat/floatchat/pkg/config"
)

const dailyTaskID = "regional-daily"

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Str("service", "aggregator").Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := database.Connect(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("connected to database")

	if err := db.RunMigrations("migrations"); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	aggregator := aggregation.NewRegionalAggregator(db, log)

	scheduler := timer.NewScheduler()
	scheduler.Start()
	defer scheduler.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Each run reschedules the next one.
	var scheduleNext func()
	scheduleNext = func() {
		runAt, err := aggregator.NextRunTime(cfg.Aggregation.DailyTime)
		if err != nil {
			log.Fatal().Err(err).Str("daily_time", cfg.Aggregation.DailyTime).Msg("invalid daily time")
		}
		scheduler.Schedule(dailyTaskID, runAt, func() {
			if err := aggregator.AggregatePreviousDay(ctx); err != nil {
				log.Error().Err(err).Msg("daily aggregation failed")
			}
			scheduleNext()
		})
		log.Info().Time("run_at", runAt).Msg("daily aggregation scheduled")
	}
	scheduleNext()

	// Catch-up run on startup so a restart never leaves yesterday missing
	if err := aggregator.AggregatePreviousDay(ctx); err != nil {
		log.Error().Err(err).Msg("startup aggregation failed")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutting down")
	cancel()
}

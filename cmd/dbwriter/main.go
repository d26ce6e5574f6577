package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/floatchat/floatchat/internal/database"
	"github.com/floatchat/floatchat/internal/queue"
	"github.com/floatchat/floatchat/pkg/config"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Str("service", "dbwriter").Logger()

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

	if err := queue.CreateTopic(cfg.Kafka.Brokers, cfg.Kafka.TopicObservations, cfg.Kafka.NumPartitions, 1); err != nil {
		log.Warn().Err(err).Msg("topic creation failed (may already exist)")
	}

	consumer := queue.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicObservations, cfg.Kafka.ConsumerGroup)
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	batchWriter := queue.NewBatchWriter(consumer, db, 100, 5*time.Second, log)
	if err := batchWriter.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start batch writer")
	}
	log.Info().Str("topic", cfg.Kafka.TopicObservations).Msg("batch writer started")

	// Consumer stats every minute
	go func() {
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			stats := consumer.Stats()
			log.Info().Int64("messages", stats.Messages).Int64("bytes", stats.Bytes).
				Int64("errors", stats.Errors).Msg("consumer stats")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutting down")
	cancel()
	batchWriter.Stop()
}

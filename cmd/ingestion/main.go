package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/floatchat/floatchat/internal/ingestion"
	"github.com/floatchat/floatchat/internal/queue"
	"github.com/floatchat/floatchat/pkg/config"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Str("service", "ingestion").Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if err := queue.CreateTopic(cfg.Kafka.Brokers, cfg.Kafka.TopicObservations, cfg.Kafka.NumPartitions, 1); err != nil {
		log.Warn().Err(err).Msg("topic creation failed (may already exist)")
	}

	producer := queue.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicObservations)
	defer producer.Close()

	client := ingestion.NewClient(cfg.Ingestion.ERDDAPBase, log)
	syncer := ingestion.NewSyncer(client, producer, cfg.Ingestion.Lookback, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("shutting down")
		cancel()
	}()

	log.Info().
		Str("source", cfg.Ingestion.ERDDAPBase).
		Dur("interval", cfg.Ingestion.SyncInterval).
		Msg("ingestion service started")

	syncer.Run(ctx, cfg.Ingestion.SyncInterval, cfg.Ingestion.RetryDelay)
}

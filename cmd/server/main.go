package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/floatchat/floatchat/internal/answer"
	"github.com/floatchat/floatchat/internal/cache"
	"github.com/floatchat/floatchat/internal/database"
	"github.com/floatchat/floatchat/internal/ingestion"
	"github.com/floatchat/floatchat/internal/llm"
	"github.com/floatchat/floatchat/internal/queue"
	"github.com/floatchat/floatchat/internal/server"
	"github.com/floatchat/floatchat/pkg/config"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Str("service", "server").Logger()

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

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	answerCache := cache.New(redisClient, log)

	// The LLM translator is optional. Without it the rule-based extractor
	// handles every query.
	var translator *llm.Translator
	if cfg.LLM.Enabled() {
		client, err := llm.New(llm.Config{
			Provider: cfg.LLM.Provider,
			APIKey:   cfg.LLM.APIKey,
			Model:    cfg.LLM.Model,
			BaseURL:  cfg.LLM.BaseURL,
		})
		if err != nil {
			log.Warn().Err(err).Msg("LLM backend misconfigured, using rule-based extraction only")
		} else {
			translator = llm.NewTranslator(client, log)
			log.Info().Str("provider", cfg.LLM.Provider).Msg("LLM translation enabled")
		}
	}

	pipeline := answer.New(db, translator, log)

	// Manual ingest endpoint publishes straight to Kafka, same path as the
	// ingestion service.
	producer := queue.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicObservations)
	defer producer.Close()
	erddap := ingestion.NewClient(cfg.Ingestion.ERDDAPBase, log)
	syncer := ingestion.NewSyncer(erddap, producer, cfg.Ingestion.Lookback, log)

	srv := server.New(cfg.HTTP, db, answerCache, pipeline, syncer, translator != nil, log)

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}

package queue

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/floatchat/floatchat/internal/database"
	"github.com/floatchat/floatchat/internal/protocol"
)

// BatchWriter consumes observation messages from Kafka and batch-writes them
// to the float store.
type BatchWriter struct {
	consumer      *Consumer
	db            *database.DB
	batchSize     int
	flushInterval time.Duration
	log           zerolog.Logger
	stopCh        chan struct{}
	wg            sync.WaitGroup
}

// NewBatchWriter creates a new batch writer
func NewBatchWriter(consumer *Consumer, db *database.DB, batchSize int, flushInterval time.Duration, logger zerolog.Logger) *BatchWriter {
	return &BatchWriter{
		consumer:      consumer,
		db:            db,
		batchSize:     batchSize,
		flushInterval: flushInterval,
		log:           logger,
		stopCh:        make(chan struct{}),
	}
}

// Start begins consuming and writing to the database
func (bw *BatchWriter) Start(ctx context.Context) error {
	bw.wg.Add(1)
	go bw.run(ctx)
	return nil
}

// Stop stops the batch writer gracefully
func (bw *BatchWriter) Stop() {
	close(bw.stopCh)
	bw.wg.Wait()
}

func (bw *BatchWriter) run(ctx context.Context) {
	defer bw.wg.Done()

	var batch []kafka.Message
	ticker := time.NewTicker(bw.flushInterval)
	defer ticker.Stop()

	msgChan := make(chan kafka.Message, 10)
	go func() {
		for {
			msg, err := bw.consumer.Consume(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				bw.log.Error().Err(err).Msg("consumer error")
				continue
			}
			select {
			case msgChan <- msg:
			case <-bw.stopCh:
				return
			}
		}
	}()

	for {
		select {
		case <-bw.stopCh:
			// Flush remaining batch before stopping
			bw.flush(ctx, batch)
			return

		case <-ticker.C:
			if len(batch) > 0 {
				bw.flush(ctx, batch)
				batch = nil
			}

		case msg := <-msgChan:
			batch = append(batch, msg)
			if len(batch) >= bw.batchSize {
				bw.flush(ctx, batch)
				batch = nil
			}
		}
	}
}

func (bw *BatchWriter) flush(ctx context.Context, batch []kafka.Message) {
	if len(batch) == 0 {
		return
	}

	successCount := 0
	for _, msg := range batch {
		if err := bw.processMessage(ctx, msg); err != nil {
			bw.log.Error().Err(err).Int("partition", msg.Partition).Int64("offset", msg.Offset).
				Msg("failed to process message")
			continue
		}
		successCount++

		// Commit offset after successful processing
		if err := bw.consumer.Commit(ctx, msg); err != nil {
			bw.log.Error().Err(err).Msg("failed to commit offset")
		}
	}

	bw.log.Info().Int("written", successCount).Int("batch", len(batch)).Msg("flushed batch to database")
}

func (bw *BatchWriter) processMessage(ctx context.Context, msg kafka.Message) error {
	obs, err := protocol.DecodeObservationMessage(msg.Value)
	if err != nil {
		return err
	}

	rec := &database.FloatRecord{
		FloatID:     obs.FloatID,
		Latitude:    obs.Latitude,
		Longitude:   obs.Longitude,
		Depth:       obs.Depth,
		Temperature: obs.Temperature,
		Salinity:    obs.Salinity,
		Pressure:    obs.Pressure,
		Oxygen:      obs.Oxygen,
		PH:          obs.PH,
		Chlorophyll: obs.Chlorophyll,
		Timestamp:   obs.Timestamp,
		Status:      database.FloatStatusActive,
	}

	return bw.db.UpsertFloatRecord(ctx, rec)
}

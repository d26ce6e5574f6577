package ingestion

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/floatchat/floatchat/internal/protocol"
)

// publisher is the slice of the queue producer the syncer needs.
type publisher interface {
	PublishBatch(ctx context.Context, messages []kafka.Message) error
}

// Syncer runs the fetch-and-publish cycle: observations come from ERDDAP and
// go out on the observations topic keyed by float id.
type Syncer struct {
	client   *Client
	producer publisher
	lookback time.Duration
	log      zerolog.Logger
}

func NewSyncer(client *Client, producer publisher, lookback time.Duration, logger zerolog.Logger) *Syncer {
	return &Syncer{
		client:   client,
		producer: producer,
		lookback: lookback,
		log:      logger,
	}
}

// SyncOnce fetches observations within the lookback window and publishes
// them as one batch. Returns the number of observations published.
func (s *Syncer) SyncOnce(ctx context.Context) (int, error) {
	since := time.Now().Add(-s.lookback)

	observations, err := s.client.FetchRecent(ctx, since)
	if err != nil {
		return 0, err
	}

	messages := make([]kafka.Message, 0, len(observations))
	for i := range observations {
		data, err := protocol.EncodeObservationMessage(&observations[i])
		if err != nil {
			s.log.Error().Err(err).Str("float_id", observations[i].FloatID).Msg("failed to encode observation")
			continue
		}
		messages = append(messages, kafka.Message{
			Key:   []byte(observations[i].FloatID),
			Value: data,
		})
	}

	if len(messages) == 0 {
		s.log.Info().Msg("sync completed, nothing to publish")
		return 0, nil
	}

	if err := s.producer.PublishBatch(ctx, messages); err != nil {
		return 0, fmt.Errorf("failed to publish observations: %w", err)
	}

	s.log.Info().Int("published", len(messages)).Msg("sync completed")
	return len(messages), nil
}

// Run loops SyncOnce on the given interval until the context is cancelled,
// backing off with retryDelay after a failed cycle.
func (s *Syncer) Run(ctx context.Context, interval, retryDelay time.Duration) {
	for {
		delay := interval
		if _, err := s.SyncOnce(ctx); err != nil {
			s.log.Error().Err(err).Dur("retry_in", retryDelay).Msg("sync failed")
			delay = retryDelay
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/config"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// WorkerConfig controls polling and retry behaviour.
type WorkerConfig struct {
	PollInterval time.Duration
	BatchSize    int
	// MaxAttempts is the number of delivery rounds before a row is failed.
	MaxAttempts int
	// SendRetries is the number of immediate retries within one round.
	SendRetries uint64
	// RetryBase is the delay before the second round; later rounds double it.
	RetryBase time.Duration
	// Lease hides claimed rows from other workers while they are sent.
	Lease time.Duration
}

// WorkerConfigFrom derives the worker settings from the service config.
func WorkerConfigFrom(cfg config.OutboxConfig) WorkerConfig {
	return WorkerConfig{
		PollInterval: cfg.PollInterval,
		BatchSize:    cfg.BatchSize,
		MaxAttempts:  cfg.MaxAttempts,
		SendRetries:  2,
		RetryBase:    30 * time.Second,
		Lease:        2 * time.Minute,
	}
}

// Worker delivers queued order notifications.
type Worker struct {
	outbox repository.OutboxRepository
	mailer Mailer
	cfg    WorkerConfig
	logger zerolog.Logger

	now func() time.Time
}

func NewWorker(outbox repository.OutboxRepository, mailer Mailer, cfg WorkerConfig, logger zerolog.Logger) *Worker {
	return &Worker{
		outbox: outbox,
		mailer: mailer,
		cfg:    cfg,
		logger: logger.With().Str("worker", "notify").Logger(),
		now:    time.Now,
	}
}

// Run polls the outbox until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info().
		Dur("poll_interval", w.cfg.PollInterval).
		Int("batch_size", w.cfg.BatchSize).
		Msg("notification worker started")

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if _, err := w.ProcessDue(ctx); err != nil && ctx.Err() == nil {
			w.logger.Error().Err(err).Msg("failed to process notifications")
		}

		select {
		case <-ctx.Done():
			w.logger.Info().Msg("notification worker stopped")
			return
		case <-ticker.C:
		}
	}
}

// ProcessDue claims one batch of due notifications and attempts each of
// them. It returns how many were delivered.
func (w *Worker) ProcessDue(ctx context.Context) (int, error) {
	batch, err := w.outbox.ClaimDue(ctx, w.cfg.BatchSize, w.cfg.Lease)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, n := range batch {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		if w.deliver(ctx, n) {
			sent++
		}
	}
	return sent, nil
}

func (w *Worker) deliver(ctx context.Context, n model.Notification) bool {
	log := w.logger.With().
		Str("notification_id", n.ID).
		Str("order_id", n.OrderID).
		Str("kind", string(n.Kind)).
		Logger()

	attempts := n.Attempts + 1

	msg, err := Render(n)
	if err != nil {
		log.Error().Err(err).Msg("notification cannot be rendered")
		w.markFailed(ctx, n.ID, attempts, err)
		return false
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(w.sendBackOff(), w.cfg.SendRetries), ctx)
	err = backoff.RetryNotify(func() error {
		return w.mailer.Send(ctx, msg)
	}, policy, func(err error, d time.Duration) {
		log.Warn().Err(err).Dur("retry_in", d).Msg("e-mail send failed, retrying")
	})

	if err == nil {
		if err := w.outbox.MarkSent(ctx, n.ID); err != nil {
			log.Error().Err(err).Msg("e-mail sent but outbox not updated")
		}
		log.Info().Str("to", n.Recipient).Msg("notification delivered")
		return true
	}

	if attempts >= w.cfg.MaxAttempts {
		w.markFailed(ctx, n.ID, attempts, err)
		return false
	}

	next := w.now().Add(w.retryDelay(attempts))
	if mErr := w.outbox.MarkRetry(ctx, n.ID, attempts, next, err.Error()); mErr != nil {
		log.Error().Err(mErr).Msg("failed to reschedule notification")
	}
	log.Warn().Err(err).Int("attempts", attempts).Time("next_attempt_at", next).Msg("notification rescheduled")
	return false
}

func (w *Worker) markFailed(ctx context.Context, id string, attempts int, cause error) {
	if err := w.outbox.MarkFailed(ctx, id, attempts, cause.Error()); err != nil {
		w.logger.Error().Err(err).Str("notification_id", id).Msg("failed to mark notification failed")
	}
}

func (w *Worker) sendBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.Reset()
	return b
}

// retryDelay is RetryBase doubled for every round already spent.
func (w *Worker) retryDelay(attempts int) time.Duration {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = w.cfg.RetryBase
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = 6 * time.Hour
	b.MaxElapsedTime = 0
	b.Reset()

	d := b.NextBackOff()
	for i := 1; i < attempts; i++ {
		d = b.NextBackOff()
	}
	return d
}

func decodePayload(raw json.RawMessage, out *model.OrderEmailPayload) error {
	if len(raw) == 0 {
		return errors.New("empty notification payload")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("invalid notification payload: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type outboxRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOutboxRepository creates a PostgreSQL-backed notification outbox.
func NewOutboxRepository(pool *pgxpool.Pool, logger zerolog.Logger) OutboxRepository {
	return &outboxRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "outbox").Logger(),
	}
}

func (r *outboxRepository) Enqueue(ctx context.Context, n *model.Notification) error {
	if err := insertNotification(ctx, r.pool, n); err != nil {
		r.logger.Error().Err(err).Str("order_id", n.OrderID).Msg("failed to enqueue notification")
		return err
	}
	return nil
}

// ClaimDue pushes next_attempt_at forward by lease for the claimed rows, so a
// worker that dies mid-send releases them automatically.
func (r *outboxRepository) ClaimDue(ctx context.Context, limit int, lease time.Duration) ([]model.Notification, error) {
	query := `
		UPDATE notification_outbox
		SET next_attempt_at = NOW() + make_interval(secs => $2)
		WHERE id IN (
			SELECT id FROM notification_outbox
			WHERE state = 'pending' AND next_attempt_at <= NOW()
			ORDER BY next_attempt_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, order_id, kind, recipient, payload, state, attempts, next_attempt_at, last_error, created_at
	`

	rows, err := r.pool.Query(ctx, query, limit, lease.Seconds())
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to claim notifications")
		return nil, fmt.Errorf("failed to claim notifications: %w", err)
	}
	defer rows.Close()

	var out []model.Notification
	for rows.Next() {
		var (
			n           model.Notification
			kind, state string
			payload     []byte
		)
		if err := rows.Scan(&n.ID, &n.OrderID, &kind, &n.Recipient, &payload, &state,
			&n.Attempts, &n.NextAttemptAt, &n.LastError, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.Kind = model.NotificationKind(kind)
		n.State = model.NotificationState(state)
		n.Payload = payload
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}

	return out, nil
}

func (r *outboxRepository) MarkSent(ctx context.Context, id string) error {
	query := `UPDATE notification_outbox SET state = 'sent', attempts = attempts + 1, last_error = '' WHERE id = $1`
	if _, err := r.pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to mark notification sent: %w", err)
	}
	return nil
}

func (r *outboxRepository) MarkRetry(ctx context.Context, id string, attempts int, next time.Time, lastErr string) error {
	query := `
		UPDATE notification_outbox
		SET attempts = $2, next_attempt_at = $3, last_error = $4
		WHERE id = $1
	`
	if _, err := r.pool.Exec(ctx, query, id, attempts, next, lastErr); err != nil {
		return fmt.Errorf("failed to reschedule notification: %w", err)
	}
	return nil
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id string, attempts int, lastErr string) error {
	query := `UPDATE notification_outbox SET state = 'failed', attempts = $2, last_error = $3 WHERE id = $1`
	if _, err := r.pool.Exec(ctx, query, id, attempts, lastErr); err != nil {
		return fmt.Errorf("failed to mark notification failed: %w", err)
	}
	r.logger.Warn().Str("notification_id", id).Int("attempts", attempts).Str("error", lastErr).Msg("notification abandoned")
	return nil
}

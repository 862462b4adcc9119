package repository

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const orderColumns = `id, user_id, is_guest, items, total, status, customer_name, customer_email,
	customer_phone, shipping, payment_intent_id, payment_status, created_at, updated_at`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

func scanOrder(row pgx.Row) (model.Order, error) {
	var (
		o      model.Order
		status string
	)
	err := row.Scan(
		&o.ID, &o.UserID, &o.IsGuest, &o.Items, &o.Total, &status,
		&o.CustomerName, &o.CustomerEmail, &o.CustomerPhone, &o.Shipping,
		&o.PaymentIntentID, &o.PaymentStatus, &o.CreatedAt, &o.UpdatedAt,
	)
	o.Status = model.OrderStatus(status)
	return o, err
}

func (r *orderRepository) collect(rows pgx.Rows) ([]model.Order, error) {
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// Create inserts an order and its optional notification in one transaction.
func (r *orderRepository) Create(ctx context.Context, order *model.Order, notification *model.Notification) error {
	query := `
		INSERT INTO orders (id, user_id, is_guest, items, total, status, customer_name, customer_email,
			customer_phone, shipping, payment_intent_id, payment_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			order.ID, order.UserID, order.IsGuest, order.Items, order.Total, string(order.Status),
			order.CustomerName, order.CustomerEmail, order.CustomerPhone, order.Shipping,
			order.PaymentIntentID, order.PaymentStatus, order.CreatedAt, order.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		if notification != nil {
			return insertNotification(ctx, tx, notification)
		}
		return nil
	})
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID).
			Msg("failed to create order")
		return err
	}

	r.logger.Debug().
		Str("order_id", order.ID).
		Msg("order created successfully")

	return nil
}

// GetByID retrieves an order by its ID.
func (r *orderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

// GetByPaymentIntent finds the most recent order for a payment intent.
func (r *orderRepository) GetByPaymentIntent(ctx context.Context, paymentIntentID string) (*model.Order, error) {
	if paymentIntentID == "" {
		return nil, nil
	}
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE payment_intent_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	return r.getOne(ctx, query, paymentIntentID)
}

func (r *orderRepository) getOne(ctx context.Context, query, arg string) (*model.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if isNoRows(err) {
			r.logger.Debug().Str("key", arg).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("key", arg).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}
	return &o, nil
}

// ListByUser returns a user's orders, newest first.
func (r *orderRepository) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to query user orders")
		return nil, fmt.Errorf("failed to query user orders: %w", err)
	}

	return r.collect(rows)
}

// List returns orders matching filter, newest first.
func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]model.Order, error) {
	var (
		from, to *time.Time
		limit    *int
	)
	if !filter.From.IsZero() {
		from = &filter.From
	}
	if !filter.To.IsZero() {
		to = &filter.To
	}
	if filter.Limit > 0 {
		limit = &filter.Limit
	}

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE ($1 = '' OR status = $1)
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		  AND ($3::timestamptz IS NULL OR created_at < $3)
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5
	`

	rows, err := r.pool.Query(ctx, query, string(filter.Status), from, to, limit, filter.Offset)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}

	return r.collect(rows)
}

// UpdateStatus applies a compare-and-set on the order status and queues the
// notification, if any, in the same transaction.
func (r *orderRepository) UpdateStatus(ctx context.Context, change StatusChange) (*model.Order, error) {
	query := `
		UPDATE orders
		SET status = $3,
		    payment_status = CASE WHEN $4 = '' THEN payment_status ELSE $4 END,
		    updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + orderColumns

	var updated model.Order
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		o, err := scanOrder(tx.QueryRow(ctx, query,
			change.OrderID, string(change.From), string(change.To), change.PaymentStatus,
		))
		if err != nil {
			if isNoRows(err) {
				return model.ErrStatusChanged
			}
			return fmt.Errorf("failed to update order status: %w", err)
		}
		updated = o

		if change.Notification != nil {
			return insertNotification(ctx, tx, change.Notification)
		}
		return nil
	})
	if err != nil {
		if err != model.ErrStatusChanged {
			r.logger.Error().Err(err).Str("order_id", change.OrderID).Msg("failed to update order status")
		}
		return nil, err
	}

	r.logger.Info().
		Str("order_id", change.OrderID).
		Str("from", string(change.From)).
		Str("to", string(change.To)).
		Msg("order status updated")

	return &updated, nil
}

// SetPaymentIntent records the payment intent paying for an order.
func (r *orderRepository) SetPaymentIntent(ctx context.Context, orderID, paymentIntentID string) error {
	query := `UPDATE orders SET payment_intent_id = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, orderID, paymentIntentID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID).Msg("failed to set payment intent")
		return fmt.Errorf("failed to set payment intent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}
	return nil
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	cartKeyPrefix     = "cart:"
	wishlistKeyPrefix = "wishlist:"
)

// documentStore keeps versioned JSON documents in Redis and guards writes
// with WATCH/MULTI.
type documentStore[T any] struct {
	client *redis.Client
	prefix string
	logger zerolog.Logger
}

func (s *documentStore[T]) key(userID string) string {
	return s.prefix + userID
}

func (s *documentStore[T]) read(get func(string) *redis.StringCmd, key string) (*Document[T], error) {
	raw, err := get(key).Bytes()
	if errors.Is(err, redis.Nil) {
		return &Document[T]{Items: []T{}}, nil
	}
	if err != nil {
		return nil, err
	}

	var doc Document[T]
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document %s: %w", key, err)
	}
	if doc.Items == nil {
		doc.Items = []T{}
	}
	return &doc, nil
}

func (s *documentStore[T]) load(ctx context.Context, userID string) (*Document[T], error) {
	key := s.key(userID)
	doc, err := s.read(func(k string) *redis.StringCmd { return s.client.Get(ctx, k) }, key)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to load document")
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}
	return doc, nil
}

func (s *documentStore[T]) save(ctx context.Context, userID string, items []T, version int64) (int64, error) {
	key := s.key(userID)
	next := version + 1

	txf := func(tx *redis.Tx) error {
		current, err := s.read(func(k string) *redis.StringCmd { return tx.Get(ctx, k) }, key)
		if err != nil {
			return err
		}
		if current.Version != version {
			return model.ErrConflict
		}

		if items == nil {
			items = []T{}
		}
		data, err := json.Marshal(Document[T]{Version: next, Items: items, UpdatedAt: time.Now().UTC()})
		if err != nil {
			return fmt.Errorf("failed to encode document: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}

	err := s.client.Watch(ctx, txf, key)
	switch {
	case err == nil:
		return next, nil
	case errors.Is(err, model.ErrConflict), errors.Is(err, redis.TxFailedErr):
		s.logger.Warn().Str("key", key).Int64("version", version).Msg("document version conflict")
		return 0, model.ErrConflict
	default:
		s.logger.Error().Err(err).Str("key", key).Msg("failed to save document")
		return 0, fmt.Errorf("failed to save %s: %w", key, err)
	}
}

func (s *documentStore[T]) delete(ctx context.Context, userID string) error {
	key := s.key(userID)
	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to delete document")
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

type cartRepository struct {
	store *documentStore[model.CartItem]
}

// NewCartRepository creates a Redis-backed cart document repository.
func NewCartRepository(client *redis.Client, logger zerolog.Logger) CartRepository {
	return &cartRepository{store: &documentStore[model.CartItem]{
		client: client,
		prefix: cartKeyPrefix,
		logger: logger.With().Str("repository", "cart").Logger(),
	}}
}

func (r *cartRepository) LoadCart(ctx context.Context, userID string) (*Document[model.CartItem], error) {
	return r.store.load(ctx, userID)
}

func (r *cartRepository) SaveCart(ctx context.Context, userID string, items []model.CartItem, version int64) (int64, error) {
	return r.store.save(ctx, userID, items, version)
}

func (r *cartRepository) DeleteCart(ctx context.Context, userID string) error {
	return r.store.delete(ctx, userID)
}

type wishlistRepository struct {
	store *documentStore[model.Product]
}

// NewWishlistRepository creates a Redis-backed wishlist document repository.
func NewWishlistRepository(client *redis.Client, logger zerolog.Logger) WishlistRepository {
	return &wishlistRepository{store: &documentStore[model.Product]{
		client: client,
		prefix: wishlistKeyPrefix,
		logger: logger.With().Str("repository", "wishlist").Logger(),
	}}
}

func (r *wishlistRepository) LoadWishlist(ctx context.Context, userID string) (*Document[model.Product], error) {
	return r.store.load(ctx, userID)
}

func (r *wishlistRepository) SaveWishlist(ctx context.Context, userID string, items []model.Product, version int64) (int64, error) {
	return r.store.save(ctx, userID, items, version)
}

func (r *wishlistRepository) DeleteWishlist(ctx context.Context, userID string) error {
	return r.store.delete(ctx, userID)
}

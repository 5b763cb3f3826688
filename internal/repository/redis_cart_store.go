package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Lixing-Zhang/fast-order/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	defaultCartKeyPrefix = "fast-order:cart:"
	maxCartTxRetries     = 10
)

var ErrCartConflict = errors.New("cart was modified concurrently")

// stringGetter is satisfied by both *redis.Client and *redis.Tx
type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisCartStore implements CartStore using Redis. Updates run in a
// WATCH/MULTI transaction, so a cart changed by another request between
// read and write is retried instead of overwritten.
type RedisCartStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisCartStore creates a cart store on an existing Redis client
func NewRedisCartStore(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisCartStore {
	if keyPrefix == "" {
		keyPrefix = defaultCartKeyPrefix
	}
	return &RedisCartStore{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// Get returns the session cart, or an empty cart
func (s *RedisCartStore) Get(ctx context.Context, sessionID string) (*models.Cart, error) {
	return s.load(ctx, s.client, sessionID)
}

// Update runs fn on the session cart and stores the result if nobody else
// changed the cart in the meantime
func (s *RedisCartStore) Update(ctx context.Context, sessionID string, fn func(cart *models.Cart) error) (*models.Cart, error) {
	key := s.key(sessionID)

	for attempt := 0; attempt < maxCartTxRetries; attempt++ {
		var updated *models.Cart

		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			cart, err := s.load(ctx, tx, sessionID)
			if err != nil {
				return err
			}

			if err := fn(cart); err != nil {
				return err
			}

			payload, err := json.Marshal(cart)
			if err != nil {
				return fmt.Errorf("failed to encode cart: %w", err)
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, payload, s.ttl)
				return nil
			})
			if err != nil {
				return err
			}

			updated = cart
			return nil
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}

	return nil, fmt.Errorf("session %s: %w", sessionID, ErrCartConflict)
}

func (s *RedisCartStore) load(ctx context.Context, c stringGetter, sessionID string) (*models.Cart, error) {
	payload, err := c.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.NewCart(sessionID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var cart models.Cart
	if err := json.Unmarshal(payload, &cart); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []models.LineItem{}
	}
	return &cart, nil
}

func (s *RedisCartStore) key(sessionID string) string {
	return s.keyPrefix + sessionID
}

// Ping checks the Redis connection
func (s *RedisCartStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

var _ CartStore = (*RedisCartStore)(nil)

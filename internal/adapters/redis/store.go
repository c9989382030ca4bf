// Package redis persists desk snapshots in Redis for deployments where
// several control surfaces share one backend. Values are msgpack, desk ids
// are indexed in a ZSET so List never scans the keyspace.
package redis

import (
	"context"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/schema"
)

// Store implements ports.SnapshotStore using Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for saved desks.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for desks.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "patchbay:desk:",
		ttl:    0, // no expiration by default
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *Store) key(deskID string) string {
	return s.prefix + deskID
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save persists the snapshot and registers the desk in the index, in one
// pipeline round trip.
func (s *Store) Save(ctx context.Context, deskID string, snap *domain.Snapshot) error {
	data, err := schema.EncodeMsgpack(snap)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()

	pipe.Set(ctx, s.key(deskID), data, s.ttl)

	// Index score mirrors the key expiry so List can prune lazily.
	// With no TTL the score is effectively never.
	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  score,
		Member: deskID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves and decodes the snapshot for a desk.
func (s *Store) Load(ctx context.Context, deskID string) (*domain.Snapshot, error) {
	val, err := s.client.Get(ctx, s.key(deskID)).Bytes()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	return schema.DecodeMsgpack(val)
}

// Delete removes the desk and its index entry.
func (s *Store) Delete(ctx context.Context, deskID string) error {
	pipe := s.client.Pipeline()

	pipe.Del(ctx, s.key(deskID))
	pipe.ZRem(ctx, s.indexKey(), deskID)

	_, err := pipe.Exec(ctx)
	return err
}

// List returns saved desk ids from the index, pruning entries whose keys
// have expired.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())

	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired desks: %w", err)
	}

	desks, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list desks: %w", err)
	}
	return desks, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

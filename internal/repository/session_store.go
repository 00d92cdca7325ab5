package repository

// This file stores session snapshots in Redis so a session survives a
// restart of the process that created it.  Records are JSON values under
// "<prefix>:<id>" and expire after the configured TTL.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/wrapped-story/internal/model"
)

// RedisSessionStore persists session records in Redis.
type RedisSessionStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisSessionStore returns a store writing under prefix.  A non-positive
// ttl keeps records for a day.
func NewRedisSessionStore(rdb *redis.Client, prefix string, ttl time.Duration) *RedisSessionStore {
	if prefix == "" {
		prefix = "session"
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisSessionStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *RedisSessionStore) key(id string) string {
	return s.prefix + ":" + id
}

// Save writes rec and refreshes its expiry.
func (s *RedisSessionStore) Save(ctx context.Context, rec model.SessionRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", rec.ID, err)
	}
	return s.rdb.Set(ctx, s.key(rec.ID), body, s.ttl).Err()
}

// Load reads the record for id.  It returns ErrSessionNotStored when the key
// is missing or expired.
func (s *RedisSessionStore) Load(ctx context.Context, id string) (model.SessionRecord, error) {
	var rec model.SessionRecord
	body, err := s.rdb.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return rec, ErrSessionNotStored
		}
		return rec, err
	}
	if err := json.Unmarshal(body, &rec); err != nil {
		return rec, fmt.Errorf("decode session %s: %w", id, err)
	}
	return rec, nil
}

// Delete removes the record for id.  Deleting a missing record is not an
// error.
func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, s.key(id)).Err()
}

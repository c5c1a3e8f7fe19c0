package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/pickflick/internal/model"
)

// maxRedisTxRetries bounds the optimistic retry loop in Update.
const maxRedisTxRetries = 50

// RedisSessionStore keeps each session as a JSON string under
// "<prefix>:<code>".  When ttl is positive every write refreshes the key's
// expiry, so abandoned sessions age out on their own.
type RedisSessionStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisSessionStore returns a store using the given key prefix.
func NewRedisSessionStore(rdb *redis.Client, prefix string, ttl time.Duration) *RedisSessionStore {
	if prefix == "" {
		prefix = "session"
	}
	return &RedisSessionStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (r *RedisSessionStore) key(code string) string { return r.prefix + ":" + code }

func (r *RedisSessionStore) InsertIfAbsent(ctx context.Context, s *model.Session) (bool, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return false, fmt.Errorf("encode session: %w", err)
	}
	ok, err := r.rdb.SetNX(ctx, r.key(s.Code), b, r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("setnx: %w", err)
	}
	return ok, nil
}

func decodeRedisSession(b []byte) (*model.Session, error) {
	var s model.Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if s.Movies == nil {
		s.Movies = []model.MovieEntry{}
	}
	return &s, nil
}

func (r *RedisSessionStore) Find(ctx context.Context, code string) (*model.Session, error) {
	b, err := r.rdb.Get(ctx, r.key(code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return decodeRedisSession(b)
}

// Update watches the key, applies fn and writes back in MULTI/EXEC.  A
// concurrent writer aborts the EXEC and the whole read-modify-write is
// retried against the fresh value.
func (r *RedisSessionStore) Update(ctx context.Context, code string, fn Mutator) (*model.Session, error) {
	key := r.key(code)
	var out *model.Session
	txf := func(tx *redis.Tx) error {
		b, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrSessionNotFound
			}
			return err
		}
		s, err := decodeRedisSession(b)
		if err != nil {
			return err
		}
		if err := fn(s); err != nil {
			return err
		}
		nb, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("encode session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if r.ttl > 0 {
				pipe.Set(ctx, key, nb, r.ttl)
			} else {
				pipe.Set(ctx, key, nb, redis.KeepTTL)
			}
			return nil
		})
		if err == nil {
			out = s
		}
		return err
	}
	for i := 0; i < maxRedisTxRetries; i++ {
		err := r.rdb.Watch(ctx, txf, key)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("update %s: %w", code, ErrConflict)
}

func (r *RedisSessionStore) Delete(ctx context.Context, code string) (bool, error) {
	n, err := r.rdb.Del(ctx, r.key(code)).Result()
	if err != nil {
		return false, fmt.Errorf("del: %w", err)
	}
	return n > 0, nil
}

// Purge scans the prefix and removes stale sessions.  Keys written with a
// TTL normally expire before this matters.
func (r *RedisSessionStore) Purge(ctx context.Context, before time.Time) (int, error) {
	var (
		cursor uint64
		n      int
	)
	for {
		keys, next, err := r.rdb.Scan(ctx, cursor, r.prefix+":*", 200).Result()
		if err != nil {
			return n, fmt.Errorf("scan: %w", err)
		}
		for _, k := range keys {
			removed := false
			// A session touched between the read and the delete aborts EXEC
			// and survives this round.
			err := r.rdb.Watch(ctx, func(tx *redis.Tx) error {
				b, err := tx.Get(ctx, k).Bytes()
				if err != nil {
					return err
				}
				s, err := decodeRedisSession(b)
				if err != nil || !s.UpdatedAt.Before(before) {
					return nil
				}
				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Del(ctx, k)
					return nil
				})
				removed = err == nil
				return err
			}, k)
			if err != nil && !errors.Is(err, redis.Nil) && !errors.Is(err, redis.TxFailedErr) {
				return n, fmt.Errorf("purge %s: %w", k, err)
			}
			if removed {
				n++
			}
		}
		cursor = next
		if cursor == 0 {
			return n, nil
		}
	}
}

// Close leaves the shared client open; the caller owns it.
func (r *RedisSessionStore) Close() error { return nil }

package infra

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"chat-gateway/middleware/ratelimit/domain"

	"github.com/redis/go-redis/v9"
)

var ErrContention = errors.New("ratelimit: too many concurrent updates for key")

// RedisStore é um domain.EntryStore compartilhado entre instâncias do gateway.
//
// Cada chave vira um hash {count, reset} e o Update usa WATCH/MULTI: lê, aplica
// o Mutator em Go e grava só se ninguém mexeu na chave no meio. Em conflito,
// tenta de novo até maxRetries.
type RedisStore struct {
	rdb *redis.Client

	prefix     string
	maxRetries int
	// grace mantém a chave um pouco além do ResetTime para que um acesso em
	// now == ResetTime ainda encontre a entry.
	grace time.Duration
}

type RedisStoreOption func(*RedisStore)

func WithStorePrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) { s.prefix = strings.Trim(prefix, ":") }
}

func WithMaxRetries(n int) RedisStoreOption {
	return func(s *RedisStore) { s.maxRetries = n }
}

func NewRedisStore(rdb *redis.Client, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{
		rdb:        rdb,
		prefix:     "ratelimit:window",
		maxRetries: 10,
		grace:      time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.maxRetries <= 0 {
		s.maxRetries = 1
	}
	return s
}

func (s *RedisStore) key(k domain.Key) string {
	return s.prefix + ":" + string(k)
}

// Update implementa domain.EntryStore.
func (s *RedisStore) Update(ctx context.Context, key domain.Key, fn domain.Mutator) (domain.Entry, error) {
	rk := s.key(key)

	var out domain.Entry
	txf := func(tx *redis.Tx) error {
		fields, err := tx.HGetAll(ctx, rk).Result()
		if err != nil {
			return err
		}
		cur, found, err := parseEntry(fields)
		if err != nil {
			return fmt.Errorf("decode %s: %w", rk, err)
		}

		next, save := fn(cur, found)
		if !save {
			out = cur
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, rk,
				"count", next.Count,
				"reset", next.ResetTime.UnixNano(),
			)
			pipe.PExpireAt(ctx, rk, next.ResetTime.Add(s.grace))
			return nil
		})
		if err != nil {
			return err
		}
		out = next
		return nil
	}

	for i := 0; i < s.maxRetries; i++ {
		err := s.rdb.Watch(ctx, txf, rk)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return domain.Entry{}, err
	}
	return domain.Entry{}, ErrContention
}

func parseEntry(fields map[string]string) (domain.Entry, bool, error) {
	if len(fields) == 0 {
		return domain.Entry{}, false, nil
	}
	count, err := strconv.Atoi(fields["count"])
	if err != nil {
		return domain.Entry{}, false, err
	}
	reset, err := strconv.ParseInt(fields["reset"], 10, 64)
	if err != nil {
		return domain.Entry{}, false, err
	}
	return domain.Entry{Count: count, ResetTime: time.Unix(0, reset)}, true, nil
}

package infra

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"chat-gateway/middleware/ratelimit/domain"

	"github.com/redis/go-redis/v9"
)

// RedisStatsStore conta desfechos do gateway em hashes do Redis. Cada hash
// tem um campo por Outcome (allowed, rate_limited, invalid, failed):
//
//	<prefix>:total                  cumulativo, sem TTL
//	<prefix>:minute:<YYYYMMDDhhmm>  série por minuto (bucket "minute"), com TTL
//	<prefix>:route:<METHOD> <path>  cumulativo por rota
//	<prefix>:key:<identidade>       por cliente, com TTL (WithStatsTrackKeys)
type RedisStatsStore struct {
	rdb *redis.Client

	prefix    string
	ttl       time.Duration
	bucket    string // "minute" (padrão) ou "none"
	trackKeys bool
}

type RedisStatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

func WithStatsBucket(bucket string) RedisStatsOption {
	return func(s *RedisStatsStore) { s.bucket = strings.ToLower(strings.TrimSpace(bucket)) }
}

func WithStatsTrackKeys(track bool) RedisStatsOption {
	return func(s *RedisStatsStore) { s.trackKeys = track }
}

func NewRedisStatsStore(rdb *redis.Client, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:    rdb,
		prefix: "chat:stats",
		ttl:    24 * time.Hour,
		bucket: "minute",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// statsHash é um hash a incrementar; ttl 0 = não expira.
type statsHash struct {
	name string
	ttl  time.Duration
}

func (s *RedisStatsStore) hashesFor(ev domain.StatsEvent) []statsHash {
	hashes := []statsHash{{name: s.prefix + ":total"}}

	if s.bucket == "minute" {
		at := ev.At
		if at.IsZero() {
			at = time.Now()
		}
		hashes = append(hashes, statsHash{
			name: s.prefix + ":minute:" + at.UTC().Format("200601021504"),
			ttl:  s.ttl,
		})
	}
	if route := routeName(ev.Method, ev.Path); route != "" {
		hashes = append(hashes, statsHash{name: s.prefix + ":route:" + route})
	}
	if k := strings.TrimSpace(string(ev.Key)); s.trackKeys && k != "" {
		hashes = append(hashes, statsHash{name: s.prefix + ":key:" + k, ttl: s.ttl})
	}
	return hashes
}

func routeName(method, path string) string {
	return strings.TrimSpace(strings.TrimSpace(method) + " " + strings.TrimSpace(path))
}

// Record implementa domain.StatsStore. Outcome vazio conta como failed.
func (s *RedisStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}
	outcome := ev.Outcome
	if outcome == "" {
		outcome = domain.OutcomeFailed
	}

	pipe := s.rdb.Pipeline()
	for _, h := range s.hashesFor(ev) {
		pipe.HIncrBy(ctx, h.name, string(outcome), 1)
		if h.ttl > 0 {
			pipe.Expire(ctx, h.name, h.ttl)
		}
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStatsStore) Totals(ctx context.Context) (Counters, error) {
	return s.counters(ctx, s.prefix+":total")
}

func (s *RedisStatsStore) Route(ctx context.Context, method, path string) (Counters, error) {
	return s.counters(ctx, s.prefix+":route:"+routeName(method, path))
}

// Key só tem dados com WithStatsTrackKeys(true).
func (s *RedisStatsStore) Key(ctx context.Context, key domain.Key) (Counters, error) {
	return s.counters(ctx, s.prefix+":key:"+string(key))
}

func (s *RedisStatsStore) counters(ctx context.Context, hash string) (Counters, error) {
	vals, err := s.rdb.HGetAll(ctx, hash).Result()
	if err != nil {
		return Counters{}, err
	}

	var c Counters
	for field, raw := range vals {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Counters{}, fmt.Errorf("decode %s %s: %w", hash, field, err)
		}
		switch domain.Outcome(field) {
		case domain.OutcomeAllowed:
			c.Allowed = n
		case domain.OutcomeRateLimited:
			c.RateLimited = n
		case domain.OutcomeInvalid:
			c.Invalid = n
		case domain.OutcomeFailed:
			c.Failed = n
		}
	}
	return c, nil
}

package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const cacheKeyPrefix = "lookup:"

// CachedSearcher memoises search results in Redis and collapses concurrent
// identical searches into one upstream call. Cache failures fall through to
// the wrapped searcher.
type CachedSearcher struct {
	next   Searcher
	rdb    *redis.Client
	name   string
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
}

// NewCachedSearcher wraps next; name namespaces the cache keys
func NewCachedSearcher(next Searcher, rdb *redis.Client, name string, ttl time.Duration, logger *slog.Logger) *CachedSearcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedSearcher{next: next, rdb: rdb, name: name, ttl: ttl, logger: logger}
}

func (s *CachedSearcher) key(query string, limit int) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	return fmt.Sprintf("%s%s:%d:%s", cacheKeyPrefix, s.name, clampLimit(limit), normalized)
}

func (s *CachedSearcher) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	key := s.key(query, limit)

	if cached, ok := s.load(ctx, key); ok {
		return cached, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		results, err := s.next.Search(ctx, query, limit)
		if err != nil {
			return nil, err
		}
		s.store(ctx, key, results)
		return results, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Result), nil
}

func (s *CachedSearcher) load(ctx context.Context, key string) ([]Result, bool) {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		s.logger.Warn("lookup cache read failed", "key", key, "error", err)
		return nil, false
	}

	var results []Result
	if err := json.Unmarshal(data, &results); err != nil {
		s.logger.Warn("lookup cache entry is corrupt", "key", key, "error", err)
		return nil, false
	}
	return results, true
}

func (s *CachedSearcher) store(ctx context.Context, key string, results []Result) {
	data, err := json.Marshal(results)
	if err != nil {
		s.logger.Warn("failed to encode lookup results", "error", err)
		return
	}
	if err := s.rdb.Set(ctx, key, data, s.ttl).Err(); err != nil {
		s.logger.Warn("lookup cache write failed", "key", key, "error", err)
	}
}

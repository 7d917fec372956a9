package lookup

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSearcher struct {
	calls   atomic.Int32
	results []Result
	err     error
	delay   time.Duration
}

func (s *countingSearcher) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.results, s.err
}

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestCachedSearcher_CachesResults(t *testing.T) {
	rdb, mr := setupTestRedis(t)
	next := &countingSearcher{results: []Result{{ExternalID: "DU/1964/93", Title: "Kodeks cywilny"}}}
	cached := NewCachedSearcher(next, rdb, "isap", time.Hour, nil)

	first, err := cached.Search(context.Background(), "Kodeks  Cywilny", 5)
	require.NoError(t, err)
	second, err := cached.Search(context.Background(), "kodeks cywilny", 5)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), next.calls.Load())
	assert.True(t, mr.Exists("lookup:isap:5:kodeks cywilny"))
	assert.Equal(t, time.Hour, mr.TTL("lookup:isap:5:kodeks cywilny"))
}

func TestCachedSearcher_ExpiredEntryRefetches(t *testing.T) {
	rdb, mr := setupTestRedis(t)
	next := &countingSearcher{results: []Result{{ExternalID: "1"}}}
	cached := NewCachedSearcher(next, rdb, "saos", time.Minute, nil)

	_, err := cached.Search(context.Background(), "najem", 5)
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)
	_, err = cached.Search(context.Background(), "najem", 5)
	require.NoError(t, err)

	assert.Equal(t, int32(2), next.calls.Load())
}

func TestCachedSearcher_ErrorsAreNotCached(t *testing.T) {
	rdb, mr := setupTestRedis(t)
	next := &countingSearcher{err: ErrUnavailable}
	cached := NewCachedSearcher(next, rdb, "saos", time.Minute, nil)

	_, err := cached.Search(context.Background(), "najem", 5)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Empty(t, mr.Keys())
}

func TestCachedSearcher_RedisDownFallsThrough(t *testing.T) {
	rdb, mr := setupTestRedis(t)
	mr.Close()
	next := &countingSearcher{results: []Result{{ExternalID: "1"}}}
	cached := NewCachedSearcher(next, rdb, "saos", time.Minute, nil)

	results, err := cached.Search(context.Background(), "najem", 5)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestCachedSearcher_CollapsesConcurrentMisses(t *testing.T) {
	rdb, _ := setupTestRedis(t)
	next := &countingSearcher{results: []Result{{ExternalID: "1"}}, delay: 50 * time.Millisecond}
	cached := NewCachedSearcher(next, rdb, "saos", time.Minute, nil)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cached.Search(context.Background(), "najem", 5)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), next.calls.Load())
}

func TestCachedSearcher_CorruptEntry(t *testing.T) {
	rdb, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("lookup:saos:5:najem", "not json"))
	next := &countingSearcher{results: []Result{{ExternalID: "1"}}}
	cached := NewCachedSearcher(next, rdb, "saos", time.Minute, nil)

	results, err := cached.Search(context.Background(), "najem", 5)
	require.NoError(t, err)
	assert.Equal(t, "1", results[0].ExternalID)
	assert.False(t, errors.Is(err, ErrUnavailable))
}

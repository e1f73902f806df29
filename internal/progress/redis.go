package progress

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "puzzles:progress:"
	keyTotals  = keyPrefix + "totals"
	keyPlayed  = keyPrefix + "played"
	keySolved  = keyPrefix + "solved"
	fieldTries = "attempts"
	fieldFails = "failures"
	fieldDone  = "solved"
	fieldLast  = "last_played"
)

func entryKey(id string) string { return keyPrefix + "puzzle:" + strings.TrimSpace(id) }

// RedisStore keeps one hash per puzzle plus sets and counters for the totals.
type RedisStore struct {
	rdb *redis.Client
	now func() time.Time
}

func NewRedisStore(ctx context.Context, rawURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisStoreWithClient(rdb), nil
}

func NewRedisStoreWithClient(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, now: time.Now}
}

func (s *RedisStore) Record(ctx context.Context, puzzleID string, solved bool) error {
	id, err := validID(puzzleID)
	if err != nil {
		return err
	}
	key := entryKey(id)
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HIncrBy(ctx, key, fieldTries, 1)
		p.HSet(ctx, key, fieldLast, s.now().Unix())
		p.SAdd(ctx, keyPlayed, id)
		p.HIncrBy(ctx, keyTotals, fieldTries, 1)
		if solved {
			p.HSet(ctx, key, fieldDone, 1)
			p.SAdd(ctx, keySolved, id)
		} else {
			p.HIncrBy(ctx, key, fieldFails, 1)
			p.HIncrBy(ctx, keyTotals, fieldFails, 1)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("record progress %s: %w", id, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, puzzleID string) (Entry, error) {
	m, err := s.rdb.HGetAll(ctx, entryKey(puzzleID)).Result()
	if err != nil {
		return Entry{}, fmt.Errorf("get progress %s: %w", puzzleID, err)
	}
	if len(m) == 0 {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, puzzleID)
	}
	e := Entry{
		PuzzleID: strings.TrimSpace(puzzleID),
		Attempts: atoi(m[fieldTries]),
		Failures: atoi(m[fieldFails]),
		Solved:   m[fieldDone] == "1",
	}
	if ts := atoi(m[fieldLast]); ts > 0 {
		e.LastPlayed = time.Unix(int64(ts), 0).UTC()
	}
	return e, nil
}

func (s *RedisStore) Stats(ctx context.Context) (Stats, error) {
	var (
		played, solved *redis.IntCmd
		totals         *redis.MapStringStringCmd
	)
	_, err := s.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		played = p.SCard(ctx, keyPlayed)
		solved = p.SCard(ctx, keySolved)
		totals = p.HGetAll(ctx, keyTotals)
		return nil
	})
	if err != nil {
		return Stats{}, fmt.Errorf("progress stats: %w", err)
	}
	t := totals.Val()
	return Stats{
		Puzzles:  int(played.Val()),
		Solved:   int(solved.Val()),
		Attempts: atoi(t[fieldTries]),
		Failures: atoi(t[fieldFails]),
	}, nil
}

func (s *RedisStore) Close() error { return s.rdb.Close() }

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

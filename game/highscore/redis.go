package highscore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	rankKey    = "highscores:rank"
	entriesKey = "highscores:entries"

	// enemiesCap keeps the enemy tie-breaker below one second of play time.
	enemiesCap = 999
)

// RedisBoard stores the board in a sorted set ranked by play time, with the
// entries themselves in a hash keyed by session id.
type RedisBoard struct {
	redis *redis.Client
}

// NewRedisBoard creates a board backed by client.
func NewRedisBoard(client *redis.Client) *RedisBoard {
	return &RedisBoard{redis: client}
}

func rankScore(e Entry) float64 {
	enemies := e.EnemiesDefeated
	if enemies > enemiesCap {
		enemies = enemiesCap
	}
	return float64(e.PlayTimeSeconds*1000 - int64(enemies))
}

// Record implements Board.
func (b *RedisBoard) Record(ctx context.Context, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal high score: %w", err)
	}

	_, err = b.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, entriesKey, entry.SessionID, data)
		pipe.ZAdd(ctx, rankKey, redis.Z{Score: rankScore(entry), Member: entry.SessionID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("record high score: %w", err)
	}

	evicted, err := b.redis.ZRange(ctx, rankKey, MaxEntries, -1).Result()
	if err != nil {
		return fmt.Errorf("trim high scores: %w", err)
	}
	if len(evicted) == 0 {
		return nil
	}

	_, err = b.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByRank(ctx, rankKey, MaxEntries, -1)
		pipe.HDel(ctx, entriesKey, evicted...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("trim high scores: %w", err)
	}
	return nil
}

// Top implements Board.
func (b *RedisBoard) Top(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > MaxEntries {
		limit = MaxEntries
	}

	ids, err := b.redis.ZRange(ctx, rankKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read high scores: %w", err)
	}
	if len(ids) == 0 {
		return []Entry{}, nil
	}

	values, err := b.redis.HMGet(ctx, entriesKey, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("read high scores: %w", err)
	}

	entries := make([]Entry, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, fmt.Errorf("decode high score: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

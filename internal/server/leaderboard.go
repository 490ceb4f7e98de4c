package server

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/playperu/handover/internal/handover"
)

// Standing is one archived run on the leaderboard, ranked by average
// reaction time, fastest first.
type Standing struct {
	RunID       string  `json:"runId"`
	Participant string  `json:"participant"`
	Average     float64 `json:"average"`
}

type Leaderboard interface {
	Add(ctx context.Context, group handover.Group, s Standing) error
	Top(ctx context.Context, group handover.Group, limit int) ([]Standing, error)
}

// RedisLeaderboard keeps one sorted set per group, scored by average, with
// participant names in a companion hash.
type RedisLeaderboard struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisLeaderboard(rdb *redis.Client) *RedisLeaderboard {
	return &RedisLeaderboard{rdb: rdb, prefix: "handover:leaderboard:"}
}

func (l *RedisLeaderboard) scoresKey(g handover.Group) string { return l.prefix + string(g) }
func (l *RedisLeaderboard) namesKey(g handover.Group) string  { return l.prefix + string(g) + ":names" }

func (l *RedisLeaderboard) Add(ctx context.Context, group handover.Group, s Standing) error {
	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, l.scoresKey(group), redis.Z{Score: s.Average, Member: s.RunID})
		pipe.HSet(ctx, l.namesKey(group), s.RunID, s.Participant)
		return nil
	})
	if err != nil {
		return fmt.Errorf("adding standing: %w", err)
	}
	return nil
}

func (l *RedisLeaderboard) Top(ctx context.Context, group handover.Group, limit int) ([]Standing, error) {
	zs, err := l.rdb.ZRangeWithScores(ctx, l.scoresKey(group), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading leaderboard: %w", err)
	}

	out := make([]Standing, 0, len(zs))
	if len(zs) == 0 {
		return out, nil
	}

	ids := make([]string, len(zs))
	for i, z := range zs {
		ids[i] = fmt.Sprint(z.Member)
	}
	names, err := l.rdb.HMGet(ctx, l.namesKey(group), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("reading leaderboard names: %w", err)
	}

	for i, z := range zs {
		s := Standing{RunID: ids[i], Average: z.Score}
		if name, ok := names[i].(string); ok {
			s.Participant = name
		}
		out = append(out, s)
	}
	return out, nil
}

// MemoryLeaderboard is the single-process fallback used when Redis is not
// configured. Ties are broken by run ID, as Redis does.
type MemoryLeaderboard struct {
	mu     sync.Mutex
	groups map[handover.Group][]Standing
}

func NewMemoryLeaderboard() *MemoryLeaderboard {
	return &MemoryLeaderboard{groups: make(map[handover.Group][]Standing)}
}

func (l *MemoryLeaderboard) Add(_ context.Context, group handover.Group, s Standing) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	list := slices.DeleteFunc(l.groups[group], func(x Standing) bool { return x.RunID == s.RunID })
	list = append(list, s)
	slices.SortFunc(list, func(a, b Standing) int {
		return cmp.Or(cmp.Compare(a.Average, b.Average), cmp.Compare(a.RunID, b.RunID))
	})
	l.groups[group] = list
	return nil
}

func (l *MemoryLeaderboard) Top(_ context.Context, group handover.Group, limit int) ([]Standing, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	list := l.groups[group]
	return append([]Standing{}, list[:min(limit, len(list))]...), nil
}

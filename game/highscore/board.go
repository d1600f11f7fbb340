// Package highscore keeps the fastest completed dungeon runs.
package highscore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wricardo/dungeon-run-game/game/engine"
)

// MaxEntries is how many runs a board keeps.
const MaxEntries = 20

// Entry is one completed run.
type Entry struct {
	SessionID       string    `json:"sessionId"`
	Difficulty      string    `json:"difficulty"`
	Players         []string  `json:"players"`
	FloorsCleared   int       `json:"floorsCleared"`
	Moves           int       `json:"moves"`
	EnemiesDefeated int       `json:"enemiesDefeated"`
	PlayTimeSeconds int64     `json:"playTimeSeconds"`
	CompletedAt     time.Time `json:"completedAt"`
}

// Board records completed runs and returns the best ones.
type Board interface {
	Record(ctx context.Context, entry Entry) error
	Top(ctx context.Context, limit int) ([]Entry, error)
}

// FromSession builds the entry for a completed session.
func FromSession(s *engine.Session) Entry {
	names := make([]string, 0, len(s.Players))
	for _, p := range s.Players {
		names = append(names, p.Name)
	}
	completed := s.CompletedAt
	if completed.IsZero() {
		completed = time.Now()
	}
	return Entry{
		SessionID:       s.ID,
		Difficulty:      s.Difficulty,
		Players:         names,
		FloorsCleared:   len(s.Dungeon.Floors),
		Moves:           s.Moves,
		EnemiesDefeated: s.EnemiesDefeated,
		PlayTimeSeconds: int64(completed.Sub(s.CreatedAt) / time.Second),
		CompletedAt:     completed,
	}
}

// Less orders runs by play time, then by enemies defeated (more is better),
// then by completion time.
func Less(a, b Entry) bool {
	if a.PlayTimeSeconds != b.PlayTimeSeconds {
		return a.PlayTimeSeconds < b.PlayTimeSeconds
	}
	if a.EnemiesDefeated != b.EnemiesDefeated {
		return a.EnemiesDefeated > b.EnemiesDefeated
	}
	return a.CompletedAt.Before(b.CompletedAt)
}

// MemoryBoard is an in-process Board.
type MemoryBoard struct {
	mu      sync.Mutex
	entries []Entry
}

// NewMemoryBoard creates an empty in-memory board.
func NewMemoryBoard() *MemoryBoard {
	return &MemoryBoard{}
}

// Record implements Board.
func (b *MemoryBoard) Record(_ context.Context, entry Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, e := range b.entries {
		if e.SessionID == entry.SessionID {
			b.entries = append(b.entries[:i], b.entries[i+1:]...)
			break
		}
	}
	b.entries = append(b.entries, entry)
	sort.SliceStable(b.entries, func(i, j int) bool { return Less(b.entries[i], b.entries[j]) })
	if len(b.entries) > MaxEntries {
		b.entries = b.entries[:MaxEntries]
	}
	return nil
}

// Top implements Board.
func (b *MemoryBoard) Top(_ context.Context, limit int) ([]Entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if limit <= 0 || limit > len(b.entries) {
		limit = len(b.entries)
	}
	out := make([]Entry, 0, limit)
	return append(out, b.entries[:limit]...), nil
}

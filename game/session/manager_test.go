package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/dungeon-run-game/game/engine"
)

// tinyCatalog serves one 5x5 single-floor difficulty with nothing but the
// entrance and the boss staircase.
type tinyCatalog struct{}

func (tinyCatalog) Difficulty(key string) (engine.DifficultyDefinition, []engine.FloorRoomRule, error) {
	if key != "tiny" {
		return engine.DifficultyDefinition{}, nil, fmt.Errorf("%w: unknown difficulty %q", engine.ErrInvalidArgument, key)
	}
	return engine.DifficultyDefinition{Key: "tiny", Name: "Tiny", Width: 5, Height: 5, MinFloors: 1, MaxFloors: 1}, nil, nil
}

func createTestManager() *Manager {
	tick := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		tick = tick.Add(time.Second)
		return tick
	}
	return NewManager(engine.NewEngine(tinyCatalog{}, engine.WithClock(clock)))
}

func createTestSession(t *testing.T, m *Manager, opts engine.CreateOptions) *engine.Session {
	t.Helper()
	if opts.OwnerName == "" {
		opts.OwnerName = "Aria"
	}
	opts.Difficulty = "tiny"
	s, err := m.Create(opts)
	require.NoError(t, err)
	return s
}

// openDirection finds a move from the entrance that does not land on the stairs.
func openDirection(s *engine.Session) (string, string) {
	floor := s.Dungeon.Floors[0]
	pairs := [][2]engine.Direction{
		{engine.North, engine.South}, {engine.South, engine.North},
		{engine.East, engine.West}, {engine.West, engine.East},
	}
	for _, p := range pairs {
		if p[0].Step(floor.Start) != floor.Stairs {
			return string(p[0]), string(p[1])
		}
	}
	return "", ""
}

func intPtr(n int) *int    { return &n }
func boolPtr(b bool) *bool { return &b }

func TestManager_Create(t *testing.T) {
	m := createTestManager()

	t.Run("defaults", func(t *testing.T) {
		s := createTestSession(t, m, engine.CreateOptions{})
		assert.Equal(t, engine.StatusWaiting, s.Status)
		assert.Equal(t, engine.DefaultMaxPlayers, s.MaxPlayers)
		assert.Equal(t, 1, m.Count())
	})

	invalid := []struct {
		name string
		opts engine.CreateOptions
	}{
		{"zero players", engine.CreateOptions{MaxPlayers: intPtr(0)}},
		{"too many players", engine.CreateOptions{MaxPlayers: intPtr(MaxPlayersLimit + 1)}},
		{"short password", engine.CreateOptions{Password: "abc"}},
		{"long password", engine.CreateOptions{Password: strings.Repeat("x", engine.MaxPasswordLength+1)}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.OwnerName = "Aria"
			tt.opts.Difficulty = "tiny"
			_, err := m.Create(tt.opts)
			assert.ErrorIs(t, err, engine.ErrInvalidArgument)
		})
	}

	t.Run("unknown difficulty", func(t *testing.T) {
		_, err := m.Create(engine.CreateOptions{OwnerName: "Aria", Difficulty: "legendary"})
		assert.ErrorIs(t, err, engine.ErrInvalidArgument)
	})

	assert.Equal(t, 1, m.Count())
}

func TestManager_ReturnsCopies(t *testing.T) {
	m := createTestManager()
	s := createTestSession(t, m, engine.CreateOptions{})

	s.Players[0].Name = "Mallory"
	s.Dungeon.Floors[0].Rooms[0][0].Kind = engine.RoomExit
	s.Log = append(s.Log, "forged")

	stored, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Aria", stored.Players[0].Name)
	assert.NotEqual(t, engine.RoomExit, stored.Dungeon.Floors[0].Rooms[0][0].Kind)
	assert.NotContains(t, stored.Log, "forged")
}

func TestManager_Get(t *testing.T) {
	m := createTestManager()
	s := createTestSession(t, m, engine.CreateOptions{})

	got, err := m.Get(strings.ToUpper(s.ID))
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)

	_, err = m.Get("non-existent")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, err, engine.ErrNotFound)
}

func TestManager_Join(t *testing.T) {
	t.Run("joins", func(t *testing.T) {
		m := createTestManager()
		s := createTestSession(t, m, engine.CreateOptions{})

		player, state, err := m.Join(s.ID, "Bo", "")
		require.NoError(t, err)
		assert.Equal(t, "Bo", player.Name)
		assert.Len(t, state.Players, 2)
		assert.Equal(t, []string{s.OwnerID, player.ID}, state.TurnOrder)
	})

	t.Run("password", func(t *testing.T) {
		m := createTestManager()
		s := createTestSession(t, m, engine.CreateOptions{Password: "open-sesame"})

		_, _, err := m.Join(s.ID, "Bo", "wrong")
		assert.ErrorIs(t, err, ErrWrongPassword)
		assert.ErrorIs(t, err, engine.ErrForbidden)

		_, _, err = m.Join(s.ID, "Bo", "open-sesame")
		assert.NoError(t, err)
	})

	t.Run("full", func(t *testing.T) {
		m := createTestManager()
		s := createTestSession(t, m, engine.CreateOptions{MaxPlayers: intPtr(2)})

		_, _, err := m.Join(s.ID, "Bo", "")
		require.NoError(t, err)
		_, _, err = m.Join(s.ID, "Cy", "")
		assert.ErrorIs(t, err, ErrSessionFull)

		state, _ := m.Get(s.ID)
		assert.Len(t, state.Players, 2)
	})

	t.Run("mid-game closed", func(t *testing.T) {
		m := createTestManager()
		s := createTestSession(t, m, engine.CreateOptions{AllowJoinMidgame: boolPtr(false)})

		_, _, err := m.Join(s.ID, "Bo", "")
		require.NoError(t, err, "joining before the first move is allowed")

		out, _ := openDirection(s)
		_, err = m.Move(s.ID, s.OwnerID, out)
		require.NoError(t, err)

		_, _, err = m.Join(s.ID, "Cy", "")
		assert.ErrorIs(t, err, ErrJoinClosed)
	})

	t.Run("mid-game open", func(t *testing.T) {
		m := createTestManager()
		s := createTestSession(t, m, engine.CreateOptions{})
		out, _ := openDirection(s)
		_, err := m.Move(s.ID, s.OwnerID, out)
		require.NoError(t, err)

		_, _, err = m.Join(s.ID, "Cy", "")
		assert.NoError(t, err)
	})

	t.Run("completed", func(t *testing.T) {
		m := createTestManager()
		s := createTestSession(t, m, engine.CreateOptions{})
		m.sessions[strings.ToLower(s.ID)].session.Status = engine.StatusCompleted

		_, _, err := m.Join(s.ID, "Bo", "")
		assert.ErrorIs(t, err, engine.ErrForbidden)
	})

	t.Run("unknown session", func(t *testing.T) {
		m := createTestManager()
		_, _, err := m.Join("nope", "Bo", "")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestManager_Move(t *testing.T) {
	m := createTestManager()
	s := createTestSession(t, m, engine.CreateOptions{})
	bo, _, err := m.Join(s.ID, "Bo", "")
	require.NoError(t, err)

	_, err = m.Move(s.ID, bo.ID, "north")
	assert.ErrorIs(t, err, engine.ErrConflict)

	out, _ := openDirection(s)
	outcome, err := m.Move(s.ID, s.OwnerID, out)
	require.NoError(t, err)
	assert.Equal(t, engine.StatusInProgress, outcome.Session.Status)
	assert.Equal(t, 3, outcome.Session.Version)
	assert.Equal(t, 1, outcome.Session.TurnIndex)
	assert.True(t, outcome.Room.Discovered)
	require.NotEmpty(t, outcome.Events)
	assert.True(t, strings.HasPrefix(outcome.Events[0], "Aria moved "+out))

	_, err = m.Move("nope", s.OwnerID, out)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_ListNewestFirst(t *testing.T) {
	m := createTestManager()
	first := createTestSession(t, m, engine.CreateOptions{OwnerName: "First"})
	second := createTestSession(t, m, engine.CreateOptions{OwnerName: "Second", Password: "hunter22"})
	third := createTestSession(t, m, engine.CreateOptions{OwnerName: "Third", MaxPlayers: intPtr(3)})

	list := m.List()
	require.Len(t, list, 3)
	assert.Equal(t, []string{third.ID, second.ID, first.ID},
		[]string{list[0].SessionID, list[1].SessionID, list[2].SessionID})

	assert.Equal(t, "Second", list[1].OwnerName)
	assert.True(t, list[1].PasswordProtected)
	assert.False(t, list[0].PasswordProtected)
	assert.Equal(t, 3, list[0].MaxPlayers)
	assert.Equal(t, 1, list[0].PlayerCount)
	assert.Equal(t, "tiny", list[0].Difficulty)
	assert.False(t, list[0].LastAccessedAt.IsZero())
}

func TestManager_Delete(t *testing.T) {
	m := createTestManager()
	s := createTestSession(t, m, engine.CreateOptions{})

	require.NoError(t, m.Delete(strings.ToUpper(s.ID)))
	_, err := m.Get(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.Delete(s.ID), ErrSessionNotFound)
}

func TestManager_CleanupExpired(t *testing.T) {
	m := createTestManager()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	expired := createTestSession(t, m, engine.CreateOptions{})
	now = now.Add(2 * time.Hour)
	active := createTestSession(t, m, engine.CreateOptions{})

	assert.Equal(t, 1, m.CleanupExpiredSessions(time.Hour))

	_, err := m.Get(expired.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.Get(active.ID)
	assert.NoError(t, err)
}

func TestManager_ConcurrentMovesKeepTurnOrder(t *testing.T) {
	m := createTestManager()
	s := createTestSession(t, m, engine.CreateOptions{})

	ids := []string{s.OwnerID}
	for _, name := range []string{"Bo", "Cy", "Di"} {
		p, _, err := m.Join(s.ID, name, "")
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}
	out, back := openDirection(s)

	const movesEach = 5
	var wg sync.WaitGroup
	errs := make(chan error, len(ids))
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for done := 0; done < movesEach; {
				dir := out
				if done%2 == 1 {
					dir = back
				}
				_, err := m.Move(s.ID, id, dir)
				switch {
				case err == nil:
					done++
				case errors.Is(err, engine.ErrConflict):
					time.Sleep(time.Microsecond)
				default:
					errs <- err
					return
				}
			}
		}(id)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("unexpected move error: %v", err)
	}

	final, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Equal(t, 1+3+len(ids)*movesEach, final.Version)
	assert.Equal(t, 0, final.TurnIndex)
	assert.Equal(t, len(ids)*movesEach, final.Moves)
}

func TestManager_ConcurrentCreate(t *testing.T) {
	m := createTestManager()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Create(engine.CreateOptions{OwnerName: "Aria", Difficulty: "tiny"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, m.Count())
	assert.Len(t, m.List(), 50)
}

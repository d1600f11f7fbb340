package session

import (
	"crypto/subtle"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/dungeon-run-game/game/engine"
)

var (
	ErrSessionNotFound      = fmt.Errorf("%w: session not found", engine.ErrNotFound)
	ErrSessionAlreadyExists = fmt.Errorf("%w: session already exists", engine.ErrConflict)
	ErrSessionFull          = fmt.Errorf("%w: session is full", engine.ErrForbidden)
	ErrWrongPassword        = fmt.Errorf("%w: incorrect session password", engine.ErrForbidden)
	ErrJoinClosed           = fmt.Errorf("%w: this run does not accept new players", engine.ErrForbidden)
)

// MaxPlayersLimit caps the size of a party.
const MaxPlayersLimit = 10

// Summary is the lobby view of a session.
type Summary struct {
	SessionID         string               `json:"sessionId"`
	OwnerName         string               `json:"ownerName"`
	Difficulty        string               `json:"difficulty"`
	Status            engine.SessionStatus `json:"status"`
	AllowJoinMidgame  bool                 `json:"allowJoinMidgame"`
	PlayerCount       int                  `json:"playerCount"`
	MaxPlayers        int                  `json:"maxPlayers"`
	PasswordProtected bool                 `json:"passwordProtected"`
	CreatedAt         time.Time            `json:"createdAt"`
	LastAccessedAt    time.Time            `json:"lastAccessedAt"`
}

type entry struct {
	mu             sync.Mutex
	session        *engine.Session
	lastAccessedAt time.Time
}

// Manager handles game session lifecycle. The map is guarded by mu; each
// session is guarded by its entry's mutex, so moves in one session never wait
// on another. Callers only ever receive deep copies.
type Manager struct {
	engine   engine.Engine
	sessions map[string]*entry
	mu       sync.RWMutex
	now      func() time.Time
}

// NewManager creates a new session manager
func NewManager(eng engine.Engine) *Manager {
	return &Manager{
		engine:   eng,
		sessions: make(map[string]*entry),
		now:      time.Now,
	}
}

// Create validates lobby policy and starts a new run.
func (m *Manager) Create(opts engine.CreateOptions) (*engine.Session, error) {
	if opts.MaxPlayers != nil && (*opts.MaxPlayers < 1 || *opts.MaxPlayers > MaxPlayersLimit) {
		return nil, fmt.Errorf("%w: maxPlayers must be between 1 and %d", engine.ErrInvalidArgument, MaxPlayersLimit)
	}
	if opts.Password != "" && (len(opts.Password) < engine.MinPasswordLength || len(opts.Password) > engine.MaxPasswordLength) {
		return nil, fmt.Errorf("%w: password must be %d-%d characters",
			engine.ErrInvalidArgument, engine.MinPasswordLength, engine.MaxPasswordLength)
	}

	session, err := m.engine.CreateSession(opts)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(session.ID)
	if _, exists := m.sessions[key]; exists {
		return nil, ErrSessionAlreadyExists
	}
	m.sessions[key] = &entry{session: session, lastAccessedAt: m.now()}

	log.Printf("[SESSION] created %s (%s) for %s", session.ID, session.Difficulty, session.OwnerName)
	return session.Clone(), nil
}

// Join adds a player after checking status, password and capacity.
func (m *Manager) Join(id, playerName, password string) (*engine.Player, *engine.Session, error) {
	e, err := m.lookup(id)
	if err != nil {
		return nil, nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.session
	switch {
	case s.Status == engine.StatusCompleted:
		return nil, nil, fmt.Errorf("%w: the run is already complete", ErrJoinClosed)
	case s.Status == engine.StatusInProgress && !s.AllowJoinMidgame:
		return nil, nil, ErrJoinClosed
	case s.Password != "" && subtle.ConstantTimeCompare([]byte(s.Password), []byte(password)) != 1:
		return nil, nil, ErrWrongPassword
	case len(s.Players) >= s.MaxPlayers:
		return nil, nil, ErrSessionFull
	}

	player, err := m.engine.JoinSession(s, playerName)
	if err != nil {
		return nil, nil, err
	}
	e.lastAccessedAt = m.now()

	log.Printf("[SESSION] %s joined %s (%d/%d)", player.Name, s.ID, len(s.Players), s.MaxPlayers)
	return player.Clone(), s.Clone(), nil
}

// Move runs one turn under the session's lock.
func (m *Manager) Move(id, playerID, direction string) (*engine.MoveOutcome, error) {
	e, err := m.lookup(id)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	outcome, err := m.engine.Move(e.session, playerID, direction)
	if err != nil {
		return nil, err
	}
	e.session.AppendLog()
	e.lastAccessedAt = m.now()

	return &engine.MoveOutcome{
		Session: e.session.Clone(),
		Room:    outcome.Room.Clone(),
		Events:  append([]string(nil), outcome.Events...),
	}, nil
}

// Get returns a snapshot of the session.
func (m *Manager) Get(id string) (*engine.Session, error) {
	e, err := m.lookup(id)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Clone(), nil
}

// List returns lobby summaries, newest first.
func (m *Manager) List() []Summary {
	m.mu.RLock()
	entries := make([]*entry, 0, len(m.sessions))
	for _, e := range m.sessions {
		entries = append(entries, e)
	}
	m.mu.RUnlock()

	result := make([]Summary, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		summary := Summarize(e.session)
		summary.LastAccessedAt = e.lastAccessedAt
		e.mu.Unlock()
		result = append(result, summary)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].SessionID < result[j].SessionID
	})
	return result
}

// Summarize builds the lobby listing record for a session. The password
// itself never leaves the store.
func Summarize(s *engine.Session) Summary {
	return Summary{
		SessionID:         s.ID,
		OwnerName:         s.OwnerName,
		Difficulty:        s.Difficulty,
		Status:            s.Status,
		AllowJoinMidgame:  s.AllowJoinMidgame,
		PlayerCount:       len(s.Players),
		MaxPlayers:        s.MaxPlayers,
		PasswordProtected: s.Password != "",
		CreatedAt:         s.CreatedAt,
	}
}

// Delete removes a session
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(id)
	if _, exists := m.sessions[key]; !exists {
		return ErrSessionNotFound
	}
	delete(m.sessions, key)
	return nil
}

// CleanupExpiredSessions removes sessions that haven't been accessed in the given duration
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-maxAge)
	removed := 0

	for id, e := range m.sessions {
		e.mu.Lock()
		expired := e.lastAccessedAt.Before(cutoff)
		e.mu.Unlock()
		if expired {
			delete(m.sessions, id)
			removed++
		}
	}

	if removed > 0 {
		log.Printf("[SESSION] cleaned up %d expired sessions", removed)
	}
	return removed
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) lookup(id string) (*entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return e, nil
}

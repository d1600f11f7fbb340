package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wricardo/dungeon-run-game/game/config"
	"github.com/wricardo/dungeon-run-game/game/engine"
	"github.com/wricardo/dungeon-run-game/game/highscore"
	"github.com/wricardo/dungeon-run-game/game/session"
	"github.com/wricardo/dungeon-run-game/telemetry"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	scores   highscore.Board
	tracer   trace.Tracer
}

// Option configures the game service.
type Option func(*gameServiceImpl)

// WithHighScores sets the board completed runs are recorded on.
func WithHighScores(board highscore.Board) Option {
	return func(s *gameServiceImpl) { s.scores = board }
}

// WithTracer overrides the tracer used for service spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *gameServiceImpl) { s.tracer = tracer }
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		scores:   highscore.NewMemoryBoard(),
		tracer:   telemetry.Tracer("service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession creates a new run owned by the requesting player
func (s *gameServiceImpl) CreateSession(ctx context.Context, req CreateSessionRequest) (*CreateSessionResult, error) {
	_, span := s.tracer.Start(ctx, "service.CreateSession", trace.WithAttributes(
		attribute.String("session.difficulty", req.Difficulty),
		attribute.Bool("session.password_protected", req.Password != ""),
	))
	defer span.End()

	created, err := s.sessions.Create(engine.CreateOptions{
		OwnerName:        req.OwnerName,
		Difficulty:       req.Difficulty,
		AllowJoinMidgame: req.AllowJoinMidgame,
		Password:         req.Password,
		MaxPlayers:       req.MaxPlayers,
	})
	if err != nil {
		// Point the caller at the valid keys
		if errors.Is(err, config.ErrDifficultyNotFound) {
			err = fmt.Errorf("%w. Available difficulties: %s", err, strings.Join(s.difficultyKeys(), ", "))
		}
		return nil, recordError(span, err)
	}

	span.SetAttributes(attribute.String("session.id", created.ID))
	return &CreateSessionResult{
		SessionID:     created.ID,
		OwnerPlayerID: created.OwnerID,
		Session:       NewSessionState(created),
	}, nil
}

// JoinSession adds a player to an existing run
func (s *gameServiceImpl) JoinSession(ctx context.Context, sessionID string, req JoinSessionRequest) (*JoinSessionResult, error) {
	_, span := s.tracer.Start(ctx, "service.JoinSession", trace.WithAttributes(
		attribute.String("session.id", sessionID),
	))
	defer span.End()

	player, joined, err := s.sessions.Join(sessionID, req.PlayerName, req.Password)
	if err != nil {
		return nil, recordError(span, err)
	}

	span.SetAttributes(attribute.String("player.id", player.ID))
	return &JoinSessionResult{
		PlayerID: player.ID,
		Session:  NewSessionState(joined),
	}, nil
}

// GetSession retrieves the serialized session state
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionState, error) {
	_, span := s.tracer.Start(ctx, "service.GetSession", trace.WithAttributes(
		attribute.String("session.id", sessionID),
	))
	defer span.End()

	snapshot, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, recordError(span, err)
	}
	return NewSessionState(snapshot), nil
}

// ListSessions returns the lobby
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]session.Summary, error) {
	return s.sessions.List(), nil
}

// DeleteSession removes a run
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	log.Printf("[SESSION] deleted %s", sessionID)
	return nil
}

// Move advances the current player one room
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, playerID, direction string) (*MoveResult, error) {
	ctx, span := s.tracer.Start(ctx, "service.Move", trace.WithAttributes(
		attribute.String("session.id", sessionID),
		attribute.String("player.id", playerID),
		attribute.String("move.direction", direction),
	))
	defer span.End()

	outcome, err := s.sessions.Move(sessionID, playerID, direction)
	if err != nil {
		return nil, recordError(span, err)
	}

	span.SetAttributes(
		attribute.Int("session.version", outcome.Session.Version),
		attribute.Int("move.events", len(outcome.Events)),
		attribute.String("room.kind", string(outcome.Room.Kind)),
	)

	// Moves on a completed run are rejected, so this is the completing move
	if outcome.Session.Status == engine.StatusCompleted {
		s.recordCompletion(ctx, outcome.Session)
	}

	return &MoveResult{
		Events:  outcome.Events,
		Room:    NewRoomState(outcome.Room),
		Session: NewSessionState(outcome.Session),
	}, nil
}

// ListDifficulties returns the difficulty catalog
func (s *gameServiceImpl) ListDifficulties(ctx context.Context) ([]engine.DifficultyDefinition, error) {
	return s.configs.List(), nil
}

// HighScores returns the best completed runs
func (s *gameServiceImpl) HighScores(ctx context.Context, limit int) ([]highscore.Entry, error) {
	if limit <= 0 || limit > highscore.MaxEntries {
		limit = highscore.MaxEntries
	}
	entries, err := s.scores.Top(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load high scores: %w", err)
	}
	return entries, nil
}

func (s *gameServiceImpl) recordCompletion(ctx context.Context, completed *engine.Session) {
	entry := highscore.FromSession(completed)
	if err := s.scores.Record(ctx, entry); err != nil {
		log.Printf("[HIGHSCORE] warning: failed to record run %s: %v", completed.ID, err)
		return
	}
	log.Printf("[HIGHSCORE] recorded run %s: %ds, %d moves, %d enemies",
		entry.SessionID, entry.PlayTimeSeconds, entry.Moves, entry.EnemiesDefeated)
}

func (s *gameServiceImpl) difficultyKeys() []string {
	defs := s.configs.List()
	keys := make([]string, 0, len(defs))
	for _, def := range defs {
		keys = append(keys, def.Key)
	}
	return keys
}

func recordError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

package service

import (
	"context"

	"github.com/wricardo/dungeon-run-game/game/engine"
	"github.com/wricardo/dungeon-run-game/game/highscore"
	"github.com/wricardo/dungeon-run-game/game/session"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, req CreateSessionRequest) (*CreateSessionResult, error)
	JoinSession(ctx context.Context, sessionID string, req JoinSessionRequest) (*JoinSessionResult, error)
	GetSession(ctx context.Context, sessionID string) (*SessionState, error)
	ListSessions(ctx context.Context) ([]session.Summary, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Move(ctx context.Context, sessionID, playerID, direction string) (*MoveResult, error)

	// Catalog and records
	ListDifficulties(ctx context.Context) ([]engine.DifficultyDefinition, error)
	HighScores(ctx context.Context, limit int) ([]highscore.Entry, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(opts engine.CreateOptions) (*engine.Session, error)
	Join(id, playerName, password string) (*engine.Player, *engine.Session, error)
	Move(id, playerID, direction string) (*engine.MoveOutcome, error)
	Get(id string) (*engine.Session, error)
	List() []session.Summary
	Delete(id string) error
}

// ConfigManager lists the difficulty catalog
type ConfigManager interface {
	List() []engine.DifficultyDefinition
}

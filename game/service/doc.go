// Package service provides the business logic layer for the dungeon run game.
//
// The service package implements:
//   - Lobby operations: create, join, list and delete runs
//   - Turn processing on top of the session manager
//   - Serialization of sessions into the client-facing SessionState
//   - High score recording when a run completes
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager is the session store the service drives (see game/session).
// ConfigManager lists the difficulty catalog (see game/config).
//
// Architecture:
//
// The service layer sits between the transports (HTTP and MCP) and the
// session manager. Every call returns freshly serialized state; nothing a
// caller receives aliases the stored session. Each operation opens an
// OpenTelemetry span named service.<Operation>.
//
// Usage:
//
//	configs, _ := config.NewManager("")
//	sessions := session.NewManager(engine.NewEngine(configs))
//	svc := service.NewGameService(sessions, configs)
//
//	created, err := svc.CreateSession(ctx, service.CreateSessionRequest{
//		OwnerName:  "Aria",
//		Difficulty: "easy",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := svc.Move(ctx, created.SessionID, created.OwnerPlayerID, "north")
//
// Errors returned by the service wrap the engine sentinels (ErrNotFound,
// ErrConflict, ErrInvalidArgument, ErrLocked, ErrForbidden) so transports can
// map them with errors.Is.
package service

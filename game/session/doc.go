// Package session provides the session store for the Dungeon Run game.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Lobby policy: party size, passwords and mid-game joins
//   - Per-session serialization of joins and moves
//   - Lobby summaries and idle session cleanup
//
// Concurrency:
//
// The manager map has its own lock and every session has another. Joins and
// moves on one session run one at a time, which keeps the turn order and the
// version counter consistent; different sessions never block each other.
// Everything the manager returns is a deep copy, so callers can read it
// without holding any lock.
//
// Usage:
//
//	manager := session.NewManager(engine.NewEngine(catalog))
//
//	s, err := manager.Create(engine.CreateOptions{OwnerName: "Aria", Difficulty: "easy"})
//	player, s, err := manager.Join(s.ID, "Bo", "")
//	outcome, err := manager.Move(s.ID, s.OwnerID, "north")
package session

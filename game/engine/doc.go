// Package engine provides the core game logic for the Dungeon Run game.
//
// The engine package implements the game mechanics including:
//   - Difficulty presets and per-floor room placement rules
//   - Seeded, reproducible dungeon generation
//   - Deterministic combat, loot and trap resolution
//   - Strict round-robin turn taking for every session
//
// Core Types:
//
// The Engine interface defines the session operations, implemented by
// GameEngine. A Session holds the players, the turn order and the generated
// Dungeon; Catalog resolves a difficulty key to its definition and rules.
//
// Usage:
//
//	eng := engine.NewEngine(engine.NewDefaultCatalog())
//
//	session, err := eng.CreateSession(engine.CreateOptions{OwnerName: "Aria", Difficulty: "easy"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	outcome, err := eng.Move(session, session.OwnerID, "north")
//	if errors.Is(err, engine.ErrLocked) {
//		// find a key first
//	}
//
// Game Rules:
//
// Players take turns walking a grid-based dungeon. Monsters and the boss are
// fought automatically on entry, item rooms hand over their loot and locked
// doors open for anyone carrying a quest item. Clearing a floor's staircase
// takes the mover down a level; clearing the last one completes the run.
//
// The engine holds no locks. Callers serialize access per session.
package engine

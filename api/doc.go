// Package api provides HTTP REST API handlers for the dungeon run game.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a new run
//   - GET /api/sessions - Lobby listing (optional ?status= and ?limit=)
//   - GET /api/sessions/{id} - Full serialized session state
//   - DELETE /api/sessions/{id} - Remove a run
//   - POST /api/sessions/{id}/join - Join a run
//
// Game Operations:
//   - POST /api/sessions/{id}/actions/move - Move the current player one room
//
// Catalog:
//   - GET /api/difficulties - Difficulty presets and overrides in display order
//   - GET /api/highscores - Fastest completed runs (optional ?limit=)
//   - GET /api/health - Liveness probe
//
// Request/Response Format:
//
// All endpoints accept and return JSON with camelCase keys:
//
//	POST /api/sessions
//	{"ownerName": "Aria", "difficulty": "easy", "password": "sesame", "maxPlayers": 4}
//
//	POST /api/sessions/{id}/join
//	{"playerName": "Bram", "password": "sesame"}
//
//	POST /api/sessions/{id}/actions/move
//	{"playerId": "...", "direction": "north"}
//
// The move response carries the ordered event lines, the entered room and
// the updated session.
//
// Error Handling:
//
// Errors are returned as {"error": "message"} with a status derived from the
// engine error taxonomy:
//
//	not found         404
//	conflict          409 (not your turn, run already complete)
//	invalid argument  400 (bad direction, off the grid, bad request)
//	locked            423 (locked room and no key)
//	forbidden         403 (wrong password, run full, joining closed)
package api

// Package mcp provides a Model Context Protocol server for the dungeon run game.
//
// The server is a thin client: every tool call is proxied to the REST API
// (see package api) and the JSON response is rendered as text for AI agents.
//
// MCP Tools:
//   - create_session: Start a run; returns the session id and owner player id
//   - join_session: Join a run with an optional password
//   - move: Move one room on your turn (north/south/east/west)
//   - get_session: Floor map, party, turn and recent log
//   - list_sessions: Lobby listing
//   - list_difficulties: Difficulty catalog
//   - high_scores: Fastest completed runs
//   - game_instructions: Rules and map legend
//
// Transport Modes:
//   - Stdio: the "mcp" command serves GetMCPServer() over stdin/stdout
//   - HTTP: the "serve" command routes POST /mcp to HandleMessage
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
package mcp

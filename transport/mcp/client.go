package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/dungeon-run-game/game/engine"
	"github.com/wricardo/dungeon-run-game/game/highscore"
	"github.com/wricardo/dungeon-run-game/game/service"
	"github.com/wricardo/dungeon-run-game/game/session"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Dungeon Run",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Dungeon Run - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Lead your party down every floor of a procedurally generated dungeon. Players
take strict turns; each move enters one adjacent room and resolves whatever is
inside (fights, loot, traps, locked doors). Clear the staircase of the last
floor to complete the run.

AVAILABLE TOOLS:
- create_session: Start a new run (you become the owner and first player)
- join_session: Join an existing run
- move: Move one room north/south/east/west on your turn
- get_session: Show the current floor map, party and recent log
- list_sessions: Lobby listing
- list_difficulties: Difficulty presets
- high_scores: Fastest completed runs
- game_instructions: Full rules and map legend`),
	)

	c.registerTools()
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new dungeon run. The caller becomes its owner and first player.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"owner_name": stringProp("Your player name"),
				"difficulty": stringProp("Difficulty key (easy, medium, hard, crazy_catto). Defaults to easy"),
				"password":   stringProp("Optional join password (4-50 characters)"),
				"max_players": map[string]interface{}{
					"type":        "number",
					"description": "Party size limit (1-10, default 6)",
				},
				"allow_join_midgame": map[string]interface{}{
					"type":        "boolean",
					"description": "Whether players may join after the first move (default true)",
				},
			},
			Required: []string{"owner_name"},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "join_session",
		Description: "Join an existing run. Returns your player id.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id":  stringProp("Session ID to join"),
				"player_name": stringProp("Your player name"),
				"password":    stringProp("Session password, if it has one"),
			},
			Required: []string{"session_id", "player_name"},
		},
	}, c.handleJoinSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List active runs, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Show a run: the current floor map, the party, whose turn it is and the recent log",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": stringProp("Session ID to retrieve"),
				"player_id":  stringProp("Your player id; marks you as @ on the map (optional)"),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move your player one room. Only the player whose turn it is may move.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": stringProp("Session ID"),
				"player_id":  stringProp("Your player id"),
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"north", "south", "east", "west"},
					"description": "Direction to move",
				},
				"intent": stringProp("Brief explanation of the intent behind this move"),
			},
			Required: []string{"session_id", "player_id", "direction"},
		},
	}, c.handleMove)

	// Catalog and records
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_difficulties",
		Description: "List difficulty presets with grid size, floor range and basement odds",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListDifficulties)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "high_scores",
		Description: "List the fastest completed runs",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "How many entries to return (default 20)",
				},
			},
		},
	}, c.handleHighScores)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the complete rules and map legend",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// apiCall makes an HTTP call to the REST API
func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func sessionPath(sessionID string, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ownerName, err := request.RequireString("owner_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := service.CreateSessionRequest{
		OwnerName:  ownerName,
		Difficulty: request.GetString("difficulty", ""),
		Password:   request.GetString("password", ""),
	}
	args := request.GetArguments()
	if n, ok := args["max_players"].(float64); ok {
		maxPlayers := int(n)
		body.MaxPlayers = &maxPlayers
	}
	if allow, ok := args["allow_join_midgame"].(bool); ok {
		body.AllowJoinMidgame = &allow
	}

	var created service.CreateSessionResult
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &created); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Created session: %s\n", created.SessionID)
	fmt.Fprintf(&result, "Your player id: %s\n", created.OwnerPlayerID)
	fmt.Fprintf(&result, "Difficulty: %s\n\n", created.Session.Difficulty)
	result.WriteString(formatSessionState(created.Session, created.OwnerPlayerID))
	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleJoinSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	playerName, err := request.RequireString("player_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := service.JoinSessionRequest{
		PlayerName: playerName,
		Password:   request.GetString("password", ""),
	}

	var joined service.JoinSessionResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/join"), body, &joined); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Joined session %s\nYour player id: %s\n\n%s",
		joined.Session.ID, joined.PlayerID, formatSessionState(joined.Session, joined.PlayerID))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var resp struct {
		Count    int               `json:"count"`
		Sessions []session.Summary `json:"sessions"`
	}
	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(resp.Sessions) == 0 {
		return mcp.NewToolResultText("No active sessions"), nil
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Active sessions (%d):\n", resp.Count)
	for _, s := range resp.Sessions {
		lock := ""
		if s.PasswordProtected {
			lock = " [password]"
		}
		fmt.Fprintf(&result, "- %s: %s's %s run, %s, %d/%d players%s\n",
			s.SessionID, s.OwnerName, s.Difficulty, s.Status, s.PlayerCount, s.MaxPlayers, lock)
	}
	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state service.SessionState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionState(&state, request.GetString("player_id", ""))), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	playerID, err := request.RequireString("player_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	direction, err := request.RequireString("direction")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]string{
		"playerId":  playerID,
		"direction": direction,
	}

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/actions/move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result, playerID)), nil
}

func (c *Client) handleListDifficulties(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var resp struct {
		Difficulties []engine.DifficultyDefinition `json:"difficulties"`
	}
	if err := c.apiCall(ctx, "GET", "/api/difficulties", nil, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	result.WriteString("Difficulties:\n")
	for _, d := range resp.Difficulties {
		fmt.Fprintf(&result, "- %s (%s): %dx%d grid, %d-%d floors, basement chance %.0f%%\n",
			d.Key, d.Name, d.Width, d.Height, d.MinFloors, d.MaxFloors, d.BasementChance*100)
	}
	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleHighScores(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := "/api/highscores"
	if n, ok := request.GetArguments()["limit"].(float64); ok && n >= 1 {
		path = fmt.Sprintf("%s?limit=%d", path, int(n))
	}

	var resp struct {
		HighScores []highscore.Entry `json:"highScores"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHighScores(resp.HighScores)), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(gameInstructions), nil
}

const gameInstructions = `Dungeon Run - Complete Instructions

GAME OBJECTIVE:
Descend through every floor of the dungeon. Each floor is a grid of rooms with
an entrance and a staircase down. The last main floor's staircase is guarded by
a boss. Clearing the staircase of the final floor completes the run for the
whole party.

TURNS:
Players move in strict join order. A move by anyone else is rejected with
"not your turn". Idle players are never skipped.

MOVEMENT COMMANDS:
north (y-1), south (y+1), east (x+1), west (x-1). Moves off the grid are
rejected and cost nothing.

MAP LEGEND:
@ you (or the player whose turn it is)   P another player
? undiscovered   . empty or cleared room   E entrance
> staircase down   B boss   M monster   I treasure
L locked door   T trap   S shop   ~ illusion

ROOMS:
- Monsters fight automatically when you enter. A fight you cannot finish
  leaves the enemy wounded for the next attempt.
- Treasure is collected once the room has no living enemy.
- Traps fire once and deal damage.
- Locked doors need a quest item such as a key. Every floor with locked doors
  has a key reachable without passing through one.
- A staircase without a guardian clears when entered and takes you down.

VICTORY CONDITIONS:
Reach and clear the staircase of the last floor.

Good luck in the depths!`

// Formatters

func roomChar(room service.RoomState) string {
	if !room.Discovered {
		return "?"
	}
	switch room.Kind {
	case engine.RoomEntrance:
		return "E"
	case engine.RoomStaircaseDown, engine.RoomExit:
		return ">"
	case engine.RoomStaircaseUp:
		return "<"
	case engine.RoomBoss:
		if room.Cleared {
			return ">"
		}
		return "B"
	case engine.RoomLocked:
		return "L"
	case engine.RoomShop:
		return "S"
	case engine.RoomIllusion:
		return "~"
	case engine.RoomMonster:
		if !room.Cleared {
			return "M"
		}
	case engine.RoomItem:
		if !room.Cleared {
			return "I"
		}
	case engine.RoomTrap:
		if !room.Cleared {
			return "T"
		}
	}
	return "."
}

// formatFloorMap renders one floor. viewerID marks that player with @.
func formatFloorMap(state *service.SessionState, floorIndex int, viewerID string) string {
	if floorIndex < 0 || floorIndex >= len(state.Dungeon.Floors) {
		return ""
	}
	floor := state.Dungeon.Floors[floorIndex]

	occupants := make(map[engine.Position]string)
	for _, p := range state.Players {
		if p.Floor != floorIndex {
			continue
		}
		if p.ID == viewerID {
			occupants[p.Position] = "@"
		} else if _, taken := occupants[p.Position]; !taken {
			occupants[p.Position] = "P"
		}
	}

	var result strings.Builder
	for y := 0; y < floor.Height; y++ {
		for x := 0; x < floor.Width; x++ {
			if mark, ok := occupants[engine.Position{X: x, Y: y}]; ok {
				result.WriteString(mark)
				continue
			}
			result.WriteString(roomChar(floor.Rooms[y][x]))
		}
		result.WriteString("\n")
	}
	return result.String()
}

func formatSessionState(state *service.SessionState, viewerID string) string {
	if state == nil {
		return "No session state available"
	}
	if viewerID == "" {
		viewerID = state.Turn.CurrentPlayerID
	}

	var result strings.Builder
	floorIndex := state.Dungeon.CurrentFloor
	for _, p := range state.Players {
		if p.ID == viewerID {
			floorIndex = p.Floor
		}
	}

	fmt.Fprintf(&result, "Session %s | %s | Status: %s | Moves: %d | Version: %d\n",
		state.ID, state.Difficulty, state.Status, state.Moves, state.Version)
	fmt.Fprintf(&result, "Floor %d of %d", floorIndex+1, len(state.Dungeon.Floors))
	if floorIndex < len(state.Dungeon.Floors) && state.Dungeon.Floors[floorIndex].IsBasement {
		result.WriteString(" (basement)")
	}
	result.WriteString("\n\n")
	result.WriteString(formatFloorMap(state, floorIndex, viewerID))

	result.WriteString("\nParty:\n")
	for _, p := range state.Players {
		marker := " "
		if p.ID == state.Turn.CurrentPlayerID {
			marker = "*"
		}
		fmt.Fprintf(&result, "%s %s (%s) floor %d at (%d,%d) HP %d/%d",
			marker, p.Name, p.ID, p.Floor+1, p.Position.X, p.Position.Y, p.Health, p.MaxHealth)
		if len(p.Inventory) > 0 {
			names := make([]string, 0, len(p.Inventory))
			for _, item := range p.Inventory {
				names = append(names, fmt.Sprintf("%s x%d", item.Name, item.Quantity))
			}
			fmt.Fprintf(&result, " | %s", strings.Join(names, ", "))
		}
		result.WriteString("\n")
	}

	if state.Status != engine.StatusCompleted && state.Turn.CurrentPlayerName != "" {
		fmt.Fprintf(&result, "\nTurn: %s\n", state.Turn.CurrentPlayerName)
	}

	if n := len(state.Log); n > 0 {
		start := n - 5
		if start < 0 {
			start = 0
		}
		result.WriteString("\nRecent log:\n")
		for _, line := range state.Log[start:] {
			fmt.Fprintf(&result, "- %s\n", line)
		}
	}

	return result.String()
}

func formatMoveResult(result *service.MoveResult, playerID string) string {
	var out strings.Builder
	for _, event := range result.Events {
		out.WriteString(event)
		out.WriteString("\n")
	}
	if result.Session == nil {
		return out.String()
	}

	if result.Session.Status == engine.StatusCompleted {
		out.WriteString("\n🎉 RUN COMPLETE!\n")
	}
	out.WriteString("\n")
	out.WriteString(formatSessionState(result.Session, playerID))
	return out.String()
}

func formatHighScores(entries []highscore.Entry) string {
	if len(entries) == 0 {
		return "No completed runs yet"
	}

	var result strings.Builder
	result.WriteString("High scores:\n")
	for i, e := range entries {
		fmt.Fprintf(&result, "%d. %s (%s) %ds, %d moves, %d enemies, %d floors\n",
			i+1, strings.Join(e.Players, ", "), e.Difficulty,
			e.PlayTimeSeconds, e.Moves, e.EnemiesDefeated, e.FloorsCleared)
	}
	return result.String()
}

package service

import (
	"time"

	"github.com/wricardo/dungeon-run-game/game/engine"
)

// CreateSessionRequest starts a new run.
type CreateSessionRequest struct {
	OwnerName        string `json:"ownerName"`
	Difficulty       string `json:"difficulty"`
	AllowJoinMidgame *bool  `json:"allowJoinMidgame,omitempty"`
	Password         string `json:"password,omitempty"`
	MaxPlayers       *int   `json:"maxPlayers,omitempty"`
}

// CreateSessionResult is returned by CreateSession.
type CreateSessionResult struct {
	SessionID     string        `json:"sessionId"`
	OwnerPlayerID string        `json:"ownerPlayerId"`
	Session       *SessionState `json:"session"`
}

// JoinSessionRequest adds a player to a run.
type JoinSessionRequest struct {
	PlayerName string `json:"playerName"`
	Password   string `json:"password,omitempty"`
}

// JoinSessionResult is returned by JoinSession.
type JoinSessionResult struct {
	PlayerID string        `json:"playerId"`
	Session  *SessionState `json:"session"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Events  []string      `json:"events"`
	Room    RoomState     `json:"room"`
	Session *SessionState `json:"session"`
}

// SessionState is the serialized form of a session sent to clients. The
// password is reduced to a flag and room seeds stay on the server.
type SessionState struct {
	ID                 string                      `json:"id"`
	Difficulty         string                      `json:"difficulty"`
	DifficultySettings engine.DifficultyDefinition `json:"difficultySettings"`
	OwnerName          string                      `json:"ownerName"`
	OwnerID            string                      `json:"ownerId"`
	CreatedAt          time.Time                   `json:"createdAt"`
	Players            []PlayerState               `json:"players"`
	Dungeon            DungeonState                `json:"dungeon"`
	Log                []string                    `json:"log"`
	Status             engine.SessionStatus        `json:"status"`
	AllowJoinMidgame   bool                        `json:"allowJoinMidgame"`
	PasswordProtected  bool                        `json:"passwordProtected"`
	MaxPlayers         int                         `json:"maxPlayers"`
	Turn               TurnState                   `json:"turn"`
	Moves              int                         `json:"moves"`
	EnemiesDefeated    int                         `json:"enemiesDefeated"`
	Version            int                         `json:"version"`
}

// PlayerState is one serialized player.
type PlayerState struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Position  engine.Position        `json:"position"`
	Floor     int                    `json:"floor"`
	Health    int                    `json:"health"`
	MaxHealth int                    `json:"maxHealth"`
	Attack    int                    `json:"attack"`
	Defense   int                    `json:"defense"`
	Inventory []engine.InventoryItem `json:"inventory"`
}

// DungeonState is the serialized dungeon.
type DungeonState struct {
	CurrentFloor int          `json:"currentFloor"`
	Floors       []FloorState `json:"floors"`
}

// FloorState is one serialized floor; rooms are addressed [y][x].
type FloorState struct {
	Index      int             `json:"index"`
	Width      int             `json:"width"`
	Height     int             `json:"height"`
	IsBasement bool            `json:"isBasement"`
	Start      engine.Position `json:"start"`
	Stairs     engine.Position `json:"stairs"`
	Rooms      [][]RoomState   `json:"rooms"`
}

// RoomState is one serialized room.
type RoomState struct {
	Position   engine.Position        `json:"position"`
	Kind       engine.RoomKind        `json:"kind"`
	Discovered bool                   `json:"discovered"`
	Cleared    bool                   `json:"cleared"`
	Locked     bool                   `json:"locked"`
	Enemy      *engine.Stats          `json:"enemy,omitempty"`
	Loot       []engine.InventoryItem `json:"loot,omitempty"`
	Legend     string                 `json:"legend,omitempty"`
}

// TurnState names the player expected to move next.
type TurnState struct {
	CurrentPlayerID   string `json:"currentPlayerId"`
	CurrentPlayerName string `json:"currentPlayerName"`
}

// NewSessionState serializes a session snapshot.
func NewSessionState(s *engine.Session) *SessionState {
	state := &SessionState{
		ID:                 s.ID,
		Difficulty:         s.Difficulty,
		DifficultySettings: s.DifficultySettings,
		OwnerName:          s.OwnerName,
		OwnerID:            s.OwnerID,
		CreatedAt:          s.CreatedAt,
		Players:            make([]PlayerState, 0, len(s.Players)),
		Log:                append([]string{}, s.Log...),
		Status:             s.Status,
		AllowJoinMidgame:   s.AllowJoinMidgame,
		PasswordProtected:  s.Password != "",
		MaxPlayers:         s.MaxPlayers,
		Moves:              s.Moves,
		EnemiesDefeated:    s.EnemiesDefeated,
		Version:            s.Version,
	}

	for _, p := range s.Players {
		state.Players = append(state.Players, PlayerState{
			ID:        p.ID,
			Name:      p.Name,
			Position:  p.Position,
			Floor:     p.Floor,
			Health:    p.Stats.Health,
			MaxHealth: p.Stats.MaxHealth,
			Attack:    p.Stats.Attack,
			Defense:   p.Stats.Defense,
			Inventory: append([]engine.InventoryItem{}, p.Inventory...),
		})
	}

	if current := s.CurrentPlayer(); current != nil {
		state.Turn = TurnState{CurrentPlayerID: current.ID, CurrentPlayerName: current.Name}
	}

	if s.Dungeon != nil {
		state.Dungeon.CurrentFloor = s.Dungeon.CurrentFloor
		state.Dungeon.Floors = make([]FloorState, 0, len(s.Dungeon.Floors))
		for _, f := range s.Dungeon.Floors {
			floor := FloorState{
				Index:      f.Index,
				Width:      f.Width,
				Height:     f.Height,
				IsBasement: f.IsBasement,
				Start:      f.Start,
				Stairs:     f.Stairs,
				Rooms:      make([][]RoomState, len(f.Rooms)),
			}
			for y, row := range f.Rooms {
				floor.Rooms[y] = make([]RoomState, len(row))
				for x, room := range row {
					floor.Rooms[y][x] = NewRoomState(room)
				}
			}
			state.Dungeon.Floors = append(state.Dungeon.Floors, floor)
		}
	}

	return state
}

// NewRoomState serializes one room.
func NewRoomState(r *engine.Room) RoomState {
	room := RoomState{
		Position:   r.Position,
		Kind:       r.Kind,
		Discovered: r.Discovered,
		Cleared:    r.Cleared,
		Locked:     r.Locked,
		Legend:     r.Legend,
	}
	if r.Enemy != nil {
		enemy := *r.Enemy
		room.Enemy = &enemy
	}
	if len(r.Loot) > 0 {
		room.Loot = append([]engine.InventoryItem(nil), r.Loot...)
	}
	return room
}

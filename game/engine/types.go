package engine

import "time"

// RoomKind is the semantic category of a grid cell.
type RoomKind string

const (
	RoomEntrance      RoomKind = "entrance"
	RoomSafe          RoomKind = "safe"
	RoomMonster       RoomKind = "monster"
	RoomItem          RoomKind = "item"
	RoomShop          RoomKind = "shop"
	RoomBoss          RoomKind = "boss"
	RoomTrap          RoomKind = "trap"
	RoomIllusion      RoomKind = "illusion"
	RoomStaircaseUp   RoomKind = "staircase_up"
	RoomStaircaseDown RoomKind = "staircase_down"
	RoomExit          RoomKind = "exit"
	RoomLocked        RoomKind = "locked"
)

// AllRoomKinds lists every valid room kind.
var AllRoomKinds = []RoomKind{
	RoomEntrance, RoomSafe, RoomMonster, RoomItem, RoomShop, RoomBoss,
	RoomTrap, RoomIllusion, RoomStaircaseUp, RoomStaircaseDown, RoomExit, RoomLocked,
}

// Valid reports whether k is one of the known room kinds.
func (k RoomKind) Valid() bool {
	for _, kind := range AllRoomKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Structural kinds are only ever placed by forced placement, never sprinkled.
func (k RoomKind) Structural() bool {
	switch k {
	case RoomEntrance, RoomStaircaseUp, RoomStaircaseDown, RoomExit, RoomBoss:
		return true
	}
	return false
}

// ClearedByDefault reports whether a freshly placed room of this kind has no
// outstanding obstacle.
func (k RoomKind) ClearedByDefault() bool {
	switch k {
	case RoomSafe, RoomShop, RoomIllusion, RoomEntrance:
		return true
	}
	return false
}

// SessionStatus is the lifecycle state of a session.
type SessionStatus string

const (
	StatusWaiting    SessionStatus = "waiting"
	StatusInProgress SessionStatus = "in_progress"
	StatusCompleted  SessionStatus = "completed"
)

// Valid reports whether s is a known status.
func (s SessionStatus) Valid() bool {
	switch s {
	case StatusWaiting, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// ItemType classifies inventory items.
type ItemType string

const (
	ItemTreasure   ItemType = "treasure"
	ItemQuest      ItemType = "quest"
	ItemConsumable ItemType = "consumable"
)

// Position represents x,y grid coordinates.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Stats are the combat numbers of a player or an enemy.
type Stats struct {
	MaxHealth int `json:"maxHealth"`
	Health    int `json:"health"`
	Attack    int `json:"attack"`
	Defense   int `json:"defense"`
}

// InventoryItem is a single stack held by a player or lying in a room.
type InventoryItem struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Type     ItemType `json:"type"`
	Quantity int      `json:"quantity"`
}

// Room is one cell of a floor grid.
type Room struct {
	Position   Position        `json:"position"`
	Kind       RoomKind        `json:"kind"`
	Discovered bool            `json:"discovered"`
	Cleared    bool            `json:"cleared"`
	Locked     bool            `json:"locked"`
	Seed       string          `json:"seed"`
	Enemy      *Stats          `json:"enemy,omitempty"`
	Loot       []InventoryItem `json:"loot,omitempty"`
	Legend     string          `json:"legend,omitempty"`
}

// Floor is one grid level of the dungeon. Rooms are addressed [y][x].
type Floor struct {
	Index      int       `json:"index"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	IsBasement bool      `json:"isBasement"`
	Start      Position  `json:"start"`
	Stairs     Position  `json:"stairs"`
	Rooms      [][]*Room `json:"rooms"`
}

// InBounds reports whether p lies inside the floor grid.
func (f *Floor) InBounds(p Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < f.Width && p.Y < f.Height
}

// Room returns the room at p. The caller checks bounds first.
func (f *Floor) Room(p Position) *Room {
	return f.Rooms[p.Y][p.X]
}

// Dungeon is the full generated run. CurrentFloor is shared by every player.
type Dungeon struct {
	Seed         string   `json:"seed"`
	CurrentFloor int      `json:"currentFloor"`
	Floors       []*Floor `json:"floors"`
}

// Player is a member of a session.
type Player struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Position  Position        `json:"position"`
	Floor     int             `json:"floor"`
	Stats     Stats           `json:"stats"`
	Inventory []InventoryItem `json:"inventory"`
}

// HasQuestItem reports whether the player carries a key-type item.
func (p *Player) HasQuestItem() bool {
	for _, item := range p.Inventory {
		if item.Type == ItemQuest {
			return true
		}
	}
	return false
}

// Session is one cooperative dungeon run. It is owned by the session store;
// the engine mutates it in place but never retains it.
type Session struct {
	ID                 string               `json:"id"`
	Difficulty         string               `json:"difficulty"`
	DifficultySettings DifficultyDefinition `json:"difficultySettings"`
	OwnerName          string               `json:"ownerName"`
	OwnerID            string               `json:"ownerId"`
	CreatedAt          time.Time            `json:"createdAt"`
	Players            []*Player            `json:"players"`
	TurnOrder          []string             `json:"turnOrder"`
	TurnIndex          int                  `json:"turnIndex"`
	Log                []string             `json:"log"`
	Status             SessionStatus        `json:"status"`
	AllowJoinMidgame   bool                 `json:"allowJoinMidgame"`
	Password           string               `json:"-"`
	MaxPlayers         int                  `json:"maxPlayers"`
	Dungeon            *Dungeon             `json:"dungeon"`
	Version            int                  `json:"version"`

	// Run counters, used for high scores.
	Moves           int       `json:"moves"`
	EnemiesDefeated int       `json:"enemiesDefeated"`
	CompletedAt     time.Time `json:"completedAt"`
}

// Player returns the member with the given id, or nil.
func (s *Session) Player(id string) *Player {
	for _, p := range s.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// CurrentPlayer returns the player whose turn it is, or nil.
func (s *Session) CurrentPlayer() *Player {
	if len(s.TurnOrder) == 0 {
		return nil
	}
	return s.Player(s.TurnOrder[s.TurnIndex])
}

// AppendLog adds entries and trims the log to the newest MaxLogEntries.
func (s *Session) AppendLog(entries ...string) {
	for _, e := range entries {
		if e != "" {
			s.Log = append(s.Log, e)
		}
	}
	if over := len(s.Log) - MaxLogEntries; over > 0 {
		s.Log = append([]string(nil), s.Log[over:]...)
	}
}

// CreateOptions configures a new session.
type CreateOptions struct {
	OwnerName        string
	Difficulty       string
	AllowJoinMidgame *bool
	Password         string
	MaxPlayers       *int
}

// MoveOutcome is returned by a successful move.
type MoveOutcome struct {
	Session *Session
	Room    *Room
	Events  []string
}

const (
	// MaxLogEntries bounds the session log.
	MaxLogEntries = 50

	DefaultMaxPlayers = 6
	MinPasswordLength = 4
	MaxPasswordLength = 50
)

// DefaultPlayerStats are given to every new player.
var DefaultPlayerStats = Stats{MaxHealth: 100, Health: 100, Attack: 10, Defense: 4}

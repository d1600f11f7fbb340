package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Engine provides the session-level game operations. It owns no storage:
// every call mutates the session it is handed.
type Engine interface {
	CreateSession(opts CreateOptions) (*Session, error)
	JoinSession(session *Session, playerName string) (*Player, error)
	Move(session *Session, playerID, direction string) (*MoveOutcome, error)
}

// GameEngine implements the Engine interface
type GameEngine struct {
	catalog Catalog
	newID   func() string
	now     func() time.Time
}

// Option customizes a GameEngine.
type Option func(*GameEngine)

// WithIDGenerator replaces the uuid generator used for session and player ids.
func WithIDGenerator(fn func() string) Option {
	return func(e *GameEngine) { e.newID = fn }
}

// WithClock replaces time.Now.
func WithClock(fn func() time.Time) Option {
	return func(e *GameEngine) { e.now = fn }
}

// NewEngine creates a game engine backed by the given difficulty catalog
func NewEngine(catalog Catalog, opts ...Option) *GameEngine {
	e := &GameEngine{
		catalog: catalog,
		newID:   uuid.NewString,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreateSession generates a dungeon seeded by a fresh session id and places
// the owner at the first floor's entrance.
func (e *GameEngine) CreateSession(opts CreateOptions) (*Session, error) {
	owner := strings.TrimSpace(opts.OwnerName)
	if owner == "" {
		return nil, fmt.Errorf("%w: owner name is required", ErrInvalidArgument)
	}

	key := opts.Difficulty
	if key == "" {
		key = "easy"
	}
	def, rules, err := e.catalog.Difficulty(key)
	if err != nil {
		return nil, err
	}

	allowJoin := true
	if opts.AllowJoinMidgame != nil {
		allowJoin = *opts.AllowJoinMidgame
	}
	maxPlayers := DefaultMaxPlayers
	if opts.MaxPlayers != nil {
		maxPlayers = *opts.MaxPlayers
	}

	id := e.newID()
	dungeon := GenerateDungeon(def, rules, id)

	player := e.newPlayer(owner, dungeon, 0)
	session := &Session{
		ID:                 id,
		Difficulty:         def.Key,
		DifficultySettings: def,
		OwnerName:          owner,
		OwnerID:            player.ID,
		CreatedAt:          e.now(),
		Players:            []*Player{player},
		TurnOrder:          []string{player.ID},
		Status:             StatusWaiting,
		AllowJoinMidgame:   allowJoin,
		Password:           opts.Password,
		MaxPlayers:         maxPlayers,
		Dungeon:            dungeon,
		Version:            1,
	}
	session.AppendLog(fmt.Sprintf("%s descends into the dungeon.", owner))

	return session, nil
}

// JoinSession adds a player at the entrance of the party's current floor.
// Capacity, password and mid-game policy are the caller's concern.
func (e *GameEngine) JoinSession(session *Session, playerName string) (*Player, error) {
	name := strings.TrimSpace(playerName)
	if name == "" {
		return nil, fmt.Errorf("%w: player name is required", ErrInvalidArgument)
	}

	player := e.newPlayer(name, session.Dungeon, session.Dungeon.CurrentFloor)
	session.Players = append(session.Players, player)
	session.TurnOrder = append(session.TurnOrder, player.ID)
	session.AppendLog(fmt.Sprintf("%s joins the run.", name))
	session.Version++

	return player, nil
}

func (e *GameEngine) newPlayer(name string, dungeon *Dungeon, floorIndex int) *Player {
	return &Player{
		ID:        e.newID(),
		Name:      name,
		Position:  dungeon.Floors[floorIndex].Start,
		Floor:     floorIndex,
		Stats:     DefaultPlayerStats,
		Inventory: []InventoryItem{},
	}
}

// Move performs one turn for playerID. Every check runs before the session is
// touched, so a rejected move leaves it unchanged.
func (e *GameEngine) Move(session *Session, playerID, direction string) (*MoveOutcome, error) {
	if session.Status == StatusCompleted {
		return nil, fmt.Errorf("%w: the run is already complete", ErrConflict)
	}

	player := session.Player(playerID)
	if player == nil {
		return nil, fmt.Errorf("%w: player %s is not part of this session", ErrNotFound, playerID)
	}
	if session.TurnOrder[session.TurnIndex] != playerID {
		return nil, fmt.Errorf("%w: it's not your turn to move yet", ErrConflict)
	}

	dir, err := ParseDirection(direction)
	if err != nil {
		return nil, err
	}

	floor := session.Dungeon.Floors[player.Floor]
	next := dir.Step(player.Position)
	if !floor.InBounds(next) {
		return nil, fmt.Errorf("%w: cannot move beyond the dungeon walls", ErrInvalidArgument)
	}

	room := floor.Room(next)
	if room.Locked && !player.HasQuestItem() {
		return nil, fmt.Errorf("%w: the door is locked, you need a key", ErrLocked)
	}

	player.Position = next
	room.Discovered = true
	session.Moves++

	events := []string{fmt.Sprintf("%s moved %s and found %s.", player.Name, dir, DescribeRoom(room))}

	if room.Locked {
		room.Locked = false
		if room.Kind == RoomLocked {
			room.Kind = RoomSafe
		}
		room.Cleared = len(room.Loot) == 0 && (room.Enemy == nil || room.Enemy.Health <= 0)
		events = append(events, fmt.Sprintf("%s unlocks the door.", player.Name))
	}

	if (room.Kind == RoomMonster || room.Kind == RoomBoss) && room.Enemy != nil && room.Enemy.Health > 0 {
		events = append(events, ResolveCombat(room, player))
		if room.Cleared {
			session.EnemiesDefeated++
		}
	}

	if room.Enemy == nil || room.Enemy.Health <= 0 {
		if summary, ok := CollectLoot(room, player); ok {
			events = append(events, summary)
		}
	}

	if room.Kind == RoomTrap && !room.Cleared {
		events = append(events, TriggerTrap(room, player))
	}

	if next == floor.Stairs {
		if room.Kind == RoomStaircaseDown && room.Enemy == nil {
			room.Cleared = true
		}
		if room.Cleared {
			events = append(events, e.advance(session, player)...)
		}
	}

	session.AppendLog(events...)
	if session.Status == StatusWaiting {
		session.Status = StatusInProgress
	}
	session.TurnIndex = (session.TurnIndex + 1) % len(session.TurnOrder)
	session.Version++

	return &MoveOutcome{Session: session, Room: room, Events: events}, nil
}

// advance takes the mover down a floor, or ends the run from the last floor.
func (e *GameEngine) advance(session *Session, player *Player) []string {
	dungeon := session.Dungeon
	if player.Floor < len(dungeon.Floors)-1 {
		player.Floor++
		if player.Floor > dungeon.CurrentFloor {
			dungeon.CurrentFloor = player.Floor
		}
		player.Position = dungeon.Floors[player.Floor].Start
		return []string{fmt.Sprintf("%s descends to floor %d.", player.Name, player.Floor+1)}
	}

	session.Status = StatusCompleted
	session.CompletedAt = e.now()
	return []string{fmt.Sprintf("%s reaches the final chamber. The run is complete!", player.Name)}
}

// StaticCatalog serves a fixed set of difficulties and rules.
type StaticCatalog struct {
	defs  map[string]DifficultyDefinition
	rules []FloorRoomRule
}

// NewDefaultCatalog returns a catalog of the built-in presets.
func NewDefaultCatalog() *StaticCatalog {
	return &StaticCatalog{defs: DefaultDifficulties(), rules: DefaultFloorRules()}
}

// Difficulty implements Catalog.
func (c *StaticCatalog) Difficulty(key string) (DifficultyDefinition, []FloorRoomRule, error) {
	def, ok := c.defs[key]
	if !ok {
		return DifficultyDefinition{}, nil, fmt.Errorf("%w: unknown difficulty %q", ErrInvalidArgument, key)
	}
	return def, RulesFor(c.rules, key), nil
}

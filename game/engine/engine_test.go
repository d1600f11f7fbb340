package engine

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tinyDifficulty(floors int) DifficultyDefinition {
	return DifficultyDefinition{
		Key: "tiny", Name: "Tiny", Width: 5, Height: 5,
		MinFloors: floors, MaxFloors: floors,
	}
}

func createTestEngine(def DifficultyDefinition) *GameEngine {
	catalog := &StaticCatalog{defs: map[string]DifficultyDefinition{def.Key: def}}
	n := 0
	return NewEngine(catalog,
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
		WithClock(func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }),
	)
}

// createTestSession returns a session whose every room except the
// entrance is a plain safe room, so each test places exactly what it needs.
func createTestSession(t *testing.T, floors int) (*GameEngine, *Session) {
	t.Helper()
	eng := createTestEngine(tinyDifficulty(floors))
	session, err := eng.CreateSession(CreateOptions{OwnerName: "Aria", Difficulty: "tiny"})
	require.NoError(t, err)

	for _, floor := range session.Dungeon.Floors {
		for _, row := range floor.Rooms {
			for _, room := range row {
				if room.Position != floor.Start {
					resetRoom(room, RoomSafe)
				}
			}
		}
		// Park the stairs in a corner, away from the entrance at (2,2).
		floor.Stairs = Position{X: 0, Y: 0}
		resetRoom(floor.Room(floor.Stairs), RoomStaircaseDown)
		floor.Room(floor.Stairs).Cleared = false
	}
	return eng, session
}

func resetRoom(room *Room, kind RoomKind) {
	room.Kind = kind
	room.Cleared = kind.ClearedByDefault()
	room.Locked = false
	room.Enemy = nil
	room.Loot = nil
	room.Legend = ""
}

func at(session *Session, x, y int) *Room {
	return session.Dungeon.Floors[0].Room(Position{X: x, Y: y})
}

func TestCreateSession_ScenarioA(t *testing.T) {
	eng := NewEngine(NewDefaultCatalog())

	session, err := eng.CreateSession(CreateOptions{OwnerName: "Aria", Difficulty: "easy"})
	require.NoError(t, err)

	assert.Equal(t, StatusWaiting, session.Status)
	require.Len(t, session.Players, 1)
	aria := session.Players[0]
	assert.Equal(t, "Aria", aria.Name)
	assert.Equal(t, session.Dungeon.Floors[0].Start, aria.Position)
	assert.Equal(t, 0, aria.Floor)
	assert.Equal(t, DefaultPlayerStats, aria.Stats)
	assert.Equal(t, []string{aria.ID}, session.TurnOrder)
	assert.Equal(t, aria.ID, session.OwnerID)
	assert.Equal(t, 1, session.Version)
	assert.Equal(t, DefaultMaxPlayers, session.MaxPlayers)
	assert.True(t, session.AllowJoinMidgame)
	assert.Equal(t, []string{"Aria descends into the dungeon."}, session.Log)
	assert.Equal(t, session.ID, session.Dungeon.Seed)
}

func TestCreateSession_Options(t *testing.T) {
	eng := createTestEngine(tinyDifficulty(1))
	no := false
	four := 4

	session, err := eng.CreateSession(CreateOptions{
		OwnerName:        "Aria",
		Difficulty:       "tiny",
		AllowJoinMidgame: &no,
		MaxPlayers:       &four,
		Password:         "secret",
	})
	require.NoError(t, err)
	assert.False(t, session.AllowJoinMidgame)
	assert.Equal(t, 4, session.MaxPlayers)
	assert.Equal(t, "secret", session.Password)
}

func TestCreateSession_Errors(t *testing.T) {
	eng := createTestEngine(tinyDifficulty(1))

	_, err := eng.CreateSession(CreateOptions{OwnerName: "  ", Difficulty: "tiny"})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = eng.CreateSession(CreateOptions{OwnerName: "Aria", Difficulty: "impossible"})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestJoinSession_StartsOnCurrentFloor(t *testing.T) {
	eng, session := createTestSession(t, 2)
	session.Dungeon.CurrentFloor = 1

	bo, err := eng.JoinSession(session, "Bo")
	require.NoError(t, err)

	assert.Equal(t, 1, bo.Floor)
	assert.Equal(t, session.Dungeon.Floors[1].Start, bo.Position)
	assert.Equal(t, []string{session.OwnerID, bo.ID}, session.TurnOrder)
	assert.Equal(t, 2, session.Version)
	assert.Contains(t, session.Log, "Bo joins the run.")

	_, err = eng.JoinSession(session, "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestMove_ScenarioB_MonsterFight(t *testing.T) {
	eng, session := createTestSession(t, 1)
	monster := at(session, 3, 2)
	resetRoom(monster, RoomMonster)
	enemy := enemyBase
	monster.Enemy = &enemy

	outcome, err := eng.Move(session, session.OwnerID, "east")
	require.NoError(t, err)

	require.Len(t, outcome.Events, 2)
	assert.Equal(t, "Aria moved east and found a hostile creature blocks the path.", outcome.Events[0])
	assert.Contains(t, outcome.Events[1], "Aria strikes for")
	assert.True(t, strings.HasSuffix(outcome.Events[1], "The enemy is defeated."))
	assert.True(t, monster.Cleared)
	assert.Equal(t, 0, monster.Enemy.Health)
	assert.Equal(t, 1, session.EnemiesDefeated)

	aria := session.Player(session.OwnerID)
	assert.Less(t, aria.Stats.Health, aria.Stats.MaxHealth)
	assert.GreaterOrEqual(t, aria.Stats.Health, 0)
	assert.Equal(t, StatusInProgress, session.Status)
}

func TestMove_ScenarioC_OutOfTurn(t *testing.T) {
	eng, session := createTestSession(t, 1)
	bo, err := eng.JoinSession(session, "Bo")
	require.NoError(t, err)
	version := session.Version

	_, err = eng.Move(session, bo.ID, "north")
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, version, session.Version)
	assert.Equal(t, 0, session.TurnIndex)
	assert.Equal(t, StatusWaiting, session.Status)

	_, err = eng.Move(session, session.OwnerID, "north")
	require.NoError(t, err)
	assert.Equal(t, 1, session.TurnIndex)

	_, err = eng.Move(session, bo.ID, "south")
	require.NoError(t, err)
	assert.Equal(t, 0, session.TurnIndex)
}

func TestMove_ScenarioD_LockedDoor(t *testing.T) {
	eng, session := createTestSession(t, 1)
	door := at(session, 3, 2)
	resetRoom(door, RoomLocked)
	door.Locked = true
	door.Cleared = false

	chest := at(session, 1, 2)
	resetRoom(chest, RoomItem)
	chest.Cleared = false
	chest.Loot = []InventoryItem{{ID: "key-1", Name: "Iron Key", Type: ItemQuest, Quantity: 1}}

	before := *session.Player(session.OwnerID)
	_, err := eng.Move(session, session.OwnerID, "east")
	require.ErrorIs(t, err, ErrLocked)
	assert.Equal(t, before.Position, session.Player(session.OwnerID).Position)
	assert.Equal(t, 1, session.Version)
	assert.True(t, door.Locked)

	outcome, err := eng.Move(session, session.OwnerID, "west")
	require.NoError(t, err)
	assert.Contains(t, outcome.Events, "Aria collects Iron Key x1.")
	assert.True(t, chest.Cleared)
	assert.Empty(t, chest.Loot)

	_, err = eng.Move(session, session.OwnerID, "east")
	require.NoError(t, err)
	outcome, err = eng.Move(session, session.OwnerID, "east")
	require.NoError(t, err)

	assert.Contains(t, outcome.Events, "Aria unlocks the door.")
	assert.False(t, door.Locked)
	assert.True(t, door.Cleared)
	assert.Equal(t, RoomSafe, door.Kind)
	assert.True(t, session.Player(session.OwnerID).HasQuestItem(), "keys are reusable")
}

func TestMove_ScenarioE_RunCompletes(t *testing.T) {
	eng, session := createTestSession(t, 1)
	floor := session.Dungeon.Floors[0]
	resetRoom(floor.Room(floor.Stairs), RoomSafe)
	floor.Stairs = Position{X: 2, Y: 1}
	resetRoom(floor.Room(floor.Stairs), RoomStaircaseDown)

	outcome, err := eng.Move(session, session.OwnerID, "north")
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, session.Status)
	assert.Equal(t, "Aria reaches the final chamber. The run is complete!", outcome.Events[len(outcome.Events)-1])
	assert.Contains(t, session.Log, "Aria reaches the final chamber. The run is complete!")
	assert.False(t, session.CompletedAt.IsZero())

	_, err = eng.Move(session, session.OwnerID, "south")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestMove_BossGuardsFinalStairs(t *testing.T) {
	eng, session := createTestSession(t, 1)
	floor := session.Dungeon.Floors[0]
	resetRoom(floor.Room(floor.Stairs), RoomSafe)
	floor.Stairs = Position{X: 2, Y: 3}
	placeBoss(floor, session.DifficultySettings)

	aria := session.Player(session.OwnerID)
	aria.Stats.Attack = 40

	outcome, err := eng.Move(session, aria.ID, "south")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, session.Status)
	assert.Contains(t, outcome.Events[1], "The enemy is defeated.")
}

func TestMove_DescendsToNextFloor(t *testing.T) {
	eng, session := createTestSession(t, 2)
	floor := session.Dungeon.Floors[0]
	resetRoom(floor.Room(floor.Stairs), RoomSafe)
	floor.Stairs = Position{X: 1, Y: 2}
	resetRoom(floor.Room(floor.Stairs), RoomStaircaseDown)

	outcome, err := eng.Move(session, session.OwnerID, "west")
	require.NoError(t, err)

	aria := session.Player(session.OwnerID)
	assert.Equal(t, 1, aria.Floor)
	assert.Equal(t, 1, session.Dungeon.CurrentFloor)
	assert.Equal(t, session.Dungeon.Floors[1].Start, aria.Position)
	assert.Contains(t, outcome.Events, "Aria descends to floor 2.")
	assert.Equal(t, StatusInProgress, session.Status)
}

func TestMove_Validation(t *testing.T) {
	eng, session := createTestSession(t, 1)

	tests := []struct {
		name      string
		playerID  string
		direction string
		want      error
	}{
		{"unknown player", "ghost", "north", ErrNotFound},
		{"bad direction", session.OwnerID, "up", ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := eng.Move(session, tt.playerID, tt.direction)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 1, session.Version)
		})
	}

	t.Run("outside the grid", func(t *testing.T) {
		aria := session.Player(session.OwnerID)
		aria.Position = Position{X: 4, Y: 4}
		_, err := eng.Move(session, aria.ID, "east")
		assert.ErrorIs(t, err, ErrInvalidArgument)
		_, err = eng.Move(session, aria.ID, "south")
		assert.ErrorIs(t, err, ErrInvalidArgument)
		assert.Equal(t, Position{X: 4, Y: 4}, aria.Position)
	})
}

func TestMove_IdempotentReentry(t *testing.T) {
	eng, session := createTestSession(t, 1)

	_, err := eng.Move(session, session.OwnerID, "east")
	require.NoError(t, err)
	_, err = eng.Move(session, session.OwnerID, "west")
	require.NoError(t, err)
	outcome, err := eng.Move(session, session.OwnerID, "east")
	require.NoError(t, err)

	assert.Equal(t, []string{"Aria moved east and found quiet stone corridors stretch forward."}, outcome.Events)
}

func TestMove_DefeatedRoomStaysQuiet(t *testing.T) {
	eng, session := createTestSession(t, 1)
	monster := at(session, 3, 2)
	resetRoom(monster, RoomMonster)
	enemy := enemyBase
	monster.Enemy = &enemy

	for _, dir := range []string{"east", "west", "east"} {
		_, err := eng.Move(session, session.OwnerID, dir)
		require.NoError(t, err)
	}
	last := session.Log[len(session.Log)-1]
	assert.Equal(t, "Aria moved east and found the remains of a defeated foe.", last)
	assert.Equal(t, 1, session.EnemiesDefeated)
}

func TestMove_TrapFiresOnce(t *testing.T) {
	eng, session := createTestSession(t, 1)
	trap := at(session, 2, 3)
	resetRoom(trap, RoomTrap)

	aria := session.Player(session.OwnerID)
	outcome, err := eng.Move(session, aria.ID, "south")
	require.NoError(t, err)
	require.Len(t, outcome.Events, 2)
	assert.Contains(t, outcome.Events[1], "Aria triggers a trap and takes")

	lost := aria.Stats.MaxHealth - aria.Stats.Health
	assert.GreaterOrEqual(t, lost, 5)
	assert.LessOrEqual(t, lost, 12)

	_, err = eng.Move(session, aria.ID, "north")
	require.NoError(t, err)
	outcome, err = eng.Move(session, aria.ID, "south")
	require.NoError(t, err)
	assert.Len(t, outcome.Events, 1)
	assert.Equal(t, aria.Stats.MaxHealth-lost, aria.Stats.Health)
}

func TestMove_TooWeakToFight(t *testing.T) {
	eng, session := createTestSession(t, 1)
	monster := at(session, 3, 2)
	resetRoom(monster, RoomMonster)
	enemy := enemyBase
	monster.Enemy = &enemy

	aria := session.Player(session.OwnerID)
	aria.Stats.Health = 0

	outcome, err := eng.Move(session, aria.ID, "east")
	require.NoError(t, err)
	assert.Contains(t, outcome.Events, "Aria is too weak to fight.")
	assert.False(t, monster.Cleared)
	assert.Equal(t, enemy.MaxHealth, monster.Enemy.Health)
}

func TestMove_LogIsBounded(t *testing.T) {
	eng, session := createTestSession(t, 1)

	for i := 0; i < 120; i++ {
		dir := "east"
		if i%2 == 1 {
			dir = "west"
		}
		_, err := eng.Move(session, session.OwnerID, dir)
		require.NoError(t, err)
		require.LessOrEqual(t, len(session.Log), MaxLogEntries)
	}
	assert.Len(t, session.Log, MaxLogEntries)
	assert.Equal(t, 121, session.Version)
	assert.Equal(t, 120, session.Moves)
}

func TestMove_TurnAdvancesByOne(t *testing.T) {
	eng, session := createTestSession(t, 1)
	for _, name := range []string{"Bo", "Cy"} {
		_, err := eng.JoinSession(session, name)
		require.NoError(t, err)
	}

	moved := map[string]int{}
	for i := 0; i < 9; i++ {
		turn := session.TurnIndex
		current := session.TurnOrder[turn]
		for _, other := range session.TurnOrder {
			if other != current {
				_, err := eng.Move(session, other, "south")
				require.ErrorIs(t, err, ErrConflict)
			}
		}

		dir := "east"
		if moved[current]%2 == 1 {
			dir = "west"
		}
		_, err := eng.Move(session, current, dir)
		require.NoError(t, err)
		moved[current]++
		assert.Equal(t, (turn+1)%len(session.TurnOrder), session.TurnIndex)
	}
}

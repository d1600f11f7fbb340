package engine

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/dungeon-run-game/game/rng"
)

func newTestRand(seed string) *rng.Rand {
	return rng.New(seed)
}

func newCombatants(seed string, enemy Stats) (*Room, *Player) {
	room := &Room{Kind: RoomMonster, Seed: seed, Enemy: &enemy}
	player := &Player{ID: "p-1", Name: "Aria", Stats: DefaultPlayerStats}
	return room, player
}

func TestDamage_Bounds(t *testing.T) {
	r := newTestRand("damage")
	attacker := Stats{Attack: 10}
	for i := 0; i < 500; i++ {
		d := damage(r, attacker, Stats{Defense: 4})
		assert.GreaterOrEqual(t, d, 6)
		assert.LessOrEqual(t, d, 11)

		// Armor heavier than the blow still lets one point through.
		assert.Equal(t, 1, damage(r, Stats{Attack: 1}, Stats{Defense: 20}))
	}
}

func TestResolveCombat_Replayable(t *testing.T) {
	roomA, playerA := newCombatants("seed:0:1,1", bossBase)
	roomB, playerB := newCombatants("seed:0:1,1", bossBase)

	assert.Equal(t, ResolveCombat(roomA, playerA), ResolveCombat(roomB, playerB))
	assert.Equal(t, playerA.Stats, playerB.Stats)
	assert.Equal(t, *roomA.Enemy, *roomB.Enemy)
	assert.Equal(t, roomA.Cleared, roomB.Cleared)
}

func TestResolveCombat_HealthBounds(t *testing.T) {
	for i := 0; i < 200; i++ {
		room, player := newCombatants(fmt.Sprintf("bounds:%d", i), bossBase)
		player.Stats.Health = 1 + i%100

		ResolveCombat(room, player)

		assert.GreaterOrEqual(t, player.Stats.Health, 0)
		assert.LessOrEqual(t, player.Stats.Health, player.Stats.MaxHealth)
		assert.GreaterOrEqual(t, room.Enemy.Health, 0)
		assert.LessOrEqual(t, room.Enemy.Health, room.Enemy.MaxHealth)
		assert.True(t, player.Stats.Health == 0 || room.Enemy.Health == 0)
		assert.Equal(t, room.Enemy.Health == 0, room.Cleared)
	}
}

func TestResolveCombat_PartialFightResumes(t *testing.T) {
	room, player := newCombatants("resume", bossBase)
	player.Stats.Health = 5

	line := ResolveCombat(room, player)
	require.False(t, room.Cleared)
	assert.Equal(t, 0, player.Stats.Health)
	assert.True(t, strings.HasSuffix(line, "Aria falls back, too wounded to continue."))

	wounded := room.Enemy.Health
	assert.Less(t, wounded, bossBase.MaxHealth)

	champion := &Player{ID: "p-2", Name: "Bo", Stats: Stats{MaxHealth: 100, Health: 100, Attack: 40, Defense: 10}}
	line = ResolveCombat(room, champion)
	assert.True(t, room.Cleared)
	assert.True(t, strings.HasPrefix(line, "Bo strikes for"))
	assert.True(t, strings.HasSuffix(line, "The enemy is defeated."))
}

func TestResolveCombat_NoEnemy(t *testing.T) {
	room := &Room{Kind: RoomSafe, Seed: "empty"}
	player := &Player{ID: "p-1", Name: "Aria", Stats: DefaultPlayerStats}
	assert.Equal(t, "Nothing to fight here.", ResolveCombat(room, player))
	assert.Equal(t, DefaultPlayerStats, player.Stats)
}

func TestCollectLoot(t *testing.T) {
	room := &Room{Kind: RoomItem, Loot: []InventoryItem{
		{ID: "a", Name: "Iron Key", Type: ItemQuest, Quantity: 1},
		{ID: "b", Name: "Rations", Type: ItemConsumable, Quantity: 2},
	}}
	player := &Player{Name: "Aria"}

	summary, ok := CollectLoot(room, player)
	require.True(t, ok)
	assert.Equal(t, "Aria collects Iron Key x1, Rations x2.", summary)
	assert.Len(t, player.Inventory, 2)
	assert.Empty(t, room.Loot)
	assert.True(t, room.Cleared)
	assert.True(t, player.HasQuestItem())

	summary, ok = CollectLoot(room, player)
	assert.False(t, ok)
	assert.Empty(t, summary)
	assert.Len(t, player.Inventory, 2)
}

func TestTriggerTrap(t *testing.T) {
	room := &Room{Kind: RoomTrap, Seed: "trap-room"}
	player := &Player{Name: "Aria", Stats: DefaultPlayerStats}

	line := TriggerTrap(room, player)
	lost := DefaultPlayerStats.Health - player.Stats.Health
	assert.GreaterOrEqual(t, lost, 5)
	assert.LessOrEqual(t, lost, 12)
	assert.Equal(t, fmt.Sprintf("Aria triggers a trap and takes %d damage.", lost), line)
	assert.True(t, room.Cleared)

	weak := &Player{Name: "Bo", Stats: Stats{MaxHealth: 100, Health: 3}}
	TriggerTrap(&Room{Kind: RoomTrap, Seed: "trap-room"}, weak)
	assert.Equal(t, 0, weak.Stats.Health)

	armed := &Room{Kind: RoomTrap, Seed: "trap-room"}
	line = TriggerTrap(armed, weak)
	assert.Equal(t, "Bo crawls past the trap without setting it off.", line)
	assert.Equal(t, 0, weak.Stats.Health)
	assert.False(t, armed.Cleared, "the trap stays armed for the next visitor")
}

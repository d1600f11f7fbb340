package engine

import (
	"fmt"
	"strings"

	"github.com/wricardo/dungeon-run-game/game/rng"
)

func damage(r *rng.Rand, attacker, defender Stats) int {
	base := attacker.Attack - defender.Defense/2
	return clamp(base+r.IntRange(-2, 3), 1, attacker.Attack+4)
}

// ResolveCombat fights the room's enemy to the end and returns the battle
// narration. The battle is seeded by room and player, so a replay with the
// same inputs gives the same result. The enemy keeps its remaining health on
// the room when the player falls.
func ResolveCombat(room *Room, player *Player) string {
	if room.Enemy == nil {
		return "Nothing to fight here."
	}
	if player.Stats.Health <= 0 {
		return fmt.Sprintf("%s is too weak to fight.", player.Name)
	}

	r := rng.New(fmt.Sprintf("%s:battle:%s", room.Seed, player.ID))
	foe := *room.Enemy
	stats := &player.Stats
	var lines []string

	for foe.Health > 0 && stats.Health > 0 {
		hit := damage(r, *stats, foe)
		foe.Health = clamp(foe.Health-hit, 0, foe.MaxHealth)
		lines = append(lines, fmt.Sprintf("%s strikes for %d damage.", player.Name, hit))
		if foe.Health <= 0 {
			break
		}

		back := damage(r, foe, *stats)
		stats.Health = clamp(stats.Health-back, 0, stats.MaxHealth)
		lines = append(lines, fmt.Sprintf("The foe hits back for %d damage.", back))
	}

	room.Enemy.Health = foe.Health
	room.Cleared = foe.Health <= 0
	if room.Cleared {
		lines = append(lines, "The enemy is defeated.")
	} else {
		lines = append(lines, fmt.Sprintf("%s falls back, too wounded to continue.", player.Name))
	}
	return strings.Join(lines, " ")
}

// CollectLoot moves every item in the room into the player's inventory.
// It reports false when the room holds nothing.
func CollectLoot(room *Room, player *Player) (string, bool) {
	if len(room.Loot) == 0 {
		return "", false
	}

	names := make([]string, 0, len(room.Loot))
	for _, item := range room.Loot {
		names = append(names, fmt.Sprintf("%s x%d", item.Name, item.Quantity))
		player.Inventory = append(player.Inventory, item)
	}
	room.Loot = nil
	room.Cleared = true

	return fmt.Sprintf("%s collects %s.", player.Name, strings.Join(names, ", ")), true
}

// TriggerTrap applies a room-seeded amount of damage, never more than the
// player's remaining health, and disarms the trap. A player with no health
// left does not set it off.
func TriggerTrap(room *Room, player *Player) string {
	if player.Stats.Health <= 0 {
		return fmt.Sprintf("%s crawls past the trap without setting it off.", player.Name)
	}
	r := rng.New(room.Seed + ":trap")
	dmg := clamp(r.IntRange(5, 12), 1, player.Stats.Health)
	player.Stats.Health = clamp(player.Stats.Health-dmg, 0, player.Stats.MaxHealth)
	room.Cleared = true
	return fmt.Sprintf("%s triggers a trap and takes %d damage.", player.Name, dmg)
}

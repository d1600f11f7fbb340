package engine

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/wricardo/dungeon-run-game/game/rng"
)

const placementAttempts = 10

var (
	lootPool = []InventoryItem{
		{Name: "Potion", Type: ItemConsumable, Quantity: 1},
		{Name: "Old Coin", Type: ItemTreasure, Quantity: 1},
		{Name: "Strange Relic", Type: ItemTreasure, Quantity: 1},
		{Name: "Sturdy Key", Type: ItemQuest, Quantity: 1},
	}

	trapLegends = []string{
		"Pressure plates line the dusty floor.",
		"Rusty blades jut from cracks in the walls.",
		"A faint hiss of gas seeps from the ceiling.",
	}

	illusionLegends = []string{
		"The walls shimmer and bend when you look away.",
		"A mirror image of the party waves back.",
		"Phantom music drifts through the empty room.",
	}

	basementKinds = []RoomKind{RoomMonster, RoomItem, RoomTrap}

	bossBase  = Stats{MaxHealth: 60, Health: 60, Attack: 14, Defense: 6}
	enemyBase = Stats{MaxHealth: 24, Health: 24, Attack: 6, Defense: 2}
)

// GenerateDungeon builds every floor for a difficulty from a seed. The same
// definition, rules and seed always produce the same dungeon.
func GenerateDungeon(def DifficultyDefinition, rules []FloorRoomRule, seed string) *Dungeon {
	r := rng.New(seed + ":floors")
	count := r.IntRange(def.MinFloors, def.MaxFloors)
	withBasement := r.Chance(def.BasementChance)

	dungeon := &Dungeon{Seed: seed}
	for i := 0; i < count; i++ {
		floor := newFloor(def, i, seed, false)
		sprinkleRooms(floor, def, rules, seed)
		ensureKey(floor, seed)
		dungeon.Floors = append(dungeon.Floors, floor)
	}

	placeBoss(dungeon.Floors[count-1], def)

	if withBasement {
		basement := newFloor(def, count, seed, true)
		fillBasement(basement, def, seed)
		dungeon.Floors = append(dungeon.Floors, basement)
	}

	return dungeon
}

func newFloor(def DifficultyDefinition, index int, seed string, basement bool) *Floor {
	floor := &Floor{
		Index:      index,
		Width:      def.Width,
		Height:     def.Height,
		IsBasement: basement,
		Rooms:      make([][]*Room, def.Height),
	}

	for y := 0; y < def.Height; y++ {
		floor.Rooms[y] = make([]*Room, def.Width)
		for x := 0; x < def.Width; x++ {
			floor.Rooms[y][x] = &Room{
				Position: Position{X: x, Y: y},
				Kind:     RoomSafe,
				Cleared:  true,
				Seed:     fmt.Sprintf("%s:%d:%d,%d", seed, index, x, y),
			}
		}
	}

	r := rng.New(fmt.Sprintf("%s:floor:%d", seed, index))
	floor.Start = Position{X: def.Width / 2, Y: def.Height / 2}
	floor.Stairs = floor.Start
	for floor.Stairs == floor.Start {
		floor.Stairs = Position{X: r.IntRange(0, def.Width-1), Y: r.IntRange(0, def.Height-1)}
	}

	entrance := floor.Room(floor.Start)
	entrance.Kind = RoomEntrance
	entrance.Discovered = true
	entrance.Cleared = true

	stairs := floor.Room(floor.Stairs)
	stairs.Kind = RoomStaircaseDown
	stairs.Cleared = false

	return floor
}

// openCells is the number of cells left after the entrance and stairs.
func (f *Floor) openCells() int {
	return f.Width*f.Height - 2
}

func sprinkleRooms(floor *Floor, def DifficultyDefinition, rules []FloorRoomRule, seed string) {
	r := rng.New(fmt.Sprintf("%s:floor:%d:sprinkle", seed, floor.Index))
	occupied := map[Position]bool{floor.Start: true, floor.Stairs: true}

	hasMonsterRule := false
	for _, rule := range rules {
		if rule.RoomType == RoomMonster && rule.Matches(floor.Index) {
			hasMonsterRule = true
		}
	}
	if !hasMonsterRule && def.EnemyChance > 0 {
		rules = append(append([]FloorRoomRule(nil), rules...), FloorRoomRule{
			Difficulty:  def.Key,
			RoomType:    RoomMonster,
			Chance:      def.EnemyChance,
			MaxPerFloor: floor.openCells(),
		})
	}

	for _, rule := range rules {
		if !rule.Matches(floor.Index) || rule.RoomType.Structural() {
			continue
		}

		limit := rule.MaxPerFloor
		if rule.RoomType == RoomShop && limit > def.NPCCount {
			limit = def.NPCCount
		}
		target := int(math.Round(rule.Chance * float64(floor.openCells())))
		if target > limit {
			target = limit
		}

		for n := 0; n < target; n++ {
			pos, ok := pickFree(r, floor, occupied)
			if !ok {
				continue
			}
			occupied[pos] = true
			placeRoom(r, floor.Room(pos), rule.RoomType, def, floor.Index)
		}
	}
}

func fillBasement(floor *Floor, def DifficultyDefinition, seed string) {
	r := rng.New(fmt.Sprintf("%s:floor:%d:sprinkle", seed, floor.Index))
	occupied := map[Position]bool{floor.Start: true, floor.Stairs: true}

	count := r.IntRange(def.BasementMinRooms, def.BasementMaxRooms)
	for n := 0; n < count; n++ {
		pos, ok := pickFree(r, floor, occupied)
		if !ok {
			continue
		}
		occupied[pos] = true
		placeRoom(r, floor.Room(pos), rng.Pick(r, basementKinds), def, floor.Index)
	}
}

// pickFree draws an unoccupied cell, giving up after a few collisions.
func pickFree(r *rng.Rand, floor *Floor, occupied map[Position]bool) (Position, bool) {
	for attempt := 0; attempt < placementAttempts; attempt++ {
		pos := Position{X: r.IntRange(0, floor.Width-1), Y: r.IntRange(0, floor.Height-1)}
		if !occupied[pos] {
			return pos, true
		}
	}
	return Position{}, false
}

func placeRoom(r *rng.Rand, room *Room, kind RoomKind, def DifficultyDefinition, floorIndex int) {
	room.Kind = kind
	room.Discovered = false
	room.Cleared = kind.ClearedByDefault()
	room.Locked = false
	room.Enemy = nil
	room.Loot = nil
	room.Legend = ""

	switch kind {
	case RoomMonster:
		enemy := scaleEnemy(enemyBase, def, floorIndex)
		room.Enemy = &enemy
	case RoomItem:
		item := rng.Pick(r, lootPool)
		item.ID = lootID(room.Seed, 0)
		room.Loot = []InventoryItem{item}
		room.Cleared = false
	case RoomLocked:
		room.Locked = true
		room.Cleared = false
	case RoomTrap:
		room.Legend = rng.Pick(r, trapLegends)
	case RoomIllusion:
		room.Legend = rng.Pick(r, illusionLegends)
	case RoomShop:
		room.Legend = "A wandering merchant offers wares."
	}
}

func scaleEnemy(base Stats, def DifficultyDefinition, floorIndex int) Stats {
	hp := base.MaxHealth + 6*def.EnemyTier + 4*floorIndex
	return Stats{
		MaxHealth: hp,
		Health:    hp,
		Attack:    base.Attack + 2*def.EnemyTier + floorIndex,
		Defense:   base.Defense + def.EnemyTier,
	}
}

func lootID(roomSeed string, i int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s:loot:%d", roomSeed, i))).String()
}

// ensureKey guarantees that a floor with locked rooms has a quest item
// reachable from the entrance without passing through a locked door.
func ensureKey(floor *Floor, seed string) {
	locked := CountRoomKind(floor, RoomLocked)
	if locked == 0 {
		return
	}

	reachable := reachableWithoutKey(floor)
	for _, pos := range reachable {
		if roomHasQuestItem(floor.Room(pos)) {
			return
		}
	}

	var candidates []Position
	for _, pos := range reachable {
		room := floor.Room(pos)
		if room.Kind == RoomSafe && pos != floor.Start && pos != floor.Stairs {
			candidates = append(candidates, pos)
		}
	}
	if len(candidates) == 0 {
		for _, pos := range reachable {
			if pos != floor.Start && pos != floor.Stairs {
				candidates = append(candidates, pos)
			}
		}
	}
	if len(candidates) == 0 {
		// Nothing open besides the entrance and stairs: the key takes the
		// place of a locked room on the edge of the reachable area.
		candidates = lockedFrontier(floor, reachable)
	}
	if len(candidates) == 0 {
		for _, row := range floor.Rooms {
			for _, room := range row {
				if room.Position != floor.Start && room.Position != floor.Stairs {
					candidates = append(candidates, room.Position)
				}
			}
		}
	}
	if len(candidates) == 0 {
		return
	}

	r := rng.New(fmt.Sprintf("%s:floor:%d:key", seed, floor.Index))
	room := floor.Room(rng.Pick(r, candidates))
	room.Kind = RoomItem
	room.Locked = false
	room.Cleared = false
	room.Enemy = nil
	room.Legend = ""
	room.Loot = []InventoryItem{
		{ID: lootID(room.Seed, 0), Name: "Iron Key", Type: ItemQuest, Quantity: 1},
		{ID: lootID(room.Seed, 1), Name: "Rations", Type: ItemConsumable, Quantity: 1},
	}
}

// lockedFrontier lists locked cells next to the reachable area, in the
// order the area was walked.
func lockedFrontier(floor *Floor, reachable []Position) []Position {
	seen := make(map[Position]bool)
	var out []Position
	for _, pos := range reachable {
		for _, d := range Directions {
			next := d.Step(pos)
			if !floor.InBounds(next) || seen[next] || !floor.Room(next).Locked {
				continue
			}
			seen[next] = true
			out = append(out, next)
		}
	}
	return out
}

func roomHasQuestItem(room *Room) bool {
	for _, item := range room.Loot {
		if item.Type == ItemQuest {
			return true
		}
	}
	return false
}

// reachableWithoutKey lists cells reachable from the entrance without
// entering a locked room, in breadth-first order.
func reachableWithoutKey(floor *Floor) []Position {
	seen := map[Position]bool{floor.Start: true}
	queue := []Position{floor.Start}
	var out []Position

	for len(queue) > 0 {
		pos := queue[0]
		queue = queue[1:]
		out = append(out, pos)

		for _, d := range Directions {
			next := d.Step(pos)
			if !floor.InBounds(next) || seen[next] || floor.Room(next).Locked {
				continue
			}
			seen[next] = true
			queue = append(queue, next)
		}
	}
	return out
}

func placeBoss(floor *Floor, def DifficultyDefinition) {
	room := floor.Room(floor.Stairs)
	enemy := scaleEnemy(bossBase, def, floor.Index)
	room.Kind = RoomBoss
	room.Cleared = false
	room.Locked = false
	room.Loot = nil
	room.Enemy = &enemy
	room.Legend = "A hulking guardian blocks the way down."
}

package engine

import (
	"fmt"
	"strings"
)

const (
	MinGridSize = 3
	MaxGridSize = 50
	MaxFloors   = 10
)

// DifficultyDefinition parameterizes dungeon generation.
type DifficultyDefinition struct {
	Key              string  `json:"key" yaml:"key"`
	Name             string  `json:"name" yaml:"name"`
	Width            int     `json:"width" yaml:"width"`
	Height           int     `json:"height" yaml:"height"`
	MinFloors        int     `json:"minFloors" yaml:"minFloors"`
	MaxFloors        int     `json:"maxFloors" yaml:"maxFloors"`
	MinRooms         int     `json:"minRooms" yaml:"minRooms"`
	EnemyChance      float64 `json:"enemyChance" yaml:"enemyChance"`
	NPCCount         int     `json:"npcCount" yaml:"npcCount"`
	BasementChance   float64 `json:"basementChance" yaml:"basementChance"`
	BasementMinRooms int     `json:"basementMinRooms" yaml:"basementMinRooms"`
	BasementMaxRooms int     `json:"basementMaxRooms" yaml:"basementMaxRooms"`
	EnemyTier        int     `json:"enemyTier" yaml:"enemyTier"`
}

// FloorRoomRule controls how many rooms of one kind are sprinkled on a floor.
// A nil FloorNumber applies to every floor; floor numbers are 1-based.
type FloorRoomRule struct {
	Difficulty  string   `json:"difficulty" yaml:"difficulty"`
	FloorNumber *int     `json:"floorNumber" yaml:"floorNumber"`
	RoomType    RoomKind `json:"roomType" yaml:"roomType"`
	Chance      float64  `json:"chance" yaml:"chance"`
	MaxPerFloor int      `json:"maxPerFloor" yaml:"maxPerFloor"`
}

// Matches reports whether the rule applies to the zero-based floor index.
func (r FloorRoomRule) Matches(floorIndex int) bool {
	return r.FloorNumber == nil || *r.FloorNumber == floorIndex+1
}

// Catalog resolves a difficulty key to its definition and floor rules.
type Catalog interface {
	Difficulty(key string) (DifficultyDefinition, []FloorRoomRule, error)
}

// DifficultyOrder is the display order of the built-in presets.
var DifficultyOrder = []string{"easy", "medium", "hard", "crazy_catto"}

// DefaultDifficulties returns the built-in presets keyed by difficulty.
func DefaultDifficulties() map[string]DifficultyDefinition {
	return map[string]DifficultyDefinition{
		"easy": {
			Key: "easy", Name: "Easy", Width: 10, Height: 10,
			MinFloors: 1, MaxFloors: 1, MinRooms: 50,
			EnemyChance: 0.2, NPCCount: 2,
			BasementChance: 0.1, BasementMinRooms: 3, BasementMaxRooms: 5,
			EnemyTier: 0,
		},
		"medium": {
			Key: "medium", Name: "Medium", Width: 10, Height: 10,
			MinFloors: 1, MaxFloors: 2, MinRooms: 75,
			EnemyChance: 0.25, NPCCount: 3,
			BasementChance: 0.15, BasementMinRooms: 4, BasementMaxRooms: 6,
			EnemyTier: 1,
		},
		"hard": {
			Key: "hard", Name: "Hard", Width: 12, Height: 12,
			MinFloors: 2, MaxFloors: 3, MinRooms: 100,
			EnemyChance: 0.3, NPCCount: 3,
			BasementChance: 0.2, BasementMinRooms: 5, BasementMaxRooms: 8,
			EnemyTier: 2,
		},
		"crazy_catto": {
			Key: "crazy_catto", Name: "Crazy Catto", Width: 12, Height: 12,
			MinFloors: 3, MaxFloors: 4, MinRooms: 125,
			EnemyChance: 0.4, NPCCount: 3,
			BasementChance: 0.25, BasementMinRooms: 6, BasementMaxRooms: 10,
			EnemyTier: 3,
		},
	}
}

func floorNumber(n int) *int { return &n }

// DefaultFloorRules returns the built-in room placement rules.
func DefaultFloorRules() []FloorRoomRule {
	return []FloorRoomRule{
		{Difficulty: "easy", FloorNumber: floorNumber(1), RoomType: RoomSafe, Chance: 0.5, MaxPerFloor: 20},
		{Difficulty: "easy", FloorNumber: floorNumber(1), RoomType: RoomMonster, Chance: 0.3, MaxPerFloor: 10},
		{Difficulty: "easy", FloorNumber: floorNumber(1), RoomType: RoomItem, Chance: 0.1, MaxPerFloor: 5},
		{Difficulty: "easy", FloorNumber: floorNumber(1), RoomType: RoomLocked, Chance: 0.05, MaxPerFloor: 2},
		{Difficulty: "easy", RoomType: RoomTrap, Chance: 0.04, MaxPerFloor: 3},
		{Difficulty: "easy", RoomType: RoomIllusion, Chance: 0.03, MaxPerFloor: 2},
		{Difficulty: "easy", RoomType: RoomShop, Chance: 0.02, MaxPerFloor: 2},
		{Difficulty: "easy", RoomType: RoomBoss, Chance: 0, MaxPerFloor: 1},

		{Difficulty: "medium", RoomType: RoomMonster, Chance: 0.25, MaxPerFloor: 12},
		{Difficulty: "medium", RoomType: RoomItem, Chance: 0.08, MaxPerFloor: 5},
		{Difficulty: "medium", RoomType: RoomLocked, Chance: 0.04, MaxPerFloor: 2},
		{Difficulty: "medium", RoomType: RoomTrap, Chance: 0.05, MaxPerFloor: 4},
		{Difficulty: "medium", RoomType: RoomIllusion, Chance: 0.03, MaxPerFloor: 2},
		{Difficulty: "medium", RoomType: RoomShop, Chance: 0.03, MaxPerFloor: 3},
		{Difficulty: "medium", RoomType: RoomBoss, Chance: 0, MaxPerFloor: 1},

		{Difficulty: "hard", RoomType: RoomMonster, Chance: 0.3, MaxPerFloor: 15},
		{Difficulty: "hard", RoomType: RoomItem, Chance: 0.06, MaxPerFloor: 4},
		{Difficulty: "hard", RoomType: RoomLocked, Chance: 0.05, MaxPerFloor: 3},
		{Difficulty: "hard", RoomType: RoomTrap, Chance: 0.06, MaxPerFloor: 5},
		{Difficulty: "hard", RoomType: RoomIllusion, Chance: 0.04, MaxPerFloor: 3},
		{Difficulty: "hard", RoomType: RoomShop, Chance: 0.02, MaxPerFloor: 3},
		{Difficulty: "hard", RoomType: RoomBoss, Chance: 0, MaxPerFloor: 1},

		{Difficulty: "crazy_catto", RoomType: RoomMonster, Chance: 0.4, MaxPerFloor: 20},
		{Difficulty: "crazy_catto", RoomType: RoomItem, Chance: 0.05, MaxPerFloor: 3},
		{Difficulty: "crazy_catto", RoomType: RoomLocked, Chance: 0.05, MaxPerFloor: 3},
		{Difficulty: "crazy_catto", RoomType: RoomTrap, Chance: 0.08, MaxPerFloor: 6},
		{Difficulty: "crazy_catto", RoomType: RoomIllusion, Chance: 0.05, MaxPerFloor: 3},
		{Difficulty: "crazy_catto", RoomType: RoomShop, Chance: 0.02, MaxPerFloor: 3},
		{Difficulty: "crazy_catto", RoomType: RoomBoss, Chance: 0, MaxPerFloor: 1},
	}
}

// RulesFor filters rules down to one difficulty.
func RulesFor(rules []FloorRoomRule, key string) []FloorRoomRule {
	var out []FloorRoomRule
	for _, r := range rules {
		if r.Difficulty == key {
			out = append(out, r)
		}
	}
	return out
}

// ValidateDifficulty checks a definition and its rules for generatable values.
func ValidateDifficulty(def DifficultyDefinition, rules []FloorRoomRule) error {
	if strings.TrimSpace(def.Key) == "" {
		return fmt.Errorf("difficulty validation: key is required")
	}
	if def.Name == "" {
		return fmt.Errorf("difficulty validation: name is required for %q", def.Key)
	}
	if def.Width < MinGridSize || def.Width > MaxGridSize {
		return fmt.Errorf("difficulty validation: width must be between %d and %d, got %d", MinGridSize, MaxGridSize, def.Width)
	}
	if def.Height < MinGridSize || def.Height > MaxGridSize {
		return fmt.Errorf("difficulty validation: height must be between %d and %d, got %d", MinGridSize, MaxGridSize, def.Height)
	}
	if def.MinFloors < 1 || def.MaxFloors > MaxFloors || def.MinFloors > def.MaxFloors {
		return fmt.Errorf("difficulty validation: floors must satisfy 1 <= minFloors (%d) <= maxFloors (%d) <= %d",
			def.MinFloors, def.MaxFloors, MaxFloors)
	}
	if def.MinRooms < 0 {
		return fmt.Errorf("difficulty validation: minRooms must not be negative, got %d", def.MinRooms)
	}
	if def.EnemyChance < 0 || def.EnemyChance > 1 {
		return fmt.Errorf("difficulty validation: enemyChance must be within [0,1], got %v", def.EnemyChance)
	}
	if def.BasementChance < 0 || def.BasementChance > 1 {
		return fmt.Errorf("difficulty validation: basementChance must be within [0,1], got %v", def.BasementChance)
	}
	if def.NPCCount < 0 || def.EnemyTier < 0 {
		return fmt.Errorf("difficulty validation: npcCount and enemyTier must not be negative")
	}
	if def.BasementMinRooms < 0 || def.BasementMinRooms > def.BasementMaxRooms {
		return fmt.Errorf("difficulty validation: basement rooms must satisfy 0 <= min (%d) <= max (%d)",
			def.BasementMinRooms, def.BasementMaxRooms)
	}

	for i, r := range rules {
		if r.Difficulty != "" && r.Difficulty != def.Key {
			return fmt.Errorf("difficulty validation: rule %d belongs to %q, not %q", i+1, r.Difficulty, def.Key)
		}
		if !r.RoomType.Valid() {
			return fmt.Errorf("difficulty validation: rule %d has unknown room type %q", i+1, r.RoomType)
		}
		if r.Chance < 0 || r.Chance > 1 {
			return fmt.Errorf("difficulty validation: rule %d chance must be within [0,1], got %v", i+1, r.Chance)
		}
		if r.MaxPerFloor < 0 {
			return fmt.Errorf("difficulty validation: rule %d maxPerFloor must not be negative", i+1)
		}
		if r.FloorNumber != nil && *r.FloorNumber < 1 {
			return fmt.Errorf("difficulty validation: rule %d floorNumber is 1-based, got %d", i+1, *r.FloorNumber)
		}
	}
	return nil
}

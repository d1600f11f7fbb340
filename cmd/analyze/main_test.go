package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/dungeon-run-game/game/config"
	"github.com/wricardo/dungeon-run-game/game/engine"
)

func TestAnalyzeDifficulty(t *testing.T) {
	defs := engine.DefaultDifficulties()
	rules := engine.DefaultFloorRules()

	for _, key := range engine.DifficultyOrder {
		t.Run(key, func(t *testing.T) {
			def := defs[key]
			report := analyzeDifficulty(def, engine.RulesFor(rules, key), 50)

			assert.Equal(t, 50, report.Runs)
			assert.Empty(t, report.Unsolvable)

			total := 0
			for floors, n := range report.FloorCounts {
				assert.GreaterOrEqual(t, floors, def.MinFloors)
				assert.LessOrEqual(t, floors, def.MaxFloors)
				total += n
			}
			assert.Equal(t, 50, total)

			// Every floor has exactly one entrance.
			assert.Equal(t, report.Floors, report.RoomKinds[engine.RoomEntrance])
			assert.Greater(t, report.TotalDistance, 0)
		})
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	def := engine.DefaultDifficulties()["hard"]
	rules := engine.RulesFor(engine.DefaultFloorRules(), "hard")

	assert.Equal(t, analyzeDifficulty(def, rules, 20), analyzeDifficulty(def, rules, 20))
}

func TestPrintReport(t *testing.T) {
	report := Report{
		Difficulty:    engine.DifficultyDefinition{Key: "tiny", Name: "Tiny", Width: 4, Height: 4, MinRooms: 10, BasementChance: 0.5},
		Runs:          4,
		FloorCounts:   map[int]int{1: 3, 2: 1},
		Basements:     2,
		Floors:        7,
		RoomKinds:     map[engine.RoomKind]int{engine.RoomEntrance: 7, engine.RoomMonster: 14},
		LockedFloors:  3,
		Unsolvable:    []string{"seed-1 floor 2"},
		TotalDistance: 21,
	}

	var out bytes.Buffer
	printReport(&out, report)
	text := out.String()

	assert.Contains(t, text, "Grid Size: 4 x 4 (14 open cells, minRooms 10)")
	assert.Contains(t, text, "  1 main floor(s): 3\n  2 main floor(s): 1")
	assert.Contains(t, text, "Basements: 2 (50.0%, configured 50%)")
	assert.Contains(t, text, "Average entrance-to-stairs distance: 3.0")
	assert.Contains(t, text, "monster")
	assert.Contains(t, text, "2.00")
	assert.Contains(t, text, "CRITICAL: 1 of 3 locked floors")
	assert.Contains(t, text, "seed-1 floor 2")
}

func TestRun(t *testing.T) {
	manager, err := config.NewManager("")
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, run(&out, manager, "", 5))
	for _, key := range engine.DifficultyOrder {
		assert.Contains(t, out.String(), "=== Analyzing "+key+" ===")
	}

	out.Reset()
	require.NoError(t, run(&out, manager, "medium", 5))
	assert.Equal(t, 1, strings.Count(out.String(), "=== Analyzing"))
	assert.Contains(t, out.String(), "Name: Medium")
}

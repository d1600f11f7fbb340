// Package config provides the difficulty catalog for the Dungeon Run game.
//
// The config package handles:
//   - The built-in difficulty presets and their floor rules
//   - Loading difficulty overrides from YAML or JSON files
//   - Validation of every override before it is served
//
// Override Format:
//
// Each file in the override directory defines one difficulty. A file whose
// key matches a preset replaces that preset; its rules replace the preset's
// rules only when the file lists any.
//
//	key: nightmare
//	name: Nightmare
//	width: 14
//	height: 14
//	minFloors: 3
//	maxFloors: 5
//	enemyChance: 0.45
//	npcCount: 2
//	basementChance: 0.3
//	basementMinRooms: 6
//	basementMaxRooms: 12
//	enemyTier: 4
//	rules:
//	  - roomType: monster
//	    chance: 0.4
//	    maxPerFloor: 30
//
// Usage:
//
//	manager, err := config.NewManager("difficulties")
//	if err != nil {
//		log.Fatal(err)
//	}
//	eng := engine.NewEngine(manager)
package config

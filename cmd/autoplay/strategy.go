package main

import (
	"errors"

	"github.com/wricardo/dungeon-run-game/game/engine"
	"github.com/wricardo/dungeon-run-game/game/service"
)

// ErrStuck means no move can make progress on the current floor.
var ErrStuck = errors.New("no path forward")

type floorCell struct {
	floor int
	pos   engine.Position
}

// Strategy heads for the stairs of the player's floor and explores
// undiscovered rooms when the stairs are out of reach.
type Strategy struct {
	blocked map[floorCell]bool
}

// NewStrategy creates a strategy with no refused cells.
func NewStrategy() *Strategy {
	return &Strategy{blocked: make(map[floorCell]bool)}
}

// Block marks a cell the server refused to let us enter.
func (s *Strategy) Block(floor int, pos engine.Position) {
	s.blocked[floorCell{floor, pos}] = true
}

// Reset forgets refused cells, e.g. after a key was picked up.
func (s *Strategy) Reset() {
	s.blocked = make(map[floorCell]bool)
}

// NextMove picks the direction for playerID.
func (s *Strategy) NextMove(state *service.SessionState, playerID string) (engine.Direction, error) {
	me := findPlayer(state, playerID)
	if me == nil || me.Floor >= len(state.Dungeon.Floors) {
		return "", ErrStuck
	}
	floor := &state.Dungeon.Floors[me.Floor]
	hasKey := holdsKey(me.Inventory)

	passable := func(p engine.Position) bool {
		if p.X < 0 || p.Y < 0 || p.X >= floor.Width || p.Y >= floor.Height {
			return false
		}
		if s.blocked[floorCell{me.Floor, p}] {
			return false
		}
		return !floor.Rooms[p.Y][p.X].Locked || hasKey
	}

	// Standing on stairs that did not take us down means the guardian is
	// still alive. Step off and come back only while we can still fight.
	if me.Position == floor.Stairs {
		if me.Health <= 0 {
			return "", ErrStuck
		}
		for _, dir := range engine.Directions {
			if passable(dir.Step(me.Position)) {
				return dir, nil
			}
		}
		return "", ErrStuck
	}

	if path := bfs(me.Position, passable, func(p engine.Position) bool { return p == floor.Stairs }); len(path) > 0 {
		return path[0], nil
	}

	unexplored := func(p engine.Position) bool { return !floor.Rooms[p.Y][p.X].Discovered }
	if path := bfs(me.Position, passable, unexplored); len(path) > 0 {
		return path[0], nil
	}
	return "", ErrStuck
}

func bfs(start engine.Position, passable, goal func(engine.Position) bool) []engine.Direction {
	type queueItem struct {
		pos  engine.Position
		path []engine.Direction
	}

	queue := []queueItem{{pos: start}}
	visited := map[engine.Position]bool{start: true}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, dir := range engine.Directions {
			next := dir.Step(current.pos)
			if visited[next] || !passable(next) {
				continue
			}

			path := append(append([]engine.Direction{}, current.path...), dir)
			if goal(next) {
				return path
			}

			visited[next] = true
			queue = append(queue, queueItem{pos: next, path: path})
		}
	}
	return nil
}

func findPlayer(state *service.SessionState, playerID string) *service.PlayerState {
	for i := range state.Players {
		if state.Players[i].ID == playerID {
			return &state.Players[i]
		}
	}
	return nil
}

func holdsKey(items []engine.InventoryItem) bool {
	for _, item := range items {
		if item.Type == engine.ItemQuest {
			return true
		}
	}
	return false
}

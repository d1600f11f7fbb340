package engine

import (
	"fmt"
	"strings"
)

// Direction is one of the four compass moves.
type Direction string

const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
)

// Directions lists the valid moves in a fixed order.
var Directions = []Direction{North, South, East, West}

// ParseDirection normalizes user input into a Direction.
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	switch d {
	case North, South, East, West:
		return d, nil
	}
	return "", fmt.Errorf("%w: invalid direction %q (use north, south, east or west)", ErrInvalidArgument, s)
}

// Step returns the position one cell away from p in direction d.
func (d Direction) Step(p Position) Position {
	switch d {
	case North:
		p.Y--
	case South:
		p.Y++
	case East:
		p.X++
	case West:
		p.X--
	}
	return p
}

// DescribeRoom returns the phrase used in "moved <dir> and found ..." events.
func DescribeRoom(room *Room) string {
	switch room.Kind {
	case RoomEntrance:
		return "the dungeon entrance"
	case RoomMonster:
		if room.Cleared {
			return "the remains of a defeated foe"
		}
		return "a hostile creature blocks the path"
	case RoomItem:
		if len(room.Loot) == 0 {
			return "an emptied treasure chest"
		}
		return "a gleaming treasure chest awaits"
	case RoomLocked:
		return "a locked door stands in your way"
	case RoomStaircaseDown:
		return "a staircase descends to the next floor"
	case RoomStaircaseUp:
		return "a staircase leads back up"
	case RoomExit:
		return "the way out"
	case RoomBoss:
		if room.Cleared {
			return "the guardian's empty chamber"
		}
		return "a powerful foe defends this chamber"
	case RoomShop:
		return "a wandering merchant offers wares"
	case RoomTrap:
		if room.Cleared {
			return "a sprung trap"
		}
		return "an eerily quiet chamber"
	case RoomIllusion:
		return "a shimmering illusion"
	default:
		return "quiet stone corridors stretch forward"
	}
}

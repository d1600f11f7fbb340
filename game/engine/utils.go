package engine

func clamp(value, min, max int) int {
	if value < min {
		value = min
	}
	if value > max {
		value = max
	}
	return value
}

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	dx := from.X - to.X
	if dx < 0 {
		dx = -dx
	}
	dy := from.Y - to.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// CountRoomKind counts the rooms of a specific kind on a floor
func CountRoomKind(floor *Floor, kind RoomKind) int {
	count := 0
	for _, row := range floor.Rooms {
		for _, room := range row {
			if room.Kind == kind {
				count++
			}
		}
	}
	return count
}

// RoomKindHistogram counts every room kind on a floor
func RoomKindHistogram(floor *Floor) map[RoomKind]int {
	counts := make(map[RoomKind]int)
	for _, row := range floor.Rooms {
		for _, room := range row {
			counts[room.Kind]++
		}
	}
	return counts
}

// KeyReachable reports whether a quest item lies on a cell reachable from the
// entrance without passing a locked door.
func KeyReachable(floor *Floor) bool {
	for _, pos := range reachableWithoutKey(floor) {
		if roomHasQuestItem(floor.Room(pos)) {
			return true
		}
	}
	return false
}

// QuestItemOnFloor reports whether any item room on the floor holds a quest item.
func QuestItemOnFloor(floor *Floor) bool {
	for _, row := range floor.Rooms {
		for _, room := range row {
			if room.Kind == RoomItem && roomHasQuestItem(room) {
				return true
			}
		}
	}
	return false
}

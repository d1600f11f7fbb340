package engine

// Clone returns a deep copy of the session that shares no memory with s.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Players = make([]*Player, len(s.Players))
	for i, p := range s.Players {
		out.Players[i] = p.Clone()
	}
	out.TurnOrder = append([]string(nil), s.TurnOrder...)
	out.Log = append([]string(nil), s.Log...)
	out.Dungeon = s.Dungeon.Clone()
	return &out
}

// Clone returns a deep copy of the player.
func (p *Player) Clone() *Player {
	if p == nil {
		return nil
	}
	out := *p
	out.Inventory = append([]InventoryItem{}, p.Inventory...)
	return &out
}

// Clone returns a deep copy of the dungeon.
func (d *Dungeon) Clone() *Dungeon {
	if d == nil {
		return nil
	}
	out := *d
	out.Floors = make([]*Floor, len(d.Floors))
	for i, f := range d.Floors {
		floor := *f
		floor.Rooms = make([][]*Room, len(f.Rooms))
		for y, row := range f.Rooms {
			floor.Rooms[y] = make([]*Room, len(row))
			for x, room := range row {
				floor.Rooms[y][x] = room.Clone()
			}
		}
		out.Floors[i] = &floor
	}
	return &out
}

// Clone returns a deep copy of the room.
func (r *Room) Clone() *Room {
	if r == nil {
		return nil
	}
	out := *r
	if r.Enemy != nil {
		enemy := *r.Enemy
		out.Enemy = &enemy
	}
	if r.Loot != nil {
		out.Loot = append([]InventoryItem(nil), r.Loot...)
	}
	return &out
}

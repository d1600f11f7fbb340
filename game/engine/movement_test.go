package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirection(t *testing.T) {
	tests := []struct {
		input    string
		expected Direction
		wantErr  bool
	}{
		{"north", North, false},
		{"South", South, false},
		{" EAST ", East, false},
		{"west", West, false},
		{"up", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d, err := ParseDirection(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d)
		})
	}
}

func TestDirection_Step(t *testing.T) {
	origin := Position{X: 3, Y: 3}

	assert.Equal(t, Position{X: 3, Y: 2}, North.Step(origin))
	assert.Equal(t, Position{X: 3, Y: 4}, South.Step(origin))
	assert.Equal(t, Position{X: 4, Y: 3}, East.Step(origin))
	assert.Equal(t, Position{X: 2, Y: 3}, West.Step(origin))
}

func TestDescribeRoom(t *testing.T) {
	tests := []struct {
		name     string
		room     Room
		expected string
	}{
		{"safe", Room{Kind: RoomSafe, Cleared: true}, "quiet stone corridors stretch forward"},
		{"live monster", Room{Kind: RoomMonster}, "a hostile creature blocks the path"},
		{"defeated monster", Room{Kind: RoomMonster, Cleared: true}, "the remains of a defeated foe"},
		{"full chest", Room{Kind: RoomItem, Loot: []InventoryItem{{Name: "Potion"}}}, "a gleaming treasure chest awaits"},
		{"empty chest", Room{Kind: RoomItem, Cleared: true}, "an emptied treasure chest"},
		{"locked", Room{Kind: RoomLocked, Locked: true}, "a locked door stands in your way"},
		{"stairs", Room{Kind: RoomStaircaseDown}, "a staircase descends to the next floor"},
		{"boss", Room{Kind: RoomBoss}, "a powerful foe defends this chamber"},
		{"shop", Room{Kind: RoomShop, Cleared: true}, "a wandering merchant offers wares"},
		{"armed trap", Room{Kind: RoomTrap}, "an eerily quiet chamber"},
		{"sprung trap", Room{Kind: RoomTrap, Cleared: true}, "a sprung trap"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DescribeRoom(&tt.room))
		})
	}
}

func TestManhattanDistance(t *testing.T) {
	assert.Equal(t, 0, ManhattanDistance(Position{X: 1, Y: 1}, Position{X: 1, Y: 1}))
	assert.Equal(t, 7, ManhattanDistance(Position{X: 0, Y: 0}, Position{X: 3, Y: 4}))
	assert.Equal(t, 7, ManhattanDistance(Position{X: 3, Y: 4}, Position{X: 0, Y: 0}))
}

package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capacities возвращает callback, который выдаёт ёмкости контейнеров по порядку.
func capacities(t *testing.T, values ...int) func() int {
	t.Helper()
	i := 0
	return func() int {
		require.Less(t, i, len(values), "unexpected capacity draw")
		v := values[i]
		i++
		return v
	}
}

func TestNewZone_SlotIDsAcrossRooms(t *testing.T) {
	rooms := []RoomSlots{
		{Container: 1, SmallPickup: 2},
		{Container: 2, SmallPickup: 1},
	}
	z := NewZone(ZoneID{Zone: 7}, rooms, capacities(t, 2, 3, 2))

	assert.Equal(t, ZoneID{Zone: 7}, z.ID())
	assert.Equal(t, 7, z.Remaining(Container))
	assert.Equal(t, 3, z.Remaining(SmallPickup))
	assert.True(t, z.Empty(BigPickup))

	// первые три draw 0 забирают слоты комнаты 0 по порядку
	ids := make([]int, 0, 3)
	for range 3 {
		id, ok := z.Spawn(Weights{}, SmallPickup, 0, false)
		require.True(t, ok)
		ids = append(ids, id)
	}
	assert.Equal(t, []int{0, 1, 2}, ids)
	assert.True(t, z.Empty(SmallPickup))
}

func TestZone_SpawnBoundaries(t *testing.T) {
	rooms := []RoomSlots{{BigPickup: 2}, {BigPickup: 2}, {BigPickup: 2}}

	t.Run("zero draw selects the first slot", func(t *testing.T) {
		z := NewZone(ZoneID{}, rooms, nil)
		id, ok := z.Spawn(Weights{}, BigPickup, 0, false)
		require.True(t, ok)
		assert.Equal(t, 0, id)
	})

	t.Run("top draw selects the last slot", func(t *testing.T) {
		z := NewZone(ZoneID{}, rooms, nil)
		id, ok := z.Spawn(Weights{}, BigPickup, 0.9999, false)
		require.True(t, ok)
		assert.Equal(t, 5, id)
	})
}

func TestZone_SpawnPrunesExhaustedSlots(t *testing.T) {
	z := NewZone(ZoneID{}, []RoomSlots{{BigPickup: 1}, {BigPickup: 1}}, nil)

	id, ok := z.Spawn(Weights{}, BigPickup, 0, false)
	require.True(t, ok)
	assert.Equal(t, 0, id)

	// room 0 is empty now, so a zero draw lands in room 1
	id, ok = z.Spawn(Weights{}, BigPickup, 0, false)
	require.True(t, ok)
	assert.Equal(t, 1, id)

	_, ok = z.Spawn(Weights{}, BigPickup, 0, false)
	assert.False(t, ok)
	assert.Equal(t, 0, z.Remaining(BigPickup))
}

func TestZone_SpawnWalkCapacity(t *testing.T) {
	rooms := []RoomSlots{{Container: 2}}

	t.Run("slot count", func(t *testing.T) {
		z := NewZone(ZoneID{}, rooms, capacities(t, 3, 2))
		id, ok := z.Spawn(Weights{}, Container, 0.5, false)
		require.True(t, ok)
		assert.Equal(t, 1, id)
	})

	t.Run("walk", func(t *testing.T) {
		z := NewZone(ZoneID{}, rooms, capacities(t, 3, 2))
		id, ok := z.Spawn(Weights{}, Container, 0.5, true)
		require.True(t, ok)
		assert.Equal(t, 0, id)

		// int(0.9*4) = 3 walks past slot 0 (2 left) into slot 1
		id, ok = z.Spawn(Weights{}, Container, 0.9, true)
		require.True(t, ok)
		assert.Equal(t, 1, id)
		assert.Equal(t, 3, z.Remaining(Container))
	})
}

func TestZone_ContainerCapacity(t *testing.T) {
	z := NewZone(ZoneID{}, []RoomSlots{{Container: 1}}, capacities(t, 3))

	for i := range 3 {
		id, ok := z.Spawn(Weights{}, Container, 0.5, false)
		require.True(t, ok, "placement %d", i)
		assert.Equal(t, 0, id)
	}

	_, ok := z.Spawn(Weights{}, Container, 0.5, false)
	assert.False(t, ok)
}

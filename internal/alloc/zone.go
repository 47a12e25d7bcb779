package alloc

// RoomSlots is the number of slots a room offers per category.
type RoomSlots [categoryCount]int

type slot struct {
	id        int
	remaining int
}

// Zone tracks the remaining placement capacity of one zone.
// Slot ids are numbered per category across rooms in room order.
type Zone struct {
	id    ZoneID
	rooms [categoryCount][][]slot
}

// NewZone builds zone state. capacity is called once per container slot, in
// room order, to draw that slot's starting capacity; every other category
// starts at one placement per slot.
func NewZone(id ZoneID, rooms []RoomSlots, capacity func() int) *Zone {
	z := &Zone{id: id}

	for c := range categoryCount {
		next := 0
		z.rooms[c] = make([][]slot, len(rooms))
		for r, room := range rooms {
			slots := make([]slot, 0, room[c])
			for i := 0; i < room[c]; i++ {
				remaining := 1
				if Category(c) == Container && capacity != nil {
					remaining = capacity()
				}
				slots = append(slots, slot{id: next, remaining: remaining})
				next++
			}
			z.rooms[c][r] = slots
		}
	}

	return z
}

// ID returns the zone identifier.
func (z *Zone) ID() ZoneID {
	return z.id
}

// Remaining returns the summed remaining capacity of a category.
func (z *Zone) Remaining(c Category) int {
	total := 0
	for _, room := range z.rooms[c] {
		for _, s := range room {
			total += s.remaining
		}
	}
	return total
}

// Empty reports whether no room has a slot of category c left.
func (z *Zone) Empty(c Category) bool {
	for _, room := range z.rooms[c] {
		if len(room) > 0 {
			return false
		}
	}
	return true
}

// Spawn selects a slot for draw, decrements its capacity and prunes it when
// exhausted. Rooms are weighted by their live slot count. With walk set the
// in-room index spans the room's summed capacity and is walked slot by slot.
// ok is false when the category is exhausted.
func (z *Zone) Spawn(w Weights, c Category, draw float32, walk bool) (id int, ok bool) {
	rooms := z.rooms[c]

	counts := make([]int, len(rooms))
	for i, room := range rooms {
		counts[i] = len(room)
	}

	cum := Distribution(counts, w)
	room := PickRoom(draw, cum, counts)
	if room < 0 {
		return 0, false
	}

	slots := rooms[room]
	if walk {
		capacity := 0
		for _, s := range slots {
			capacity += s.remaining
		}
		idx := inRoomIndex(draw, cum, room, capacity)
		for i := range slots {
			if idx < slots[i].remaining {
				id = z.take(c, room, i)
				return id, true
			}
			idx -= slots[i].remaining
		}
		// capacity accounting guarantees a hit; fall back to the last slot
		return z.take(c, room, len(slots)-1), true
	}

	idx := inRoomIndex(draw, cum, room, len(slots))
	return z.take(c, room, idx), true
}

func (z *Zone) take(c Category, room, idx int) int {
	slots := z.rooms[c][room]
	s := &slots[idx]
	s.remaining--
	id := s.id

	if s.remaining <= 0 {
		z.rooms[c][room] = append(slots[:idx], slots[idx+1:]...)
	}
	return id
}

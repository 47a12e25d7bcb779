package alloc

// Multipliers returns the start/middle/end emphasis of a room at index room
// in a zone of rooms rooms. The curve is symmetric: the first half fades from
// start to middle, the second half mirrors it with start and end swapped.
func Multipliers(room, rooms int) [3]float32 {
	if room*2 == rooms-1 {
		return [3]float32{0, 1, 0}
	}

	half := rooms / 2
	if room < half {
		a := float32(half)
		start := float32((a - float32(room)) / a)
		return [3]float32{start, float32(1 - start), 0}
	}

	m := Multipliers(rooms-room-1, rooms)
	m[0], m[2] = m[2], m[0]
	return m
}

// roomWeight is 1 + dot(multipliers, weights) scaled by the number of
// available slots in the room.
func roomWeight(room, rooms, slots int, w Weights) float32 {
	m := Multipliers(room, rooms)

	v := float32(m[0] * float32(w[0]))
	v = float32(v + float32(m[1]*float32(w[1])))
	v = float32(v + float32(m[2]*float32(w[2])))
	v = float32(v + 1)
	return float32(v * float32(slots))
}

// Distribution returns the cumulative probability mass per room for the given
// per-room slot counts. Rooms without slots get zero mass.
func Distribution(counts []int, w Weights) []float32 {
	weights := make([]float32, len(counts))
	var total float32
	for i, n := range counts {
		weights[i] = roomWeight(i, len(counts), n, w)
		total = float32(total + weights[i])
	}

	cum := make([]float32, len(counts))
	if total <= 0 {
		return cum
	}
	for i := range weights {
		cum[i] = float32(weights[i] / total)
		if i > 0 {
			cum[i] = float32(cum[i] + cum[i-1])
		}
	}
	return cum
}

// PickRoom returns the first room with slots whose cumulative mass reaches
// draw. Draws beyond the last boundary clamp to the last room with slots.
// It returns -1 when no room has slots.
func PickRoom(draw float32, cum []float32, counts []int) int {
	last := -1
	for i, c := range cum {
		if counts[i] == 0 {
			continue
		}
		last = i
		if draw <= c {
			return i
		}
	}
	return last
}

// inRoomIndex maps draw to an index inside the band of room.
func inRoomIndex(draw float32, cum []float32, room, size int) int {
	var prev float32
	if room > 0 {
		prev = cum[room-1]
	}
	band := float32(cum[room] - prev)
	if band <= 0 {
		return 0
	}
	percent := float32(float32(draw-prev) / band)
	idx := int(float32(percent * float32(size)))
	if idx >= size {
		idx = size - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

// PickIndex selects a slot over static per-room slot counts without mutating
// anything. It returns the chosen room and the zone-wide slot index, which is
// the in-room index offset by the slots of all previous rooms.
func PickIndex(draw float32, counts []int, w Weights) (room, index int) {
	cum := Distribution(counts, w)
	room = PickRoom(draw, cum, counts)
	if room < 0 {
		return -1, -1
	}

	offset := 0
	for i := 0; i < room; i++ {
		offset += counts[i]
	}
	return room, offset + inRoomIndex(draw, cum, room, counts[room])
}

// Uniform maps draw onto one of n equally likely choices, clamped to the
// last one. It returns -1 when n is zero.
func Uniform(draw float32, n int) int {
	if n <= 0 {
		return -1
	}
	idx := int(float32(draw * float32(n)))
	if idx >= n {
		idx = n - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

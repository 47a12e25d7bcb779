package consumer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/gtfoseed/internal/alloc"
	"github.com/udisondev/gtfoseed/internal/event"
	"github.com/udisondev/gtfoseed/internal/random"
	"github.com/udisondev/gtfoseed/internal/testutil"
)

func keyID(name string, zone int32, rooms ...int) KeyID {
	return KeyID{Name: name, Zone: zone, SpawnsPerRoom: rooms}
}

// Каждый вариант обязан потреблять ровно документированное число draws,
// независимо от их значений.
func TestDrawCounts(t *testing.T) {
	tests := []struct {
		name     string
		consumer Consumer
		want     int
	}{
		{"ignore zero", Ignore{}, 0},
		{"ignore", Ignore{Count: 5}, 5},
		{"output seed", OutputSeed{}, 1},
		{"key id", keyID("Key", 1, 2, 3), 1},
		{"empty resource", ResourceGeneration{Kind: event.Healthpack}, 0},
		{"colored key", Key{Type: ColoredKey, Zones: []KeyID{keyID("K", 1, 1)}}, 4},
		{"bulkhead key", Key{Type: BulkheadKey, Zones: []KeyID{keyID("K", 1, 1)}}, 3},
		{"other key", Key{Type: OtherKey, Zones: []KeyID{keyID("K", 1, 1)}}, 2},
		{"empty zone", Zone{ArtifactCount: 2, ConsumableInContainer: 1, ConsumableInWorldspawn: 3}, 7},
		{"objective", Objective{Groups: [][]KeyID{{keyID("A", 1, 1)}, {keyID("B", 2, 1), keyID("C", 3, 2)}}}, 4},
		{"consumable", Consumable{Tracked: []int32{1}, TotalContainers: 10, Count: 3}, 6},
		{"choice wrapper", ChoiceWrapper{
			Choices:   [][]KeyID{{keyID("A", 1, 1)}, {keyID("B", 2, 1)}},
			Consumers: Chain{Ignore{Count: 2}, OutputSeed{}},
		}, 7},
		{"chain", Chain{Ignore{Count: 1}, OutputSeed{}, keyID("K", 1, 4)}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, seed := range []int32{0, 1, 732336958, -5} {
				src := testutil.NewCountingSource(random.New(seed))
				require.NoError(t, tt.consumer.Take(src, event.Discard))
				assert.Equal(t, tt.want, src.Count(), "seed %d", seed)
			}
		})
	}
}

func TestResourceGeneration_DrawsPerIteration(t *testing.T) {
	for _, seed := range []int32{3, 17, 99, 732336958} {
		src := testutil.NewCountingSource(random.New(seed))
		rec := event.NewRecorder(4)
		track := keyID("", 0, 4, 6)
		c := ResourceGeneration{Left: 1, Kind: event.Ammopack, Zone: 5, Track: &track}

		require.NoError(t, c.Take(src, rec))
		require.Positive(t, rec.Len())
		assert.Equal(t, 3*rec.Len(), src.Count(), "three draws per reported pack")

		for _, e := range rec.Events() {
			assert.Equal(t, event.KindResourcePack, e.Kind)
			assert.Equal(t, event.Ammopack, e.Resource)
			assert.Equal(t, int32(5), e.Zone)
			assert.Less(t, e.Slot, int32(10))
		}
	}
}

func TestResourceGeneration_Untracked(t *testing.T) {
	src := testutil.Sequence(t, 0, 0.5, 0)
	rec := event.NewRecorder(0)

	require.NoError(t, ResourceGeneration{Left: 1, Kind: event.Healthpack}.Take(src, rec))
	assert.Equal(t, 3, src.Consumed())
	assert.Zero(t, rec.Len())
}

func TestOutputSeed(t *testing.T) {
	rec := event.NewRecorder(1)
	require.NoError(t, OutputSeed{}.Take(testutil.Constant(0.25), rec))
	assert.Equal(t, []event.Event{event.Seed(0.25)}, rec.Events())
}

func TestKeyID_Offset(t *testing.T) {
	rec := event.NewRecorder(1)
	require.NoError(t, keyID("ColoredKey", 12, 2, 3).Take(testutil.Constant(0.5), rec))
	assert.Equal(t, []event.Event{event.Key("ColoredKey", 12, 2)}, rec.Events())
}

func TestKeyID_Weights(t *testing.T) {
	k := KeyID{Name: "K", Zone: 1, Weights: alloc.Weights{0, 0, 10}, SpawnsPerRoom: []int{1, 1, 1}}

	id, err := k.ID(0.2)
	require.NoError(t, err)
	assert.Equal(t, 2, id, "end weight pulls mass to the last room")
}

func TestKey_PicksZone(t *testing.T) {
	c := Key{Type: ColoredKey, Zones: []KeyID{keyID("K", 1, 1), keyID("K", 2, 1)}}
	// два пропуска, pick 0.75 -> вторая зона, затем slot
	src := testutil.Sequence(t, 0.1, 0.1, 0.75, 0)
	rec := event.NewRecorder(1)

	require.NoError(t, c.Take(src, rec))
	assert.Equal(t, []event.Event{event.Key("K", 2, 0)}, rec.Events())
	assert.Zero(t, src.Remaining())
}

func TestConsumable_Found(t *testing.T) {
	c := Consumable{Tracked: []int32{0, 1}, TotalContainers: 2, Count: 2}
	src := testutil.Sequence(t, 0.1, 0.9, 0.2, 0.9)
	rec := event.NewRecorder(2)

	require.NoError(t, c.Take(src, rec))
	assert.Equal(t, []event.Event{
		event.ConsumableFound(0, true),
		event.ConsumableFound(1, false),
	}, rec.Events())
}

func TestChoiceWrapper_Order(t *testing.T) {
	c := ChoiceWrapper{
		Choices:   [][]KeyID{{keyID("A", 1, 1), keyID("B", 2, 1)}},
		Consumers: Chain{OutputSeed{}},
	}
	src := testutil.Sequence(t, 0.9, 0.125, 0)
	rec := event.NewRecorder(2)

	require.NoError(t, c.Take(src, rec))
	assert.Equal(t, []event.Event{
		event.Seed(0.125),
		event.Key("B", 2, 0),
	}, rec.Events())
}

func TestZone_BurnsResourceLoops(t *testing.T) {
	c := Zone{Medi: 1, ConsumableInContainer: 1}
	src := testutil.Sequence(t, 0, 0.5, 0, 0.1, 0.2)

	require.NoError(t, c.Take(src, event.Discard))
	assert.Zero(t, src.Remaining())
}

func TestEmptyChoices(t *testing.T) {
	tests := []struct {
		name     string
		consumer Consumer
	}{
		{"key without zones", Key{Type: BulkheadKey}},
		{"key id without rooms", keyID("K", 1)},
		{"objective with empty group", Objective{Groups: [][]KeyID{{}}}},
		{"choice wrapper with empty group", ChoiceWrapper{Choices: [][]KeyID{{}}}},
		{"chain", Chain{OutputSeed{}, Objective{Groups: [][]KeyID{nil}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.consumer.Take(random.New(1), event.Discard)
			require.ErrorIs(t, err, ErrEmptyChoices)
		})
	}
}

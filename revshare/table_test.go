package revshare

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var examplePointers = []string{
	"$example1.pointer.com",
	"$example2.pointer.com",
	"$example3.pointer.com",
	"$example4.pointer.com",
}

// quarterTable returns a table with four pointers of weight 25 each.
func quarterTable(t *testing.T, opts ...Option) *Table {
	t.Helper()
	tbl := NewTable(opts...)
	for i, name := range examplePointers {
		key, err := tbl.Add(name, 25)
		require.NoError(t, err)
		require.Equal(t, uint64(i), key)
	}
	return tbl
}

// collect walks live keys the way an external caller does: start at
// Start(), probe Contains, stop after Size() hits.
func collect(tbl *Table) []Entry {
	var out []Entry
	for i, key := tbl.Size(), tbl.Start(); i > 0; key++ {
		if tbl.Contains(key) {
			e, _ := tbl.Entry(key)
			out = append(out, e)
			i--
		}
	}
	return out
}

type tableState struct {
	total   uint64
	size    int
	next    uint64
	entries []Entry
}

func stateOf(tbl *Table) tableState {
	return tableState{tbl.TotalWeight(), tbl.Size(), tbl.NextKey(), tbl.Entries()}
}

func TestTable_AddPreservesOrder(t *testing.T) {
	tbl := quarterTable(t)

	want := []Entry{
		{Key: 0, Name: "$example1.pointer.com", Weight: 25},
		{Key: 1, Name: "$example2.pointer.com", Weight: 25},
		{Key: 2, Name: "$example3.pointer.com", Weight: 25},
		{Key: 3, Name: "$example4.pointer.com", Weight: 25},
	}
	assert.Equal(t, want, collect(tbl))
	assert.Equal(t, want, tbl.Entries())
	assert.Equal(t, 4, tbl.Size())
	assert.Equal(t, uint64(0), tbl.Start())
}

func TestTable_RemoveSkipsTombstone(t *testing.T) {
	tbl := NewTable()
	_, err := tbl.Add(examplePointers[0], 25)
	require.NoError(t, err)
	_, err = tbl.Add(examplePointers[1], 25)
	require.NoError(t, err)
	require.NoError(t, tbl.Remove(1))
	_, err = tbl.Add(examplePointers[2], 25)
	require.NoError(t, err)
	_, err = tbl.Add(examplePointers[3], 25)
	require.NoError(t, err)

	want := []Entry{
		{Key: 0, Name: "$example1.pointer.com", Weight: 25},
		{Key: 2, Name: "$example3.pointer.com", Weight: 25},
		{Key: 3, Name: "$example4.pointer.com", Weight: 25},
	}
	assert.Equal(t, want, collect(tbl))
	assert.False(t, tbl.Contains(1))
	assert.Equal(t, uint64(75), tbl.TotalWeight())
}

func TestTable_PostRemovalIteration(t *testing.T) {
	tbl := quarterTable(t)
	require.NoError(t, tbl.Remove(1))

	got := collect(tbl)
	require.Len(t, got, 3)
	for i, key := range []uint64{0, 2, 3} {
		assert.Equal(t, key, got[i].Key)
		assert.Equal(t, uint64(25), got[i].Weight)
	}
	assert.Equal(t, uint64(75), tbl.TotalWeight())

	name, err := tbl.PickPointer(30)
	require.NoError(t, err)
	assert.Equal(t, "$example3.pointer.com", name)
}

func TestTable_WeightConservation(t *testing.T) {
	tbl := NewTable()
	ops := []struct {
		add    bool
		weight uint64
		key    uint64
	}{
		{add: true, weight: 10},
		{add: true, weight: 30},
		{add: true, weight: 0},
		{add: false, key: 1},
		{add: true, weight: 45},
		{add: false, key: 0},
		{add: false, key: 9},
		{add: true, weight: 7},
		{add: false, key: 2},
	}
	for _, op := range ops {
		if op.add {
			_, err := tbl.Add("$pointer.example", op.weight)
			require.NoError(t, err)
		} else {
			_ = tbl.Remove(op.key)
		}

		var sum uint64
		for _, e := range collect(tbl) {
			sum += e.Weight
		}
		assert.Equal(t, sum, tbl.TotalWeight())
		require.NoError(t, ValidateWeightConservation(tbl))
	}
	assert.Equal(t, uint64(52), tbl.TotalWeight())
}

func TestTable_PickPointerBoundaries(t *testing.T) {
	tbl := quarterTable(t)

	tests := []struct {
		choice uint64
		want   string
	}{
		{20, "$example1.pointer.com"},
		{40, "$example2.pointer.com"},
		{60, "$example3.pointer.com"},
		{80, "$example4.pointer.com"},
		{25, "$example1.pointer.com"},
		{26, "$example2.pointer.com"},
		{50, "$example2.pointer.com"},
		{75, "$example3.pointer.com"},
		{100, "$example4.pointer.com"},
		{1, "$example1.pointer.com"},
	}
	for _, tt := range tests {
		got, err := tbl.PickPointer(tt.choice)
		require.NoError(t, err, "choice %d", tt.choice)
		assert.Equal(t, tt.want, got, "choice %d", tt.choice)
	}
}

func TestTable_PickZeroChoiceResolvesToFirstLive(t *testing.T) {
	tbl := quarterTable(t)
	require.NoError(t, tbl.Remove(0))

	e, err := tbl.Pick(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), e.Key)

	// Zero weights still satisfy >= 0.
	zero := NewTable()
	_, err = zero.Add("$zero.example", 0)
	require.NoError(t, err)
	name, err := zero.PickPointer(0)
	require.NoError(t, err)
	assert.Equal(t, "$zero.example", name)
}

func TestTable_PickSkipsLeadingZeroWeights(t *testing.T) {
	tbl := NewTable()
	_, err := tbl.Add("$a.example", 0)
	require.NoError(t, err)
	_, err = tbl.Add("$b.example", 10)
	require.NoError(t, err)

	name, err := tbl.PickPointer(1)
	require.NoError(t, err)
	assert.Equal(t, "$b.example", name)
}

func TestTable_PickEmpty(t *testing.T) {
	tbl := NewTable()
	_, err := tbl.PickPointer(10)
	assert.ErrorIs(t, err, ErrNoEntries)

	_, err = tbl.Add("$a.example", 10)
	require.NoError(t, err)
	require.NoError(t, tbl.Remove(0))
	_, err = tbl.PickPointer(0)
	assert.ErrorIs(t, err, ErrNoEntries)
}

func TestTable_PickOutOfRange(t *testing.T) {
	tbl := NewTable()
	_, err := tbl.Add("$example.pointer.com", 10)
	require.NoError(t, err)

	_, err = tbl.PickPointer(20)
	assert.ErrorIs(t, err, ErrChoiceOutOfRange)

	_, err = tbl.PickPointer(11)
	assert.ErrorIs(t, err, ErrChoiceOutOfRange)

	name, err := tbl.PickPointer(10)
	require.NoError(t, err)
	assert.Equal(t, "$example.pointer.com", name)
}

func TestTable_FailedCallsLeaveStateUnchanged(t *testing.T) {
	tbl := quarterTable(t, WithMaxTotalWeight(100))
	require.NoError(t, tbl.Remove(2))
	before := stateOf(tbl)

	_, err := tbl.Add("$over.example", 26)
	assert.ErrorIs(t, err, ErrLimitExceeded)
	assert.Equal(t, before, stateOf(tbl))

	assert.ErrorIs(t, tbl.Remove(2), ErrNotFound)
	assert.Equal(t, before, stateOf(tbl))

	assert.ErrorIs(t, tbl.Remove(42), ErrNotFound)
	assert.Equal(t, before, stateOf(tbl))

	_, err = tbl.PickPointer(76)
	assert.ErrorIs(t, err, ErrChoiceOutOfRange)
	assert.Equal(t, before, stateOf(tbl))

	_, err = tbl.Entry(2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTable_NoCapByDefault(t *testing.T) {
	tbl := quarterTable(t)
	_, err := tbl.Add("$extra.example", 50)
	require.NoError(t, err)
	assert.Equal(t, uint64(150), tbl.TotalWeight())
}

func TestTable_AddRejectsOverflow(t *testing.T) {
	tbl := NewTable()
	_, err := tbl.Add("$a.example", ^uint64(0))
	require.NoError(t, err)

	_, err = tbl.Add("$b.example", 1)
	assert.ErrorIs(t, err, ErrLimitExceeded)
	assert.Equal(t, 1, tbl.Size())
}

func TestTable_CapAllowsExactLimit(t *testing.T) {
	tbl := NewTable(WithMaxTotalWeight(100))
	_, err := tbl.Add("$a.example", 60)
	require.NoError(t, err)
	_, err = tbl.Add("$b.example", 40)
	require.NoError(t, err)
	_, err = tbl.Add("$c.example", 1)
	assert.ErrorIs(t, err, ErrLimitExceeded)

	// Removing frees capacity.
	require.NoError(t, tbl.Remove(0))
	_, err = tbl.Add("$c.example", 60)
	require.NoError(t, err)
}

func TestTable_PointerValidation(t *testing.T) {
	tbl := NewTable(WithPointerValidation())
	_, err := tbl.Add("not a pointer", 10)
	assert.ErrorIs(t, err, ErrInvalidPointer)
	assert.Equal(t, 0, tbl.Size())
	assert.Equal(t, uint64(0), tbl.NextKey())

	_, err = tbl.Add("$wallet.example/alice", 10)
	require.NoError(t, err)

	// Names are opaque without the option.
	_, err = NewTable().Add("not a pointer", 10)
	require.NoError(t, err)
}

func TestTable_Events(t *testing.T) {
	var events []Event
	tbl := NewTable(WithListener(func(ev Event) { events = append(events, ev) }))

	_, err := tbl.Add("$example.pointer.com", 10)
	require.NoError(t, err)
	require.NoError(t, tbl.Remove(0))

	require.Len(t, events, 2)
	assert.Equal(t, PointerAdded{Key: 0, Name: "$example.pointer.com", Weight: 10, TotalWeight: 10}, events[0])
	assert.Equal(t, PointerRemoved{Key: 0, Name: "$example.pointer.com", Weight: 10, TotalWeight: 0}, events[1])
	assert.Equal(t, EventPointerAdded, events[0].EventName())
	assert.Equal(t, EventPointerRemoved, events[1].EventName())
}

func TestTable_NoEventsOnFailure(t *testing.T) {
	var count int
	tbl := NewTable(WithMaxTotalWeight(10))
	tbl.Subscribe(func(Event) { count++ })

	_, err := tbl.Add("$a.example", 11)
	require.Error(t, err)
	require.Error(t, tbl.Remove(0))
	assert.Zero(t, count)
}

func TestTable_ListenersRunInOrder(t *testing.T) {
	var order []int
	tbl := NewTable(
		WithListener(func(Event) { order = append(order, 1) }),
		WithListener(func(Event) { order = append(order, 2) }),
	)
	tbl.Subscribe(func(Event) { order = append(order, 3) })

	_, err := tbl.Add("$a.example", 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestTable_Logging(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)
	tbl := NewTable(WithLogger(log))

	_, err := tbl.Add("$a.example", 5)
	require.NoError(t, err)
	require.NoError(t, tbl.Remove(0))

	out := buf.String()
	assert.Contains(t, out, `"component":"revshare"`)
	assert.Contains(t, out, "payment pointer added")
	assert.Contains(t, out, "payment pointer removed")
}

func TestTable_EntriesAreCopies(t *testing.T) {
	tbl := quarterTable(t)
	entries := tbl.Entries()
	entries[0].Weight = 1000

	e, err := tbl.Entry(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(25), e.Weight)
	require.NoError(t, ValidateWeightConservation(tbl))
}

func TestTable_Distribute(t *testing.T) {
	tbl := quarterTable(t)
	require.NoError(t, tbl.Remove(3))

	dists, err := tbl.Distribute(1000)
	require.NoError(t, err)
	require.Len(t, dists, 3)
	assert.Equal(t, uint64(333), dists[0].Amount)
	assert.Equal(t, uint64(333), dists[1].Amount)
	assert.Equal(t, uint64(334), dists[2].Amount)
	assert.Equal(t, uint64(2), dists[2].Key)
	require.NoError(t, ValidateDistribution(dists, tbl.Entries(), 1000, tbl.TotalWeight()))
}

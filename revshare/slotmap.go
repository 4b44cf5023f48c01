package revshare

import (
	"fmt"
	"math"
	"sort"
)

// SlotMap is an insertion-ordered map from monotonically assigned keys to
// entries. Removal tombstones a key: it is never reassigned and the key
// space never shrinks. Memory is proportional to the live entries only;
// tombstones are implied by keys below NextKey that are not live.
type SlotMap struct {
	live    map[uint64]Entry
	order   []uint64 // Live keys, ascending
	nextKey uint64
}

// NewSlotMap creates an empty map.
func NewSlotMap() *SlotMap {
	return &SlotMap{live: make(map[uint64]Entry)}
}

// Insert stores e under the next key and returns that key.
// e.Key is overwritten with the assigned key.
func (m *SlotMap) Insert(e Entry) uint64 {
	key := m.nextKey
	if key == math.MaxUint64 {
		panic("revshare: slot key space exhausted")
	}
	e.Key = key
	m.live[key] = e
	// Keys are assigned in ascending order, so appending keeps order sorted.
	m.order = append(m.order, key)
	m.nextKey++
	return key
}

// Remove tombstones the slot at key.
func (m *SlotMap) Remove(key uint64) error {
	if !m.Contains(key) {
		return fmt.Errorf("%w: key %d", ErrNotFound, key)
	}
	delete(m.live, key)
	i := sort.Search(len(m.order), func(i int) bool { return m.order[i] >= key })
	m.order = append(m.order[:i], m.order[i+1:]...)
	return nil
}

// Contains reports whether key is assigned and live.
func (m *SlotMap) Contains(key uint64) bool {
	_, ok := m.live[key]
	return ok
}

// Get returns a copy of the live entry at key.
func (m *SlotMap) Get(key uint64) (Entry, error) {
	e, ok := m.live[key]
	if !ok {
		return Entry{}, fmt.Errorf("%w: key %d", ErrNotFound, key)
	}
	return e, nil
}

// Size returns the number of live entries.
func (m *SlotMap) Size() int { return len(m.order) }

// FirstKey returns the key iteration starts from. Without compaction the
// lower bound of the key space never moves, so this is always 0.
func (m *SlotMap) FirstKey() uint64 { return 0 }

// NextKey returns one plus the highest key ever assigned.
func (m *SlotMap) NextKey() uint64 { return m.nextKey }

// Range calls fn for each live entry in key order until fn returns false.
func (m *SlotMap) Range(fn func(Entry) bool) {
	for _, key := range m.order {
		if !fn(m.live[key]) {
			return
		}
	}
}

// Entries returns copies of the live entries in key order.
func (m *SlotMap) Entries() []Entry {
	entries := make([]Entry, 0, len(m.order))
	m.Range(func(e Entry) bool {
		entries = append(entries, e)
		return true
	})
	return entries
}

// restoreSlotMap rebuilds a map whose key space ends at nextKey, with
// entries live at their own keys and every other key tombstoned.
// entries must be sorted by key and below nextKey.
func restoreSlotMap(nextKey uint64, entries []Entry) *SlotMap {
	m := &SlotMap{
		live:    make(map[uint64]Entry, len(entries)),
		order:   make([]uint64, 0, len(entries)),
		nextKey: nextKey,
	}
	for _, e := range entries {
		m.live[e.Key] = e
		m.order = append(m.order, e.Key)
	}
	return m
}

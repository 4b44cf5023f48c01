// Package revshare implements a revenue-sharing table of payment pointers.
//
// Entries are kept in an insertion-ordered slot map with tombstone deletion,
// so keys handed out by Add stay valid for the lifetime of the table. A
// caller-supplied choice selects one pointer by scanning live entries and
// accumulating their weights.
//
// A Table is not safe for concurrent use.
package revshare

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Option configures a Table.
type Option func(*Table)

// WithLogger sets the logger used for mutation tracing.
func WithLogger(log zerolog.Logger) Option {
	return func(t *Table) {
		t.log = log.With().Str("component", "revshare").Logger()
	}
}

// WithListener registers a listener for table events.
func WithListener(l Listener) Option {
	return func(t *Table) { t.listeners = append(t.listeners, l) }
}

// WithMaxTotalWeight caps the total weight. Add fails with ErrLimitExceeded
// when the new total would exceed limit. Zero means no cap.
func WithMaxTotalWeight(limit uint64) Option {
	return func(t *Table) { t.maxTotal = limit }
}

// WithPointerValidation makes Add reject names that are not payment pointers.
func WithPointerValidation() Option {
	return func(t *Table) { t.validatePointers = true }
}

// Table is a revenue-sharing table: payment pointers with weights, and a
// running total kept in step with the live entries.
type Table struct {
	entries     *SlotMap
	totalWeight uint64

	maxTotal         uint64
	validatePointers bool
	listeners        []Listener
	log              zerolog.Logger
}

// NewTable creates an empty table.
func NewTable(opts ...Option) *Table {
	t := &Table{
		entries: NewSlotMap(),
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Subscribe registers a listener for subsequent events.
func (t *Table) Subscribe(l Listener) {
	t.listeners = append(t.listeners, l)
}

// Add appends a payment pointer and returns its key.
// Without WithMaxTotalWeight the total is not bounded; keeping it at 100 is
// the caller's responsibility.
func (t *Table) Add(name string, weight uint64) (uint64, error) {
	newTotal, err := t.admit(name, weight, t.totalWeight)
	if err != nil {
		return 0, err
	}

	key := t.entries.Insert(Entry{Name: name, Weight: weight})
	t.totalWeight = newTotal

	t.log.Debug().Uint64("key", key).Str("name", name).Uint64("weight", weight).
		Uint64("total", newTotal).Msg("payment pointer added")
	t.emit(PointerAdded{Key: key, Name: name, Weight: weight, TotalWeight: newTotal})
	return key, nil
}

// Remove tombstones the entry at key and subtracts its weight.
func (t *Table) Remove(key uint64) error {
	e, err := t.entries.Get(key)
	if err != nil {
		return err
	}
	if err := t.entries.Remove(key); err != nil {
		return err
	}
	t.totalWeight -= e.Weight

	t.log.Debug().Uint64("key", key).Str("name", e.Name).Uint64("weight", e.Weight).
		Uint64("total", t.totalWeight).Msg("payment pointer removed")
	t.emit(PointerRemoved{Key: key, Name: e.Name, Weight: e.Weight, TotalWeight: t.totalWeight})
	return nil
}

// PickPointer returns the name of the entry selected by choice.
// See Pick.
func (t *Table) PickPointer(choice uint64) (string, error) {
	e, err := t.Pick(choice)
	if err != nil {
		return "", err
	}
	return e.Name, nil
}

// Pick scans live entries in key order, accumulating weights, and returns the
// first entry whose cumulative weight is >= choice. A choice equal to a
// cumulative boundary resolves to the entry that closes it; a choice of 0
// resolves to the first live entry.
func (t *Table) Pick(choice uint64) (Entry, error) {
	if t.entries.Size() == 0 {
		return Entry{}, ErrNoEntries
	}

	var (
		sum    uint64
		picked Entry
		found  bool
	)
	t.entries.Range(func(e Entry) bool {
		sum += e.Weight
		if sum >= choice {
			picked, found = e, true
			return false
		}
		return true
	})
	if !found {
		return Entry{}, fmt.Errorf("%w: choice %d > total %d", ErrChoiceOutOfRange, choice, sum)
	}
	return picked, nil
}

// TotalWeight returns the sum of weights over live entries.
func (t *Table) TotalWeight() uint64 { return t.totalWeight }

// Size returns the number of live entries.
func (t *Table) Size() int { return t.entries.Size() }

// Start returns the key iteration starts from.
func (t *Table) Start() uint64 { return t.entries.FirstKey() }

// NextKey returns the key the next Add will assign.
func (t *Table) NextKey() uint64 { return t.entries.NextKey() }

// Contains reports whether key refers to a live entry.
func (t *Table) Contains(key uint64) bool { return t.entries.Contains(key) }

// Entry returns a copy of the live entry at key.
func (t *Table) Entry(key uint64) (Entry, error) { return t.entries.Get(key) }

// Entries returns copies of the live entries in key order.
func (t *Table) Entries() []Entry { return t.entries.Entries() }

// Range calls fn for each live entry in key order until fn returns false.
func (t *Table) Range(fn func(Entry) bool) { t.entries.Range(fn) }

// Distribute splits amount across the live entries in proportion to weight.
func (t *Table) Distribute(amount uint64) ([]Distribution, error) {
	return DistributeRevenue(amount, t.Entries(), t.totalWeight)
}

// admit checks that an entry may join a table whose total weight is total,
// and returns the total with the entry included.
func (t *Table) admit(name string, weight, total uint64) (uint64, error) {
	if t.validatePointers {
		if _, err := ParsePointer(name); err != nil {
			return 0, err
		}
	}
	newTotal := total + weight
	if newTotal < total {
		return 0, fmt.Errorf("%w: total weight overflows", ErrLimitExceeded)
	}
	if t.maxTotal > 0 && newTotal > t.maxTotal {
		return 0, fmt.Errorf("%w: %d + %d > %d", ErrLimitExceeded, total, weight, t.maxTotal)
	}
	return newTotal, nil
}

func (t *Table) emit(ev Event) {
	for _, l := range t.listeners {
		l(ev)
	}
}

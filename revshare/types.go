package revshare

// Entry is one payment pointer record in a table.
type Entry struct {
	Key    uint64 // Assigned at insertion, never reused
	Name   string // Payment pointer, not required unique
	Weight uint64 // Percentage share
}

// Distribution represents a single payout in revenue distribution.
type Distribution struct {
	Key    uint64
	Name   string
	Amount uint64
}

// Snapshot is the restorable state of a table.
// Keys below NextKey that are absent from Entries are tombstones.
type Snapshot struct {
	NextKey uint64
	Entries []Entry // Live entries in key order
}

// TotalWeight sums the weights of the snapshot's entries.
func (s *Snapshot) TotalWeight() uint64 {
	var total uint64
	for _, e := range s.Entries {
		total += e.Weight
	}
	return total
}

package revshare

import (
	"fmt"
	"math/bits"
)

// ValidateWeightConservation checks that the table's running total equals
// the sum of weights over its live entries.
func ValidateWeightConservation(t *Table) error {
	var sum uint64
	t.Range(func(e Entry) bool {
		sum += e.Weight
		return true
	})
	if sum != t.TotalWeight() {
		return fmt.Errorf("%w: running=%d scanned=%d", ErrWeightDrift, t.TotalWeight(), sum)
	}
	return nil
}

// ValidateDistribution checks that distribution amounts match entry proportions.
func ValidateDistribution(distributions []Distribution, entries []Entry, totalPayment, totalWeight uint64) error {
	if len(distributions) != len(entries) {
		return fmt.Errorf("distribution count %d != entry count %d", len(distributions), len(entries))
	}

	expected, err := DistributeRevenue(totalPayment, entries, totalWeight)
	if err != nil {
		return err
	}

	for i := range distributions {
		if distributions[i].Key != expected[i].Key {
			return fmt.Errorf("entry %d: key %d != expected %d", i, distributions[i].Key, expected[i].Key)
		}
		if distributions[i].Amount != expected[i].Amount {
			return fmt.Errorf("entry %d: amount %d != expected %d", i, distributions[i].Amount, expected[i].Amount)
		}
	}
	return nil
}

// mulDiv returns a*b/c without intermediate overflow. c must be non-zero and
// a*b/c must fit in 64 bits, which holds whenever b <= c.
func mulDiv(a, b, c uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	q, _ := bits.Div64(hi, lo, c)
	return q
}

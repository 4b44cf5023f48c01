package revshare

import "fmt"

// DistributeRevenue calculates per-entry payouts proportional to weight.
// The last entry gets the remainder to avoid integer division precision loss.
func DistributeRevenue(totalPayment uint64, entries []Entry, totalWeight uint64) ([]Distribution, error) {
	if totalPayment == 0 {
		return nil, ErrInsufficientPayment
	}
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}
	if totalWeight == 0 {
		return nil, ErrZeroTotalWeight
	}
	var sum uint64
	for _, entry := range entries {
		sum += entry.Weight
	}
	if sum != totalWeight {
		return nil, fmt.Errorf("%w: entries sum to %d, total is %d", ErrWeightDrift, sum, totalWeight)
	}

	distributions := make([]Distribution, len(entries))
	var distributed uint64

	for i, entry := range entries {
		distributions[i].Key = entry.Key
		distributions[i].Name = entry.Name
		if i == len(entries)-1 {
			// Last entry gets remainder
			distributions[i].Amount = totalPayment - distributed
		} else {
			amount := mulDiv(totalPayment, entry.Weight, totalWeight)
			distributions[i].Amount = amount
			distributed += amount
		}
	}

	return distributions, nil
}

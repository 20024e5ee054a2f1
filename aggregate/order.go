// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package aggregate

import "sort"

// OrderedCode is one MULTIPLE selection: its 1-based response order and the
// selected option's code.
type OrderedCode struct {
	Order int
	Code  int
}

// OrderCodes sorts selections by response order and keeps each code at its
// first position in that order. Equal orders keep their input order.
func OrderCodes(pairs []OrderedCode) []int {
	sorted := make([]OrderedCode, len(pairs))
	copy(sorted, pairs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})

	seen := make(map[int]struct{}, len(sorted))
	codes := make([]int, 0, len(sorted))
	for _, p := range sorted {
		if _, dup := seen[p.Code]; dup {
			continue
		}
		seen[p.Code] = struct{}{}
		codes = append(codes, p.Code)
	}
	return codes
}

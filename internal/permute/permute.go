// Package permute reorders slices in place according to a target-index array.
package permute

import (
	"fmt"

	"github.com/tamirms/boomap/internal/bits"
)

// consumed marks an order slot whose cycle has already been rotated.
const consumed = -1

// Apply moves values[i] to values[order[i]] for every i, in place.
//
// Each cycle of the permutation is rotated exactly once through a single
// temporary element, so the pass is O(n) time and O(1) extra space beyond
// order itself. order is consumed: every slot is overwritten with a marker
// as its cycle completes.
//
// order must be a permutation of [0, len(values)); use FirstConflict to
// check an untrusted order first. Apply panics if the lengths differ.
func Apply[T any](order []int, values []T) {
	if len(order) != len(values) {
		panic(fmt.Sprintf("permute: order has %d entries, values has %d", len(order), len(values)))
	}
	for start := range order {
		dst := order[start]
		if dst == consumed {
			continue
		}
		order[start] = consumed
		carry := values[start]
		for dst != start {
			carry, values[dst] = values[dst], carry
			dst, order[dst] = order[dst], consumed
		}
		values[start] = carry
	}
}

// FirstConflict reports the first index i whose target order[i] is out of
// range or already claimed by an earlier index. It reports false when order
// is a permutation of [0, len(order)).
func FirstConflict(order []int) (int, bool) {
	claimed := bits.NewVector(uint64(len(order)))
	for i, dst := range order {
		if dst < 0 || dst >= len(order) {
			return i, true
		}
		if claimed.TestAndSet(uint64(dst)) {
			return i, true
		}
	}
	return 0, false
}

// Claimant returns the index j < i with order[j] == order[i], or -1.
// It is the slow companion of FirstConflict for building error messages.
func Claimant(order []int, i int) int {
	for j := 0; j < i; j++ {
		if order[j] == order[i] {
			return j
		}
	}
	return -1
}

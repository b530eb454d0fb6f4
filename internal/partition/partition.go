// Package partition splits normalized records into destination buckets and
// applies each bucket's presentation order.
package partition

import (
	"sort"
	"strconv"
	"strings"

	"github.com/notastransf/notastransf/internal/model"
)

// internalSuppliers is the fixed set of supplier codes that are company
// branches. F11 closed years ago; F98 is the warehouse placeholder.
var internalSuppliers = map[string]bool{
	"F1": true, "F2": true, "F3": true, "F4": true, "F5": true,
	"F6": true, "F7": true, "F8": true, "F9": true, "F10": true,
	"F12": true, "F13": true, "F14": true, "F15": true, "F16": true,
	"F17": true, "F18": true, "F98": true,
}

// Internal reports whether a supplier code is an internal branch.
func Internal(supplier string) bool {
	return internalSuppliers[supplier]
}

// Split partitions records into the transfer bucket (internal suppliers) and
// the distribution bucket (everything else). Every record lands in exactly
// one bucket; input order is preserved within each.
func Split(recs []model.Record) (transfer, distribution []model.Record) {
	for _, rec := range recs {
		if Internal(rec.Supplier) {
			transfer = append(transfer, rec)
		} else {
			distribution = append(distribution, rec)
		}
	}
	return transfer, distribution
}

// SortTransfer orders the transfer bucket: urgent records first (pending at
// least urgencyDays), then destination ascending, then age descending. The
// urgency flag is a sort key only; it never appears as a column. The sort is
// stable.
func SortTransfer(recs []model.Record, urgencyDays int) {
	sort.SliceStable(recs, func(i, j int) bool {
		ui, uj := recs[i].IssueDays >= urgencyDays, recs[j].IssueDays >= urgencyDays
		if ui != uj {
			return ui
		}
		if recs[i].Destination != recs[j].Destination {
			return destinationLess(recs[i].Destination, recs[j].Destination)
		}
		return recs[i].IssueDays > recs[j].IssueDays
	})
}

// SortDistribution orders the distribution bucket by destination ascending
// only. Stable.
func SortDistribution(recs []model.Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		return destinationLess(recs[i].Destination, recs[j].Destination)
	})
}

// destinationLess orders canonical "F<n>" codes by branch number, so F2
// comes before F10. Non-canonical destinations sort after canonical ones,
// among themselves by plain string order.
func destinationLess(a, b string) bool {
	na, oka := branchNumber(a)
	nb, okb := branchNumber(b)
	switch {
	case oka && okb:
		return na < nb
	case oka != okb:
		return oka
	default:
		return a < b
	}
}

func branchNumber(s string) (int, bool) {
	rest, ok := strings.CutPrefix(s, "F")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return n, true
}

package aggregate

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"fintrack/internal/core"
)

// TypeFilter selects which transaction types a listing keeps.
type TypeFilter string

const (
	FilterAll     TypeFilter = "all"
	FilterIncome  TypeFilter = "income"
	FilterExpense TypeFilter = "expense"
)

// SortKey selects the ordering of a listing. Both keys sort descending.
type SortKey string

const (
	SortByDate   SortKey = "date"
	SortByAmount SortKey = "amount"
)

// ParseTypeFilter converts a query value; empty means FilterAll.
func ParseTypeFilter(s string) (TypeFilter, error) {
	switch f := TypeFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterIncome, FilterExpense:
		return f, nil
	default:
		return FilterAll, fmt.Errorf("unknown type filter %q", s)
	}
}

// ParseSortKey converts a query value; empty means SortByDate.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return SortByDate, nil
	case SortByDate, SortByAmount:
		return k, nil
	default:
		return SortByDate, fmt.Errorf("unknown sort key %q", s)
	}
}

func (f TypeFilter) keep(t core.Transaction) bool {
	switch f {
	case FilterIncome:
		return t.Type == core.Income
	case FilterExpense:
		return t.Type == core.Expense
	default:
		return true
	}
}

// FilterAndSort returns a new slice with the transactions matching filter,
// ordered by key. Ties keep their input order. Transactions whose date does
// not parse sort after every dated one.
func FilterAndSort(transactions []core.Transaction, filter TypeFilter, key SortKey) []core.Transaction {
	out := make([]core.Transaction, 0, len(transactions))
	for _, t := range transactions {
		if filter.keep(t) {
			out = append(out, t)
		}
	}

	switch key {
	case SortByAmount:
		slices.SortStableFunc(out, func(a, b core.Transaction) int {
			return cmp.Compare(b.Amount, a.Amount)
		})
	default:
		days := make(map[string]int64, len(out))
		for _, t := range out {
			if _, ok := days[t.Date]; ok {
				continue
			}
			if d, err := t.Day(); err == nil {
				days[t.Date] = d.Unix()
			} else {
				days[t.Date] = minUnix
			}
		}
		slices.SortStableFunc(out, func(a, b core.Transaction) int {
			return cmp.Compare(days[b.Date], days[a.Date])
		})
	}
	return out
}

// below any representable calendar day
const minUnix = -1 << 63

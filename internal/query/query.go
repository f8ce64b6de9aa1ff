// Package query is the derived view over the transaction store: filtering,
// search and sorting. Everything here is a pure projection; stored order is
// never mutated.
package query

import (
	"sort"
	"strings"

	"github.com/bankstream/bankstream/internal/domain"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Filter narrows a transaction list. Zero values mean "no constraint".
// From/To are ISO dates and compare lexically, inclusive on both ends.
type Filter struct {
	Category string
	Type     domain.TxType
	From     string
	To       string
	Search   string
}

// SortField selects the sort key.
type SortField string

const (
	SortByDate        SortField = "date"
	SortByAmount      SortField = "amount"
	SortByDescription SortField = "description"
	SortByCategory    SortField = "category"
)

// Sort describes an ordering. A zero Sort leaves insertion order untouched.
type Sort struct {
	Field SortField
	Desc  bool
}

// Apply returns the transactions matching f, preserving relative order.
func Apply(txs []domain.Transaction, f Filter) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if f.Category != "" && tx.Category != f.Category {
			continue
		}
		if f.Type != "" && tx.Type != f.Type {
			continue
		}
		if f.From != "" && tx.Date < f.From {
			continue
		}
		if f.To != "" && tx.Date > f.To {
			continue
		}
		if f.Search != "" && !matches(f.Search, tx) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

// matches runs a case-insensitive fuzzy match over description and notes.
func matches(needle string, tx domain.Transaction) bool {
	if fuzzy.MatchFold(needle, tx.Description) {
		return true
	}
	return tx.Notes != "" && fuzzy.MatchFold(needle, tx.Notes)
}

// SortBy returns a sorted copy. The sort is stable, so equal keys keep
// their insertion order. An empty field returns the input order unchanged.
func SortBy(txs []domain.Transaction, s Sort) []domain.Transaction {
	out := make([]domain.Transaction, len(txs))
	copy(out, txs)
	if s.Field == "" {
		return out
	}

	less := lessFunc(s.Field)
	sort.SliceStable(out, func(i, j int) bool {
		if s.Desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

func lessFunc(field SortField) func(a, b domain.Transaction) bool {
	switch field {
	case SortByAmount:
		return func(a, b domain.Transaction) bool { return a.Amount < b.Amount }
	case SortByDescription:
		return func(a, b domain.Transaction) bool {
			return strings.ToLower(a.Description) < strings.ToLower(b.Description)
		}
	case SortByCategory:
		return func(a, b domain.Transaction) bool { return a.Category < b.Category }
	default:
		return func(a, b domain.Transaction) bool { return a.Date < b.Date }
	}
}

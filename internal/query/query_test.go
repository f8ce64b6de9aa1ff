package query

import (
	"testing"

	"github.com/bankstream/bankstream/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = []domain.Transaction{
	{ID: "1", Date: "2024-01-05", Description: "Tesco Stores", Amount: 42.10, Type: domain.TxDebit, Category: "Groceries"},
	{ID: "2", Date: "2024-01-06", Description: "Monthly Salary", Amount: 2000, Type: domain.TxCredit, Category: "Salary"},
	{ID: "3", Date: "2024-01-07", Description: "Tesco Petrol", Amount: 60, Type: domain.TxDebit, Category: "Transport", Notes: "road trip"},
	{ID: "4", Date: "2024-02-01", Description: "Rent", Amount: 950, Type: domain.TxDebit, Category: "Rent"},
}

func ids(txs []domain.Transaction) []string {
	out := make([]string, len(txs))
	for i, tx := range txs {
		out[i] = tx.ID
	}
	return out
}

func TestApply_NoConstraints(t *testing.T) {
	got := Apply(sample, Filter{})
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(got))
}

func TestApply_Category(t *testing.T) {
	got := Apply(sample, Filter{Category: "Groceries"})
	assert.Equal(t, []string{"1"}, ids(got))
}

func TestApply_Type(t *testing.T) {
	got := Apply(sample, Filter{Type: domain.TxDebit})
	assert.Equal(t, []string{"1", "3", "4"}, ids(got))
}

func TestApply_DateRangeInclusive(t *testing.T) {
	got := Apply(sample, Filter{From: "2024-01-06", To: "2024-02-01"})
	assert.Equal(t, []string{"2", "3", "4"}, ids(got))
}

func TestApply_FuzzySearch(t *testing.T) {
	got := Apply(sample, Filter{Search: "tesco"})
	assert.Equal(t, []string{"1", "3"}, ids(got))

	// Case-insensitive and matches notes too.
	got = Apply(sample, Filter{Search: "ROAD TRIP"})
	assert.Equal(t, []string{"3"}, ids(got))

	got = Apply(sample, Filter{Search: "yacht"})
	assert.Empty(t, got)
}

func TestApply_Combined(t *testing.T) {
	got := Apply(sample, Filter{Type: domain.TxDebit, Search: "tesco", From: "2024-01-06"})
	assert.Equal(t, []string{"3"}, ids(got))
}

func TestSortBy_Amount(t *testing.T) {
	got := SortBy(sample, Sort{Field: SortByAmount})
	assert.Equal(t, []string{"1", "3", "4", "2"}, ids(got))

	got = SortBy(sample, Sort{Field: SortByAmount, Desc: true})
	assert.Equal(t, []string{"2", "4", "3", "1"}, ids(got))
}

func TestSortBy_DateStable(t *testing.T) {
	dup := []domain.Transaction{
		{ID: "a", Date: "2024-01-05"},
		{ID: "b", Date: "2024-01-04"},
		{ID: "c", Date: "2024-01-05"},
	}
	got := SortBy(dup, Sort{Field: SortByDate})
	// Equal dates keep insertion order.
	assert.Equal(t, []string{"b", "a", "c"}, ids(got))
}

func TestSortBy_DoesNotMutateInput(t *testing.T) {
	in := []domain.Transaction{{ID: "x", Amount: 2}, {ID: "y", Amount: 1}}
	out := SortBy(in, Sort{Field: SortByAmount})

	require.Equal(t, []string{"y", "x"}, ids(out))
	assert.Equal(t, []string{"x", "y"}, ids(in), "input order must stay untouched")
}

func TestSortBy_ZeroSortKeepsOrder(t *testing.T) {
	got := SortBy(sample, Sort{})
	assert.Equal(t, ids(sample), ids(got))
}

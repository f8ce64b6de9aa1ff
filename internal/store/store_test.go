package store

import (
	"fmt"
	"testing"

	"github.com/bankstream/bankstream/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tx(id, category string) domain.Transaction {
	return domain.Transaction{
		ID: id, Date: "2024-01-05", Description: "desc " + id,
		Amount: 1, Type: domain.TxDebit, Category: category,
	}
}

func TestAppendBatch_PreservesOrder(t *testing.T) {
	s := New()

	s.AppendBatch([]domain.Transaction{tx("a", "Uncategorized"), tx("b", "Uncategorized")})
	s.AppendBatch(nil)
	s.AppendBatch([]domain.Transaction{tx("c", "Uncategorized")})

	list := s.List()
	require.Len(t, list, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{list[0].ID, list[1].ID, list[2].ID})
	assert.Equal(t, 3, s.Len())
}

func TestUpdateField(t *testing.T) {
	s := New()
	s.AppendBatch([]domain.Transaction{tx("a", "Uncategorized")})

	cat := "Groceries"
	note := "weekly shop"
	updated, ok := s.UpdateField("a", FieldPatch{Category: &cat, Notes: &note})
	require.True(t, ok)
	assert.Equal(t, "Groceries", updated.Category)
	assert.Equal(t, "weekly shop", updated.Notes)

	// Patch only one field; the other stays.
	other := "Dining"
	updated, ok = s.UpdateField("a", FieldPatch{Category: &other})
	require.True(t, ok)
	assert.Equal(t, "Dining", updated.Category)
	assert.Equal(t, "weekly shop", updated.Notes)

	// Absent id is a no-op.
	_, ok = s.UpdateField("nope", FieldPatch{Category: &cat})
	assert.False(t, ok)
}

func TestBulkUpdateCategory(t *testing.T) {
	s := New()
	s.AppendBatch([]domain.Transaction{tx("a", "Uncategorized"), tx("b", "Uncategorized"), tx("c", "Uncategorized")})

	n := s.BulkUpdateCategory([]string{"a", "c", "ghost"}, "Transport")
	assert.Equal(t, 2, n)

	list := s.List()
	assert.Equal(t, "Transport", list[0].Category)
	assert.Equal(t, "Uncategorized", list[1].Category)
	assert.Equal(t, "Transport", list[2].Category)
}

func TestReassignAndClearCategory(t *testing.T) {
	s := New()
	s.AppendBatch([]domain.Transaction{tx("a", "Groceries"), tx("b", "Rent"), tx("c", "Groceries")})

	n := s.ReassignCategory("Groceries", "Food")
	assert.Equal(t, 2, n)
	for _, got := range s.List() {
		assert.NotEqual(t, "Groceries", got.Category)
	}

	n = s.ClearCategory("Food")
	assert.Equal(t, 2, n)
	list := s.List()
	assert.Equal(t, domain.DefaultCategory, list[0].Category)
	assert.Equal(t, "Rent", list[1].Category)
	assert.Equal(t, domain.DefaultCategory, list[2].Category)
}

func TestReset(t *testing.T) {
	s := New()
	s.AppendBatch([]domain.Transaction{tx("a", "Uncategorized")})

	s.Reset()

	assert.Equal(t, 0, s.Len())
	_, ok := s.Get("a")
	assert.False(t, ok)

	// Store is usable after reset.
	s.AppendBatch([]domain.Transaction{tx("b", "Uncategorized")})
	got, ok := s.Get("b")
	require.True(t, ok)
	assert.Equal(t, "b", got.ID)
}

func TestList_ReturnsCopy(t *testing.T) {
	s := New()
	s.AppendBatch([]domain.Transaction{tx("a", "Uncategorized")})

	list := s.List()
	list[0].Category = "Mutated"

	got, _ := s.Get("a")
	assert.Equal(t, "Uncategorized", got.Category)
}

func TestUpdateField_AfterManyAppends(t *testing.T) {
	s := New()
	var batch []domain.Transaction
	for i := 0; i < 100; i++ {
		batch = append(batch, tx(fmt.Sprintf("id-%d", i), "Uncategorized"))
	}
	s.AppendBatch(batch)

	cat := "Salary"
	_, ok := s.UpdateField("id-57", FieldPatch{Category: &cat})
	require.True(t, ok)

	got, _ := s.Get("id-57")
	assert.Equal(t, "Salary", got.Category)
	assert.Equal(t, "id-57", s.List()[57].ID)
}

package categories

import (
	"testing"

	"github.com/bankstream/bankstream/internal/domain"
	"github.com/bankstream/bankstream/internal/kv"
	"github.com/bankstream/bankstream/internal/logger"
	"github.com/bankstream/bankstream/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*Service, *store.TransactionStore, kv.Store) {
	t.Helper()
	txs := store.New()
	kvs := kv.NewMemory()
	return NewService(kvs, txs, logger.New()), txs, kvs
}

func TestNewService_SeedsDefaults(t *testing.T) {
	svc, _, _ := newService(t)

	cats := svc.List()
	require.NotEmpty(t, cats)
	assert.True(t, svc.Exists("Groceries"))
	assert.True(t, svc.Exists(domain.DefaultCategory), "default category is always valid")
	assert.False(t, svc.Exists("Yachts"))
}

func TestCreate(t *testing.T) {
	svc, _, _ := newService(t)

	cat, err := svc.Create("Travel")
	require.NoError(t, err)
	assert.NotEmpty(t, cat.ID)
	assert.True(t, svc.Exists("Travel"))

	_, err = svc.Create("Travel")
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = svc.Create(domain.DefaultCategory)
	assert.ErrorIs(t, err, ErrReserved)

	_, err = svc.Create("   ")
	assert.Error(t, err)
}

func TestRename_ReconcilesTransactions(t *testing.T) {
	svc, txs, _ := newService(t)

	cat, err := svc.Create("Groceries2")
	require.NoError(t, err)

	txs.AppendBatch([]domain.Transaction{
		{ID: "a", Category: "Groceries2"},
		{ID: "b", Category: "Rent"},
		{ID: "c", Category: "Groceries2"},
	})

	_, err = svc.Rename(cat.ID, "Food")
	require.NoError(t, err)

	assert.True(t, svc.Exists("Food"))
	assert.False(t, svc.Exists("Groceries2"))
	for _, tx := range txs.List() {
		assert.NotEqual(t, "Groceries2", tx.Category)
	}
	got, _ := txs.Get("a")
	assert.Equal(t, "Food", got.Category)
	got, _ = txs.Get("b")
	assert.Equal(t, "Rent", got.Category)
}

func TestRename_Errors(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.Rename("no-such-id", "X")
	assert.ErrorIs(t, err, ErrNotFound)

	cat, err := svc.Create("A")
	require.NoError(t, err)
	_, err = svc.Create("B")
	require.NoError(t, err)

	_, err = svc.Rename(cat.ID, "B")
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = svc.Rename(cat.ID, domain.DefaultCategory)
	assert.ErrorIs(t, err, ErrReserved)
}

func TestDelete_ClearsTransactions(t *testing.T) {
	svc, txs, _ := newService(t)

	cat, err := svc.Create("Food")
	require.NoError(t, err)

	txs.AppendBatch([]domain.Transaction{
		{ID: "a", Category: "Food"},
		{ID: "b", Category: "Rent"},
	})

	require.NoError(t, svc.Delete(cat.ID))

	assert.False(t, svc.Exists("Food"))
	got, _ := txs.Get("a")
	assert.Equal(t, domain.DefaultCategory, got.Category)
	got, _ = txs.Get("b")
	assert.Equal(t, "Rent", got.Category)

	assert.ErrorIs(t, svc.Delete(cat.ID), ErrNotFound)
}

func TestPersistenceAcrossRestarts(t *testing.T) {
	kvs := kv.NewMemory()
	svc1 := NewService(kvs, store.New(), logger.New())

	_, err := svc1.Create("Travel")
	require.NoError(t, err)

	svc2 := NewService(kvs, store.New(), logger.New())
	assert.True(t, svc2.Exists("Travel"))
	assert.Equal(t, len(svc1.List()), len(svc2.List()))
}

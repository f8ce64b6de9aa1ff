package kv

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemory_RoundTrip(t *testing.T) {
	s := NewMemory()

	_, ok, err := s.Get("missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set("categories", `[{"name":"Groceries"}]`))

	v, ok, err := s.Get("categories")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `[{"name":"Groceries"}]`, v)

	require.NoError(t, s.Delete("categories"))
	_, ok, err = s.Get("categories")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFile_RoundTrip(t *testing.T) {
	s, err := NewFile(t.TempDir())
	require.NoError(t, err)

	_, ok, err := s.Get("note:coffee|2024-01-05|5.50|debit")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set("note:coffee|2024-01-05|5.50|debit", "flat white"))

	v, ok, err := s.Get("note:coffee|2024-01-05|5.50|debit")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "flat white", v)

	// Overwrite.
	require.NoError(t, s.Set("note:coffee|2024-01-05|5.50|debit", "oat latte"))
	v, _, err = s.Get("note:coffee|2024-01-05|5.50|debit")
	require.NoError(t, err)
	require.Equal(t, "oat latte", v)

	require.NoError(t, s.Delete("note:coffee|2024-01-05|5.50|debit"))
	_, ok, err = s.Get("note:coffee|2024-01-05|5.50|debit")
	require.NoError(t, err)
	require.False(t, ok)

	// Deleting again is fine.
	require.NoError(t, s.Delete("note:coffee|2024-01-05|5.50|debit"))
}

func TestFile_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	s1, err := NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, s1.Set("categories", "persisted"))

	s2, err := NewFile(dir)
	require.NoError(t, err)
	v, ok, err := s2.Get("categories")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "persisted", v)
}

package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bankstream/bankstream/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV_Header(t *testing.T) {
	out, err := CSV(nil)
	require.NoError(t, err)
	assert.Equal(t, "Date,Description,Amount,Type,Category,Notes", strings.TrimSpace(out))
}

func TestCSV_Rows(t *testing.T) {
	out, err := CSV([]domain.Transaction{
		{Date: "2024-01-05", Description: "Coffee", Amount: 5.5, Type: domain.TxDebit, Category: "Dining"},
		{Date: "2024-01-06", Description: "Salary", Amount: 2000, Type: domain.TxCredit, Category: "Salary", Notes: "January"},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "2024-01-05,Coffee,5.50,debit,Dining,", lines[1])
	assert.Equal(t, "2024-01-06,Salary,2000.00,credit,Salary,January", lines[2])
}

func TestCSV_QuotesAndCommasEscaped(t *testing.T) {
	out, err := CSV([]domain.Transaction{
		{
			Date:        "2024-01-07",
			Description: `Cafe "Le Pain", Soho`,
			Amount:      12,
			Type:        domain.TxDebit,
			Category:    "Dining",
			Notes:       `said "hi"`,
		},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	// Embedded quotes are doubled, fields with commas/quotes are wrapped.
	assert.Equal(t, `2024-01-07,"Cafe ""Le Pain"", Soho",12.00,debit,Dining,"said ""hi"""`, lines[1])
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, []domain.Transaction{
		{Date: "2024-01-05", Description: "Coffee", Amount: 5.5, Type: domain.TxDebit, Category: "Dining"},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(buf.String(), "Date,Description,Amount,Type,Category,Notes"))
	assert.Contains(t, buf.String(), "Coffee")
}

// Package export renders transactions as CSV. A pure formatting concern:
// it consumes whatever slice the caller hands it, typically the currently
// filtered view.
package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/bankstream/bankstream/internal/domain"
	"github.com/gocarina/gocsv"
)

// row is the CSV shape. gocsv drives encoding/csv underneath, so embedded
// quotes and commas in descriptions and notes are escaped per RFC 4180.
type row struct {
	Date        string `csv:"Date"`
	Description string `csv:"Description"`
	Amount      string `csv:"Amount"`
	Type        string `csv:"Type"`
	Category    string `csv:"Category"`
	Notes       string `csv:"Notes"`
}

func toRows(txs []domain.Transaction) []row {
	rows := make([]row, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, row{
			Date:        tx.Date,
			Description: tx.Description,
			Amount:      strconv.FormatFloat(tx.Amount, 'f', 2, 64),
			Type:        string(tx.Type),
			Category:    tx.Category,
			Notes:       tx.Notes,
		})
	}
	return rows
}

// CSV returns the transactions as a CSV document with the fixed header
// Date,Description,Amount,Type,Category,Notes. An empty slice yields just
// the header row.
func CSV(txs []domain.Transaction) (string, error) {
	rows := toRows(txs)
	out, err := gocsv.MarshalString(&rows)
	if err != nil {
		return "", fmt.Errorf("export: marshal csv: %w", err)
	}
	return out, nil
}

// Write streams the CSV document to w.
func Write(w io.Writer, txs []domain.Transaction) error {
	rows := toRows(txs)
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("export: write csv: %w", err)
	}
	return nil
}

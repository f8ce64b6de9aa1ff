package domain

// TxType tags the direction of a transaction. Amounts are stored as
// non-negative magnitudes; the type carries the sign.
type TxType string

const (
	TxDebit  TxType = "debit"
	TxCredit TxType = "credit"
)

// Valid reports whether t is one of the two recognized tags.
func (t TxType) Valid() bool {
	return t == TxDebit || t == TxCredit
}

// DefaultCategory is the category every transaction starts in and the
// category transactions fall back to when theirs is deleted.
const DefaultCategory = "Uncategorized"

// RawRecord is one structurally valid record decoded from a single line of
// model output. It exists only between decode and identity assignment and
// is never stored.
type RawRecord struct {
	Date        string
	Description string
	Amount      float64
	Type        TxType
}

// Transaction is the durable entity held by the transaction store.
type Transaction struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"` // ISO "YYYY-MM-DD" as emitted by the model
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Type        TxType  `json:"type"`
	Category    string  `json:"category"`
	Notes       string  `json:"notes,omitempty"`
}

// Category is a user-managed label transactions can be assigned to.
// DefaultCategory is implicit and never appears in the stored set.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

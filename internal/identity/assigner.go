// Package identity turns accepted raw records into transactions with
// session-unique ids and default categorization.
package identity

import (
	"fmt"

	"github.com/bankstream/bankstream/internal/domain"
	"github.com/google/uuid"
)

// NoteRestorer looks up a previously saved note for a record. The lookup is
// opportunistic; implementations report (note, found) and never fail.
type NoteRestorer interface {
	Restore(rec domain.RawRecord) (string, bool)
}

// Assigner synthesizes ids for one ingestion session. Ids combine a
// session token with a monotonically increasing sequence number; the
// counter, not the clock, is what guarantees uniqueness when many records
// arrive in a single chunk. Not safe for concurrent use; the pipeline is
// the only caller.
type Assigner struct {
	token string
	seq   int
	notes NoteRestorer
}

// New creates an assigner for a fresh session. notes may be nil.
func New(notes NoteRestorer) *Assigner {
	return &Assigner{
		token: uuid.NewString()[:8],
		notes: notes,
	}
}

// Assign builds the durable transaction for an accepted record.
func (a *Assigner) Assign(rec domain.RawRecord) domain.Transaction {
	a.seq++

	tx := domain.Transaction{
		ID:          fmt.Sprintf("txn-%s-%d", a.token, a.seq),
		Date:        rec.Date,
		Description: rec.Description,
		Amount:      rec.Amount,
		Type:        rec.Type,
		Category:    domain.DefaultCategory,
	}

	if a.notes != nil {
		if note, ok := a.notes.Restore(rec); ok {
			tx.Notes = note
		}
	}
	return tx
}

// Assigned returns how many ids this session has handed out.
func (a *Assigner) Assigned() int {
	return a.seq
}

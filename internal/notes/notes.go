// Package notes persists per-transaction annotations in the key-value
// collaborator. Keys derive from the transaction's content rather than its
// id, so re-uploading the same statement restores earlier notes even though
// every session assigns fresh ids.
package notes

import (
	"fmt"
	"strings"

	"github.com/bankstream/bankstream/internal/domain"
	"github.com/bankstream/bankstream/internal/kv"
	"github.com/rs/zerolog"
)

const keyPrefix = "note:"

// Service reads and writes notes. All kv failures are logged and swallowed;
// a broken notes store must never fail an ingestion or an edit.
type Service struct {
	kv  kv.Store
	log zerolog.Logger
}

// NewService creates a notes service over the given store.
func NewService(store kv.Store, log zerolog.Logger) *Service {
	return &Service{kv: store, log: log}
}

// Key derives the persistence key for a record: normalized description plus
// date, amount and type. Description is lowercased with whitespace collapsed
// so cosmetic differences between uploads do not orphan a note.
func Key(date, description string, amount float64, typ domain.TxType) string {
	desc := strings.Join(strings.Fields(strings.ToLower(description)), " ")
	return fmt.Sprintf("%s%s|%s|%.2f|%s", keyPrefix, desc, date, amount, typ)
}

// Restore looks up a previously saved note for the record. Missing keys and
// store errors both report no note.
func (s *Service) Restore(rec domain.RawRecord) (string, bool) {
	note, ok, err := s.kv.Get(Key(rec.Date, rec.Description, rec.Amount, rec.Type))
	if err != nil {
		s.log.Warn().Err(err).Msg("note lookup failed")
		return "", false
	}
	if !ok || note == "" {
		return "", false
	}
	return note, true
}

// Save persists the transaction's note, or removes the stored note when it
// has been cleared.
func (s *Service) Save(tx domain.Transaction) {
	key := Key(tx.Date, tx.Description, tx.Amount, tx.Type)

	var err error
	if tx.Notes == "" {
		err = s.kv.Delete(key)
	} else {
		err = s.kv.Set(key, tx.Notes)
	}
	if err != nil {
		s.log.Warn().Err(err).Str("transaction_id", tx.ID).Msg("note save failed")
	}
}

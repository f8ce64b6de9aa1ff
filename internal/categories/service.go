// Package categories manages the user's category set and keeps transaction
// categorization consistent when the set changes: a rename rewrites every
// transaction carrying the old name, a delete sends them back to
// "Uncategorized".
package categories

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/bankstream/bankstream/internal/domain"
	"github.com/bankstream/bankstream/internal/kv"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const storeKey = "categories"

var (
	ErrNotFound  = errors.New("category not found")
	ErrDuplicate = errors.New("category already exists")
	ErrReserved  = errors.New("category name is reserved")
)

// defaultNames seeds a fresh install. "Uncategorized" is deliberately not
// here; it is implicit and immutable.
var defaultNames = []string{
	"Groceries", "Rent", "Utilities", "Salary",
	"Transport", "Dining", "Entertainment", "Health",
}

// Reconciler is the slice of the transaction store this service needs to
// keep category references valid.
type Reconciler interface {
	ReassignCategory(oldName, newName string) int
	ClearCategory(name string) int
}

// Service owns the category set. Persistence failures are logged and
// swallowed; the in-memory set stays authoritative for the session.
type Service struct {
	mu   sync.Mutex
	kv   kv.Store
	txs  Reconciler
	log  zerolog.Logger
	cats []domain.Category
}

// NewService loads the persisted category set, seeding defaults on first
// use or when the stored payload is unreadable.
func NewService(store kv.Store, txs Reconciler, log zerolog.Logger) *Service {
	s := &Service{kv: store, txs: txs, log: log}
	s.cats = s.load()
	return s
}

// List returns the categories in stored order.
func (s *Service) List() []domain.Category {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Category, len(s.cats))
	copy(out, s.cats)
	return out
}

// Exists reports whether name is the default category or a member of the
// current set. Comparison is exact; names are case-sensitive.
func (s *Service) Exists(name string) bool {
	if name == domain.DefaultCategory {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.find(name) >= 0
}

// Create adds a new category with the given name.
func (s *Service) Create(name string) (domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Category{}, fmt.Errorf("categories: empty name")
	}
	if name == domain.DefaultCategory {
		return domain.Category{}, ErrReserved
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.find(name) >= 0 {
		return domain.Category{}, ErrDuplicate
	}

	cat := domain.Category{ID: uuid.NewString(), Name: name}
	s.cats = append(s.cats, cat)
	s.persist()
	return cat, nil
}

// Rename changes a category's name and rewrites every transaction carrying
// the old name.
func (s *Service) Rename(id, newName string) (domain.Category, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return domain.Category{}, fmt.Errorf("categories: empty name")
	}
	if newName == domain.DefaultCategory {
		return domain.Category{}, ErrReserved
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pos := s.findByID(id)
	if pos < 0 {
		return domain.Category{}, ErrNotFound
	}
	if other := s.find(newName); other >= 0 && other != pos {
		return domain.Category{}, ErrDuplicate
	}

	oldName := s.cats[pos].Name
	s.cats[pos].Name = newName
	s.persist()

	if s.txs != nil && oldName != newName {
		n := s.txs.ReassignCategory(oldName, newName)
		s.log.Info().Str("from", oldName).Str("to", newName).Int("transactions", n).Msg("category renamed")
	}
	return s.cats[pos], nil
}

// Delete removes a category and sends its transactions back to the default
// category.
func (s *Service) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos := s.findByID(id)
	if pos < 0 {
		return ErrNotFound
	}

	name := s.cats[pos].Name
	s.cats = append(s.cats[:pos], s.cats[pos+1:]...)
	s.persist()

	if s.txs != nil {
		n := s.txs.ClearCategory(name)
		s.log.Info().Str("category", name).Int("transactions", n).Msg("category deleted")
	}
	return nil
}

// find returns the position of the category with the given name, or -1.
// Callers hold the lock.
func (s *Service) find(name string) int {
	for i, c := range s.cats {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func (s *Service) findByID(id string) int {
	for i, c := range s.cats {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) load() []domain.Category {
	raw, ok, err := s.kv.Get(storeKey)
	if err != nil {
		s.log.Warn().Err(err).Msg("loading categories failed, seeding defaults")
		return seed()
	}
	if !ok {
		return seed()
	}

	var cats []domain.Category
	if err := json.Unmarshal([]byte(raw), &cats); err != nil {
		s.log.Warn().Err(err).Msg("stored categories unreadable, seeding defaults")
		return seed()
	}
	return cats
}

// persist writes the current set. Callers hold the lock.
func (s *Service) persist() {
	data, err := json.Marshal(s.cats)
	if err != nil {
		s.log.Warn().Err(err).Msg("encoding categories failed")
		return
	}
	if err := s.kv.Set(storeKey, string(data)); err != nil {
		s.log.Warn().Err(err).Msg("persisting categories failed")
	}
}

func seed() []domain.Category {
	cats := make([]domain.Category, 0, len(defaultNames))
	for _, name := range defaultNames {
		cats = append(cats, domain.Category{ID: uuid.NewString(), Name: name})
	}
	return cats
}

package catalog

import (
	"sync/atomic"

	"github.com/starford/devlog/internal/models"
)

// Store hands out the current catalog snapshot. Snapshots are immutable;
// a reload swaps the pointer, so readers never observe a partial catalog.
type Store struct {
	cur atomic.Pointer[Catalog]
}

// NewStore creates a store holding c.
func NewStore(c *Catalog) *Store {
	s := &Store{}
	s.Replace(c)
	return s
}

// Current returns the active snapshot.
func (s *Store) Current() *Catalog {
	return s.cur.Load()
}

// Replace installs a new snapshot. A nil catalog is stored as empty.
func (s *Store) Replace(c *Catalog) {
	if c == nil {
		c = &Catalog{}
	}
	s.cur.Store(c)
}

// Posts returns the posts of one section of the current snapshot.
func (s *Store) Posts(section string) []models.PostSummary {
	return s.Current().Posts(section)
}

// All returns every post of the current snapshot.
func (s *Store) All() []models.PostSummary {
	return s.Current().All()
}

// Sections returns the section metadata of the current snapshot.
func (s *Store) Sections() []models.Section {
	return s.Current().Sections()
}

// Section looks up one section of the current snapshot.
func (s *Store) Section(key string) (models.Section, bool) {
	return s.Current().Section(key)
}

// Package selection tracks which tables are included in the export.
package selection

import "sync"

// RowMode controls how many rows are fetched for a selected table.
type RowMode int

const (
	// ModeOne fetches a single sample row. Tables start here.
	ModeOne RowMode = iota
	// ModeNone fetches column metadata only.
	ModeNone
	// ModeAll fetches every row.
	ModeAll
)

func (m RowMode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeAll:
		return "all"
	default:
		return "one"
	}
}

// Store holds the selected table ids and each table's row mode. It is
// session scoped: created empty, mutated only by user actions, discarded on
// exit. Nothing is persisted.
type Store struct {
	mu       sync.RWMutex
	selected map[string]struct{}
	modes    map[string]RowMode
}

// NewStore returns an empty selection.
func NewStore() *Store {
	return &Store{
		selected: make(map[string]struct{}),
		modes:    make(map[string]RowMode),
	}
}

// Toggle flips membership for id and reports whether id is now selected.
// The id is not checked against any table list.
func (s *Store) Toggle(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.selected[id]; ok {
		delete(s.selected, id)
		return false
	}
	s.selected[id] = struct{}{}
	return true
}

// SelectAll makes the selection exactly allIDs, unless it already equals
// allIDs as a set, in which case it clears the selection. Calling it twice
// with the same ids is a no-op pair. Row modes are left alone either way.
func (s *Store) SelectAll(allIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	unique := make(map[string]struct{}, len(allIDs))
	for _, id := range allIDs {
		unique[id] = struct{}{}
	}

	if s.equalsLocked(unique) {
		s.selected = make(map[string]struct{})
		return
	}
	s.selected = unique
}

func (s *Store) equalsLocked(ids map[string]struct{}) bool {
	if len(ids) != len(s.selected) {
		return false
	}
	for id := range ids {
		if _, ok := s.selected[id]; !ok {
			return false
		}
	}
	return true
}

// SetMode records the row mode for id. Membership is unchanged, so a mode
// can outlive deselection; such stale entries are harmless.
func (s *Store) SetMode(id string, mode RowMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modes[id] = mode
}

// Mode returns the row mode for id, defaulting to ModeOne.
func (s *Store) Mode(id string) RowMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modes[id]
}

// IsSelected reports membership for id.
func (s *Store) IsSelected(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.selected[id]
	return ok
}

// Selected returns the selected ids in no particular order.
func (s *Store) Selected() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.selected))
	for id := range s.selected {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the number of selected tables.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.selected)
}

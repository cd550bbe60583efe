package stats

import (
	"sync"

	"github.com/alpenlabs/strata-dashboards/internal/models"
)

// Snapshot is the latest computed statistics object served to readers.
// First-level stats key is the stat label, second level the window label.
type Snapshot struct {
	Stats            map[string]map[string]uint64 `json:"stats"`
	SelectedAccounts map[string][]models.Account  `json:"selected_accounts"`
}

// NewSnapshot returns a fully-initialized zero snapshot: every
// (stat, window) pair from the catalog at 0 and every selection empty, so
// the first read before any refresh completes is well-formed.
func NewSnapshot(catalog *Catalog) Snapshot {
	snap := Snapshot{
		Stats:            make(map[string]map[string]uint64),
		SelectedAccounts: make(map[string][]models.Account),
	}
	for _, stat := range catalog.Stats() {
		values := make(map[string]uint64)
		for _, window := range catalog.Windows() {
			values[catalog.WindowLabel(window)] = 0
		}
		snap.Stats[catalog.StatLabel(stat)] = values
	}
	for _, sel := range catalog.Selections() {
		snap.SelectedAccounts[catalog.SelectionLabel(sel)] = []models.Account{}
	}
	return snap
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Stats:            make(map[string]map[string]uint64, len(s.Stats)),
		SelectedAccounts: make(map[string][]models.Account, len(s.SelectedAccounts)),
	}
	for stat, values := range s.Stats {
		inner := make(map[string]uint64, len(values))
		for window, v := range values {
			inner[window] = v
		}
		out.Stats[stat] = inner
	}
	for sel, accounts := range s.SelectedAccounts {
		copied := make([]models.Account, len(accounts))
		copy(copied, accounts)
		out.SelectedAccounts[sel] = copied
	}
	return out
}

// Store owns the snapshot shared between the refresh task and the HTTP
// read path. One writer holds the write lock for a whole refresh cycle;
// readers only hold the read lock long enough to clone.
type Store struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewStore creates a store holding the zero snapshot for the catalog.
func NewStore(catalog *Catalog) *Store {
	return &Store{snap: NewSnapshot(catalog)}
}

// Read returns a deep copy of the current snapshot.
func (s *Store) Read() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Clone()
}

// Update runs fn with exclusive access to the live snapshot. The refresh
// cycle performs all of its field updates inside one Update call.
func (s *Store) Update(fn func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.snap)
}

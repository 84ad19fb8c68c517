package queue

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/motogarage/backend/internal/models"
)

// Store is the in-memory authoritative view of all queue entries for the
// active session. The external document store is only the durable mirror.
// Every mutation runs under a single mutex because position assignment and
// verification-code uniqueness are cross-entry invariants; reads return
// copies and may run concurrently.
type Store struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*models.QueueEntry
	order   []uuid.UUID // admission order, terminal entries included
	status  models.QueueStatus
}

// NewStore builds an empty store with a closed queue and default hours.
func NewStore() *Store {
	s := &Store{entries: map[uuid.UUID]*models.QueueEntry{}}
	s.status.SetHours(DefaultWeekHours())
	s.status.IsOpen = true
	return s
}

// Txn is the view handed to a Do callback. It must not escape the callback.
type Txn struct {
	s *Store
}

// Do runs fn under the store mutex. Compound operations (admission with code
// check plus renumbering, call-next with rollback) stay atomic with respect
// to each other.
func (s *Store) Do(fn func(tx *Txn) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&Txn{s: s})
}

// Load replaces the in-memory set from the durable mirror, ordered by
// creation time. Called once at startup. The caller's slice is left
// untouched.
func (s *Store) Load(entries []models.QueueEntry, status *models.QueueStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries = append([]models.QueueEntry(nil), entries...)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	s.entries = make(map[uuid.UUID]*models.QueueEntry, len(entries))
	s.order = s.order[:0]
	for i := range entries {
		e := entries[i]
		s.entries[e.ID] = &e
		s.order = append(s.order, e.ID)
	}
	if status != nil {
		s.status = *status
	}
	tx := &Txn{s: s}
	tx.Renumber()
	s.status.CurrentCount = tx.ActiveCount()
}

// Insert adds a freshly admitted entry.
func (tx *Txn) Insert(e models.QueueEntry) {
	entry := e
	tx.s.entries[entry.ID] = &entry
	tx.s.order = append(tx.s.order, entry.ID)
}

// Entry returns the live entry for mutation, or nil if unknown.
func (tx *Txn) Entry(id uuid.UUID) *models.QueueEntry {
	return tx.s.entries[id]
}

// OldestWaiting returns the waiting entry that joined first, or nil. Ties on
// join time cannot occur since admission order is recorded explicitly.
func (tx *Txn) OldestWaiting() *models.QueueEntry {
	for _, id := range tx.s.order {
		if e := tx.s.entries[id]; e != nil && e.Status == models.EntryStatusWaiting {
			return e
		}
	}
	return nil
}

// WaitingCount counts entries currently in waiting status.
func (tx *Txn) WaitingCount() int {
	n := 0
	for _, e := range tx.s.entries {
		if e.Status == models.EntryStatusWaiting {
			n++
		}
	}
	return n
}

// ActiveCount counts waiting plus called entries.
func (tx *Txn) ActiveCount() int {
	n := 0
	for _, e := range tx.s.entries {
		if e.Active() {
			n++
		}
	}
	return n
}

// LiveCodes collects verification codes of all non-expired entries.
func (tx *Txn) LiveCodes(now time.Time) map[string]bool {
	codes := map[string]bool{}
	for _, e := range tx.s.entries {
		if !e.Expired(now) {
			codes[e.VerificationCode] = true
		}
	}
	return codes
}

// Renumber assigns dense 1-based positions to waiting entries in admission
// order. Entries that left the waiting set drop to position zero: they no
// longer hold a place in line.
func (tx *Txn) Renumber() {
	pos := 1
	for _, id := range tx.s.order {
		e := tx.s.entries[id]
		if e == nil {
			continue
		}
		if e.Status == models.EntryStatusWaiting {
			e.Position = pos
			pos++
		} else if e.Position != 0 {
			e.Position = 0
		}
	}
}

// Remove deletes an entry outright. Only admission rollback uses it; settled
// entries are never hard-deleted.
func (tx *Txn) Remove(id uuid.UUID) {
	if _, ok := tx.s.entries[id]; !ok {
		return
	}
	delete(tx.s.entries, id)
	for i, oid := range tx.s.order {
		if oid == id {
			tx.s.order = append(tx.s.order[:i], tx.s.order[i+1:]...)
			break
		}
	}
}

// Restore overwrites an entry with a previously captured pre-image, undoing
// a transition whose durable write failed.
func (tx *Txn) Restore(pre models.QueueEntry) {
	if e, ok := tx.s.entries[pre.ID]; ok {
		*e = pre
	}
}

// Status returns the mutable queue status singleton.
func (tx *Txn) Status() *models.QueueStatus {
	return &tx.s.status
}

// Reset cancels every non-terminal entry and empties the live view, keeping
// terminal entries for history. Returns the cancelled entries together with
// their pre-images so a failed durable write can be undone.
func (tx *Txn) Reset(now time.Time) (cancelled, pre []models.QueueEntry) {
	for _, id := range tx.s.order {
		e := tx.s.entries[id]
		if e == nil || e.Status.Terminal() {
			continue
		}
		pre = append(pre, *e)
		e.Status = models.EntryStatusCancelled
		e.Position = 0
		e.UpdatedAt = now
		cancelled = append(cancelled, *e)
	}
	tx.s.status.CurrentCount = 0
	tx.s.status.LastUpdated = now
	return cancelled, pre
}

// EntryByID returns a copy of the entry, expired or terminal included.
func (s *Store) EntryByID(id uuid.UUID) (models.QueueEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return models.QueueEntry{}, false
	}
	return *e, true
}

// FindByCode returns a copy of the entry holding code, provided its ticket
// has not expired at now. Expired or unmatched codes report not found.
func (s *Store) FindByCode(code string, now time.Time) (models.QueueEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.VerificationCode == code && !e.Expired(now) {
			return *e, true
		}
	}
	return models.QueueEntry{}, false
}

// Snapshot returns copies of all active entries in admission order.
func (s *Store) Snapshot() []models.QueueEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.QueueEntry
	for _, id := range s.order {
		if e := s.entries[id]; e != nil && e.Active() {
			out = append(out, *e)
		}
	}
	return out
}

// History returns copies of all terminal entries in admission order.
func (s *Store) History() []models.QueueEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.QueueEntry
	for _, id := range s.order {
		if e := s.entries[id]; e != nil && e.Status.Terminal() {
			out = append(out, *e)
		}
	}
	return out
}

// StatusSnapshot returns a copy of the queue status singleton.
func (s *Store) StatusSnapshot() models.QueueStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

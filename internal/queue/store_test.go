package queue

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/motogarage/backend/internal/models"
)

func insertWaiting(t *testing.T, s *Store, created time.Time) uuid.UUID {
	t.Helper()
	id := uuid.New()
	err := s.Do(func(tx *Txn) error {
		tx.Insert(models.QueueEntry{
			ID:               id,
			CustomerID:       uuid.New(),
			Status:           models.EntryStatusWaiting,
			VerificationCode: id.String()[:4],
			ExpiresAt:        created.Add(15 * time.Minute),
			CreatedAt:        created,
		})
		tx.Renumber()
		return nil
	})
	require.NoError(t, err)
	return id
}

func TestRenumberKeepsWaitingDense(t *testing.T) {
	s := NewStore()
	now := time.Now()
	a := insertWaiting(t, s, now)
	b := insertWaiting(t, s, now.Add(time.Second))
	c := insertWaiting(t, s, now.Add(2*time.Second))

	s.Do(func(tx *Txn) error {
		tx.Entry(b).Status = models.EntryStatusCancelled
		tx.Renumber()
		return nil
	})

	entryA, _ := s.EntryByID(a)
	entryC, _ := s.EntryByID(c)
	assert.Equal(t, 1, entryA.Position)
	assert.Equal(t, 2, entryC.Position, "cancelling the middle entry moves later entries up by one")
}

func TestOldestWaitingFollowsAdmissionOrder(t *testing.T) {
	s := NewStore()
	now := time.Now()
	a := insertWaiting(t, s, now)
	insertWaiting(t, s, now.Add(time.Second))

	s.Do(func(tx *Txn) error {
		oldest := tx.OldestWaiting()
		require.NotNil(t, oldest)
		assert.Equal(t, a, oldest.ID)
		return nil
	})
}

func TestFindByCodeIgnoresExpiredTickets(t *testing.T) {
	s := NewStore()
	now := time.Now()
	id := uuid.New()
	s.Do(func(tx *Txn) error {
		tx.Insert(models.QueueEntry{
			ID:               id,
			Status:           models.EntryStatusWaiting,
			VerificationCode: "1234",
			ExpiresAt:        now.Add(time.Minute),
			CreatedAt:        now,
		})
		return nil
	})

	_, ok := s.FindByCode("1234", now)
	assert.True(t, ok)

	_, ok = s.FindByCode("1234", now.Add(time.Minute))
	assert.False(t, ok, "a ticket is invalid from its expiry instant onward")
}

func TestResetCancelsActiveAndKeepsHistory(t *testing.T) {
	s := NewStore()
	now := time.Now()
	a := insertWaiting(t, s, now)
	insertWaiting(t, s, now.Add(time.Second))

	var cancelled, pre []models.QueueEntry
	s.Do(func(tx *Txn) error {
		cancelled, pre = tx.Reset(now.Add(time.Minute))
		return nil
	})

	assert.Len(t, cancelled, 2)
	require.Len(t, pre, 2)
	assert.Equal(t, models.EntryStatusWaiting, pre[0].Status, "pre-images keep the original status")
	assert.Empty(t, s.Snapshot())
	assert.Len(t, s.History(), 2)

	entry, ok := s.EntryByID(a)
	require.True(t, ok, "cleared entries stay queryable")
	assert.Equal(t, models.EntryStatusCancelled, entry.Status)
}

func TestRestoreUndoesTransition(t *testing.T) {
	s := NewStore()
	now := time.Now()
	a := insertWaiting(t, s, now)

	var pre models.QueueEntry
	s.Do(func(tx *Txn) error {
		e := tx.Entry(a)
		pre = *e
		e.Status = models.EntryStatusCalled
		tx.Renumber()
		return nil
	})
	s.Do(func(tx *Txn) error {
		tx.Restore(pre)
		tx.Renumber()
		return nil
	})

	entry, _ := s.EntryByID(a)
	assert.Equal(t, models.EntryStatusWaiting, entry.Status)
	assert.Equal(t, 1, entry.Position)
}

func TestLoadRebuildsOrderAndCount(t *testing.T) {
	s := NewStore()
	now := time.Now()
	entries := []models.QueueEntry{
		{ID: uuid.New(), Status: models.EntryStatusWaiting, CreatedAt: now.Add(time.Second)},
		{ID: uuid.New(), Status: models.EntryStatusWaiting, CreatedAt: now},
		{ID: uuid.New(), Status: models.EntryStatusCalled, CreatedAt: now.Add(2 * time.Second)},
	}
	latest, earliest := entries[0].ID, entries[1].ID
	s.Load(entries, nil)

	assert.Equal(t, latest, entries[0].ID, "load must not reorder the caller's slice")
	assert.Equal(t, earliest, entries[1].ID)

	snapshot := s.Snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, earliest, snapshot[0].ID, "load sorts by creation time")
	assert.Equal(t, 1, snapshot[0].Position)
	assert.Equal(t, 2, snapshot[1].Position)
	assert.Equal(t, 3, s.StatusSnapshot().CurrentCount)
}

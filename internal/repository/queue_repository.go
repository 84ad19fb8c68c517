package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/motogarage/backend/internal/models"
)

// QueueEntryRepository is the durable mirror of the in-memory queue store.
type QueueEntryRepository struct {
	db *gorm.DB
}

// NewQueueEntryRepository constructs a repository using the provided gorm DB.
func NewQueueEntryRepository(db *gorm.DB) *QueueEntryRepository {
	return &QueueEntryRepository{db: db}
}

// SaveEntry upserts one entry.
func (r *QueueEntryRepository) SaveEntry(ctx context.Context, entry *models.QueueEntry) error {
	return errors.WithStack(r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(entry).Error)
}

// SaveEntries upserts a batch of entries, used by renumbering sweeps and the
// end-of-day clear.
func (r *QueueEntryRepository) SaveEntries(ctx context.Context, entries []models.QueueEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return errors.WithStack(r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&entries).Error)
}

// FindByID returns the entry by id.
func (r *QueueEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.QueueEntry, error) {
	var entry models.QueueEntry
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		return nil, errors.WithStack(err)
	}
	return &entry, nil
}

// ListActive returns waiting and called entries ordered by creation time,
// used to rebuild the in-memory store at startup.
func (r *QueueEntryRepository) ListActive(ctx context.Context) ([]models.QueueEntry, error) {
	var entries []models.QueueEntry
	err := r.db.WithContext(ctx).
		Where("status IN ?", []models.EntryStatus{models.EntryStatusWaiting, models.EntryStatusCalled}).
		Order("created_at asc").
		Find(&entries).Error
	return entries, errors.WithStack(err)
}

// ListHistory returns terminal entries newest first.
func (r *QueueEntryRepository) ListHistory(ctx context.Context, limit, offset int) ([]models.QueueEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []models.QueueEntry
	err := r.db.WithContext(ctx).
		Where("status IN ?", []models.EntryStatus{models.EntryStatusServed, models.EntryStatusCancelled, models.EntryStatusNoShow}).
		Order("created_at desc").
		Limit(limit).Offset(offset).
		Find(&entries).Error
	return entries, errors.WithStack(err)
}

// QueueStatusRepository persists the queue configuration singleton.
type QueueStatusRepository struct {
	db *gorm.DB
}

// NewQueueStatusRepository constructs the singleton repository.
func NewQueueStatusRepository(db *gorm.DB) *QueueStatusRepository {
	return &QueueStatusRepository{db: db}
}

// queueStatusID pins the singleton row.
const queueStatusID = 1

// Load returns the stored status, or nil when none has been saved yet.
func (r *QueueStatusRepository) Load(ctx context.Context) (*models.QueueStatus, error) {
	var status models.QueueStatus
	err := r.db.WithContext(ctx).First(&status, "id = ?", queueStatusID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &status, nil
}

// Save upserts the singleton row.
func (r *QueueStatusRepository) Save(ctx context.Context, status *models.QueueStatus) error {
	status.ID = queueStatusID
	return errors.WithStack(r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(status).Error)
}

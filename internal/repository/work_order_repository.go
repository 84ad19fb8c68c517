package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/example/motogarage/backend/internal/models"
)

// WorkOrderRepository provides persistence access for work orders.
type WorkOrderRepository struct {
	db *gorm.DB
}

// NewWorkOrderRepository constructs a repository using the provided gorm DB.
func NewWorkOrderRepository(db *gorm.DB) *WorkOrderRepository {
	return &WorkOrderRepository{db: db}
}

// Create persists a new work order.
func (r *WorkOrderRepository) Create(ctx context.Context, order *models.WorkOrder) error {
	return errors.WithStack(r.db.WithContext(ctx).Create(order).Error)
}

// FindByQueueEntry returns the work order created from a queue entry, or nil
// when none exists yet.
func (r *WorkOrderRepository) FindByQueueEntry(ctx context.Context, entryID uuid.UUID) (*models.WorkOrder, error) {
	var order models.WorkOrder
	err := r.db.WithContext(ctx).First(&order, "queue_entry_id = ?", entryID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &order, nil
}

// ListInProgress returns the work orders currently on a bench.
func (r *WorkOrderRepository) ListInProgress(ctx context.Context) ([]models.WorkOrder, error) {
	var orders []models.WorkOrder
	err := r.db.WithContext(ctx).
		Where("status = ?", models.WorkOrderInProgress).
		Find(&orders).Error
	return orders, errors.WithStack(err)
}

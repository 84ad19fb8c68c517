// Package workorder materializes billable jobs from queue entries.
package workorder

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/example/motogarage/backend/internal/directory"
	"github.com/example/motogarage/backend/internal/models"
	"github.com/example/motogarage/backend/internal/repository"
)

// Creator creates work orders from called queue entries. Creation is
// idempotent per entry: calling it twice for the same entry returns the
// first work order instead of creating another.
type Creator struct {
	orders    *repository.WorkOrderRepository
	directory *directory.Service
}

// NewCreator wires the collaborator.
func NewCreator(orders *repository.WorkOrderRepository, dir *directory.Service) *Creator {
	return &Creator{orders: orders, directory: dir}
}

// CreateFromQueueEntry builds and persists the work order for a called
// entry, assigned to the calling technician. The workload cache is
// invalidated before returning since the new job changes workloads.
func (c *Creator) CreateFromQueueEntry(ctx context.Context, entry models.QueueEntry, technicianID uuid.UUID) (*models.WorkOrder, error) {
	existing, err := c.orders.FindByQueueEntry(ctx, entry.ID)
	if err != nil {
		return nil, errors.Wrap(err, "check existing work order")
	}
	if existing != nil {
		return existing, nil
	}

	entryID := entry.ID
	techID := technicianID
	order := &models.WorkOrder{
		QueueEntryID: &entryID,
		CustomerID:   entry.CustomerID,
		MotorcycleID: entry.MotorcycleID,
		TechnicianID: &techID,
		Status:       models.WorkOrderInProgress,
		Description:  describeEntry(entry),
	}
	if err := c.orders.Create(ctx, order); err != nil {
		return nil, errors.Wrap(err, "create work order")
	}
	c.directory.InvalidateWorkloads(ctx)
	return order, nil
}

func describeEntry(entry models.QueueEntry) string {
	desc := fmt.Sprintf("Walk-in service (ticket %s)", entry.VerificationCode)
	if entry.Plate != "" {
		desc += ", plate " + entry.Plate
	}
	if entry.Notes != "" {
		desc += ": " + entry.Notes
	}
	return desc
}

// Package directory assembles the read models the queue engine and the
// staff dashboard need about technicians: who exists, their skills, and how
// loaded they currently are.
package directory

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/example/motogarage/backend/internal/assignment"
	"github.com/example/motogarage/backend/internal/cache"
	"github.com/example/motogarage/backend/internal/models"
	"github.com/example/motogarage/backend/internal/repository"
)

// WorkloadCacheKey holds the cached technician workload read model. Every
// mutation that can change workloads must invalidate it synchronously.
const WorkloadCacheKey = "technicians:workload"

// Service reads technicians and derives workloads against a frozen snapshot
// of appointments and work orders, caching the result briefly.
type Service struct {
	technicians  *repository.TechnicianRepository
	appointments *repository.AppointmentRepository
	workOrders   *repository.WorkOrderRepository
	calc         assignment.Calculator
	cache        *cache.Cache
}

// NewService wires the directory read model.
func NewService(
	technicians *repository.TechnicianRepository,
	appointments *repository.AppointmentRepository,
	workOrders *repository.WorkOrderRepository,
	calc assignment.Calculator,
	c *cache.Cache,
) *Service {
	return &Service{
		technicians:  technicians,
		appointments: appointments,
		workOrders:   workOrders,
		calc:         calc,
		cache:        c,
	}
}

// Snapshot fetches technicians plus the live appointment and work-order
// sets in one place, so callers always reason over a consistent view.
func (s *Service) Snapshot(ctx context.Context) ([]models.Technician, []models.Appointment, []models.WorkOrder, error) {
	techs, err := s.technicians.List(ctx)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "list technicians")
	}
	appts, err := s.appointments.ListLive(ctx)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "list appointments")
	}
	orders, err := s.workOrders.ListInProgress(ctx)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "list work orders")
	}
	return techs, appts, orders, nil
}

// Workloads returns the derived workload of every technician, served from
// cache when fresh.
func (s *Service) Workloads(ctx context.Context) ([]models.TechnicianWorkload, error) {
	var cached []models.TechnicianWorkload
	if hit, err := s.cache.Get(ctx, WorkloadCacheKey, &cached); err != nil {
		log.Printf("workload cache read failed: %v", err)
	} else if hit {
		return cached, nil
	}

	techs, appts, orders, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	workloads := s.calc.Workloads(techs, appts, orders)
	if err := s.cache.Set(ctx, WorkloadCacheKey, workloads); err != nil {
		log.Printf("workload cache write failed: %v", err)
	}
	return workloads, nil
}

// AvailableTechnicianCount feeds the admission-time wait estimate.
func (s *Service) AvailableTechnicianCount(ctx context.Context) (int, error) {
	workloads, err := s.Workloads(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, w := range workloads {
		if w.Assignable && w.Technician.OnShift && !w.Technician.ManuallyUnavailable() {
			n++
		}
	}
	return n, nil
}

// TechnicianName resolves a technician's display name.
func (s *Service) TechnicianName(ctx context.Context, id uuid.UUID) (string, error) {
	tech, err := s.technicians.FindByID(ctx, id)
	if err != nil {
		return "", errors.Wrap(err, "find technician")
	}
	return tech.Name, nil
}

// InvalidateWorkloads drops the cached workload read model. Mutation paths
// call this before returning to the caller.
func (s *Service) InvalidateWorkloads(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, WorkloadCacheKey); err != nil {
		log.Printf("workload cache invalidation failed: %v", err)
	}
}

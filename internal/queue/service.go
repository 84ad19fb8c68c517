package queue

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/example/motogarage/backend/internal/events"
	"github.com/example/motogarage/backend/internal/models"
	"github.com/example/motogarage/backend/internal/monitoring"
)

// Persister is the durable mirror of the in-memory queue state. The engine
// commits in memory first and expects read-after-write consistency from the
// mirror.
type Persister interface {
	SaveEntry(ctx context.Context, entry *models.QueueEntry) error
	SaveEntries(ctx context.Context, entries []models.QueueEntry) error
	SaveStatus(ctx context.Context, status *models.QueueStatus) error
}

// WorkOrderCreator materializes a billable job when a queue entry is called.
// Creation must be idempotent per entry so a retried CallNext cannot produce
// a second work order.
type WorkOrderCreator interface {
	CreateFromQueueEntry(ctx context.Context, entry models.QueueEntry, technicianID uuid.UUID) (*models.WorkOrder, error)
}

// Directory is the read-only technician lookup used for wait estimates and
// display names.
type Directory interface {
	AvailableTechnicianCount(ctx context.Context) (int, error)
	TechnicianName(ctx context.Context, id uuid.UUID) (string, error)
}

// MotorcycleRegistry verifies or registers a customer's motorcycle at
// admission time.
type MotorcycleRegistry interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Motorcycle, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Motorcycle, error)
	Register(ctx context.Context, m *models.Motorcycle) error
}

// DefaultAverageServiceMinutes feeds the wait estimate when not configured.
const DefaultAverageServiceMinutes = 30

// Service is the queue state machine. All entry transitions go through it
// and serialize on the store mutex.
type Service struct {
	store       *Store
	tickets     *TicketGenerator
	persister   Persister
	workOrders  WorkOrderCreator
	directory   Directory
	motorcycles MotorcycleRegistry
	bus         *events.Bus
	avgMinutes  int
	now         func() time.Time
}

// Options tunes service behavior; zero values fall back to defaults.
type Options struct {
	TicketTTL             time.Duration
	AverageServiceMinutes int
	Now                   func() time.Time
}

// NewService wires the state machine with its collaborators.
func NewService(store *Store, persister Persister, workOrders WorkOrderCreator, directory Directory, motorcycles MotorcycleRegistry, bus *events.Bus, opts Options) *Service {
	avg := opts.AverageServiceMinutes
	if avg <= 0 {
		avg = DefaultAverageServiceMinutes
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:       store,
		tickets:     NewTicketGenerator(opts.TicketTTL),
		persister:   persister,
		workOrders:  workOrders,
		directory:   directory,
		motorcycles: motorcycles,
		bus:         bus,
		avgMinutes:  avg,
		now:         now,
	}
}

// Store exposes the underlying store for read-only snapshot consumers.
func (s *Service) Store() *Store {
	return s.store
}

// AddInput carries a join request from the intake flow.
type AddInput struct {
	CustomerID   uuid.UUID
	ServiceType  models.ServiceType
	MotorcycleID *uuid.UUID
	Plate        string
	MileageKm    *int
	Notes        string
}

// AddToQueue admits a customer into the live queue: gate check, motorcycle
// precondition, position assignment, ticket issue, wait estimate, durable
// mirror write, queue.entry_added event. Returns the new entry.
func (s *Service) AddToQueue(ctx context.Context, in AddInput) (*models.QueueEntry, error) {
	now := s.now()
	if in.CustomerID == uuid.Nil {
		return nil, &ValidationError{Reason: "customerId is required"}
	}
	switch in.ServiceType {
	case models.ServiceTypeAppointment, models.ServiceTypeDirectWorkOrder:
	default:
		return nil, &ValidationError{Reason: "unknown service type"}
	}

	motorcycleID, err := s.resolveMotorcycle(ctx, &in)
	if err != nil {
		return nil, err
	}

	available, err := s.directory.AvailableTechnicianCount(ctx)
	if err != nil {
		log.Printf("available technician lookup failed, assuming one: %v", err)
		available = 1
	}
	if available < 1 {
		available = 1
	}

	var entry models.QueueEntry
	err = s.store.Do(func(tx *Txn) error {
		status := tx.Status()
		if open, err := s.gateOpen(status, now); err != nil {
			log.Printf("operating hours check failed, treating as closed: %v", err)
			return &ValidationError{Reason: "workshop is closed"}
		} else if !open {
			return &ValidationError{Reason: "workshop is closed"}
		}

		ticket, err := s.tickets.Issue(now, tx.LiveCodes(now))
		if err != nil {
			return err
		}
		position := tx.WaitingCount() + 1
		entry = models.QueueEntry{
			ID:                   uuid.New(),
			CustomerID:           in.CustomerID,
			MotorcycleID:         motorcycleID,
			Plate:                in.Plate,
			MileageKm:            in.MileageKm,
			Notes:                in.Notes,
			ServiceType:          in.ServiceType,
			Status:               models.EntryStatusWaiting,
			Position:             position,
			EstimatedWaitMinutes: position * s.avgMinutes / available,
			VerificationCode:     ticket.Code,
			ExpiresAt:            ticket.ExpiresAt,
			CreatedAt:            now,
			UpdatedAt:            now,
		}
		tx.Insert(entry)
		tx.Renumber()
		status.CurrentCount = tx.ActiveCount()
		status.LastUpdated = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.persistEntryAndStatus(ctx, &entry); err != nil {
		s.store.Do(func(tx *Txn) error {
			tx.Remove(entry.ID)
			tx.Renumber()
			tx.Status().CurrentCount = tx.ActiveCount()
			return nil
		})
		return nil, &DependencyError{Op: "persist queue entry", Err: err}
	}

	monitoring.EntriesAdmitted.Inc()
	monitoring.WaitEstimateMinutes.Observe(float64(entry.EstimatedWaitMinutes))
	s.observeDepth()
	s.bus.Publish(events.Event{Type: events.QueueEntryAdded, Payload: map[string]any{
		"entryId":           entry.ID.String(),
		"position":          entry.Position,
		"estimatedWaitTime": entry.EstimatedWaitMinutes,
		"currentCount":      s.store.StatusSnapshot().CurrentCount,
	}})
	return &entry, nil
}

// resolveMotorcycle enforces the admission precondition for direct work
// orders: an existing motorcycle is verified, or one is registered on the
// fly from the supplied plate.
func (s *Service) resolveMotorcycle(ctx context.Context, in *AddInput) (*uuid.UUID, error) {
	if in.ServiceType != models.ServiceTypeDirectWorkOrder {
		return in.MotorcycleID, nil
	}
	if in.MotorcycleID != nil {
		m, err := s.motorcycles.FindByID(ctx, *in.MotorcycleID)
		if err != nil || m == nil {
			return nil, &NotFoundError{Resource: "motorcycle", ID: in.MotorcycleID.String()}
		}
		if m.CustomerID != in.CustomerID {
			return nil, &ValidationError{Reason: "motorcycle belongs to another customer"}
		}
		return in.MotorcycleID, nil
	}
	owned, err := s.motorcycles.ListByCustomer(ctx, in.CustomerID)
	if err != nil {
		return nil, &DependencyError{Op: "motorcycle lookup", Err: err}
	}
	if len(owned) > 0 {
		id := owned[0].ID
		return &id, nil
	}
	if in.Plate == "" {
		return nil, &ValidationError{Reason: "a direct work order requires a registered motorcycle or a plate"}
	}
	m := &models.Motorcycle{CustomerID: in.CustomerID, Plate: in.Plate, MileageKm: in.MileageKm}
	if err := s.motorcycles.Register(ctx, m); err != nil {
		return nil, &DependencyError{Op: "register motorcycle", Err: err}
	}
	id := m.ID
	return &id, nil
}

// CallNext picks the oldest waiting entry, marks it called for the given
// technician and materializes its work order. A waiting entry whose ticket
// already expired is transitioned to no_show and skipped. Returns nil with
// no error when the queue is empty.
func (s *Service) CallNext(ctx context.Context, technicianID uuid.UUID) (*models.QueueEntry, error) {
	now := s.now()
	var (
		called   models.QueueEntry
		preImage models.QueueEntry
		noShows  []models.QueueEntry
		found    bool
	)
	s.store.Do(func(tx *Txn) error {
		for {
			e := tx.OldestWaiting()
			if e == nil {
				return nil
			}
			if e.Expired(now) {
				e.Status = models.EntryStatusNoShow
				e.UpdatedAt = now
				noShows = append(noShows, *e)
				tx.Renumber()
				continue
			}
			preImage = *e
			e.Status = models.EntryStatusCalled
			e.AssignedTo = &technicianID
			e.UpdatedAt = now
			tx.Renumber()
			tx.Status().CurrentCount = tx.ActiveCount()
			tx.Status().LastUpdated = now
			called = *e
			found = true
			return nil
		}
	})

	if len(noShows) > 0 {
		monitoring.EntriesExpired.Add(float64(len(noShows)))
		if err := s.persister.SaveEntries(ctx, noShows); err != nil {
			log.Printf("persist no-show transitions: %v", err)
		}
	}
	if !found {
		s.observeDepth()
		return nil, nil
	}

	workOrder, err := s.workOrders.CreateFromQueueEntry(ctx, called, technicianID)
	if err != nil {
		s.rollbackEntry(preImage, models.EntryStatusCalled, now)
		return nil, &DependencyError{Op: "work order creation", Err: err}
	}

	s.store.Do(func(tx *Txn) error {
		if e := tx.Entry(called.ID); e != nil {
			e.WorkOrderID = &workOrder.ID
			called = *e
		}
		return nil
	})

	if err := s.persistEntryAndStatus(ctx, &called); err != nil {
		s.rollbackEntry(preImage, models.EntryStatusCalled, now)
		return nil, &DependencyError{Op: "persist called entry", Err: err}
	}

	name, nameErr := s.directory.TechnicianName(ctx, technicianID)
	if nameErr != nil {
		log.Printf("technician name lookup failed: %v", nameErr)
		name = technicianID.String()
	}

	monitoring.EntriesCalled.Inc()
	s.observeDepth()
	s.bus.Publish(events.Event{Type: events.QueueCalled, Payload: map[string]any{
		"entryId":          called.ID.String(),
		"verificationCode": called.VerificationCode,
		"technicianId":     technicianID.String(),
		"technicianName":   name,
		"workOrderId":      workOrder.ID.String(),
	}})
	return &called, nil
}

// rollbackEntry restores a transition pre-image after a collaborator
// failure, so the entry is never left called without a work order. The
// restore only applies while the entry still holds the status the failed
// transition set; a concurrent transition that moved it on wins.
func (s *Service) rollbackEntry(pre models.QueueEntry, set models.EntryStatus, now time.Time) {
	s.store.Do(func(tx *Txn) error {
		if e := tx.Entry(pre.ID); e == nil || e.Status != set {
			return nil
		}
		tx.Restore(pre)
		tx.Renumber()
		tx.Status().CurrentCount = tx.ActiveCount()
		tx.Status().LastUpdated = now
		return nil
	})
}

// StartService moves a called entry onto the workbench.
func (s *Service) StartService(ctx context.Context, id uuid.UUID) (*models.QueueEntry, error) {
	return s.transition(ctx, id, models.EntryStatusInService, models.EntryStatusCalled)
}

// ServeEntry finishes an entry that was called or already in service.
func (s *Service) ServeEntry(ctx context.Context, id uuid.UUID) (*models.QueueEntry, error) {
	e, err := s.transition(ctx, id, models.EntryStatusServed, models.EntryStatusCalled, models.EntryStatusInService)
	if err == nil {
		monitoring.EntriesServed.Inc()
	}
	return e, err
}

// CancelEntry withdraws a waiting or called entry.
func (s *Service) CancelEntry(ctx context.Context, id uuid.UUID) (*models.QueueEntry, error) {
	e, err := s.transition(ctx, id, models.EntryStatusCancelled, models.EntryStatusWaiting, models.EntryStatusCalled)
	if err == nil {
		monitoring.EntriesCancelled.Inc()
	}
	return e, err
}

// transition applies a one-way status change when the entry currently holds
// one of the allowed statuses, then mirrors it durably. An unknown entry and
// a disallowed source status both report not found.
func (s *Service) transition(ctx context.Context, id uuid.UUID, to models.EntryStatus, from ...models.EntryStatus) (*models.QueueEntry, error) {
	now := s.now()
	var (
		updated  models.QueueEntry
		preImage models.QueueEntry
	)
	err := s.store.Do(func(tx *Txn) error {
		e := tx.Entry(id)
		if e == nil {
			return &NotFoundError{Resource: "queue entry", ID: id.String()}
		}
		allowed := false
		for _, f := range from {
			if e.Status == f {
				allowed = true
				break
			}
		}
		if !allowed {
			return &NotFoundError{Resource: "queue entry", ID: id.String()}
		}
		preImage = *e
		e.Status = to
		e.UpdatedAt = now
		tx.Renumber()
		tx.Status().CurrentCount = tx.ActiveCount()
		tx.Status().LastUpdated = now
		updated = *e
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.persistEntryAndStatus(ctx, &updated); err != nil {
		s.rollbackEntry(preImage, to, now)
		return nil, &DependencyError{Op: "persist queue entry", Err: err}
	}
	s.observeDepth()
	return &updated, nil
}

// ClearQueue cancels every non-terminal entry, the end-of-day reset.
func (s *Service) ClearQueue(ctx context.Context) (int, error) {
	now := s.now()
	var cancelled, preImages []models.QueueEntry
	s.store.Do(func(tx *Txn) error {
		cancelled, preImages = tx.Reset(now)
		return nil
	})
	if len(cancelled) == 0 {
		return 0, nil
	}
	if err := s.persister.SaveEntries(ctx, cancelled); err != nil {
		s.store.Do(func(tx *Txn) error {
			for _, pre := range preImages {
				tx.Restore(pre)
			}
			tx.Renumber()
			tx.Status().CurrentCount = tx.ActiveCount()
			tx.Status().LastUpdated = now
			return nil
		})
		return 0, &DependencyError{Op: "persist cleared entries", Err: err}
	}
	status := s.store.StatusSnapshot()
	// The status row only mirrors a derived counter; a failed write here is
	// corrected by the next successful mutation.
	if err := s.persister.SaveStatus(ctx, &status); err != nil {
		log.Printf("persist queue status after clear: %v", err)
	}
	monitoring.EntriesCancelled.Add(float64(len(cancelled)))
	s.observeDepth()
	s.bus.Publish(events.Event{Type: events.QueueStatusChanged, Payload: map[string]any{
		"currentCount": 0,
		"cleared":      len(cancelled),
	}})
	return len(cancelled), nil
}

// IsCodeValid reports whether a verification code matches a live ticket.
// Expired or unmatched codes are simply invalid, never an error.
func (s *Service) IsCodeValid(code string) bool {
	_, ok := s.store.FindByCode(code, s.now())
	return ok
}

// GetEntryByCode resolves a live verification code to its entry for
// unauthenticated ticket-display flows.
func (s *Service) GetEntryByCode(code string) (models.QueueEntry, bool) {
	return s.store.FindByCode(code, s.now())
}

// GetEntry returns any entry by id, terminal states included.
func (s *Service) GetEntry(id uuid.UUID) (models.QueueEntry, bool) {
	return s.store.EntryByID(id)
}

// ToggleQueueStatus flips the manual open toggle without touching the
// weekly schedule.
func (s *Service) ToggleQueueStatus(ctx context.Context) (bool, error) {
	now := s.now()
	var isOpen, prev bool
	s.store.Do(func(tx *Txn) error {
		status := tx.Status()
		prev = status.IsOpen
		status.IsOpen = !status.IsOpen
		status.LastUpdated = now
		isOpen = status.IsOpen
		return nil
	})
	status := s.store.StatusSnapshot()
	if err := s.persister.SaveStatus(ctx, &status); err != nil {
		s.store.Do(func(tx *Txn) error {
			tx.Status().IsOpen = prev
			return nil
		})
		return prev, &DependencyError{Op: "persist queue status", Err: err}
	}
	s.bus.Publish(events.Event{Type: events.QueueStatusChanged, Payload: map[string]any{
		"isOpen": isOpen,
	}})
	return isOpen, nil
}

// UpdateOperatingHours atomically replaces the full weekly schedule. Callers
// must supply all seven days.
func (s *Service) UpdateOperatingHours(ctx context.Context, hours models.WeekHours) error {
	if err := ValidateWeekHours(hours); err != nil {
		return err
	}
	now := s.now()
	var prev models.WeekHours
	s.store.Do(func(tx *Txn) error {
		status := tx.Status()
		prev = status.Hours()
		status.SetHours(hours)
		status.LastUpdated = now
		return nil
	})
	status := s.store.StatusSnapshot()
	if err := s.persister.SaveStatus(ctx, &status); err != nil {
		s.store.Do(func(tx *Txn) error {
			tx.Status().SetHours(prev)
			return nil
		})
		return &DependencyError{Op: "persist operating hours", Err: err}
	}
	s.bus.Publish(events.Event{Type: events.QueueStatusChanged, Payload: map[string]any{
		"operatingHours": "updated",
	}})
	return nil
}

// IsQueueOpen reports whether admission is currently possible: the manual
// toggle and the weekly schedule must both permit it.
func (s *Service) IsQueueOpen() bool {
	status := s.store.StatusSnapshot()
	open, err := s.gateOpen(&status, s.now())
	if err != nil {
		log.Printf("operating hours check failed, treating as closed: %v", err)
		return false
	}
	return open
}

func (s *Service) gateOpen(status *models.QueueStatus, now time.Time) (bool, error) {
	if !status.IsOpen {
		return false, nil
	}
	return IsOpenAt(status.Hours(), now)
}

func (s *Service) persistEntryAndStatus(ctx context.Context, entry *models.QueueEntry) error {
	if err := s.persister.SaveEntry(ctx, entry); err != nil {
		return err
	}
	status := s.store.StatusSnapshot()
	// The status row only mirrors a derived counter; a failed write here is
	// corrected by the next successful mutation, so it never fails the
	// operation or rolls back the entry.
	if err := s.persister.SaveStatus(ctx, &status); err != nil {
		log.Printf("persist queue status: %v", err)
	}
	return nil
}

func (s *Service) observeDepth() {
	monitoring.QueueDepth.Set(float64(s.store.StatusSnapshot().CurrentCount))
}

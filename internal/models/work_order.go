package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WorkOrderStatus describes the life-cycle state of a billable job.
type WorkOrderStatus string

const (
	WorkOrderPending    WorkOrderStatus = "pending"
	WorkOrderInProgress WorkOrderStatus = "in_progress"
	WorkOrderCompleted  WorkOrderStatus = "completed"
	WorkOrderCancelled  WorkOrderStatus = "cancelled"
)

// WorkOrder is the billable job record materialized when a queue entry is
// called. At most one work order exists per queue entry.
type WorkOrder struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	QueueEntryID *uuid.UUID      `gorm:"type:uuid;uniqueIndex" json:"queueEntryId,omitempty"`
	CustomerID   uuid.UUID       `gorm:"type:uuid;index" json:"customerId"`
	MotorcycleID *uuid.UUID      `gorm:"type:uuid" json:"motorcycleId,omitempty"`
	TechnicianID *uuid.UUID      `gorm:"type:uuid;index" json:"technicianId,omitempty"`
	Status       WorkOrderStatus `gorm:"index" json:"status"`
	Description  string          `json:"description,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// AssignedTo reports whether the work order is assigned to the technician.
func (w *WorkOrder) AssignedTo(techID uuid.UUID) bool {
	return w.TechnicianID != nil && *w.TechnicianID == techID
}

// BeforeCreate is a GORM hook that populates the primary key.
func (w *WorkOrder) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if w.Status == "" {
		w.Status = WorkOrderPending
	}
	return nil
}

// Motorcycle is a customer's registered vehicle. Walk-ins without a
// registered motorcycle can have one created on the fly at admission.
type Motorcycle struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID uuid.UUID `gorm:"type:uuid;index" json:"customerId"`
	Plate      string    `gorm:"index" json:"plate"`
	Model      string    `json:"model,omitempty"`
	MileageKm  *int      `json:"mileageKm,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// BeforeCreate is a GORM hook that populates the primary key.
func (m *Motorcycle) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

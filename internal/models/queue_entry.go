package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ServiceType distinguishes how a walk-in customer wants to be handled.
type ServiceType string

const (
	ServiceTypeAppointment     ServiceType = "appointment"
	ServiceTypeDirectWorkOrder ServiceType = "direct_work_order"
)

// EntryStatus describes the life-cycle state of a queue entry.
type EntryStatus string

const (
	EntryStatusWaiting   EntryStatus = "waiting"
	EntryStatusCalled    EntryStatus = "called"
	EntryStatusInService EntryStatus = "in_service"
	EntryStatusServed    EntryStatus = "served"
	EntryStatusCancelled EntryStatus = "cancelled"
	EntryStatusNoShow    EntryStatus = "no_show"
)

// Terminal reports whether the status is an end state. Terminal entries are
// retained for history and never hard-deleted.
func (s EntryStatus) Terminal() bool {
	switch s {
	case EntryStatusServed, EntryStatusCancelled, EntryStatusNoShow:
		return true
	}
	return false
}

// QueueEntry represents one customer's position in the live walk-in queue,
// persisted in Postgres and mirrored by the in-memory queue store.
type QueueEntry struct {
	ID                   uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID           uuid.UUID   `gorm:"type:uuid;index" json:"customerId"`
	MotorcycleID         *uuid.UUID  `gorm:"type:uuid" json:"motorcycleId,omitempty"`
	Plate                string      `json:"plate,omitempty"`
	MileageKm            *int        `json:"mileageKm,omitempty"`
	Notes                string      `json:"notes,omitempty"`
	ServiceType          ServiceType `json:"serviceType"`
	Status               EntryStatus `gorm:"index" json:"status"`
	Position             int         `json:"position"`
	EstimatedWaitMinutes int         `json:"estimatedWaitTime"`
	VerificationCode     string      `gorm:"index" json:"verificationCode"`
	ExpiresAt            time.Time   `json:"expiresAt"`
	AssignedTo           *uuid.UUID  `gorm:"type:uuid" json:"assignedTo,omitempty"`
	WorkOrderID          *uuid.UUID  `gorm:"type:uuid" json:"workOrderId,omitempty"`
	CreatedAt            time.Time   `json:"createdAt"`
	UpdatedAt            time.Time   `json:"updatedAt"`
}

// Active reports whether the entry still occupies the live queue.
func (e *QueueEntry) Active() bool {
	return e.Status == EntryStatusWaiting || e.Status == EntryStatusCalled
}

// Expired reports whether the verification ticket is no longer valid at now.
func (e *QueueEntry) Expired(now time.Time) bool {
	return !e.ExpiresAt.After(now)
}

// BeforeCreate is a GORM hook that populates the primary key.
func (e *QueueEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Status == "" {
		e.Status = EntryStatusWaiting
	}
	return nil
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppointmentStatus describes the life-cycle state of a scheduled visit.
type AppointmentStatus string

const (
	AppointmentScheduled  AppointmentStatus = "scheduled"
	AppointmentInProgress AppointmentStatus = "in_progress"
	AppointmentCompleted  AppointmentStatus = "completed"
	AppointmentCancelled  AppointmentStatus = "cancelled"
)

// Appointment is a scheduled service visit with a fixed time slot.
type Appointment struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID   uuid.UUID         `gorm:"type:uuid;index" json:"customerId"`
	MotorcycleID *uuid.UUID        `gorm:"type:uuid" json:"motorcycleId,omitempty"`
	TechnicianID *uuid.UUID        `gorm:"type:uuid;index" json:"technicianId,omitempty"`
	ServiceItem  string            `json:"serviceItem"`
	Status       AppointmentStatus `gorm:"index" json:"status"`
	StartsAt     time.Time         `json:"startsAt"`
	EndsAt       time.Time         `json:"endsAt"`
	WorkOrderID  *uuid.UUID        `gorm:"type:uuid" json:"workOrderId,omitempty"`
	Notes        string            `json:"notes,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// AssignedTo reports whether the appointment is assigned to the technician.
func (a *Appointment) AssignedTo(techID uuid.UUID) bool {
	return a.TechnicianID != nil && *a.TechnicianID == techID
}

// BeforeCreate is a GORM hook that populates the primary key.
func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = AppointmentScheduled
	}
	return nil
}

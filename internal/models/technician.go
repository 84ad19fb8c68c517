package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Technician is the read model of a workshop technician from the user
// directory. The queue engine only reads it; account management lives
// elsewhere.
type Technician struct {
	ID        uuid.UUID                     `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string                        `json:"name"`
	Skills    datatypes.JSONSlice[string]   `json:"skills"`
	OnShift   bool                          `json:"onShift"`
	Available *bool                         `json:"available,omitempty"`
	CreatedAt time.Time                     `json:"createdAt"`
	UpdatedAt time.Time                     `json:"updatedAt"`
}

// HasSkill reports whether the technician lists the given skill.
func (t *Technician) HasSkill(skill string) bool {
	for _, s := range t.Skills {
		if s == skill {
			return true
		}
	}
	return false
}

// ManuallyUnavailable reports whether the technician has explicitly flagged
// themselves unavailable. An unset flag does not veto assignment.
func (t *Technician) ManuallyUnavailable() bool {
	return t.Available != nil && !*t.Available
}

// BeforeCreate is a GORM hook that populates the primary key.
func (t *Technician) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// WorkloadStatus summarizes how loaded a technician currently is.
type WorkloadStatus string

const (
	WorkloadAvailable   WorkloadStatus = "available"
	WorkloadBusy        WorkloadStatus = "busy"
	WorkloadFullyBooked WorkloadStatus = "fully_booked"
)

// TechnicianWorkload is derived per technician per request and never
// persisted.
type TechnicianWorkload struct {
	Technician     Technician     `json:"technician"`
	Status         WorkloadStatus `json:"status"`
	ActiveServices int            `json:"activeServices"`
	Assignable     bool           `json:"isAvailableForAssignment"`
	ActiveWork     []WorkOrder    `json:"activeWork"`
	Scheduled      []Appointment  `json:"scheduled"`
}

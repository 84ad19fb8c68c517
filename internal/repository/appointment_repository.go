package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/example/motogarage/backend/internal/models"
)

// AppointmentRepository provides persistence access for appointments.
type AppointmentRepository struct {
	db *gorm.DB
}

// NewAppointmentRepository constructs a repository using the provided gorm DB.
func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// FindByID returns the appointment by id.
func (r *AppointmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	var appt models.Appointment
	if err := r.db.WithContext(ctx).First(&appt, "id = ?", id).Error; err != nil {
		return nil, errors.WithStack(err)
	}
	return &appt, nil
}

// ListLive returns scheduled and in-progress appointments, the snapshot the
// workload calculator and the assignment selector run against.
func (r *AppointmentRepository) ListLive(ctx context.Context) ([]models.Appointment, error) {
	var appts []models.Appointment
	err := r.db.WithContext(ctx).
		Where("status IN ?", []models.AppointmentStatus{models.AppointmentScheduled, models.AppointmentInProgress}).
		Order("starts_at asc").
		Find(&appts).Error
	return appts, errors.WithStack(err)
}

// Save persists the modified appointment.
func (r *AppointmentRepository) Save(ctx context.Context, appt *models.Appointment) error {
	return errors.WithStack(r.db.WithContext(ctx).Save(appt).Error)
}

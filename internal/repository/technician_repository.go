package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/example/motogarage/backend/internal/models"
)

// TechnicianRepository is the read-only view of the workshop's technician
// directory.
type TechnicianRepository struct {
	db *gorm.DB
}

// NewTechnicianRepository constructs a repository using the provided gorm DB.
func NewTechnicianRepository(db *gorm.DB) *TechnicianRepository {
	return &TechnicianRepository{db: db}
}

// List returns all technicians in stable directory order.
func (r *TechnicianRepository) List(ctx context.Context) ([]models.Technician, error) {
	var techs []models.Technician
	err := r.db.WithContext(ctx).Order("created_at asc").Find(&techs).Error
	return techs, errors.WithStack(err)
}

// FindByID returns the technician by id.
func (r *TechnicianRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Technician, error) {
	var tech models.Technician
	if err := r.db.WithContext(ctx).First(&tech, "id = ?", id).Error; err != nil {
		return nil, errors.WithStack(err)
	}
	return &tech, nil
}

// MotorcycleRepository provides persistence access for customer motorcycles.
type MotorcycleRepository struct {
	db *gorm.DB
}

// NewMotorcycleRepository constructs a repository using the provided gorm DB.
func NewMotorcycleRepository(db *gorm.DB) *MotorcycleRepository {
	return &MotorcycleRepository{db: db}
}

// FindByID returns the motorcycle by id, or nil when unknown.
func (r *MotorcycleRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Motorcycle, error) {
	var m models.Motorcycle
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &m, nil
}

// ListByCustomer returns the customer's registered motorcycles.
func (r *MotorcycleRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Motorcycle, error) {
	var out []models.Motorcycle
	err := r.db.WithContext(ctx).Where("customer_id = ?", customerID).Order("created_at asc").Find(&out).Error
	return out, errors.WithStack(err)
}

// Register persists a motorcycle created on the fly during queue admission.
func (r *MotorcycleRepository) Register(ctx context.Context, m *models.Motorcycle) error {
	return errors.WithStack(r.db.WithContext(ctx).Create(m).Error)
}

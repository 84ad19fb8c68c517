package assignment

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/example/motogarage/backend/internal/models"
)

func tech(name string, skills ...string) models.Technician {
	return models.Technician{
		ID:      uuid.New(),
		Name:    name,
		Skills:  datatypes.JSONSlice[string](skills),
		OnShift: true,
	}
}

func inProgressAppt(techID uuid.UUID) models.Appointment {
	id := techID
	return models.Appointment{ID: uuid.New(), TechnicianID: &id, Status: models.AppointmentInProgress}
}

func scheduledAppt(techID uuid.UUID) models.Appointment {
	id := techID
	return models.Appointment{ID: uuid.New(), TechnicianID: &id, Status: models.AppointmentScheduled}
}

func inProgressOrder(techID uuid.UUID) models.WorkOrder {
	id := techID
	return models.WorkOrder{ID: uuid.New(), TechnicianID: &id, Status: models.WorkOrderInProgress}
}

func TestWorkloadCountsAppointmentsAndOrders(t *testing.T) {
	calc := NewCalculator(0)
	a := tech("Asep")

	w := calc.WorkloadFor(a, []models.Appointment{inProgressAppt(a.ID), scheduledAppt(a.ID)}, []models.WorkOrder{inProgressOrder(a.ID)})

	assert.Equal(t, 2, w.ActiveServices, "one in-progress appointment plus one in-progress work order")
	assert.Len(t, w.Scheduled, 1, "scheduled appointments are collected for display, not counted")
	assert.Equal(t, models.WorkloadFullyBooked, w.Status)
	assert.False(t, w.Assignable)
}

func TestWorkloadIgnoresOtherTechnicians(t *testing.T) {
	calc := NewCalculator(0)
	a := tech("Asep")
	b := tech("Budi")

	w := calc.WorkloadFor(a, []models.Appointment{inProgressAppt(b.ID)}, []models.WorkOrder{inProgressOrder(b.ID)})

	assert.Equal(t, 0, w.ActiveServices)
	assert.Equal(t, models.WorkloadAvailable, w.Status)
	assert.True(t, w.Assignable)
}

func TestWorkloadStatusDerivation(t *testing.T) {
	calc := NewCalculator(2)
	a := tech("Asep")

	cases := []struct {
		active int
		want   models.WorkloadStatus
	}{
		{0, models.WorkloadAvailable},
		{1, models.WorkloadBusy},
		{2, models.WorkloadFullyBooked},
		{3, models.WorkloadFullyBooked},
	}
	for _, tc := range cases {
		var orders []models.WorkOrder
		for i := 0; i < tc.active; i++ {
			orders = append(orders, inProgressOrder(a.ID))
		}
		w := calc.WorkloadFor(a, nil, orders)
		assert.Equal(t, tc.want, w.Status, "activeServices=%d", tc.active)
		assert.Equal(t, tc.active < 2, w.Assignable, "activeServices=%d", tc.active)
	}
}

func TestWorkloadsPreserveDirectoryOrder(t *testing.T) {
	calc := NewCalculator(0)
	techs := []models.Technician{tech("Asep"), tech("Budi"), tech("Citra")}

	workloads := calc.Workloads(techs, nil, nil)
	require.Len(t, workloads, 3)
	for i, w := range workloads {
		assert.Equal(t, techs[i].ID, w.Technician.ID)
	}
}

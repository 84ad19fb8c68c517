package assignment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/motogarage/backend/internal/models"
)

func ordersFor(techID uuid.UUID, n int) []models.WorkOrder {
	var out []models.WorkOrder
	for i := 0; i < n; i++ {
		out = append(out, inProgressOrder(techID))
	}
	return out
}

func TestFindBestPicksLeastBusy(t *testing.T) {
	sel := NewSelector(NewCalculator(2))
	techs := []models.Technician{tech("Asep"), tech("Budi"), tech("Citra"), tech("Dedi")}
	var orders []models.WorkOrder
	for i, n := range []int{0, 1, 2, 2} {
		orders = append(orders, ordersFor(techs[i].ID, n)...)
	}
	workloads := sel.Calculator().Workloads(techs, nil, orders)

	best, ok := sel.FindBestAvailableTechnician(workloads, nil)
	require.True(t, ok)
	assert.Equal(t, techs[0].ID, best.Technician.ID, "workload 0 beats 1, fully booked excluded")
}

func TestFindBestSkillFilterIsConjunctive(t *testing.T) {
	sel := NewSelector(NewCalculator(2))
	idle := tech("Asep")                          // least busy but unskilled
	skilled := tech("Budi", "brakes", "engine")   // busier but qualified
	orders := ordersFor(skilled.ID, 1)
	workloads := sel.Calculator().Workloads([]models.Technician{idle, skilled}, nil, orders)

	best, ok := sel.FindBestAvailableTechnician(workloads, []string{"brakes"})
	require.True(t, ok)
	assert.Equal(t, skilled.ID, best.Technician.ID, "a technician lacking the skill is excluded even when least busy")

	_, ok = sel.FindBestAvailableTechnician(workloads, []string{"brakes", "tires"})
	assert.False(t, ok, "every required skill must be present")
}

func TestFindBestTieBreakIsDirectoryOrder(t *testing.T) {
	sel := NewSelector(NewCalculator(2))
	techs := []models.Technician{tech("Asep"), tech("Budi")}
	workloads := sel.Calculator().Workloads(techs, nil, nil)

	best, ok := sel.FindBestAvailableTechnician(workloads, nil)
	require.True(t, ok)
	assert.Equal(t, techs[0].ID, best.Technician.ID, "stable sort keeps directory order on ties")
}

func TestFindBestNoCandidates(t *testing.T) {
	sel := NewSelector(NewCalculator(1))
	a := tech("Asep")
	workloads := sel.Calculator().Workloads([]models.Technician{a}, nil, ordersFor(a.ID, 1))

	_, ok := sel.FindBestAvailableTechnician(workloads, nil)
	assert.False(t, ok)
}

func TestCanAssignTaskIsATripleConjunction(t *testing.T) {
	sel := NewSelector(NewCalculator(2))
	no := false

	ready := tech("Asep")
	offShift := tech("Budi")
	offShift.OnShift = false
	optedOut := tech("Citra")
	optedOut.Available = &no
	booked := tech("Dedi")

	techs := []models.Technician{ready, offShift, optedOut, booked}
	workloads := sel.Calculator().Workloads(techs, nil, ordersFor(booked.ID, 2))

	assert.True(t, sel.CanAssignTask(ready.ID, workloads))
	assert.False(t, sel.CanAssignTask(offShift.ID, workloads), "off shift vetoes")
	assert.False(t, sel.CanAssignTask(optedOut.ID, workloads), "manual availability=false vetoes")
	assert.False(t, sel.CanAssignTask(booked.ID, workloads), "full workload vetoes")
	assert.False(t, sel.CanAssignTask(uuid.New(), workloads), "unknown technician")
}

func slotAppt(techID uuid.UUID, start, end time.Time) models.Appointment {
	id := techID
	return models.Appointment{
		ID:           uuid.New(),
		TechnicianID: &id,
		Status:       models.AppointmentScheduled,
		StartsAt:     start,
		EndsAt:       end,
	}
}

func TestAutoAssignRejectsOverlappingSlot(t *testing.T) {
	sel := NewSelector(NewCalculator(2))
	only := tech("Asep", "brakes")
	day := time.Date(2025, 3, 3, 0, 0, 0, 0, time.Local)
	existing := slotAppt(only.ID, day.Add(9*time.Hour), day.Add(10*time.Hour))
	appt := models.Appointment{
		ID:          uuid.New(),
		ServiceItem: "brake_service",
		StartsAt:    day.Add(9*time.Hour + 30*time.Minute),
		EndsAt:      day.Add(10*time.Hour + 30*time.Minute),
	}

	_, ok := sel.AutoAssignTechnician(appt, []models.Technician{only}, []models.Appointment{existing}, nil)
	assert.False(t, ok, "09:30-10:30 overlaps the 09:00-10:00 slot")
}

func TestAutoAssignAllowsTouchingBoundary(t *testing.T) {
	sel := NewSelector(NewCalculator(2))
	only := tech("Asep", "brakes")
	day := time.Date(2025, 3, 3, 0, 0, 0, 0, time.Local)
	existing := slotAppt(only.ID, day.Add(9*time.Hour), day.Add(10*time.Hour))
	appt := models.Appointment{
		ID:          uuid.New(),
		ServiceItem: "brake_service",
		StartsAt:    day.Add(10 * time.Hour),
		EndsAt:      day.Add(11 * time.Hour),
	}

	got, ok := sel.AutoAssignTechnician(appt, []models.Technician{only}, []models.Appointment{existing}, nil)
	require.True(t, ok, "10:00-11:00 touches but does not overlap")
	assert.Equal(t, only.ID, got.ID)
}

func TestAutoAssignDoesNotFallBackOnConflict(t *testing.T) {
	sel := NewSelector(NewCalculator(2))
	best := tech("Asep", "brakes")
	backup := tech("Budi", "brakes")
	day := time.Date(2025, 3, 3, 0, 0, 0, 0, time.Local)
	// best is least busy but double-booked for the slot; backup is free.
	existing := slotAppt(best.ID, day.Add(9*time.Hour), day.Add(10*time.Hour))
	orders := ordersFor(backup.ID, 1)
	appt := models.Appointment{
		ID:          uuid.New(),
		ServiceItem: "brake_service",
		StartsAt:    day.Add(9 * time.Hour),
		EndsAt:      day.Add(10 * time.Hour),
	}

	_, ok := sel.AutoAssignTechnician(appt, []models.Technician{best, backup}, []models.Appointment{existing}, orders)
	assert.False(t, ok, "no second-best search when the best candidate conflicts")
}

func TestAutoAssignExcludesUnskilled(t *testing.T) {
	sel := NewSelector(NewCalculator(2))
	unskilled := tech("Asep")
	appt := models.Appointment{ID: uuid.New(), ServiceItem: "brake_service"}

	_, ok := sel.AutoAssignTechnician(appt, []models.Technician{unskilled}, nil, nil)
	assert.False(t, ok)
}

func TestRequiredSkillsFor(t *testing.T) {
	assert.Equal(t, []string{"brakes"}, RequiredSkillsFor("brake_service"))
	assert.Nil(t, RequiredSkillsFor("periodic_maintenance"))
	assert.Nil(t, RequiredSkillsFor("unknown_item"))
}

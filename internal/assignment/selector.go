package assignment

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/example/motogarage/backend/internal/models"
)

// serviceSkills maps a service item to the skills it requires. An item
// absent from the map (or mapped to nil) requires no particular skill.
var serviceSkills = map[string][]string{
	"brake_service":        {"brakes"},
	"engine_overhaul":      {"engine"},
	"transmission_service": {"engine", "transmission"},
	"tire_change":          {"tires"},
	"electrical_diagnosis": {"electrical"},
	"suspension_tuning":    {"suspension"},
	"periodic_maintenance": nil,
}

// RequiredSkillsFor returns the skills a service item demands.
func RequiredSkillsFor(serviceItem string) []string {
	return serviceSkills[serviceItem]
}

// Selector chooses technicians using workload, skills and slot conflicts.
type Selector struct {
	calc Calculator
}

// NewSelector builds a selector on top of a workload calculator.
func NewSelector(calc Calculator) Selector {
	return Selector{calc: calc}
}

// Calculator exposes the underlying workload calculator.
func (s Selector) Calculator() Calculator {
	return s.calc
}

// FindBestAvailableTechnician picks the least busy assignable technician
// whose skill set covers every required skill. The sort is stable, so ties
// keep the directory order. Returns false when nobody qualifies.
func (s Selector) FindBestAvailableTechnician(workloads []models.TechnicianWorkload, requiredSkills []string) (models.TechnicianWorkload, bool) {
	candidates := make([]models.TechnicianWorkload, 0, len(workloads))
	for _, w := range workloads {
		if !w.Assignable {
			continue
		}
		if !hasAllSkills(&w.Technician, requiredSkills) {
			continue
		}
		candidates = append(candidates, w)
	}
	if len(candidates) == 0 {
		return models.TechnicianWorkload{}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].ActiveServices < candidates[j].ActiveServices
	})
	return candidates[0], true
}

// CanAssignTask reports whether a task may be handed to the technician. All
// three signals must agree: workload headroom, the on-shift flag, and the
// manual availability flag not explicitly off.
func (s Selector) CanAssignTask(technicianID uuid.UUID, workloads []models.TechnicianWorkload) bool {
	for _, w := range workloads {
		if w.Technician.ID != technicianID {
			continue
		}
		return w.Assignable && w.Technician.OnShift && !w.Technician.ManuallyUnavailable()
	}
	return false
}

// AutoAssignTechnician proposes a technician for the appointment: best by
// workload among those with the required skills, then re-validated against
// that technician's other appointments for a time-slot conflict. If the
// best candidate has a conflict no second-best is tried and no technician
// is returned.
func (s Selector) AutoAssignTechnician(appt models.Appointment, techs []models.Technician, appts []models.Appointment, orders []models.WorkOrder) (*models.Technician, bool) {
	required := RequiredSkillsFor(appt.ServiceItem)
	workloads := s.calc.Workloads(techs, appts, orders)
	best, ok := s.FindBestAvailableTechnician(workloads, required)
	if !ok {
		return nil, false
	}
	for _, other := range appts {
		if other.ID == appt.ID || !other.AssignedTo(best.Technician.ID) {
			continue
		}
		if other.Status == models.AppointmentCancelled || other.Status == models.AppointmentCompleted {
			continue
		}
		if overlaps(appt.StartsAt, appt.EndsAt, other.StartsAt, other.EndsAt) {
			return nil, false
		}
	}
	tech := best.Technician
	return &tech, true
}

// overlaps is the half-open interval test: touching endpoints do not
// conflict.
func overlaps(newStart, newEnd, existingStart, existingEnd time.Time) bool {
	return newStart.Before(existingEnd) && newEnd.After(existingStart)
}

func hasAllSkills(tech *models.Technician, required []string) bool {
	for _, skill := range required {
		if !tech.HasSkill(skill) {
			return false
		}
	}
	return true
}

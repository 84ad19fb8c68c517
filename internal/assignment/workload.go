// Package assignment derives technician workloads and picks the best
// technician for a job. Everything here is pure: it runs against frozen
// snapshots of appointments and work orders and is safe from any goroutine.
package assignment

import (
	"github.com/example/motogarage/backend/internal/models"
)

// DefaultMaxActiveServices is the cap on concurrently active services per
// technician before they count as fully booked.
const DefaultMaxActiveServices = 2

// Calculator derives per-technician workload from live appointments and
// work orders.
type Calculator struct {
	maxActive int
}

// NewCalculator builds a calculator; a non-positive cap falls back to
// DefaultMaxActiveServices.
func NewCalculator(maxActive int) Calculator {
	if maxActive <= 0 {
		maxActive = DefaultMaxActiveServices
	}
	return Calculator{maxActive: maxActive}
}

// MaxActive returns the configured cap.
func (c Calculator) MaxActive() int {
	return c.maxActive
}

// Workloads computes the workload of every technician in the given order.
// In-progress appointments and in-progress work orders assigned to a
// technician both count toward activeServices; scheduled appointments are
// collected for display only.
func (c Calculator) Workloads(techs []models.Technician, appts []models.Appointment, orders []models.WorkOrder) []models.TechnicianWorkload {
	out := make([]models.TechnicianWorkload, 0, len(techs))
	for _, tech := range techs {
		out = append(out, c.WorkloadFor(tech, appts, orders))
	}
	return out
}

// WorkloadFor computes one technician's workload.
func (c Calculator) WorkloadFor(tech models.Technician, appts []models.Appointment, orders []models.WorkOrder) models.TechnicianWorkload {
	w := models.TechnicianWorkload{Technician: tech}
	for _, a := range appts {
		if !a.AssignedTo(tech.ID) {
			continue
		}
		switch a.Status {
		case models.AppointmentInProgress:
			w.ActiveServices++
		case models.AppointmentScheduled:
			w.Scheduled = append(w.Scheduled, a)
		}
	}
	for _, o := range orders {
		if o.Status == models.WorkOrderInProgress && o.AssignedTo(tech.ID) {
			w.ActiveServices++
			w.ActiveWork = append(w.ActiveWork, o)
		}
	}
	switch {
	case w.ActiveServices >= c.maxActive:
		w.Status = models.WorkloadFullyBooked
	case w.ActiveServices > 0:
		w.Status = models.WorkloadBusy
	default:
		w.Status = models.WorkloadAvailable
	}
	w.Assignable = w.ActiveServices < c.maxActive
	return w
}

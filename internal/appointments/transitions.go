package appointments

import "github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/models"

// transitions lists the forward moves allowed without an admin override.
// completed and cancelled are terminal.
var transitions = map[string][]string{
	models.AppointmentStatusPending:   {models.AppointmentStatusConfirmed, models.AppointmentStatusCancelled},
	models.AppointmentStatusConfirmed: {models.AppointmentStatusCompleted, models.AppointmentStatusCancelled},
}

func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func IsTerminal(status string) bool {
	return len(transitions[status]) == 0
}

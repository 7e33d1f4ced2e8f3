package plots

import (
	"time"

	"github.com/Brokwise/brokwise-developer/internal/models"
	"github.com/Brokwise/brokwise-developer/internal/pkg/apperrors"
)

// statusTransitions is the explicit transition table for the plot sale
// lifecycle. Every status is currently reachable from every other; tighten
// entries here once the business rule for legal transitions is confirmed
// (e.g. sold plots probably should not return to available).
var statusTransitions = map[models.PlotStatus][]models.PlotStatus{
	models.PlotAvailable: {models.PlotBooked, models.PlotReserved, models.PlotSold},
	models.PlotBooked:    {models.PlotAvailable, models.PlotReserved, models.PlotSold},
	models.PlotReserved:  {models.PlotAvailable, models.PlotBooked, models.PlotSold},
	models.PlotSold:      {models.PlotAvailable, models.PlotBooked, models.PlotReserved},
}

// CanTransition reports whether the table allows from -> to. Same-status is
// never a transition.
func CanTransition(from, to models.PlotStatus) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// StatusChange is the requested lifecycle move for a single plot.
type StatusChange struct {
	Status   models.PlotStatus `json:"status"`
	BookedBy *string           `json:"booked_by,omitempty"`
}

// applyStatusChange validates the change against the transition table and
// mutates the plot, stamping booking and sale fields on entry to booked/sold.
func applyStatusChange(p *models.Plot, change StatusChange, now time.Time) error {
	if !change.Status.Valid() {
		return apperrors.NewValidation("status", "status must be one of available, booked, reserved, sold")
	}
	if change.Status == p.Status {
		return apperrors.NewValidation("status", "plot already has status "+string(p.Status))
	}
	if !CanTransition(p.Status, change.Status) {
		return apperrors.NewValidation("status", "transition from "+string(p.Status)+" to "+string(change.Status)+" is not allowed")
	}

	p.Status = change.Status
	switch change.Status {
	case models.PlotBooked:
		p.BookedBy = change.BookedBy
		t := now
		p.BookingDate = &t
	case models.PlotSold:
		t := now
		p.SoldDate = &t
	}
	return nil
}

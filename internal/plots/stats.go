package plots

import "github.com/Brokwise/brokwise-developer/internal/models"

// AggregateStats folds a plot list into per-status counts in a single pass.
// Deterministic and order-independent; the four counts sum to len(plots).
func AggregateStats(plots []models.Plot) models.PlotStats {
	var stats models.PlotStats
	for _, p := range plots {
		switch p.Status {
		case models.PlotAvailable:
			stats.Available++
		case models.PlotBooked:
			stats.Booked++
		case models.PlotReserved:
			stats.Reserved++
		case models.PlotSold:
			stats.Sold++
		}
	}
	return stats
}

package plots

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Brokwise/brokwise-developer/internal/models"
)

func TestAggregateStats_Empty(t *testing.T) {
	stats := AggregateStats(nil)
	assert.Equal(t, models.PlotStats{}, stats)
	assert.Equal(t, 0, stats.Total())
}

func TestAggregateStats_CountsPerStatus(t *testing.T) {
	plots := []models.Plot{
		{Status: models.PlotAvailable},
		{Status: models.PlotAvailable},
		{Status: models.PlotBooked},
		{Status: models.PlotReserved},
		{Status: models.PlotSold},
		{Status: models.PlotSold},
		{Status: models.PlotSold},
	}
	stats := AggregateStats(plots)
	assert.Equal(t, 2, stats.Available)
	assert.Equal(t, 1, stats.Booked)
	assert.Equal(t, 1, stats.Reserved)
	assert.Equal(t, 3, stats.Sold)
	assert.Equal(t, len(plots), stats.Total())
}

func TestAggregateStats_OrderIndependent(t *testing.T) {
	a := []models.Plot{
		{Status: models.PlotSold},
		{Status: models.PlotAvailable},
		{Status: models.PlotBooked},
	}
	b := []models.Plot{
		{Status: models.PlotBooked},
		{Status: models.PlotSold},
		{Status: models.PlotAvailable},
	}
	assert.Equal(t, AggregateStats(a), AggregateStats(b))
}

package canvas

import (
	"math"
	"strconv"

	"github.com/google/uuid"

	"github.com/Brokwise/brokwise-developer/internal/models"
)

// Template defaults for a freshly added draft node.
const (
	defaultDraftArea  = 1200.0
	defaultNodeWidth  = 120.0
	defaultNodeHeight = 90.0
	draftSpawnX       = 40.0
	draftSpawnY       = 40.0
	draftSpawnStep    = 30.0
	duplicateOffset   = 24.0
	duplicateMarker   = "-copy"
)

// NodeData is the editable field set a canvas node carries for its plot.
type NodeData struct {
	BlockID        uuid.UUID          `json:"block_id"`
	PlotNumber     string             `json:"plot_number"`
	Area           float64            `json:"area"`
	AreaUnit       models.AreaUnit    `json:"area_unit"`
	Dimensions     *models.Dimensions `json:"dimensions,omitempty"`
	Facing         models.Facing      `json:"facing"`
	PlotType       models.PlotType    `json:"plot_type"`
	FrontRoadWidth *float64           `json:"front_road_width,omitempty"`
	Price          float64            `json:"price"`
	PricePerUnit   float64            `json:"price_per_unit"`
	Status         models.PlotStatus  `json:"status"`
}

// Node is one element of the canvas working set: either an unsaved draft
// (IsNew, temporary id) or the local view of a persisted plot.
type Node struct {
	ID       string                `json:"id"`
	PlotID   uuid.UUID             `json:"plot_id,omitempty"`
	IsNew    bool                  `json:"is_new"`
	Data     NodeData              `json:"data"`
	Position models.CanvasPosition `json:"position"`
}

// nodeFromPlot derives a canvas node from a persisted plot. Plots without a
// stored placement get a deterministic fallback derived from area and index.
func nodeFromPlot(p models.Plot, index int) *Node {
	pos := fallbackPosition(p.Area, index)
	if p.CanvasPosition != nil {
		pos = *p.CanvasPosition
	}
	return &Node{
		ID:     p.PlotID.String(),
		PlotID: p.PlotID,
		Data: NodeData{
			BlockID:        p.BlockID,
			PlotNumber:     p.PlotNumber,
			Area:           p.Area,
			AreaUnit:       p.AreaUnit,
			Dimensions:     p.Dimensions,
			Facing:         p.Facing,
			PlotType:       p.PlotType,
			FrontRoadWidth: p.FrontRoadWidth,
			Price:          p.Price,
			PricePerUnit:   p.PricePerUnit,
			Status:         p.Status,
		},
		Position: pos,
	}
}

// fallbackPosition lays unplaced plots out on a grid, sized 4:3 from the
// plot's area so bigger plots read bigger on the canvas.
func fallbackPosition(area float64, index int) models.CanvasPosition {
	width := defaultNodeWidth
	height := defaultNodeHeight
	if area > 0 {
		width = math.Round(math.Sqrt(area*4.0/3.0)*10) / 10
		height = math.Round(math.Sqrt(area*3.0/4.0)*10) / 10
	}
	const perRow = 8
	col := index % perRow
	row := index / perRow
	return models.CanvasPosition{
		X:      draftSpawnX + float64(col)*(defaultNodeWidth+20),
		Y:      draftSpawnY + float64(row)*(defaultNodeHeight+20),
		Width:  width,
		Height: height,
	}
}

func draftID(seq int) string {
	return "draft-" + strconv.Itoa(seq)
}

package plots

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/Brokwise/brokwise-developer/internal/models"
	"github.com/Brokwise/brokwise-developer/internal/pkg/apperrors"
)

// CreatePlotInput carries every field a new plot can be created with. Zero
// enum values are filled by applyDefaults before validation.
type CreatePlotInput struct {
	ProjectID      uuid.UUID              `json:"project_id"`
	BlockID        uuid.UUID              `json:"block_id"`
	PlotNumber     string                 `json:"plot_number"`
	Area           float64                `json:"area"`
	AreaUnit       models.AreaUnit        `json:"area_unit"`
	Dimensions     *models.Dimensions     `json:"dimensions,omitempty"`
	Facing         models.Facing          `json:"facing"`
	PlotType       models.PlotType        `json:"plot_type"`
	FrontRoadWidth *float64               `json:"front_road_width,omitempty"`
	Price          float64                `json:"price"`
	PricePerUnit   float64                `json:"price_per_unit"`
	Status         models.PlotStatus      `json:"status"`
	CanvasPosition *models.CanvasPosition `json:"canvas_position,omitempty"`
	Boundaries     datatypes.JSON         `json:"boundaries,omitempty"`
}

func (in *CreatePlotInput) applyDefaults() {
	if in.AreaUnit == "" {
		in.AreaUnit = models.AreaUnitSqFt
	}
	if in.Facing == "" {
		in.Facing = models.FacingNorth
	}
	if in.PlotType == "" {
		in.PlotType = models.PlotTypeRegular
	}
	if in.Status == "" {
		in.Status = models.PlotAvailable
	}
	if in.Price == 0 && in.Area > 0 && in.PricePerUnit > 0 {
		in.Price = in.Area * in.PricePerUnit
	}
}

// Validate checks every field and accumulates failures so the caller can
// render them per field.
func (in CreatePlotInput) Validate() error {
	ve := &apperrors.ValidationError{}
	if in.ProjectID == uuid.Nil {
		ve.Add("project_id", "project_id is required")
	}
	if in.BlockID == uuid.Nil {
		ve.Add("block_id", "block_id is required")
	}
	if in.PlotNumber == "" {
		ve.Add("plot_number", "plot_number is required")
	}
	if in.Area <= 0 {
		ve.Add("area", "area must be a positive number")
	}
	if !in.AreaUnit.Valid() {
		ve.Add("area_unit", "area_unit must be one of SQ_FT, SQ_METER, SQ_YARDS, ACRES")
	}
	if in.Price <= 0 {
		ve.Add("price", "price must be a positive number")
	}
	if in.PricePerUnit <= 0 {
		ve.Add("price_per_unit", "price_per_unit must be a positive number")
	}
	if !in.Facing.Valid() {
		ve.Add("facing", "facing must be a compass direction")
	}
	if !in.PlotType.Valid() {
		ve.Add("plot_type", "plot_type must be one of REGULAR, CORNER, ROAD")
	}
	if !in.Status.Valid() {
		ve.Add("status", "status must be one of available, booked, reserved, sold")
	}
	if in.Dimensions != nil {
		if in.Dimensions.Length <= 0 {
			ve.Add("dimensions.length", "length must be a positive number")
		}
		if in.Dimensions.Width <= 0 {
			ve.Add("dimensions.width", "width must be a positive number")
		}
		if !in.Dimensions.Unit.Valid() {
			ve.Add("dimensions.unit", "unit must be FEET or METER")
		}
	}
	if in.FrontRoadWidth != nil && *in.FrontRoadWidth <= 0 {
		ve.Add("front_road_width", "front_road_width must be a positive number")
	}
	if ve.Has() {
		return ve
	}
	return nil
}

// toModel converts the input to a Plot record.
func (in CreatePlotInput) toModel() models.Plot {
	return models.Plot{
		ProjectID:      in.ProjectID,
		BlockID:        in.BlockID,
		PlotNumber:     in.PlotNumber,
		Area:           in.Area,
		AreaUnit:       in.AreaUnit,
		Dimensions:     in.Dimensions,
		Facing:         in.Facing,
		PlotType:       in.PlotType,
		FrontRoadWidth: in.FrontRoadWidth,
		Price:          in.Price,
		PricePerUnit:   in.PricePerUnit,
		Status:         in.Status,
		CanvasPosition: in.CanvasPosition,
		Boundaries:     in.Boundaries,
	}
}

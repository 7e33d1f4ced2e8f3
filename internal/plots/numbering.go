package plots

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/Brokwise/brokwise-developer/internal/models"
	"github.com/Brokwise/brokwise-developer/internal/pkg/apperrors"
)

// NumberingSpec describes a contiguous bulk-numbering run: every generated
// plot shares the same area, unit, pricing and type, and gets
// prefix + zero-padded index + suffix as its plot number.
type NumberingSpec struct {
	BlockID      uuid.UUID          `json:"block_id"`
	Prefix       string             `json:"prefix"`
	Suffix       string             `json:"suffix"`
	StartNumber  int                `json:"start_number"`
	EndNumber    int                `json:"end_number"`
	Digits       int                `json:"digits"`
	Area         float64            `json:"area"`
	AreaUnit     models.AreaUnit    `json:"area_unit"`
	PricePerUnit float64            `json:"price_per_unit"`
	Facing       models.Facing      `json:"facing"`
	PlotType     models.PlotType    `json:"plot_type"`
	Dimensions   *models.Dimensions `json:"dimensions,omitempty"`
}

// GenerateNumbering expands spec into one CreatePlotInput per number in
// [StartNumber, EndNumber], ascending. The derived price (area x price per
// unit) is computed once and shared by the whole batch.
func GenerateNumbering(projectID uuid.UUID, spec NumberingSpec) ([]CreatePlotInput, error) {
	if spec.Digits == 0 {
		spec.Digits = 1
	}
	if spec.Facing == "" {
		spec.Facing = models.FacingNorth
	}
	if spec.PlotType == "" {
		spec.PlotType = models.PlotTypeRegular
	}
	if spec.AreaUnit == "" {
		spec.AreaUnit = models.AreaUnitSqFt
	}

	ve := &apperrors.ValidationError{}
	if spec.BlockID == uuid.Nil {
		ve.Add("block_id", "block_id is required")
	}
	if spec.StartNumber < 1 {
		ve.Add("start_number", "start_number must be an integer >= 1")
	}
	if spec.EndNumber < 1 {
		ve.Add("end_number", "end_number must be an integer >= 1")
	} else if spec.StartNumber >= 1 && spec.EndNumber < spec.StartNumber {
		ve.Add("end_number", "end_number must be greater than or equal to start_number")
	}
	if spec.Digits < 1 || spec.Digits > 10 {
		ve.Add("digits", "digits must be between 1 and 10")
	}
	if spec.Area <= 0 {
		ve.Add("area", "area must be a positive number")
	}
	if !spec.AreaUnit.Valid() {
		ve.Add("area_unit", "area_unit must be one of SQ_FT, SQ_METER, SQ_YARDS, ACRES")
	}
	if spec.PricePerUnit <= 0 {
		ve.Add("price_per_unit", "price_per_unit must be a positive number")
	}
	if !spec.Facing.Valid() {
		ve.Add("facing", "facing must be a compass direction")
	}
	if !spec.PlotType.Valid() {
		ve.Add("plot_type", "plot_type must be one of REGULAR, CORNER, ROAD")
	}
	if spec.Dimensions != nil {
		if spec.Dimensions.Length <= 0 {
			ve.Add("dimensions.length", "length must be a positive number")
		}
		if spec.Dimensions.Width <= 0 {
			ve.Add("dimensions.width", "width must be a positive number")
		}
		if !spec.Dimensions.Unit.Valid() {
			ve.Add("dimensions.unit", "unit must be FEET or METER")
		}
	}
	if ve.Has() {
		return nil, ve
	}

	price := spec.Area * spec.PricePerUnit
	out := make([]CreatePlotInput, 0, spec.EndNumber-spec.StartNumber+1)
	for i := spec.StartNumber; i <= spec.EndNumber; i++ {
		out = append(out, CreatePlotInput{
			ProjectID:    projectID,
			BlockID:      spec.BlockID,
			PlotNumber:   spec.Prefix + zeroPad(i, spec.Digits) + spec.Suffix,
			Area:         spec.Area,
			AreaUnit:     spec.AreaUnit,
			Dimensions:   spec.Dimensions,
			Facing:       spec.Facing,
			PlotType:     spec.PlotType,
			Price:        price,
			PricePerUnit: spec.PricePerUnit,
			Status:       models.PlotAvailable,
		})
	}
	return out, nil
}

// zeroPad left-pads n with zeros to digits width; numbers wider than digits
// are never truncated.
func zeroPad(n, digits int) string {
	return fmt.Sprintf("%0*d", digits, n)
}

package plots

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Brokwise/brokwise-developer/internal/models"
	"github.com/Brokwise/brokwise-developer/internal/pkg/apperrors"
)

type Service struct {
	DB *gorm.DB
}

// Filters narrows a plot listing. Page/Limit of 0 fall back to defaults.
type Filters struct {
	Status   *models.PlotStatus
	MinPrice *float64
	MaxPrice *float64
	Page     int
	Limit    int
}

// Pagination describes the page returned by ListPlots.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

const (
	defaultPage  = 1
	defaultLimit = 50
	maxLimit     = 500
)

// ListPlots returns a project's plots ordered by plot number, with optional
// status and price-range filters.
func (s *Service) ListPlots(ctx context.Context, projectID uuid.UUID, f Filters) ([]models.Plot, Pagination, error) {
	page := f.Page
	if page < 1 {
		page = defaultPage
	}
	limit := f.Limit
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	q := s.DB.WithContext(ctx).Model(&models.Plot{}).Where("project_id = ?", projectID)
	if f.Status != nil {
		if !f.Status.Valid() {
			return nil, Pagination{}, apperrors.NewValidation("status", "status must be one of available, booked, reserved, sold")
		}
		q = q.Where("status = ?", *f.Status)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, Pagination{}, apperrors.NewTransport("count plots", err)
	}

	var plots []models.Plot
	if err := q.Order("plot_number ASC").Offset((page - 1) * limit).Limit(limit).Find(&plots).Error; err != nil {
		return nil, Pagination{}, apperrors.NewTransport("list plots", err)
	}

	return plots, Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

// CreatePlot validates and persists a single plot. The block must already
// exist and belong to the plot's project.
func (s *Service) CreatePlot(ctx context.Context, in CreatePlotInput) (*models.Plot, error) {
	in.applyDefaults()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := s.blockExists(ctx, in.ProjectID, in.BlockID); err != nil {
		return nil, err
	}

	plot := in.toModel()
	if err := s.DB.WithContext(ctx).Create(&plot).Error; err != nil {
		return nil, apperrors.NewTransport("create plot", err)
	}
	return &plot, nil
}

// BulkCreatePlots validates every input and inserts the batch in one
// transaction. Field failures are reported with the offending index.
func (s *Service) BulkCreatePlots(ctx context.Context, projectID uuid.UUID, inputs []CreatePlotInput) ([]models.Plot, int, error) {
	if len(inputs) == 0 {
		return nil, 0, apperrors.NewValidation("plots", "at least one plot is required")
	}

	ve := &apperrors.ValidationError{}
	records := make([]models.Plot, 0, len(inputs))
	for i, in := range inputs {
		in.ProjectID = projectID
		in.applyDefaults()
		if err := in.Validate(); err != nil {
			if fieldErr, ok := apperrors.IsValidation(err); ok {
				for _, f := range fieldErr.Fields {
					ve.Add(fmt.Sprintf("plots[%d].%s", i, f.Field), f.Message)
				}
				continue
			}
			return nil, 0, err
		}
		records = append(records, in.toModel())
	}
	if ve.Has() {
		return nil, 0, ve
	}

	if err := s.DB.WithContext(ctx).Create(&records).Error; err != nil {
		return nil, 0, apperrors.NewTransport("bulk create plots", err)
	}
	return records, len(records), nil
}

// BulkGeneratePlots expands a numbering spec and persists the whole batch.
func (s *Service) BulkGeneratePlots(ctx context.Context, projectID uuid.UUID, spec NumberingSpec) ([]models.Plot, int, error) {
	inputs, err := GenerateNumbering(projectID, spec)
	if err != nil {
		return nil, 0, err
	}
	if err := s.blockExists(ctx, projectID, spec.BlockID); err != nil {
		return nil, 0, err
	}
	return s.BulkCreatePlots(ctx, projectID, inputs)
}

// UpdatePlotStatus runs the state machine against the stored plot and
// persists the resulting lifecycle fields.
func (s *Service) UpdatePlotStatus(ctx context.Context, plotID uuid.UUID, change StatusChange) (*models.Plot, error) {
	var plot models.Plot
	if err := s.DB.WithContext(ctx).Where("plot_id = ?", plotID).First(&plot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("Plot")
		}
		return nil, apperrors.NewTransport("load plot", err)
	}

	if err := applyStatusChange(&plot, change, time.Now().UTC()); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"status":       plot.Status,
		"booked_by":    plot.BookedBy,
		"booking_date": plot.BookingDate,
		"sold_date":    plot.SoldDate,
	}
	if err := s.DB.WithContext(ctx).Model(&models.Plot{}).Where("plot_id = ?", plotID).Updates(updates).Error; err != nil {
		return nil, apperrors.NewTransport("update plot status", err)
	}
	return &plot, nil
}

// UpdatePlotInput carries optional field edits for a single plot. Ownership
// and lifecycle fields are not editable here.
type UpdatePlotInput struct {
	PlotNumber     *string            `json:"plot_number,omitempty"`
	Area           *float64           `json:"area,omitempty"`
	AreaUnit       *models.AreaUnit   `json:"area_unit,omitempty"`
	Dimensions     *models.Dimensions `json:"dimensions,omitempty"`
	Facing         *models.Facing     `json:"facing,omitempty"`
	PlotType       *models.PlotType   `json:"plot_type,omitempty"`
	FrontRoadWidth *float64           `json:"front_road_width,omitempty"`
	Price          *float64           `json:"price,omitempty"`
	PricePerUnit   *float64           `json:"price_per_unit,omitempty"`
}

func (in UpdatePlotInput) validate() error {
	ve := &apperrors.ValidationError{}
	if in.PlotNumber != nil && *in.PlotNumber == "" {
		ve.Add("plot_number", "plot_number cannot be empty")
	}
	if in.Area != nil && *in.Area <= 0 {
		ve.Add("area", "area must be a positive number")
	}
	if in.AreaUnit != nil && !in.AreaUnit.Valid() {
		ve.Add("area_unit", "area_unit must be one of SQ_FT, SQ_METER, SQ_YARDS, ACRES")
	}
	if in.Facing != nil && !in.Facing.Valid() {
		ve.Add("facing", "facing must be a compass direction")
	}
	if in.PlotType != nil && !in.PlotType.Valid() {
		ve.Add("plot_type", "plot_type must be one of REGULAR, CORNER, ROAD")
	}
	if in.FrontRoadWidth != nil && *in.FrontRoadWidth <= 0 {
		ve.Add("front_road_width", "front_road_width must be a positive number")
	}
	if in.Price != nil && *in.Price <= 0 {
		ve.Add("price", "price must be a positive number")
	}
	if in.PricePerUnit != nil && *in.PricePerUnit <= 0 {
		ve.Add("price_per_unit", "price_per_unit must be a positive number")
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
	if ve.Has() {
		return ve
	}
	return nil
}

func (in UpdatePlotInput) updates() map[string]interface{} {
	updates := map[string]interface{}{}
	if in.PlotNumber != nil {
		updates["plot_number"] = *in.PlotNumber
	}
	if in.Area != nil {
		updates["area"] = *in.Area
	}
	if in.AreaUnit != nil {
		updates["area_unit"] = *in.AreaUnit
	}
	if in.Dimensions != nil {
		updates["dimensions"] = in.Dimensions
	}
	if in.Facing != nil {
		updates["facing"] = *in.Facing
	}
	if in.PlotType != nil {
		updates["plot_type"] = *in.PlotType
	}
	if in.FrontRoadWidth != nil {
		updates["front_road_width"] = *in.FrontRoadWidth
	}
	if in.Price != nil {
		updates["price"] = *in.Price
	}
	if in.PricePerUnit != nil {
		updates["price_per_unit"] = *in.PricePerUnit
	}
	return updates
}

// UpdatePlot applies field edits to a single plot.
func (s *Service) UpdatePlot(ctx context.Context, plotID uuid.UUID, in UpdatePlotInput) (*models.Plot, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	updates := in.updates()
	if len(updates) == 0 {
		return nil, apperrors.NewValidation("body", "no valid changes provided")
	}

	var plot models.Plot
	if err := s.DB.WithContext(ctx).Where("plot_id = ?", plotID).First(&plot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("Plot")
		}
		return nil, apperrors.NewTransport("load plot", err)
	}
	if err := s.DB.WithContext(ctx).Model(&models.Plot{}).Where("plot_id = ?", plotID).Updates(updates).Error; err != nil {
		return nil, apperrors.NewTransport("update plot", err)
	}
	if err := s.DB.WithContext(ctx).Where("plot_id = ?", plotID).First(&plot).Error; err != nil {
		return nil, apperrors.NewTransport("reload plot", err)
	}
	return &plot, nil
}

// PlotPatch is one entry of a bulk update: canvas placement, boundaries, and
// any edited data fields for a single persisted plot.
type PlotPatch struct {
	PlotID         uuid.UUID              `json:"plot_id"`
	CanvasPosition *models.CanvasPosition `json:"canvas_position,omitempty"`
	Boundaries     datatypes.JSON         `json:"boundaries,omitempty"`
	Fields         map[string]interface{} `json:"fields,omitempty"`
}

// patchableColumns whitelists data fields a bulk update may touch. Status
// changes must go through UpdatePlotStatus; ownership is immutable.
var patchableColumns = map[string]bool{
	"plot_number":      true,
	"area":             true,
	"area_unit":        true,
	"price":            true,
	"price_per_unit":   true,
	"facing":           true,
	"plot_type":        true,
	"front_road_width": true,
}

// BulkUpdatePlots applies each patch inside one transaction and reports how
// many plots matched and how many rows were modified.
func (s *Service) BulkUpdatePlots(ctx context.Context, projectID uuid.UUID, patches []PlotPatch) (matched, modified int64, err error) {
	if len(patches) == 0 {
		return 0, 0, apperrors.NewValidation("updates", "at least one update is required")
	}
	for i, p := range patches {
		if p.PlotID == uuid.Nil {
			return 0, 0, apperrors.NewValidation(fmt.Sprintf("updates[%d].plot_id", i), "plot_id is required")
		}
		for key := range p.Fields {
			if !patchableColumns[key] {
				return 0, 0, apperrors.NewValidation(fmt.Sprintf("updates[%d].fields.%s", i, key), "field is not updatable in bulk")
			}
		}
	}

	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range patches {
			updates := map[string]interface{}{}
			if p.CanvasPosition != nil {
				updates["canvas_position"] = p.CanvasPosition
			}
			if p.Boundaries != nil {
				updates["boundaries"] = p.Boundaries
			}
			for key, value := range p.Fields {
				updates[key] = value
			}
			if len(updates) == 0 {
				continue
			}
			res := tx.Model(&models.Plot{}).
				Where("plot_id = ? AND project_id = ?", p.PlotID, projectID).
				Updates(updates)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				matched++
				modified += res.RowsAffected
			}
		}
		return nil
	})
	if txErr != nil {
		return 0, 0, apperrors.NewTransport("bulk update plots", txErr)
	}
	return matched, modified, nil
}

// DeletePlot removes a plot. Irreversible from the caller's point of view.
func (s *Service) DeletePlot(ctx context.Context, plotID uuid.UUID) (bool, error) {
	res := s.DB.WithContext(ctx).Where("plot_id = ?", plotID).Delete(&models.Plot{})
	if res.Error != nil {
		return false, apperrors.NewTransport("delete plot", res.Error)
	}
	if res.RowsAffected == 0 {
		return false, apperrors.NewNotFound("Plot")
	}
	return true, nil
}

// Stats recomputes the per-status counts for a project from the current list.
func (s *Service) Stats(ctx context.Context, projectID uuid.UUID) (models.PlotStats, error) {
	var plots []models.Plot
	if err := s.DB.WithContext(ctx).Select("status").Where("project_id = ?", projectID).Find(&plots).Error; err != nil {
		return models.PlotStats{}, apperrors.NewTransport("load plot statuses", err)
	}
	return AggregateStats(plots), nil
}

func (s *Service) blockExists(ctx context.Context, projectID, blockID uuid.UUID) error {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Block{}).
		Where("block_id = ? AND project_id = ?", blockID, projectID).
		Count(&count).Error; err != nil {
		return apperrors.NewTransport("check block", err)
	}
	if count == 0 {
		return apperrors.NewNotFound("Block")
	}
	return nil
}

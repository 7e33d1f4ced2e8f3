package plots

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Brokwise/brokwise-developer/internal/models"
	"github.com/Brokwise/brokwise-developer/internal/pkg/response"
)

type Handlers struct {
	Service *Service
}

// GET /api/v1/plots/list/:project_id
func (h *Handlers) ListPlots(c *fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("project_id"))
	if err != nil {
		return response.Error(c, "Invalid project_id", 400, nil)
	}

	var f Filters
	if s := c.Query("status"); s != "" {
		status := models.PlotStatus(s)
		f.Status = &status
	}
	if v := c.Query("min_price"); v != "" {
		if min, err := strconv.ParseFloat(v, 64); err == nil {
			f.MinPrice = &min
		}
	}
	if v := c.Query("max_price"); v != "" {
		if max, err := strconv.ParseFloat(v, 64); err == nil {
			f.MaxPrice = &max
		}
	}
	f.Page = c.QueryInt("page")
	f.Limit = c.QueryInt("limit")

	plots, pagination, err := h.Service.ListPlots(c.Context(), projectID, f)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Plots fetched successfully", plots, fiber.Map{"pagination": pagination})
}

// GET /api/v1/plots/stats/:project_id
func (h *Handlers) GetStats(c *fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("project_id"))
	if err != nil {
		return response.Error(c, "Invalid project_id", 400, nil)
	}
	stats, err := h.Service.Stats(c.Context(), projectID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Plot stats computed", stats, nil)
}

// POST /api/v1/plots/create-plot
func (h *Handlers) CreatePlot(c *fiber.Ctx) error {
	var in CreatePlotInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	plot, err := h.Service.CreatePlot(c.Context(), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Plot created successfully", plot, nil)
}

// POST /api/v1/plots/bulk-create/:project_id
func (h *Handlers) BulkCreatePlots(c *fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("project_id"))
	if err != nil {
		return response.Error(c, "Invalid project_id", 400, nil)
	}
	var body struct {
		Plots []CreatePlotInput `json:"plots"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	created, count, err := h.Service.BulkCreatePlots(c.Context(), projectID, body.Plots)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Plots created successfully", fiber.Map{"plots": created, "count": count}, nil)
}

// POST /api/v1/plots/bulk-generate/:project_id
func (h *Handlers) BulkGeneratePlots(c *fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("project_id"))
	if err != nil {
		return response.Error(c, "Invalid project_id", 400, nil)
	}
	var spec NumberingSpec
	if err := c.BodyParser(&spec); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	created, count, err := h.Service.BulkGeneratePlots(c.Context(), projectID, spec)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Plots generated successfully", fiber.Map{"plots": created, "count": count}, nil)
}

// PATCH /api/v1/plots/update-status/:plot_id
func (h *Handlers) UpdatePlotStatus(c *fiber.Ctx) error {
	plotID, err := uuid.Parse(c.Params("plot_id"))
	if err != nil {
		return response.Error(c, "Invalid plot_id", 400, nil)
	}
	var change StatusChange
	if err := c.BodyParser(&change); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	plot, err := h.Service.UpdatePlotStatus(c.Context(), plotID, change)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Plot status updated successfully", plot, nil)
}

// PUT /api/v1/plots/update-plot/:plot_id
func (h *Handlers) UpdatePlot(c *fiber.Ctx) error {
	plotID, err := uuid.Parse(c.Params("plot_id"))
	if err != nil {
		return response.Error(c, "Invalid plot_id", 400, nil)
	}
	var in UpdatePlotInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	plot, err := h.Service.UpdatePlot(c.Context(), plotID, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Plot updated successfully", plot, nil)
}

// PATCH /api/v1/plots/bulk-update/:project_id
func (h *Handlers) BulkUpdatePlots(c *fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("project_id"))
	if err != nil {
		return response.Error(c, "Invalid project_id", 400, nil)
	}
	var body struct {
		Updates []PlotPatch `json:"updates"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	matched, modified, err := h.Service.BulkUpdatePlots(c.Context(), projectID, body.Updates)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Plots updated successfully", fiber.Map{"matched": matched, "modified": modified}, nil)
}

// DELETE /api/v1/plots/delete-plot/:plot_id
func (h *Handlers) DeletePlot(c *fiber.Ctx) error {
	plotID, err := uuid.Parse(c.Params("plot_id"))
	if err != nil {
		return response.Error(c, "Invalid plot_id", 400, nil)
	}
	deleted, err := h.Service.DeletePlot(c.Context(), plotID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Plot deleted successfully", fiber.Map{"deleted": deleted}, nil)
}

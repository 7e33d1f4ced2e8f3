package plots

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brokwise/brokwise-developer/internal/models"
)

func setupPlotHandlers(t *testing.T) (*fiber.App, *Service, uuid.UUID, uuid.UUID) {
	s, projectID, blockID := setupPlotService(t)
	h := &Handlers{Service: s}

	app := fiber.New()
	app.Get("/api/v1/plots/list/:project_id", h.ListPlots)
	app.Get("/api/v1/plots/stats/:project_id", h.GetStats)
	app.Post("/api/v1/plots/create-plot", h.CreatePlot)
	app.Post("/api/v1/plots/bulk-create/:project_id", h.BulkCreatePlots)
	app.Post("/api/v1/plots/bulk-generate/:project_id", h.BulkGeneratePlots)
	app.Patch("/api/v1/plots/update-status/:plot_id", h.UpdatePlotStatus)
	app.Put("/api/v1/plots/update-plot/:plot_id", h.UpdatePlot)
	app.Patch("/api/v1/plots/bulk-update/:project_id", h.BulkUpdatePlots)
	app.Delete("/api/v1/plots/delete-plot/:plot_id", h.DeletePlot)
	return app, s, projectID, blockID
}

func doJSON(t *testing.T, app *fiber.App, method, path string, payload interface{}) (int, map[string]interface{}) {
	var reader io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out))
	return resp.StatusCode, out
}

func TestCreatePlotHandler_Created(t *testing.T) {
	app, _, projectID, blockID := setupPlotHandlers(t)

	status, out := doJSON(t, app, "POST", "/api/v1/plots/create-plot", fiber.Map{
		"project_id":     projectID,
		"block_id":       blockID,
		"plot_number":    "H-001",
		"area":           1500,
		"price_per_unit": 30,
	})
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "success", out["status"])
	data := out["data"].(map[string]interface{})
	assert.Equal(t, "H-001", data["plot_number"])
	assert.Equal(t, 1500*30.0, data["price"])
}

func TestCreatePlotHandler_ValidationDetails(t *testing.T) {
	app, _, _, _ := setupPlotHandlers(t)

	status, out := doJSON(t, app, "POST", "/api/v1/plots/create-plot", fiber.Map{})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "error", out["status"])
	errObj := out["error"].(map[string]interface{})
	assert.Equal(t, "Validation failed", errObj["message"])
	details := errObj["details"].(map[string]interface{})
	assert.Contains(t, details, "plot_number")
	assert.Contains(t, details, "area")
}

func TestCreatePlotHandler_UnknownBlock404(t *testing.T) {
	app, _, projectID, _ := setupPlotHandlers(t)

	status, out := doJSON(t, app, "POST", "/api/v1/plots/create-plot", fiber.Map{
		"project_id":     projectID,
		"block_id":       uuid.New(),
		"plot_number":    "H-404",
		"area":           1000,
		"price_per_unit": 10,
	})
	assert.Equal(t, fiber.StatusNotFound, status)
	errObj := out["error"].(map[string]interface{})
	assert.Equal(t, "Block not found", errObj["message"])
}

func TestListPlotsHandler_FiltersAndPaginationMetadata(t *testing.T) {
	app, s, projectID, blockID := setupPlotHandlers(t)

	for _, n := range []string{"L-1", "L-2", "L-3"} {
		_, err := s.CreatePlot(context.Background(), plotInput(projectID, blockID, n, 1000))
		require.NoError(t, err)
	}

	status, out := doJSON(t, app, "GET", "/api/v1/plots/list/"+projectID.String()+"?page=1&limit=2", nil)
	assert.Equal(t, fiber.StatusOK, status)
	data := out["data"].([]interface{})
	assert.Len(t, data, 2)
	meta := out["metadata"].(map[string]interface{})
	pagination := meta["pagination"].(map[string]interface{})
	assert.Equal(t, float64(3), pagination["total"])
	assert.Equal(t, float64(2), pagination["total_pages"])
}

func TestListPlotsHandler_InvalidProjectID(t *testing.T) {
	app, _, _, _ := setupPlotHandlers(t)
	status, _ := doJSON(t, app, "GET", "/api/v1/plots/list/not-a-uuid", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestBulkGenerateHandler_CreatesRun(t *testing.T) {
	app, _, projectID, blockID := setupPlotHandlers(t)

	status, out := doJSON(t, app, "POST", "/api/v1/plots/bulk-generate/"+projectID.String(), fiber.Map{
		"block_id":       blockID,
		"prefix":         "A-",
		"start_number":   1,
		"end_number":     5,
		"digits":         3,
		"area":           1200,
		"price_per_unit": 50,
	})
	assert.Equal(t, fiber.StatusCreated, status)
	data := out["data"].(map[string]interface{})
	assert.Equal(t, float64(5), data["count"])
	plots := data["plots"].([]interface{})
	first := plots[0].(map[string]interface{})
	assert.Equal(t, "A-001", first["plot_number"])
}

func TestBulkGenerateHandler_EndBeforeStart(t *testing.T) {
	app, _, projectID, blockID := setupPlotHandlers(t)

	status, out := doJSON(t, app, "POST", "/api/v1/plots/bulk-generate/"+projectID.String(), fiber.Map{
		"block_id":       blockID,
		"start_number":   9,
		"end_number":     2,
		"area":           1200,
		"price_per_unit": 50,
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	errObj := out["error"].(map[string]interface{})
	details := errObj["details"].(map[string]interface{})
	assert.Contains(t, details, "end_number")
}

func TestUpdateStatusHandler_BooksPlot(t *testing.T) {
	app, s, projectID, blockID := setupPlotHandlers(t)

	plot, err := s.CreatePlot(context.Background(), plotInput(projectID, blockID, "B-1", 1000))
	require.NoError(t, err)

	status, out := doJSON(t, app, "PATCH", "/api/v1/plots/update-status/"+plot.PlotID.String(), fiber.Map{
		"status":    "booked",
		"booked_by": "Asha Verma",
	})
	assert.Equal(t, fiber.StatusOK, status)
	data := out["data"].(map[string]interface{})
	assert.Equal(t, "booked", data["status"])
	assert.Equal(t, "Asha Verma", data["booked_by"])
	assert.NotEmpty(t, data["booking_date"])
}

func TestUpdateStatusHandler_NotFound(t *testing.T) {
	app, _, _, _ := setupPlotHandlers(t)
	status, _ := doJSON(t, app, "PATCH", "/api/v1/plots/update-status/"+uuid.NewString(), fiber.Map{"status": "sold"})
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestBulkUpdateHandler_ReportsMatchedModified(t *testing.T) {
	app, s, projectID, blockID := setupPlotHandlers(t)

	plot, err := s.CreatePlot(context.Background(), plotInput(projectID, blockID, "BU-1", 1000))
	require.NoError(t, err)

	status, out := doJSON(t, app, "PATCH", "/api/v1/plots/bulk-update/"+projectID.String(), fiber.Map{
		"updates": []fiber.Map{
			{
				"plot_id":         plot.PlotID,
				"canvas_position": fiber.Map{"x": 5, "y": 6, "width": 120, "height": 90},
			},
		},
	})
	assert.Equal(t, fiber.StatusOK, status)
	data := out["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["matched"])
	assert.Equal(t, float64(1), data["modified"])
}

func TestDeletePlotHandler(t *testing.T) {
	app, s, projectID, blockID := setupPlotHandlers(t)

	plot, err := s.CreatePlot(context.Background(), plotInput(projectID, blockID, "DEL-1", 1000))
	require.NoError(t, err)

	status, out := doJSON(t, app, "DELETE", "/api/v1/plots/delete-plot/"+plot.PlotID.String(), nil)
	assert.Equal(t, fiber.StatusOK, status)
	data := out["data"].(map[string]interface{})
	assert.Equal(t, true, data["deleted"])

	status, _ = doJSON(t, app, "DELETE", "/api/v1/plots/delete-plot/"+plot.PlotID.String(), nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestStatsHandler(t *testing.T) {
	app, s, projectID, blockID := setupPlotHandlers(t)

	in := plotInput(projectID, blockID, "ST-1", 1000)
	in.Status = models.PlotSold
	_, err := s.CreatePlot(context.Background(), in)
	require.NoError(t, err)

	status, out := doJSON(t, app, "GET", "/api/v1/plots/stats/"+projectID.String(), nil)
	assert.Equal(t, fiber.StatusOK, status)
	data := out["data"].(map[string]interface{})
	assert.Equal(t, float64(0), data["available"])
	assert.Equal(t, float64(1), data["sold"])
}

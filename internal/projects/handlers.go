package projects

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Brokwise/brokwise-developer/internal/pkg/response"
)

type Handlers struct {
	Service *Service
}

// POST /api/v1/projects/create-project
func (h *Handlers) CreateProject(c *fiber.Ctx) error {
	var in CreateProjectInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	project, err := h.Service.CreateProject(c.Context(), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Project created successfully", project, nil)
}

// GET /api/v1/projects/list
func (h *Handlers) ListProjects(c *fiber.Ctx) error {
	projects, err := h.Service.ListProjects(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Projects fetched successfully", projects, nil)
}

// GET /api/v1/projects/view-project/:project_id
func (h *Handlers) GetProject(c *fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("project_id"))
	if err != nil {
		return response.Error(c, "Invalid project_id", 400, nil)
	}
	project, err := h.Service.GetProject(c.Context(), projectID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Project fetched successfully", project, nil)
}

package blocks

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Brokwise/brokwise-developer/internal/pkg/response"
)

type Handlers struct {
	Service *Service
}

// POST /api/v1/blocks/create-block
func (h *Handlers) CreateBlock(c *fiber.Ctx) error {
	var in CreateBlockInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	block, err := h.Service.CreateBlock(c.Context(), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Block created successfully", block, nil)
}

// GET /api/v1/blocks/list/:project_id
func (h *Handlers) ListBlocksByProject(c *fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("project_id"))
	if err != nil {
		return response.Error(c, "Invalid project_id", 400, nil)
	}
	blocks, err := h.Service.ListBlocksByProject(c.Context(), projectID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Blocks fetched successfully", blocks, nil)
}

// PATCH /api/v1/blocks/update-block/:block_id
func (h *Handlers) UpdateBlock(c *fiber.Ctx) error {
	blockID, err := uuid.Parse(c.Params("block_id"))
	if err != nil {
		return response.Error(c, "Invalid block_id", 400, nil)
	}
	var in UpdateBlockInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	block, err := h.Service.UpdateBlock(c.Context(), blockID, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Block updated successfully", block, nil)
}

package canvas

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Brokwise/brokwise-developer/internal/models"
	"github.com/Brokwise/brokwise-developer/internal/pkg/response"
)

type Handlers struct {
	Manager *Manager
}

// POST /api/v1/canvas/:project_id/open
func (h *Handlers) OpenSession(c *fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("project_id"))
	if err != nil {
		return response.Error(c, "Invalid project_id", 400, nil)
	}
	session, err := h.Manager.Open(c.Context(), projectID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Canvas session opened", session.State(), nil)
}

// GET /api/v1/canvas/:project_id/state
func (h *Handlers) GetState(c *fiber.Ctx) error {
	return h.withSession(c, func(session *Session) error {
		return response.Success(c, "Canvas state fetched", session.State(), nil)
	})
}

// POST /api/v1/canvas/:project_id/add-draft
func (h *Handlers) AddDraft(c *fiber.Ctx) error {
	return h.withSession(c, func(session *Session) error {
		node := session.AddDraft()
		return response.SuccessCreated(c, "Draft added", node, fiber.Map{"state": session.State()})
	})
}

// POST /api/v1/canvas/:project_id/duplicate
func (h *Handlers) DuplicateSelected(c *fiber.Ctx) error {
	return h.withSession(c, func(session *Session) error {
		clones := session.DuplicateSelected()
		if len(clones) == 0 {
			return response.Success(c, "Nothing selected to duplicate", session.State(), nil)
		}
		return response.SuccessCreated(c, "Selection duplicated", clones, fiber.Map{"state": session.State()})
	})
}

// POST /api/v1/canvas/:project_id/select
func (h *Handlers) SetSelection(c *fiber.Ctx) error {
	return h.withSession(c, func(session *Session) error {
		var body struct {
			IDs []string `json:"ids"`
		}
		if err := c.BodyParser(&body); err != nil {
			return response.Error(c, "Invalid request body", 400, nil)
		}
		if err := session.SetSelection(body.IDs); err != nil {
			return response.FromError(c, err)
		}
		return response.Success(c, "Selection updated", session.State(), nil)
	})
}

// PATCH /api/v1/canvas/:project_id/update-field
func (h *Handlers) UpdateField(c *fiber.Ctx) error {
	return h.withSession(c, func(session *Session) error {
		var body struct {
			Key   string      `json:"key"`
			Value interface{} `json:"value"`
		}
		if err := c.BodyParser(&body); err != nil || body.Key == "" {
			return response.Error(c, "key and value are required", 400, nil)
		}
		if err := session.UpdateField(body.Key, body.Value); err != nil {
			return response.FromError(c, err)
		}
		return response.Success(c, "Field updated", session.State(), nil)
	})
}

// PATCH /api/v1/canvas/:project_id/move
func (h *Handlers) MoveNode(c *fiber.Ctx) error {
	return h.withSession(c, func(session *Session) error {
		var body struct {
			ID       string                `json:"id"`
			Position models.CanvasPosition `json:"position"`
		}
		if err := c.BodyParser(&body); err != nil || body.ID == "" {
			return response.Error(c, "id and position are required", 400, nil)
		}
		if err := session.MoveNode(body.ID, body.Position); err != nil {
			return response.FromError(c, err)
		}
		return response.Success(c, "Node moved", session.State(), nil)
	})
}

// POST /api/v1/canvas/:project_id/delete-selected
func (h *Handlers) DeleteSelected(c *fiber.Ctx) error {
	return h.withSession(c, func(session *Session) error {
		var body struct {
			Confirm bool `json:"confirm"`
		}
		if err := c.BodyParser(&body); err != nil {
			return response.Error(c, "Invalid request body", 400, nil)
		}
		result, err := session.DeleteSelected(c.Context(), body.Confirm)
		if err != nil {
			return response.FromError(c, err)
		}
		return response.Success(c, result.Summary, result, fiber.Map{"state": session.State()})
	})
}

// POST /api/v1/canvas/:project_id/save
func (h *Handlers) Save(c *fiber.Ctx) error {
	return h.withSession(c, func(session *Session) error {
		result, err := session.Save(c.Context())
		if err != nil {
			return response.FromError(c, err)
		}
		return response.Success(c, result.Summary, result, fiber.Map{"state": session.State()})
	})
}

// POST /api/v1/canvas/:project_id/discard-drafts
func (h *Handlers) DiscardDrafts(c *fiber.Ctx) error {
	return h.withSession(c, func(session *Session) error {
		discarded := session.DiscardDrafts()
		return response.Success(c, "Drafts discarded", fiber.Map{"discarded": discarded}, fiber.Map{"state": session.State()})
	})
}

// POST /api/v1/canvas/:project_id/close
func (h *Handlers) CloseSession(c *fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("project_id"))
	if err != nil {
		return response.Error(c, "Invalid project_id", 400, nil)
	}
	h.Manager.Close(projectID)
	return response.Success(c, "Canvas session closed", nil, nil)
}

// withSession resolves the project's open session and hands it to fn, or
// replies with the error itself. fn only runs with a live session, so
// handlers never touch a nil one.
func (h *Handlers) withSession(c *fiber.Ctx, fn func(*Session) error) error {
	projectID, err := uuid.Parse(c.Params("project_id"))
	if err != nil {
		return response.Error(c, "Invalid project_id", 400, nil)
	}
	session, ok := h.Manager.Get(projectID)
	if !ok {
		return response.Error(c, "No open canvas session for project", 404, nil)
	}
	return fn(session)
}

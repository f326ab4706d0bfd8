package api

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"aliados/internal/engine"
	"aliados/internal/middleware"
	"aliados/internal/validation"
)

// AskRequest is the body of POST /api/v1/ask.
type AskRequest struct {
	Question string `json:"question"`
}

// AssistantHandler exposes the assistant over JSON.
type AssistantHandler struct {
	engine *engine.Engine
}

// NewAssistantHandler creates a new API assistant handler.
func NewAssistantHandler(e *engine.Engine) *AssistantHandler {
	return &AssistantHandler{engine: e}
}

// Ask answers a question for the logged in caller.
func (h *AssistantHandler) Ask(c fiber.Ctx) error {
	id := middleware.IdentityFrom(c)
	if id == nil {
		return jsonError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var req AskRequest
	if err := c.Bind().JSON(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	question, ok, msg := validation.ValidateMessage(req.Question)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	return jsonSuccess(c, h.engine.Answer(c.Context(), question, id))
}

// Partners lists the partner directory.
func (h *AssistantHandler) Partners(c fiber.Ctx) error {
	return jsonSuccess(c, h.engine.Directory().Partners())
}

// Stats returns quick activity totals. Partner users always get their
// own partner whatever the query says.
func (h *AssistantHandler) Stats(c fiber.Ctx) error {
	q, text, err := h.engine.QuickStats(middleware.IdentityFrom(c), c.Query("partner"))
	switch {
	case errors.Is(err, engine.ErrUnauthenticated):
		return jsonError(c, fiber.StatusUnauthorized, "authentication required")
	case errors.Is(err, engine.ErrUnlinked):
		return jsonError(c, fiber.StatusForbidden, "account is not linked to a partner")
	case err != nil:
		return jsonError(c, fiber.StatusInternalServerError, "failed to compute stats")
	}

	partner := q.Partner
	if partner == "" {
		partner = "Global"
	}
	return jsonSuccess(c, fiber.Map{
		"partner":   partner,
		"units":     q.Units,
		"revenue":   q.Revenue,
		"campaigns": q.Campaigns,
		"records":   q.Records,
		"content":   text,
	})
}

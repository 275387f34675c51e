package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/atlasdesk/support-service/internal/api/dto"
	"github.com/atlasdesk/support-service/internal/auth"
	"github.com/atlasdesk/support-service/internal/service"
)

// ActivitiesHandler serves the ticket timeline endpoints.
type ActivitiesHandler struct {
	activities *service.ActivityService
}

// NewActivitiesHandler constructs handler.
func NewActivitiesHandler(activities *service.ActivityService) *ActivitiesHandler {
	return &ActivitiesHandler{activities: activities}
}

// Timeline GET /api/tickets/:id/activities.
func (h *ActivitiesHandler) Timeline(c *fiber.Ctx) error {
	principal, err := auth.PrincipalFromContext(c)
	if err != nil {
		return err
	}
	activities, err := h.activities.Timeline(c.UserContext(), principal.TenantID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewActivityResponses(activities)})
}

// Comments GET /api/tickets/:id/comments. Staff always see internal comments.
func (h *ActivitiesHandler) Comments(c *fiber.Ctx) error {
	principal, err := auth.PrincipalFromContext(c)
	if err != nil {
		return err
	}
	comments, err := h.activities.Comments(c.UserContext(), principal.TenantID, c.Params("id"), true)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewActivityResponses(comments)})
}

// Stats GET /api/activities/stats.
func (h *ActivitiesHandler) Stats(c *fiber.Ctx) error {
	principal, err := auth.PrincipalFromContext(c)
	if err != nil {
		return err
	}
	stats, err := h.activities.Stats(c.UserContext(), principal.TenantID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

// Delete DELETE /api/activities/:id. Administrative exception to append-only.
func (h *ActivitiesHandler) Delete(c *fiber.Ctx) error {
	principal, err := auth.PrincipalFromContext(c)
	if err != nil {
		return err
	}
	if err := h.activities.DeleteEntry(c.UserContext(), principal.TenantID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/atlasdesk/support-service/internal/api/dto"
	"github.com/atlasdesk/support-service/internal/auth"
	"github.com/atlasdesk/support-service/internal/service"
	apperrors "github.com/atlasdesk/support-service/pkg/util"
)

// TicketTypesHandler manages the ticket type catalog endpoints.
type TicketTypesHandler struct {
	types *service.TicketTypeService
}

// NewTicketTypesHandler constructs handler.
func NewTicketTypesHandler(types *service.TicketTypeService) *TicketTypesHandler {
	return &TicketTypesHandler{types: types}
}

// Create POST /api/ticket-types.
func (h *TicketTypesHandler) Create(c *fiber.Ctx) error {
	principal, err := auth.PrincipalFromContext(c)
	if err != nil {
		return err
	}
	var req dto.TicketTypeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticketType, err := h.types.Create(c.UserContext(), principal.TenantID, service.TicketTypeInput{
		Name:        req.Name,
		Description: req.Description,
		SLAHours:    req.SLAHours,
		Icon:        req.Icon,
		Color:       req.Color,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketTypeResponse(ticketType)})
}

// Update PUT /api/ticket-types/:id.
func (h *TicketTypesHandler) Update(c *fiber.Ctx) error {
	principal, err := auth.PrincipalFromContext(c)
	if err != nil {
		return err
	}
	var req dto.TicketTypeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticketType, err := h.types.Update(c.UserContext(), principal.TenantID, c.Params("id"), service.TicketTypeInput{
		Name:        req.Name,
		Description: req.Description,
		SLAHours:    req.SLAHours,
		Icon:        req.Icon,
		Color:       req.Color,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketTypeResponse(ticketType)})
}

// Get GET /api/ticket-types/:id.
func (h *TicketTypesHandler) Get(c *fiber.Ctx) error {
	principal, err := auth.PrincipalFromContext(c)
	if err != nil {
		return err
	}
	ticketType, err := h.types.Get(c.UserContext(), principal.TenantID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketTypeResponse(ticketType)})
}

// List GET /api/ticket-types.
func (h *TicketTypesHandler) List(c *fiber.Ctx) error {
	principal, err := auth.PrincipalFromContext(c)
	if err != nil {
		return err
	}
	types, err := h.types.List(c.UserContext(), principal.TenantID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketTypeResponses(types)})
}

// Delete DELETE /api/ticket-types/:id.
func (h *TicketTypesHandler) Delete(c *fiber.Ctx) error {
	principal, err := auth.PrincipalFromContext(c)
	if err != nil {
		return err
	}
	if err := h.types.Delete(c.UserContext(), principal.TenantID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/atlasdesk/support-service/internal/api/dto"
	"github.com/atlasdesk/support-service/internal/service"
	apperrors "github.com/atlasdesk/support-service/pkg/util"
)

// PublicHandler serves the unauthenticated access channel. The tenant is
// selected by the X-Tenant-ID header, falling back to the configured default
// for single-tenant deployments.
type PublicHandler struct {
	public        *service.PublicService
	defaultTenant string
}

// NewPublicHandler constructs handler.
func NewPublicHandler(public *service.PublicService, defaultTenant string) *PublicHandler {
	return &PublicHandler{public: public, defaultTenant: defaultTenant}
}

func (h *PublicHandler) tenantID(c *fiber.Ctx) string {
	if tenant := c.Get("X-Tenant-ID"); tenant != "" {
		return tenant
	}
	return h.defaultTenant
}

// Create POST /public/tickets.
func (h *PublicHandler) Create(c *fiber.Ctx) error {
	var req dto.PublicCreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.public.Create(c.UserContext(), h.tenantID(c), service.PublicCreateInput{
		TicketTypeID: req.TicketTypeID,
		Title:        req.Title,
		Description:  req.Description,
		Priority:     req.Priority,
		Location:     req.Location,
		ClientID:     req.ClientID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": result})
}

// Get GET /public/tickets/:code.
func (h *PublicHandler) Get(c *fiber.Ctx) error {
	view, err := h.public.GetByCode(c.UserContext(), h.tenantID(c), c.Params("code"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": view})
}

// Close POST /public/tickets/:code/close.
func (h *PublicHandler) Close(c *fiber.Ctx) error {
	var req dto.PublicCloseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	view, err := h.public.CloseByCode(c.UserContext(), h.tenantID(c), c.Params("code"), req.Resolution)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": view})
}

// Reopen POST /public/tickets/:code/reopen.
func (h *PublicHandler) Reopen(c *fiber.Ctx) error {
	var req dto.PublicReopenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	view, err := h.public.ReopenByCode(c.UserContext(), h.tenantID(c), c.Params("code"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": view})
}

// Rate POST /public/tickets/:code/rate.
func (h *PublicHandler) Rate(c *fiber.Ctx) error {
	var req dto.PublicRateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	view, err := h.public.RateByCode(c.UserContext(), h.tenantID(c), c.Params("code"), req.Rating, req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": view})
}

// Interventions GET /public/tickets/:code/interventions.
func (h *PublicHandler) Interventions(c *fiber.Ctx) error {
	views, err := h.public.InterventionsByCode(c.UserContext(), h.tenantID(c), c.Params("code"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": views})
}

// Comments GET /public/tickets/:code/comments.
func (h *PublicHandler) Comments(c *fiber.Ctx) error {
	views, err := h.public.CommentsByCode(c.UserContext(), h.tenantID(c), c.Params("code"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": views})
}

// Types GET /public/ticket-types.
func (h *PublicHandler) Types(c *fiber.Ctx) error {
	views, err := h.public.ListTypes(c.UserContext(), h.tenantID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": views})
}

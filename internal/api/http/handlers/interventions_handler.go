package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/atlasdesk/support-service/internal/api/dto"
	"github.com/atlasdesk/support-service/internal/auth"
	"github.com/atlasdesk/support-service/internal/domain"
	"github.com/atlasdesk/support-service/internal/repository"
	"github.com/atlasdesk/support-service/internal/service"
	apperrors "github.com/atlasdesk/support-service/pkg/util"
)

// InterventionsHandler manages technician work session endpoints.
type InterventionsHandler struct {
	interventions *service.InterventionService
}

// NewInterventionsHandler constructs handler.
func NewInterventionsHandler(interventions *service.InterventionService) *InterventionsHandler {
	return &InterventionsHandler{interventions: interventions}
}

// Create POST /api/interventions.
func (h *InterventionsHandler) Create(c *fiber.Ctx) error {
	principal, err := auth.PrincipalFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CreateInterventionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	input := service.InterventionCreateInput{
		TicketID:        req.TicketID,
		TechnicianID:    req.TechnicianID,
		Type:            req.Type,
		Description:     req.Description,
		EndTime:         req.EndTime,
		DurationMinutes: req.DurationMinutes,
		Status:          req.Status,
		Notes:           req.Notes,
		LaborCost:       req.LaborCost,
		PartsCost:       req.PartsCost,
	}
	if req.StartTime != nil {
		input.StartTime = *req.StartTime
	}
	intervention, err := h.interventions.Create(c.UserContext(), principal.TenantID, principal.UserID, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewInterventionResponse(intervention)})
}

// Update PATCH /api/interventions/:id.
func (h *InterventionsHandler) Update(c *fiber.Ctx) error {
	principal, err := auth.PrincipalFromContext(c)
	if err != nil {
		return err
	}
	var req dto.UpdateInterventionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	intervention, err := h.interventions.Update(c.UserContext(), principal.TenantID, c.Params("id"), service.InterventionUpdateInput{
		Type:            req.Type,
		Description:     req.Description,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		DurationMinutes: req.DurationMinutes,
		Status:          req.Status,
		Notes:           req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewInterventionResponse(intervention)})
}

// Get GET /api/interventions/:id.
func (h *InterventionsHandler) Get(c *fiber.Ctx) error {
	principal, err := auth.PrincipalFromContext(c)
	if err != nil {
		return err
	}
	intervention, err := h.interventions.Get(c.UserContext(), principal.TenantID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewInterventionResponse(intervention)})
}

// List GET /api/interventions.
func (h *InterventionsHandler) List(c *fiber.Ctx) error {
	principal, err := auth.PrincipalFromContext(c)
	if err != nil {
		return err
	}
	filter, page, pageSize, paginated := parseInterventionQuery(c)

	interventions, err := h.interventions.List(c.UserContext(), principal.TenantID, filter)
	if err != nil {
		return err
	}
	responses := dto.NewInterventionResponses(interventions)

	if !paginated {
		return c.JSON(fiber.Map{"data": responses})
	}
	total, err := h.interventions.Count(c.UserContext(), principal.TenantID, filter)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewPaginated(responses, total, page, pageSize))
}

// AddCost POST /api/interventions/:id/costs.
func (h *InterventionsHandler) AddCost(c *fiber.Ctx) error {
	principal, err := auth.PrincipalFromContext(c)
	if err != nil {
		return err
	}
	var req dto.AddCostRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	cost, err := h.interventions.AddCost(c.UserContext(), principal.TenantID, c.Params("id"), service.CostInput{
		Description: req.Description,
		CostType:    req.CostType,
		Quantity:    req.Quantity,
		UnitPrice:   req.UnitPrice,
		TotalPrice:  req.TotalPrice,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.CostResponse{
		ID:          cost.ID,
		Description: cost.Description,
		CostType:    cost.CostType,
		Quantity:    cost.Quantity,
		UnitPrice:   cost.UnitPrice,
		TotalPrice:  cost.TotalPrice,
		CreatedAt:   cost.CreatedAt,
	}})
}

// Delete DELETE /api/interventions/:id.
func (h *InterventionsHandler) Delete(c *fiber.Ctx) error {
	principal, err := auth.PrincipalFromContext(c)
	if err != nil {
		return err
	}
	if err := h.interventions.Delete(c.UserContext(), principal.TenantID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Stats GET /api/interventions/stats.
func (h *InterventionsHandler) Stats(c *fiber.Ctx) error {
	principal, err := auth.PrincipalFromContext(c)
	if err != nil {
		return err
	}
	stats, err := h.interventions.Stats(c.UserContext(), principal.TenantID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

// TicketCost GET /api/tickets/:id/cost.
func (h *InterventionsHandler) TicketCost(c *fiber.Ctx) error {
	principal, err := auth.PrincipalFromContext(c)
	if err != nil {
		return err
	}
	total, err := h.interventions.TicketTotal(c.UserContext(), principal.TenantID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"ticket_id": c.Params("id"), "total_cost": total}})
}

func parseInterventionQuery(c *fiber.Ctx) (repository.InterventionFilter, int, int, bool) {
	filter := repository.InterventionFilter{}
	if v := c.Query("ticket_id"); v != "" {
		filter.TicketID = &v
	}
	if v := c.Query("technician_id"); v != "" {
		filter.TechnicianID = &v
	}
	if v := c.Query("equipment_id"); v != "" {
		filter.EquipmentID = &v
	}
	if v := strings.TrimSpace(c.Query("type")); v != "" {
		interventionType := domain.InterventionType(v)
		filter.Type = &interventionType
	}
	if v := strings.TrimSpace(c.Query("status")); v != "" {
		status := domain.InterventionStatus(v)
		filter.Status = &status
	}
	if from := parseTime(c.Query("started_from")); from != nil {
		filter.StartedFrom = from
	}
	if to := parseTime(c.Query("started_to")); to != nil {
		filter.StartedTo = to
	}

	paginated := c.Query("page") != "" || c.Query("page_size") != ""
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	if paginated {
		filter.Offset = (page - 1) * pageSize
		filter.Limit = pageSize
	}
	return filter, page, pageSize, paginated
}

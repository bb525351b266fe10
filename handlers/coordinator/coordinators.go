package coordinator

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/campus-events/handlers"
	"github.com/sahilchouksey/campus-events/services"
	"github.com/sahilchouksey/campus-events/utils/response"
	"github.com/sahilchouksey/campus-events/utils/validation"
)

// CoordinatorHandler handles standalone coordinator requests
type CoordinatorHandler struct {
	events    *services.EventService
	validator *validation.Validator
}

// NewCoordinatorHandler creates a new coordinator handler
func NewCoordinatorHandler(events *services.EventService) *CoordinatorHandler {
	return &CoordinatorHandler{
		events:    events,
		validator: validation.NewValidator(),
	}
}

func (h *CoordinatorHandler) parseInput(c *fiber.Ctx, requireEvent bool) (*services.CoordinatorInput, error) {
	var req services.CoordinatorInput
	if err := c.BodyParser(&req); err != nil {
		return nil, response.BadRequest(c, handlers.MsgMissingParams)
	}

	req.Name = validation.SanitizeString(req.Name)
	req.Email = validation.SanitizeString(req.Email)
	req.ContNo = validation.SanitizeString(req.ContNo)

	if err := h.validator.ValidateStruct(req); err != nil {
		return nil, handlers.Invalid(c, err)
	}
	if requireEvent && req.EventID == 0 {
		return nil, response.ErrorWithDetails(c, fiber.StatusBadRequest, handlers.MsgMissingParams,
			map[string]string{"eventId": "eventId is required"})
	}
	return &req, nil
}

func eventError(c *fiber.Ctx, eventID uint, err error) error {
	if errors.Is(err, services.ErrEventNotFound) {
		return response.NotFound(c, fmt.Sprintf("no event found for eventID: %d", eventID))
	}
	return handlers.ServiceError(c, err)
}

// CreateCoordinator handles POST /event/coordinator
func (h *CoordinatorHandler) CreateCoordinator(c *fiber.Ctx) error {
	req, sent := h.parseInput(c, true)
	if req == nil {
		return sent
	}

	coordinator, err := h.events.CreateCoordinator(c.UserContext(), *req)
	if err != nil {
		return eventError(c, req.EventID, err)
	}

	handlers.Audit(c, "coordinator.create", coordinator.ID)
	return response.Created(c, "coordinator saved", coordinator)
}

// GetCoordinator handles GET /event/coordinator/:id
func (h *CoordinatorHandler) GetCoordinator(c *fiber.Ctx) error {
	id, ok := handlers.ParamID(c, "id")
	if !ok {
		return response.BadRequest(c, handlers.MsgMissingParams)
	}

	coordinator, err := h.events.GetCoordinator(c.UserContext(), id)
	if err != nil {
		return handlers.ServiceError(c, err)
	}

	return response.Success(c, "coordinator fetched", coordinator)
}

// UpdateCoordinator handles PUT /event/coordinator/:id
func (h *CoordinatorHandler) UpdateCoordinator(c *fiber.Ctx) error {
	id, ok := handlers.ParamID(c, "id")
	if !ok {
		return response.BadRequest(c, handlers.MsgMissingParams)
	}

	req, sent := h.parseInput(c, false)
	if req == nil {
		return sent
	}

	coordinator, err := h.events.UpdateCoordinator(c.UserContext(), id, *req)
	if err != nil {
		return eventError(c, req.EventID, err)
	}

	handlers.Audit(c, "coordinator.update", id)
	return response.Success(c, "coordinator updated", coordinator)
}

// DeleteCoordinator handles DELETE /event/coordinator/:id
func (h *CoordinatorHandler) DeleteCoordinator(c *fiber.Ctx) error {
	id, ok := handlers.ParamID(c, "id")
	if !ok {
		return response.BadRequest(c, handlers.MsgMissingParams)
	}

	coordinator, err := h.events.DeleteCoordinator(c.UserContext(), id)
	if err != nil {
		return handlers.ServiceError(c, err)
	}

	handlers.Audit(c, "coordinator.delete", id)
	return response.Success(c, fmt.Sprintf("coordinator %s removed", coordinator.Name), fiber.Map{"id": coordinator.ID})
}

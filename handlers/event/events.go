package event

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/campus-events/handlers"
	"github.com/sahilchouksey/campus-events/model"
	"github.com/sahilchouksey/campus-events/services"
	"github.com/sahilchouksey/campus-events/utils/response"
	"github.com/sahilchouksey/campus-events/utils/validation"
)

// EventHandler handles event requests
type EventHandler struct {
	events    *services.EventService
	validator *validation.Validator
}

// NewEventHandler creates a new event handler
func NewEventHandler(events *services.EventService) *EventHandler {
	return &EventHandler{
		events:    events,
		validator: validation.NewValidator(),
	}
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

func parseDate(s string) (*time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q", s)
}

// ListEvents handles GET /event?name=&from=&to=
func (h *EventHandler) ListEvents(c *fiber.Ctx) error {
	filter := services.EventFilter{
		Name: validation.SanitizeString(c.Query("name")),
	}

	if from := c.Query("from"); from != "" {
		t, err := parseDate(from)
		if err != nil {
			return response.BadRequest(c, handlers.MsgMissingSearchParams)
		}
		filter.From = t
	}
	if to := c.Query("to"); to != "" {
		t, err := parseDate(to)
		if err != nil {
			return response.BadRequest(c, handlers.MsgMissingSearchParams)
		}
		filter.To = t
	}

	events, err := h.events.List(c.UserContext(), filter)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	if events == nil {
		events = []model.Event{}
	}

	return response.Success(c, "events fetched", events)
}

// RecentEvents handles GET /event/recent
func (h *EventHandler) RecentEvents(c *fiber.Ctx) error {
	events, err := h.events.Recent(c.UserContext())
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	if events == nil {
		events = []model.Event{}
	}

	return response.Success(c, "recent events fetched", events)
}

// GetEvent handles GET /event/:id
func (h *EventHandler) GetEvent(c *fiber.Ctx) error {
	id, ok := handlers.ParamID(c, "id")
	if !ok {
		return response.BadRequest(c, handlers.MsgMissingParams)
	}

	event, err := h.events.Get(c.UserContext(), id)
	if err != nil {
		return handlers.ServiceError(c, err)
	}

	return response.Success(c, "event fetched", event)
}

func (h *EventHandler) parseInput(c *fiber.Ctx) (*services.EventInput, error) {
	var req services.EventInput
	if err := c.BodyParser(&req); err != nil {
		return nil, response.BadRequest(c, handlers.MsgMissingParams)
	}

	req.Name = validation.SanitizeString(req.Name)
	req.Description = strings.TrimSpace(req.Description)

	if err := h.validator.ValidateStruct(req); err != nil {
		return nil, handlers.Invalid(c, err)
	}
	return &req, nil
}

// CreateEvent handles POST /event
func (h *EventHandler) CreateEvent(c *fiber.Ctx) error {
	req, sent := h.parseInput(c)
	if req == nil {
		return sent
	}

	event, err := h.events.Create(c.UserContext(), *req)
	if err != nil {
		return handlers.ServiceError(c, err)
	}

	handlers.Audit(c, "event.create", event.ID)
	return response.Created(c, "event created", event)
}

// UpdateEvent handles PUT /event/:id
func (h *EventHandler) UpdateEvent(c *fiber.Ctx) error {
	id, ok := handlers.ParamID(c, "id")
	if !ok {
		return response.BadRequest(c, handlers.MsgMissingParams)
	}

	req, sent := h.parseInput(c)
	if req == nil {
		return sent
	}

	event, err := h.events.Update(c.UserContext(), id, *req)
	if err != nil {
		return handlers.ServiceError(c, err)
	}

	handlers.Audit(c, "event.update", id)
	return response.Success(c, "event updated", event)
}

// DeleteEvent handles DELETE /event/:id
func (h *EventHandler) DeleteEvent(c *fiber.Ctx) error {
	id, ok := handlers.ParamID(c, "id")
	if !ok {
		return response.BadRequest(c, handlers.MsgMissingParams)
	}

	name, err := h.events.Delete(c.UserContext(), id)
	if err != nil {
		return handlers.ServiceError(c, err)
	}

	handlers.Audit(c, "event.delete", id)
	return response.Success(c, fmt.Sprintf(`Event - "%s" Deleted `, name), fiber.Map{"id": id})
}

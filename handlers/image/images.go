package image

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/campus-events/handlers"
	"github.com/sahilchouksey/campus-events/services"
	"github.com/sahilchouksey/campus-events/services/archive"
	"github.com/sahilchouksey/campus-events/services/media"
	"github.com/sahilchouksey/campus-events/utils/response"
	"github.com/sahilchouksey/campus-events/utils/validation"
)

// ImageHandler handles event gallery and archive requests
type ImageHandler struct {
	events    *services.EventService
	archives  *archive.Builder
	validator *validation.Validator
}

// NewImageHandler creates a new image handler
func NewImageHandler(events *services.EventService, archives *archive.Builder) *ImageHandler {
	return &ImageHandler{
		events:    events,
		archives:  archives,
		validator: validation.NewValidator(),
	}
}

// AddImagesRequest is the body of POST /event/image/:eventId
type AddImagesRequest struct {
	Images []media.Upload `json:"images" validate:"required,min=1,dive"`
}

// RemoveZipRequest is the body of DELETE /event/image/:eventId/zip
type RemoveZipRequest struct {
	Name string `json:"name" validate:"required"`
}

func eventID(c *fiber.Ctx) (uint, bool) {
	return handlers.ParamID(c, "eventId")
}

// ListImages handles GET /event/image/:eventId
func (h *ImageHandler) ListImages(c *fiber.Ctx) error {
	id, ok := eventID(c)
	if !ok {
		return response.BadRequest(c, handlers.MsgMissingParams)
	}

	images, err := h.events.ListImages(c.UserContext(), id)
	if err != nil {
		return handlers.ServiceError(c, err)
	}

	return response.Success(c, "images fetched", images)
}

// GetImage handles GET /event/image/:eventId/:imageId
func (h *ImageHandler) GetImage(c *fiber.Ctx) error {
	id, ok := eventID(c)
	imageID, ok2 := handlers.ParamID(c, "imageId")
	if !ok || !ok2 {
		return response.BadRequest(c, handlers.MsgMissingParams)
	}

	image, err := h.events.GetImage(c.UserContext(), id, imageID)
	if err != nil {
		return handlers.ServiceError(c, err)
	}

	return response.Success(c, "image fetched", image)
}

// AddImages handles POST /event/image/:eventId
func (h *ImageHandler) AddImages(c *fiber.Ctx) error {
	id, ok := eventID(c)
	if !ok {
		return response.BadRequest(c, handlers.MsgMissingParams)
	}

	var req AddImagesRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, handlers.MsgMissingParams)
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return handlers.Invalid(c, err)
	}

	images, err := h.events.AddImages(c.UserContext(), id, req.Images)
	if err != nil {
		if errors.Is(err, services.ErrEventNotFound) {
			return response.NotFound(c, fmt.Sprintf("no event found for eventID: %d", id))
		}
		return handlers.ServiceError(c, err)
	}

	handlers.Audit(c, "images.add", id)
	return response.Created(c, fmt.Sprintf("%d images added", len(images)), images)
}

// DeleteImages handles DELETE /event/image/:eventId
func (h *ImageHandler) DeleteImages(c *fiber.Ctx) error {
	id, ok := eventID(c)
	if !ok {
		return response.BadRequest(c, handlers.MsgMissingParams)
	}

	n, err := h.events.DeleteImages(c.UserContext(), id)
	if err != nil {
		return handlers.ServiceError(c, err)
	}

	handlers.Audit(c, "images.delete", id)
	return response.Success(c, "images removed", fiber.Map{"count": n})
}

// DeleteImage handles DELETE /event/image/:eventId/:imageId
func (h *ImageHandler) DeleteImage(c *fiber.Ctx) error {
	id, ok := eventID(c)
	imageID, ok2 := handlers.ParamID(c, "imageId")
	if !ok || !ok2 {
		return response.BadRequest(c, handlers.MsgMissingParams)
	}

	image, err := h.events.DeleteImage(c.UserContext(), id, imageID)
	if err != nil {
		return handlers.ServiceError(c, err)
	}

	handlers.Audit(c, "image.delete", imageID)
	return response.Success(c, fmt.Sprintf("%s removed", image.Name), fiber.Map{"id": image.ID})
}

// BuildZip handles GET /event/image/:eventId/zip
func (h *ImageHandler) BuildZip(c *fiber.Ctx) error {
	id, ok := eventID(c)
	if !ok {
		return response.BadRequest(c, handlers.MsgMissingParams)
	}

	result, err := h.archives.Build(c.UserContext(), id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEventNotFound):
			return response.NotFound(c, fmt.Sprintf("no event found for eventID: %d", id))
		case errors.Is(err, services.ErrNoImages):
			name := fmt.Sprint(id)
			var evErr *services.EventError
			if errors.As(err, &evErr) {
				name = evErr.EventName
			}
			return response.NotFound(c, fmt.Sprintf("Event - %s has no images", name))
		}
		return handlers.ServiceError(c, err)
	}

	handlers.Audit(c, "zip.build", id)
	return response.Created(c, "zip has been zipped successfully", result)
}

// RemoveZip handles DELETE /event/image/:eventId/zip
func (h *ImageHandler) RemoveZip(c *fiber.Ctx) error {
	var req RemoveZipRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, handlers.MsgMissingParams)
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return handlers.Invalid(c, err)
	}

	if err := h.archives.Remove(req.Name); err != nil {
		if errors.Is(err, services.ErrArchiveNotFound) {
			return response.NotFound(c, fmt.Sprintf("%s zip not found", req.Name))
		}
		return handlers.ServiceError(c, err)
	}

	return response.Success(c, fmt.Sprintf("%s removed", req.Name), nil)
}

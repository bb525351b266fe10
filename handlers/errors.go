package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/campus-events/services"
	"github.com/sahilchouksey/campus-events/utils/logger"
	"github.com/sahilchouksey/campus-events/utils/middleware"
	"github.com/sahilchouksey/campus-events/utils/response"
	"github.com/sahilchouksey/campus-events/utils/validation"
)

// Messages shared by the event handlers
const (
	MsgMissingParams       = "unsufficient parimeters"
	MsgMissingSearchParams = "unsufficient search parameters"
	MsgEventNotFound       = "event not found"
)

// ParamID reads a positive integer route parameter
func ParamID(c *fiber.Ctx, key string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(key), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// Invalid answers a failed validation with the per-field details
func Invalid(c *fiber.Ctx, err error) error {
	return response.ErrorWithDetails(c, fiber.StatusBadRequest, MsgMissingParams, validation.FormatValidationErrors(err))
}

// ServiceError maps service errors to responses. Unknown errors are
// reported as 400 with their message.
func ServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrEventNotFound):
		return response.NotFound(c, MsgEventNotFound)
	case errors.Is(err, services.ErrMissingDateRange):
		return response.BadRequest(c, MsgMissingSearchParams)
	case errors.Is(err, services.ErrImageNotFound):
		return response.NotFound(c, "image not found")
	case errors.Is(err, services.ErrCoordinatorNotFound):
		return response.BadRequest(c, "no coordianator found for id")
	case errors.Is(err, services.ErrEmptyImageList):
		return response.BadRequest(c, MsgMissingParams)
	}

	logger.Ctx(c.UserContext()).Warn().Err(err).Str("path", c.Path()).Msg("request failed")
	return response.BadRequest(c, err.Error())
}

// Audit logs a completed mutation with the user who made it
func Audit(c *fiber.Ctx, action string, id uint) {
	userID, _ := middleware.GetUserID(c)
	logger.Ctx(c.UserContext()).Info().
		Uint("user_id", userID).
		Str("action", action).
		Uint("id", id).
		Msg("audit")
}

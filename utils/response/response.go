package response

import (
	"github.com/gofiber/fiber/v2"
)

// Response is the envelope every endpoint answers with.
// Error and Success are always opposite; clients branch on either.
type Response struct {
	Error   bool        `json:"error"`
	Success bool        `json:"success"`
	Msg     string      `json:"msg"`
	Data    interface{} `json:"data,omitempty"`
}

// Send writes the envelope with an explicit status code
func Send(c *fiber.Ctx, statusCode int, msg string, data interface{}) error {
	ok := statusCode < fiber.StatusBadRequest
	return c.Status(statusCode).JSON(Response{
		Error:   !ok,
		Success: ok,
		Msg:     msg,
		Data:    data,
	})
}

// Success returns a 200 OK response
func Success(c *fiber.Ctx, msg string, data interface{}) error {
	return Send(c, fiber.StatusOK, msg, data)
}

// Created returns a 201 Created response
func Created(c *fiber.Ctx, msg string, data interface{}) error {
	return Send(c, fiber.StatusCreated, msg, data)
}

// Error returns a failure envelope with no data
func Error(c *fiber.Ctx, statusCode int, msg string) error {
	return Send(c, statusCode, msg, nil)
}

// ErrorWithDetails returns a failure envelope carrying details in data
func ErrorWithDetails(c *fiber.Ctx, statusCode int, msg string, details interface{}) error {
	return Send(c, statusCode, msg, details)
}

// BadRequest returns a 400 Bad Request response
func BadRequest(c *fiber.Ctx, msg string) error {
	return Error(c, fiber.StatusBadRequest, msg)
}

// Unauthorized returns a 401 Unauthorized response
func Unauthorized(c *fiber.Ctx, msg string) error {
	if msg == "" {
		msg = "Unauthorized access"
	}
	return Error(c, fiber.StatusUnauthorized, msg)
}

// NotFound returns a 404 Not Found response
func NotFound(c *fiber.Ctx, msg string) error {
	if msg == "" {
		msg = "Resource not found"
	}
	return Error(c, fiber.StatusNotFound, msg)
}

// TooManyRequests returns a 429 Too Many Requests response
func TooManyRequests(c *fiber.Ctx, msg string) error {
	if msg == "" {
		msg = "Too many requests"
	}
	return Error(c, fiber.StatusTooManyRequests, msg)
}

// InternalServerError returns a 500 Internal Server Error response
func InternalServerError(c *fiber.Ctx, msg string) error {
	if msg == "" {
		msg = "Internal server error"
	}
	return Error(c, fiber.StatusInternalServerError, msg)
}

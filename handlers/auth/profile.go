package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/campus-events/model"
	"github.com/sahilchouksey/campus-events/utils/middleware"
	"github.com/sahilchouksey/campus-events/utils/response"
	"gorm.io/gorm"
)

// Me handles GET /users/me.
// A missing token is 401; a token that fails verification is 400 with the reason.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	token := middleware.BearerToken(c)
	if token == "" {
		return response.Unauthorized(c, "auth token not found")
	}

	claims, err := h.jwtManager.ValidateToken(token)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var user model.User
	if err := h.db.WithContext(c.UserContext()).First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "user not found")
		}
		return response.BadRequest(c, err.Error())
	}

	return response.Success(c, "user fetched", user)
}

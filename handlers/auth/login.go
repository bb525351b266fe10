package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/campus-events/handlers"
	"github.com/sahilchouksey/campus-events/model"
	authutil "github.com/sahilchouksey/campus-events/utils/auth"
	"github.com/sahilchouksey/campus-events/utils/metrics"
	"github.com/sahilchouksey/campus-events/utils/response"
)

// LoginRequest represents a user login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the session token
type LoginResponse struct {
	AuthKey   string `json:"authKey"`
	ExpiresIn int64  `json:"expiresIn"` // seconds
}

const msgInvalidCredentials = "invalid credentials"

// Login handles POST /users/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, handlers.MsgMissingParams)
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := h.validator.ValidateStruct(req); err != nil {
		return handlers.Invalid(c, err)
	}

	ip := c.IP()

	// Find user by email
	var user model.User
	if err := h.db.WithContext(c.UserContext()).Where("email = ?", req.Email).First(&user).Error; err != nil {
		return h.rejectLogin(c, ip, req.Email)
	}

	if err := authutil.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		return h.rejectLogin(c, ip, req.Email)
	}

	if h.bruteForceProtection != nil {
		_ = h.bruteForceProtection.RecordSuccessfulAttempt(c, ip)
	}

	token, err := h.jwtManager.GenerateToken(user.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate token")
	}

	return response.Success(c, "logged in", LoginResponse{
		AuthKey:   token,
		ExpiresIn: int64(h.jwtManager.Expiry().Seconds()),
	})
}

func (h *AuthHandler) rejectLogin(c *fiber.Ctx, ip, email string) error {
	metrics.LoginFailures.Inc()
	if h.bruteForceProtection != nil {
		_ = h.bruteForceProtection.RecordFailedAttempt(c, ip, email)
	}
	return response.Unauthorized(c, msgInvalidCredentials)
}

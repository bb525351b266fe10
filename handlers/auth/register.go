package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/campus-events/handlers"
	"github.com/sahilchouksey/campus-events/model"
	authutil "github.com/sahilchouksey/campus-events/utils/auth"
	"github.com/sahilchouksey/campus-events/utils/logger"
	"github.com/sahilchouksey/campus-events/utils/middleware"
	"github.com/sahilchouksey/campus-events/utils/response"
	"github.com/sahilchouksey/campus-events/utils/validation"
	"gorm.io/gorm"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	db                   *gorm.DB
	jwtManager           *authutil.JWTManager
	bruteForceProtection *middleware.BruteForceProtection
	validator            *validation.Validator
}

// NewAuthHandler creates a new auth handler. bruteForceProtection may be nil.
func NewAuthHandler(db *gorm.DB, jwtManager *authutil.JWTManager, bruteForceProtection *middleware.BruteForceProtection) *AuthHandler {
	return &AuthHandler{
		db:                   db,
		jwtManager:           jwtManager,
		bruteForceProtection: bruteForceProtection,
		validator:            validation.NewValidator(),
	}
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
}

// Register handles POST /users.
// Registration is open. The first account becomes ADMIN, later ones USER.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, handlers.MsgMissingParams)
	}

	req.FirstName = validation.SanitizeString(req.FirstName)
	req.LastName = validation.SanitizeString(req.LastName)
	req.Email = strings.ToLower(validation.SanitizeString(req.Email))

	if err := h.validator.ValidateStruct(req); err != nil {
		return handlers.Invalid(c, err)
	}

	ctx := c.UserContext()

	var users int64
	if err := h.db.WithContext(ctx).Model(&model.User{}).Count(&users).Error; err != nil {
		return response.InternalServerError(c, "Failed to check users")
	}

	role := model.RoleUser
	if users == 0 {
		role = model.RoleAdmin
	}

	var existing model.User
	err := h.db.WithContext(ctx).Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		return response.BadRequest(c, "user already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return response.InternalServerError(c, "Failed to check user")
	}

	hash, err := authutil.HashPassword(req.Password)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	user := model.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := h.db.WithContext(ctx).Create(&user).Error; err != nil {
		return response.BadRequest(c, err.Error())
	}

	logger.Ctx(ctx).Info().Uint("user_id", user.ID).Str("role", role).Msg("user created")
	return response.Created(c, "user created", user)
}

package handlers

import (
	"errors"
	"net/mail"
	"strings"
	"unicode"

	"github.com/gofiber/fiber/v2"
	"github.com/labshare/server/internal/directory"
	"github.com/labshare/server/internal/middleware"
	"github.com/labshare/server/internal/models"
	"github.com/labshare/server/internal/services"
	"github.com/labshare/server/pkg/logger"
	"github.com/labshare/server/pkg/utils"
)

type AuthHandler struct {
	Directory *directory.Directory
	Audit     *services.AuditService
}

func NewAuthHandler(dir *directory.Directory, audit *services.AuditService) *AuthHandler {
	return &AuthHandler{Directory: dir, Audit: audit}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)

	if req.Username == "" {
		return utils.Error(c, fiber.StatusBadRequest, "username is required")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid email")
	}
	if !isValidPhone(req.Phone) {
		return utils.Error(c, fiber.StatusBadRequest, "invalid phone number")
	}
	if len(req.Password) < 6 {
		return utils.Error(c, fiber.StatusBadRequest, "password must be at least 6 characters")
	}
	role, ok := models.ParseRole(req.Role)
	if !ok {
		return utils.Error(c, fiber.StatusBadRequest, "role must be researcher, doctor or patient")
	}

	user, err := h.Directory.Register(directory.Candidate{
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Role:     role,
	})
	if err != nil {
		if errors.Is(err, directory.ErrDuplicateUsername) {
			return utils.Error(c, fiber.StatusConflict, "username already taken")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating user")
	}

	logger.Info("user_registered", map[string]interface{}{
		"user_id":  user.ID.String(),
		"username": user.Username,
		"role":     string(user.Role),
	})

	h.Audit.LogAsync(services.AuditEntry{
		UserID:       &user.ID,
		Action:       "user.register",
		ResourceType: "user",
		ResourceID:   &user.ID,
		Details: map[string]interface{}{
			"username": user.Username,
			"role":     string(user.Role),
		},
		IPAddress: c.IP(),
		RequestID: getRequestID(c),
	})

	token, err := utils.GenerateToken(user)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed generating token")
	}

	return utils.Success(c, fiber.StatusCreated, fiber.Map{"token": token, "user": user})
}

type loginRequest struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Username = strings.TrimSpace(req.Username)

	if req.Username == "" || req.Password == "" {
		return utils.Error(c, fiber.StatusBadRequest, "username and password are required")
	}
	role, ok := models.ParseRole(req.Role)
	if !ok {
		return utils.Error(c, fiber.StatusBadRequest, "role must be researcher, doctor or patient")
	}

	user, err := h.Directory.Authenticate(req.Username, role, req.Password)
	if err != nil {
		logger.Warn("login_failed", map[string]interface{}{
			"username": req.Username,
			"role":     string(role),
			"ip":       c.IP(),
		})
		return utils.Error(c, fiber.StatusUnauthorized, "invalid credentials")
	}

	logger.InfoWithUser(user.ID.String(), "user_login", map[string]interface{}{
		"username": user.Username,
		"role":     string(user.Role),
		"ip":       c.IP(),
	})

	h.Audit.LogAsync(services.AuditEntry{
		UserID:       &user.ID,
		Action:       "user.login",
		ResourceType: "user",
		ResourceID:   &user.ID,
		Details: map[string]interface{}{
			"username": user.Username,
		},
		IPAddress: c.IP(),
		RequestID: getRequestID(c),
	})

	token, err := utils.GenerateToken(user)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed generating token")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"token": token, "user": user})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return utils.Success(c, fiber.StatusOK, user)
}

// isValidPhone accepts an optional leading + and at least seven digits once
// spaces, dashes and parentheses are stripped.
func isValidPhone(phone string) bool {
	stripped := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')':
			return -1
		default:
			return r
		}
	}, phone)

	stripped = strings.TrimPrefix(stripped, "+")
	if len(stripped) < 7 {
		return false
	}
	for _, r := range stripped {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

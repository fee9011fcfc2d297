package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/labshare/server/internal/middleware"
	"github.com/labshare/server/internal/models"
	"github.com/labshare/server/pkg/utils"
	"gorm.io/gorm"
)

type UsersHandler struct {
	DB *gorm.DB
}

func NewUsersHandler(db *gorm.DB) *UsersHandler {
	return &UsersHandler{DB: db}
}

// Recipients lists the users a researcher may address a file to: every doctor
// and patient, excluding researchers.
func (h *UsersHandler) Recipients(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	search := strings.TrimSpace(c.Query("search"))

	query := h.DB.Model(&models.User{}).
		Where("role IN ?", []models.UserRole{models.UserRoleDoctor, models.UserRolePatient})

	if search != "" {
		searchValue := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ?", searchValue, searchValue)
	}

	var users []models.User
	if err := query.Order("username ASC").Find(&users).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing recipients")
	}

	return utils.Success(c, fiber.StatusOK, users)
}

// Package directory owns the registered users: registration with the
// username-uniqueness invariant, login matching, and lookups.
package directory

import (
	"errors"

	"github.com/labshare/server/internal/models"
	"github.com/labshare/server/pkg/utils"
	"gorm.io/gorm"
)

var (
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type Directory struct {
	DB *gorm.DB

	// EnforcePassword enables the bcrypt check at login. Off by default: the
	// demo contract accepts any non-empty password once username and role
	// match. See Authenticate.
	EnforcePassword bool
}

func New(db *gorm.DB, enforcePassword bool) *Directory {
	return &Directory{DB: db, EnforcePassword: enforcePassword}
}

// Candidate carries the registration input. Format validation of email, phone
// and password happens at the handler boundary; the directory only guards the
// uniqueness invariant.
type Candidate struct {
	Username string
	Email    string
	Phone    string
	Password string
	Role     models.UserRole
}

// Register inserts a new user, failing with ErrDuplicateUsername if the
// username is taken. The directory is unchanged on failure.
func (d *Directory) Register(candidate Candidate) (*models.User, error) {
	var existing models.User
	err := d.DB.First(&existing, "username = ?", candidate.Username).Error
	if err == nil {
		return nil, ErrDuplicateUsername
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := utils.HashPassword(candidate.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:     candidate.Username,
		Email:        candidate.Email,
		Phone:        candidate.Phone,
		PasswordHash: hash,
		Role:         candidate.Role,
	}
	if err := d.DB.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Authenticate matches username plus exact role, failing with ErrNotFound when
// no such user exists. The password must be non-empty but is otherwise ignored
// unless EnforcePassword is set; a knowingly weak demo behavior, kept
// switchable rather than silently fixed.
func (d *Directory) Authenticate(username string, role models.UserRole, password string) (*models.User, error) {
	if password == "" {
		return nil, ErrInvalidCredentials
	}

	var user models.User
	err := d.DB.First(&user, "username = ? AND role = ?", username, role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if d.EnforcePassword && !utils.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// ByUsername returns the user or ErrNotFound.
func (d *Directory) ByUsername(username string) (*models.User, error) {
	var user models.User
	err := d.DB.First(&user, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

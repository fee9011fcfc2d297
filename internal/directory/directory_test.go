package directory

import (
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labshare/server/internal/models"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupDirectory(t *testing.T, enforcePassword bool) *Directory {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed opening database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("failed migrating: %v", err)
	}

	return New(db, enforcePassword)
}

func registerDemo(t *testing.T, dir *Directory, username string, role models.UserRole) *models.User {
	t.Helper()

	user, err := dir.Register(Candidate{
		Username: username,
		Email:    username + "@example.com",
		Phone:    "+1 (555) 123-4567",
		Password: "demo1234",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("failed registering %s: %v", username, err)
	}
	return user
}

func TestRegister(t *testing.T) {
	t.Run("stores a hashed password", func(t *testing.T) {
		dir := setupDirectory(t, false)
		user := registerDemo(t, dir, "dr_smith", models.UserRoleDoctor)

		if user.PasswordHash == "" || user.PasswordHash == "demo1234" {
			t.Error("password must be stored hashed")
		}
		if user.ID.String() == "00000000-0000-0000-0000-000000000000" {
			t.Error("expected a generated id")
		}
	})

	t.Run("duplicate username leaves the directory unchanged", func(t *testing.T) {
		dir := setupDirectory(t, false)
		registerDemo(t, dir, "dr_smith", models.UserRoleDoctor)

		_, err := dir.Register(Candidate{
			Username: "dr_smith",
			Email:    "other@example.com",
			Phone:    "+1 (555) 234-5678",
			Password: "other999",
			Role:     models.UserRolePatient,
		})
		if !errors.Is(err, ErrDuplicateUsername) {
			t.Fatalf("expected ErrDuplicateUsername, got %v", err)
		}

		var count int64
		if err := dir.DB.Model(&models.User{}).Count(&count).Error; err != nil {
			t.Fatalf("failed counting users: %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 user, got %d", count)
		}
	})
}

func TestAuthenticate(t *testing.T) {
	t.Run("matches username and exact role", func(t *testing.T) {
		dir := setupDirectory(t, false)
		registerDemo(t, dir, "patient_jane", models.UserRolePatient)

		user, err := dir.Authenticate("patient_jane", models.UserRolePatient, "demo1234")
		if err != nil {
			t.Fatalf("expected login to succeed, got %v", err)
		}
		if user.Username != "patient_jane" {
			t.Errorf("unexpected user %s", user.Username)
		}
	})

	t.Run("role mismatch is not found", func(t *testing.T) {
		dir := setupDirectory(t, false)
		registerDemo(t, dir, "patient_jane", models.UserRolePatient)

		_, err := dir.Authenticate("patient_jane", models.UserRoleDoctor, "demo1234")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("empty password is always rejected", func(t *testing.T) {
		dir := setupDirectory(t, false)
		registerDemo(t, dir, "patient_jane", models.UserRolePatient)

		_, err := dir.Authenticate("patient_jane", models.UserRolePatient, "")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("wrong password passes in demo mode", func(t *testing.T) {
		dir := setupDirectory(t, false)
		registerDemo(t, dir, "patient_jane", models.UserRolePatient)

		if _, err := dir.Authenticate("patient_jane", models.UserRolePatient, "wrong"); err != nil {
			t.Fatalf("demo mode must accept any non-empty password, got %v", err)
		}
	})

	t.Run("wrong password fails when enforcement is on", func(t *testing.T) {
		dir := setupDirectory(t, true)
		registerDemo(t, dir, "patient_jane", models.UserRolePatient)

		_, err := dir.Authenticate("patient_jane", models.UserRolePatient, "wrong")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}

		if _, err := dir.Authenticate("patient_jane", models.UserRolePatient, "demo1234"); err != nil {
			t.Fatalf("expected the real password to pass, got %v", err)
		}
	})
}

func TestByUsername(t *testing.T) {
	dir := setupDirectory(t, false)
	registerDemo(t, dir, "dr_smith", models.UserRoleDoctor)

	if _, err := dir.ByUsername("dr_smith"); err != nil {
		t.Fatalf("expected lookup to succeed, got %v", err)
	}

	_, err := dir.ByUsername("ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

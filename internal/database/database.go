package database

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/labshare/server/internal/config"
	"github.com/labshare/server/internal/models"
	"github.com/labshare/server/pkg/utils"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(cfg config.DBConfig) (*gorm.DB, error) {
	dialector, err := openDialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	if err := seedDemoUsers(db); err != nil {
		return nil, err
	}

	return db, nil
}

func openDialector(cfg config.DBConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "sqlite":
		return sqlite.Open(cfg.Path), nil
	case "postgres":
		dsn := fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host,
			cfg.Port,
			cfg.User,
			cfg.Password,
			cfg.Name,
			cfg.SSLMode,
		)
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.FileRecord{},
		&models.FileRecipient{},
		&models.Notification{},
		&models.AuditLog{},
	)
}

// seedDemoUsers populates an empty directory with the demo accounts so a fresh
// instance is immediately usable from each dashboard.
func seedDemoUsers(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := utils.HashPassword("demo1234")
	if err != nil {
		return err
	}

	seed := []models.User{
		{Username: "researcher1", Email: "researcher@lab.com", Phone: "+1 (555) 123-4567", Role: models.UserRoleResearcher},
		{Username: "dr_smith", Email: "smith@hospital.com", Phone: "+1 (555) 234-5678", Role: models.UserRoleDoctor},
		{Username: "patient_jane", Email: "jane@email.com", Phone: "+1 (555) 345-6789", Role: models.UserRolePatient},
		{Username: "dr_johnson", Email: "johnson@clinic.com", Phone: "+1 (555) 456-7890", Role: models.UserRoleDoctor},
		{Username: "patient_john", Email: "john@email.com", Phone: "+1 (555) 567-8901", Role: models.UserRolePatient},
	}

	for i := range seed {
		seed[i].PasswordHash = hash
		if err := db.Create(&seed[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

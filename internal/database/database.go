package database

import (
	"strings"

	"github.com/arnold/studytrack-api/internal/config"
	"github.com/arnold/studytrack-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models lists every table owned by the service, parents first.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Round{},
		&models.Mission{},
		&models.Topic{},
		&models.Progress{},
		&models.Attachment{},
		&models.Comment{},
	}
}

func Connect(cfg *config.Config) (*gorm.DB, error) {
	level := logger.Info
	if cfg.Env != "dev" {
		level = logger.Warn
	}
	return Open(cfg.DatabaseURL, logger.Default.LogMode(level))
}

// Open picks PostgreSQL when the URL starts with postgres, otherwise SQLite.
func Open(url string, log logger.Interface) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(url, "postgres") {
		dialector = postgres.Open(url)
	} else {
		dialector = sqlite.Open(url)
	}

	// Relations are resolved by the store; no FK constraints are declared.
	return gorm.Open(dialector, &gorm.Config{
		Logger:                                   log,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

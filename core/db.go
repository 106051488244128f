package core

import (
	"annualreports/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitDB opens the database and migrates the schema.
func InitDB(cfg DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		// Surfaces unique violations as gorm.ErrDuplicatedKey.
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&models.Company{},
		&models.CompanyProfile{},
		&models.Report{},
	)
	if err != nil {
		return nil, err
	}

	if err := models.CreateKeyIndexes(db); err != nil {
		return nil, err
	}

	return db, nil
}

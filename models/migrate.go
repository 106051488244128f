package models

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Keys are compared case-insensitively everywhere, so their unique indexes
// are built on the lowered columns.
var keyIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_report_key_ci ON report ((LOWER(exchange)), (LOWER(ticker)), year)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_comp_name_key_ci ON comp_name ((LOWER(ticker)), (LOWER(exchange)))`,
}

// reportKeyColumns is the conflict target matching idx_report_key_ci.
var reportKeyColumns = []clause.Column{
	{Name: "(LOWER(exchange))", Raw: true},
	{Name: "(LOWER(ticker))", Raw: true},
	{Name: "year"},
}

// CreateKeyIndexes adds the unique indexes AutoMigrate cannot express.
func CreateKeyIndexes(db *gorm.DB) error {
	for _, stmt := range keyIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

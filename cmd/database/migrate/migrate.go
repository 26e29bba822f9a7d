package migration

import (
	"HerbPass/entities"
	"fmt"

	"gorm.io/gorm"
)

// Migrate creates the batch root table before the two ledger tables that
// reference it.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&entities.Batch{}); err != nil {
		return fmt.Errorf("migrate farmer batch table: %w", err)
	}
	if err := db.AutoMigrate(&entities.LabReport{}); err != nil {
		return fmt.Errorf("migrate lab report table: %w", err)
	}
	if err := db.AutoMigrate(&entities.PharmaStatus{}); err != nil {
		return fmt.Errorf("migrate pharma status table: %w", err)
	}
	return nil
}

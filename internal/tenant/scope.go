package tenant

import (
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Active returns a GORM scope that keeps only rows with status=active on the
// given table.
func Active(table string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(table+".status = ?", models.StatusActive)
	}
}

// ForOrganization returns a GORM scope that filters by organization_id.
func ForOrganization(organizationID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("organization_id = ?", organizationID)
	}
}

// ForList returns a GORM scope that filters by list_id.
func ForList(listID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("list_id = ?", listID)
	}
}

package model

import "gorm.io/gorm"

// Active limits a query to rows that have not been soft-deleted.
// Every listing goes through it; lookups by id do not.
func Active(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true)
}

package postgres

import (
	"kargo/internal/adapters/out/postgres/locationrepo"
	"kargo/internal/adapters/out/postgres/orderrepo"

	"gorm.io/gorm"
)

// Models lists every table owned by the service.
func Models() []any {
	return []any{
		&orderrepo.OrderDTO{},
		&orderrepo.StatusEventDTO{},
		&locationrepo.LatestLocationDTO{},
		&locationrepo.LocationHistoryDTO{},
	}
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

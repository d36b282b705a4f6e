package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// createConnectionsTable creates the discovery table.
func createConnectionsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "001_create_connections",
		Migrate: func(tx *gorm.DB) error {
			return tx.Exec(`
				CREATE TABLE IF NOT EXISTS connections (
					key VARCHAR(200) PRIMARY KEY,
					uri VARCHAR(1000),
					host VARCHAR(255),
					port INTEGER DEFAULT 0,
					created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,

					-- A connection is either a uri or a host
					CONSTRAINT chk_connections_endpoint CHECK (uri IS NOT NULL OR host IS NOT NULL)
				);
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec("DROP TABLE IF EXISTS connections;").Error
		},
	}
}

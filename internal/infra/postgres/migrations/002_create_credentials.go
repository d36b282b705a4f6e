package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// createCredentialsTable creates the credential store table.
func createCredentialsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "002_create_credentials",
		Migrate: func(tx *gorm.DB) error {
			return tx.Exec(`
				CREATE TABLE IF NOT EXISTS credentials (
					key VARCHAR(200) PRIMARY KEY,
					username VARCHAR(255),
					password TEXT NOT NULL,
					created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
				);
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec("DROP TABLE IF EXISTS credentials;").Error
		},
	}
}

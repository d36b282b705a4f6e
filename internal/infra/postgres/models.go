package postgres

import (
	"time"

	"cachelock-service/pkg/connection"
)

// ConnectionModel is the GORM model for the connections table.
// Empty strings are stored as NULL.
type ConnectionModel struct {
	Key  string  `gorm:"type:varchar(200);primaryKey"`
	URI  *string `gorm:"type:varchar(1000)"`
	Host *string `gorm:"type:varchar(255)"`
	Port int     `gorm:"default:0"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for ConnectionModel.
func (ConnectionModel) TableName() string {
	return "connections"
}

// ToRecord converts ConnectionModel to a connection record.
func (m *ConnectionModel) ToRecord() *connection.ConnectionRecord {
	return &connection.ConnectionRecord{
		URI:  deref(m.URI),
		Host: deref(m.Host),
		Port: m.Port,
	}
}

// FromConnectionRecord converts a connection record to ConnectionModel.
func FromConnectionRecord(key string, r connection.ConnectionRecord) *ConnectionModel {
	return &ConnectionModel{
		Key:  key,
		URI:  nullable(r.URI),
		Host: nullable(r.Host),
		Port: r.Port,
	}
}

// CredentialModel is the GORM model for the credentials table.
type CredentialModel struct {
	Key      string  `gorm:"type:varchar(200);primaryKey"`
	Username *string `gorm:"type:varchar(255)"`
	Password string  `gorm:"type:text;not null"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for CredentialModel.
func (CredentialModel) TableName() string {
	return "credentials"
}

// ToRecord converts CredentialModel to a credential record.
func (m *CredentialModel) ToRecord() *connection.CredentialRecord {
	return &connection.CredentialRecord{
		Username: deref(m.Username),
		Password: m.Password,
	}
}

// FromCredentialRecord converts a credential record to CredentialModel.
func FromCredentialRecord(key string, r connection.CredentialRecord) *CredentialModel {
	return &CredentialModel{
		Key:      key,
		Username: nullable(r.Username),
		Password: r.Password,
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

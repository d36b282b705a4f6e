package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cachelock-service/pkg/connection"
)

var (
	_ connection.DiscoveryService = (*Registry)(nil)
	_ connection.CredentialStore  = (*Registry)(nil)
)

// Registry implements connection.DiscoveryService and
// connection.CredentialStore using PostgreSQL.
type Registry struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewRegistry creates a new PostgreSQL registry.
func NewRegistry(db *gorm.DB, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Registry{db: db, logger: logger}
}

// ResolveOne returns the connection registered under key, or nil.
func (r *Registry) ResolveOne(ctx context.Context, traceID, key string) (*connection.ConnectionRecord, error) {
	var model ConnectionModel
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		r.logger.Debug("connection not registered",
			zap.String("trace_id", traceID),
			zap.String("key", key),
		)

		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting connection %q: %w", key, err)
	}

	return model.ToRecord(), nil
}

// Lookup returns the credential registered under key, or nil.
func (r *Registry) Lookup(ctx context.Context, traceID, key string) (*connection.CredentialRecord, error) {
	var model CredentialModel
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		r.logger.Debug("credential not registered",
			zap.String("trace_id", traceID),
			zap.String("key", key),
		)

		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting credential %q: %w", key, err)
	}

	return model.ToRecord(), nil
}

// UpsertConnection creates or updates the connection for key.
func (r *Registry) UpsertConnection(ctx context.Context, key string, record connection.ConnectionRecord) error {
	if record.IsEmpty() {
		return fmt.Errorf("connection %q has no endpoint", key)
	}
	model := FromConnectionRecord(key, record)
	model.UpdatedAt = time.Now().UTC()

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"uri", "host", "port", "updated_at"}),
	}).Create(model).Error
	if err != nil {
		return fmt.Errorf("upserting connection %q: %w", key, err)
	}

	return nil
}

// UpsertCredential creates or updates the credential for key.
func (r *Registry) UpsertCredential(ctx context.Context, key string, record connection.CredentialRecord) error {
	model := FromCredentialRecord(key, record)
	model.UpdatedAt = time.Now().UTC()

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "password", "updated_at"}),
	}).Create(model).Error
	if err != nil {
		return fmt.Errorf("upserting credential %q: %w", key, err)
	}

	return nil
}

// DeleteConnection removes the connection for key.
func (r *Registry) DeleteConnection(ctx context.Context, key string) error {
	if err := r.db.WithContext(ctx).Delete(&ConnectionModel{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("deleting connection %q: %w", key, err)
	}

	return nil
}

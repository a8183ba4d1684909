package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StorageEntryModel is one stored key within a namespace
type StorageEntryModel struct {
	Namespace string    `gorm:"primaryKey;type:varchar(64)"`
	Key       string    `gorm:"column:entry_key;primaryKey;type:varchar(128)"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StorageEntryModel) TableName() string {
	return "storage_entries"
}

// SQLStorage keeps values in a relational table through GORM. Namespaces
// let several mirrors share one table.
type SQLStorage struct {
	db        *gorm.DB
	namespace string
	closer    func() error
}

// NewSQLStorage wraps db. The caller keeps ownership of the connection.
func NewSQLStorage(db *gorm.DB, namespace string) *SQLStorage {
	return &SQLStorage{db: db, namespace: namespace}
}

// EnsureSchema creates the entries table when it does not exist
func (s *SQLStorage) EnsureSchema(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&StorageEntryModel{}); err != nil {
		return fmt.Errorf("failed to create storage table: %w", err)
	}
	return nil
}

// Get implements Storage
func (s *SQLStorage) Get(ctx context.Context, key string) (string, bool, error) {
	var m StorageEntryModel
	err := s.db.WithContext(ctx).
		Where("namespace = ? AND entry_key = ?", s.namespace, key).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return m.Value, true, nil
}

// Set implements Storage
func (s *SQLStorage) Set(ctx context.Context, key, value string) error {
	m := StorageEntryModel{
		Namespace: s.namespace,
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}, {Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&m).Error
	if err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

// Remove implements Storage
func (s *SQLStorage) Remove(ctx context.Context, key string) error {
	err := s.db.WithContext(ctx).
		Where("namespace = ? AND entry_key = ?", s.namespace, key).
		Delete(&StorageEntryModel{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove %q: %w", key, err)
	}
	return nil
}

// Clear removes every key in the namespace
func (s *SQLStorage) Clear(ctx context.Context) error {
	err := s.db.WithContext(ctx).
		Where("namespace = ?", s.namespace).
		Delete(&StorageEntryModel{}).Error
	if err != nil {
		return fmt.Errorf("failed to clear namespace %q: %w", s.namespace, err)
	}
	return nil
}

// Close releases the connection when the storage opened it itself
func (s *SQLStorage) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

var _ Storage = (*SQLStorage)(nil)

package persistence

import (
	"context"
	"fmt"

	"github.com/contactdesk/backend/internal/domain/message"
	"github.com/contactdesk/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// DefaultRecentMessages is the list size used when the caller passes no limit
const DefaultRecentMessages = 50

// GormMessageRepository implements message.Repository using GORM
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a new GormMessageRepository
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

// Create inserts the message and fills in the stored id and timestamp
func (r *GormMessageRepository) Create(ctx context.Context, m *message.Message) error {
	var model models.MessageModel
	err := r.db.WithContext(ctx).
		Raw(`INSERT INTO messages (name, message) VALUES (?, ?) RETURNING id, name, message, created_at`, m.Name, m.Body).
		Scan(&model).Error
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	*m = *model.ToDomain()
	return nil
}

// ListRecent returns up to limit messages, newest first
func (r *GormMessageRepository) ListRecent(ctx context.Context, limit int) ([]message.Message, error) {
	if limit <= 0 {
		limit = DefaultRecentMessages
	}
	var rows []models.MessageModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	out := make([]message.Message, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}
	return out, nil
}

var _ message.Repository = (*GormMessageRepository)(nil)

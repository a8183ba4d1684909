package persistence

import (
	"context"
	"errors"

	"github.com/contactdesk/backend/internal/domain/customer"
	"github.com/contactdesk/backend/internal/domain/shared"
	"github.com/contactdesk/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCustomerRepository implements customer.Repository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// List returns every customer in insertion order
func (r *GormCustomerRepository) List(ctx context.Context) ([]customer.Customer, error) {
	var rows []models.CustomerModel
	if err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]customer.Customer, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}
	return out, nil
}

// Get finds a customer by ID
func (r *GormCustomerRepository) Get(ctx context.Context, id customer.ID) (*customer.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id.String()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts a customer. The ID must already be assigned.
func (r *GormCustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	if c.ID.IsZero() {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "customer id is required")
	}
	return r.db.WithContext(ctx).Create(models.CustomerModelFromDomain(c)).Error
}

// Update overwrites the editable fields of an existing customer
func (r *GormCustomerRepository) Update(ctx context.Context, c *customer.Customer) error {
	result := r.db.WithContext(ctx).
		Model(&models.CustomerModel{}).
		Where("id = ?", c.ID.String()).
		Updates(map[string]any{
			"name":    c.Name,
			"email":   c.Email,
			"phone":   c.Phone,
			"address": string(c.Address),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a customer by ID
func (r *GormCustomerRepository) Delete(ctx context.Context, id customer.ID) error {
	result := r.db.WithContext(ctx).Delete(&models.CustomerModel{}, "id = ?", id.String())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ customer.Repository = (*GormCustomerRepository)(nil)

package persistence

import (
	"context"
	"fmt"

	"github.com/contactdesk/backend/internal/domain/contact"
	"github.com/contactdesk/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormContactRepository implements contact.Repository using GORM
type GormContactRepository struct {
	db *gorm.DB
}

// NewGormContactRepository creates a new GormContactRepository
func NewGormContactRepository(db *gorm.DB) *GormContactRepository {
	return &GormContactRepository{db: db}
}

// Create inserts the submission and sets its id and submission time
func (r *GormContactRepository) Create(ctx context.Context, s *contact.Submission) error {
	model := models.ContactSubmissionModelFromDomain(s)
	var out models.ContactSubmissionModel
	err := r.db.WithContext(ctx).
		Raw(`INSERT INTO contact_submissions (name, email, job_title, phone_number, company_name, message)
VALUES (?, ?, ?, ?, ?, ?) RETURNING id, submitted_at`,
			model.Name, model.Email, model.JobTitle, model.PhoneNumber, model.CompanyName, model.Message).
		Scan(&out).Error
	if err != nil {
		return fmt.Errorf("insert contact submission: %w", err)
	}
	s.ID = out.ID
	s.SubmittedAt = out.SubmittedAt
	return nil
}

var _ contact.Repository = (*GormContactRepository)(nil)

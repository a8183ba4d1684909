package models

import (
	"time"

	"github.com/contactdesk/backend/internal/domain/contact"
)

// ContactSubmissionModel is the persistence model for a contact submission.
// Optional fields are stored as NULL when absent.
type ContactSubmissionModel struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	Name        string    `gorm:"type:varchar(255);not null"`
	Email       string    `gorm:"type:varchar(255);not null;index"`
	JobTitle    *string   `gorm:"type:varchar(255)"`
	PhoneNumber *string   `gorm:"type:varchar(50)"`
	CompanyName *string   `gorm:"type:varchar(255)"`
	Message     string    `gorm:"type:text;not null"`
	SubmittedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index"`
}

// TableName returns the table name for GORM
func (ContactSubmissionModel) TableName() string {
	return "contact_submissions"
}

// ContactSubmissionModelFromDomain converts a domain submission
func ContactSubmissionModelFromDomain(s *contact.Submission) *ContactSubmissionModel {
	return &ContactSubmissionModel{
		ID:          s.ID,
		Name:        s.Name,
		Email:       s.Email,
		JobTitle:    s.JobTitle,
		PhoneNumber: s.PhoneNumber,
		CompanyName: s.CompanyName,
		Message:     s.Message,
		SubmittedAt: s.SubmittedAt,
	}
}

// Package contact accepts contact form submissions.
package contact

import (
	"context"
	"errors"

	"github.com/contactdesk/backend/internal/domain/contact"
	"github.com/contactdesk/backend/internal/domain/shared"
	"github.com/contactdesk/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ThankYouMessage is returned for every accepted submission
const ThankYouMessage = "Thank you! We'll be in touch soon."

// ErrSubmissionFailed is returned when an accepted submission could not be stored
var ErrSubmissionFailed = shared.NewDomainError("INTERNAL_ERROR", "Unable to process request. Please try again.")

// Result is the outcome of an accepted submission
type Result struct {
	// ID is zero when no repository is configured
	ID      int64
	Message string
}

// Service validates submissions and stores them when a repository is set
type Service struct {
	repo   contact.Repository
	logger *zap.Logger
}

// NewService creates a Service. repo may be nil, in which case accepted
// submissions are only logged.
func NewService(repo contact.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

// Submit validates a decoded JSON payload. Validation failures are returned
// as shared.ErrValidation domain errors carrying the client message.
func (s *Service) Submit(ctx context.Context, payload any) (*Result, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "contact", "submit",
		telemetry.SpanAttrStored, s.repo != nil)
	defer span.End()

	sub, err := contact.Parse(payload)
	if err != nil {
		return nil, err
	}

	if s.repo != nil {
		if err := s.repo.Create(ctx, sub); err != nil {
			telemetry.RecordError(span, err)
			s.logger.Error("Failed to store contact submission", zap.Error(err))
			return nil, errors.Join(ErrSubmissionFailed, err)
		}
		telemetry.SetAttributes(span, telemetry.SpanAttrSubmissionID, sub.ID)
	}

	s.logger.Info("Contact submission accepted",
		zap.Int64("id", sub.ID),
		zap.Bool("stored", s.repo != nil),
	)
	return &Result{ID: sub.ID, Message: ThankYouMessage}, nil
}

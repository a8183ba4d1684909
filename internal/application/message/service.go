// Package message creates and lists guestbook messages.
package message

import (
	"context"
	"errors"

	"github.com/contactdesk/backend/internal/domain/message"
	"github.com/contactdesk/backend/internal/domain/shared"
	"github.com/contactdesk/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// RecentLimit is the number of messages listed by default
const RecentLimit = 50

// ErrCreateFailed is returned when a valid message could not be stored
var ErrCreateFailed = shared.NewDomainError("INTERNAL_ERROR", "Failed to create message. Please try again.")

// ErrListFailed is returned when messages could not be read
var ErrListFailed = shared.NewDomainError("INTERNAL_ERROR", "Failed to load messages. Please try again.")

// Service handles message operations
type Service struct {
	repo   message.Repository
	logger *zap.Logger
}

// NewService creates a new Service
func NewService(repo message.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

// Create validates and stores a message, returning the stored row
func (s *Service) Create(ctx context.Context, name, body string) (*message.Message, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "message", "create")
	defer span.End()

	m, err := message.New(name, body)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, m); err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Failed to create message", zap.Error(err))
		return nil, errors.Join(ErrCreateFailed, err)
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrMessageID, m.ID)
	return m, nil
}

// ListRecent returns the newest messages first
func (s *Service) ListRecent(ctx context.Context) ([]message.Message, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "message", "list_recent")
	defer span.End()

	list, err := s.repo.ListRecent(ctx, RecentLimit)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Failed to list messages", zap.Error(err))
		return nil, errors.Join(ErrListFailed, err)
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrCount, len(list))
	return list, nil
}

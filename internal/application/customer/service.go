// Package customer serves the customer collection that the customer manager
// can point at instead of an external API.
package customer

import (
	"context"

	"github.com/contactdesk/backend/internal/domain/customer"
	"github.com/contactdesk/backend/internal/domain/shared"
	"github.com/contactdesk/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// ValidationError carries every field message of a rejected form
type ValidationError struct {
	Fields map[customer.Field]string
}

// Error implements error
func (e *ValidationError) Error() string {
	return shared.ErrValidation.Message
}

// Unwrap lets errors.Is match shared.ErrValidation
func (e *ValidationError) Unwrap() error {
	return shared.ErrValidation
}

// Service handles customer CRUD
type Service struct {
	repo  customer.Repository
	newID func() customer.ID
}

// NewService creates a Service that assigns UUID identifiers
func NewService(repo customer.Repository) *Service {
	return &Service{
		repo:  repo,
		newID: func() customer.ID { return customer.ID(uuid.NewString()) },
	}
}

// List returns every customer
func (s *Service) List(ctx context.Context) ([]customer.Customer, error) {
	return s.repo.List(ctx)
}

// Get returns one customer
func (s *Service) Get(ctx context.Context, id customer.ID) (*customer.Customer, error) {
	return s.repo.Get(ctx, id)
}

// Create validates the form and stores a new record under a fresh id
func (s *Service) Create(ctx context.Context, form customer.Form) (*customer.Customer, error) {
	if err := validate(form); err != nil {
		return nil, err
	}
	c := form.ToCustomer(s.newID())
	ctx, span := telemetry.StartServiceSpan(ctx, "customer", "create", telemetry.SpanAttrCustomerID, c.ID.String())
	defer span.End()

	if err := s.repo.Create(ctx, &c); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return &c, nil
}

// Update validates the form and replaces the record's fields
func (s *Service) Update(ctx context.Context, id customer.ID, form customer.Form) (*customer.Customer, error) {
	if err := validate(form); err != nil {
		return nil, err
	}
	c := form.ToCustomer(id)
	ctx, span := telemetry.StartServiceSpan(ctx, "customer", "update", telemetry.SpanAttrCustomerID, id.String())
	defer span.End()

	if err := s.repo.Update(ctx, &c); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return &c, nil
}

// Delete removes a record
func (s *Service) Delete(ctx context.Context, id customer.ID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "customer", "delete", telemetry.SpanAttrCustomerID, id.String())
	defer span.End()

	if err := s.repo.Delete(ctx, id); err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	return nil
}

func validate(form customer.Form) error {
	result := customer.ValidateForm(form)
	if result.Valid {
		return nil
	}
	return &ValidationError{Fields: result.Errors}
}

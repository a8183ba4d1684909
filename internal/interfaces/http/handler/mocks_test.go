package handler

import (
	"context"

	contactapp "github.com/contactdesk/backend/internal/application/contact"
	"github.com/contactdesk/backend/internal/domain/customer"
	"github.com/contactdesk/backend/internal/domain/message"
	"github.com/stretchr/testify/mock"
)

type MockContactSubmitter struct {
	mock.Mock
}

func (m *MockContactSubmitter) Submit(ctx context.Context, payload any) (*contactapp.Result, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contactapp.Result), args.Error(1)
}

type MockMessageService struct {
	mock.Mock
}

func (m *MockMessageService) Create(ctx context.Context, name, body string) (*message.Message, error) {
	args := m.Called(ctx, name, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*message.Message), args.Error(1)
}

func (m *MockMessageService) ListRecent(ctx context.Context) ([]message.Message, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]message.Message), args.Error(1)
}

type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) List(ctx context.Context) ([]customer.Customer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]customer.Customer), args.Error(1)
}

func (m *MockCustomerService) Get(ctx context.Context, id customer.ID) (*customer.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerService) Create(ctx context.Context, form customer.Form) (*customer.Customer, error) {
	args := m.Called(ctx, form)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerService) Update(ctx context.Context, id customer.ID, form customer.Form) (*customer.Customer, error) {
	args := m.Called(ctx, id, form)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerService) Delete(ctx context.Context, id customer.ID) error {
	return m.Called(ctx, id).Error(0)
}

type recorderStub struct {
	calls []string
}

func (r *recorderStub) RecordSubmission(form, outcome string) {
	r.calls = append(r.calls, form+":"+outcome)
}

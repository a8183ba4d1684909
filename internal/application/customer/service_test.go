package customer

import (
	"context"
	"testing"

	"github.com/contactdesk/backend/internal/domain/customer"
	"github.com/contactdesk/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) List(ctx context.Context) ([]customer.Customer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]customer.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Get(ctx context.Context, id customer.ID) (*customer.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCustomerRepository) Update(ctx context.Context, c *customer.Customer) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, id customer.ID) error {
	return m.Called(ctx, id).Error(0)
}

var validForm = customer.Form{
	Name:    " Dana Scully ",
	Email:   "dana@fbi.gov",
	Phone:   "(202) 555-0147",
	Address: "935 Pennsylvania Avenue",
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns an id and trims values", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(c *customer.Customer) bool {
			return c.ID == "fixed-id" && c.Name == "Dana Scully"
		})).Return(nil)
		svc := NewService(repo)
		svc.newID = func() customer.ID { return "fixed-id" }

		c, err := svc.Create(ctx, validForm)
		require.NoError(t, err)
		assert.Equal(t, customer.ID("fixed-id"), c.ID)
		assert.Equal(t, customer.Address("935 Pennsylvania Avenue"), c.Address)
		repo.AssertExpectations(t)
	})

	t.Run("default ids are uuids", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)

		c, err := NewService(repo).Create(ctx, validForm)
		require.NoError(t, err)
		assert.Len(t, c.ID.String(), 36)
	})

	t.Run("reports every invalid field", func(t *testing.T) {
		repo := new(MockCustomerRepository)

		_, err := NewService(repo).Create(ctx, customer.Form{Email: "nope"})
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrValidation)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Len(t, verr.Fields, 4)
		assert.Equal(t, "Please enter a valid email address", verr.Fields[customer.FieldEmail])
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps the path id", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		repo.On("Update", mock.Anything, mock.MatchedBy(func(c *customer.Customer) bool {
			return c.ID == "7"
		})).Return(nil)

		c, err := NewService(repo).Update(ctx, "7", validForm)
		require.NoError(t, err)
		assert.Equal(t, customer.ID("7"), c.ID)
	})

	t.Run("passes through not found", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		repo.On("Update", mock.Anything, mock.Anything).Return(shared.ErrNotFound)

		_, err := NewService(repo).Update(ctx, "7", validForm)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestService_ListGetDelete(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCustomerRepository)
	repo.On("List", ctx).Return([]customer.Customer{{ID: "1"}}, nil)
	repo.On("Get", ctx, customer.ID("1")).Return(&customer.Customer{ID: "1"}, nil)
	repo.On("Delete", mock.Anything, customer.ID("1")).Return(nil)
	svc := NewService(repo)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	c, err := svc.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, customer.ID("1"), c.ID)

	assert.NoError(t, svc.Delete(ctx, "1"))
	repo.AssertExpectations(t)
}

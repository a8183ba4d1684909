package handler

import (
	"errors"
	"net/http"
	"testing"

	customerapp "github.com/contactdesk/backend/internal/application/customer"
	"github.com/contactdesk/backend/internal/domain/customer"
	"github.com/contactdesk/backend/internal/domain/shared"
	"github.com/contactdesk/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCustomerEngine(svc CustomerService) *gin.Engine {
	engine := newTestEngine()
	NewCustomerHandler(svc).Routes().RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func TestCustomerHandler_List(t *testing.T) {
	t.Run("bare array in store order", func(t *testing.T) {
		svc := new(MockCustomerService)
		svc.On("List", mock.Anything).Return([]customer.Customer{
			{ID: "1", Name: "Alice", Email: "alice@example.com", Phone: "5551234567"},
			{ID: "b-2", Name: "Bob", Email: "bob@example.com", Phone: "5557654321", Address: "12 Long Street"},
		}, nil)

		w := doJSON(newCustomerEngine(svc), http.MethodGet, "/api/v1/customers", "")

		assert.Equal(t, http.StatusOK, w.Code)
		list := decode[[]customer.Customer](t, w)
		require.Len(t, list, 2)
		assert.Equal(t, customer.ID("1"), list[0].ID)
		assert.Contains(t, w.Body.String(), `"id":1,`)
		assert.Equal(t, customer.Address("12 Long Street"), list[1].Address)
	})

	t.Run("nil list is an empty array", func(t *testing.T) {
		svc := new(MockCustomerService)
		svc.On("List", mock.Anything).Return(nil, nil)

		w := doJSON(newCustomerEngine(svc), http.MethodGet, "/api/v1/customers", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("store failure", func(t *testing.T) {
		svc := new(MockCustomerService)
		svc.On("List", mock.Anything).Return(nil, errors.New("db down"))

		w := doJSON(newCustomerEngine(svc), http.MethodGet, "/api/v1/customers", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, dto.ErrCodeInternal, decode[dto.Response](t, w).Error.Code)
	})
}

func TestCustomerHandler_Get(t *testing.T) {
	svc := new(MockCustomerService)
	svc.On("Get", mock.Anything, customer.ID("c-1")).
		Return(&customer.Customer{ID: "c-1", Name: "Alice"}, nil)
	svc.On("Get", mock.Anything, customer.ID("missing")).Return(nil, shared.ErrNotFound)
	engine := newCustomerEngine(svc)

	w := doJSON(engine, http.MethodGet, "/api/v1/customers/c-1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Alice", decode[customer.Customer](t, w).Name)

	w = doJSON(engine, http.MethodGet, "/api/v1/customers/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrCodeNotFound, decode[dto.Response](t, w).Error.Code)
}

func TestCustomerHandler_Create(t *testing.T) {
	t.Run("flattens a nested address and returns 201", func(t *testing.T) {
		svc := new(MockCustomerService)
		want := customer.Form{
			Name:    "Alice",
			Email:   "alice@example.com",
			Phone:   "5551234567",
			Address: "1 Main St, Springfield 12345",
		}
		svc.On("Create", mock.Anything, mock.MatchedBy(func(f customer.Form) bool {
			return f.Name == want.Name && f.Email == want.Email && f.Address != ""
		})).Return(&customer.Customer{ID: "new-id", Name: "Alice"}, nil)

		w := doJSON(newCustomerEngine(svc), http.MethodPost, "/api/v1/customers",
			`{"name":"Alice","email":"alice@example.com","phone":"5551234567",
			  "address":{"street":"1 Main St","city":"Springfield","zipcode":"12345"}}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, customer.ID("new-id"), decode[customer.Customer](t, w).ID)
		svc.AssertExpectations(t)
	})

	t.Run("validation errors are reported per field", func(t *testing.T) {
		svc := new(MockCustomerService)
		svc.On("Create", mock.Anything, mock.Anything).Return(nil, &customerapp.ValidationError{
			Fields: map[customer.Field]string{
				customer.FieldEmail: "Please enter a valid email address",
			},
		})

		w := doJSON(newCustomerEngine(svc), http.MethodPost, "/api/v1/customers", `{"name":"A","email":"nope"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode[dto.Response](t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "Please enter a valid email address", resp.Error.Fields["email"])
	})

	t.Run("unreadable body", func(t *testing.T) {
		svc := new(MockCustomerService)

		w := doJSON(newCustomerEngine(svc), http.MethodPost, "/api/v1/customers", `[1,2]`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestCustomerHandler_UpdateDelete(t *testing.T) {
	svc := new(MockCustomerService)
	svc.On("Update", mock.Anything, customer.ID("c-1"), mock.Anything).
		Return(&customer.Customer{ID: "c-1", Name: "Alicia"}, nil)
	svc.On("Update", mock.Anything, customer.ID("gone"), mock.Anything).Return(nil, shared.ErrNotFound)
	svc.On("Delete", mock.Anything, customer.ID("c-1")).Return(nil)
	svc.On("Delete", mock.Anything, customer.ID("gone")).Return(shared.ErrNotFound)
	engine := newCustomerEngine(svc)

	w := doJSON(engine, http.MethodPut, "/api/v1/customers/c-1", `{"name":"Alicia"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Alicia", decode[customer.Customer](t, w).Name)

	w = doJSON(engine, http.MethodPut, "/api/v1/customers/gone", `{"name":"Alicia"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(engine, http.MethodDelete, "/api/v1/customers/c-1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{}`, w.Body.String())

	w = doJSON(engine, http.MethodDelete, "/api/v1/customers/gone", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	svc.AssertExpectations(t)
}

package handler

import (
	"context"
	"errors"
	"net/http"

	customerapp "github.com/contactdesk/backend/internal/application/customer"
	"github.com/contactdesk/backend/internal/domain/customer"
	"github.com/contactdesk/backend/internal/domain/shared"
	"github.com/contactdesk/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
)

// CustomerService is the customer collection behind the handler
type CustomerService interface {
	List(ctx context.Context) ([]customer.Customer, error)
	Get(ctx context.Context, id customer.ID) (*customer.Customer, error)
	Create(ctx context.Context, form customer.Form) (*customer.Customer, error)
	Update(ctx context.Context, id customer.ID, form customer.Form) (*customer.Customer, error)
	Delete(ctx context.Context, id customer.ID) error
}

// CustomerHandler serves /api/v1/customers. Successful responses are bare
// records, the same shape as the external collection, so the customer
// manager can be pointed at this server unchanged. Failures use the
// versioned error envelope.
type CustomerHandler struct {
	BaseHandler
	svc CustomerService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(svc CustomerService) *CustomerHandler {
	return &CustomerHandler{svc: svc}
}

// List returns every customer
func (h *CustomerHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if list == nil {
		list = []customer.Customer{}
	}
	c.JSON(http.StatusOK, list)
}

// Get returns one customer
func (h *CustomerHandler) Get(c *gin.Context) {
	rec, err := h.svc.Get(c.Request.Context(), customer.ID(c.Param("id")))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Create validates the body and stores it under a new id
func (h *CustomerHandler) Create(c *gin.Context) {
	form, ok := h.bindForm(c)
	if !ok {
		return
	}
	rec, err := h.svc.Create(c.Request.Context(), form)
	if err != nil {
		h.handleWriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// Update replaces the fields of an existing customer
func (h *CustomerHandler) Update(c *gin.Context) {
	form, ok := h.bindForm(c)
	if !ok {
		return
	}
	rec, err := h.svc.Update(c.Request.Context(), customer.ID(c.Param("id")), form)
	if err != nil {
		h.handleWriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Delete removes a customer and answers with an empty object, as the
// external collection does
func (h *CustomerHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), customer.ID(c.Param("id"))); err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// bindForm accepts either the flat form or a full record; a nested address
// object is flattened by customer.Address.
func (h *CustomerHandler) bindForm(c *gin.Context) (customer.Form, bool) {
	var rec customer.Customer
	if err := c.ShouldBindJSON(&rec); err != nil {
		_ = c.Error(err)
		h.BadRequest(c, "Invalid request body")
		return customer.Form{}, false
	}
	return customer.FormFromCustomer(rec), true
}

func (h *CustomerHandler) handleWriteError(c *gin.Context, err error) {
	var verr *customerapp.ValidationError
	if errors.As(err, &verr) {
		fields := make(map[string]string, len(verr.Fields))
		for f, msg := range verr.Fields {
			fields[string(f)] = msg
		}
		h.ValidationError(c, fields)
		return
	}
	if errors.Is(err, shared.ErrNotFound) {
		h.NotFound(c, "Customer not found")
		return
	}
	h.HandleError(c, err)
}

// Routes declares the collection under /customers
func (h *CustomerHandler) Routes() *router.DomainGroup {
	return router.NewDomainGroup("customers", "/customers").
		GET("", h.List).
		POST("", h.Create).
		GET("/:id", h.Get).
		PUT("/:id", h.Update).
		DELETE("/:id", h.Delete)
}

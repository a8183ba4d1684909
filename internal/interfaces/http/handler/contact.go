package handler

import (
	"context"
	"errors"
	"net/http"

	contactapp "github.com/contactdesk/backend/internal/application/contact"
	"github.com/contactdesk/backend/internal/domain/shared"
	"github.com/contactdesk/backend/internal/infrastructure/logger"
	"github.com/contactdesk/backend/internal/interfaces/http/dto"
	"github.com/contactdesk/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContactSubmitter accepts a decoded contact form payload
type ContactSubmitter interface {
	Submit(ctx context.Context, payload any) (*contactapp.Result, error)
}

// ContactHandler serves POST /api/contact
type ContactHandler struct {
	svc     ContactSubmitter
	metrics middleware.SubmissionRecorder
}

// NewContactHandler creates a ContactHandler. A nil recorder counts nothing.
func NewContactHandler(svc ContactSubmitter, metrics middleware.SubmissionRecorder) *ContactHandler {
	if metrics == nil {
		metrics = middleware.NopRecorder{}
	}
	return &ContactHandler{svc: svc, metrics: metrics}
}

// ContactData is returned when the submission was stored
type ContactData struct {
	ID int64 `json:"id"`
}

// Submit validates a contact form submission.
// The body is decoded without a schema so field type errors can be reported
// per field; a body that is not JSON at all is a server error.
func (h *ContactHandler) Submit(c *gin.Context) {
	var payload any
	if err := c.ShouldBindJSON(&payload); err != nil {
		logger.GetGinLogger(c).Warn("Unreadable contact payload", zap.Error(err))
		h.fail(c, err)
		return
	}

	result, err := h.svc.Submit(c.Request.Context(), payload)
	if err != nil {
		if errors.Is(err, shared.ErrValidation) {
			h.metrics.RecordSubmission("contact", "rejected")
			c.JSON(http.StatusBadRequest, dto.FormRejected(err.Error()))
			return
		}
		h.fail(c, err)
		return
	}

	h.metrics.RecordSubmission("contact", "accepted")
	var data any
	if result.ID != 0 {
		data = ContactData{ID: result.ID}
	}
	c.JSON(http.StatusCreated, dto.FormAccepted(result.Message, data))
}

func (h *ContactHandler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	h.metrics.RecordSubmission("contact", "failed")
	c.JSON(http.StatusInternalServerError, dto.FormRejected(contactapp.ErrSubmissionFailed.Message))
}

// RegisterRoutes mounts the handler on the public /api group
func (h *ContactHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/contact", h.Submit)
}

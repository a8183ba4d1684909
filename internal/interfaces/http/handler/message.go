package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	messageapp "github.com/contactdesk/backend/internal/application/message"
	"github.com/contactdesk/backend/internal/domain/message"
	"github.com/contactdesk/backend/internal/domain/shared"
	"github.com/contactdesk/backend/internal/interfaces/http/dto"
	"github.com/contactdesk/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// MessageService creates and lists messages
type MessageService interface {
	Create(ctx context.Context, name, body string) (*message.Message, error)
	ListRecent(ctx context.Context) ([]message.Message, error)
}

// MessageHandler serves /api/messages
type MessageHandler struct {
	svc     MessageService
	metrics middleware.SubmissionRecorder
}

// NewMessageHandler creates a MessageHandler. A nil recorder counts nothing.
func NewMessageHandler(svc MessageService, metrics middleware.SubmissionRecorder) *MessageHandler {
	if metrics == nil {
		metrics = middleware.NopRecorder{}
	}
	return &MessageHandler{svc: svc, metrics: metrics}
}

// CreateMessageRequest is the body of POST /api/messages
type CreateMessageRequest struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// MessageResponse is one stored message
type MessageResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// MessageCreated is the body of a successful create
type MessageCreated struct {
	Success bool            `json:"success"`
	Data    MessageResponse `json:"data"`
}

// MessageList is the body of GET /api/messages
type MessageList struct {
	Success bool              `json:"success"`
	Data    []MessageResponse `json:"data"`
}

func toMessageResponse(m message.Message) MessageResponse {
	return MessageResponse{ID: m.ID, Name: m.Name, Message: m.Body, CreatedAt: m.CreatedAt}
}

// Create stores a message of at least five words
func (h *MessageHandler) Create(c *gin.Context) {
	var req CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, err, messageapp.ErrCreateFailed.Message)
		return
	}

	m, err := h.svc.Create(c.Request.Context(), req.Name, req.Message)
	if err != nil {
		if errors.Is(err, shared.ErrValidation) {
			h.metrics.RecordSubmission("message", "rejected")
			c.JSON(http.StatusBadRequest, dto.ErrorOnly{Error: err.Error()})
			return
		}
		h.fail(c, err, messageapp.ErrCreateFailed.Message)
		return
	}

	h.metrics.RecordSubmission("message", "accepted")
	c.JSON(http.StatusCreated, MessageCreated{Success: true, Data: toMessageResponse(*m)})
}

// List returns the most recent messages, newest first
func (h *MessageHandler) List(c *gin.Context) {
	list, err := h.svc.ListRecent(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, dto.ErrorOnly{Error: messageapp.ErrListFailed.Message})
		return
	}

	out := make([]MessageResponse, 0, len(list))
	for _, m := range list {
		out = append(out, toMessageResponse(m))
	}
	c.JSON(http.StatusOK, MessageList{Success: true, Data: out})
}

func (h *MessageHandler) fail(c *gin.Context, err error, msg string) {
	_ = c.Error(err)
	h.metrics.RecordSubmission("message", "failed")
	c.JSON(http.StatusInternalServerError, dto.ErrorOnly{Error: msg})
}

// RegisterRoutes mounts the handler on the public /api group
func (h *MessageHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/messages", h.Create)
	rg.GET("/messages", h.List)
}

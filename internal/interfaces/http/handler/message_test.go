package handler

import (
	"errors"
	"net/http"
	"testing"
	"time"

	messageapp "github.com/contactdesk/backend/internal/application/message"
	"github.com/contactdesk/backend/internal/domain/message"
	"github.com/contactdesk/backend/internal/domain/shared"
	"github.com/contactdesk/backend/internal/interfaces/http/dto"
	"github.com/contactdesk/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newMessageEngine(svc MessageService, rec middleware.SubmissionRecorder) *gin.Engine {
	engine := newTestEngine()
	NewMessageHandler(svc, rec).RegisterRoutes(engine.Group("/api"))
	return engine
}

func TestMessageHandler_Create(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	t.Run("returns the stored row", func(t *testing.T) {
		svc := new(MockMessageService)
		rec := &recorderStub{}
		svc.On("Create", mock.Anything, " Ada ", "one two three four five").
			Return(&message.Message{ID: 7, Name: "Ada", Body: "one two three four five", CreatedAt: created}, nil)

		w := doJSON(newMessageEngine(svc, rec), http.MethodPost, "/api/messages",
			`{"name":" Ada ","message":"one two three four five"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		resp := decode[MessageCreated](t, w)
		assert.True(t, resp.Success)
		assert.Equal(t, int64(7), resp.Data.ID)
		assert.Equal(t, "Ada", resp.Data.Name)
		assert.Equal(t, "one two three four five", resp.Data.Message)
		assert.True(t, created.Equal(resp.Data.CreatedAt))
		assert.Contains(t, w.Body.String(), `"createdAt"`)
		assert.Equal(t, []string{"message:accepted"}, rec.calls)
	})

	t.Run("validation failure is a bare error", func(t *testing.T) {
		svc := new(MockMessageService)
		svc.On("Create", mock.Anything, "Ada", "too short").
			Return(nil, shared.NewDomainError(shared.ErrValidation.Code, "Message must be at least 5 words (currently 2)"))

		w := doJSON(newMessageEngine(svc, &recorderStub{}), http.MethodPost, "/api/messages",
			`{"name":"Ada","message":"too short"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"Message must be at least 5 words (currently 2)"}`, w.Body.String())
	})

	t.Run("storage failure", func(t *testing.T) {
		svc := new(MockMessageService)
		rec := &recorderStub{}
		svc.On("Create", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.Join(messageapp.ErrCreateFailed, errors.New("connection reset")))

		w := doJSON(newMessageEngine(svc, rec), http.MethodPost, "/api/messages",
			`{"name":"Ada","message":"one two three four five"}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"Failed to create message. Please try again."}`, w.Body.String())
		assert.Equal(t, []string{"message:failed"}, rec.calls)
	})

	t.Run("non-string fields fail to bind", func(t *testing.T) {
		svc := new(MockMessageService)

		w := doJSON(newMessageEngine(svc, &recorderStub{}), http.MethodPost, "/api/messages",
			`{"name":12,"message":"one two three four five"}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Failed to create message. Please try again.", decode[dto.ErrorOnly](t, w).Error)
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestMessageHandler_List(t *testing.T) {
	t.Run("newest first as returned by the service", func(t *testing.T) {
		svc := new(MockMessageService)
		now := time.Now().UTC()
		svc.On("ListRecent", mock.Anything).Return([]message.Message{
			{ID: 2, Name: "Bea", Body: "second", CreatedAt: now},
			{ID: 1, Name: "Ada", Body: "first", CreatedAt: now.Add(-time.Minute)},
		}, nil)

		w := doJSON(newMessageEngine(svc, nil), http.MethodGet, "/api/messages", "")

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decode[MessageList](t, w)
		require.Len(t, resp.Data, 2)
		assert.Equal(t, int64(2), resp.Data[0].ID)
		assert.Equal(t, "first", resp.Data[1].Message)
	})

	t.Run("empty list is an empty array", func(t *testing.T) {
		svc := new(MockMessageService)
		svc.On("ListRecent", mock.Anything).Return([]message.Message{}, nil)

		w := doJSON(newMessageEngine(svc, nil), http.MethodGet, "/api/messages", "")

		assert.JSONEq(t, `{"success":true,"data":[]}`, w.Body.String())
	})

	t.Run("read failure", func(t *testing.T) {
		svc := new(MockMessageService)
		svc.On("ListRecent", mock.Anything).Return(nil, errors.Join(messageapp.ErrListFailed, errors.New("timeout")))

		w := doJSON(newMessageEngine(svc, nil), http.MethodGet, "/api/messages", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"Failed to load messages. Please try again."}`, w.Body.String())
	})
}

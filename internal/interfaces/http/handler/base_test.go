package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/contactdesk/backend/internal/domain/shared"
	"github.com/contactdesk/backend/internal/interfaces/http/dto"
	"github.com/contactdesk/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestEngine returns an engine with request ids, as the server runs
func newTestEngine() *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.RequestID())
	return engine
}

func doJSON(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestBaseHandler_Responses(t *testing.T) {
	h := &BaseHandler{}

	tests := []struct {
		name     string
		call     func(c *gin.Context)
		status   int
		wantCode string
	}{
		{"success", func(c *gin.Context) { h.Success(c, gin.H{"a": 1}) }, http.StatusOK, ""},
		{"bad request", func(c *gin.Context) { h.BadRequest(c, "bad") }, http.StatusBadRequest, dto.ErrCodeBadRequest},
		{"not found", func(c *gin.Context) { h.NotFound(c, "gone") }, http.StatusNotFound, dto.ErrCodeNotFound},
		{"internal", func(c *gin.Context) { h.InternalError(c, "boom") }, http.StatusInternalServerError, dto.ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine()
			engine.GET("/", tt.call)
			w := doJSON(engine, http.MethodGet, "/", "")

			assert.Equal(t, tt.status, w.Code)
			resp := decode[dto.Response](t, w)
			if tt.wantCode == "" {
				assert.True(t, resp.Success)
				assert.Nil(t, resp.Error)
				return
			}
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, w.Header().Get(middleware.RequestIDHeader), resp.Error.RequestID)
		})
	}
}

func TestBaseHandler_ValidationError(t *testing.T) {
	h := &BaseHandler{}
	engine := newTestEngine()
	engine.POST("/", func(c *gin.Context) {
		h.ValidationError(c, map[string]string{"email": "Please enter a valid email address"})
	})

	w := doJSON(engine, http.MethodPost, "/", "{}")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[dto.Response](t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "Please enter a valid email address", resp.Error.Fields["email"])
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		wantCode string
		wantMsg  string
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound, "Resource not found"},
		{"wrapped domain error", fmt.Errorf("lookup: %w", shared.NewDomainError("ALREADY_EXISTS", "taken")),
			http.StatusConflict, dto.ErrCodeAlreadyExists, "taken"},
		{"plain error", errors.New("disk on fire"), http.StatusInternalServerError, dto.ErrCodeInternal,
			"An unexpected error occurred"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			var recorded int
			engine := newTestEngine()
			engine.GET("/", func(c *gin.Context) {
				h.HandleError(c, tt.err)
				recorded = len(c.Errors)
			})

			w := doJSON(engine, http.MethodGet, "/", "")

			assert.Equal(t, tt.status, w.Code)
			resp := decode[dto.Response](t, w)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.wantMsg, resp.Error.Message)
			assert.Equal(t, 1, recorded)
		})
	}

	t.Run("nil error writes nothing", func(t *testing.T) {
		h := &BaseHandler{}
		engine := newTestEngine()
		engine.GET("/", func(c *gin.Context) {
			h.HandleError(c, nil)
			c.Status(http.StatusTeapot)
		})
		assert.Equal(t, http.StatusTeapot, doJSON(engine, http.MethodGet, "/", "").Code)
	})
}

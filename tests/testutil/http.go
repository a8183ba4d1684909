package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	customerapp "github.com/contactdesk/backend/internal/application/customer"
	"github.com/contactdesk/backend/internal/domain/customer"
	"github.com/contactdesk/backend/internal/infrastructure/persistence"
	"github.com/contactdesk/backend/internal/interfaces/http/handler"
	"github.com/contactdesk/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// DoJSON sends a request to h; a non-nil body is encoded as JSON
func DoJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			r = bytes.NewBufferString(b)
		default:
			data, err := json.Marshal(b)
			require.NoError(t, err, "Failed to marshal request body")
			r = bytes.NewReader(data)
		}
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// DecodeJSON decodes the recorded response body into T
func DecodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

// CustomerCollection is an in-process customer REST collection
type CustomerCollection struct {
	Server *httptest.Server
	Store  customer.Repository
}

// URL is the collection endpoint the customer manager is pointed at
func (c *CustomerCollection) URL() string {
	return c.Server.URL + "/customers"
}

// NewCustomerCollection serves the customer handler over store, or over an
// in-memory store holding seed when store is nil. The server is closed when
// the test ends.
func NewCustomerCollection(t *testing.T, store customer.Repository, seed ...customer.Customer) *CustomerCollection {
	t.Helper()

	if store == nil {
		store = persistence.NewMemoryCustomerStore(seed...)
	}
	engine := gin.New()
	engine.Use(middleware.RequestID())
	handler.NewCustomerHandler(customerapp.NewService(store)).Routes().RegisterRoutes(&engine.RouterGroup)

	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	return &CustomerCollection{Server: srv, Store: store}
}

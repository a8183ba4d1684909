package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/contactdesk/backend/internal/domain/customer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const collection = `[
  {"id":1,"name":"Leanne Graham","email":"Sincere@april.biz","phone":"1-770-736-8031",
   "address":{"street":"Kulas Light","suite":"Apt. 556","city":"Gwenborough","zipcode":"92998-3874"}},
  {"id":2,"name":"Ervin Howell","email":"Shanna@melissa.tv","phone":"010-692-6593"}
]`

func newCollection(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status == http.StatusOK {
			_, _ = w.Write([]byte(collection))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(append(args, "--log-output", "discard"))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestList(t *testing.T) {
	t.Chdir(t.TempDir())
	srv := newCollection(t, http.StatusOK)

	t.Run("json", func(t *testing.T) {
		out, err := run(t, "list", "--endpoint", srv.URL, "--backend", "memory", "--json")
		require.NoError(t, err)

		var list []customer.Customer
		require.NoError(t, json.Unmarshal([]byte(out), &list))
		require.Len(t, list, 2)
		assert.Equal(t, "Leanne Graham", list[0].Name)
		assert.Equal(t, customer.Address("Kulas Light, Apt. 556, Gwenborough 92998-3874"), list[0].Address)
	})

	t.Run("search and sort", func(t *testing.T) {
		out, err := run(t, "list", "--endpoint", srv.URL, "--backend", "memory",
			"--search", "Ervin", "--sort", "name-desc")
		require.NoError(t, err)
		assert.Contains(t, out, "Ervin Howell")
		assert.NotContains(t, out, "Leanne")
	})

	t.Run("unknown sort", func(t *testing.T) {
		_, err := run(t, "list", "--endpoint", srv.URL, "--sort", "phone-asc")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown sort")
	})
}

func TestList_ServerFailure(t *testing.T) {
	t.Chdir(t.TempDir())
	srv := newCollection(t, http.StatusInternalServerError)

	_, err := run(t, "list", "--endpoint", srv.URL, "--backend", "memory")
	require.Error(t, err)
	assert.Equal(t, "Failed to load customers", err.Error())
}

func TestInspect(t *testing.T) {
	t.Chdir(t.TempDir())
	srv := newCollection(t, http.StatusOK)
	storage := filepath.Join(t.TempDir(), "mirror.db")

	t.Run("memory backend starts empty", func(t *testing.T) {
		out, err := run(t, "inspect", "--backend", "memory")
		require.NoError(t, err)
		assert.Contains(t, out, "customers_cache is empty")
	})

	t.Run("sql backend keeps what list loaded", func(t *testing.T) {
		_, err := run(t, "list", "--endpoint", srv.URL, "--backend", "sql", "--storage", storage)
		require.NoError(t, err)

		out, err := run(t, "inspect", "--backend", "sql", "--storage", storage)
		require.NoError(t, err)
		assert.Contains(t, out, "Leanne Graham")
		assert.Contains(t, out, "Ervin Howell")
	})
}

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("get set remove", func(t *testing.T) {
		s := NewMemoryStorage()
		defer s.Close()

		_, ok, err := s.Get(ctx, "customers_cache")
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, s.Set(ctx, "customers_cache", "[]"))
		v, ok, err := s.Get(ctx, "customers_cache")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "[]", v)

		require.NoError(t, s.Remove(ctx, "customers_cache"))
		_, ok, _ = s.Get(ctx, "customers_cache")
		assert.False(t, ok)
	})

	t.Run("clear drops every key", func(t *testing.T) {
		s := NewMemoryStorage()
		defer s.Close()

		require.NoError(t, s.Set(ctx, "a", "1"))
		require.NoError(t, s.Set(ctx, "b", "2"))
		require.NoError(t, s.Clear(ctx))
		assert.Equal(t, 0, s.Len())
	})

	t.Run("session entries lapse after ttl", func(t *testing.T) {
		s := NewMemoryStorage(WithSessionTTL(20 * time.Millisecond))
		defer s.Close()

		require.NoError(t, s.Set(ctx, "customer_draft_form", "{}"))
		_, ok, _ := s.Get(ctx, "customer_draft_form")
		assert.True(t, ok)

		assert.Eventually(t, func() bool {
			_, ok, _ := s.Get(ctx, "customer_draft_form")
			return !ok
		}, time.Second, 5*time.Millisecond)
		assert.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		s := NewMemoryStorage(WithSessionTTL(time.Minute))
		assert.NoError(t, s.Close())
		assert.NoError(t, s.Close())
	})
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	defer s.Close()

	type prefs struct {
		SearchTerm string `json:"searchTerm"`
		SortBy     string `json:"sortBy"`
	}

	t.Run("round trip", func(t *testing.T) {
		require.NoError(t, SetJSON(ctx, s, "customer_search_prefs", prefs{SearchTerm: "Ali", SortBy: "name-asc"}))

		raw, _, _ := s.Get(ctx, "customer_search_prefs")
		assert.JSONEq(t, `{"searchTerm":"Ali","sortBy":"name-asc"}`, raw)

		got, ok, err := GetJSON[prefs](ctx, s, "customer_search_prefs")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "Ali", got.SearchTerm)
	})

	t.Run("missing key", func(t *testing.T) {
		_, ok, err := GetJSON[prefs](ctx, s, "nope")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("corrupt value is a parse error", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "broken", "{not json"))

		_, ok, err := GetJSON[prefs](ctx, s, "broken")
		assert.True(t, ok)
		var perr *ParseError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, "broken", perr.Key)
	})
}

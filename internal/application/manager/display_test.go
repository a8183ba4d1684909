package manager

import (
	"testing"

	"github.com/contactdesk/backend/internal/domain/customer"
	"github.com/stretchr/testify/assert"
)

func TestVisible(t *testing.T) {
	zed := customer.Customer{ID: "9", Name: "zed", Email: "aaa@example.com"}
	alice2 := customer.Customer{ID: "10", Name: "Alice", Email: "second@example.com"}

	tests := []struct {
		name      string
		primary   []customer.Customer
		secondary []customer.Customer
		search    string
		sortBy    string
		want      []string
	}{
		{
			name:    "source order without sort",
			primary: []customer.Customer{charlie, alice, bob},
			want:    []string{"Charlie", "Alice", "Bob"},
		},
		{
			name:    "name ascending",
			primary: []customer.Customer{charlie, alice, bob},
			sortBy:  SortNameAsc,
			want:    []string{"Alice", "Bob", "Charlie"},
		},
		{
			name:    "name descending",
			primary: []customer.Customer{charlie, alice, bob},
			sortBy:  SortNameDesc,
			want:    []string{"Charlie", "Bob", "Alice"},
		},
		{
			name:    "ordinal comparison puts lowercase after uppercase",
			primary: []customer.Customer{zed, bob, alice},
			sortBy:  SortNameAsc,
			want:    []string{"Alice", "Bob", "zed"},
		},
		{
			name:    "email ascending",
			primary: []customer.Customer{bob, zed, alice},
			sortBy:  SortEmailAsc,
			want:    []string{"zed", "Alice", "Bob"},
		},
		{
			name:    "stable for equal keys",
			primary: []customer.Customer{alice2, bob, alice},
			sortBy:  SortNameAsc,
			want:    []string{"Alice", "Alice", "Bob"},
		},
		{
			name:    "search is case-sensitive",
			primary: []customer.Customer{alice, bob},
			search:  "alice",
			want:    []string{},
		},
		{
			name:    "search matches a substring of the name only",
			primary: []customer.Customer{alice, bob, charlie},
			search:  "li",
			want:    []string{"Alice", "Charlie"},
		},
		{
			name:      "falls back to secondary when primary is empty",
			primary:   []customer.Customer{},
			secondary: []customer.Customer{bob},
			want:      []string{"Bob"},
		},
		{
			name:      "primary wins when non-empty",
			primary:   []customer.Customer{alice},
			secondary: []customer.Customer{bob, charlie},
			want:      []string{"Alice"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Visible(tt.primary, tt.secondary, tt.search, tt.sortBy)
			assert.Equal(t, tt.want, names(got))
		})
	}

	t.Run("unknown sort keeps order and rejects the option", func(t *testing.T) {
		assert.False(t, IsSortOption("by-mood"))
		assert.True(t, IsSortOption(SortNone))
		got := Visible([]customer.Customer{bob, alice}, nil, "", "by-mood")
		assert.Equal(t, []string{"Bob", "Alice"}, names(got))
	})

	t.Run("does not reorder the input", func(t *testing.T) {
		in := []customer.Customer{charlie, alice}
		Visible(in, nil, "", SortNameAsc)
		assert.Equal(t, []string{"Charlie", "Alice"}, names(in))
	})
}

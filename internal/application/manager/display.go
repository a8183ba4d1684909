package manager

import (
	"slices"
	"strings"

	"github.com/contactdesk/backend/internal/domain/customer"
)

// Sort selections
const (
	SortNone     = ""
	SortNameAsc  = "name-asc"
	SortNameDesc = "name-desc"
	SortEmailAsc = "email-asc"
)

// SortOptions lists the selectable sorts in display order
var SortOptions = []string{SortNameAsc, SortNameDesc, SortEmailAsc}

// IsSortOption reports whether s is a known selection (including none)
func IsSortOption(s string) bool {
	return s == SortNone || slices.Contains(SortOptions, s)
}

// sortOrder maps a selection to its direction
func sortOrder(sortBy string) string {
	switch sortBy {
	case SortNameAsc, SortEmailAsc:
		return "asc"
	case SortNameDesc:
		return "desc"
	default:
		return ""
	}
}

// Visible picks the rows to render: primary when it has records, otherwise
// secondary; then a case-sensitive substring filter on name and an ordinal
// stable sort.
func Visible(primary, secondary []customer.Customer, search, sortBy string) []customer.Customer {
	source := primary
	if len(source) == 0 {
		source = secondary
	}

	out := make([]customer.Customer, 0, len(source))
	for _, c := range source {
		if strings.Contains(c.Name, search) {
			out = append(out, c)
		}
	}

	switch sortBy {
	case SortNameAsc:
		slices.SortStableFunc(out, func(a, b customer.Customer) int { return strings.Compare(a.Name, b.Name) })
	case SortNameDesc:
		slices.SortStableFunc(out, func(a, b customer.Customer) int { return strings.Compare(b.Name, a.Name) })
	case SortEmailAsc:
		slices.SortStableFunc(out, func(a, b customer.Customer) int { return strings.Compare(a.Email, b.Email) })
	}
	return out
}

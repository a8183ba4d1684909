// Package manager implements the customer manager view: a single-loop state
// machine holding two in-memory customer lists, two persisted mirrors and a
// set of independent reactive rules that keep them loosely in sync.
package manager

import (
	"context"

	"github.com/contactdesk/backend/internal/domain/customer"
)

// CustomerAPI is the remote collection the view loads from and writes to
type CustomerAPI interface {
	List(ctx context.Context) ([]customer.Customer, error)
	Create(ctx context.Context, in customer.Customer) (customer.Customer, error)
	Update(ctx context.Context, id customer.ID, in customer.Customer) (customer.Customer, error)
	Delete(ctx context.Context, id customer.ID) error
}

// Mirror keys
const (
	// KeyCustomersCache holds the durable copy of the primary list
	KeyCustomersCache = "customers_cache"
	// KeyLastTouched holds the last created record (session mirror)
	KeyLastTouched = "customer_last_touched"
	// KeySearchPrefs holds SearchPrefs (session mirror)
	KeySearchPrefs = "customer_search_prefs"
	// KeyDraftForm holds the in-progress form (session mirror)
	KeyDraftForm = "customer_draft_form"
)

// SearchPrefs is the session preferences entry
type SearchPrefs struct {
	SearchTerm string `json:"searchTerm"`
	SortBy     string `json:"sortBy"`
}

// Banner and error texts surfaced in view state
const (
	MsgLoadFailed      = "Failed to load customers"
	MsgCacheReadFailed = "Failed to read cached customers"
	MsgCreated         = "Customer created successfully"
	MsgUpdated         = "Customer updated successfully"
	MsgDeleted         = "Customer deleted successfully"
	MsgCreateFailed    = "Failed to create customer"
	MsgUpdateFailed    = "Failed to update customer"
	MsgDeleteFailed    = "Failed to delete customer"
	MsgFixErrors       = "Please fix the highlighted fields"
)

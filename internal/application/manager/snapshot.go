package manager

import (
	"maps"
	"time"

	"github.com/contactdesk/backend/internal/domain/customer"
)

// Snapshot is a point-in-time copy of the view state
type Snapshot struct {
	Primary              []customer.Customer
	Secondary            []customer.Customer
	Visible              []customer.Customer
	Form                 customer.Form
	FieldErrors          map[customer.Field]string
	GeneralError         string
	SuccessMessage       string
	ErrorMessage         string
	Loading              bool
	Editing              bool
	EditingID            customer.ID
	ShowDeleteModal      bool
	DeleteTargetID       customer.ID
	SearchTerm           string
	SortBy               string
	SortOrder            string
	LastSaved            time.Time
	LocalStorageLoaded   bool
	SessionStorageLoaded bool
}

// FieldError returns the message shown under field
func (s Snapshot) FieldError(field customer.Field) string {
	return s.FieldErrors[field]
}

func (v *View) snapshot() Snapshot {
	st := &v.st
	return Snapshot{
		Primary:              st.primary.Items(),
		Secondary:            st.secondary.Items(),
		Visible:              Visible(st.primary.items, st.secondary.items, st.searchTerm, st.sortBy),
		Form:                 st.form,
		FieldErrors:          maps.Clone(st.fieldErrors),
		GeneralError:         st.generalError,
		SuccessMessage:       st.successMessage,
		ErrorMessage:         st.errorMessage,
		Loading:              st.loading,
		Editing:              st.editing,
		EditingID:            st.editingID,
		ShowDeleteModal:      st.showDeleteModal,
		DeleteTargetID:       st.deleteTargetID,
		SearchTerm:           st.searchTerm,
		SortBy:               st.sortBy,
		SortOrder:            st.sortOrder,
		LastSaved:            st.lastSaved,
		LocalStorageLoaded:   st.localStorageLoaded,
		SessionStorageLoaded: st.sessionStorageLoaded,
	}
}

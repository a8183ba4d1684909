package manager

import (
	"context"
	"strings"

	"github.com/contactdesk/backend/internal/domain/customer"
	"github.com/contactdesk/backend/internal/infrastructure/cache"
	"go.uber.org/zap"
)

// ChangeField sets a form value. A blank value clears the field's error,
// anything else is checked immediately.
func (v *View) ChangeField(field customer.Field, value string) {
	v.post(func() {
		v.setForm(v.st.form.With(field, value))
		if strings.TrimSpace(value) == "" {
			v.setFieldError(field, "")
			return
		}
		v.setFieldError(field, customer.ValidateField(field, value))
	})
}

// BlurField checks the field's current value
func (v *View) BlurField(field customer.Field) {
	v.post(func() {
		v.setFieldError(field, customer.ValidateField(field, v.st.form.Get(field)))
	})
}

// SetSearch updates the name filter
func (v *View) SetSearch(term string) {
	v.post(func() { v.setSearch(term) })
}

// SetSort selects one of SortOptions, or SortNone. Unknown values are ignored.
func (v *View) SetSort(sortBy string) {
	if !IsSortOption(sortBy) {
		return
	}
	v.post(func() { v.setSort(sortBy) })
}

// Submit creates or updates depending on the edit mode
func (v *View) Submit() {
	v.post(func() {
		if v.st.editing {
			v.update()
			return
		}
		v.create()
	})
}

// Create validates the form and posts a new record
func (v *View) Create() {
	v.post(v.create)
}

// Update validates the form and saves the record being edited
func (v *View) Update() {
	v.post(v.update)
}

// StartEdit loads a record into the form. The primary list is searched
// first, then the cache; an unknown id does nothing.
func (v *View) StartEdit(id customer.ID) {
	v.post(func() {
		c, ok := customer.Find(v.st.primary.items, id)
		if !ok {
			c, ok = customer.Find(v.st.secondary.items, id)
		}
		if !ok {
			v.logger.Debug("Edit requested for unknown customer", zap.String("id", id.String()))
			return
		}
		v.setForm(customer.FormFromCustomer(c))
		v.clearFieldErrors()
		v.setEditing(true, id)
	})
}

// CancelEdit leaves edit mode and clears the form
func (v *View) CancelEdit() {
	v.post(func() {
		v.setEditing(false, "")
		v.resetForm()
	})
}

// RequestDelete opens the confirmation step for id
func (v *View) RequestDelete(id customer.ID) {
	v.post(func() {
		v.setDeleteTarget(true, id)
	})
}

// CancelDelete closes the confirmation step
func (v *View) CancelDelete() {
	v.post(func() {
		v.setDeleteTarget(false, "")
	})
}

// ConfirmDelete deletes the pending target
func (v *View) ConfirmDelete() {
	v.post(v.confirmDelete)
}

// validateSubmit runs the whole-form check and records every field's result
func (v *View) validateSubmit() bool {
	result := customer.ValidateForm(v.st.form)
	for _, field := range customer.Fields {
		v.setFieldError(field, result.Error(field))
	}
	if !result.Valid {
		v.setGeneralError(MsgFixErrors)
		return false
	}
	v.setGeneralError("")
	return true
}

func (v *View) create() {
	if !v.validateSubmit() {
		return
	}
	v.setLoading(true)
	input := v.st.form.ToCustomer("")

	v.goNet(func(ctx context.Context) {
		created, err := v.api.Create(ctx, input)
		v.metrics.IncrementRequest("create", err)
		if err != nil {
			v.logger.Warn("Failed to create customer", zap.Error(err))
			v.post(func() {
				v.setError(MsgCreateFailed)
				v.setLoading(false)
			})
			return
		}
		record := fillBlank(created, input)

		v.postSteps(
			func() { v.st.primary.Append(record) },
			func() { v.st.secondary.Append(record) },
			func() { v.writeDurable() },
			func() { v.writeLastTouched(record) },
			func() { v.resetForm() },
			func() {
				v.setSuccess(MsgCreated)
				v.setLoading(false)
			},
		)
	})
}

func (v *View) update() {
	if !v.st.editing {
		return
	}
	if !v.validateSubmit() {
		return
	}
	v.setLoading(true)
	id := v.st.editingID
	input := v.st.form.ToCustomer(id)

	v.goNet(func(ctx context.Context) {
		updated, err := v.api.Update(ctx, id, input)
		v.metrics.IncrementRequest("update", err)
		if err != nil {
			v.logger.Warn("Failed to update customer", zap.String("id", id.String()), zap.Error(err))
			v.post(func() {
				v.setError(MsgUpdateFailed)
				v.setLoading(false)
			})
			return
		}
		record := fillBlank(updated, input)
		record.ID = id

		v.postSteps(
			func() { v.st.primary.Update(record) },
			func() { v.writeDurable() },
			func() { v.setEditing(false, "") },
			func() { v.resetForm() },
			func() {
				v.setSuccess(MsgUpdated)
				v.setLoading(false)
			},
		)
	})
}

func (v *View) confirmDelete() {
	if !v.st.showDeleteModal {
		return
	}
	id := v.st.deleteTargetID

	v.goNet(func(ctx context.Context) {
		err := v.api.Delete(ctx, id)
		v.metrics.IncrementRequest("delete", err)
		if err != nil {
			v.logger.Warn("Failed to delete customer", zap.String("id", id.String()), zap.Error(err))
			v.postSteps(
				func() { v.setError(MsgDeleteFailed) },
				func() { v.setDeleteTarget(false, "") },
			)
			return
		}
		v.postSteps(
			func() { v.st.primary.Remove(id) },
			func() { v.writeDurable() },
			func() { v.setDeleteTarget(false, "") },
			func() { v.setSuccess(MsgDeleted) },
		)
	})
}

func (v *View) writeLastTouched(c customer.Customer) {
	if err := cache.SetJSON(v.ctx, v.session, KeyLastTouched, c); err != nil {
		v.storageFailure("session", err)
	}
}

// fillBlank keeps the server's copy but fills fields it left out from what was sent
func fillBlank(got, sent customer.Customer) customer.Customer {
	if got.ID.IsZero() {
		got.ID = sent.ID
	}
	if got.Name == "" {
		got.Name = sent.Name
	}
	if got.Email == "" {
		got.Email = sent.Email
	}
	if got.Phone == "" {
		got.Phone = sent.Phone
	}
	if got.Address == "" {
		got.Address = sent.Address
	}
	return got
}

// setters: slices mark on every assignment, scalars only on change

func (v *View) setForm(f customer.Form) {
	if v.st.form == f {
		return
	}
	v.st.form = f
	v.mark(depForm)
}

func (v *View) resetForm() {
	v.setForm(customer.Form{})
	v.clearFieldErrors()
	v.setGeneralError("")
}

func (v *View) setFieldError(field customer.Field, msg string) {
	if v.st.fieldErrors[field] == msg {
		return
	}
	if msg == "" {
		delete(v.st.fieldErrors, field)
	} else {
		v.st.fieldErrors[field] = msg
	}
	v.touch()
}

func (v *View) clearFieldErrors() {
	for _, field := range customer.Fields {
		v.setFieldError(field, "")
	}
}

func (v *View) setGeneralError(msg string) {
	if v.st.generalError != msg {
		v.st.generalError = msg
		v.touch()
	}
}

func (v *View) setSuccess(msg string) {
	if v.st.successMessage != msg {
		v.st.successMessage = msg
		v.mark(depSuccess)
	}
}

func (v *View) setError(msg string) {
	if v.st.errorMessage != msg {
		v.st.errorMessage = msg
		v.mark(depError)
	}
}

func (v *View) setLoading(b bool) {
	if v.st.loading != b {
		v.st.loading = b
		v.touch()
	}
}

func (v *View) setEditing(editing bool, id customer.ID) {
	if v.st.editing != editing || v.st.editingID != id {
		v.st.editing = editing
		v.st.editingID = id
		v.touch()
	}
}

func (v *View) setDeleteTarget(show bool, id customer.ID) {
	if v.st.showDeleteModal != show || v.st.deleteTargetID != id {
		v.st.showDeleteModal = show
		v.st.deleteTargetID = id
		v.touch()
	}
}

func (v *View) setSearch(term string) {
	if v.st.searchTerm != term {
		v.st.searchTerm = term
		v.mark(depSearch)
	}
}

func (v *View) setSort(sortBy string) {
	if v.st.sortBy != sortBy {
		v.st.sortBy = sortBy
		v.st.sortOrder = sortOrder(sortBy)
		v.mark(depSort)
	}
}

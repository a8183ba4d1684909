package manager

import (
	"context"
	"errors"

	"github.com/contactdesk/backend/internal/domain/customer"
	"github.com/contactdesk/backend/internal/infrastructure/cache"
	"go.uber.org/zap"
)

// Rule names, used as metric labels and task names
const (
	RuleLoadDurable    = "load-durable"
	RuleFetchServer    = "fetch-server"
	RuleRestoreSession = "restore-session"
	RulePersistDurable = "persist-durable"
	RuleCopySecondary  = "copy-secondary"
	RulePersistPrefs   = "persist-prefs"
	RuleRestorePrimary = "restore-primary"
	RuleAutosaveDraft  = "autosave-draft"
	RuleClearSuccess   = "clear-success"
	RuleClearError     = "clear-error"
	RuleSearchDebounce = "search-debounce"
	RuleStaleCheck     = "stale-check"
)

// rule reacts to changes in deps. Rules never coordinate with each other.
type rule struct {
	name string
	deps dep
	run  func(v *View)
}

func (v *View) buildRules() []rule {
	return []rule{
		{name: RuleLoadDurable, deps: depMount, run: (*View).loadDurable},
		{name: RuleFetchServer, deps: depMount, run: (*View).fetchServer},
		{name: RuleRestoreSession, deps: depMount, run: (*View).restoreSession},
		{name: RulePersistDurable, deps: depPrimary, run: (*View).persistDurable},
		{name: RuleCopySecondary, deps: depPrimary, run: (*View).scheduleSecondaryCopy},
		{name: RulePersistPrefs, deps: depSearch | depSort, run: (*View).persistPrefs},
		{name: RuleRestorePrimary, deps: depPrimary | depSecondary, run: (*View).restorePrimary},
		{name: RuleAutosaveDraft, deps: depForm, run: (*View).scheduleDraftAutosave},
		{name: RuleClearSuccess, deps: depSuccess, run: (*View).scheduleSuccessClear},
		{name: RuleClearError, deps: depError, run: (*View).scheduleErrorClear},
		{name: RuleSearchDebounce, deps: depSearch, run: (*View).scheduleSearchDebounce},
		{name: RuleStaleCheck, deps: depPrimary, run: (*View).scheduleStaleCheck},
	}
}

func (v *View) loadDurable() {
	list, ok, err := cache.GetJSON[[]customer.Customer](v.ctx, v.durable, KeyCustomersCache)
	if err != nil {
		v.storageFailure("durable", err)
		return
	}
	if !ok {
		return
	}
	v.st.primary.Replace(list)
	v.st.localStorageLoaded = true
	v.touch()
}

func (v *View) fetchServer() {
	v.setLoading(true)
	v.goNet(func(ctx context.Context) {
		list, err := v.api.List(ctx)
		v.metrics.IncrementRequest("list", err)
		if err != nil {
			v.logger.Warn("Failed to load customers", zap.Error(err))
			v.post(func() {
				v.setError(MsgLoadFailed)
				v.setLoading(false)
			})
			return
		}
		v.post(func() {
			v.st.primary.Replace(list)
			v.setLoading(false)
		})
	})
}

// restoreSession picks up preferences and an unsaved draft left in the
// session mirror by an earlier view
func (v *View) restoreSession() {
	prefs, ok, err := cache.GetJSON[SearchPrefs](v.ctx, v.session, KeySearchPrefs)
	if err != nil {
		v.storageFailure("session", err)
	} else if ok {
		v.setSearch(prefs.SearchTerm)
		if IsSortOption(prefs.SortBy) {
			v.setSort(prefs.SortBy)
		}
	}

	draft, ok, err := cache.GetJSON[customer.Form](v.ctx, v.session, KeyDraftForm)
	if err != nil {
		v.storageFailure("session", err)
		return
	}
	if ok && !draft.IsBlank() {
		v.setForm(draft)
	}
	v.st.sessionStorageLoaded = true
	v.touch()
}

func (v *View) persistDurable() {
	if v.st.primary.Len() == 0 {
		return
	}
	v.writeDurable()
}

func (v *View) scheduleSecondaryCopy() {
	v.after(RuleCopySecondary, v.timings.CacheCopyDelay, func() {
		v.st.secondary.CopyFrom(v.st.primary)
	})
}

func (v *View) persistPrefs() {
	prefs := SearchPrefs{SearchTerm: v.st.searchTerm, SortBy: v.st.sortBy}
	if err := cache.SetJSON(v.ctx, v.session, KeySearchPrefs, prefs); err != nil {
		v.storageFailure("session", err)
	}
}

func (v *View) restorePrimary() {
	if v.st.primary.Len() == 0 && v.st.secondary.Len() > 0 {
		v.st.primary.Replace(v.st.secondary.items)
	}
}

func (v *View) scheduleDraftAutosave() {
	v.every(RuleAutosaveDraft, v.timings.DraftInterval, func() {
		form := v.st.form
		if form.IsBlank() {
			return
		}
		if err := cache.SetJSON(v.ctx, v.session, KeyDraftForm, form); err != nil {
			v.storageFailure("session", err)
			return
		}
		v.st.lastSaved = v.now()
		v.touch()
	})
}

func (v *View) scheduleSuccessClear() {
	if v.st.successMessage == "" {
		return
	}
	v.after(RuleClearSuccess, v.timings.MessageTTL, func() {
		v.setSuccess("")
	})
}

func (v *View) scheduleErrorClear() {
	if v.st.errorMessage == "" {
		return
	}
	v.after(RuleClearError, v.timings.MessageTTL, func() {
		v.setError("")
	})
}

// scheduleSearchDebounce flips loading on and off again. Filtering itself
// happens on every snapshot.
func (v *View) scheduleSearchDebounce() {
	v.after(RuleSearchDebounce, v.timings.SearchDebounce, func() {
		v.setLoading(true)
		v.setLoading(false)
	})
}

func (v *View) scheduleStaleCheck() {
	v.every(RuleStaleCheck, v.timings.StaleCheckInterval, func() {
		list, ok, err := cache.GetJSON[[]customer.Customer](v.ctx, v.durable, KeyCustomersCache)
		if err != nil {
			v.storageFailure("durable", err)
			var perr *cache.ParseError
			if errors.As(err, &perr) {
				v.setError(MsgCacheReadFailed)
			}
			return
		}
		if ok && len(list) > v.st.primary.Len() {
			v.logger.Debug("Durable mirror is longer, replacing working set",
				zap.Int("mirror", len(list)), zap.Int("primary", v.st.primary.Len()))
			v.st.primary.Replace(list)
		}
	})
}

func (v *View) writeDurable() {
	if err := cache.SetJSON(v.ctx, v.durable, KeyCustomersCache, v.st.primary.items); err != nil {
		v.storageFailure("durable", err)
	}
}

func (v *View) storageFailure(mirror string, err error) {
	var perr *cache.ParseError
	if errors.As(err, &perr) {
		v.metrics.IncrementStorageError(mirror, "parse")
		v.logger.Debug("Ignoring unreadable mirror entry", zap.String("mirror", mirror), zap.Error(err))
		return
	}
	v.metrics.IncrementStorageError(mirror, "io")
	v.logger.Warn("Mirror access failed", zap.String("mirror", mirror), zap.Error(err))
}

package http

import (
	"net/http"

	"fintrack/internal/confirm"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

type budgetsPage struct {
	pageData
	Progress   []core.BudgetProgress
	Form       core.BudgetDraft
	FormError  string
	Categories []string
}

func (s *Server) renderBudgets(w http.ResponseWriter, r *http.Request, status int, form core.BudgetDraft, formErr string) {
	if form.Period == "" {
		form.Period = string(core.Monthly)
	}
	s.render(w, r, status, "budgets_page.html", budgetsPage{
		pageData:   s.page(r, "Budget Overview", "budgets"),
		Progress:   s.dashboard().BudgetProgress,
		Form:       form,
		FormError:  formErr,
		Categories: core.ExpenseCategories,
	})
}

func (s *Server) handleBudgetsPage(w http.ResponseWriter, r *http.Request) {
	s.renderBudgets(w, r, http.StatusOK, core.BudgetDraft{}, "")
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		ErrorResponse(http.StatusBadRequest, "Invalid request format").Write(w)
		return
	}
	draft := p.BudgetDraft()

	b, err := s.ledger.AddBudget(r.Context(), draft)
	if err != nil {
		status, msg := errorStatus(err)
		if status >= http.StatusInternalServerError {
			log.FromContext(r.Context()).ErrorContext(r.Context(), "Budget create failed", log.FieldError, err)
		}
		if isHTMX(r) {
			ErrorResponse(status, msg).TriggerErrorNotification(msg).Write(w)
			return
		}
		s.renderBudgets(w, r, status, draft, msg)
		return
	}

	const next = "/budgets?notice=budget-added"
	if isHTMX(r) {
		NewHTMXResponse().
			TriggerBudgetCreated(b.ID, b.Category).
			TriggerSuccessNotification(notices["budget-added"]).
			Redirect(next).
			Write(w)
		return
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.deleteRecord(w, r, deletion{
		action: confirm.DeleteBudget(id),
		remove: s.ledger.DeleteBudget,
		back:   "/budgets",
		notice: "budget-deleted",
		trigger: func(b *HTMXResponseBuilder) *HTMXResponseBuilder {
			return b.TriggerBudgetDeleted(id)
		},
	})
}

func (s *Server) handleAPIBudgetProgress(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{"budgetProgress": s.dashboard().BudgetProgress})
}

func (s *Server) handleAPICreateBudget(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		writeJSON(w, r, http.StatusBadRequest, apiError{Error: "Invalid request body"})
		return
	}
	b, err := s.ledger.AddBudget(r.Context(), p.BudgetDraft())
	if err != nil {
		writeJSONError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, b)
}

func (s *Server) handleAPIDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.apiDelete(w, r, confirm.DeleteBudget(id), s.ledger.DeleteBudget)
}

package http

import (
	"net/http"

	"fintrack/internal/aggregate"
	"fintrack/internal/confirm"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

type transactionsPage struct {
	pageData
	Transactions      []core.Transaction
	Filter            aggregate.TypeFilter
	Sort              aggregate.SortKey
	Form              core.TransactionDraft
	FormError         string
	ExpenseCategories []string
	IncomeCategories  []string
}

func (s *Server) renderTransactions(w http.ResponseWriter, r *http.Request, status int, params ListParams, form core.TransactionDraft, formErr string) {
	snap := s.ledger.Snapshot()
	if form.Type == "" {
		form.Type = string(core.Expense)
	}
	if form.Date == "" {
		form.Date = core.FormatDay(s.today())
	}
	s.render(w, r, status, "transactions_page.html", transactionsPage{
		pageData:          s.page(r, "Transactions", "transactions"),
		Transactions:      aggregate.FilterAndSort(snap.Transactions, params.Filter, params.Sort),
		Filter:            params.Filter,
		Sort:              params.Sort,
		Form:              form,
		FormError:         formErr,
		ExpenseCategories: core.ExpenseCategories,
		IncomeCategories:  core.IncomeCategories,
	})
}

// handleTransactionsPage lists transactions. Unknown filter or sort values
// fall back to the defaults.
func (s *Server) handleTransactionsPage(w http.ResponseWriter, r *http.Request) {
	params, err := ParseListParams(r.URL.Query())
	if err != nil {
		log.FromContext(r.Context()).DebugContext(r.Context(), "Ignoring listing parameter", log.FieldError, err)
	}
	s.renderTransactions(w, r, http.StatusOK, params, core.TransactionDraft{}, "")
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		ErrorResponse(http.StatusBadRequest, "Invalid request format").Write(w)
		return
	}
	draft := p.TransactionDraft()

	t, err := s.ledger.AddTransaction(r.Context(), draft)
	if err != nil {
		status, msg := errorStatus(err)
		if status >= http.StatusInternalServerError {
			log.FromContext(r.Context()).ErrorContext(r.Context(), "Transaction create failed", log.FieldError, err)
		}
		if isHTMX(r) {
			ErrorResponse(status, msg).TriggerErrorNotification(msg).Write(w)
			return
		}
		params, _ := ParseListParams(r.URL.Query())
		s.renderTransactions(w, r, status, params, draft, msg)
		return
	}

	const next = "/transactions?notice=transaction-added"
	if isHTMX(r) {
		NewHTMXResponse().
			TriggerTransactionCreated(t.ID, t.Type).
			TriggerSuccessNotification(notices["transaction-added"]).
			Redirect(next).
			Write(w)
		return
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.deleteRecord(w, r, deletion{
		action: confirm.DeleteTransaction(id),
		remove: s.ledger.DeleteTransaction,
		back:   "/transactions",
		notice: "transaction-deleted",
		trigger: func(b *HTMXResponseBuilder) *HTMXResponseBuilder {
			return b.TriggerTransactionDeleted(id)
		},
	})
}

type transactionList struct {
	Transactions []core.Transaction  `json:"transactions"`
	Type         aggregate.TypeFilter `json:"type"`
	Sort         aggregate.SortKey    `json:"sort"`
}

func (s *Server) handleAPIListTransactions(w http.ResponseWriter, r *http.Request) {
	params, err := ParseListParams(r.URL.Query())
	if err != nil {
		writeJSON(w, r, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}
	snap := s.ledger.Snapshot()
	writeJSON(w, r, http.StatusOK, transactionList{
		Transactions: aggregate.FilterAndSort(snap.Transactions, params.Filter, params.Sort),
		Type:         params.Filter,
		Sort:         params.Sort,
	})
}

func (s *Server) handleAPICreateTransaction(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		writeJSON(w, r, http.StatusBadRequest, apiError{Error: "Invalid request body"})
		return
	}
	t, err := s.ledger.AddTransaction(r.Context(), p.TransactionDraft())
	if err != nil {
		writeJSONError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, t)
}

func (s *Server) handleAPIDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.apiDelete(w, r, confirm.DeleteTransaction(id), s.ledger.DeleteTransaction)
}

package http

import (
	"context"
	"fmt"
	"net/http"

	"fintrack/internal/confirm"
	"fintrack/internal/log"
)

// deletion describes one delete flow of the HTML pages.
type deletion struct {
	action  confirm.Action
	remove  func(ctx context.Context, id string) (bool, error)
	back    string
	notice  string
	trigger func(*HTMXResponseBuilder) *HTMXResponseBuilder
}

type confirmPage struct {
	pageData
	Prompt string
	Action string
	Cancel string
}

// confirmed asks the provider about a. A refusal is errNotConfirmed.
func (s *Server) confirmed(r *http.Request, a confirm.Action) error {
	ok, err := s.confirm.Confirm(r.Context(), a)
	if err != nil {
		return fmt.Errorf("confirm %s: %w", a.Kind, err)
	}
	if !ok {
		return errNotConfirmed
	}
	return nil
}

// deleteRecord runs a confirmed delete. Without a confirm answer a plain
// browser request gets a confirmation page with status 409.
func (s *Server) deleteRecord(w http.ResponseWriter, r *http.Request, d deletion) {
	r = withConfirmAnswer(r)
	logger := log.FromContext(r.Context())

	if err := s.confirmed(r, d.action); err != nil {
		status, msg := errorStatus(err)
		switch {
		case status == http.StatusConflict && !isHTMX(r):
			s.render(w, r, http.StatusConflict, "confirm_page.html", confirmPage{
				pageData: s.page(r, "Confirm deletion", ""),
				Prompt:   d.action.Prompt,
				Action:   r.URL.Path,
				Cancel:   d.back,
			})
		case status == http.StatusConflict:
			ConflictError(msg).Write(w)
		default:
			logger.ErrorContext(r.Context(), "Confirmation failed", log.FieldError, err)
			ErrorResponse(status, msg).Write(w)
		}
		return
	}

	removed, err := d.remove(r.Context(), d.action.TargetID)
	if err != nil {
		status, msg := errorStatus(err)
		idField := log.FieldTransactionID
		if d.action.Kind == confirm.KindDeleteBudget {
			idField = log.FieldBudgetID
		}
		log.NewStructuredLogger(logger).LogError(r.Context(), "Delete failed", err,
			log.ComponentHTTP, log.OpDelete, log.LogFields{idField: d.action.TargetID})
		ErrorResponse(status, msg).TriggerErrorNotification(msg).Write(w)
		return
	}

	next := d.back
	if removed {
		next += "?notice=" + d.notice
	}
	if isHTMX(r) {
		b := NewHTMXResponse()
		if removed {
			b = d.trigger(b).TriggerSuccessNotification(notices[d.notice])
		}
		b.Redirect(next).Write(w)
		return
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// apiDelete is deleteRecord for JSON clients. Deleting an unknown id is not
// an error; the response reports deleted false.
func (s *Server) apiDelete(w http.ResponseWriter, r *http.Request, a confirm.Action, remove func(context.Context, string) (bool, error)) {
	r = withConfirmAnswer(r)
	if err := s.confirmed(r, a); err != nil {
		writeJSONError(w, r, err)
		return
	}
	removed, err := remove(r.Context(), a.TargetID)
	if err != nil {
		writeJSONError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"id": a.TargetID, "deleted": removed})
}

package http

import (
	"errors"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/export"
	applog "fintrack/internal/log"
)

// handleExpenses serves the collection endpoint: GET lists every expense,
// POST records a new one.
func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listExpenses(w, r)
	case http.MethodPost:
		s.createExpense(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) listExpenses(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	sortKey := export.SortByDate
	if v := query.Get("sort"); v != "" {
		sortKey = export.SortKey(v)
	}
	dir := export.Descending
	if v := query.Get("dir"); v != "" {
		dir = export.Direction(v)
	}

	expenses := export.SortExpenses(s.store.GetAll(r.Context()), sortKey, dir)

	NewResponse().Payload(expenses).Write(w)
}

func (s *Server) createExpense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		logger.ErrorContext(ctx, "Failed to parse request body",
			applog.FieldError, err,
			applog.FieldOperation, applog.OpCreate)
		BadRequestError("invalid request body").Write(w)
		return
	}

	draft, err := parser.ToDraft()
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	expense, err := s.store.Add(ctx, draft)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to save expense",
			applog.FieldError, err,
			applog.FieldAmount, draft.Amount,
			applog.FieldCategory, draft.Category,
			applog.FieldOperation, applog.OpCreate)
		InternalServerError("error saving expense").Write(w)
		return
	}

	s.invalidateViews()

	logger.InfoContext(ctx, "Expense created",
		applog.FieldExpenseID, expense.ID,
		applog.FieldAmount, expense.Amount,
		applog.FieldCategory, expense.Category,
		applog.FieldOperation, applog.OpCreate)

	NewResponse().Status(http.StatusCreated).Payload(expense).Write(w)
}

// handleUpdateExpense applies a partial update. The expense id travels in the
// request body; updating an unknown id is a no-op and still returns 200.
func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	if errResp := RequireMethod(r, http.MethodPost, http.MethodPut); errResp != nil {
		errResp.Write(w)
		return
	}

	ctx := r.Context()
	logger := applog.FromContext(ctx)

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("invalid request body").Write(w)
		return
	}

	id, patch, err := parser.ToPatch()
	if err != nil {
		if errors.Is(err, core.ErrInvalidAmount) || errors.Is(err, core.ErrInvalidCategory) ||
			errors.Is(err, core.ErrInvalidDate) || errors.Is(err, core.ErrEmptySubItemName) ||
			errors.Is(err, core.ErrSubItemAmount) || errors.Is(err, core.ErrSubItemSum) {
			UnprocessableEntityError(err.Error()).Write(w)
			return
		}
		BadRequestError(err.Error()).Write(w)
		return
	}

	// Check the invariant of the merged record, not just the patched fields;
	// the store stays permissive and persists whatever it is handed.
	for _, existing := range s.store.GetAll(ctx) {
		if existing.ID == id {
			if err := patch.ValidateMerge(existing); err != nil {
				UnprocessableEntityError(err.Error()).Write(w)
				return
			}
			break
		}
	}

	if err := s.store.Update(ctx, id, patch); err != nil {
		logger.ErrorContext(ctx, "Failed to update expense",
			applog.FieldError, err,
			applog.FieldExpenseID, id,
			applog.FieldOperation, applog.OpUpdate)
		InternalServerError("error updating expense").Write(w)
		return
	}

	s.invalidateViews()

	logger.InfoContext(ctx, "Expense updated",
		applog.FieldExpenseID, id,
		applog.FieldOperation, applog.OpUpdate)

	NewResponse().Payload(map[string]string{"status": "ok"}).Write(w)
}

// handleDeleteExpense removes an expense by id. Deleting an unknown id is a
// no-op and still returns 200.
func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if errResp := RequireMethod(r, http.MethodPost, http.MethodDelete); errResp != nil {
		errResp.Write(w)
		return
	}

	ctx := r.Context()
	logger := applog.FromContext(ctx)

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("invalid request body").Write(w)
		return
	}

	id := parser.Get("id")
	if id == "" {
		BadRequestError("missing expense id").Write(w)
		return
	}

	if err := s.store.Delete(ctx, id); err != nil {
		logger.ErrorContext(ctx, "Failed to delete expense",
			applog.FieldError, err,
			applog.FieldExpenseID, id,
			applog.FieldOperation, applog.OpDelete)
		InternalServerError("error deleting expense").Write(w)
		return
	}

	s.invalidateViews()

	logger.InfoContext(ctx, "Expense deleted",
		applog.FieldExpenseID, id,
		applog.FieldOperation, applog.OpDelete)

	NewResponse().Payload(map[string]string{"status": "ok"}).Write(w)
}

package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"trosak/internal/core"
	"trosak/internal/services"
	"trosak/internal/storage"
)

// Imports are capped well above any realistic personal dataset.
const maxBackupSize = 10 << 20

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.categories.Load(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if cats == nil {
		cats = []core.CategoryWithSpent{}
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string  `json:"name"`
		BudgetLimit float64 `json:"budgetLimit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}

	id, err := s.categories.Add(r.Context(), req.Name, req.BudgetLimit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) getCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	cat, err := s.categories.GetOne(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

func (s *Server) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var upd core.CategoryUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}

	if err := s.categories.Update(r.Context(), id, upd); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := s.categories.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	txs, err := s.transactions.LoadForCategory(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CategoryID  int64   `json:"categoryId"`
		Amount      float64 `json:"amount"`
		Currency    string  `json:"currency"`
		Description string  `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}

	currency, err := core.ParseCurrency(req.Currency)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	id, err := s.transactions.Add(r.Context(), req.CategoryID, req.Amount, currency, req.Description)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// deleteTransaction removes a transaction and returns the refreshed list
// for the category given in the query, so the UI can re-render from the
// response alone.
func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	categoryID, err := strconv.ParseInt(r.URL.Query().Get("categoryId"), 10, 64)
	if err != nil {
		http.Error(w, "invalid categoryId", http.StatusBadRequest)
		return
	}

	remaining, err := s.transactions.Delete(r.Context(), id, categoryID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if remaining == nil {
		remaining = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, remaining)
}

func (s *Server) getRates(w http.ResponseWriter, r *http.Request) {
	rates, err := s.settings.Load(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rates)
}

func (s *Server) putRates(w http.ResponseWriter, r *http.Request) {
	var rates core.CurrencyRates
	if err := json.NewDecoder(r.Body).Decode(&rates); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}

	if err := s.settings.UpdateRates(r.Context(), rates); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) exportBackup(w http.ResponseWriter, r *http.Request) {
	doc, err := s.backup.Export(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+core.BackupFilename(time.Now())+`"`)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		slog.ErrorContext(r.Context(), "Failed to write backup response", "error", err)
	}
}

func (s *Server) importBackup(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBackupSize))
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	if err := s.backup.ImportJSON(r.Context(), data); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

var validationErrs = []error{
	core.ErrEmptyName,
	core.ErrEmptyDescription,
	core.ErrInvalidAmount,
	core.ErrInvalidLimit,
	core.ErrUnknownCurrency,
	core.ErrInvalidRates,
}

// writeError maps domain errors onto status codes so the UI can tell a
// bad request from an absent record from failing device storage.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
		return
	case errors.Is(err, services.ErrInvalidBackup), errors.Is(err, services.ErrMalformedBackup):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	for _, verr := range validationErrs {
		if errors.Is(err, verr) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	var serr *storage.Error
	if errors.As(err, &serr) {
		slog.ErrorContext(r.Context(), "Storage failure", "error", err)
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
		return
	}

	slog.ErrorContext(r.Context(), "Unhandled error", "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

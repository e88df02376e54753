package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"finance-tracker/internal/apperror"
	"finance-tracker/internal/models"
)

type addExpenseRequest struct {
	Name     string         `json:"name"`
	Amount   *models.Amount `json:"amount"`
	Date     *models.Date   `json:"date"`
	Category string         `json:"category"`
}

// AddExpense records an expense for the authenticated user. The owner is
// taken from the session; a user_id in the payload is ignored.
func (h *Handlers) AddExpense(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	if user == nil {
		h.writeUnauthorized(w)
		return
	}

	req, err := parseAddExpense(r)
	if err != nil {
		writeError(w, err)
		return
	}

	category, err := models.ParseCategory(req.Category)
	if err != nil {
		writeError(w, apperror.New(apperror.Validation, err.Error(), nil))
		return
	}

	expense, err := h.db.CreateExpense(r.Context(), user.ID, req.Name, *req.Amount, *req.Date, category)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, expense)
}

func parseAddExpense(r *http.Request) (*addExpenseRequest, error) {
	var req addExpenseRequest
	if isJSONRequest(r) {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, apperror.Validationf("invalid request body")
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return nil, apperror.Validationf("invalid request body")
		}
		req.Name = r.FormValue("name")
		req.Category = r.FormValue("category")
		if v := r.FormValue("amount"); v != "" {
			amount, err := models.ParseAmount(v)
			if err != nil {
				return nil, apperror.New(apperror.Validation, err.Error(), nil)
			}
			req.Amount = &amount
		}
		if v := r.FormValue("date"); v != "" {
			date, err := models.ParseDate(v)
			if err != nil {
				return nil, apperror.Validationf("date must be in YYYY-MM-DD format")
			}
			req.Date = &date
		}
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Amount == nil || req.Date == nil || req.Category == "" {
		return nil, apperror.Validationf("all fields are required")
	}
	return &req, nil
}

// ViewExpenses lists the authenticated user's records, newest first.
func (h *Handlers) ViewExpenses(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	if user == nil {
		h.writeUnauthorized(w)
		return
	}

	expenses, err := h.db.ListExpensesByUser(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, expenses)
}

// ExpenseSummary aggregates the authenticated user's records for one month,
// per category. Defaults to the current month.
func (h *Handlers) ExpenseSummary(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	if user == nil {
		h.writeUnauthorized(w)
		return
	}

	now := time.Now()
	year, month := now.Year(), int(now.Month())

	if v := r.URL.Query().Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, apperror.Validationf("year must be a number"))
			return
		}
		year = y
	}
	if v := r.URL.Query().Get("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			writeError(w, apperror.Validationf("month must be between 1 and 12"))
			return
		}
		month = m
	}

	totals, err := h.db.GetCategoryTotalsByMonth(r.Context(), user.ID, year, month)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"year":   year,
		"month":  month,
		"totals": totals,
	})
}

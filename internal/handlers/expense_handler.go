package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"tripledger/internal/service"
)

// ExpenseHandler handles expense endpoints
type ExpenseHandler struct {
	expenseService *service.ExpenseService
}

// NewExpenseHandler creates a new expense handler
func NewExpenseHandler(expenseService *service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// Create handles POST /trips/{id}/expenses
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	tripID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid trip id", err)
		return
	}

	var req struct {
		Description    string                    `json:"description"`
		Amount         decimal.Decimal           `json:"amount"`
		IsIncome       bool                      `json:"isIncome"`
		PayerMemberID  int64                     `json:"payerMemberId"`
		IsPaidFromFund bool                      `json:"isPaidFromFund"`
		Participants   []int64                   `json:"participants"`
		Shares         map[int64]decimal.Decimal `json:"shares,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	expense, err := h.expenseService.CreateExpense(r.Context(), UserIDFromContext(r.Context()), service.ExpenseInput{
		TripID:         tripID,
		Description:    req.Description,
		Amount:         req.Amount,
		IsIncome:       req.IsIncome,
		PayerMemberID:  req.PayerMemberID,
		IsPaidFromFund: req.IsPaidFromFund,
		Participants:   req.Participants,
		Shares:         req.Shares,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, expenseViewOf(expense))
}

// List handles GET /trips/{id}/expenses
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	tripID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid trip id", err)
		return
	}

	expenses, err := h.expenseService.ListExpenses(r.Context(), tripID, UserIDFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, expenseViewsOf(expenses))
}

// Get handles GET /expenses/{id}
func (h *ExpenseHandler) Get(w http.ResponseWriter, r *http.Request) {
	expenseID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid expense id", err)
		return
	}

	expense, err := h.expenseService.GetExpense(r.Context(), UserIDFromContext(r.Context()), expenseID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, expenseViewOf(expense))
}

// Delete handles DELETE /expenses/{id}
func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	expenseID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid expense id", err)
		return
	}

	if err := h.expenseService.DeleteExpense(r.Context(), UserIDFromContext(r.Context()), expenseID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

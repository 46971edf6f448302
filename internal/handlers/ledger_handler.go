package handlers

import (
	"net/http"

	"tripledger/internal/money"
	"tripledger/internal/service"
)

// LedgerHandler handles derived balance and settlement endpoints
type LedgerHandler struct {
	ledgerService *service.LedgerService
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(ledgerService *service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// Balances handles GET /trips/{id}/balances
func (h *LedgerHandler) Balances(w http.ResponseWriter, r *http.Request) {
	tripID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid trip id", err)
		return
	}

	balances, err := h.ledgerService.ComputeBalances(r.Context(), tripID, UserIDFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, balances)
}

// Settlement handles GET /trips/{id}/settlement
func (h *LedgerHandler) Settlement(w http.ResponseWriter, r *http.Request) {
	tripID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid trip id", err)
		return
	}

	plan, err := h.ledgerService.PlanSettlement(r.Context(), tripID, UserIDFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, plan)
}

// FundPosition handles GET /trips/{id}/fund
func (h *LedgerHandler) FundPosition(w http.ResponseWriter, r *http.Request) {
	tripID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid trip id", err)
		return
	}

	fund, err := h.ledgerService.FundPosition(r.Context(), tripID, UserIDFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"fundPosition": money.Format(fund)})
}

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"tripledger/internal/service"
)

// MemberHandler handles trip membership endpoints
type MemberHandler struct {
	memberService *service.MemberService
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(memberService *service.MemberService) *MemberHandler {
	return &MemberHandler{memberService: memberService}
}

// List handles GET /trips/{id}/members
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	tripID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid trip id", err)
		return
	}

	members, err := h.memberService.ListMembers(r.Context(), tripID, UserIDFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, memberViewsOf(members))
}

// AddVirtual handles POST /trips/{id}/members/virtual
func (h *MemberHandler) AddVirtual(w http.ResponseWriter, r *http.Request) {
	tripID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid trip id", err)
		return
	}

	var req struct {
		DisplayName  string          `json:"displayName"`
		Contribution decimal.Decimal `json:"contribution"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	member, err := h.memberService.AddVirtualMember(r.Context(), tripID, UserIDFromContext(r.Context()), req.DisplayName, req.Contribution)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, memberViewOf(member))
}

// Remove handles DELETE /trips/{id}/members/{memberId}
func (h *MemberHandler) Remove(w http.ResponseWriter, r *http.Request) {
	tripID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid trip id", err)
		return
	}
	memberID, err := pathID(r, "memberId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid member id", err)
		return
	}

	if err := h.memberService.RemoveMember(r.Context(), tripID, UserIDFromContext(r.Context()), memberID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// ChangeRole handles PUT /trips/{id}/members/{memberId}/role
func (h *MemberHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	tripID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid trip id", err)
		return
	}
	memberID, err := pathID(r, "memberId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid member id", err)
		return
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.memberService.ChangeRole(r.Context(), tripID, UserIDFromContext(r.Context()), memberID, req.Role); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// UpdateContribution handles PUT /trips/{id}/members/{memberId}/contribution
func (h *MemberHandler) UpdateContribution(w http.ResponseWriter, r *http.Request) {
	tripID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid trip id", err)
		return
	}
	memberID, err := pathID(r, "memberId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid member id", err)
		return
	}

	var req struct {
		Contribution decimal.Decimal `json:"contribution"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.memberService.UpdateContribution(r.Context(), tripID, UserIDFromContext(r.Context()), memberID, req.Contribution); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// BatchUpdateContributions handles PUT /trips/{id}/contributions
func (h *MemberHandler) BatchUpdateContributions(w http.ResponseWriter, r *http.Request) {
	tripID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid trip id", err)
		return
	}

	var req struct {
		Contributions map[int64]decimal.Decimal `json:"contributions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if len(req.Contributions) == 0 {
		respondWithError(w, http.StatusBadRequest, "contributions are required", nil)
		return
	}

	if err := h.memberService.BatchUpdateContributions(r.Context(), tripID, UserIDFromContext(r.Context()), req.Contributions); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

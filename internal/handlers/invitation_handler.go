package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"tripledger/internal/service"
)

// InvitationHandler handles invitation lifecycle endpoints
type InvitationHandler struct {
	invitationService *service.InvitationService
}

// NewInvitationHandler creates a new invitation handler
func NewInvitationHandler(invitationService *service.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitationService: invitationService}
}

// Create handles POST /trips/{id}/invitations
func (h *InvitationHandler) Create(w http.ResponseWriter, r *http.Request) {
	tripID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid trip id", err)
		return
	}

	var req struct {
		InvitedUserID  int64  `json:"invitedUserId"`
		InviteType     string `json:"inviteType"`
		TargetMemberID *int64 `json:"targetMemberId,omitempty"`
		Message        string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	inv, err := h.invitationService.Create(r.Context(), UserIDFromContext(r.Context()), service.CreateInvitationInput{
		TripID:         tripID,
		InvitedUserID:  req.InvitedUserID,
		InviteType:     req.InviteType,
		TargetMemberID: req.TargetMemberID,
		Message:        req.Message,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, invitationViewOf(inv))
}

// Accept handles POST /invitations/{id}/accept
func (h *InvitationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.invitationService.Accept)
}

// Reject handles POST /invitations/{id}/reject
func (h *InvitationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.invitationService.Reject)
}

// Cancel handles POST /invitations/{id}/cancel
func (h *InvitationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.invitationService.Cancel)
}

func (h *InvitationHandler) respond(w http.ResponseWriter, r *http.Request,
	transition func(ctx context.Context, invitationID, userID int64) error) {
	invitationID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid invitation id", err)
		return
	}

	if err := transition(r.Context(), invitationID, UserIDFromContext(r.Context())); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// ListMine handles GET /invitations
func (h *InvitationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	invitations, err := h.invitationService.ForUser(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, invitationViewsOf(invitations))
}

// ListForTrip handles GET /trips/{id}/invitations
func (h *InvitationHandler) ListForTrip(w http.ResponseWriter, r *http.Request) {
	tripID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid trip id", err)
		return
	}

	invitations, err := h.invitationService.ForTrip(r.Context(), tripID, UserIDFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, invitationViewsOf(invitations))
}

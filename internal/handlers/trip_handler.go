package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"tripledger/internal/service"
)

// TripHandler handles trip endpoints
type TripHandler struct {
	tripService *service.TripService
}

// NewTripHandler creates a new trip handler
func NewTripHandler(tripService *service.TripService) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// Create handles POST /trips
func (h *TripHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	trip, err := h.tripService.CreateTrip(r.Context(), req.Name, UserIDFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, tripViewOf(trip))
}

// Get handles GET /trips/{id}
func (h *TripHandler) Get(w http.ResponseWriter, r *http.Request) {
	tripID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid trip id", err)
		return
	}

	trip, err := h.tripService.GetTrip(r.Context(), tripID, UserIDFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tripViewOf(trip))
}

// List handles GET /trips
func (h *TripHandler) List(w http.ResponseWriter, r *http.Request) {
	trips, err := h.tripService.GetUserTrips(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tripViewsOf(trips))
}

// pathID parses a numeric path value.
func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}

package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/askelund/tripdates/internal/domain"
)

// createTripRequest is the JSON body for POST /trips.
// Dates are "2006-01-02" strings. start_date is required for hosted trips
// and ignored for collaborative ones.
type createTripRequest struct {
	Name           string `json:"name"`
	Kind           string `json:"kind,omitempty"`
	LeaderID       string `json:"leader_id"`
	TripLengthDays int    `json:"trip_length_days"`
	StartBound     string `json:"start_bound,omitempty"`
	EndBound       string `json:"end_bound,omitempty"`
	StartDate      string `json:"start_date,omitempty"`
}

// tripResponse is the JSON shape of a trip in every response.
type tripResponse struct {
	ID             uuid.UUID          `json:"id"`
	Name           string             `json:"name"`
	Kind           domain.TripKind    `json:"kind"`
	LeaderID       uuid.UUID          `json:"leader_id"`
	TripLengthDays int                `json:"trip_length_days"`
	StartBound     string             `json:"start_bound"`
	EndBound       string             `json:"end_bound"`
	Status         domain.TripStatus  `json:"status"`
	LockedStart    *string            `json:"locked_start,omitempty"`
	LockedEnd      *string            `json:"locked_end,omitempty"`
	Ballot         []domain.Candidate `json:"ballot,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// handleCreateTrip handles POST /trips.
func (s *Server) handleCreateTrip(w http.ResponseWriter, r *http.Request) {
	var req createTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid JSON body")
		return
	}

	trip, err := requestToTrip(req)
	if err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	created, err := s.trips.Create(r.Context(), trip)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, tripToResponse(created))
}

// handleListTrips handles GET /trips.
func (s *Server) handleListTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := s.trips.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	data := make([]tripResponse, len(trips))
	for i, t := range trips {
		data[i] = tripToResponse(t)
	}
	respondJSON(w, http.StatusOK, data)
}

// handleGetTrip handles GET /trips/{tripID}.
func (s *Server) handleGetTrip(w http.ResponseWriter, r *http.Request) {
	id, err := tripID(r)
	if err != nil {
		respondBadRequest(w, "invalid trip id")
		return
	}

	trip, err := s.trips.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, tripToResponse(trip))
}

// handleDeleteTrip handles DELETE /trips/{tripID}.
func (s *Server) handleDeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, err := tripID(r)
	if err != nil {
		respondBadRequest(w, "invalid trip id")
		return
	}

	if err := s.trips.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- mapping helpers --------------------------------------------------------

// requestToTrip converts a createTripRequest into a domain.Trip, parsing
// the date strings and leader UUID. Field-level business validation stays
// in the service; this only rejects bodies the service can't interpret.
func requestToTrip(req createTripRequest) (domain.Trip, error) {
	trip := domain.Trip{
		Name:           req.Name,
		Kind:           domain.TripKind(req.Kind),
		TripLengthDays: req.TripLengthDays,
	}

	if req.LeaderID != "" {
		leader, err := uuid.Parse(req.LeaderID)
		if err != nil {
			return domain.Trip{}, errInvalidField("leader_id")
		}
		trip.LeaderID = leader
	}
	if req.StartBound != "" {
		d, err := parseDate(req.StartBound)
		if err != nil {
			return domain.Trip{}, errInvalidField("start_bound")
		}
		trip.StartBound = d
	}
	if req.EndBound != "" {
		d, err := parseDate(req.EndBound)
		if err != nil {
			return domain.Trip{}, errInvalidField("end_bound")
		}
		trip.EndBound = d
	}
	if req.StartDate != "" {
		d, err := parseDate(req.StartDate)
		if err != nil {
			return domain.Trip{}, errInvalidField("start_date")
		}
		trip.LockedStart = &d
	}

	return trip, nil
}

type fieldError string

func errInvalidField(name string) error { return fieldError(name) }

func (f fieldError) Error() string { return "invalid " + string(f) + " value" }

// tripToResponse converts a domain.Trip into its JSON shape, formatting
// dates as date-only strings.
func tripToResponse(t domain.Trip) tripResponse {
	resp := tripResponse{
		ID:             t.ID,
		Name:           t.Name,
		Kind:           t.Kind,
		LeaderID:       t.LeaderID,
		TripLengthDays: t.TripLengthDays,
		StartBound:     t.StartBound.Format(time.DateOnly),
		EndBound:       t.EndBound.Format(time.DateOnly),
		Status:         t.Status,
		Ballot:         t.Ballot,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
	if t.LockedStart != nil {
		ls := t.LockedStart.Format(time.DateOnly)
		resp.LockedStart = &ls
	}
	if t.LockedEnd != nil {
		le := t.LockedEnd.Format(time.DateOnly)
		resp.LockedEnd = &le
	}
	return resp
}

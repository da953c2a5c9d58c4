package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/askelund/tripdates/internal/domain"
)

// handleValidStarts handles GET /trips/{tripID}/valid-starts.
// Returns every date that can start an in-bounds window, as date strings.
func (s *Server) handleValidStarts(w http.ResponseWriter, r *http.Request) {
	id, err := tripID(r)
	if err != nil {
		respondBadRequest(w, "invalid trip id")
		return
	}

	starts, err := s.schedule.ValidStarts(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	out := make([]string, len(starts))
	for i, d := range starts {
		out[i] = d.Format(time.DateOnly)
	}
	respondJSON(w, http.StatusOK, map[string][]string{"valid_starts": out})
}

// submitPickRequest is the JSON body for PUT /trips/{tripID}/picks/{rank}.
type submitPickRequest struct {
	StartDate string `json:"start_date"`
}

// pickResponse is the JSON shape of a stored pick. The window end is
// derived from the trip length, never stored, so only the start appears.
type pickResponse struct {
	TripID    string `json:"trip_id"`
	MemberID  string `json:"member_id"`
	Rank      int    `json:"rank"`
	StartDate string `json:"start_date"`
}

// handleSubmitPick handles PUT /trips/{tripID}/picks/{rank}.
// The rank (1 love, 2 can, 3 might) is the path parameter; upserting the
// same rank replaces the member's earlier pick at that rank.
func (s *Server) handleSubmitPick(w http.ResponseWriter, r *http.Request) {
	id, err := tripID(r)
	if err != nil {
		respondBadRequest(w, "invalid trip id")
		return
	}
	member, err := memberID(r)
	if err != nil {
		respondBadRequest(w, "missing or invalid X-Member-ID header")
		return
	}
	rank, err := strconv.Atoi(chi.URLParam(r, "rank"))
	if err != nil {
		respondBadRequest(w, "invalid rank")
		return
	}

	var req submitPickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid JSON body")
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		respondBadRequest(w, "invalid start_date value")
		return
	}

	pick, err := s.schedule.SubmitPick(r.Context(), id, member, domain.Rank(rank), start)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, pickResponse{
		TripID:    pick.TripID.String(),
		MemberID:  pick.MemberID.String(),
		Rank:      int(pick.Rank),
		StartDate: pick.StartDate.Format(time.DateOnly),
	})
}

// handleClearPicks handles DELETE /trips/{tripID}/picks.
// Removes all of the calling member's picks so they can start over.
func (s *Server) handleClearPicks(w http.ResponseWriter, r *http.Request) {
	id, err := tripID(r)
	if err != nil {
		respondBadRequest(w, "invalid trip id")
		return
	}
	member, err := memberID(r)
	if err != nil {
		respondBadRequest(w, "missing or invalid X-Member-ID header")
		return
	}

	if err := s.schedule.ClearPicks(r.Context(), id, member); err != nil {
		respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// submitVoteRequest is the JSON body for PUT /trips/{tripID}/vote.
type submitVoteRequest struct {
	OptionKey string `json:"option_key"`
}

// handleSubmitVote handles PUT /trips/{tripID}/vote.
func (s *Server) handleSubmitVote(w http.ResponseWriter, r *http.Request) {
	id, err := tripID(r)
	if err != nil {
		respondBadRequest(w, "invalid trip id")
		return
	}
	member, err := memberID(r)
	if err != nil {
		respondBadRequest(w, "missing or invalid X-Member-ID header")
		return
	}

	var req submitVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid JSON body")
		return
	}

	vote, err := s.schedule.SubmitVote(r.Context(), id, member, req.OptionKey)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"trip_id":    vote.TripID.String(),
		"member_id":  vote.MemberID.String(),
		"option_key": vote.OptionKey,
	})
}

// handleIntensity handles GET /trips/{tripID}/intensity.
// ?members=N supplies the active-member count for normalization; when it is
// absent the distinct pick-submitting member count is used.
func (s *Server) handleIntensity(w http.ResponseWriter, r *http.Request) {
	id, err := tripID(r)
	if err != nil {
		respondBadRequest(w, "invalid trip id")
		return
	}

	members := 0
	if v := r.URL.Query().Get("members"); v != "" {
		members, err = strconv.Atoi(v)
		if err != nil {
			respondBadRequest(w, "invalid members value")
			return
		}
	}

	intensity, err := s.schedule.DayIntensity(r.Context(), id, members)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]map[string]float64{"intensity": intensity})
}

// handleCandidates handles GET /trips/{tripID}/candidates.
// ?k=N bounds the list; the default is the standard ballot size.
func (s *Server) handleCandidates(w http.ResponseWriter, r *http.Request) {
	id, err := tripID(r)
	if err != nil {
		respondBadRequest(w, "invalid trip id")
		return
	}

	k := 0
	if v := r.URL.Query().Get("k"); v != "" {
		k, err = strconv.Atoi(v)
		if err != nil {
			respondBadRequest(w, "invalid k value")
			return
		}
	}

	candidates, err := s.schedule.Candidates(r.Context(), id, k)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string][]domain.Candidate{"candidates": candidates})
}

// handleProgress handles GET /trips/{tripID}/progress.
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	id, err := tripID(r)
	if err != nil {
		respondBadRequest(w, "invalid trip id")
		return
	}

	progress, err := s.schedule.Progress(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, progress)
}

// handleOpenVoting handles POST /trips/{tripID}/voting.
// Leader only: freezes the ballot and opens the vote.
func (s *Server) handleOpenVoting(w http.ResponseWriter, r *http.Request) {
	id, err := tripID(r)
	if err != nil {
		respondBadRequest(w, "invalid trip id")
		return
	}
	caller, err := memberID(r)
	if err != nil {
		respondBadRequest(w, "missing or invalid X-Member-ID header")
		return
	}

	trip, err := s.schedule.OpenVoting(r.Context(), id, caller)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, tripToResponse(trip))
}

// lockRequest is the JSON body for POST /trips/{tripID}/lock.
type lockRequest struct {
	OptionKey string `json:"option_key"`
}

// handleLock handles POST /trips/{tripID}/lock.
// Leader only: irrevocably fixes the trip's dates to a ballot option.
func (s *Server) handleLock(w http.ResponseWriter, r *http.Request) {
	id, err := tripID(r)
	if err != nil {
		respondBadRequest(w, "invalid trip id")
		return
	}
	caller, err := memberID(r)
	if err != nil {
		respondBadRequest(w, "missing or invalid X-Member-ID header")
		return
	}

	var req lockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid JSON body")
		return
	}

	trip, err := s.schedule.Lock(r.Context(), id, caller, req.OptionKey)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, tripToResponse(trip))
}

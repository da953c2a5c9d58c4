// Package handler implements the HTTP surface of the date-consensus API.
// All handlers are methods on Server. Methods are split into files by
// resource (trip.go, schedule.go, health.go) but share the same Server
// struct so they can access its dependencies.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/askelund/tripdates/internal/domain"
	"github.com/askelund/tripdates/spec"
)

// TripServicer defines the trip lifecycle operations the handler depends
// on. Defining the interface here, in the consumer package, lets handler
// tests inject a mock without touching the database or service layer.
type TripServicer interface {
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	List(ctx context.Context) ([]domain.Trip, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ScheduleServicer defines the consensus-flow operations the handler
// depends on.
type ScheduleServicer interface {
	ValidStarts(ctx context.Context, tripID uuid.UUID) ([]time.Time, error)
	SubmitPick(ctx context.Context, tripID, memberID uuid.UUID, rank domain.Rank, start time.Time) (domain.Pick, error)
	ClearPicks(ctx context.Context, tripID, memberID uuid.UUID) error
	SubmitVote(ctx context.Context, tripID, memberID uuid.UUID, optionKey string) (domain.Vote, error)
	DayIntensity(ctx context.Context, tripID uuid.UUID, activeMembers int) (map[string]float64, error)
	Candidates(ctx context.Context, tripID uuid.UUID, k int) ([]domain.Candidate, error)
	OpenVoting(ctx context.Context, tripID, callerID uuid.UUID) (domain.Trip, error)
	Lock(ctx context.Context, tripID, callerID uuid.UUID, optionKey string) (domain.Trip, error)
	Progress(ctx context.Context, tripID uuid.UUID) (domain.Progress, error)
}

// Server holds the handler dependencies for all API endpoints.
type Server struct {
	trips    TripServicer
	schedule ScheduleServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(trips TripServicer, schedule ScheduleServicer) *Server {
	return &Server{trips: trips, schedule: schedule}
}

// Routes returns the chi router for the full API surface.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/openapi.yaml", s.handleOpenAPI)

	r.Route("/trips", func(r chi.Router) {
		r.Post("/", s.handleCreateTrip)
		r.Get("/", s.handleListTrips)

		r.Route("/{tripID}", func(r chi.Router) {
			r.Get("/", s.handleGetTrip)
			r.Delete("/", s.handleDeleteTrip)

			r.Get("/valid-starts", s.handleValidStarts)
			r.Get("/intensity", s.handleIntensity)
			r.Get("/candidates", s.handleCandidates)
			r.Get("/progress", s.handleProgress)

			r.Put("/picks/{rank}", s.handleSubmitPick)
			r.Delete("/picks", s.handleClearPicks)
			r.Put("/vote", s.handleSubmitVote)

			r.Post("/voting", s.handleOpenVoting)
			r.Post("/lock", s.handleLock)
		})
	})

	return r
}

// handleOpenAPI serves the embedded API document. Serving it from the
// binary means the document and the running code are always in sync.
func (s *Server) handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(spec.OpenAPI)
}

// tripID extracts and parses the {tripID} path parameter.
func tripID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "tripID"))
}

// memberID reads the caller's member identity from the X-Member-ID header.
// Identity and membership are vouched for by an upstream service; this API
// trusts the header it is handed.
func memberID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(r.Header.Get("X-Member-ID"))
}

// parseDate parses a "2006-01-02" date into a UTC midnight time.
func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(time.DateOnly, s, time.UTC)
}

// Package service contains the business logic for the date-consensus API.
// Services validate inputs, enforce the trip state machine, and orchestrate
// repo calls. No SQL lives here — services depend on repo interfaces, not
// implementations.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/askelund/tripdates/internal/domain"
	"github.com/askelund/tripdates/internal/repo"
)

// TripService implements business logic for trip lifecycle operations.
type TripService struct {
	trips repo.TripRepo
}

// NewTripService constructs a TripService backed by the provided TripRepo.
func NewTripService(r repo.TripRepo) *TripService {
	return &TripService{trips: r}
}

// Create validates and persists a new trip.
//
// Collaborative trips start in the proposed phase with no locked dates.
// Hosted trips carry fixed dates chosen by the creator: they are persisted
// directly in the locked phase and never enter the consensus flow.
//
// A range too short to fit a single window fails here, at creation — never
// later during scheduling.
func (s *TripService) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	if strings.TrimSpace(trip.Name) == "" {
		return domain.Trip{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if trip.LeaderID == uuid.Nil {
		return domain.Trip{}, fmt.Errorf("%w: leader_id is required", domain.ErrValidation)
	}
	if trip.TripLengthDays < 1 {
		return domain.Trip{}, fmt.Errorf("%w: trip_length_days must be at least 1", domain.ErrValidation)
	}
	if trip.Kind == "" {
		trip.Kind = domain.KindCollaborative
	}

	trip.StartBound = domain.DateOnly(trip.StartBound)
	trip.EndBound = domain.DateOnly(trip.EndBound)
	trip.Ballot = nil

	switch trip.Kind {
	case domain.KindHosted:
		if trip.LockedStart == nil {
			return domain.Trip{}, fmt.Errorf("%w: hosted trips require a start date", domain.ErrValidation)
		}
		start := domain.DateOnly(*trip.LockedStart)
		end := trip.WindowEnd(start)
		trip.LockedStart = &start
		trip.LockedEnd = &end
		// Hosted trips never had a searchable range; the bounds collapse
		// to the fixed window unless the caller supplied wider ones.
		if trip.StartBound.IsZero() || trip.EndBound.IsZero() {
			trip.StartBound = start
			trip.EndBound = end
		}
		trip.Status = domain.StatusLocked

	case domain.KindCollaborative:
		if !trip.BoundsAdmitWindow() {
			return domain.Trip{}, fmt.Errorf(
				"%w: range %s to %s cannot fit a %d-day window",
				domain.ErrValidation,
				trip.StartBound.Format(time.DateOnly), trip.EndBound.Format(time.DateOnly),
				trip.TripLengthDays)
		}
		trip.Status = domain.StatusProposed
		trip.LockedStart = nil
		trip.LockedEnd = nil

	default:
		return domain.Trip{}, fmt.Errorf("%w: unknown trip kind %q", domain.ErrValidation, trip.Kind)
	}

	result, err := s.trips.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns a single trip by ID.
// Returns domain.ErrNotFound if it does not exist.
func (s *TripService) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	result, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return result, nil
}

// List returns all trips.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TripService) List(ctx context.Context) ([]domain.Trip, error) {
	trips, err := s.trips.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.List: %w", err)
	}
	if trips == nil {
		return []domain.Trip{}, nil
	}
	return trips, nil
}

// Delete removes a trip and everything it owns (picks, votes, ballot).
func (s *TripService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.trips.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	return nil
}

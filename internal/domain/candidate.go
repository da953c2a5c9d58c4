package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Candidate is a derived, scored window produced by the scoring engine.
// It is never persisted on its own; the set offered for voting is frozen
// onto the trip as the ballot when voting opens.
type Candidate struct {
	// OptionKey identifies the window as "startISO|endISO",
	// e.g. "2025-06-01|2025-06-03".
	OptionKey string
	StartDate time.Time
	EndDate   time.Time
	// Score is the weighted sum of all picks whose start matches exactly.
	Score int
	// LoveCount/CanCount/MightCount break Score down by rank for display.
	LoveCount  int
	CanCount   int
	MightCount int
}

// OptionKeyFor builds the canonical option key for a window.
func OptionKeyFor(start, end time.Time) string {
	return start.Format(time.DateOnly) + "|" + end.Format(time.DateOnly)
}

// ParseOptionKey splits an option key back into its start and end dates.
// Returns ErrInvalidOption when the key is malformed or the dates are out
// of order.
func ParseOptionKey(key string) (start, end time.Time, err error) {
	parts := strings.Split(key, "|")
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: malformed key %q", ErrInvalidOption, key)
	}
	start, err = time.ParseInLocation(time.DateOnly, parts[0], time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: bad start in key %q", ErrInvalidOption, key)
	}
	end, err = time.ParseInLocation(time.DateOnly, parts[1], time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: bad end in key %q", ErrInvalidOption, key)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end before start in key %q", ErrInvalidOption, key)
	}
	return start, end, nil
}

// candidateJSON is the wire/storage shape of a Candidate. Dates are encoded
// as plain "2006-01-02" strings so the jsonb ballot column and the HTTP
// responses stay human-readable and timezone-free.
type candidateJSON struct {
	OptionKey  string `json:"option_key"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Score      int    `json:"score"`
	LoveCount  int    `json:"love_count"`
	CanCount   int    `json:"can_count"`
	MightCount int    `json:"might_count"`
}

// MarshalJSON encodes the candidate with date-only timestamps.
func (c Candidate) MarshalJSON() ([]byte, error) {
	return json.Marshal(candidateJSON{
		OptionKey:  c.OptionKey,
		StartDate:  c.StartDate.Format(time.DateOnly),
		EndDate:    c.EndDate.Format(time.DateOnly),
		Score:      c.Score,
		LoveCount:  c.LoveCount,
		CanCount:   c.CanCount,
		MightCount: c.MightCount,
	})
}

// UnmarshalJSON decodes a candidate stored by MarshalJSON.
func (c *Candidate) UnmarshalJSON(data []byte) error {
	var raw candidateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	start, err := time.ParseInLocation(time.DateOnly, raw.StartDate, time.UTC)
	if err != nil {
		return fmt.Errorf("candidate start_date: %w", err)
	}
	end, err := time.ParseInLocation(time.DateOnly, raw.EndDate, time.UTC)
	if err != nil {
		return fmt.Errorf("candidate end_date: %w", err)
	}
	*c = Candidate{
		OptionKey:  raw.OptionKey,
		StartDate:  start,
		EndDate:    end,
		Score:      raw.Score,
		LoveCount:  raw.LoveCount,
		CanCount:   raw.CanCount,
		MightCount: raw.MightCount,
	}
	return nil
}

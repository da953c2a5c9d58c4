package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// DefaultCandidateLimit is the number of top-scored windows returned when
// the caller does not ask for a specific k.
const DefaultCandidateLimit = 3

// DayIntensity computes the visualization heat value for every calendar day
// in [startBound, endBound]: the sum of weight(rank) over every pick whose
// window contains the day, normalized to 0..1 by 3 * activeMembers (every
// member stacking their strongest pick on the same day).
//
// Keys are "2006-01-02" strings. The output is advisory only; candidate
// ranking, not the intensity map, is authoritative for locking.
func DayIntensity(t Trip, picks []Pick, activeMembers int) map[string]float64 {
	expectedMax := float64(3 * activeMembers)

	out := make(map[string]float64)
	start := DateOnly(t.StartBound)
	end := DateOnly(t.EndBound)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		sum := 0
		for _, p := range picks {
			if p.Covers(d, t.TripLengthDays) {
				sum += p.Rank.Weight()
			}
		}
		v := 0.0
		if expectedMax > 0 {
			v = float64(sum) / expectedMax
			if v > 1 {
				v = 1
			}
		}
		out[d.Format(time.DateOnly)] = v
	}
	return out
}

// RankCandidates computes the authoritative candidate ranking: for each
// valid window start s, score(s) is the weighted sum over picks whose start
// equals s exactly (windows are fixed-length, so matching is by identical
// start, not overlap). Windows nobody picked are omitted; zero picks yield
// an empty list, which callers treat as "no consensus yet".
//
// The top k candidates are returned sorted by score descending, ties broken
// by earliest start date so the ranking is deterministic. k <= 0 falls back
// to DefaultCandidateLimit.
func RankCandidates(t Trip, picks []Pick, k int) []Candidate {
	if k <= 0 {
		k = DefaultCandidateLimit
	}

	byStart := make(map[time.Time]*Candidate)
	for s := range t.ValidStarts() {
		for _, p := range picks {
			if !DateOnly(p.StartDate).Equal(s) {
				continue
			}
			c, ok := byStart[s]
			if !ok {
				end := t.WindowEnd(s)
				c = &Candidate{
					OptionKey: OptionKeyFor(s, end),
					StartDate: s,
					EndDate:   end,
				}
				byStart[s] = c
			}
			c.Score += p.Rank.Weight()
			switch p.Rank {
			case RankLove:
				c.LoveCount++
			case RankCan:
				c.CanCount++
			case RankMight:
				c.MightCount++
			}
		}
	}

	ranked := make([]Candidate, 0, len(byStart))
	for _, c := range byStart {
		ranked = append(ranked, *c)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].StartDate.Before(ranked[j].StartDate)
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}

// DistinctMembers counts the unique members represented in picks. Used as
// the normalization fallback when the caller does not supply an active
// member count.
func DistinctMembers(picks []Pick) int {
	seen := make(map[uuid.UUID]struct{}, len(picks))
	for _, p := range picks {
		seen[p.MemberID] = struct{}{}
	}
	return len(seen)
}

// Package scoring aggregates workout logs and selects a challenge winner.
// It is pure application logic: the caller loads the logs, scoring decides.
package scoring

import (
	"time"

	"fitArenaAPI/internal/apperr"
	"fitArenaAPI/internal/metric"
)

// LogEntry is the slice of a workout log that finalization needs.
type LogEntry struct {
	UserID   string
	Volume   float64
	LoggedAt time.Time
}

// Standing is one participant's final aggregate.
type Standing struct {
	UserID string
	Total  float64
	// ReachedAt is when the participant's running total arrived at its final
	// value, i.e. the timestamp of their last contributing log. It breaks
	// ties between equal aggregates: whoever got there first wins.
	ReachedAt time.Time
}

// Aggregate groups logs by user and sums volumes.
func Aggregate(logs []LogEntry) []Standing {
	totals := make(map[string]*Standing)
	var order []string
	for _, entry := range logs {
		s, ok := totals[entry.UserID]
		if !ok {
			s = &Standing{UserID: entry.UserID}
			totals[entry.UserID] = s
			order = append(order, entry.UserID)
		}
		s.Total += entry.Volume
		if entry.LoggedAt.After(s.ReachedAt) {
			s.ReachedAt = entry.LoggedAt
		}
	}

	standings := make([]Standing, 0, len(order))
	for _, userID := range order {
		standings = append(standings, *totals[userID])
	}
	return standings
}

// ResolveWinner picks the single winner among the given logs.
//
// Goal gating: when goal is non-nil only participants whose aggregate meets or
// exceeds it remain eligible. The criterion then selects the highest or lowest
// eligible aggregate. Ties are broken by earliest ReachedAt, then by user id,
// so the outcome never depends on iteration order.
func ResolveWinner(logs []LogEntry, goal *float64, criterion metric.Criterion) (Standing, error) {
	if len(logs) == 0 {
		return Standing{}, apperr.ErrNoSubmissions
	}

	standings := Aggregate(logs)

	if goal != nil {
		eligible := standings[:0]
		for _, s := range standings {
			if s.Total >= *goal {
				eligible = append(eligible, s)
			}
		}
		if len(eligible) == 0 {
			return Standing{}, apperr.ErrGoalNotReached
		}
		standings = eligible
	}

	winner := standings[0]
	for _, s := range standings[1:] {
		if beats(s, winner, criterion) {
			winner = s
		}
	}
	return winner, nil
}

func beats(a, b Standing, criterion metric.Criterion) bool {
	if a.Total != b.Total {
		if criterion == metric.CriterionMinTotal {
			return a.Total < b.Total
		}
		return a.Total > b.Total
	}
	if !a.ReachedAt.Equal(b.ReachedAt) {
		return a.ReachedAt.Before(b.ReachedAt)
	}
	return a.UserID < b.UserID
}

package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitArenaAPI/internal/apperr"
	"fitArenaAPI/internal/metric"
)

var base = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func at(hours int) time.Time { return base.Add(time.Duration(hours) * time.Hour) }

func floatPtr(f float64) *float64 { return &f }

func TestResolveWinnerNoLogs(t *testing.T) {
	_, err := ResolveWinner(nil, nil, metric.CriterionMaxTotal)
	assert.ErrorIs(t, err, apperr.ErrNoSubmissions)
}

func TestResolveWinnerHighestTotal(t *testing.T) {
	// User X: 10*20 + 5*10 = 250, user Y: 8*15 = 120.
	logs := []LogEntry{
		{UserID: "user-x", Volume: 200, LoggedAt: at(0)},
		{UserID: "user-y", Volume: 120, LoggedAt: at(1)},
		{UserID: "user-x", Volume: 50, LoggedAt: at(2)},
	}

	winner, err := ResolveWinner(logs, nil, metric.CriterionMaxTotal)
	require.NoError(t, err)
	assert.Equal(t, "user-x", winner.UserID)
	assert.Equal(t, float64(250), winner.Total)
}

func TestResolveWinnerLowestTotal(t *testing.T) {
	// Endurance challenge: 9.0 minutes beats 12.5 minutes.
	logs := []LogEntry{
		{UserID: "user-p", Volume: 12.5, LoggedAt: at(0)},
		{UserID: "user-q", Volume: 9.0, LoggedAt: at(1)},
	}

	winner, err := ResolveWinner(logs, nil, metric.CriterionMinTotal)
	require.NoError(t, err)
	assert.Equal(t, "user-q", winner.UserID)
	assert.Equal(t, 9.0, winner.Total)
}

func TestResolveWinnerGoalGate(t *testing.T) {
	// Goal 5: user A (3) does not qualify, user B (6) does.
	logs := []LogEntry{
		{UserID: "user-a", Volume: 3, LoggedAt: at(0)},
		{UserID: "user-b", Volume: 6, LoggedAt: at(1)},
	}

	winner, err := ResolveWinner(logs, floatPtr(5), metric.CriterionMaxTotal)
	require.NoError(t, err)
	assert.Equal(t, "user-b", winner.UserID)
	assert.GreaterOrEqual(t, winner.Total, float64(5))
}

func TestResolveWinnerGoalNotReached(t *testing.T) {
	logs := []LogEntry{
		{UserID: "user-a", Volume: 3, LoggedAt: at(0)},
		{UserID: "user-b", Volume: 4, LoggedAt: at(1)},
	}

	_, err := ResolveWinner(logs, floatPtr(5), metric.CriterionMaxTotal)
	assert.ErrorIs(t, err, apperr.ErrGoalNotReached)
}

func TestResolveWinnerGoalExactlyMet(t *testing.T) {
	logs := []LogEntry{
		{UserID: "user-a", Volume: 5, LoggedAt: at(0)},
	}

	winner, err := ResolveWinner(logs, floatPtr(5), metric.CriterionMaxTotal)
	require.NoError(t, err)
	assert.Equal(t, "user-a", winner.UserID)
}

func TestTieBreakEarlierFinishWins(t *testing.T) {
	// Both reach 100; user-b got there at hour 2, user-a only at hour 5.
	logs := []LogEntry{
		{UserID: "user-a", Volume: 40, LoggedAt: at(1)},
		{UserID: "user-b", Volume: 100, LoggedAt: at(2)},
		{UserID: "user-a", Volume: 60, LoggedAt: at(5)},
	}

	winner, err := ResolveWinner(logs, nil, metric.CriterionMaxTotal)
	require.NoError(t, err)
	assert.Equal(t, "user-b", winner.UserID)
}

func TestTieBreakIsOrderIndependent(t *testing.T) {
	logs := []LogEntry{
		{UserID: "user-b", Volume: 100, LoggedAt: at(3)},
		{UserID: "user-a", Volume: 100, LoggedAt: at(3)},
	}
	reversed := []LogEntry{logs[1], logs[0]}

	w1, err := ResolveWinner(logs, nil, metric.CriterionMaxTotal)
	require.NoError(t, err)
	w2, err := ResolveWinner(reversed, nil, metric.CriterionMaxTotal)
	require.NoError(t, err)

	// Full tie falls back to the lexicographically smaller user id.
	assert.Equal(t, "user-a", w1.UserID)
	assert.Equal(t, w1.UserID, w2.UserID)
}

func TestAggregateSumsPerUser(t *testing.T) {
	logs := []LogEntry{
		{UserID: "u1", Volume: 1, LoggedAt: at(0)},
		{UserID: "u2", Volume: 2, LoggedAt: at(1)},
		{UserID: "u1", Volume: 3, LoggedAt: at(2)},
	}

	standings := Aggregate(logs)
	require.Len(t, standings, 2)

	byUser := map[string]Standing{}
	for _, s := range standings {
		byUser[s.UserID] = s
	}
	assert.Equal(t, float64(4), byUser["u1"].Total)
	assert.Equal(t, at(2), byUser["u1"].ReachedAt)
	assert.Equal(t, float64(2), byUser["u2"].Total)
}

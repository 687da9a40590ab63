package elo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForWins(t *testing.T) {
	tests := []struct {
		wins int
		want string
	}{
		{0, "Bronze"},
		{2, "Bronze"},
		{3, "Silver"},
		{9, "Silver"},
		{10, "Gold"},
		{24, "Gold"},
		{25, "Diamond"},
		{100, "Diamond"},
	}

	for _, tt := range tests {
		got := ForWins(tt.wins)
		assert.Equal(t, tt.want, got.Name, "wins=%d", tt.wins)
	}
}

func TestForLevel(t *testing.T) {
	assert.Equal(t, "Gold", ForLevel(3).Name)
	assert.Equal(t, "Bronze", ForLevel(0).Name)
	assert.Equal(t, "Bronze", ForLevel(99).Name)
}

func TestLaddersStrictlyIncrease(t *testing.T) {
	ladder := Tiers()
	for i := 1; i < len(ladder); i++ {
		assert.Greater(t, ladder[i].Level, ladder[i-1].Level)
		assert.Greater(t, ladder[i].MinWins, ladder[i-1].MinWins)
	}
}

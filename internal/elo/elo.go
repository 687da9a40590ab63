package elo

// Tier is a rank band earned through challenge wins. Levels are strictly
// increasing, so the leaderboard can sort on the stored level alone.
type Tier struct {
	Level   int    `json:"level"`
	Name    string `json:"name"`
	MinWins int    `json:"min_wins"`
}

var tiers = []Tier{
	{Level: 1, Name: "Bronze", MinWins: 0},
	{Level: 2, Name: "Silver", MinWins: 3},
	{Level: 3, Name: "Gold", MinWins: 10},
	{Level: 4, Name: "Diamond", MinWins: 25},
}

// ForWins returns the highest tier whose win threshold is met.
func ForWins(wins int) Tier {
	current := tiers[0]
	for _, t := range tiers[1:] {
		if wins >= t.MinWins {
			current = t
		}
	}
	return current
}

// ForLevel returns the tier with the given level, defaulting to Bronze for
// anything out of range.
func ForLevel(level int) Tier {
	for _, t := range tiers {
		if t.Level == level {
			return t
		}
	}
	return tiers[0]
}

// Tiers returns the ladder, lowest first.
func Tiers() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return out
}

package services

import "math"

// DefaultKFactor is the fixed Elo K used unless overridden via config.
const DefaultKFactor = 32

// ExpectedScore returns the probability of a beating b under the logistic
// Elo model: 1 / (1 + 10^((b-a)/400)).
func ExpectedScore(ratingA, ratingB int) float64 {
	return 1.0 / (1.0 + math.Pow(10, float64(ratingB-ratingA)/400.0))
}

// EloOutcome computes post-match ratings for a decided face-off.
func EloOutcome(winner, loser, kFactor int) (winnerNew, loserNew int) {
	k := float64(kFactor)
	winnerNew = int(math.Round(float64(winner) + k*(1.0-ExpectedScore(winner, loser))))
	loserNew = int(math.Round(float64(loser) + k*(0.0-ExpectedScore(loser, winner))))
	return winnerNew, loserNew
}

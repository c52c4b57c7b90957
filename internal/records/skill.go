package records

import (
	"math"

	"github.com/mathdrill/backend/internal/models"
)

// DefaultSkill seeds new users in the middle of the 0-100 scale.
const DefaultSkill = 50

// difficultyRatings place each tier on the same 0-100 scale as the
// skill score.
var difficultyRatings = map[models.Difficulty]int{
	models.DifficultyEasy:    25,
	models.DifficultyMedium:  50,
	models.DifficultyHard:    75,
	models.DifficultyExtreme: 90,
}

// ExpectedScore returns the score fraction a user with the given skill
// is expected to reach on a test of the given difficulty rating.
// Uses a sigmoid centered on 0 with scaling factor 12.5.
func ExpectedScore(skill, difficultyRating int) float64 {
	x := float64(skill-difficultyRating) / 12.5
	return 1.0 / (1.0 + math.Exp(-x))
}

// KFactor returns the adjustment strength based on how many tests the
// user has completed.
func KFactor(testsCompleted int) float64 {
	if testsCompleted < 5 {
		return 8.0 // New user: fast convergence
	}
	if testsCompleted < 20 {
		return 5.0 // Intermediate: moderate adjustment
	}
	return 3.0 // Mature: stable, small adjustments
}

// UpdateSkill calculates the updated skill score after a completed
// test. testsCompleted is the count before this test.
func UpdateSkill(currentSkill int, difficulty models.Difficulty, scorePercent, testsCompleted int) int {
	rating, ok := difficultyRatings[difficulty]
	if !ok {
		rating = difficultyRatings[models.DifficultyMedium]
	}

	expected := ExpectedScore(currentSkill, rating)
	actual := float64(scorePercent) / 100.0
	k := KFactor(testsCompleted)

	newSkill := float64(currentSkill) + (actual-expected)*k

	if newSkill < 0 {
		newSkill = 0
	}
	if newSkill > 100 {
		newSkill = 100
	}

	return int(math.Round(newSkill))
}

// RecommendDifficulty maps a skill score onto the tier whose rating it
// has grown past.
func RecommendDifficulty(skill int) models.Difficulty {
	switch {
	case skill < 35:
		return models.DifficultyEasy
	case skill < 60:
		return models.DifficultyMedium
	case skill < 85:
		return models.DifficultyHard
	default:
		return models.DifficultyExtreme
	}
}

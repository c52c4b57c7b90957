package generator

import (
	"strconv"

	"github.com/mathdrill/backend/internal/models"
)

// closeSpreadFactor scales the bounded-random-close offset window per
// difficulty: window is [-max(10, correct*k), +max(10, correct*k)].
var closeSpreadFactor = map[models.Difficulty]float64{
	models.DifficultyEasy:    0.10,
	models.DifficultyMedium:  0.15,
	models.DifficultyHard:    0.20,
	models.DifficultyExtreme: 0.25,
}

// strategy proposes one distractor candidate. A return of (0, false)
// means the strategy cannot apply; it is skipped, not fatal.
type strategy func(g *Generator, correct, factorA, factorB int) (int, bool)

// strategyOrder is fixed per difficulty; first-valid-wins per slot.
var strategyOrder = map[models.Difficulty][]strategy{
	models.DifficultyEasy: {
		offByOne,
		factorPerturbation,
		simpleOffset,
	},
	models.DifficultyMedium: {
		offByOne,
		digitSwap,
		factorPerturbation,
	},
	models.DifficultyHard: {
		digitSwap,
		factorPerturbation,
		complexOffset,
	},
	models.DifficultyExtreme: {
		digitSwap,
		complexOffset,
		factorPerturbation,
	},
}

// GenerateDistractors returns exactly 3 distinct non-negative values,
// none equal to correct. Strategies run in the difficulty's fixed order;
// any shortfall is filled by the bounded-random-close fallback.
func (g *Generator) GenerateDistractors(correct, factorA, factorB int, difficulty models.Difficulty) []int {
	strategies, ok := strategyOrder[difficulty]
	if !ok {
		strategies = strategyOrder[models.DifficultyMedium]
	}

	seen := map[int]bool{correct: true}
	distractors := make([]int, 0, 3)

	accept := func(v int) bool {
		if v < 0 || seen[v] {
			return false
		}
		seen[v] = true
		distractors = append(distractors, v)
		return true
	}

	for _, strat := range strategies {
		if len(distractors) == 3 {
			break
		}
		if v, ok := strat(g, correct, factorA, factorB); ok {
			accept(v)
		}
	}

	// Fallback fills remaining slots. Each draw lands in a bounded
	// window around the correct answer, so it terminates quickly even
	// when earlier strategies collided.
	for len(distractors) < 3 {
		accept(g.randomClose(correct, difficulty))
	}

	return distractors
}

// offByOne proposes correct±1, never negative.
func offByOne(g *Generator, correct, _, _ int) (int, bool) {
	if g.rng.Chance(0.5) && correct >= 1 {
		return correct - 1, true
	}
	return correct + 1, true
}

// digitSwap swaps two adjacent digits of the correct answer at a random
// position. Values with fewer than two digits cannot apply.
func digitSwap(g *Generator, correct, _, _ int) (int, bool) {
	digits := []byte(strconv.Itoa(correct))
	if len(digits) < 2 {
		return 0, false
	}
	i := g.rng.Intn(len(digits) - 1)
	digits[i], digits[i+1] = digits[i+1], digits[i]
	swapped, err := strconv.Atoi(string(digits))
	if err != nil || swapped == correct {
		return 0, false
	}
	return swapped, true
}

// factorPerturbation varies one factor by ±1 and recomputes the product.
func factorPerturbation(g *Generator, _, factorA, factorB int) (int, bool) {
	delta := 1
	if g.rng.Chance(0.5) {
		delta = -1
	}
	var v int
	if g.rng.Chance(0.5) {
		v = (factorA + delta) * factorB
	} else {
		v = factorA * (factorB + delta)
	}
	if v < 0 {
		return 0, false
	}
	return v, true
}

// simpleOffset shifts the correct answer by a small fixed-step amount.
func simpleOffset(g *Generator, correct, _, _ int) (int, bool) {
	offsets := []int{2, 5, 10}
	offset := offsets[g.rng.Intn(len(offsets))]
	if g.rng.Chance(0.5) && correct-offset >= 0 {
		return correct - offset, true
	}
	return correct + offset, true
}

// complexOffset shifts by roughly ten percent of the correct answer.
func complexOffset(g *Generator, correct, _, _ int) (int, bool) {
	step := correct / 10
	if step < 2 {
		step = 2
	}
	offset := g.rng.IntBetween(1, step)
	if g.rng.Chance(0.5) && correct-offset >= 0 {
		return correct - offset, true
	}
	return correct + offset, true
}

// randomClose is the fallback: correct plus a bounded random offset,
// clamped to zero.
func (g *Generator) randomClose(correct int, difficulty models.Difficulty) int {
	k, ok := closeSpreadFactor[difficulty]
	if !ok {
		k = closeSpreadFactor[models.DifficultyMedium]
	}
	spread := int(float64(correct) * k)
	if spread < 10 {
		spread = 10
	}
	v := correct + g.rng.IntBetween(-spread, spread)
	if v < 0 {
		v = 0
	}
	return v
}

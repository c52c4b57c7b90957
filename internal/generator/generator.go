// Package generator produces multiplication questions with one correct
// answer and three plausible distractors.
package generator

import (
	"time"

	"github.com/google/uuid"
	"github.com/mathdrill/backend/internal/models"
	"github.com/mathdrill/backend/internal/random"
)

// DefaultMaxAttempts bounds duplicate-avoidance retries. When exhausted
// the last candidate is returned even if it repeats an earlier pair.
const DefaultMaxAttempts = 50

// historyCap bounds the duplicate-avoidance history.
const historyCap = 200

// defaultTimeLimits holds per-question time limits in seconds by difficulty.
var defaultTimeLimits = map[models.Difficulty]int{
	models.DifficultyEasy:    15,
	models.DifficultyMedium:  20,
	models.DifficultyHard:    30,
	models.DifficultyExtreme: 45,
}

// factorRange is the inclusive bound factors are drawn from.
type factorRange struct {
	Min, Max int
}

var difficultyRanges = map[models.Difficulty]factorRange{
	models.DifficultyEasy:    {10, 20},
	models.DifficultyMedium:  {10, 50},
	models.DifficultyHard:    {10, 100},
	models.DifficultyExtreme: {50, 99},
}

// Options controls a single Generate call. Explicit factors win over
// explicit ranges, which win over the difficulty mapping.
type Options struct {
	Difficulty      models.Difficulty
	FactorA         *int
	FactorB         *int
	RangeMin        *int
	RangeMax        *int
	AvoidDuplicates bool
	MaxAttempts     int
}

// Generator owns a random source and a bounded history of generated
// questions used for duplicate avoidance. Not safe for concurrent use.
type Generator struct {
	rng     *random.Source
	history []models.Question
}

func New() *Generator {
	return &Generator{rng: random.New()}
}

// History returns the questions generated so far, oldest first.
func (g *Generator) History() []models.Question {
	return g.history
}

// ClearHistory drops the duplicate-avoidance history.
func (g *Generator) ClearHistory() {
	g.history = nil
}

// Generate produces a valid question. It never fails: when the
// duplicate-avoidance retry bound is exhausted, the last candidate is
// accepted even if its factor pair repeats.
func (g *Generator) Generate(opts Options) models.Question {
	if opts.Difficulty == "" {
		opts.Difficulty = models.DifficultyMedium
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}

	var factorA, factorB int
	for attempt := 0; attempt < opts.MaxAttempts; attempt++ {
		factorA, factorB = g.pickFactors(opts)
		if !opts.AvoidDuplicates || !g.seenPair(factorA, factorB) {
			break
		}
	}

	q := g.build(factorA, factorB, opts.Difficulty)
	g.remember(q)
	return q
}

// GenerateBatch produces count questions under the same options.
func (g *Generator) GenerateBatch(count int, opts Options) []models.Question {
	questions := make([]models.Question, 0, count)
	for i := 0; i < count; i++ {
		questions = append(questions, g.Generate(opts))
	}
	return questions
}

// pickFactors draws the two factors: explicit values, explicit range, or
// a rule-based draw within the difficulty's range.
func (g *Generator) pickFactors(opts Options) (int, int) {
	if opts.FactorA != nil && opts.FactorB != nil {
		return *opts.FactorA, *opts.FactorB
	}

	bounds := difficultyRanges[opts.Difficulty]
	if opts.RangeMin != nil && opts.RangeMax != nil {
		bounds = factorRange{*opts.RangeMin, *opts.RangeMax}
	}

	rule := g.pickRule(opts.Difficulty)
	a := g.factorByRule(rule, bounds)
	b := g.factorByRule(rule, bounds)

	if opts.FactorA != nil {
		a = *opts.FactorA
	}
	if opts.FactorB != nil {
		b = *opts.FactorB
	}
	return a, b
}

// pickRule chooses a factor-selection rule. Extreme difficulty always
// uses the fully-random rule.
func (g *Generator) pickRule(difficulty models.Difficulty) models.FactorRule {
	if difficulty == models.DifficultyExtreme {
		return models.RuleFullRandom
	}
	rules := []models.FactorRule{models.RuleTimesEleven, models.RuleDigitOne, models.RuleFullRandom}
	return rules[g.rng.Intn(len(rules))]
}

func (g *Generator) factorByRule(rule models.FactorRule, bounds factorRange) int {
	switch rule {
	case models.RuleTimesEleven:
		// Multiples of 11 have an easy mental shortcut; mix them in
		// half the time so both factors are not always 11-multiples.
		if g.rng.Chance(0.5) {
			lo := (bounds.Min + 10) / 11
			hi := bounds.Max / 11
			if hi >= lo && lo > 0 {
				return 11 * g.rng.IntBetween(lo, hi)
			}
		}
		return g.rng.IntBetween(bounds.Min, bounds.Max)
	case models.RuleDigitOne:
		// A factor with a 1 in the tens or ones place.
		for attempt := 0; attempt < 20; attempt++ {
			n := g.rng.IntBetween(bounds.Min, bounds.Max)
			if n%10 == 1 || (n/10)%10 == 1 {
				return n
			}
		}
		return g.rng.IntBetween(bounds.Min, bounds.Max)
	default:
		return g.rng.IntBetween(bounds.Min, bounds.Max)
	}
}

// build assembles the question: product, distractors, shuffled options.
func (g *Generator) build(factorA, factorB int, difficulty models.Difficulty) models.Question {
	correct := factorA * factorB
	distractors := g.GenerateDistractors(correct, factorA, factorB, difficulty)

	values := append([]int{correct}, distractors...)
	g.rng.ShuffleInts(values)

	options := make([]models.Option, len(values))
	for i, v := range values {
		options[i] = models.Option{
			Value:     v,
			Position:  i + 1,
			IsCorrect: v == correct,
		}
	}

	return models.Question{
		ID:            uuid.NewString(),
		FactorA:       factorA,
		FactorB:       factorB,
		CorrectAnswer: correct,
		Options:       options,
		Difficulty:    difficulty,
		TimeLimitSec:  defaultTimeLimits[difficulty],
		CreatedAt:     time.Now(),
	}
}

// seenPair reports whether the unordered factor pair already appears in
// the history.
func (g *Generator) seenPair(a, b int) bool {
	for _, q := range g.history {
		if (q.FactorA == a && q.FactorB == b) || (q.FactorA == b && q.FactorB == a) {
			return true
		}
	}
	return false
}

func (g *Generator) remember(q models.Question) {
	g.history = append(g.history, q)
	if len(g.history) > historyCap {
		g.history = g.history[len(g.history)-historyCap:]
	}
}

package models

import "time"

type Difficulty string

const (
	DifficultyEasy    Difficulty = "easy"
	DifficultyMedium  Difficulty = "medium"
	DifficultyHard    Difficulty = "hard"
	DifficultyExtreme Difficulty = "extreme"
)

var ValidDifficulties = map[Difficulty]bool{
	DifficultyEasy:    true,
	DifficultyMedium:  true,
	DifficultyHard:    true,
	DifficultyExtreme: true,
}

// FactorRule names the strategy used to pick the two factors.
type FactorRule string

const (
	RuleTimesEleven FactorRule = "times_eleven"
	RuleDigitOne    FactorRule = "digit_one"
	RuleFullRandom  FactorRule = "full_random"
)

// ── Core Structs ───────────────────────────────────────

// Option is one of the four answer choices presented for a question.
// Exactly one option per question carries IsCorrect.
type Option struct {
	Value     int  `json:"value"`
	Position  int  `json:"position"` // display slot, 1..4
	IsCorrect bool `json:"is_correct"`
}

// Question is an immutable multiplication problem with its answer choices.
// The selected answer, correctness and time spent live in the session's
// answer log, never on the question itself.
type Question struct {
	ID            string     `json:"id"`
	FactorA       int        `json:"factor_a"`
	FactorB       int        `json:"factor_b"`
	CorrectAnswer int        `json:"correct_answer"`
	Options       []Option   `json:"options"`
	Difficulty    Difficulty `json:"difficulty"`
	TimeLimitSec  int        `json:"time_limit_sec"`
	CreatedAt     time.Time  `json:"created_at"`
}

// CorrectOption returns the option flagged correct, or nil if the
// question is structurally broken.
func (q *Question) CorrectOption() *Option {
	for i := range q.Options {
		if q.Options[i].IsCorrect {
			return &q.Options[i]
		}
	}
	return nil
}

// ── Drill Types (strip answers for serving) ────────────

// DrillQuestion is a question as served to a client mid-session:
// same values in display order, no correctness flags.
type DrillQuestion struct {
	ID           string     `json:"id"`
	FactorA      int        `json:"factor_a"`
	FactorB      int        `json:"factor_b"`
	Values       []int      `json:"values"`
	Difficulty   Difficulty `json:"difficulty"`
	TimeLimitSec int        `json:"time_limit_sec"`
}

func (q *Question) ToDrillQuestion() DrillQuestion {
	values := make([]int, len(q.Options))
	for i, opt := range q.Options {
		values[i] = opt.Value
	}
	return DrillQuestion{
		ID:           q.ID,
		FactorA:      q.FactorA,
		FactorB:      q.FactorB,
		Values:       values,
		Difficulty:   q.Difficulty,
		TimeLimitSec: q.TimeLimitSec,
	}
}

// ── Validation Types ───────────────────────────────────

type ValidationReport struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors,omitempty"`
}

// ── Export/Import Types ────────────────────────────────

type ExportEnvelope struct {
	Version    int              `json:"version"`
	ExportedAt time.Time        `json:"exported_at"`
	Questions  []ExportQuestion `json:"questions"`
}

type ExportQuestion struct {
	FactorA       int            `json:"factor_a"`
	FactorB       int            `json:"factor_b"`
	CorrectAnswer int            `json:"correct_answer"`
	Difficulty    Difficulty     `json:"difficulty"`
	TimeLimitSec  int            `json:"time_limit_sec"`
	Options       []ExportOption `json:"options"`
}

type ExportOption struct {
	Value     int  `json:"value"`
	Position  int  `json:"position"`
	IsCorrect bool `json:"is_correct"`
}

// ── Request/Response Types ─────────────────────────────

type GenerateQuestionRequest struct {
	Difficulty      Difficulty `json:"difficulty"`
	Count           int        `json:"count"`
	AvoidDuplicates bool       `json:"avoid_duplicates"`
}

type QuestionListResponse struct {
	Questions []Question `json:"questions"`
	Total     int        `json:"total"`
}

type ImportResult struct {
	TotalInPayload int `json:"total_in_payload"`
	Imported       int `json:"imported"`
	Skipped        int `json:"skipped"`
}

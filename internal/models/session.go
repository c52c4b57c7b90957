package models

import "time"

type TimerMode string

const (
	TimerOff         TimerMode = "off"
	TimerPerQuestion TimerMode = "per_question"
	TimerTotal       TimerMode = "total_time"
)

var ValidTimerModes = map[TimerMode]bool{
	TimerOff:         true,
	TimerPerQuestion: true,
	TimerTotal:       true,
}

type TestMode string

const (
	ModePractice TestMode = "practice"
	ModeExam     TestMode = "exam"
)

var ValidTestModes = map[TestMode]bool{
	ModePractice: true,
	ModeExam:     true,
}

// SessionSettings is validated once before a session starts and is
// immutable for the life of the session.
type SessionSettings struct {
	QuestionCount   int        `json:"question_count"`
	Difficulty      Difficulty `json:"difficulty"`
	TimerMode       TimerMode  `json:"timer_mode"`
	TimerSeconds    int        `json:"timer_seconds"`
	TestMode        TestMode   `json:"test_mode"`
	AllowSkip       bool       `json:"allow_skip"`
	FreeNavigation  bool       `json:"free_navigation"`
	AvoidDuplicates bool       `json:"avoid_duplicates"`
}

// AnswerOutcome classifies a finalized answer-log entry.
type AnswerOutcome string

const (
	OutcomeCorrect   AnswerOutcome = "correct"
	OutcomeIncorrect AnswerOutcome = "incorrect"
	OutcomeSkipped   AnswerOutcome = "skipped"
	OutcomeTimedOut  AnswerOutcome = "timed_out"
)

// AnswerRecord is one finalized entry of a session's answer log.
type AnswerRecord struct {
	QuestionID    string        `json:"question_id"`
	FactorA       int           `json:"factor_a"`
	FactorB       int           `json:"factor_b"`
	CorrectAnswer int           `json:"correct_answer"`
	SelectedValue *int          `json:"selected_value,omitempty"`
	Outcome       AnswerOutcome `json:"outcome"`
	Correct       bool          `json:"correct"`
	TimeSpentSec  float64       `json:"time_spent_sec"`
	AnsweredAt    time.Time     `json:"answered_at"`
}

// Result is the read-only scored summary of a completed session.
type Result struct {
	SessionID      string          `json:"session_id"`
	Settings       SessionSettings `json:"settings"`
	TotalQuestions int             `json:"total_questions"`
	CorrectCount   int             `json:"correct_count"`
	IncorrectCount int             `json:"incorrect_count"`
	SkippedCount   int             `json:"skipped_count"`
	ScorePercent   int             `json:"score_percent"`
	TotalTimeSec   float64         `json:"total_time_sec"`
	StartedAt      time.Time       `json:"started_at"`
	CompletedAt    time.Time       `json:"completed_at"`
	Answers        []AnswerRecord  `json:"answers"`
}

// ExportRow is one flat line of a result for downstream CSV/JSON writers.
type ExportRow struct {
	FactorA       int     `json:"factor_a"`
	FactorB       int     `json:"factor_b"`
	CorrectAnswer int     `json:"correct_answer"`
	UserAnswer    *int    `json:"user_answer,omitempty"`
	Correct       bool    `json:"correct"`
	TimeSpentSec  float64 `json:"time_spent_sec"`
}

// ── Request/Response Types ─────────────────────────────

type StartSessionRequest struct {
	Settings SessionSettings `json:"settings"`
}

type SelectAnswerRequest struct {
	Position int `json:"position"` // 1..4
}

type NavigateRequest struct {
	Index int `json:"index"` // 0-based target question
}

type SessionStateResponse struct {
	SessionID      string         `json:"session_id"`
	State          string         `json:"state"`
	CurrentIndex   int            `json:"current_index"`
	TotalQuestions int            `json:"total_questions"`
	Question       *DrillQuestion `json:"question,omitempty"`
	Selected       *int           `json:"selected_position,omitempty"`
	Locked         bool           `json:"locked"`
	Answered       int            `json:"answered"`
	RemainingSec   *int           `json:"remaining_sec,omitempty"`
	Result         *Result        `json:"result,omitempty"`
}

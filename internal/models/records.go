package models

import "time"

// ── History / Leaderboard / Stats Types ────────────────

// HistoryEntry is a condensed completed result kept in the per-user
// history list (most-recent-first, capped).
type HistoryEntry struct {
	SessionID      string     `json:"session_id"`
	TestMode       TestMode   `json:"test_mode"`
	Difficulty     Difficulty `json:"difficulty"`
	TotalQuestions int        `json:"total_questions"`
	CorrectCount   int        `json:"correct_count"`
	ScorePercent   int        `json:"score_percent"`
	TotalTimeSec   float64    `json:"total_time_sec"`
	CompletedAt    time.Time  `json:"completed_at"`
}

// LeaderboardEntry ranks by score desc, then total time asc.
type LeaderboardEntry struct {
	DisplayName  string    `json:"display_name"`
	ScorePercent int       `json:"score_percent"`
	TotalTimeSec float64   `json:"total_time_sec"`
	Questions    int       `json:"questions"`
	AchievedAt   time.Time `json:"achieved_at"`
}

// LifetimeStats accumulates incrementally across completed sessions.
type LifetimeStats struct {
	TestsCompleted int `json:"tests_completed"`
	AverageScore   int `json:"average_score"`
	BestScore      int `json:"best_score"`
	TotalQuestions int `json:"total_questions"`
	TotalCorrect   int `json:"total_correct"`

	// SkillScore is a 0-100 rating updated after every test; it drives
	// the recommended difficulty.
	SkillScore int `json:"skill_score"`

	CurrentStreak int    `json:"current_streak"` // consecutive active days
	LongestStreak int    `json:"longest_streak"`
	LastActiveDay string `json:"last_active_day"` // YYYY-MM-DD

	// RecommendedDifficulty is derived from SkillScore on read; it is
	// not persisted.
	RecommendedDifficulty Difficulty `json:"recommended_difficulty,omitempty"`
}

type HistoryListResponse struct {
	Entries []HistoryEntry `json:"entries"`
	Total   int            `json:"total"`
}

type LeaderboardResponse struct {
	Entries []LeaderboardEntry `json:"entries"`
	Total   int                `json:"total"`
}

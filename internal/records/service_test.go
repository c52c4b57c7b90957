package records

import (
	"fmt"
	"testing"
	"time"

	"github.com/mathdrill/backend/internal/models"
	"github.com/mathdrill/backend/internal/storage"
)

func sampleResult(sessionID string, score int, totalTime float64) models.Result {
	return models.Result{
		SessionID:      sessionID,
		Settings:       models.SessionSettings{TestMode: models.ModePractice, Difficulty: models.DifficultyMedium},
		TotalQuestions: 10,
		CorrectCount:   score / 10,
		ScorePercent:   score,
		TotalTimeSec:   totalTime,
		CompletedAt:    time.Now(),
	}
}

func TestRecordResult_HistoryMostRecentFirst(t *testing.T) {
	s := NewService(storage.NewMemory())

	s.RecordResult(1, "Ada L.", sampleResult("first", 50, 60))
	s.RecordResult(1, "Ada L.", sampleResult("second", 80, 55))

	entries, err := s.History(1)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("history length = %d, want 2", len(entries))
	}
	if entries[0].SessionID != "second" || entries[1].SessionID != "first" {
		t.Errorf("history not most-recent-first: %v, %v", entries[0].SessionID, entries[1].SessionID)
	}
}

func TestRecordResult_HistoryCap(t *testing.T) {
	s := NewService(storage.NewMemory())
	for i := 0; i < HistoryCap+10; i++ {
		s.RecordResult(1, "Ada L.", sampleResult(fmt.Sprintf("s%d", i), 50, 60))
	}

	entries, _ := s.History(1)
	if len(entries) != HistoryCap {
		t.Fatalf("history length = %d, want cap %d", len(entries), HistoryCap)
	}
	if entries[0].SessionID != fmt.Sprintf("s%d", HistoryCap+9) {
		t.Errorf("newest entry = %s, want most recent", entries[0].SessionID)
	}
}

func TestRecordResult_HistoryIsolatedPerUser(t *testing.T) {
	s := NewService(storage.NewMemory())
	s.RecordResult(1, "Ada L.", sampleResult("a", 50, 60))
	s.RecordResult(2, "Bob K.", sampleResult("b", 70, 60))

	first, _ := s.History(1)
	second, _ := s.History(2)
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("history lengths = %d/%d, want 1/1", len(first), len(second))
	}
	if first[0].SessionID != "a" || second[0].SessionID != "b" {
		t.Error("histories leaked across users")
	}
}

func TestLeaderboard_SortAndCap(t *testing.T) {
	s := NewService(storage.NewMemory())

	s.RecordResult(1, "Slow", sampleResult("s1", 90, 120))
	s.RecordResult(2, "Fast", sampleResult("s2", 90, 80))
	s.RecordResult(3, "Top", sampleResult("s3", 100, 200))

	entries, err := s.Leaderboard()
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("leaderboard length = %d, want 3", len(entries))
	}
	if entries[0].DisplayName != "Top" {
		t.Errorf("rank 1 = %s, want Top (highest score)", entries[0].DisplayName)
	}
	if entries[1].DisplayName != "Fast" || entries[2].DisplayName != "Slow" {
		t.Errorf("equal scores not tie-broken by time asc: %s, %s", entries[1].DisplayName, entries[2].DisplayName)
	}

	for i := 0; i < LeaderboardCap+10; i++ {
		s.RecordResult(int64(i+10), "Filler", sampleResult("x", 95, 60))
	}
	entries, _ = s.Leaderboard()
	if len(entries) != LeaderboardCap {
		t.Errorf("leaderboard length = %d, want cap %d", len(entries), LeaderboardCap)
	}
}

func TestStats_Incremental(t *testing.T) {
	s := NewService(storage.NewMemory())

	s.RecordResult(1, "Ada L.", sampleResult("s1", 80, 60))
	s.RecordResult(1, "Ada L.", sampleResult("s2", 60, 60))

	stats, err := s.Stats(1)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TestsCompleted != 2 {
		t.Errorf("tests = %d, want 2", stats.TestsCompleted)
	}
	if stats.AverageScore != 70 {
		t.Errorf("average = %d, want 70", stats.AverageScore)
	}
	if stats.BestScore != 80 {
		t.Errorf("best = %d, want 80", stats.BestScore)
	}
}

func TestStats_EmptyUser(t *testing.T) {
	s := NewService(storage.NewMemory())
	stats, err := s.Stats(42)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TestsCompleted != 0 || stats.AverageScore != 0 {
		t.Errorf("empty user stats = %+v, want zero value", stats)
	}
}

func TestClearHistory(t *testing.T) {
	s := NewService(storage.NewMemory())
	s.RecordResult(1, "Ada L.", sampleResult("s1", 80, 60))
	if err := s.ClearHistory(1); err != nil {
		t.Fatalf("clear: %v", err)
	}
	entries, _ := s.History(1)
	if len(entries) != 0 {
		t.Errorf("history length after clear = %d, want 0", len(entries))
	}
}

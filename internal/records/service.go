// Package records persists completed results: per-user history,
// lifetime statistics and the shared leaderboard, all through the
// storage.KV contract.
package records

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strconv"

	"github.com/mathdrill/backend/internal/models"
	"github.com/mathdrill/backend/internal/results"
	"github.com/mathdrill/backend/internal/storage"
)

const (
	// HistoryCap bounds the per-user history list, most-recent-first.
	HistoryCap = 50
	// LeaderboardCap bounds the shared leaderboard.
	LeaderboardCap = 20
)

type Service struct {
	kv storage.KV
}

func NewService(kv storage.KV) *Service {
	return &Service{kv: kv}
}

func historyKey(userID int64) string {
	return storage.KeyHistoryPrefix + strconv.FormatInt(userID, 10)
}

func statsKey(userID int64) string {
	return storage.KeyStatsPrefix + strconv.FormatInt(userID, 10)
}

// RecordResult persists a completed result: history entry, lifetime
// stats update, and a leaderboard attempt. Failures are logged and the
// remaining writes still run; a storage outage never invalidates the
// session that produced the result.
func (s *Service) RecordResult(userID int64, displayName string, result models.Result) {
	if err := s.appendHistory(userID, result); err != nil {
		log.Printf("[records] history write failed for user %d: %v", userID, err)
	}
	if err := s.updateStats(userID, result); err != nil {
		log.Printf("[records] stats write failed for user %d: %v", userID, err)
	}
	if err := s.submitToLeaderboard(displayName, result); err != nil {
		log.Printf("[records] leaderboard write failed for user %d: %v", userID, err)
	}
}

// ── History ─────────────────────────────────────────────

func (s *Service) appendHistory(userID int64, result models.Result) error {
	entries, err := s.History(userID)
	if err != nil {
		return err
	}

	entry := models.HistoryEntry{
		SessionID:      result.SessionID,
		TestMode:       result.Settings.TestMode,
		Difficulty:     result.Settings.Difficulty,
		TotalQuestions: result.TotalQuestions,
		CorrectCount:   result.CorrectCount,
		ScorePercent:   result.ScorePercent,
		TotalTimeSec:   result.TotalTimeSec,
		CompletedAt:    result.CompletedAt,
	}

	entries = append([]models.HistoryEntry{entry}, entries...)
	if len(entries) > HistoryCap {
		entries = entries[:HistoryCap]
	}

	return s.saveJSON(historyKey(userID), entries)
}

// History returns the user's completed sessions, most recent first.
func (s *Service) History(userID int64) ([]models.HistoryEntry, error) {
	var entries []models.HistoryEntry
	if err := s.loadJSON(historyKey(userID), &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	return entries, nil
}

// ClearHistory removes the user's history list.
func (s *Service) ClearHistory(userID int64) error {
	return s.kv.Remove(historyKey(userID))
}

// ── Lifetime Stats ──────────────────────────────────────

func (s *Service) updateStats(userID int64, result models.Result) error {
	stats, err := s.loadStats(userID)
	if err != nil {
		return err
	}

	stats.SkillScore = UpdateSkill(stats.SkillScore, result.Settings.Difficulty,
		result.ScorePercent, stats.TestsCompleted)
	stats = updateStreak(stats, result.CompletedAt)
	stats = results.UpdateStats(stats, result)

	return s.saveJSON(statsKey(userID), stats)
}

// Stats returns the user's lifetime statistics, zero-valued when the
// user has never completed a session.
func (s *Service) Stats(userID int64) (models.LifetimeStats, error) {
	stats, err := s.loadStats(userID)
	if err != nil {
		return models.LifetimeStats{}, err
	}
	stats.RecommendedDifficulty = RecommendDifficulty(stats.SkillScore)
	return stats, nil
}

func (s *Service) loadStats(userID int64) (models.LifetimeStats, error) {
	stats := models.LifetimeStats{SkillScore: DefaultSkill}
	if err := s.loadJSON(statsKey(userID), &stats); err != nil {
		return models.LifetimeStats{}, err
	}
	return stats, nil
}

// ── Leaderboard ─────────────────────────────────────────

func (s *Service) submitToLeaderboard(displayName string, result models.Result) error {
	entries, err := s.Leaderboard()
	if err != nil {
		return err
	}

	entries = append(entries, models.LeaderboardEntry{
		DisplayName:  displayName,
		ScorePercent: result.ScorePercent,
		TotalTimeSec: result.TotalTimeSec,
		Questions:    result.TotalQuestions,
		AchievedAt:   result.CompletedAt,
	})

	// Score descending, then total time ascending.
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].ScorePercent != entries[j].ScorePercent {
			return entries[i].ScorePercent > entries[j].ScorePercent
		}
		return entries[i].TotalTimeSec < entries[j].TotalTimeSec
	})

	if len(entries) > LeaderboardCap {
		entries = entries[:LeaderboardCap]
	}

	return s.saveJSON(storage.KeyLeaderboard, entries)
}

// Leaderboard returns the shared ranking, best first.
func (s *Service) Leaderboard() ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry
	if err := s.loadJSON(storage.KeyLeaderboard, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	return entries, nil
}

// ── KV plumbing ─────────────────────────────────────────

func (s *Service) loadJSON(key string, out interface{}) error {
	data, err := s.kv.Load(key)
	if err == storage.ErrNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %q: %w", key, err)
	}
	return nil
}

func (s *Service) saveJSON(key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	return s.kv.Save(key, data)
}

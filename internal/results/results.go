// Package results turns a completed session's answer log into scores
// and keeps the incremental lifetime statistics.
package results

import (
	"math"
	"time"

	"github.com/mathdrill/backend/internal/models"
)

// Score returns round(correct/total*100). Zero questions score zero.
func Score(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

// Compute builds the read-only Result snapshot from a finalized answer
// log. Total time is wall clock since session start, not the sum of
// per-question times, so navigation and idle overhead is included.
func Compute(sessionID string, settings models.SessionSettings, answers []models.AnswerRecord, startedAt, completedAt time.Time) models.Result {
	correct, incorrect, skipped := 0, 0, 0
	for _, a := range answers {
		switch {
		case a.Correct:
			correct++
		case a.Outcome == models.OutcomeSkipped || a.Outcome == models.OutcomeTimedOut:
			skipped++
		default:
			incorrect++
		}
	}

	return models.Result{
		SessionID:      sessionID,
		Settings:       settings,
		TotalQuestions: len(answers),
		CorrectCount:   correct,
		IncorrectCount: incorrect,
		SkippedCount:   skipped,
		ScorePercent:   Score(correct, len(answers)),
		TotalTimeSec:   completedAt.Sub(startedAt).Seconds(),
		StartedAt:      startedAt,
		CompletedAt:    completedAt,
		Answers:        answers,
	}
}

// UpdateStats folds a new score into the running lifetime statistics:
// newAverage = round((oldAverage*oldCount + newScore) / (oldCount+1)).
func UpdateStats(stats models.LifetimeStats, result models.Result) models.LifetimeStats {
	oldCount := stats.TestsCompleted
	newAvg := int(math.Round(
		(float64(stats.AverageScore)*float64(oldCount) + float64(result.ScorePercent)) / float64(oldCount+1)))

	stats.TestsCompleted = oldCount + 1
	stats.AverageScore = newAvg
	if result.ScorePercent > stats.BestScore {
		stats.BestScore = result.ScorePercent
	}
	stats.TotalQuestions += result.TotalQuestions
	stats.TotalCorrect += result.CorrectCount
	return stats
}

// ExportRows flattens a result into one row per question for the CSV
// and JSON writers downstream.
func ExportRows(result models.Result) []models.ExportRow {
	rows := make([]models.ExportRow, 0, len(result.Answers))
	for _, a := range result.Answers {
		rows = append(rows, models.ExportRow{
			FactorA:       a.FactorA,
			FactorB:       a.FactorB,
			CorrectAnswer: a.CorrectAnswer,
			UserAnswer:    a.SelectedValue,
			Correct:       a.Correct,
			TimeSpentSec:  a.TimeSpentSec,
		})
	}
	return rows
}

package records

import (
	"time"

	"github.com/mathdrill/backend/internal/models"
)

const dayLayout = "2006-01-02"

// updateStreak folds one active day into the streak counters. Same-day
// activity is a no-op, a consecutive day extends the streak, any gap
// resets it to 1.
func updateStreak(stats models.LifetimeStats, activeAt time.Time) models.LifetimeStats {
	day := activeAt.Format(dayLayout)

	if stats.LastActiveDay == "" {
		stats.CurrentStreak = 1
	} else if stats.LastActiveDay != day {
		last, err := time.Parse(dayLayout, stats.LastActiveDay)
		if err != nil {
			stats.CurrentStreak = 1
		} else {
			current, _ := time.Parse(dayLayout, day)
			daysSince := int(current.Sub(last).Hours() / 24)
			if daysSince == 1 {
				stats.CurrentStreak++
			} else {
				stats.CurrentStreak = 1
			}
		}
	}

	stats.LastActiveDay = day
	if stats.CurrentStreak > stats.LongestStreak {
		stats.LongestStreak = stats.CurrentStreak
	}
	return stats
}

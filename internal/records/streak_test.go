package records

import (
	"testing"
	"time"

	"github.com/mathdrill/backend/internal/models"
)

func day(dayStr string) time.Time {
	t, err := time.Parse("2006-01-02", dayStr)
	if err != nil {
		panic(err)
	}
	return t
}

func TestUpdateStreak_FirstActivity(t *testing.T) {
	stats := updateStreak(models.LifetimeStats{}, day("2026-03-10"))
	if stats.CurrentStreak != 1 || stats.LongestStreak != 1 {
		t.Errorf("streak = %d/%d, want 1/1", stats.CurrentStreak, stats.LongestStreak)
	}
	if stats.LastActiveDay != "2026-03-10" {
		t.Errorf("last active = %q, want 2026-03-10", stats.LastActiveDay)
	}
}

func TestUpdateStreak_SameDay(t *testing.T) {
	stats := updateStreak(models.LifetimeStats{}, day("2026-03-10"))
	stats = updateStreak(stats, day("2026-03-10"))
	if stats.CurrentStreak != 1 {
		t.Errorf("streak = %d, want 1 after same-day activity", stats.CurrentStreak)
	}
}

func TestUpdateStreak_ConsecutiveDays(t *testing.T) {
	stats := updateStreak(models.LifetimeStats{}, day("2026-03-10"))
	stats = updateStreak(stats, day("2026-03-11"))
	stats = updateStreak(stats, day("2026-03-12"))
	if stats.CurrentStreak != 3 || stats.LongestStreak != 3 {
		t.Errorf("streak = %d/%d, want 3/3", stats.CurrentStreak, stats.LongestStreak)
	}
}

func TestUpdateStreak_GapResets(t *testing.T) {
	stats := updateStreak(models.LifetimeStats{}, day("2026-03-10"))
	stats = updateStreak(stats, day("2026-03-11"))
	stats = updateStreak(stats, day("2026-03-14"))
	if stats.CurrentStreak != 1 {
		t.Errorf("streak = %d, want 1 after a gap", stats.CurrentStreak)
	}
	if stats.LongestStreak != 2 {
		t.Errorf("longest = %d, want 2 preserved", stats.LongestStreak)
	}
}

func TestUpdateStreak_CorruptLastDay(t *testing.T) {
	stats := models.LifetimeStats{LastActiveDay: "not-a-date", CurrentStreak: 7}
	stats = updateStreak(stats, day("2026-03-10"))
	if stats.CurrentStreak != 1 {
		t.Errorf("streak = %d, want reset to 1 on unparseable last day", stats.CurrentStreak)
	}
}

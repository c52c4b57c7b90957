package session

import (
	"time"

	"github.com/mathdrill/backend/internal/models"
)

// ── Timer wiring ────────────────────────────────────────

// startTimerLocked arms the configured countdown when a session starts.
func (s *Session) startTimerLocked() {
	switch s.settings.TimerMode {
	case models.TimerPerQuestion:
		s.armQuestionTimerLocked()
	case models.TimerTotal:
		s.remainingSec = s.settings.TimerSeconds
		s.timer.Start(s.settings.TimerSeconds, s.onTick, s.onTotalTimeout)
	}
}

// restartQuestionTimerLocked atomically replaces the countdown when a
// new question is shown. Restart cancels the previous generation, so a
// stale callback can never fire against a superseded question.
func (s *Session) restartQuestionTimerLocked() {
	if s.settings.TimerMode == models.TimerPerQuestion {
		s.armQuestionTimerLocked()
	}
}

func (s *Session) armQuestionTimerLocked() {
	index := s.index
	s.remainingSec = s.settings.TimerSeconds
	s.timer.Start(s.settings.TimerSeconds, s.onTick, func() {
		s.onQuestionTimeout(index)
	})
}

func (s *Session) onTick(remaining int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRunning {
		return
	}
	s.remainingSec = remaining
	if s.presenter != nil {
		s.presenter.UpdateTimer(remaining)
	}
}

// onQuestionTimeout locks the question against further selection and
// records the timeout. Practice mode then advances on its own; exam
// mode leaves the explicit advance to the user, now unlocked even
// without a selection.
func (s *Session) onQuestionTimeout(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A stale callback for a question that already advanced.
	if s.state != StateRunning || index != s.index {
		return
	}

	current := &s.slots[index]
	current.locked = true
	if current.selected == nil {
		current.timedOut = true
	}
	s.cancelAutoAdvanceLocked()

	if s.settings.TestMode == models.ModePractice {
		s.lastAdvance = time.Time{} // timeout advance skips the cooldown
		if err := s.advanceLocked(); err != nil && err != ErrNotRunning {
			// advance after timeout can only fail if already advancing
			return
		}
	}
}

// onTotalTimeout force-ends the session when the total-time budget is
// spent; unanswered questions count as skipped.
func (s *Session) onTotalTimeout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRunning {
		return
	}
	s.completeLocked()
}

// ── Practice auto-advance ───────────────────────────────

// scheduleAutoAdvanceLocked arms the feedback-delay advance after a
// practice selection. Re-selection re-arms it.
func (s *Session) scheduleAutoAdvanceLocked(index int) {
	s.cancelAutoAdvanceLocked()
	s.autoAdvance = time.AfterFunc(s.feedbackDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.state != StateRunning || index != s.index {
			return
		}
		s.lastAdvance = time.Time{} // scheduled advance skips the cooldown
		s.advanceLocked()
	})
}

func (s *Session) cancelAutoAdvanceLocked() {
	if s.autoAdvance != nil {
		s.autoAdvance.Stop()
		s.autoAdvance = nil
	}
}

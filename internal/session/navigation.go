package session

import (
	"github.com/mathdrill/backend/internal/models"
)

// Free-navigation exam flow: Previous/Next/GoTo move between questions
// while answers stay tentative in the scratch slots. Nothing is scored
// until Finalize (or End) reconciles the slots into the answer log.

// Next moves to the following question without finalizing anything.
func (s *Session) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkNavigableLocked(); err != nil {
		return err
	}
	return s.moveToLocked(s.index + 1)
}

// Previous moves back one question.
func (s *Session) Previous() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkNavigableLocked(); err != nil {
		return err
	}
	return s.moveToLocked(s.index - 1)
}

// GoTo jumps to an arbitrary question index.
func (s *Session) GoTo(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkNavigableLocked(); err != nil {
		return err
	}
	return s.moveToLocked(index)
}

// Finalize ends a free-navigation exam explicitly, reconciling the
// scratch slots into the permanent answer log. Equivalent to End.
func (s *Session) Finalize() *models.Result {
	return s.End()
}

func (s *Session) checkNavigableLocked() error {
	if s.state != StateRunning {
		return ErrNotRunning
	}
	if !s.settings.FreeNavigation {
		return ErrNavigationFixed
	}
	return nil
}

// moveToLocked switches the visible question, accumulating the time
// spent on the one being left so revisits keep adding up.
func (s *Session) moveToLocked(index int) error {
	if index < 0 || index >= len(s.questions) {
		return ErrIndexOutOfRange
	}
	if s.advancing && index != s.index+1 {
		return ErrAdvanceSuperseded
	}

	s.flushCurrentVisitLocked()
	s.index = index
	s.shownAt = s.now()
	s.restartQuestionTimerLocked()
	s.showCurrentLocked()
	return nil
}

// ── State snapshot ──────────────────────────────────────

// Snapshot returns the session state as served to clients. The current
// question is stripped of correctness flags while running.
func (s *Session) Snapshot() models.SessionStateResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := models.SessionStateResponse{
		SessionID:      s.id,
		State:          string(s.state),
		CurrentIndex:   s.index,
		TotalQuestions: len(s.questions),
		Answered:       len(s.answerLog),
		Result:         s.result,
	}

	if s.state == StateRunning {
		q := s.questions[s.index].ToDrillQuestion()
		resp.Question = &q
		resp.Locked = s.slots[s.index].locked
		if s.slots[s.index].selected != nil {
			p := *s.slots[s.index].selected
			resp.Selected = &p
		}
		if s.settings.TimerMode != models.TimerOff {
			remaining := s.remainingSec
			resp.RemainingSec = &remaining
		}
	}
	return resp
}

// Settings returns the immutable settings the session started with.
func (s *Session) Settings() models.SessionSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// AnswerLog returns a copy of the finalized answer-log entries.
func (s *Session) AnswerLog() []models.AnswerRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.AnswerRecord, len(s.answerLog))
	copy(out, s.answerLog)
	return out
}

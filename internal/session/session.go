// Package session drives a fixed sequence of generated questions
// through display, answer capture and advancement under a timing
// policy, and produces the scored result.
package session

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mathdrill/backend/internal/generator"
	"github.com/mathdrill/backend/internal/models"
	"github.com/mathdrill/backend/internal/results"
	"github.com/mathdrill/backend/internal/timer"
)

type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
)

const (
	// advanceCooldown guards against duplicate rapid advance triggers
	// after an advance already ran.
	advanceCooldown = 250 * time.Millisecond
	// defaultFeedbackDelay is how long practice mode shows feedback
	// before auto-advancing.
	defaultFeedbackDelay = 1500 * time.Millisecond
)

var (
	ErrNotRunning        = errors.New("session: not running")
	ErrAlreadyStarted    = errors.New("session: already started")
	ErrQuestionLocked    = errors.New("session: question locked by timeout")
	ErrNoSelection       = errors.New("session: no selection to advance with")
	ErrInvalidPosition   = errors.New("session: option position out of range")
	ErrSkipNotAllowed    = errors.New("session: skipping is not allowed by settings")
	ErrNavigationFixed   = errors.New("session: free navigation is not enabled")
	ErrIndexOutOfRange   = errors.New("session: question index out of range")
	ErrAdvanceSuperseded = errors.New("session: advance already in flight")
)

// Presenter receives display updates. All methods are called with the
// session lock held; implementations must not call back into the
// session. A nil presenter is valid.
type Presenter interface {
	UpdateQuestion(q models.DrillQuestion, index, total int)
	UpdateProgress(answered, total int)
	UpdateTimer(remainingSec int)
	UpdateResults(result models.Result)
}

// Config wires the session's collaborators. Generator is required;
// everything else has a working default.
type Config struct {
	Generator     *generator.Generator
	Timer         timer.Timer
	Presenter     Presenter
	OnResult      func(models.Result) // persistence hook, best-effort
	Clock         func() time.Time
	FeedbackDelay time.Duration // practice auto-advance delay
}

// slot is the per-question scratch state. Linear flows finalize a slot
// into the answer log on advance; free-navigation flows finalize all
// slots at once when the exam ends.
type slot struct {
	selected    *int // option position, 1..4
	locked      bool // timed out, selection rejected
	timedOut    bool
	accumulated time.Duration
	finalized   bool
}

// Session is a single run of N questions. All exported methods are
// safe for concurrent use; timer callbacks and user intents serialize
// on the internal lock.
type Session struct {
	mu sync.Mutex

	id        string
	settings  models.SessionSettings
	questions []models.Question
	slots     []slot
	answerLog []models.AnswerRecord

	state        State
	index        int
	shownAt      time.Time
	startedAt    time.Time
	lastAdvance  time.Time
	advancing    bool
	remainingSec int
	result       *models.Result

	gen           *generator.Generator
	timer         timer.Timer
	presenter     Presenter
	onResult      func(models.Result)
	now           func() time.Time
	feedbackDelay time.Duration
	autoAdvance   *time.Timer
}

func New(cfg Config) *Session {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Timer == nil {
		cfg.Timer = timer.NewCountdown()
	}
	if cfg.FeedbackDelay <= 0 {
		cfg.FeedbackDelay = defaultFeedbackDelay
	}
	return &Session{
		id:            uuid.NewString(),
		state:         StateIdle,
		gen:           cfg.Generator,
		timer:         cfg.Timer,
		presenter:     cfg.Presenter,
		onResult:      cfg.OnResult,
		now:           cfg.Clock,
		feedbackDelay: cfg.FeedbackDelay,
	}
}

func (s *Session) ID() string {
	return s.id
}

// ValidateSettings rejects malformed settings before any state mutates.
func ValidateSettings(settings models.SessionSettings) error {
	if settings.QuestionCount < 1 || settings.QuestionCount > 100 {
		return fmt.Errorf("question_count must be 1..100, got %d", settings.QuestionCount)
	}
	if settings.Difficulty != "" && !models.ValidDifficulties[settings.Difficulty] {
		return fmt.Errorf("invalid difficulty %q", settings.Difficulty)
	}
	if settings.TimerMode != "" && !models.ValidTimerModes[settings.TimerMode] {
		return fmt.Errorf("invalid timer_mode %q", settings.TimerMode)
	}
	if settings.TestMode != "" && !models.ValidTestModes[settings.TestMode] {
		return fmt.Errorf("invalid test_mode %q", settings.TestMode)
	}
	if settings.TimerMode != "" && settings.TimerMode != models.TimerOff {
		if settings.TimerSeconds < 5 || settings.TimerSeconds > 3600 {
			return fmt.Errorf("timer_seconds must be 5..3600, got %d", settings.TimerSeconds)
		}
	}
	if settings.FreeNavigation && settings.TestMode != models.ModeExam {
		return fmt.Errorf("free_navigation requires exam mode")
	}
	return nil
}

// Start validates settings, generates the question sequence and enters
// Running at question 0.
func (s *Session) Start(settings models.SessionSettings) error {
	if err := ValidateSettings(settings); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return ErrAlreadyStarted
	}
	if settings.Difficulty == "" {
		settings.Difficulty = models.DifficultyMedium
	}
	if settings.TimerMode == "" {
		settings.TimerMode = models.TimerOff
	}
	if settings.TestMode == "" {
		settings.TestMode = models.ModePractice
	}

	s.settings = settings
	s.questions = s.gen.GenerateBatch(settings.QuestionCount, generator.Options{
		Difficulty:      settings.Difficulty,
		AvoidDuplicates: settings.AvoidDuplicates,
	})
	s.slots = make([]slot, len(s.questions))
	s.answerLog = s.answerLog[:0]
	s.index = 0
	s.startedAt = s.now()
	s.shownAt = s.startedAt
	s.state = StateRunning

	s.startTimerLocked()
	s.showCurrentLocked()
	return nil
}

// Select records a tentative choice for the current question. The
// choice is changeable until the question advances; a timed-out
// question rejects further selection.
func (s *Session) Select(position int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return ErrNotRunning
	}
	current := &s.slots[s.index]
	if current.locked {
		return ErrQuestionLocked
	}
	if position < 1 || position > len(s.questions[s.index].Options) {
		return ErrInvalidPosition
	}

	p := position
	current.selected = &p

	// Practice mode shows feedback briefly, then advances on its own.
	if s.settings.TestMode == models.ModePractice && !s.settings.FreeNavigation {
		s.scheduleAutoAdvanceLocked(s.index)
	}
	return nil
}

// Advance finalizes the current question and moves forward. Valid once
// a selection exists or the question has timed out. Re-entrant calls
// while an advance is in flight are ignored, and a short cooldown
// swallows duplicate rapid triggers.
func (s *Session) Advance() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advanceLocked()
}

func (s *Session) advanceLocked() error {
	if s.state != StateRunning {
		return ErrNotRunning
	}
	if s.advancing {
		return ErrAdvanceSuperseded
	}
	if !s.lastAdvance.IsZero() && s.now().Sub(s.lastAdvance) < advanceCooldown {
		return ErrAdvanceSuperseded
	}

	current := &s.slots[s.index]
	if current.selected == nil && !current.locked {
		return ErrNoSelection
	}

	s.advancing = true
	defer func() { s.advancing = false }()
	s.cancelAutoAdvanceLocked()

	if s.settings.FreeNavigation {
		// Free navigation never finalizes mid-exam; it just moves.
		return s.moveToLocked(s.index + 1)
	}

	s.finalizeSlotLocked(s.index)
	s.lastAdvance = s.now()

	if s.index+1 >= len(s.questions) {
		s.completeLocked()
		return nil
	}

	s.index++
	s.shownAt = s.now()
	s.restartQuestionTimerLocked()
	s.showCurrentLocked()
	return nil
}

// Skip records a skipped entry for the current question and advances,
// regardless of any tentative selection. Under free navigation nothing
// is finalized: the selection is cleared in scratch and the view moves
// on, leaving the question revisitable until Finalize scores it.
func (s *Session) Skip() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return ErrNotRunning
	}
	if !s.settings.AllowSkip {
		return ErrSkipNotAllowed
	}

	s.cancelAutoAdvanceLocked()

	if s.settings.FreeNavigation {
		s.slots[s.index].selected = nil
		if s.index+1 < len(s.questions) {
			return s.moveToLocked(s.index + 1)
		}
		s.flushCurrentVisitLocked()
		return nil
	}

	current := &s.slots[s.index]
	current.selected = nil
	current.locked = true // finalize as skipped, not timed out
	s.appendRecordLocked(s.index, models.OutcomeSkipped)
	current.finalized = true
	s.lastAdvance = s.now()

	if s.index+1 >= len(s.questions) {
		s.completeLocked()
		return nil
	}
	s.index++
	s.shownAt = s.now()
	s.restartQuestionTimerLocked()
	s.showCurrentLocked()
	return nil
}

// End completes the session: stops timers, reconciles unanswered
// questions, computes the result and hands it to the persistence hook.
// Idempotent.
func (s *Session) End() *models.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateCompleted {
		return s.result
	}
	if s.state != StateRunning {
		return nil
	}
	s.completeLocked()
	return s.result
}

// Abandon ends the session without invoking the persistence hook. A
// half-run displaced by a newer session must not reach history or the
// leaderboard.
func (s *Session) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return
	}
	s.onResult = nil
	s.completeLocked()
}

// Result returns the computed result, or nil before completion.
func (s *Session) Result() *models.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// ── Internal transitions ────────────────────────────────

// showCurrentLocked pushes the current question to the presenter.
func (s *Session) showCurrentLocked() {
	if s.presenter == nil {
		return
	}
	q := s.questions[s.index]
	s.presenter.UpdateQuestion(q.ToDrillQuestion(), s.index, len(s.questions))
	s.presenter.UpdateProgress(len(s.answerLog), len(s.questions))
}

// finalizeSlotLocked scores the slot at index and appends its answer
// log entry. The outcome falls out of the slot's state: timeout beats
// selection absence, selection decides correctness.
func (s *Session) finalizeSlotLocked(index int) {
	slot := &s.slots[index]
	if slot.finalized {
		return
	}

	var outcome models.AnswerOutcome
	switch {
	case slot.selected != nil:
		if s.selectedValueLocked(index) == s.questions[index].CorrectAnswer {
			outcome = models.OutcomeCorrect
		} else {
			outcome = models.OutcomeIncorrect
		}
	case slot.timedOut:
		outcome = models.OutcomeTimedOut
	default:
		outcome = models.OutcomeSkipped
	}

	s.appendRecordLocked(index, outcome)
	slot.finalized = true
}

// appendRecordLocked writes one answer-log entry for index, folding the
// question's accumulated on-screen time plus the current visit.
func (s *Session) appendRecordLocked(index int, outcome models.AnswerOutcome) {
	slot := &s.slots[index]
	spent := slot.accumulated
	if index == s.index && s.state == StateRunning {
		spent += s.now().Sub(s.shownAt)
		slot.accumulated = spent
	}

	record := models.AnswerRecord{
		QuestionID:    s.questions[index].ID,
		FactorA:       s.questions[index].FactorA,
		FactorB:       s.questions[index].FactorB,
		CorrectAnswer: s.questions[index].CorrectAnswer,
		Outcome:       outcome,
		Correct:       outcome == models.OutcomeCorrect,
		TimeSpentSec:  spent.Seconds(),
		AnsweredAt:    s.now(),
	}
	if slot.selected != nil {
		v := s.selectedValueLocked(index)
		record.SelectedValue = &v
	}
	s.answerLog = append(s.answerLog, record)

	if s.presenter != nil {
		s.presenter.UpdateProgress(len(s.answerLog), len(s.questions))
	}
}

func (s *Session) selectedValueLocked(index int) int {
	position := *s.slots[index].selected
	return s.questions[index].Options[position-1].Value
}

// completeLocked finalizes any remaining slots in question order,
// computes the result, persists best-effort and stops all timers.
func (s *Session) completeLocked() {
	s.timer.Stop()
	s.cancelAutoAdvanceLocked()

	// Reconcile the scratch state: every unfinalized slot gets scored
	// from whatever selection it holds, or counted skipped/timed out.
	s.flushCurrentVisitLocked()
	remaining := make([]models.AnswerRecord, 0, len(s.questions))
	finalized := s.answerLog
	s.answerLog = remaining
	for index := range s.slots {
		if !s.slots[index].finalized {
			s.finalizeSlotLocked(index)
		}
	}
	// Keep log entries in question order for free navigation, append
	// order for linear flows (identical when nothing was out of order).
	s.answerLog = append(finalized, s.answerLog...)

	completedAt := s.now()
	result := results.Compute(s.id, s.settings, s.answerLog, s.startedAt, completedAt)
	s.result = &result
	s.state = StateCompleted

	if s.presenter != nil {
		s.presenter.UpdateResults(result)
	}
	if s.onResult != nil {
		// Persistence is fire-and-forget: a storage failure must not
		// undo a completed session.
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[session] result hook panicked: %v", r)
				}
			}()
			s.onResult(result)
		}()
	}
}

// flushCurrentVisitLocked accumulates the in-progress visit time of the
// current question into its slot.
func (s *Session) flushCurrentVisitLocked() {
	if s.state != StateRunning || s.index >= len(s.slots) {
		return
	}
	slot := &s.slots[s.index]
	if !slot.finalized {
		slot.accumulated += s.now().Sub(s.shownAt)
		s.shownAt = s.now()
	}
}

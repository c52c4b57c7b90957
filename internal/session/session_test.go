package session

import (
	"sync"
	"testing"
	"time"

	"github.com/mathdrill/backend/internal/generator"
	"github.com/mathdrill/backend/internal/models"
)

// fakeTimer lets tests fire ticks and completions deterministically.
type fakeTimer struct {
	mu         sync.Mutex
	running    bool
	duration   int
	onTick     func(int)
	onComplete func()
	starts     int
	stops      int
}

func (f *fakeTimer) Start(durationSec int, onTick func(int), onComplete func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.running = true
	f.duration = durationSec
	f.onTick = onTick
	f.onComplete = onComplete
	f.starts++
}

func (f *fakeTimer) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.running = false
	f.stops++
}

func (f *fakeTimer) fireComplete() {
	f.mu.Lock()
	cb := f.onComplete
	f.running = false
	f.mu.Unlock()
	if cb != nil {
		cb()
	}
}

func (f *fakeTimer) fireTick(remaining int) {
	f.mu.Lock()
	cb := f.onTick
	f.mu.Unlock()
	if cb != nil {
		cb(remaining)
	}
}

// fakeClock advances only when told to.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestSession(t *testing.T, clk *fakeClock, ft *fakeTimer) *Session {
	t.Helper()
	cfg := Config{
		Generator:     generator.New(),
		FeedbackDelay: time.Hour, // keep auto-advance out of the way unless a test wants it
	}
	if clk != nil {
		cfg.Clock = clk.Now
	}
	if ft != nil {
		cfg.Timer = ft
	}
	return New(cfg)
}

// selectCorrect picks the correct option's position for the current
// question.
func selectCorrect(t *testing.T, s *Session) {
	t.Helper()
	q := s.questions[s.index]
	opt := q.CorrectOption()
	if opt == nil {
		t.Fatal("question has no correct option")
	}
	if err := s.Select(opt.Position); err != nil {
		t.Fatalf("select: %v", err)
	}
}

func selectWrong(t *testing.T, s *Session) {
	t.Helper()
	q := s.questions[s.index]
	for _, opt := range q.Options {
		if !opt.IsCorrect {
			if err := s.Select(opt.Position); err != nil {
				t.Fatalf("select: %v", err)
			}
			return
		}
	}
	t.Fatal("question has no wrong option")
}

func examSettings(count int) models.SessionSettings {
	return models.SessionSettings{
		QuestionCount: count,
		Difficulty:    models.DifficultyEasy,
		TimerMode:     models.TimerOff,
		TestMode:      models.ModeExam,
	}
}

// ── Settings validation ─────────────────────────────────

func TestValidateSettings(t *testing.T) {
	tests := []struct {
		name     string
		settings models.SessionSettings
		wantErr  bool
	}{
		{"valid minimal", models.SessionSettings{QuestionCount: 10}, false},
		{"zero questions", models.SessionSettings{QuestionCount: 0}, true},
		{"too many questions", models.SessionSettings{QuestionCount: 101}, true},
		{"bad difficulty", models.SessionSettings{QuestionCount: 10, Difficulty: "brutal"}, true},
		{"bad timer mode", models.SessionSettings{QuestionCount: 10, TimerMode: "sometimes"}, true},
		{"timer too short", models.SessionSettings{QuestionCount: 10, TimerMode: models.TimerPerQuestion, TimerSeconds: 2}, true},
		{"timer too long", models.SessionSettings{QuestionCount: 10, TimerMode: models.TimerTotal, TimerSeconds: 7200}, true},
		{"timer off ignores duration", models.SessionSettings{QuestionCount: 10, TimerMode: models.TimerOff}, false},
		{"free nav in practice", models.SessionSettings{QuestionCount: 10, TestMode: models.ModePractice, FreeNavigation: true}, true},
		{"free nav in exam", models.SessionSettings{QuestionCount: 10, TestMode: models.ModeExam, FreeNavigation: true}, false},
	}
	for _, tt := range tests {
		err := ValidateSettings(tt.settings)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

// ── Linear flow ─────────────────────────────────────────

func TestStart_GeneratesExactCount(t *testing.T) {
	s := newTestSession(t, nil, nil)
	if err := s.Start(examSettings(10)); err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(s.questions) != 10 {
		t.Fatalf("question count = %d, want 10", len(s.questions))
	}
	snap := s.Snapshot()
	if snap.State != string(StateRunning) || snap.CurrentIndex != 0 {
		t.Errorf("snapshot = %s/%d, want running/0", snap.State, snap.CurrentIndex)
	}
}

func TestStart_Twice(t *testing.T) {
	s := newTestSession(t, nil, nil)
	if err := s.Start(examSettings(3)); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.Start(examSettings(3)); err != ErrAlreadyStarted {
		t.Errorf("second start error = %v, want ErrAlreadyStarted", err)
	}
}

func TestPerfectRun_Scores100(t *testing.T) {
	clk := newFakeClock()
	s := newTestSession(t, clk, nil)
	if err := s.Start(examSettings(10)); err != nil {
		t.Fatalf("start: %v", err)
	}

	for i := 0; i < 10; i++ {
		selectCorrect(t, s)
		clk.Advance(2 * time.Second)
		if err := s.Advance(); err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
	}

	result := s.Result()
	if result == nil {
		t.Fatal("no result after answering all questions")
	}
	if result.ScorePercent != 100 {
		t.Errorf("score = %d, want 100", result.ScorePercent)
	}
	if result.CorrectCount != 10 || result.TotalQuestions != 10 {
		t.Errorf("counts = %d/%d, want 10/10", result.CorrectCount, result.TotalQuestions)
	}
}

func TestEnd_Idempotent(t *testing.T) {
	clk := newFakeClock()
	s := newTestSession(t, clk, nil)
	s.Start(examSettings(3))
	selectCorrect(t, s)
	clk.Advance(time.Second)
	s.Advance()

	first := s.End()
	if first == nil {
		t.Fatal("End returned nil")
	}
	second := s.End()
	if second != first {
		t.Error("second End produced a different result")
	}
	if len(first.Answers) != 3 {
		t.Errorf("answers = %d, want 3 (1 answered + 2 reconciled)", len(first.Answers))
	}
}

func TestAnswerLog_NeverExceedsQuestions(t *testing.T) {
	clk := newFakeClock()
	s := newTestSession(t, clk, nil)
	s.Start(examSettings(5))

	for i := 0; i < 5; i++ {
		if got := len(s.AnswerLog()); got > 5 || got != i {
			t.Fatalf("answer log length = %d at question %d", got, i)
		}
		selectCorrect(t, s)
		clk.Advance(time.Second)
		if err := s.Advance(); err != nil {
			t.Fatalf("advance: %v", err)
		}
	}
	if got := len(s.AnswerLog()); got != 5 {
		t.Fatalf("final answer log length = %d, want 5", got)
	}
}

func TestSelect_ChangeableBeforeAdvance(t *testing.T) {
	clk := newFakeClock()
	s := newTestSession(t, clk, nil)
	s.Start(examSettings(1))

	selectWrong(t, s)
	selectCorrect(t, s)
	clk.Advance(time.Second)
	s.Advance()

	result := s.Result()
	if result == nil || result.CorrectCount != 1 {
		t.Errorf("changed selection not honored: %+v", result)
	}
}

func TestAdvance_WithoutSelection(t *testing.T) {
	s := newTestSession(t, nil, nil)
	s.Start(examSettings(2))
	if err := s.Advance(); err != ErrNoSelection {
		t.Errorf("advance without selection error = %v, want ErrNoSelection", err)
	}
}

func TestAdvance_CooldownSwallowsRapidTriggers(t *testing.T) {
	clk := newFakeClock()
	s := newTestSession(t, clk, nil)
	s.Start(examSettings(3))

	selectCorrect(t, s)
	clk.Advance(time.Second)
	if err := s.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}

	// Immediate duplicate trigger: inside the cooldown window.
	selectCorrect(t, s)
	if err := s.Advance(); err != ErrAdvanceSuperseded {
		t.Errorf("rapid advance error = %v, want ErrAdvanceSuperseded", err)
	}

	clk.Advance(time.Second)
	if err := s.Advance(); err != nil {
		t.Errorf("advance after cooldown: %v", err)
	}
}

func TestSkip_RecordsSkippedEntry(t *testing.T) {
	clk := newFakeClock()
	s := newTestSession(t, clk, nil)
	settings := examSettings(2)
	settings.AllowSkip = true
	s.Start(settings)

	clk.Advance(3 * time.Second)
	if err := s.Skip(); err != nil {
		t.Fatalf("skip: %v", err)
	}

	log := s.AnswerLog()
	if len(log) != 1 {
		t.Fatalf("answer log length = %d, want 1", len(log))
	}
	if log[0].Outcome != models.OutcomeSkipped || log[0].Correct || log[0].SelectedValue != nil {
		t.Errorf("skip entry = %+v, want skipped/incorrect/no value", log[0])
	}
	if log[0].TimeSpentSec < 2.9 || log[0].TimeSpentSec > 3.1 {
		t.Errorf("skip time spent = %f, want ~3", log[0].TimeSpentSec)
	}
}

func TestSkip_Disallowed(t *testing.T) {
	s := newTestSession(t, nil, nil)
	s.Start(examSettings(2))
	if err := s.Skip(); err != ErrSkipNotAllowed {
		t.Errorf("skip error = %v, want ErrSkipNotAllowed", err)
	}
}

// ── Timeout behavior ────────────────────────────────────

func TestQuestionTimeout_ExamLocksAndUnlocksAdvance(t *testing.T) {
	clk := newFakeClock()
	ft := &fakeTimer{}
	s := newTestSession(t, clk, ft)
	settings := examSettings(2)
	settings.TimerMode = models.TimerPerQuestion
	settings.TimerSeconds = 5
	s.Start(settings)

	clk.Advance(5 * time.Second)
	ft.fireComplete()

	// Locked: selection is rejected.
	if err := s.Select(1); err != ErrQuestionLocked {
		t.Errorf("select after timeout error = %v, want ErrQuestionLocked", err)
	}
	// No score change until explicitly advanced.
	if got := len(s.AnswerLog()); got != 0 {
		t.Fatalf("answer log length = %d before explicit advance, want 0", got)
	}

	// Timeout unlocks advance without a selection.
	if err := s.Advance(); err != nil {
		t.Fatalf("advance after timeout: %v", err)
	}
	log := s.AnswerLog()
	if len(log) != 1 || log[0].Outcome != models.OutcomeTimedOut || log[0].Correct {
		t.Errorf("timeout entry = %+v, want timed_out/incorrect", log[0])
	}
	if log[0].SelectedValue != nil {
		t.Errorf("timeout entry has selected value %v, want nil", *log[0].SelectedValue)
	}
}

func TestQuestionTimeout_PracticeAutoAdvances(t *testing.T) {
	clk := newFakeClock()
	ft := &fakeTimer{}
	s := newTestSession(t, clk, ft)
	settings := examSettings(2)
	settings.TestMode = models.ModePractice
	settings.TimerMode = models.TimerPerQuestion
	settings.TimerSeconds = 5
	s.Start(settings)

	clk.Advance(5 * time.Second)
	ft.fireComplete()

	log := s.AnswerLog()
	if len(log) != 1 {
		t.Fatalf("answer log length = %d after practice timeout, want 1", len(log))
	}
	if log[0].Outcome != models.OutcomeTimedOut || log[0].Correct {
		t.Errorf("timeout entry = %+v, want timed_out/incorrect", log[0])
	}
	snap := s.Snapshot()
	if snap.CurrentIndex != 1 {
		t.Errorf("index = %d after practice timeout, want 1 (auto-advanced)", snap.CurrentIndex)
	}
}

func TestQuestionTimeout_StaleCallbackIgnored(t *testing.T) {
	clk := newFakeClock()
	ft := &fakeTimer{}
	s := newTestSession(t, clk, ft)
	settings := examSettings(3)
	settings.TimerMode = models.TimerPerQuestion
	settings.TimerSeconds = 5
	s.Start(settings)

	// Capture question 0's completion, then advance past it.
	ft.mu.Lock()
	stale := ft.onComplete
	ft.mu.Unlock()

	selectCorrect(t, s)
	clk.Advance(time.Second)
	s.Advance()

	stale() // fires against a superseded question

	snap := s.Snapshot()
	if snap.Locked {
		t.Error("stale timeout locked the current question")
	}
	if got := len(s.AnswerLog()); got != 1 {
		t.Errorf("answer log length = %d after stale timeout, want 1", got)
	}
}

func TestTotalTimeout_CompletesImmediately(t *testing.T) {
	clk := newFakeClock()
	ft := &fakeTimer{}
	s := newTestSession(t, clk, ft)
	settings := examSettings(5)
	settings.TimerMode = models.TimerTotal
	settings.TimerSeconds = 60
	s.Start(settings)

	selectCorrect(t, s)
	clk.Advance(10 * time.Second)
	s.Advance()

	clk.Advance(50 * time.Second)
	ft.fireComplete()

	result := s.Result()
	if result == nil {
		t.Fatal("no result after total timeout")
	}
	if result.TotalQuestions != 5 {
		t.Errorf("total = %d, want 5", result.TotalQuestions)
	}
	if result.CorrectCount != 1 {
		t.Errorf("correct = %d, want 1", result.CorrectCount)
	}
	if result.SkippedCount != 4 {
		t.Errorf("skipped = %d, want 4 (unanswered at expiry)", result.SkippedCount)
	}
}

// ── Practice auto-advance ───────────────────────────────

func TestPractice_AutoAdvanceAfterFeedbackDelay(t *testing.T) {
	s := New(Config{
		Generator:     generator.New(),
		FeedbackDelay: 20 * time.Millisecond,
	})
	settings := examSettings(2)
	settings.TestMode = models.ModePractice
	s.Start(settings)

	selectCorrect(t, s)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.Snapshot().CurrentIndex == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got := s.Snapshot().CurrentIndex; got != 1 {
		t.Fatalf("index = %d, want 1 (auto-advanced after feedback delay)", got)
	}
	if got := len(s.AnswerLog()); got != 1 {
		t.Errorf("answer log length = %d, want 1", got)
	}
}

func TestExam_NeverAutoAdvances(t *testing.T) {
	s := New(Config{
		Generator:     generator.New(),
		FeedbackDelay: 20 * time.Millisecond,
	})
	s.Start(examSettings(2))
	selectCorrect(t, s)

	time.Sleep(200 * time.Millisecond)
	if got := s.Snapshot().CurrentIndex; got != 0 {
		t.Fatalf("index = %d, want 0 (exam requires explicit advance)", got)
	}
}

func TestSnapshot_RemainingSeconds(t *testing.T) {
	ft := &fakeTimer{}
	s := newTestSession(t, newFakeClock(), ft)
	settings := examSettings(2)
	settings.TimerMode = models.TimerPerQuestion
	settings.TimerSeconds = 30
	s.Start(settings)

	snap := s.Snapshot()
	if snap.RemainingSec == nil || *snap.RemainingSec != 30 {
		t.Fatalf("remaining = %v before first tick, want 30", snap.RemainingSec)
	}

	ft.fireTick(7)
	snap = s.Snapshot()
	if snap.RemainingSec == nil || *snap.RemainingSec != 7 {
		t.Errorf("remaining = %v after tick, want 7", snap.RemainingSec)
	}
}

func TestSnapshot_NoRemainingWithoutTimer(t *testing.T) {
	s := newTestSession(t, nil, nil)
	s.Start(examSettings(1))

	if snap := s.Snapshot(); snap.RemainingSec != nil {
		t.Errorf("remaining = %d with timer off, want absent", *snap.RemainingSec)
	}
}

func TestRegistry_ReplaceDiscardsDisplacedResult(t *testing.T) {
	persisted := 0
	clk := newFakeClock()
	old := New(Config{
		Generator:     generator.New(),
		Clock:         clk.Now,
		FeedbackDelay: time.Hour,
		OnResult:      func(models.Result) { persisted++ },
	})
	old.Start(examSettings(3))
	selectCorrect(t, old)
	clk.Advance(time.Second)
	old.Advance()

	r := NewRegistry()
	r.Replace(7, old)
	r.Replace(7, newTestSession(t, nil, nil))

	if persisted != 0 {
		t.Errorf("displaced half-run persisted %d results, want 0", persisted)
	}
	if old.Snapshot().State != string(StateCompleted) {
		t.Error("displaced session not completed")
	}
	if got, ok := r.Get(7); !ok || got == old {
		t.Error("registry still serves the displaced session")
	}
}

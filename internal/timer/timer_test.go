package timer

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestCountdown_CompletesOnce(t *testing.T) {
	c := NewCountdown()
	var completes int32
	c.Start(1, nil, func() { atomic.AddInt32(&completes, 1) })

	time.Sleep(2500 * time.Millisecond)
	if got := atomic.LoadInt32(&completes); got != 1 {
		t.Errorf("onComplete fired %d times, want 1", got)
	}
}

func TestCountdown_Ticks(t *testing.T) {
	c := NewCountdown()
	var ticks int32
	done := make(chan struct{})
	c.Start(3, func(remaining int) {
		if remaining <= 0 {
			t.Errorf("tick with non-positive remaining %d", remaining)
		}
		atomic.AddInt32(&ticks, 1)
	}, func() { close(done) })

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("countdown never completed")
	}
	if got := atomic.LoadInt32(&ticks); got != 2 {
		t.Errorf("got %d ticks for a 3s countdown, want 2", got)
	}
	c.Stop()
}

func TestCountdown_StopPreventsCompletion(t *testing.T) {
	c := NewCountdown()
	var completes int32
	c.Start(1, nil, func() { atomic.AddInt32(&completes, 1) })
	c.Stop()

	time.Sleep(2 * time.Second)
	if got := atomic.LoadInt32(&completes); got != 0 {
		t.Errorf("onComplete fired %d times after Stop, want 0", got)
	}
}

func TestCountdown_RestartReplacesRunning(t *testing.T) {
	c := NewCountdown()
	var first, second int32
	c.Start(1, nil, func() { atomic.AddInt32(&first, 1) })
	c.Start(1, nil, func() { atomic.AddInt32(&second, 1) })

	time.Sleep(2500 * time.Millisecond)
	if got := atomic.LoadInt32(&first); got != 0 {
		t.Errorf("replaced countdown completed %d times, want 0", got)
	}
	if got := atomic.LoadInt32(&second); got != 1 {
		t.Errorf("replacing countdown completed %d times, want 1", got)
	}
}

func TestCountdown_StopIsIdempotent(t *testing.T) {
	c := NewCountdown()
	c.Stop()
	c.Start(1, nil, func() {})
	c.Stop()
	c.Stop()
}

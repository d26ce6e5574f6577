package timer

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduler_RunsDueTask(t *testing.T) {
	s := NewScheduler()
	s.Start()
	defer s.Stop()

	done := make(chan struct{})
	s.Schedule("t1", time.Now().Add(20*time.Millisecond), func() {
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Task did not run")
	}
}

func TestScheduler_Cancel(t *testing.T) {
	s := NewScheduler()
	s.Start()
	defer s.Stop()

	var fired int32
	s.Schedule("t1", time.Now().Add(50*time.Millisecond), func() {
		atomic.AddInt32(&fired, 1)
	})

	if !s.Cancel("t1") {
		t.Fatal("Expected Cancel to find the task")
	}
	if s.Cancel("t1") {
		t.Error("Expected second Cancel to report missing task")
	}

	time.Sleep(150 * time.Millisecond)
	if atomic.LoadInt32(&fired) != 0 {
		t.Error("Cancelled task still ran")
	}
}

func TestScheduler_ReplaceByID(t *testing.T) {
	s := NewScheduler()
	s.Start()
	defer s.Stop()

	var first, second int32
	s.Schedule("t1", time.Now().Add(30*time.Millisecond), func() {
		atomic.AddInt32(&first, 1)
	})
	s.Schedule("t1", time.Now().Add(30*time.Millisecond), func() {
		atomic.AddInt32(&second, 1)
	})

	if s.Pending() != 1 {
		t.Fatalf("Expected 1 pending task after replacement, got %d", s.Pending())
	}

	time.Sleep(200 * time.Millisecond)
	if atomic.LoadInt32(&first) != 0 {
		t.Error("Replaced task still ran")
	}
	if atomic.LoadInt32(&second) != 1 {
		t.Errorf("Expected replacement to run once, ran %d times", atomic.LoadInt32(&second))
	}
}

func TestScheduler_OrdersByRunTime(t *testing.T) {
	s := NewScheduler()
	s.Start()
	defer s.Stop()

	order := make(chan string, 2)
	s.Schedule("later", time.Now().Add(80*time.Millisecond), func() { order <- "later" })
	s.Schedule("sooner", time.Now().Add(20*time.Millisecond), func() { order <- "sooner" })

	if got := <-order; got != "sooner" {
		t.Errorf("Expected sooner first, got %s", got)
	}
	if got := <-order; got != "later" {
		t.Errorf("Expected later second, got %s", got)
	}
}

func TestScheduler_StopDropsPending(t *testing.T) {
	s := NewScheduler()
	s.Start()

	var fired int32
	s.Schedule("t1", time.Now().Add(100*time.Millisecond), func() {
		atomic.AddInt32(&fired, 1)
	})
	s.Stop()

	time.Sleep(200 * time.Millisecond)
	if atomic.LoadInt32(&fired) != 0 {
		t.Error("Task ran after Stop")
	}
}

package timer

import (
	"container/heap"
	"sync"
	"time"
)

// Task is a callback scheduled for future execution.
type Task struct {
	ID    string
	RunAt time.Time
	Fn    func()
	index int // heap index
}

// taskHeap is a min-heap of tasks ordered by RunAt.
type taskHeap []*Task

func (h taskHeap) Len() int            { return len(h) }
func (h taskHeap) Less(i, j int) bool  { return h[i].RunAt.Before(h[j].RunAt) }
func (h taskHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *taskHeap) Push(x interface{}) { t := x.(*Task); t.index = len(*h); *h = append(*h, t) }
func (h *taskHeap) Pop() interface{} {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

// Scheduler runs tasks at their scheduled times. Due tasks fire in their own
// goroutine so a slow callback never delays the next one.
type Scheduler struct {
	mu      sync.Mutex
	heap    taskHeap
	byID    map[string]*Task
	wakeup  chan struct{}
	stopCh  chan struct{}
	stopped bool
	wg      sync.WaitGroup
}

// NewScheduler creates a stopped scheduler; call Start before scheduling.
func NewScheduler() *Scheduler {
	return &Scheduler{
		byID:   make(map[string]*Task),
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
	}
}

// Start launches the dispatch loop.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()
}

// Stop halts dispatching. Already-fired callbacks finish; pending tasks are
// dropped.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	close(s.stopCh)
	s.mu.Unlock()
	s.wg.Wait()
}

// Schedule registers fn to run at runAt. Re-using an id replaces the pending
// task with that id.
func (s *Scheduler) Schedule(id string, runAt time.Time, fn func()) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	if existing, ok := s.byID[id]; ok {
		heap.Remove(&s.heap, existing.index)
	}
	task := &Task{ID: id, RunAt: runAt, Fn: fn}
	heap.Push(&s.heap, task)
	s.byID[id] = task
	s.mu.Unlock()

	s.poke()
}

// Cancel removes a pending task. Returns true if the task existed.
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.byID[id]
	if !ok {
		return false
	}
	heap.Remove(&s.heap, task.index)
	delete(s.byID, id)
	return true
}

// Pending returns the number of scheduled tasks.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.heap)
}

func (s *Scheduler) poke() {
	select {
	case s.wakeup <- struct{}{}:
	default:
	}
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		s.mu.Lock()
		var wait time.Duration
		if len(s.heap) == 0 {
			wait = time.Hour
		} else {
			wait = time.Until(s.heap[0].RunAt)
		}

		for len(s.heap) > 0 && wait <= 0 {
			task := heap.Pop(&s.heap).(*Task)
			delete(s.byID, task.ID)
			go task.Fn()
			if len(s.heap) > 0 {
				wait = time.Until(s.heap[0].RunAt)
			}
		}
		s.mu.Unlock()

		if wait <= 0 {
			wait = time.Millisecond
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(wait)

		select {
		case <-s.stopCh:
			return
		case <-s.wakeup:
		case <-timer.C:
		}
	}
}

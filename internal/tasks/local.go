package tasks

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// LocalScheduler runs tasks on timer goroutines inside the process.
// Pending tasks are lost if the process exits before Shutdown drains them.
type LocalScheduler struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
	closed   bool

	timeout time.Duration
	wg      sync.WaitGroup
	base    context.Context
	cancel  context.CancelFunc
}

// NewLocalScheduler creates a scheduler whose handlers run under the given timeout.
func NewLocalScheduler(timeout time.Duration) *LocalScheduler {
	if timeout <= 0 {
		timeout = defaultHandlerTimeout
	}
	base, cancel := context.WithCancel(context.Background())
	return &LocalScheduler{
		handlers: make(map[string]HandlerFunc),
		timeout:  timeout,
		base:     base,
		cancel:   cancel,
	}
}

func (s *LocalScheduler) Handle(taskType string, h HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[taskType] = h
}

func (s *LocalScheduler) Schedule(_ context.Context, taskType string, payload []byte, delay time.Duration) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrSchedulerClosed
	}
	h, ok := s.handlers[taskType]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoHandler, taskType)
	}

	// Add under the read lock so Shutdown cannot start waiting in between.
	s.wg.Add(1)
	go s.run(taskType, h, payload, delay)
	return nil
}

func (s *LocalScheduler) run(taskType string, h HandlerFunc, payload []byte, delay time.Duration) {
	defer s.wg.Done()

	if delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-s.base.Done():
			timer.Stop()
			log.Printf("task %s dropped on shutdown", taskType)
			return
		}
	}

	ctx, cancel := context.WithTimeout(s.base, s.timeout)
	defer cancel()

	if err := h(ctx, payload); err != nil {
		log.Printf("task %s failed: %v", taskType, err)
	}
}

// Start is a no-op; timers start when tasks are scheduled.
func (s *LocalScheduler) Start() error { return nil }

// Wait blocks until every scheduled task has finished.
func (s *LocalScheduler) Wait() {
	s.wg.Wait()
}

// Shutdown stops accepting tasks and waits for pending ones until ctx expires,
// then cancels whatever is left.
func (s *LocalScheduler) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		<-done
		return ctx.Err()
	}
}

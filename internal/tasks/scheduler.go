// Package tasks runs deferred continuations such as payment settlement and
// notification delivery, either in-process or through a Redis-backed queue.
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const (
	TypePaymentSettle       = "payment:settle"
	TypeNotificationDeliver = "notification:deliver"
	defaultHandlerTimeout   = 30 * time.Second
)

var (
	ErrNoHandler       = errors.New("no handler registered for task type")
	ErrSchedulerClosed = errors.New("scheduler is shut down")
)

// HandlerFunc processes one task payload.
type HandlerFunc func(ctx context.Context, payload []byte) error

// Scheduler runs a registered handler for a task after a delay.
type Scheduler interface {
	Handle(taskType string, h HandlerFunc)
	Schedule(ctx context.Context, taskType string, payload []byte, delay time.Duration) error
	Start() error
	Shutdown(ctx context.Context) error
}

// ScheduleJSON marshals v and schedules it.
func ScheduleJSON(ctx context.Context, s Scheduler, taskType string, v any, delay time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s payload failed: %w", taskType, err)
	}
	return s.Schedule(ctx, taskType, b, delay)
}

package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nekogravitycat/servicehub-backend/internal/tasks"
)

// Emitter is what other packages use to raise notifications.
// Emit writes inside the caller's transaction; Dispatch must run after it commits.
type Emitter interface {
	Emit(ctx context.Context, e Event) (*Notification, error)
	Dispatch(ctx context.Context, ns ...*Notification)
}

type Service interface {
	Emitter

	List(ctx context.Context, filter Filter) ([]*Notification, int, error)
	MarkRead(ctx context.Context, userID, id string) (*Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
}

type service struct {
	repo      Repository
	scheduler tasks.Scheduler
}

type deliverPayload struct {
	NotificationID string `json:"notification_id"`
}

// NewService registers the delivery handler on scheduler.
func NewService(repo Repository, scheduler tasks.Scheduler) Service {
	s := &service{repo: repo, scheduler: scheduler}
	scheduler.Handle(tasks.TypeNotificationDeliver, s.handleDeliver)
	return s
}

func (s *service) Emit(ctx context.Context, e Event) (*Notification, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}

	n := &Notification{
		UserID:    e.UserID,
		Type:      e.Type,
		Title:     e.Title,
		Message:   e.Message,
		BookingID: e.BookingID,
		ReviewID:  e.ReviewID,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *service) Dispatch(ctx context.Context, ns ...*Notification) {
	for _, n := range ns {
		if n == nil {
			continue
		}
		if err := tasks.ScheduleJSON(ctx, s.scheduler, tasks.TypeNotificationDeliver, deliverPayload{NotificationID: n.ID}, 0); err != nil {
			log.Printf("schedule delivery of notification %s failed: %v", n.ID, err)
		}
	}
}

func (s *service) handleDeliver(ctx context.Context, payload []byte) error {
	var p deliverPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("decode deliver payload failed: %w", err)
	}

	n, err := s.repo.GetByID(ctx, p.NotificationID)
	if err != nil {
		return err
	}
	if n.IsSent {
		return nil
	}

	log.Printf("notification %s (%s) delivered to user %s: %s", n.ID, n.Type, n.UserID, n.Title)
	return s.repo.MarkSent(ctx, n.ID)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Notification, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) MarkRead(ctx context.Context, userID, id string) (*Notification, error) {
	return s.repo.MarkRead(ctx, userID, id, time.Now())
}

func (s *service) MarkAllRead(ctx context.Context, userID string) (int, error) {
	return s.repo.MarkAllRead(ctx, userID, time.Now())
}

func (s *service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}

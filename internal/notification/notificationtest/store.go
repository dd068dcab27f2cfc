// Package notificationtest provides an in-memory notification repository for service tests.
package notificationtest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nekogravitycat/servicehub-backend/internal/notification"
)

// Store implements notification.Repository and dbtest.Snapshotter.
type Store struct {
	mu    sync.Mutex
	items map[string]notification.Notification
	seq   int
	order map[string]int
}

func NewStore() *Store {
	return &Store{
		items: map[string]notification.Notification{},
		order: map[string]int{},
	}
}

func (s *Store) Snapshot() func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make(map[string]notification.Notification, len(s.items))
	for k, v := range s.items {
		items[k] = v
	}
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.items = items
	}
}

// ForUser returns the user's notifications, oldest first.
func (s *Store) ForUser(userID string) []notification.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []notification.Notification
	for _, n := range s.items {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return s.order[out[i].ID] < s.order[out[j].ID] })
	return out
}

func (s *Store) All() []notification.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]notification.Notification, 0, len(s.items))
	for _, n := range s.items {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return s.order[out[i].ID] < s.order[out[j].ID] })
	return out
}

func (s *Store) Create(_ context.Context, n *notification.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n.ID = uuid.NewString()
	n.CreatedAt = time.Now()
	s.seq++
	s.order[n.ID] = s.seq
	s.items[n.ID] = *n
	return nil
}

func (s *Store) GetByID(_ context.Context, id string) (*notification.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.items[id]
	if !ok {
		return nil, notification.ErrNotFound
	}
	return &n, nil
}

func (s *Store) List(_ context.Context, filter notification.Filter) ([]*notification.Notification, int, error) {
	var out []*notification.Notification
	for _, n := range s.ForUser(filter.UserID) {
		if filter.UnreadOnly && n.IsRead {
			continue
		}
		out = append(out, &n)
	}
	// newest first
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	total := len(out)
	if filter.PageSize > 0 {
		start := 0
		if filter.Page > 1 {
			start = (filter.Page - 1) * filter.PageSize
		}
		if start > len(out) {
			start = len(out)
		}
		end := min(start+filter.PageSize, len(out))
		out = out[start:end]
	}
	return out, total, nil
}

func (s *Store) MarkRead(_ context.Context, userID, id string, at time.Time) (*notification.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.items[id]
	if !ok || n.UserID != userID {
		return nil, notification.ErrNotFound
	}
	n.IsRead = true
	if n.ReadAt == nil {
		n.ReadAt = &at
	}
	s.items[id] = n
	return &n, nil
}

func (s *Store) MarkAllRead(_ context.Context, userID string, at time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for id, n := range s.items {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &at
			s.items[id] = n
			count++
		}
	}
	return count, nil
}

func (s *Store) UnreadCount(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, n := range s.items {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *Store) MarkSent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.items[id]
	if !ok {
		return notification.ErrNotFound
	}
	n.IsSent = true
	s.items[id] = n
	return nil
}

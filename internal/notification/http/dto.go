package http

import (
	"time"

	"github.com/nekogravitycat/servicehub-backend/internal/notification"
	"github.com/nekogravitycat/servicehub-backend/internal/pkg/request"
)

type ListNotificationsRequest struct {
	request.ListParams
	UnreadOnly bool `form:"unread_only"`
}

type NotificationResponse struct {
	ID        string     `json:"id"`
	Type      string     `json:"notification_type"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	BookingID *string    `json:"booking_id"`
	ReviewID  *string    `json:"review_id"`
	IsRead    bool       `json:"is_read"`
	IsSent    bool       `json:"is_sent"`
	CreatedAt time.Time  `json:"created_at"`
	ReadAt    *time.Time `json:"read_at"`
}

func NewNotificationResponse(n *notification.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		BookingID: n.BookingID,
		ReviewID:  n.ReviewID,
		IsRead:    n.IsRead,
		IsSent:    n.IsSent,
		CreatedAt: n.CreatedAt,
		ReadAt:    n.ReadAt,
	}
}

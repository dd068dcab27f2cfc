package availability

import (
	"fmt"
	"time"

	"github.com/nekogravitycat/servicehub-backend/internal/pkg/apperror"
)

var (
	ErrNotFound       = apperror.NotFound("availability slot not found")
	ErrNotProvider    = apperror.Forbidden("only providers can manage availability")
	ErrInvalidDay     = apperror.Validation("day_of_week must be between 0 (Monday) and 6 (Sunday)")
	ErrInvalidTime    = apperror.Validation("times must be formatted as HH:MM or HH:MM:SS")
	ErrEndBeforeStart = apperror.Validation("end time must be after start time")
	ErrInvalidMax     = apperror.Validation("max_bookings_per_slot must be at least 1")
	ErrDuplicateSlot  = apperror.Conflict("a slot already starts at this time on this day")
)

var dayNames = [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Slot is a weekly window a provider accepts bookings in.
// Times are stored as "HH:MM:SS".
type Slot struct {
	ID                 string
	ProviderID         string
	DayOfWeek          int
	StartTime          string
	EndTime            string
	IsAvailable        bool
	MaxBookingsPerSlot int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (s *Slot) DayName() string {
	if s.DayOfWeek < 0 || s.DayOfWeek >= len(dayNames) {
		return ""
	}
	return dayNames[s.DayOfWeek]
}

// ParseClock normalizes "HH:MM" or "HH:MM:SS" to "HH:MM:SS".
func ParseClock(v string) (string, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, v); err == nil {
			return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second()), nil
		}
	}
	return "", ErrInvalidTime
}

func (s *Slot) validate() error {
	if s.DayOfWeek < 0 || s.DayOfWeek > 6 {
		return ErrInvalidDay
	}
	start, err := ParseClock(s.StartTime)
	if err != nil {
		return err
	}
	end, err := ParseClock(s.EndTime)
	if err != nil {
		return err
	}
	// Zero-padded clocks compare lexically.
	if end <= start {
		return ErrEndBeforeStart
	}
	if s.MaxBookingsPerSlot < 1 {
		return ErrInvalidMax
	}
	s.StartTime, s.EndTime = start, end
	return nil
}

package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nekogravitycat/servicehub-backend/internal/auth"
	"github.com/nekogravitycat/servicehub-backend/internal/booking"
	"github.com/nekogravitycat/servicehub-backend/internal/db"
	"github.com/nekogravitycat/servicehub-backend/internal/notification"
	"github.com/nekogravitycat/servicehub-backend/internal/tasks"
	"github.com/nekogravitycat/servicehub-backend/internal/user"
)

type CreateRequest struct {
	BookingID string
	Amount    float64
	Method    Method
}

type Service interface {
	// Create records a pending payment for a booking the customer owns.
	Create(ctx context.Context, actor auth.Actor, req CreateRequest) (*Payment, error)
	// Process settles cash at once; other methods go to processing and settle later.
	Process(ctx context.Context, actor auth.Actor, paymentID string) (*Payment, error)
	// Pay creates and processes a payment for the booking's quoted price.
	Pay(ctx context.Context, actor auth.Actor, bookingID string, method Method) (*Payment, error)

	GetByID(ctx context.Context, actor auth.Actor, id string) (*Payment, error)
	List(ctx context.Context, actor auth.Actor, filter Filter) ([]*Payment, int, error)
	Receipt(ctx context.Context, actor auth.Actor, id string, w io.Writer) error
}

// BookingStore is the part of booking.Repository payments need.
type BookingStore interface {
	GetByID(ctx context.Context, id string) (*booking.Booking, error)
	LockForPayment(ctx context.Context, id string) (*booking.Booking, error)
	SetPaymentStatus(ctx context.Context, id string, status booking.PaymentStatus) error
}

type Config struct {
	// Delay before an online payment settles.
	Delay       time.Duration
	SuccessRate float64
	// SettleTimeout bounds the settle task. A payment still processing after
	// Delay+SettleTimeout is abandoned by the next attempt on its booking.
	SettleTimeout time.Duration
}

type service struct {
	repo      Repository
	bookings  BookingStore
	tx        db.TxManager
	notifier  notification.Emitter
	scheduler tasks.Scheduler
	outcome   Outcome
	cfg       Config
	now       func() time.Time
}

type settlePayload struct {
	PaymentID string `json:"payment_id"`
}

// NewService registers the settle handler on scheduler.
func NewService(
	repo Repository,
	bookings BookingStore,
	tx db.TxManager,
	notifier notification.Emitter,
	scheduler tasks.Scheduler,
	outcome Outcome,
	cfg Config,
) Service {
	s := &service{
		repo:      repo,
		bookings:  bookings,
		tx:        tx,
		notifier:  notifier,
		scheduler: scheduler,
		outcome:   outcome,
		cfg:       cfg,
		now:       time.Now,
	}
	scheduler.Handle(tasks.TypePaymentSettle, s.handleSettle)
	return s
}

func eligible(b *booking.Booking, actor auth.Actor) bool {
	if actor.Role != user.RoleCustomer || b.CustomerID != actor.ID {
		return false
	}
	return b.Status == booking.StatusConfirmed || b.Status == booking.StatusCompleted
}

func (s *service) Create(ctx context.Context, actor auth.Actor, req CreateRequest) (*Payment, error) {
	if req.Method == "" {
		req.Method = MethodOnline
	}
	if !req.Method.Valid() {
		return nil, ErrInvalidMethod
	}

	b, err := s.bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			return nil, ErrBookingNotEligible
		}
		return nil, err
	}
	if !eligible(b, actor) {
		return nil, ErrBookingNotEligible
	}
	if !sameCents(req.Amount, b.QuotedPrice) {
		return nil, ErrAmountMismatch
	}
	paid, err := s.repo.HasStatus(ctx, b.ID, StatusCompleted)
	if err != nil {
		return nil, err
	}
	if paid {
		return nil, ErrAlreadyPaid
	}

	p := &Payment{
		BookingID:  b.ID,
		CustomerID: actor.ID,
		Amount:     b.QuotedPrice,
		Method:     req.Method,
		Status:     StatusPending,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) Process(ctx context.Context, actor auth.Actor, paymentID string) (*Payment, error) {
	var (
		p     *Payment
		after func()
	)
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		// Booking row first, then payment, the same order Pay and settle use.
		found, err := s.repo.GetByID(ctx, paymentID)
		if err != nil {
			return err
		}
		if found.CustomerID != actor.ID {
			return ErrNotFound
		}

		b, err := s.bookings.LockForPayment(ctx, found.BookingID)
		if err != nil {
			if errors.Is(err, booking.ErrNotFound) {
				return ErrBookingNotEligible
			}
			return err
		}
		p, err = s.repo.LockByID(ctx, paymentID)
		if err != nil {
			return err
		}
		if p.Status != StatusPending {
			return ErrNotPending
		}
		if !eligible(b, actor) {
			return ErrBookingNotEligible
		}
		if err := s.checkOpen(ctx, b.ID); err != nil {
			return err
		}

		after, err = s.begin(ctx, p)
		return err
	})
	if err != nil {
		return nil, err
	}

	after()
	return p, nil
}

func (s *service) Pay(ctx context.Context, actor auth.Actor, bookingID string, method Method) (*Payment, error) {
	if method == "" {
		method = MethodOnline
	}
	if !method.Valid() {
		return nil, ErrInvalidMethod
	}

	var (
		p     *Payment
		after func()
	)
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		b, err := s.bookings.LockForPayment(ctx, bookingID)
		if err != nil {
			if errors.Is(err, booking.ErrNotFound) {
				return ErrBookingNotEligible
			}
			return err
		}
		if !eligible(b, actor) {
			return ErrBookingNotEligible
		}

		if err := s.checkOpen(ctx, b.ID); err != nil {
			return err
		}

		p = &Payment{
			BookingID:  b.ID,
			CustomerID: actor.ID,
			Amount:     b.QuotedPrice,
			Method:     method,
			Status:     StatusPending,
		}
		if err := s.repo.Create(ctx, p); err != nil {
			return err
		}

		after, err = s.begin(ctx, p)
		return err
	})
	if err != nil {
		return nil, err
	}

	after()
	return p, nil
}

// checkOpen refuses a booking that is paid or has a payment in flight.
// Callers hold the booking row lock. Processing payments older than the
// settle window count as abandoned and are failed first.
func (s *service) checkOpen(ctx context.Context, bookingID string) error {
	paid, err := s.repo.HasStatus(ctx, bookingID, StatusCompleted)
	if err != nil {
		return err
	}
	if paid {
		return ErrAlreadyPaid
	}

	now := s.now()
	abandoned, err := s.repo.AbandonProcessing(ctx, bookingID, now.Add(-(s.cfg.Delay + s.cfg.SettleTimeout)), now)
	if err != nil {
		return err
	}
	if abandoned > 0 {
		log.Printf("abandoned %d unsettled payment(s) of booking %s", abandoned, bookingID)
		if err := s.bookings.SetPaymentStatus(ctx, bookingID, booking.PaymentFailed); err != nil {
			return err
		}
	}

	inFlight, err := s.repo.HasStatus(ctx, bookingID, StatusProcessing)
	if err != nil {
		return err
	}
	if inFlight {
		return ErrPaymentInProgress
	}
	return nil
}

// begin moves a pending payment forward inside the caller's transaction.
// The returned func must run after commit.
func (s *service) begin(ctx context.Context, p *Payment) (func(), error) {
	if p.Status != StatusPending {
		return nil, ErrNotPending
	}

	now := s.now()
	p.ProcessedAt = &now

	if p.Method == MethodCash {
		p.TransactionID = ptr("CASH_" + shortHex(p.ID))
		p.GatewayResponse = map[string]any{
			"status":         "success",
			"message":        "Cash payment recorded",
			"payment_method": string(MethodCash),
		}
		n, err := s.complete(ctx, p, now)
		if err != nil {
			return nil, err
		}
		return func() { s.notifier.Dispatch(ctx, n) }, nil
	}

	p.Status = StatusProcessing
	p.TransactionID = ptr("TXN_" + shortHex(uuid.NewString()))
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	id := p.ID
	return func() {
		// The request context only needs to outlive the enqueue.
		if err := tasks.ScheduleJSON(ctx, s.scheduler, tasks.TypePaymentSettle, settlePayload{PaymentID: id}, s.cfg.Delay); err != nil {
			log.Printf("schedule settle of payment %s failed, it stays processing until abandoned: %v", id, err)
		}
	}, nil
}

// complete writes the completed payment, marks the booking paid and notifies the provider.
func (s *service) complete(ctx context.Context, p *Payment, now time.Time) (*notification.Notification, error) {
	p.Status = StatusCompleted
	p.CompletedAt = &now
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	if err := s.bookings.SetPaymentStatus(ctx, p.BookingID, booking.PaymentPaid); err != nil {
		return nil, err
	}

	b, err := s.bookings.GetByID(ctx, p.BookingID)
	if err != nil {
		return nil, err
	}
	return s.notifier.Emit(ctx, notification.Event{
		UserID:    b.ProviderID,
		Type:      notification.TypePaymentReceived,
		Title:     "Payment Received",
		Message:   fmt.Sprintf("Payment of $%.2f received from %s", p.Amount, b.CustomerName),
		BookingID: &b.ID,
	})
}

func (s *service) handleSettle(ctx context.Context, payload []byte) error {
	var sp settlePayload
	if err := json.Unmarshal(payload, &sp); err != nil {
		return fmt.Errorf("decode settle payload failed: %w", err)
	}
	return s.settle(ctx, sp.PaymentID)
}

// settle draws the gateway outcome for a processing payment.
// Payments that already left processing are left alone.
func (s *service) settle(ctx context.Context, paymentID string) error {
	var n *notification.Notification
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		found, err := s.repo.GetByID(ctx, paymentID)
		if err != nil {
			return err
		}
		if _, err := s.bookings.LockForPayment(ctx, found.BookingID); err != nil {
			return err
		}
		p, err := s.repo.LockByID(ctx, paymentID)
		if err != nil {
			return err
		}
		if p.Status != StatusProcessing {
			return nil
		}

		now := s.now()
		stamp := now.UTC().Format(time.RFC3339)

		if s.outcome.Sample() < s.cfg.SuccessRate {
			p.GatewayResponse = map[string]any{
				"status":         "success",
				"transaction_id": deref(p.TransactionID),
				"message":        successMessage,
				"gateway":        gatewayName,
				"timestamp":      stamp,
			}
			n, err = s.complete(ctx, p, now)
			return err
		}

		p.Status = StatusFailed
		p.FailedAt = &now
		p.FailureReason = ptr(declineReason)
		p.GatewayResponse = map[string]any{
			"status":     "failed",
			"error_code": declineCode,
			"message":    declineReason,
			"gateway":    gatewayName,
			"timestamp":  stamp,
		}
		if err := s.repo.Update(ctx, p); err != nil {
			return err
		}
		return s.bookings.SetPaymentStatus(ctx, p.BookingID, booking.PaymentFailed)
	})
	if err != nil {
		return err
	}

	s.notifier.Dispatch(ctx, n)
	return nil
}

func (s *service) GetByID(ctx context.Context, actor auth.Actor, id string) (*Payment, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.CustomerID != actor.ID {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *service) List(ctx context.Context, actor auth.Actor, filter Filter) ([]*Payment, int, error) {
	filter.CustomerID = actor.ID
	return s.repo.List(ctx, filter)
}

func (s *service) Receipt(ctx context.Context, actor auth.Actor, id string, w io.Writer) error {
	p, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return err
	}
	if p.Status != StatusCompleted {
		return ErrNoReceipt
	}

	b, err := s.bookings.GetByID(ctx, p.BookingID)
	if err != nil {
		return err
	}
	return writeReceipt(w, p, b)
}

// shortHex is the first 12 hex digits of a UUID, upper-cased.
func shortHex(id string) string {
	h := strings.ToUpper(strings.ReplaceAll(id, "-", ""))
	if len(h) > 12 {
		h = h[:12]
	}
	return h
}

func ptr[T any](v T) *T { return &v }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

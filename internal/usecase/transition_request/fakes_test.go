package transition_request

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/bookingrequest"
	contractorRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/contractor"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/notifier"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/payment"
)

// fakeStore хранилище в памяти с условными обновлениями как в SQL
type fakeStore struct {
	bookings map[int64]domain.Booking
	requests map[int64]domain.BookingRequest
	// stale подменяет результат FindExpiredPending (устаревшее чтение)
	stale []*domain.BookingRequest
	// staleReads подменяет результат GetByID до начала транзакции
	staleReads map[int64]domain.BookingRequest
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		bookings: map[int64]domain.Booking{},
		requests: map[int64]domain.BookingRequest{},
	}
}

func (s *fakeStore) snapshot() (map[int64]domain.Booking, map[int64]domain.BookingRequest) {
	b := make(map[int64]domain.Booking, len(s.bookings))
	for k, v := range s.bookings {
		b[k] = v
	}
	r := make(map[int64]domain.BookingRequest, len(s.requests))
	for k, v := range s.requests {
		r[k] = v
	}
	return b, r
}

// rollbackTx откатывает изменения хранилища при ошибке fn
type rollbackTx struct {
	store *fakeStore
}

func (t rollbackTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	b, r := t.store.snapshot()
	if err := fn(ctx); err != nil {
		t.store.bookings, t.store.requests = b, r
		return err
	}
	return nil
}

type fakeBookings struct{ store *fakeStore }

func (f fakeBookings) LockByID(_ context.Context, id int64) (*domain.Booking, error) {
	b, ok := f.store.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return &b, nil
}

func (f fakeBookings) Confirm(_ context.Context, id, contractorID int64, contractorName string) error {
	b, ok := f.store.bookings[id]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	if b.Status != domain.StatusPending {
		return bookingRepo.ErrStatusMismatch
	}
	b.Status = domain.StatusConfirmed
	b.PaymentStatus = domain.PaymentCaptured
	b.ContractorID = &contractorID
	b.Snapshot.ContractorName = &contractorName
	f.store.bookings[id] = b
	return nil
}

func (f fakeBookings) Cancel(_ context.Context, id int64, from domain.BookingStatus, reason string, cancelledAt time.Time) error {
	b, ok := f.store.bookings[id]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	if b.Status != from {
		return bookingRepo.ErrStatusMismatch
	}
	b.Status = domain.StatusCancelled
	b.CancellationReason = &reason
	b.CancelledAt = &cancelledAt
	f.store.bookings[id] = b
	return nil
}

func (f fakeBookings) UpdatePaymentStatus(_ context.Context, id int64, status domain.PaymentStatus, reconciliationRequired bool) error {
	b, ok := f.store.bookings[id]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	b.PaymentStatus = status
	b.PaymentReconciliationRequired = reconciliationRequired
	f.store.bookings[id] = b
	return nil
}

type fakeRequests struct{ store *fakeStore }

func (f fakeRequests) GetByID(_ context.Context, id int64) (*domain.BookingRequest, error) {
	if r, ok := f.store.staleReads[id]; ok {
		return &r, nil
	}
	r, ok := f.store.requests[id]
	if !ok {
		return nil, bookingrequest.ErrRequestNotFound
	}
	return &r, nil
}

func (f fakeRequests) FindExpiredPending(_ context.Context, now time.Time, limit int) ([]*domain.BookingRequest, error) {
	if f.store.stale != nil {
		return f.store.stale, nil
	}
	var out []*domain.BookingRequest
	for _, r := range f.store.requests {
		if r.Status == domain.RequestPending && !r.ExpiresAt.After(now) {
			r := r
			out = append(out, &r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f fakeRequests) CountPendingByBooking(_ context.Context, bookingID, exceptID int64) (int, error) {
	count := 0
	for _, r := range f.store.requests {
		if r.BookingID == bookingID && r.ID != exceptID && r.Status == domain.RequestPending {
			count++
		}
	}
	return count, nil
}

func (f fakeRequests) Transition(_ context.Context, p bookingrequest.TransitionParams) (*domain.BookingRequest, error) {
	r, ok := f.store.requests[p.ID]
	if !ok {
		return nil, bookingrequest.ErrRequestNotFound
	}

	applies := r.Status == domain.RequestPending
	switch p.To {
	case domain.RequestAccepted:
		applies = applies && r.ExpiresAt.After(p.Now)
	case domain.RequestExpired:
		applies = applies && !r.ExpiresAt.After(p.Now)
	}
	if !applies {
		current := r
		return &current, fmt.Errorf("%w: request id=%d", bookingrequest.ErrStatusMismatch, p.ID)
	}

	r.Status = p.To
	r.RefusalReason = p.RefusalReason
	r.ContractorMessage = p.ContractorMessage
	if p.To != domain.RequestExpired {
		now := p.Now
		r.RespondedAt = &now
	}
	f.store.requests[p.ID] = r
	updated := r
	return &updated, nil
}

func (f fakeRequests) ExpireSiblings(_ context.Context, bookingID, exceptID int64, _ time.Time, reason string) (int64, error) {
	var n int64
	for id, r := range f.store.requests {
		if r.BookingID == bookingID && id != exceptID && r.Status == domain.RequestPending {
			r.Status = domain.RequestExpired
			r.RefusalReason = &reason
			f.store.requests[id] = r
			n++
		}
	}
	return n, nil
}

type fakeContractors map[int64]*domain.Contractor

func (f fakeContractors) GetByID(_ context.Context, id int64) (*domain.Contractor, error) {
	c, ok := f[id]
	if !ok {
		return nil, contractorRepo.ErrContractorNotFound
	}
	return c, nil
}

type fakePayment struct {
	captureErr error
	cancelErr  error
	captures   []string // ключи идемпотентности
	cancels    []string
}

func (p *fakePayment) Capture(_ context.Context, intentID string, amount int64, key string) (*payment.Intent, error) {
	p.captures = append(p.captures, key)
	if p.captureErr != nil {
		return nil, p.captureErr
	}
	return &payment.Intent{ID: intentID, Status: payment.IntentSucceeded, Amount: amount}, nil
}

func (p *fakePayment) CancelAuthorization(_ context.Context, _ string, key string) error {
	p.cancels = append(p.cancels, key)
	return p.cancelErr
}

type sent struct {
	to   string
	kind notifier.Kind
	data notifier.Payload
}

type fakeNotifier struct{ sent []sent }

func (n *fakeNotifier) Notify(_ context.Context, r notifier.Recipient, k notifier.Kind, p notifier.Payload) {
	n.sent = append(n.sent, sent{to: r.Email, kind: k, data: p})
}

type fakeMetrics struct {
	transitions     []string
	reconciliations []string
	sweeps          []string
	expired         int
}

func (m *fakeMetrics) RecordTransition(action, outcome string) {
	m.transitions = append(m.transitions, action+":"+outcome)
}

func (m *fakeMetrics) RecordReconciliation(reason string) {
	m.reconciliations = append(m.reconciliations, reason)
}

func (m *fakeMetrics) RecordSweep(result string, expired int) {
	m.sweeps = append(m.sweeps, result)
	m.expired += expired
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

package transition_request

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/notifier"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/payment"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

var (
	now        = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ivan       = domain.Actor{UserID: 7, Role: domain.RoleContractor}
	petr       = domain.Actor{UserID: 8, Role: domain.RoleContractor}
	admin      = domain.Actor{UserID: 1, Role: domain.RoleAdmin}
	scheduleAt = time.Date(2025, 6, 3, 8, 0, 0, 0, time.UTC)
)

type fixture struct {
	store    *fakeStore
	payment  *fakePayment
	notifier *fakeNotifier
	metrics  *fakeMetrics
	uc       *UseCase
}

func newFixture() *fixture {
	f := &fixture{
		store:    newFakeStore(),
		payment:  &fakePayment{},
		notifier: &fakeNotifier{},
		metrics:  &fakeMetrics{},
	}
	contractors := fakeContractors{
		7: {ID: 7, FullName: "Иван", Email: "ivan@example.com", IsActive: true},
		8: {ID: 8, FullName: "Петр", Email: "petr@example.com", IsActive: true},
	}
	f.uc = NewUseCase(fakeBookings{f.store}, fakeRequests{f.store}, contractors, f.payment, f.notifier,
		rollbackTx{f.store}, f.metrics, logger.Nop()).WithTimeProvider(fixedClock{now: now})
	return f
}

func (f *fixture) addBooking(id int64) {
	f.store.bookings[id] = domain.Booking{
		ID:              id,
		ClientID:        42,
		ScheduledAt:     scheduleAt,
		Timezone:        "Europe/Paris",
		DurationMinutes: 60,
		Status:          domain.StatusPending,
		PaymentStatus:   domain.PaymentAuthorized,
		ServiceAmount:   5000,
		Currency:        "eur",
		PaymentIntentID: ptr.Ptr(fmt.Sprintf("pi_%d", id)),
		Snapshot: domain.BookingSnapshot{
			ClientName:  "Анна",
			ClientEmail: "anna@example.com",
			ServiceName: "Уборка",
		},
	}
}

func (f *fixture) addRequest(id, bookingID, contractorID int64, expiresAt time.Time) {
	f.store.requests[id] = domain.BookingRequest{
		ID:           id,
		BookingID:    bookingID,
		ContractorID: contractorID,
		Status:       domain.RequestPending,
		RequestedAt:  expiresAt.Add(-24 * time.Hour),
		ExpiresAt:    expiresAt,
	}
}

func (f *fixture) kinds() []notifier.Kind {
	out := make([]notifier.Kind, 0, len(f.notifier.sent))
	for _, s := range f.notifier.sent {
		out = append(out, s.kind)
	}
	return out
}

func TestUseCase_Accept(t *testing.T) {
	f := newFixture()
	f.addBooking(100)
	f.addRequest(1, 100, 7, now.Add(time.Hour))
	f.addRequest(2, 100, 8, now.Add(time.Hour))

	resp, err := f.uc.Accept(context.Background(), &Request{Actor: ivan, RequestID: 1, Message: ptr.Ptr("Буду вовремя")})

	require.NoError(t, err)
	assert.Equal(t, "accepted", resp.Status)
	assert.Equal(t, "confirmed", resp.BookingStatus)
	assert.Equal(t, "captured", resp.PaymentStatus)
	require.NotNil(t, resp.RespondedAt)
	assert.Equal(t, now, *resp.RespondedAt)

	booking := f.store.bookings[100]
	assert.Equal(t, domain.StatusConfirmed, booking.Status)
	assert.Equal(t, domain.PaymentCaptured, booking.PaymentStatus)
	require.NotNil(t, booking.ContractorID)
	assert.Equal(t, int64(7), *booking.ContractorID)
	assert.Equal(t, "Иван", *booking.Snapshot.ContractorName)
	assert.NoError(t, booking.CheckPaymentConsistency())

	sibling := f.store.requests[2]
	assert.Equal(t, domain.RequestExpired, sibling.Status)
	assert.Equal(t, domain.ReasonSuperseded, *sibling.RefusalReason)

	assert.Equal(t, []string{"capture-request-1"}, f.payment.captures)
	assert.Equal(t, []notifier.Kind{notifier.KindRequestAccepted, notifier.KindBookingConfirmed}, f.kinds())
	assert.Equal(t, "ivan@example.com", f.notifier.sent[0].to)
	assert.Equal(t, "anna@example.com", f.notifier.sent[1].to)
	assert.Equal(t, "Буду вовремя", f.notifier.sent[1].data.Message)
	assert.Equal(t, []string{"accept:ok"}, f.metrics.transitions)
}

func TestUseCase_AcceptCaptureFailureRollsBack(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{name: "declined", err: fmt.Errorf("%w: insufficient_funds", payment.ErrDeclined), wantErr: ErrPaymentDeclined},
		{name: "no response", err: fmt.Errorf("%w: timeout", payment.ErrUnavailable), wantErr: ErrPaymentUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.addBooking(100)
			f.addRequest(1, 100, 7, now.Add(time.Hour))
			f.addRequest(2, 100, 8, now.Add(time.Hour))
			f.payment.captureErr = tt.err

			_, err := f.uc.Accept(context.Background(), &Request{Actor: ivan, RequestID: 1})

			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, domain.RequestPending, f.store.requests[1].Status)
			assert.Equal(t, domain.RequestPending, f.store.requests[2].Status)
			assert.Equal(t, domain.StatusPending, f.store.bookings[100].Status)
			assert.Equal(t, domain.PaymentAuthorized, f.store.bookings[100].PaymentStatus)
			assert.Nil(t, f.store.bookings[100].ContractorID)
			assert.Empty(t, f.notifier.sent)
			assert.Empty(t, f.metrics.reconciliations)
			assert.Equal(t, []string{"accept:payment_error"}, f.metrics.transitions)
		})
	}
}

func TestUseCase_AcceptExpiredRequest(t *testing.T) {
	t.Run("last pending request cancels booking", func(t *testing.T) {
		f := newFixture()
		f.addBooking(100)
		f.addRequest(1, 100, 7, now) // expiresAt == now: уже истек

		_, err := f.uc.Accept(context.Background(), &Request{Actor: ivan, RequestID: 1})

		require.ErrorIs(t, err, ErrRequestExpired)
		assert.Equal(t, domain.RequestExpired, f.store.requests[1].Status)
		assert.Equal(t, domain.StatusCancelled, f.store.bookings[100].Status)
		assert.Equal(t, domain.ReasonExpired, *f.store.bookings[100].CancellationReason)
		assert.Equal(t, domain.PaymentCancelled, f.store.bookings[100].PaymentStatus)
		assert.Empty(t, f.payment.captures)
		assert.Equal(t, []string{"cancel-booking-100"}, f.payment.cancels)
		assert.Equal(t, []notifier.Kind{notifier.KindRequestExpired}, f.kinds())
	})

	t.Run("other pending requests keep booking open", func(t *testing.T) {
		f := newFixture()
		f.addBooking(100)
		f.addRequest(1, 100, 7, now.Add(-time.Minute))
		f.addRequest(2, 100, 8, now.Add(time.Hour))

		_, err := f.uc.Accept(context.Background(), &Request{Actor: ivan, RequestID: 1})

		require.ErrorIs(t, err, ErrRequestExpired)
		assert.Equal(t, domain.RequestExpired, f.store.requests[1].Status)
		assert.Equal(t, domain.RequestPending, f.store.requests[2].Status)
		assert.Equal(t, domain.StatusPending, f.store.bookings[100].Status)
		assert.Empty(t, f.payment.cancels)
		assert.Empty(t, f.notifier.sent)
	})
}

func TestUseCase_AcceptRejected(t *testing.T) {
	t.Run("already refused", func(t *testing.T) {
		f := newFixture()
		f.addBooking(100)
		f.addRequest(1, 100, 7, now.Add(time.Hour))
		r := f.store.requests[1]
		r.Status = domain.RequestRefused
		f.store.requests[1] = r

		_, err := f.uc.Accept(context.Background(), &Request{Actor: ivan, RequestID: 1})

		assert.ErrorIs(t, err, ErrRequestNotPending)
		assert.Empty(t, f.payment.captures)
	})

	t.Run("another contractor", func(t *testing.T) {
		f := newFixture()
		f.addBooking(100)
		f.addRequest(1, 100, 7, now.Add(time.Hour))

		_, err := f.uc.Accept(context.Background(), &Request{Actor: petr, RequestID: 1})

		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("booking already confirmed", func(t *testing.T) {
		f := newFixture()
		f.addBooking(100)
		f.addRequest(1, 100, 7, now.Add(time.Hour))
		b := f.store.bookings[100]
		b.Status = domain.StatusConfirmed
		b.PaymentStatus = domain.PaymentCaptured
		f.store.bookings[100] = b

		_, err := f.uc.Accept(context.Background(), &Request{Actor: ivan, RequestID: 1})

		assert.ErrorIs(t, err, ErrBookingNotPending)
		assert.Equal(t, domain.RequestPending, f.store.requests[1].Status)
		assert.Empty(t, f.payment.captures)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture()

		_, err := f.uc.Accept(context.Background(), &Request{Actor: ivan, RequestID: 404})

		assert.ErrorIs(t, err, ErrRequestNotFound)
	})
}

func TestUseCase_Refuse(t *testing.T) {
	t.Run("sibling pending keeps booking", func(t *testing.T) {
		f := newFixture()
		f.addBooking(100)
		f.addRequest(1, 100, 7, now.Add(time.Hour))
		f.addRequest(2, 100, 8, now.Add(time.Hour))

		resp, err := f.uc.Refuse(context.Background(), &Request{Actor: ivan, RequestID: 1, Reason: ptr.Ptr("Занят")})

		require.NoError(t, err)
		assert.Equal(t, "refused", resp.Status)
		assert.Equal(t, "pending", resp.BookingStatus)
		assert.Equal(t, "Занят", *f.store.requests[1].RefusalReason)
		assert.Equal(t, domain.RequestPending, f.store.requests[2].Status)
		assert.Empty(t, f.payment.cancels)
		assert.Empty(t, f.notifier.sent)
	})

	t.Run("last pending cancels booking and releases hold", func(t *testing.T) {
		f := newFixture()
		f.addBooking(100)
		f.addRequest(1, 100, 7, now.Add(time.Hour))

		resp, err := f.uc.Refuse(context.Background(), &Request{Actor: ivan, RequestID: 1, Reason: ptr.Ptr("Болею")})

		require.NoError(t, err)
		assert.Equal(t, "cancelled", resp.BookingStatus)
		assert.Equal(t, "cancelled", resp.PaymentStatus)

		booking := f.store.bookings[100]
		assert.Equal(t, domain.StatusCancelled, booking.Status)
		assert.Equal(t, domain.ReasonRefused, *booking.CancellationReason)
		assert.Equal(t, now, *booking.CancelledAt)
		assert.Equal(t, domain.PaymentCancelled, booking.PaymentStatus)
		assert.False(t, booking.PaymentReconciliationRequired)
		assert.NoError(t, booking.CheckPaymentConsistency())

		require.Len(t, f.notifier.sent, 1)
		assert.Equal(t, notifier.KindRequestRefused, f.notifier.sent[0].kind)
		assert.Equal(t, "anna@example.com", f.notifier.sent[0].to)
		assert.Equal(t, "Болею", f.notifier.sent[0].data.Reason)
	})

	t.Run("cancel failure flags reconciliation", func(t *testing.T) {
		f := newFixture()
		f.addBooking(100)
		f.addRequest(1, 100, 7, now.Add(time.Hour))
		f.payment.cancelErr = fmt.Errorf("%w: 503", payment.ErrUnavailable)

		_, err := f.uc.Refuse(context.Background(), &Request{Actor: ivan, RequestID: 1, Reason: ptr.Ptr("Занят")})

		require.NoError(t, err)
		booking := f.store.bookings[100]
		assert.Equal(t, domain.StatusCancelled, booking.Status)
		assert.Equal(t, domain.PaymentAuthorized, booking.PaymentStatus)
		assert.True(t, booking.PaymentReconciliationRequired)
		assert.Equal(t, []string{"refuse"}, f.metrics.reconciliations)
		assert.Len(t, f.notifier.sent, 1)
	})

	t.Run("admin refuses on behalf", func(t *testing.T) {
		f := newFixture()
		f.addBooking(100)
		f.addRequest(1, 100, 7, now.Add(time.Hour))
		f.addRequest(2, 100, 8, now.Add(time.Hour))

		_, err := f.uc.Refuse(context.Background(), &Request{Actor: admin, RequestID: 1, Reason: ptr.Ptr("Исполнитель в отпуске")})

		require.NoError(t, err)
		assert.Equal(t, domain.RequestRefused, f.store.requests[1].Status)
	})

	t.Run("second refusal loses", func(t *testing.T) {
		f := newFixture()
		f.addBooking(100)
		f.addRequest(1, 100, 7, now.Add(time.Hour))
		f.addRequest(2, 100, 8, now.Add(time.Hour))

		_, err := f.uc.Refuse(context.Background(), &Request{Actor: ivan, RequestID: 1, Reason: ptr.Ptr("Занят")})
		require.NoError(t, err)

		_, err = f.uc.Refuse(context.Background(), &Request{Actor: ivan, RequestID: 1, Reason: ptr.Ptr("Занят")})
		assert.ErrorIs(t, err, ErrRequestNotPending)
	})

	t.Run("reason is required", func(t *testing.T) {
		for _, reason := range []*string{nil, ptr.Ptr(""), ptr.Ptr("   ")} {
			f := newFixture()
			f.addBooking(100)
			f.addRequest(1, 100, 7, now.Add(time.Hour))

			_, err := f.uc.Refuse(context.Background(), &Request{Actor: ivan, RequestID: 1, Reason: reason})

			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Equal(t, domain.RequestPending, f.store.requests[1].Status)
			assert.Equal(t, domain.StatusPending, f.store.bookings[100].Status)
			assert.Empty(t, f.payment.cancels)
			assert.Empty(t, f.notifier.sent)
		}
	})

	t.Run("reason too long", func(t *testing.T) {
		f := newFixture()

		_, err := f.uc.Refuse(context.Background(), &Request{Actor: ivan, RequestID: 1, Reason: ptr.Ptr(strings.Repeat("x", domain.MaxReasonLength+1))})

		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("limits count characters not bytes", func(t *testing.T) {
		f := newFixture()
		f.addBooking(100)
		f.addRequest(1, 100, 7, now.Add(time.Hour))
		f.addRequest(2, 100, 8, now.Add(time.Hour))

		_, err := f.uc.Refuse(context.Background(), &Request{
			Actor:     ivan,
			RequestID: 1,
			Reason:    ptr.Ptr(strings.Repeat("я", domain.MaxReasonLength)),
			Message:   ptr.Ptr(strings.Repeat("ж", domain.MaxContractorMessageSize)),
		})

		require.NoError(t, err)
		assert.Equal(t, domain.RequestRefused, f.store.requests[1].Status)
	})
}

func TestUseCase_AcceptTwice(t *testing.T) {
	f := newFixture()
	f.addBooking(100)
	f.addRequest(1, 100, 7, now.Add(time.Hour))

	_, err := f.uc.Accept(context.Background(), &Request{Actor: ivan, RequestID: 1})
	require.NoError(t, err)

	_, err = f.uc.Accept(context.Background(), &Request{Actor: ivan, RequestID: 1})

	assert.ErrorIs(t, err, ErrRequestNotPending)
	assert.Equal(t, []string{"capture-request-1"}, f.payment.captures)
	assert.Equal(t, domain.RequestAccepted, f.store.requests[1].Status)
	assert.Equal(t, domain.StatusConfirmed, f.store.bookings[100].Status)
	assert.Equal(t, []string{"accept:ok", "accept:lost_race"}, f.metrics.transitions)
}

func TestUseCase_AcceptLosesRaceInTransaction(t *testing.T) {
	f := newFixture()
	f.addBooking(100)
	f.addRequest(1, 100, 7, now.Add(time.Hour))
	f.addRequest(2, 100, 8, now.Add(time.Hour))

	// запрос прочитан как pending, но к моменту транзакции уже отклонен
	f.store.staleReads = map[int64]domain.BookingRequest{1: f.store.requests[1]}
	r := f.store.requests[1]
	r.Status = domain.RequestRefused
	f.store.requests[1] = r

	_, err := f.uc.Accept(context.Background(), &Request{Actor: ivan, RequestID: 1})

	assert.ErrorIs(t, err, ErrRequestNotPending)
	assert.Empty(t, f.payment.captures)
	assert.Equal(t, domain.RequestRefused, f.store.requests[1].Status)
	assert.Equal(t, domain.RequestPending, f.store.requests[2].Status)
	assert.Equal(t, domain.StatusPending, f.store.bookings[100].Status)
	assert.Nil(t, f.store.bookings[100].ContractorID)
	assert.Empty(t, f.notifier.sent)
	assert.Equal(t, []string{"accept:lost_race"}, f.metrics.transitions)
}

func TestUseCase_Expire(t *testing.T) {
	f := newFixture()
	f.addBooking(100)
	f.addRequest(1, 100, 7, now.Add(time.Hour))

	_, err := f.uc.Expire(context.Background(), 1)

	assert.ErrorIs(t, err, ErrRequestNotExpired)
	assert.Equal(t, domain.RequestPending, f.store.requests[1].Status)
}

func TestUseCase_Sweep(t *testing.T) {
	f := newFixture()
	f.addBooking(100)
	f.addBooking(200)
	f.addRequest(1, 100, 7, now.Add(-2*time.Hour))
	f.addRequest(2, 200, 8, now.Add(-time.Minute))
	f.addRequest(3, 200, 7, now.Add(time.Hour))

	expired, err := f.uc.Sweep(context.Background(), 10)

	require.NoError(t, err)
	assert.Equal(t, 2, expired)
	assert.Equal(t, domain.RequestExpired, f.store.requests[1].Status)
	assert.Equal(t, domain.RequestExpired, f.store.requests[2].Status)
	assert.Equal(t, domain.RequestPending, f.store.requests[3].Status)
	assert.Equal(t, domain.StatusCancelled, f.store.bookings[100].Status)
	assert.Equal(t, domain.StatusPending, f.store.bookings[200].Status)
	assert.Equal(t, []string{"cancel-booking-100"}, f.payment.cancels)

	// повторный прогон ничего не меняет
	expired, err = f.uc.Sweep(context.Background(), 10)
	require.NoError(t, err)
	assert.Zero(t, expired)
	assert.Equal(t, []string{"ok", "ok"}, f.metrics.sweeps)
	assert.Equal(t, 2, f.metrics.expired)
}

func TestUseCase_SweepIgnoresLostRace(t *testing.T) {
	f := newFixture()
	f.addBooking(100)
	f.addRequest(1, 100, 7, now.Add(-time.Minute))
	f.addRequest(2, 100, 8, now.Add(-time.Minute))

	// исполнитель успел отказаться после чтения списка
	stale := f.store.requests[1]
	f.store.stale = []*domain.BookingRequest{&stale}
	r := f.store.requests[1]
	r.Status = domain.RequestRefused
	f.store.requests[1] = r

	expired, err := f.uc.Sweep(context.Background(), 10)

	require.NoError(t, err)
	assert.Zero(t, expired)
	assert.Equal(t, domain.RequestRefused, f.store.requests[1].Status)
	assert.Equal(t, []string{"ok"}, f.metrics.sweeps)
	assert.Contains(t, f.metrics.transitions, "expire:lost_race")
}

package send_reminders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/notifier"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

type mockBookings struct{ mock.Mock }

func (m *mockBookings) ListDueReminders(ctx context.Context, from, to time.Time, limit int) ([]*domain.Booking, error) {
	args := m.Called(ctx, from, to, limit)
	return args.Get(0).([]*domain.Booking), args.Error(1)
}

func (m *mockBookings) MarkReminderSent(ctx context.Context, id int64, sentAt time.Time) (bool, error) {
	args := m.Called(ctx, id, sentAt)
	return args.Bool(0), args.Error(1)
}

type sentNotification struct {
	recipient notifier.Recipient
	kind      notifier.Kind
	payload   notifier.Payload
}

type recordingNotifier struct{ sent []sentNotification }

func (n *recordingNotifier) Notify(_ context.Context, r notifier.Recipient, k notifier.Kind, p notifier.Payload) {
	n.sent = append(n.sent, sentNotification{recipient: r, kind: k, payload: p})
}

type countingMetrics struct{ outcomes []string }

func (m *countingMetrics) RecordReminder(outcome string) { m.outcomes = append(m.outcomes, outcome) }

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

// 1 июня 2025, 10:00 UTC = 12:00 в Париже
var now = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func confirmedBooking(id int64) *domain.Booking {
	return &domain.Booking{
		ID:           id,
		ClientID:     10,
		ContractorID: ptr.Ptr(int64(7)),
		Status:       domain.StatusConfirmed,
		ScheduledAt:  now.Add(20 * time.Hour),
		Timezone:     "Europe/Paris",
		Snapshot: domain.BookingSnapshot{
			ClientName:     "Marie",
			ClientEmail:    "marie@example.com",
			ClientPhone:    ptr.Ptr("+33600000000"),
			ServiceName:    "Pose de parquet",
			ContractorName: ptr.Ptr("Luc"),
			Address:        ptr.Ptr("12 rue de Rivoli"),
		},
	}
}

type fixture struct {
	bookings *mockBookings
	notifier *recordingNotifier
	metrics  *countingMetrics
	uc       *UseCase
}

func newFixture(t *testing.T, at time.Time, quiet domain.QuietHours) *fixture {
	t.Helper()
	f := &fixture{
		bookings: &mockBookings{},
		notifier: &recordingNotifier{},
		metrics:  &countingMetrics{},
	}
	f.uc = NewUseCase(f.bookings, f.notifier, f.metrics, Options{Lead: 24 * time.Hour, Quiet: quiet}, logger.Nop()).
		WithTimeProvider(fixedTime{now: at})
	return f
}

func TestUseCase_Sweep(t *testing.T) {
	quiet := domain.QuietHours{Start: "22:00", End: "08:00"}

	t.Run("reminds client of upcoming booking", func(t *testing.T) {
		f := newFixture(t, now, quiet)
		f.bookings.On("ListDueReminders", mock.Anything, now, now.Add(24*time.Hour), 50).
			Return([]*domain.Booking{confirmedBooking(42)}, nil)
		f.bookings.On("MarkReminderSent", mock.Anything, int64(42), now).Return(true, nil)

		sent, err := f.uc.Sweep(context.Background(), 50)

		require.NoError(t, err)
		assert.Equal(t, 1, sent)
		require.Len(t, f.notifier.sent, 1)
		n := f.notifier.sent[0]
		assert.Equal(t, notifier.KindBookingReminder, n.kind)
		assert.Equal(t, int64(10), n.recipient.UserID)
		assert.Equal(t, "marie@example.com", n.recipient.Email)
		assert.Equal(t, "+33600000000", ptr.Value(n.recipient.Phone))
		assert.Equal(t, int64(42), n.payload.BookingID)
		assert.Equal(t, "Luc", n.payload.ContractorName)
		assert.Equal(t, "12 rue de Rivoli", n.payload.Address)
		assert.Equal(t, "Europe/Paris", n.payload.Timezone)
		assert.Equal(t, []string{"sent"}, f.metrics.outcomes)
		f.bookings.AssertExpectations(t)
	})

	t.Run("quiet hours in booking timezone defer the reminder", func(t *testing.T) {
		// 21:30 UTC = 23:30 в Париже
		late := time.Date(2025, 6, 1, 21, 30, 0, 0, time.UTC)
		f := newFixture(t, late, quiet)
		f.bookings.On("ListDueReminders", mock.Anything, late, late.Add(24*time.Hour), 50).
			Return([]*domain.Booking{confirmedBooking(42)}, nil)

		sent, err := f.uc.Sweep(context.Background(), 50)

		require.NoError(t, err)
		assert.Zero(t, sent)
		assert.Empty(t, f.notifier.sent)
		assert.Equal(t, []string{"quiet_hours"}, f.metrics.outcomes)
		f.bookings.AssertNotCalled(t, "MarkReminderSent", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("quiet hours use local time not UTC", func(t *testing.T) {
		// 21:30 UTC = 17:30 в Нью-Йорке
		late := time.Date(2025, 6, 1, 21, 30, 0, 0, time.UTC)
		b := confirmedBooking(43)
		b.Timezone = "America/New_York"
		f := newFixture(t, late, quiet)
		f.bookings.On("ListDueReminders", mock.Anything, late, late.Add(24*time.Hour), 50).
			Return([]*domain.Booking{b}, nil)
		f.bookings.On("MarkReminderSent", mock.Anything, int64(43), late).Return(true, nil)

		sent, err := f.uc.Sweep(context.Background(), 50)

		require.NoError(t, err)
		assert.Equal(t, 1, sent)
	})

	t.Run("booking already reminded by another worker", func(t *testing.T) {
		f := newFixture(t, now, quiet)
		f.bookings.On("ListDueReminders", mock.Anything, now, now.Add(24*time.Hour), 50).
			Return([]*domain.Booking{confirmedBooking(42)}, nil)
		f.bookings.On("MarkReminderSent", mock.Anything, int64(42), now).Return(false, nil)

		sent, err := f.uc.Sweep(context.Background(), 50)

		require.NoError(t, err)
		assert.Zero(t, sent)
		assert.Empty(t, f.notifier.sent)
		assert.Equal(t, []string{"already_sent"}, f.metrics.outcomes)
	})

	t.Run("mark failure skips only that booking", func(t *testing.T) {
		f := newFixture(t, now, quiet)
		f.bookings.On("ListDueReminders", mock.Anything, now, now.Add(24*time.Hour), 50).
			Return([]*domain.Booking{confirmedBooking(41), confirmedBooking(42)}, nil)
		f.bookings.On("MarkReminderSent", mock.Anything, int64(41), now).Return(false, errors.New("deadlock"))
		f.bookings.On("MarkReminderSent", mock.Anything, int64(42), now).Return(true, nil)

		sent, err := f.uc.Sweep(context.Background(), 50)

		require.NoError(t, err)
		assert.Equal(t, 1, sent)
		require.Len(t, f.notifier.sent, 1)
		assert.Equal(t, int64(42), f.notifier.sent[0].payload.BookingID)
		assert.Equal(t, []string{"error", "sent"}, f.metrics.outcomes)
	})

	t.Run("list failure", func(t *testing.T) {
		f := newFixture(t, now, quiet)
		f.bookings.On("ListDueReminders", mock.Anything, mock.Anything, mock.Anything, 100).
			Return([]*domain.Booking(nil), errors.New("db down"))

		_, err := f.uc.Sweep(context.Background(), 0)

		assert.ErrorIs(t, err, ErrInternal)
		assert.Empty(t, f.notifier.sent)
	})
}

func TestNewUseCase_DefaultLead(t *testing.T) {
	uc := NewUseCase(&mockBookings{}, &recordingNotifier{}, nil, Options{}, logger.Nop())
	assert.Equal(t, domain.DefaultReminderLead, uc.opts.Lead)
}

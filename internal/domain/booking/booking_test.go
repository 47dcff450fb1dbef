package booking_test

import (
	"errors"
	"testing"
	"time"

	"homestay/internal/domain/booking"
	"homestay/internal/domain/shared/daterange"
	"homestay/internal/domain/shared/money"
)

func attempt(t *testing.T) *booking.Booking {
	t.Helper()
	r, err := daterange.New(
		time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	b, err := booking.NewAttempt(booking.CreateParams{
		ID:        "b-1",
		ListingID: "l-1",
		TenantID:  "t-1",
		Range:     r,
		Total:     money.USDCents(30000),
	})
	if err != nil {
		t.Fatalf("NewAttempt: %v", err)
	}
	return b
}

func TestAttemptHappyPath(t *testing.T) {
	b := attempt(t)
	if b.State != booking.StatePending {
		t.Fatalf("initial state = %s", b.State)
	}
	steps := []func() error{
		b.BeginValidation,
		b.BeginCharge,
		b.BeginPersist,
		func() error { return b.Commit(time.Now()) },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if b.State != booking.StateCommitted {
		t.Fatalf("final state = %s", b.State)
	}
	events := b.Drain()
	if len(events) != 1 || events[0].EventName() != "booking.committed" {
		t.Fatalf("events = %v", events)
	}
}

func TestAttemptRejectsOutOfOrderTransitions(t *testing.T) {
	b := attempt(t)
	if err := b.BeginCharge(); !errors.Is(err, booking.ErrInvalidTransition) {
		t.Fatalf("charge before validation: %v", err)
	}
	if err := b.BeginPersist(); !errors.Is(err, booking.ErrInvalidTransition) {
		t.Fatalf("persist before charge: %v", err)
	}
}

func TestRejectFromAnyPreCommittedState(t *testing.T) {
	b := attempt(t)
	if err := b.BeginValidation(); err != nil {
		t.Fatalf("BeginValidation: %v", err)
	}
	if err := b.Reject(booking.KindDateConflict); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if b.State != booking.StateRejected || b.RejectedKind != booking.KindDateConflict {
		t.Fatalf("state = %s kind = %s", b.State, b.RejectedKind)
	}
	if err := b.Reject(booking.KindChargeFailed); !errors.Is(err, booking.ErrInvalidTransition) {
		t.Fatalf("double reject: %v", err)
	}
}

func TestCommittedBookingCannotBeRejected(t *testing.T) {
	b := attempt(t)
	_ = b.BeginValidation()
	_ = b.BeginCharge()
	_ = b.BeginPersist()
	if err := b.Commit(time.Now()); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := b.Reject(booking.KindPersistenceFailed); !errors.Is(err, booking.ErrInvalidTransition) {
		t.Fatalf("reject after commit: %v", err)
	}
}

func TestNewAttemptRequiresTenant(t *testing.T) {
	_, err := booking.NewAttempt(booking.CreateParams{ID: "b-1", ListingID: "l-1"})
	if !errors.Is(err, booking.ErrTenantRequired) {
		t.Fatalf("expected ErrTenantRequired, got %v", err)
	}
}

func TestNightsMatchesInclusiveRange(t *testing.T) {
	b := attempt(t)
	if got := b.Nights(); got != 3 {
		t.Fatalf("Nights = %d, want 3", got)
	}
}

func TestKindOfUnwrapsNestedFault(t *testing.T) {
	inner := booking.NewFault(booking.KindDateConflict, "selected dates overlap dates that have already been booked")
	wrapped := errors.Join(errors.New("outer"), inner)
	kind, ok := booking.KindOf(wrapped)
	if !ok || kind != booking.KindDateConflict {
		t.Fatalf("KindOf = %s, %v", kind, ok)
	}
	if _, ok := booking.KindOf(errors.New("plain")); ok {
		t.Fatal("plain errors carry no kind")
	}
}

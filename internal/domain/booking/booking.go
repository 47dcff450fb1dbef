package booking

import (
	"context"
	"errors"
	"time"

	"homestay/internal/domain/listing"
	"homestay/internal/domain/shared/daterange"
	"homestay/internal/domain/shared/events"
	"homestay/internal/domain/shared/money"
)

var (
	ErrInvalidTransition = errors.New("booking: invalid state transition")
	ErrTenantRequired    = errors.New("booking: tenant id is required")
	ErrNotFound          = errors.New("booking: not found")
)

type BookingID string

// State tracks a single booking attempt. Any state before Committed may exit
// to Rejected; a committed booking is immutable.
type State string

const (
	StatePending    State = "PENDING"
	StateValidating State = "VALIDATING"
	StateCharging   State = "CHARGING"
	StatePersisting State = "PERSISTING"
	StateCommitted  State = "COMMITTED"
	StateRejected   State = "REJECTED"
)

type Booking struct {
	ID           BookingID
	ListingID    listing.ListingID
	TenantID     string
	CheckIn      time.Time
	CheckOut     time.Time
	Total        money.Money
	State        State
	RejectedKind Kind
	CreatedAt    time.Time
	events.Recorder
}

// Repository persists committed bookings. Insert must be atomic for the one
// document; no multi-document transaction is assumed.
type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Insert(ctx context.Context, b *Booking) error
	ListByTenant(ctx context.Context, tenantID string) ([]*Booking, error)
}

type CreateParams struct {
	ID        BookingID
	ListingID listing.ListingID
	TenantID  string
	Range     daterange.StayRange
	Total     money.Money
	CreatedAt time.Time
}

// NewAttempt starts a pending booking attempt.
func NewAttempt(params CreateParams) (*Booking, error) {
	if params.TenantID == "" {
		return nil, ErrTenantRequired
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	return &Booking{
		ID:        params.ID,
		ListingID: params.ListingID,
		TenantID:  params.TenantID,
		CheckIn:   params.Range.CheckIn,
		CheckOut:  params.Range.CheckOut,
		Total:     params.Total,
		State:     StatePending,
		CreatedAt: now.UTC(),
	}, nil
}

// Range rebuilds the inclusive stay range of the booking.
func (b *Booking) Range() daterange.StayRange {
	return daterange.StayRange{CheckIn: b.CheckIn, CheckOut: b.CheckOut}
}

// Nights is the inclusive night count the tenant was charged for.
func (b *Booking) Nights() int {
	return b.Range().Nights()
}

func (b *Booking) BeginValidation() error {
	return b.advance(StatePending, StateValidating)
}

func (b *Booking) BeginCharge() error {
	return b.advance(StateValidating, StateCharging)
}

func (b *Booking) BeginPersist() error {
	return b.advance(StateCharging, StatePersisting)
}

// Commit finalizes the attempt and records the committed event.
func (b *Booking) Commit(now time.Time) error {
	if err := b.advance(StatePersisting, StateCommitted); err != nil {
		return err
	}
	b.Record(BookingCommitted{
		BookingID: b.ID,
		ListingID: b.ListingID,
		TenantID:  b.TenantID,
		CheckIn:   b.CheckIn,
		CheckOut:  b.CheckOut,
		Total:     b.Total.Amount,
		At:        now.UTC(),
	})
	return nil
}

// Reject terminates the attempt with a failure kind. Valid from every state
// before Committed.
func (b *Booking) Reject(kind Kind) error {
	if b.State == StateCommitted || b.State == StateRejected {
		return ErrInvalidTransition
	}
	b.State = StateRejected
	b.RejectedKind = kind
	return nil
}

func (b *Booking) advance(from, to State) error {
	if b.State != from {
		return ErrInvalidTransition
	}
	b.State = to
	return nil
}

package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"homestay/internal/app/commands"
	"homestay/internal/app/locks"
	"homestay/internal/app/middleware"
	"homestay/internal/app/outbox"
	"homestay/internal/app/policies"
	"homestay/internal/app/uow"
	domainbooking "homestay/internal/domain/booking"
	domainlisting "homestay/internal/domain/listing"
	"homestay/internal/domain/shared/daterange"
	"homestay/internal/domain/shared/events"
	"homestay/internal/domain/shared/money"
	domainuser "homestay/internal/domain/user"
)

const createBookingKey = "booking.create"

type CreateBookingCommand struct {
	CommandID       string
	ListingID       string
	TenantID        string // resolved viewer id; empty when unauthenticated
	CheckIn         time.Time
	CheckOut        time.Time
	Source          string // payment source token
	IdempotencyKeyV string
}

func (c CreateBookingCommand) Key() string { return createBookingKey }

func (c CreateBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreateBookingCommand) ResultPrototype() any { return &CreateBookingResult{} }

type CreateBookingResult struct {
	BookingID  string `json:"booking_id"`
	ListingID  string `json:"listing_id"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	Nights     int    `json:"nights"`
	TotalCents int64  `json:"total_cents"`
}

// CreateBookingHandler validates a proposed stay against the listing
// calendar, charges the tenant, and records the booking. The whole
// read-validate-write sequence runs under the per-listing lock so two
// overlapping requests can never both pass validation against the same
// calendar snapshot.
type CreateBookingHandler struct {
	UoW           uow.Factory
	Payments      policies.PaymentsPort
	Locks         *locks.KeyedMutex
	Outbox        outbox.Outbox
	ChargeTimeout time.Duration
	Logger        *slog.Logger
}

type quote struct {
	tenant   *domainuser.User
	listing  *domainlisting.Listing
	host     *domainuser.User
	stay     daterange.StayRange
	calendar domainlisting.Calendar
	total    money.Money
}

func (h *CreateBookingHandler) Handle(ctx context.Context, cmd CreateBookingCommand) (*CreateBookingResult, error) {
	if h.UoW == nil || h.Payments == nil || h.Locks == nil {
		return nil, errors.New("booking: handler dependencies missing")
	}
	unlock := h.Locks.Lock(cmd.ListingID)
	defer unlock()

	unit, err := h.UoW.Begin(ctx)
	if err != nil {
		return nil, err
	}

	attempt, err := domainbooking.NewAttempt(domainbooking.CreateParams{
		ID:        domainbooking.BookingID(h.commandID(cmd)),
		ListingID: domainlisting.ListingID(cmd.ListingID),
		TenantID:  h.tenantOrPlaceholder(cmd),
		Range: daterange.StayRange{
			CheckIn:  daterange.DayOf(cmd.CheckIn),
			CheckOut: daterange.DayOf(cmd.CheckOut),
		},
		Total:     money.USDCents(0),
		CreatedAt: time.Now(),
	})
	if err != nil {
		return nil, err
	}

	if err := attempt.BeginValidation(); err != nil {
		return nil, err
	}
	q, err := h.validate(ctx, unit, cmd)
	if err != nil {
		h.reject(attempt, err)
		return nil, err
	}
	attempt.Total = q.total

	if err := attempt.BeginCharge(); err != nil {
		return nil, err
	}
	chargeRef, err := h.charge(ctx, q, cmd.Source)
	if err != nil {
		fault := domainbooking.WrapFault(domainbooking.KindChargeFailed, "failed to create charge", err)
		h.reject(attempt, fault)
		return nil, fault
	}

	if err := attempt.BeginPersist(); err != nil {
		return nil, err
	}
	if err := h.persist(ctx, unit, attempt, q); err != nil {
		fault := domainbooking.WrapFault(domainbooking.KindPersistenceFailed, "booking could not be recorded after charge", err)
		h.reject(attempt, fault)
		h.recordOrphanedCharge(ctx, attempt, chargeRef, err)
		return nil, fault
	}

	now := time.Now()
	if err := attempt.Commit(now); err != nil {
		return nil, err
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, append(q.listing.Drain(), attempt.Drain()...)); err != nil && h.Logger != nil {
		h.Logger.Error("booking events not recorded", "booking_id", attempt.ID, "error", err)
	}
	if h.Logger != nil {
		h.Logger.Info("booking committed",
			"booking_id", attempt.ID,
			"listing_id", attempt.ListingID,
			"tenant_id", attempt.TenantID,
			"nights", attempt.Nights(),
			"total_cents", attempt.Total.Amount,
		)
	}

	return &CreateBookingResult{
		BookingID:  string(attempt.ID),
		ListingID:  string(attempt.ListingID),
		CheckIn:    domainlisting.DayKey(attempt.CheckIn),
		CheckOut:   domainlisting.DayKey(attempt.CheckOut),
		Nights:     attempt.Nights(),
		TotalCents: attempt.Total.Amount,
	}, nil
}

// validate runs the reservation checks in order and returns the first
// violation. It has no side effects: the merged calendar is a copy and
// nothing is written.
func (h *CreateBookingHandler) validate(ctx context.Context, unit uow.UnitOfWork, cmd CreateBookingCommand) (*quote, error) {
	if cmd.TenantID == "" {
		return nil, domainbooking.NewFault(domainbooking.KindUnauthenticated, "viewer can't be found")
	}
	tenant, err := unit.Users().ByID(ctx, domainuser.ID(cmd.TenantID))
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return nil, domainbooking.NewFault(domainbooking.KindUnauthenticated, "viewer can't be found")
		}
		return nil, err
	}

	l, err := unit.Listings().ByID(ctx, domainlisting.ListingID(cmd.ListingID))
	if err != nil {
		if errors.Is(err, domainlisting.ErrNotFound) {
			return nil, domainbooking.NewFault(domainbooking.KindNotFound, "listing can't be found")
		}
		return nil, err
	}

	if l.IsHostedBy(string(tenant.ID)) {
		return nil, domainbooking.NewFault(domainbooking.KindSelfBooking, "viewer can't book own listing")
	}

	stay, err := daterange.New(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, domainbooking.WrapFault(domainbooking.KindInvalidDateRange, "check out date can't be before check in date", err)
	}

	merged, err := l.Calendar.Reserve(stay)
	if err != nil {
		var conflict *domainlisting.ConflictError
		if errors.As(err, &conflict) {
			return nil, domainbooking.WrapFault(domainbooking.KindDateConflict, "selected dates overlap dates that have already been booked", err)
		}
		return nil, err
	}

	host, err := unit.Users().ByID(ctx, domainuser.ID(l.HostID))
	if err != nil || !host.Payable() {
		return nil, domainbooking.NewFault(domainbooking.KindHostNotPayable, "the host either can't be found or isn't connected with a payment account")
	}

	return &quote{
		tenant:   tenant,
		listing:  l,
		host:     host,
		stay:     stay,
		calendar: merged,
		total:    l.PriceFor(stay),
	}, nil
}

// charge runs the payment call under a cancellable deadline. The call is
// never retried: a second charge is worse than a failed booking.
func (h *CreateBookingHandler) charge(ctx context.Context, q *quote, source string) (string, error) {
	if h.ChargeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.ChargeTimeout)
		defer cancel()
	}
	return h.Payments.Charge(ctx, q.total, source, q.host.WalletID)
}

// persist performs the four writes of a committed reservation. Each write is
// atomic on its own document; there is no surrounding transaction, which is
// why a failure here feeds the compensation path.
func (h *CreateBookingHandler) persist(ctx context.Context, unit uow.UnitOfWork, attempt *domainbooking.Booking, q *quote) error {
	if err := unit.Bookings().Insert(ctx, attempt); err != nil {
		return err
	}
	if err := unit.Users().AddIncome(ctx, q.host.ID, q.total); err != nil {
		return err
	}
	if err := unit.Users().AppendBooking(ctx, q.tenant.ID, string(attempt.ID)); err != nil {
		return err
	}
	q.listing.CommitReservation(q.calendar, string(attempt.ID), q.stay, time.Now())
	return unit.Listings().Save(ctx, q.listing)
}

// recordOrphanedCharge queues the compensation event for a charge whose
// booking never landed, so a reconciliation consumer can refund it.
func (h *CreateBookingHandler) recordOrphanedCharge(ctx context.Context, attempt *domainbooking.Booking, chargeRef string, cause error) {
	ev := domainbooking.ChargeOrphaned{
		BookingID: attempt.ID,
		ListingID: attempt.ListingID,
		TenantID:  attempt.TenantID,
		ChargeRef: chargeRef,
		Total:     attempt.Total.Amount,
		Reason:    cause.Error(),
		At:        time.Now().UTC(),
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, []events.DomainEvent{ev}); err != nil && h.Logger != nil {
		h.Logger.Error("orphaned charge not recorded", "booking_id", attempt.ID, "charge_ref", chargeRef, "error", err)
	}
	if h.Logger != nil {
		h.Logger.Error("charge succeeded but booking persistence failed",
			"booking_id", attempt.ID,
			"charge_ref", chargeRef,
			"error", cause,
		)
	}
}

func (h *CreateBookingHandler) reject(attempt *domainbooking.Booking, err error) {
	kind, ok := domainbooking.KindOf(err)
	if !ok {
		kind = domainbooking.KindPersistenceFailed
	}
	_ = attempt.Reject(kind)
}

func (h *CreateBookingHandler) commandID(cmd CreateBookingCommand) string {
	if cmd.CommandID != "" {
		return cmd.CommandID
	}
	return uuid.NewString()
}

// tenantOrPlaceholder keeps the attempt constructible for unauthenticated
// requests; validation rejects them before any side effect.
func (h *CreateBookingHandler) tenantOrPlaceholder(cmd CreateBookingCommand) string {
	if cmd.TenantID != "" {
		return cmd.TenantID
	}
	return "anonymous"
}

var _ commands.Handler[CreateBookingCommand, *CreateBookingResult] = (*CreateBookingHandler)(nil)
var _ middleware.IdempotentCommand = (*CreateBookingCommand)(nil)

package booking_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"homestay/internal/app/handlers/booking"
	"homestay/internal/app/locks"
	"homestay/internal/app/uow"
	domainbooking "homestay/internal/domain/booking"
	domainlisting "homestay/internal/domain/listing"
	"homestay/internal/domain/shared/money"
	domainuser "homestay/internal/domain/user"
	"homestay/internal/infra/storage/memory"
)

type fakeCharger struct {
	mu       sync.Mutex
	calls    int
	fail     error
	lastReq  money.Money
	lastDest string
}

func (c *fakeCharger) Charge(_ context.Context, amount money.Money, _ string, destination string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.lastReq = amount
	c.lastDest = destination
	if c.fail != nil {
		return "", c.fail
	}
	return "ch_test", nil
}

func (c *fakeCharger) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type fixture struct {
	handler  *booking.CreateBookingHandler
	factory  memory.Factory
	outbox   *memory.Outbox
	charger  *fakeCharger
	hostID   string
	tenantID string
	listing  domainlisting.ListingID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		factory: memory.Factory{
			ListingsRepo: memory.NewListingRepository(),
			UsersRepo:    memory.NewUserRepository(),
			BookingsRepo: memory.NewBookingRepository(),
		},
		outbox:  memory.NewOutbox(),
		charger: &fakeCharger{},
	}
	ctx := context.Background()
	now := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	host, err := domainuser.NewUser(domainuser.CreateParams{
		ID: "host-1", Email: "host@example.com", Name: "Host",
		PasswordHash: "x", WalletID: "acct_host", CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	tenant, err := domainuser.NewUser(domainuser.CreateParams{
		ID: "tenant-1", Email: "tenant@example.com", Name: "Tenant",
		PasswordHash: "x", CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("tenant: %v", err)
	}
	if err := f.factory.UsersRepo.Save(ctx, host); err != nil {
		t.Fatalf("save host: %v", err)
	}
	if err := f.factory.UsersRepo.Save(ctx, tenant); err != nil {
		t.Fatalf("save tenant: %v", err)
	}

	l, err := domainlisting.NewListing(domainlisting.CreateParams{
		ID: "listing-1", HostID: "host-1", Title: "Beach house",
		Type: domainlisting.TypeHouse, Address: "1 Shore Rd",
		City: "Dubrovnik", Country: "Croatia",
		GuestsLimit: 4, NightlyCents: 10000, Now: now,
	})
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	l.Drain()
	if err := f.factory.ListingsRepo.Save(ctx, l); err != nil {
		t.Fatalf("save listing: %v", err)
	}

	f.hostID = "host-1"
	f.tenantID = "tenant-1"
	f.listing = "listing-1"
	f.handler = &booking.CreateBookingHandler{
		UoW:      f.factory,
		Payments: f.charger,
		Locks:    locks.NewKeyedMutex(),
		Outbox:   f.outbox,
	}
	return f
}

func (f *fixture) command(tenantID string, in, out time.Time) booking.CreateBookingCommand {
	return booking.CreateBookingCommand{
		ListingID: string(f.listing),
		TenantID:  tenantID,
		CheckIn:   in,
		CheckOut:  out,
		Source:    "tok_visa",
	}
}

func utcDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCreateBookingCommitsAllWrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.handler.Handle(ctx, f.command(f.tenantID, utcDay(2024, time.March, 1), utcDay(2024, time.March, 3)))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if result.Nights != 3 {
		t.Fatalf("Nights = %d, want 3", result.Nights)
	}
	if result.TotalCents != 30000 {
		t.Fatalf("TotalCents = %d, want 30000", result.TotalCents)
	}
	if got := f.charger.callCount(); got != 1 {
		t.Fatalf("charge calls = %d, want 1", got)
	}
	if f.charger.lastReq.Amount != 30000 || f.charger.lastDest != "acct_host" {
		t.Fatalf("charge = %d to %q", f.charger.lastReq.Amount, f.charger.lastDest)
	}

	stored, err := f.factory.BookingsRepo.ByID(ctx, domainbooking.BookingID(result.BookingID))
	if err != nil {
		t.Fatalf("booking not persisted: %v", err)
	}
	if stored.State != domainbooking.StateCommitted {
		t.Fatalf("state = %s, want COMMITTED", stored.State)
	}

	host, _ := f.factory.UsersRepo.ByID(ctx, domainuser.ID(f.hostID))
	if host.Income.Amount != 30000 {
		t.Fatalf("host income = %d, want 30000", host.Income.Amount)
	}
	tenant, _ := f.factory.UsersRepo.ByID(ctx, domainuser.ID(f.tenantID))
	if len(tenant.Bookings) != 1 || tenant.Bookings[0] != result.BookingID {
		t.Fatalf("tenant bookings = %v", tenant.Bookings)
	}

	l, _ := f.factory.ListingsRepo.ByID(ctx, f.listing)
	for _, day := range []string{"2024-03-01", "2024-03-02", "2024-03-03"} {
		if !l.Calendar.Has(day) {
			t.Fatalf("calendar missing %s", day)
		}
	}
	if len(l.Bookings) != 1 || l.Bookings[0] != result.BookingID {
		t.Fatalf("listing bookings = %v", l.Bookings)
	}

	names := map[string]bool{}
	for _, rec := range f.outbox.Records() {
		names[rec.Name] = true
	}
	if !names["booking.committed"] || !names["listing.calendar_reserved"] {
		t.Fatalf("outbox events = %v", names)
	}
}

func TestCreateBookingRejectionKinds(t *testing.T) {
	in, out := utcDay(2024, time.March, 1), utcDay(2024, time.March, 3)
	cases := []struct {
		name string
		cmd  func(f *fixture) booking.CreateBookingCommand
		prep func(t *testing.T, f *fixture)
		want domainbooking.Kind
	}{
		{
			name: "anonymous viewer",
			cmd:  func(f *fixture) booking.CreateBookingCommand { return f.command("", in, out) },
			want: domainbooking.KindUnauthenticated,
		},
		{
			name: "unknown viewer",
			cmd:  func(f *fixture) booking.CreateBookingCommand { return f.command("ghost", in, out) },
			want: domainbooking.KindUnauthenticated,
		},
		{
			name: "missing listing",
			cmd: func(f *fixture) booking.CreateBookingCommand {
				c := f.command(f.tenantID, in, out)
				c.ListingID = "nope"
				return c
			},
			want: domainbooking.KindNotFound,
		},
		{
			name: "host books own listing",
			cmd:  func(f *fixture) booking.CreateBookingCommand { return f.command(f.hostID, in, out) },
			want: domainbooking.KindSelfBooking,
		},
		{
			// self-booking outranks the broken range
			name: "host books own listing with inverted dates",
			cmd:  func(f *fixture) booking.CreateBookingCommand { return f.command(f.hostID, out, in) },
			want: domainbooking.KindSelfBooking,
		},
		{
			name: "check-out before check-in",
			cmd:  func(f *fixture) booking.CreateBookingCommand { return f.command(f.tenantID, out, in) },
			want: domainbooking.KindInvalidDateRange,
		},
		{
			name: "dates already reserved",
			prep: func(t *testing.T, f *fixture) {
				if _, err := f.handler.Handle(context.Background(), f.command(f.tenantID, utcDay(2024, time.March, 2), utcDay(2024, time.March, 4))); err != nil {
					t.Fatalf("seed booking: %v", err)
				}
			},
			cmd:  func(f *fixture) booking.CreateBookingCommand { return f.command(f.tenantID, in, out) },
			want: domainbooking.KindDateConflict,
		},
		{
			name: "host has no wallet",
			prep: func(t *testing.T, f *fixture) {
				host, _ := f.factory.UsersRepo.ByID(context.Background(), domainuser.ID(f.hostID))
				host.ConnectWallet("", time.Now())
				if err := f.factory.UsersRepo.Save(context.Background(), host); err != nil {
					t.Fatalf("save host: %v", err)
				}
			},
			cmd:  func(f *fixture) booking.CreateBookingCommand { return f.command(f.tenantID, in, out) },
			want: domainbooking.KindHostNotPayable,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			charges := 0
			if tc.prep != nil {
				tc.prep(t, f)
				charges = f.charger.callCount()
			}
			_, err := f.handler.Handle(context.Background(), tc.cmd(f))
			kind, ok := domainbooking.KindOf(err)
			if !ok {
				t.Fatalf("expected fault, got %v", err)
			}
			if kind != tc.want {
				t.Fatalf("kind = %s, want %s", kind, tc.want)
			}
			if got := f.charger.callCount(); got != charges {
				t.Fatalf("validation failure must not charge, calls went %d -> %d", charges, got)
			}
		})
	}
}

func TestChargeFailureLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	f.charger.fail = errors.New("card declined")
	ctx := context.Background()

	_, err := f.handler.Handle(ctx, f.command(f.tenantID, utcDay(2024, time.March, 1), utcDay(2024, time.March, 3)))
	kind, ok := domainbooking.KindOf(err)
	if !ok || kind != domainbooking.KindChargeFailed {
		t.Fatalf("expected CHARGE_FAILED, got %v", err)
	}
	if got := f.charger.callCount(); got != 1 {
		t.Fatalf("charge calls = %d, the charge must never be retried", got)
	}

	host, _ := f.factory.UsersRepo.ByID(ctx, domainuser.ID(f.hostID))
	if host.Income.Amount != 0 {
		t.Fatalf("host income = %d after failed charge", host.Income.Amount)
	}
	l, _ := f.factory.ListingsRepo.ByID(ctx, f.listing)
	if l.Calendar.Len() != 0 {
		t.Fatalf("calendar days = %v after failed charge", l.Calendar.Days())
	}
	if got, _ := f.factory.BookingsRepo.ListByTenant(ctx, f.tenantID); len(got) != 0 {
		t.Fatalf("bookings persisted after failed charge: %d", len(got))
	}
}

type faultyUsers struct {
	domainuser.Repository
	incomeErr error
}

func (f faultyUsers) AddIncome(ctx context.Context, id domainuser.ID, delta money.Money) error {
	if f.incomeErr != nil {
		return f.incomeErr
	}
	return f.Repository.AddIncome(ctx, id, delta)
}

type wrappedUnit struct {
	uow.UnitOfWork
	users domainuser.Repository
}

func (u wrappedUnit) Users() domainuser.Repository { return u.users }

type wrappedFactory struct {
	inner uow.Factory
	users func(domainuser.Repository) domainuser.Repository
}

func (f wrappedFactory) Begin(ctx context.Context) (uow.UnitOfWork, error) {
	unit, err := f.inner.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return wrappedUnit{UnitOfWork: unit, users: f.users(unit.Users())}, nil
}

func TestPersistFailureAfterChargeRecordsOrphan(t *testing.T) {
	f := newFixture(t)
	f.handler.UoW = wrappedFactory{
		inner: f.factory,
		users: func(r domainuser.Repository) domainuser.Repository {
			return faultyUsers{Repository: r, incomeErr: errors.New("write timeout")}
		},
	}
	ctx := context.Background()

	_, err := f.handler.Handle(ctx, f.command(f.tenantID, utcDay(2024, time.March, 1), utcDay(2024, time.March, 3)))
	kind, ok := domainbooking.KindOf(err)
	if !ok || kind != domainbooking.KindPersistenceFailed {
		t.Fatalf("expected PERSISTENCE_FAILED, got %v", err)
	}
	if got := f.charger.callCount(); got != 1 {
		t.Fatalf("charge calls = %d, want 1", got)
	}

	var orphan bool
	for _, rec := range f.outbox.Records() {
		if rec.Name == "booking.charge_orphaned" {
			orphan = true
		}
	}
	if !orphan {
		t.Fatal("expected a booking.charge_orphaned record for the stranded charge")
	}
}

func TestConcurrentBookingsExactlyOneWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const attempts = 8

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.handler.Handle(ctx, f.command(f.tenantID, utcDay(2024, time.March, 1), utcDay(2024, time.March, 3)))
		}(i)
	}
	wg.Wait()

	wins, conflicts := 0, 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		if kind, ok := domainbooking.KindOf(err); ok && kind == domainbooking.KindDateConflict {
			conflicts++
		}
	}
	if wins != 1 {
		t.Fatalf("wins = %d, want exactly 1", wins)
	}
	if conflicts != attempts-1 {
		t.Fatalf("conflicts = %d, want %d", conflicts, attempts-1)
	}
	if got := f.charger.callCount(); got != 1 {
		t.Fatalf("charge calls = %d, losers must never reach the charge", got)
	}
}

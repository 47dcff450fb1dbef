package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	domainlisting "homestay/internal/domain/listing"
	"homestay/internal/domain/shared/money"
	domainuser "homestay/internal/domain/user"
	"homestay/internal/infra/storage/memory"
)

func seedListing(t *testing.T, repo *memory.ListingRepository) domainlisting.ListingID {
	t.Helper()
	l, err := domainlisting.NewListing(domainlisting.CreateParams{
		ID: "l-1", HostID: "h-1", Title: "Loft",
		Type: domainlisting.TypeApartment, Address: "1 Main St",
		NightlyCents: 5000, Now: time.Now(),
	})
	if err != nil {
		t.Fatalf("NewListing: %v", err)
	}
	if err := repo.Save(context.Background(), l); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return l.ID
}

func TestListingSaveDetectsStaleCalendarVersion(t *testing.T) {
	repo := memory.NewListingRepository()
	ctx := context.Background()
	id := seedListing(t, repo)

	first, err := repo.ByID(ctx, id)
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	second, err := repo.ByID(ctx, id)
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}

	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := repo.Save(ctx, second); !errors.Is(err, domainlisting.ErrVersionConflict) {
		t.Fatalf("stale save: expected ErrVersionConflict, got %v", err)
	}
}

func TestListingSaveBumpsVersion(t *testing.T) {
	repo := memory.NewListingRepository()
	ctx := context.Background()
	id := seedListing(t, repo)

	l, _ := repo.ByID(ctx, id)
	before := l.CalendarVersion
	if err := repo.Save(ctx, l); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if l.CalendarVersion != before+1 {
		t.Fatalf("version %d -> %d, want +1", before, l.CalendarVersion)
	}
}

func TestListingByIDReturnsIsolatedCopy(t *testing.T) {
	repo := memory.NewListingRepository()
	ctx := context.Background()
	id := seedListing(t, repo)

	a, _ := repo.ByID(ctx, id)
	a.Bookings = append(a.Bookings, "rogue")
	a.Title = "changed"

	b, _ := repo.ByID(ctx, id)
	if len(b.Bookings) != 0 || b.Title != "Loft" {
		t.Fatalf("mutation leaked into the store: %+v", b)
	}
}

func TestUserRepositoryAtomicUpdates(t *testing.T) {
	repo := memory.NewUserRepository()
	ctx := context.Background()
	u, err := domainuser.NewUser(domainuser.CreateParams{
		ID: "u-1", Email: "u@example.com", Name: "U", PasswordHash: "x",
	})
	if err != nil {
		t.Fatalf("NewUser: %v", err)
	}
	if err := repo.Save(ctx, u); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := repo.AddIncome(ctx, u.ID, money.USDCents(1500)); err != nil {
		t.Fatalf("AddIncome: %v", err)
	}
	if err := repo.AddIncome(ctx, u.ID, money.USDCents(500)); err != nil {
		t.Fatalf("AddIncome: %v", err)
	}
	if err := repo.AppendBooking(ctx, u.ID, "b-1"); err != nil {
		t.Fatalf("AppendBooking: %v", err)
	}
	if err := repo.AppendListing(ctx, u.ID, "l-1"); err != nil {
		t.Fatalf("AppendListing: %v", err)
	}

	got, _ := repo.ByID(ctx, u.ID)
	if got.Income.Amount != 2000 {
		t.Fatalf("income = %d, want 2000", got.Income.Amount)
	}
	if len(got.Bookings) != 1 || len(got.Listings) != 1 {
		t.Fatalf("bookings = %v listings = %v", got.Bookings, got.Listings)
	}

	if err := repo.AddIncome(ctx, "ghost", money.USDCents(1)); !errors.Is(err, domainuser.ErrNotFound) {
		t.Fatalf("AddIncome on missing user: %v", err)
	}
}

func TestUserRepositoryEnforcesUniqueEmail(t *testing.T) {
	repo := memory.NewUserRepository()
	ctx := context.Background()
	a, _ := domainuser.NewUser(domainuser.CreateParams{ID: "u-1", Email: "same@example.com", Name: "A", PasswordHash: "x"})
	b, _ := domainuser.NewUser(domainuser.CreateParams{ID: "u-2", Email: "same@example.com", Name: "B", PasswordHash: "x"})
	if err := repo.Save(ctx, a); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := repo.Save(ctx, b); !errors.Is(err, domainuser.ErrEmailAlreadyUsed) {
		t.Fatalf("expected ErrEmailAlreadyUsed, got %v", err)
	}
}

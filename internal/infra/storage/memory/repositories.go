package memory

import (
	"context"
	"sort"
	"sync"

	domainbooking "homestay/internal/domain/booking"
	domainlisting "homestay/internal/domain/listing"
	"homestay/internal/domain/shared/events"
)

// ListingRepository is an in-memory implementation guarded by a RWMutex.
type ListingRepository struct {
	mu    sync.RWMutex
	items map[domainlisting.ListingID]*domainlisting.Listing
}

func NewListingRepository() *ListingRepository {
	return &ListingRepository{
		items: make(map[domainlisting.ListingID]*domainlisting.Listing),
	}
}

// ByID returns a deep enough copy of the listing so callers never observe
// concurrent mutation.
func (r *ListingRepository) ByID(ctx context.Context, id domainlisting.ListingID) (*domainlisting.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.items[id]
	if !ok {
		return nil, domainlisting.ErrNotFound
	}
	return cloneListing(l), nil
}

// Save applies the calendar version compare-and-swap: an existing listing is
// replaced only if the stored version still matches the one the caller read.
func (r *ListingRepository) Save(ctx context.Context, l *domainlisting.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stored, ok := r.items[l.ID]; ok && stored.CalendarVersion != l.CalendarVersion {
		return domainlisting.ErrVersionConflict
	}
	l.CalendarVersion++
	r.items[l.ID] = cloneListing(l)
	return nil
}

func cloneListing(l *domainlisting.Listing) *domainlisting.Listing {
	clone := *l
	clone.Calendar = domainlisting.NewCalendar(l.Calendar.Days()...)
	clone.Bookings = append([]string(nil), l.Bookings...)
	clone.Recorder = events.Recorder{}
	return &clone
}

// BookingRepository stores committed bookings in memory.
type BookingRepository struct {
	mu       sync.RWMutex
	items    map[domainbooking.BookingID]*domainbooking.Booking
	byTenant map[string][]domainbooking.BookingID
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{
		items:    make(map[domainbooking.BookingID]*domainbooking.Booking),
		byTenant: make(map[string][]domainbooking.BookingID),
	}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	clone := *b
	return &clone, nil
}

func (r *BookingRepository) Insert(ctx context.Context, b *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *b
	r.items[b.ID] = &clone
	r.byTenant[b.TenantID] = append(r.byTenant[b.TenantID], b.ID)
	return nil
}

func (r *BookingRepository) ListByTenant(ctx context.Context, tenantID string) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := r.byTenant[tenantID]
	out := make([]*domainbooking.Booking, 0, len(ids))
	for _, id := range ids {
		if b, ok := r.items[id]; ok {
			clone := *b
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

package listing

import (
	"context"
	"errors"
	"strings"
	"time"

	"homestay/internal/domain/shared/daterange"
	"homestay/internal/domain/shared/events"
	"homestay/internal/domain/shared/money"
)

var (
	ErrNotFound        = errors.New("listing: not found")
	ErrVersionConflict = errors.New("listing: calendar changed concurrently")
	ErrIDRequired      = errors.New("listing: id is required")
	ErrHostRequired    = errors.New("listing: host id is required")
	ErrTitleRequired   = errors.New("listing: title is required")
	ErrAddressRequired = errors.New("listing: address is required")
	ErrInvalidRate     = errors.New("listing: nightly rate must be positive")
	ErrInvalidType     = errors.New("listing: unknown property type")
)

type ListingID string

type PropertyType string

const (
	TypeApartment PropertyType = "APARTMENT"
	TypeHouse     PropertyType = "HOUSE"
)

// Listing is a bookable rental owned by a host. Its calendar and booking
// references are mutated only through a committed reservation; the
// CalendarVersion guards that mutation against concurrent writers.
type Listing struct {
	ID              ListingID
	HostID          string
	Title           string
	Description     string
	Type            PropertyType
	ImageURL        string
	Address         string
	City            string
	Country         string
	GuestsLimit     int
	Nightly         money.Money
	Calendar        Calendar
	CalendarVersion int64
	Bookings        []string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	events.Recorder
}

// Repository persists listings. Save must apply CalendarVersion as a
// compare-and-swap, bump it on success and report ErrVersionConflict on a
// lost race.
type Repository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	Save(ctx context.Context, l *Listing) error
}

type CreateParams struct {
	ID           ListingID
	HostID       string
	Title        string
	Description  string
	Type         PropertyType
	ImageURL     string
	Address      string
	City         string
	Country      string
	GuestsLimit  int
	NightlyCents int64
	Now          time.Time
}

func NewListing(params CreateParams) (*Listing, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(params.HostID) == "" {
		return nil, ErrHostRequired
	}
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if strings.TrimSpace(params.Address) == "" {
		return nil, ErrAddressRequired
	}
	if params.NightlyCents <= 0 {
		return nil, ErrInvalidRate
	}
	switch params.Type {
	case TypeApartment, TypeHouse:
	default:
		return nil, ErrInvalidType
	}
	guests := params.GuestsLimit
	if guests <= 0 {
		guests = 1
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	l := &Listing{
		ID:          params.ID,
		HostID:      params.HostID,
		Title:       title,
		Description: strings.TrimSpace(params.Description),
		Type:        params.Type,
		ImageURL:    params.ImageURL,
		Address:     strings.TrimSpace(params.Address),
		City:        strings.TrimSpace(params.City),
		Country:     strings.TrimSpace(params.Country),
		GuestsLimit: guests,
		Nightly:     money.USDCents(params.NightlyCents),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	l.Record(ListingCreated{ListingID: l.ID, HostID: l.HostID, At: now})
	return l, nil
}

// PriceFor quotes the stay: nightly rate times the inclusive night count.
func (l *Listing) PriceFor(r daterange.StayRange) money.Money {
	return l.Nightly.Multiply(int64(r.Nights()))
}

// IsHostedBy reports whether the given user owns the listing.
func (l *Listing) IsHostedBy(userID string) bool {
	return l.HostID == userID
}

// CommitReservation installs the merged calendar and appends the booking
// reference. The caller is expected to have produced cal via
// Calendar.Reserve against the current calendar; Save bumps the calendar
// version once the compare-and-swap lands.
func (l *Listing) CommitReservation(cal Calendar, bookingID string, r daterange.StayRange, now time.Time) {
	l.Calendar = cal
	l.Bookings = append(l.Bookings, bookingID)
	l.UpdatedAt = now.UTC()
	l.Record(CalendarReserved{ListingID: l.ID, BookingID: bookingID, CheckIn: r.CheckIn, CheckOut: r.CheckOut, At: l.UpdatedAt})
}

package booking

import (
	"context"

	"homestay/internal/app/queries"
	"homestay/internal/app/uow"
	domainlisting "homestay/internal/domain/listing"
)

const tenantBookingsKey = "booking.tenant_list"

type TenantBookingsQuery struct {
	TenantID string
}

func (q TenantBookingsQuery) Key() string { return tenantBookingsKey }

type TenantBookingView struct {
	BookingID  string `json:"booking_id"`
	ListingID  string `json:"listing_id"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	Nights     int    `json:"nights"`
	TotalCents int64  `json:"total_cents"`
}

type TenantBookingsHandler struct {
	UoW uow.Factory
}

func (h *TenantBookingsHandler) Handle(ctx context.Context, q TenantBookingsQuery) ([]TenantBookingView, error) {
	unit, err := h.UoW.Begin(ctx)
	if err != nil {
		return nil, err
	}
	bookings, err := unit.Bookings().ListByTenant(ctx, q.TenantID)
	if err != nil {
		return nil, err
	}
	views := make([]TenantBookingView, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, TenantBookingView{
			BookingID:  string(b.ID),
			ListingID:  string(b.ListingID),
			CheckIn:    domainlisting.DayKey(b.CheckIn),
			CheckOut:   domainlisting.DayKey(b.CheckOut),
			Nights:     b.Nights(),
			TotalCents: b.Total.Amount,
		})
	}
	return views, nil
}

var _ queries.Handler[TenantBookingsQuery, []TenantBookingView] = (*TenantBookingsHandler)(nil)

package listings

import (
	"context"

	"homestay/internal/app/queries"
	"homestay/internal/app/uow"
	domainlisting "homestay/internal/domain/listing"
)

const getListingKey = "listings.get"

type GetListingQuery struct {
	ListingID string
}

func (q GetListingQuery) Key() string { return getListingKey }

type ListingView struct {
	ListingID    string   `json:"listing_id"`
	HostID       string   `json:"host_id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	PropertyType string   `json:"property_type"`
	ImageURL     string   `json:"image_url"`
	Address      string   `json:"address"`
	City         string   `json:"city"`
	Country      string   `json:"country"`
	GuestsLimit  int      `json:"guests_limit"`
	NightlyCents int64    `json:"nightly_cents"`
	ReservedDays []string `json:"reserved_days"`
	Bookings     []string `json:"bookings"`
}

type GetListingHandler struct {
	UoW uow.Factory
}

func (h *GetListingHandler) Handle(ctx context.Context, q GetListingQuery) (*ListingView, error) {
	unit, err := h.UoW.Begin(ctx)
	if err != nil {
		return nil, err
	}
	l, err := unit.Listings().ByID(ctx, domainlisting.ListingID(q.ListingID))
	if err != nil {
		return nil, err
	}
	return &ListingView{
		ListingID:    string(l.ID),
		HostID:       l.HostID,
		Title:        l.Title,
		Description:  l.Description,
		PropertyType: string(l.Type),
		ImageURL:     l.ImageURL,
		Address:      l.Address,
		City:         l.City,
		Country:      l.Country,
		GuestsLimit:  l.GuestsLimit,
		NightlyCents: l.Nightly.Amount,
		ReservedDays: l.Calendar.Days(),
		Bookings:     append([]string(nil), l.Bookings...),
	}, nil
}

var _ queries.Handler[GetListingQuery, *ListingView] = (*GetListingHandler)(nil)

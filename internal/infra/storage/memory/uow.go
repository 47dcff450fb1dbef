package memory

import (
	"context"
	"errors"

	"homestay/internal/app/uow"
	domainbooking "homestay/internal/domain/booking"
	domainlisting "homestay/internal/domain/listing"
	domainuser "homestay/internal/domain/user"
)

// Factory hands out unit-of-work views over the in-memory repositories.
type Factory struct {
	ListingsRepo *ListingRepository
	UsersRepo    *UserRepository
	BookingsRepo *BookingRepository
}

var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

func (f Factory) Begin(ctx context.Context) (uow.UnitOfWork, error) {
	if f.ListingsRepo == nil || f.UsersRepo == nil || f.BookingsRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{listings: f.ListingsRepo, users: f.UsersRepo, bookings: f.BookingsRepo}, nil
}

type Unit struct {
	listings *ListingRepository
	users    *UserRepository
	bookings *BookingRepository
}

func (u *Unit) Listings() domainlisting.Repository {
	return u.listings
}

func (u *Unit) Users() domainuser.Repository {
	return u.users
}

func (u *Unit) Bookings() domainbooking.Repository {
	return u.bookings
}

package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	appuow "homestay/internal/app/uow"
	domainbooking "homestay/internal/domain/booking"
	domainlisting "homestay/internal/domain/listing"
	domainuser "homestay/internal/domain/user"
)

// Factory hands out units of work backed by one shared database handle. The
// repositories are stateless, so every unit reuses the same instances.
type Factory struct {
	listings *ListingRepository
	users    *UserRepository
	bookings *BookingRepository
}

func NewFactory(db *mongo.Database) *Factory {
	return &Factory{
		listings: NewListingRepository(db),
		users:    NewUserRepository(db),
		bookings: NewBookingRepository(db),
	}
}

func (f *Factory) Begin(ctx context.Context) (appuow.UnitOfWork, error) {
	if f.listings == nil || f.users == nil || f.bookings == nil {
		return nil, appuow.ErrNotConfigured
	}
	return &unit{factory: f}, nil
}

type unit struct {
	factory *Factory
}

func (u *unit) Listings() domainlisting.Repository { return u.factory.listings }
func (u *unit) Users() domainuser.Repository       { return u.factory.users }
func (u *unit) Bookings() domainbooking.Repository { return u.factory.bookings }

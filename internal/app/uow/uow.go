package uow

import (
	"context"
	"errors"

	domainbooking "homestay/internal/domain/booking"
	domainlisting "homestay/internal/domain/listing"
	domainuser "homestay/internal/domain/user"
)

var ErrNotConfigured = errors.New("uow: repositories not configured")

// UnitOfWork groups the repositories a handler touches. Storage guarantees
// only per-document atomicity, so there is no commit/rollback pair here; the
// booking orchestrator sequences its writes and compensates explicitly.
type UnitOfWork interface {
	Listings() domainlisting.Repository
	Users() domainuser.Repository
	Bookings() domainbooking.Repository
}

// Factory starts unit of work instances.
type Factory interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}

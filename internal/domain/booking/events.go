package booking

import (
	"time"

	"homestay/internal/domain/listing"
)

type BookingCommitted struct {
	BookingID BookingID         `json:"booking_id"`
	ListingID listing.ListingID `json:"listing_id"`
	TenantID  string            `json:"tenant_id"`
	CheckIn   time.Time         `json:"check_in"`
	CheckOut  time.Time         `json:"check_out"`
	Total     int64             `json:"total_cents"`
	At        time.Time         `json:"at"`
}

func (e BookingCommitted) EventName() string     { return "booking.committed" }
func (e BookingCommitted) AggregateID() string   { return string(e.BookingID) }
func (e BookingCommitted) OccurredAt() time.Time { return e.At }

// ChargeOrphaned marks a successful charge whose booking could not be
// persisted. A reconciliation consumer is expected to refund the charge; the
// charge itself is never retried.
type ChargeOrphaned struct {
	BookingID BookingID         `json:"booking_id"`
	ListingID listing.ListingID `json:"listing_id"`
	TenantID  string            `json:"tenant_id"`
	ChargeRef string            `json:"charge_ref"`
	Total     int64             `json:"total_cents"`
	Reason    string            `json:"reason"`
	At        time.Time         `json:"at"`
}

func (e ChargeOrphaned) EventName() string     { return "booking.charge_orphaned" }
func (e ChargeOrphaned) AggregateID() string   { return string(e.BookingID) }
func (e ChargeOrphaned) OccurredAt() time.Time { return e.At }

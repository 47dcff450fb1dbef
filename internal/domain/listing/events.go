package listing

import "time"

type ListingCreated struct {
	ListingID ListingID `json:"listing_id"`
	HostID    string    `json:"host_id"`
	At        time.Time `json:"at"`
}

func (e ListingCreated) EventName() string     { return "listing.created" }
func (e ListingCreated) AggregateID() string   { return string(e.ListingID) }
func (e ListingCreated) OccurredAt() time.Time { return e.At }

type CalendarReserved struct {
	ListingID ListingID `json:"listing_id"`
	BookingID string    `json:"booking_id"`
	CheckIn   time.Time `json:"check_in"`
	CheckOut  time.Time `json:"check_out"`
	At        time.Time `json:"at"`
}

func (e CalendarReserved) EventName() string     { return "listing.calendar_reserved" }
func (e CalendarReserved) AggregateID() string   { return string(e.ListingID) }
func (e CalendarReserved) OccurredAt() time.Time { return e.At }

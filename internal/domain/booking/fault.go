package booking

import (
	"errors"
	"fmt"
)

// Kind classifies why a booking attempt was rejected. Callers branch on the
// kind, never on message text.
type Kind string

const (
	KindUnauthenticated   Kind = "UNAUTHENTICATED"
	KindNotFound          Kind = "NOT_FOUND"
	KindSelfBooking       Kind = "SELF_BOOKING_FORBIDDEN"
	KindInvalidDateRange  Kind = "INVALID_DATE_RANGE"
	KindDateConflict      Kind = "DATE_CONFLICT"
	KindHostNotPayable    Kind = "HOST_NOT_PAYABLE"
	KindChargeFailed      Kind = "CHARGE_FAILED"
	KindPersistenceFailed Kind = "PERSISTENCE_FAILED"
)

// Fault is a terminal booking failure. No fault is retried automatically.
type Fault struct {
	Kind    Kind
	Message string
	Err     error
}

func (f *Fault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("booking: %s: %v", f.Message, f.Err)
	}
	return "booking: " + f.Message
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// NewFault builds a fault with a descriptive message.
func NewFault(kind Kind, message string) *Fault {
	return &Fault{Kind: kind, Message: message}
}

// WrapFault attaches an underlying cause to a fault.
func WrapFault(kind Kind, message string, err error) *Fault {
	return &Fault{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the failure kind from an error chain.
func KindOf(err error) (Kind, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind, true
	}
	return "", false
}

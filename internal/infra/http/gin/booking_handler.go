package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"homestay/internal/app/commands"
	bookingapp "homestay/internal/app/handlers/booking"
	domainbooking "homestay/internal/domain/booking"
)

type BookingHTTP interface {
	Create(c *gin.Context)
}

type BookingHandler struct {
	Commands commands.Bus
	Logger   *slog.Logger
}

type createBookingRequest struct {
	ListingID string    `json:"listing_id"`
	CheckIn   time.Time `json:"check_in"`
	CheckOut  time.Time `json:"check_out"`
	Source    string    `json:"source"`
}

func (h BookingHandler) Create(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tenantID := ""
	if p, ok := currentPrincipal(c); ok {
		tenantID = p.ID
	}
	cmd := bookingapp.CreateBookingCommand{
		CommandID:       uuid.NewString(),
		ListingID:       req.ListingID,
		TenantID:        tenantID,
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		Source:          req.Source,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[bookingapp.CreateBookingCommand, *bookingapp.CreateBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// respondBookingError maps failure kinds to statuses. The kind travels in the
// body so clients branch on it rather than on message text.
func (h BookingHandler) respondBookingError(c *gin.Context, err error) {
	kind, ok := domainbooking.KindOf(err)
	if !ok {
		if h.Logger != nil {
			h.Logger.Error("booking request failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	status := http.StatusInternalServerError
	switch kind {
	case domainbooking.KindUnauthenticated:
		status = http.StatusUnauthorized
	case domainbooking.KindNotFound:
		status = http.StatusNotFound
	case domainbooking.KindSelfBooking:
		status = http.StatusForbidden
	case domainbooking.KindInvalidDateRange:
		status = http.StatusBadRequest
	case domainbooking.KindDateConflict:
		status = http.StatusConflict
	case domainbooking.KindHostNotPayable:
		status = http.StatusUnprocessableEntity
	case domainbooking.KindChargeFailed:
		status = http.StatusPaymentRequired
	}
	c.JSON(status, gin.H{"error": err.Error(), "kind": string(kind)})
}

var _ BookingHTTP = BookingHandler{}

package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	bookingapp "homestay/internal/app/handlers/booking"
	"homestay/internal/app/queries"
)

type MeHTTP interface {
	ListBookings(c *gin.Context)
}

type MeHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

func (h MeHandler) ListBookings(c *gin.Context) {
	p, ok := requireViewer(c)
	if !ok {
		return
	}
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	query := bookingapp.TenantBookingsQuery{TenantID: p.ID}
	result, err := queries.Ask[bookingapp.TenantBookingsQuery, []bookingapp.TenantBookingView](c.Request.Context(), h.Queries, query)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("tenant bookings query failed", "error", err, "user_id", p.ID)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load bookings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": result})
}

var _ MeHTTP = MeHandler{}

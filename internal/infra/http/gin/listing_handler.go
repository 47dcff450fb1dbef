package ginserver

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"homestay/internal/app/commands"
	listingapp "homestay/internal/app/handlers/listings"
	"homestay/internal/app/queries"
	domainlisting "homestay/internal/domain/listing"
)

const maxListingPhotoSizeBytes = 10 * 1024 * 1024

type ListingHTTP interface {
	Get(c *gin.Context)
}

type HostListingHTTP interface {
	Create(c *gin.Context)
}

type ListingHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

func (h ListingHandler) Get(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	query := listingapp.GetListingQuery{ListingID: c.Param("id")}
	result, err := queries.Ask[listingapp.GetListingQuery, *listingapp.ListingView](c.Request.Context(), h.Queries, query)
	if err != nil {
		if errors.Is(err, domainlisting.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "listing can't be found"})
			return
		}
		if h.Logger != nil {
			h.Logger.Error("listing query failed", "error", err, "listing_id", query.ListingID)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, result)
}

type HostListingHandler struct {
	Commands commands.Bus
	Logger   *slog.Logger
}

type hostListingRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	PropertyType string `json:"property_type"`
	Address      string `json:"address"`
	City         string `json:"city"`
	Country      string `json:"country"`
	GuestsLimit  int    `json:"guests_limit"`
	NightlyCents int64  `json:"nightly_cents"`
	// Either a URL to an already hosted photo or base64 content to store.
	ImageURL         string `json:"image_url"`
	ImageBase64      string `json:"image_base64"`
	ImageContentType string `json:"image_content_type"`
}

func (h HostListingHandler) Create(c *gin.Context) {
	p, ok := requireViewer(c)
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req hostListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var imageData []byte
	if req.ImageBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.ImageBase64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image_base64 is not valid base64"})
			return
		}
		if len(decoded) > maxListingPhotoSizeBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "listing photo exceeds size limit"})
			return
		}
		imageData = decoded
	}
	cmd := listingapp.CreateListingCommand{
		HostID:           p.ID,
		Title:            req.Title,
		Description:      req.Description,
		PropertyType:     req.PropertyType,
		Address:          req.Address,
		City:             req.City,
		Country:          req.Country,
		GuestsLimit:      req.GuestsLimit,
		NightlyCents:     req.NightlyCents,
		ImageURL:         req.ImageURL,
		ImageData:        imageData,
		ImageContentType: req.ImageContentType,
	}
	result, err := commands.Dispatch[listingapp.CreateListingCommand, *listingapp.CreateListingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.respondListingError(c, err)
		return
	}
	c.Header("Location", fmt.Sprintf("/api/v1/listings/%s", result.ListingID))
	c.JSON(http.StatusCreated, result)
}

func (h HostListingHandler) respondListingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainlisting.ErrTitleRequired),
		errors.Is(err, domainlisting.ErrAddressRequired),
		errors.Is(err, domainlisting.ErrInvalidRate),
		errors.Is(err, domainlisting.ErrInvalidType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		if h.Logger != nil {
			h.Logger.Error("host listing create failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

var _ ListingHTTP = ListingHandler{}
var _ HostListingHTTP = HostListingHandler{}

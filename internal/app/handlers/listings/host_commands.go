package listings

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"homestay/internal/app/commands"
	"homestay/internal/app/outbox"
	"homestay/internal/app/policies"
	"homestay/internal/app/uow"
	domainlisting "homestay/internal/domain/listing"
	domainuser "homestay/internal/domain/user"
)

const createListingKey = "host.listings.create"

var ErrHostRequired = errors.New("listings: host id is required")

type CreateListingCommand struct {
	HostID       string
	Title        string
	Description  string
	PropertyType string
	Address      string
	City         string
	Country      string
	GuestsLimit  int
	NightlyCents int64
	// Either a pre-uploaded URL or raw image bytes to store.
	ImageURL         string
	ImageData        []byte
	ImageContentType string
}

func (c CreateListingCommand) Key() string { return createListingKey }

type CreateListingResult struct {
	ListingID string `json:"listing_id"`
	ImageURL  string `json:"image_url"`
}

type CreateListingHandler struct {
	UoW      uow.Factory
	Uploader policies.UploaderPort
	Outbox   outbox.Outbox
	Logger   *slog.Logger
}

func (h *CreateListingHandler) Handle(ctx context.Context, cmd CreateListingCommand) (*CreateListingResult, error) {
	if strings.TrimSpace(cmd.HostID) == "" {
		return nil, ErrHostRequired
	}
	unit, err := h.UoW.Begin(ctx)
	if err != nil {
		return nil, err
	}
	host, err := unit.Users().ByID(ctx, domainuser.ID(cmd.HostID))
	if err != nil {
		return nil, err
	}

	listingID := domainlisting.ListingID(uuid.NewString())
	imageURL := cmd.ImageURL
	if len(cmd.ImageData) > 0 && h.Uploader != nil {
		key := fmt.Sprintf("listings/%s/cover", listingID)
		url, err := h.Uploader.Upload(ctx, key, bytes.NewReader(cmd.ImageData), cmd.ImageContentType)
		if err != nil {
			return nil, fmt.Errorf("listings: cover upload: %w", err)
		}
		imageURL = url
	}

	l, err := domainlisting.NewListing(domainlisting.CreateParams{
		ID:           listingID,
		HostID:       string(host.ID),
		Title:        cmd.Title,
		Description:  cmd.Description,
		Type:         domainlisting.PropertyType(strings.ToUpper(strings.TrimSpace(cmd.PropertyType))),
		ImageURL:     imageURL,
		Address:      cmd.Address,
		City:         cmd.City,
		Country:      cmd.Country,
		GuestsLimit:  cmd.GuestsLimit,
		NightlyCents: cmd.NightlyCents,
		Now:          time.Now(),
	})
	if err != nil {
		return nil, err
	}

	if err := unit.Listings().Save(ctx, l); err != nil {
		return nil, err
	}
	if err := unit.Users().AppendListing(ctx, host.ID, string(l.ID)); err != nil {
		return nil, err
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, l.Drain()); err != nil && h.Logger != nil {
		h.Logger.Error("listing events not recorded", "listing_id", l.ID, "error", err)
	}

	if h.Logger != nil {
		h.Logger.Info("host listing created", "listing_id", l.ID, "host_id", host.ID)
	}
	return &CreateListingResult{ListingID: string(l.ID), ImageURL: imageURL}, nil
}

var _ commands.Handler[CreateListingCommand, *CreateListingResult] = (*CreateListingHandler)(nil)

package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlisting "homestay/internal/domain/listing"
	"homestay/internal/domain/shared/money"
)

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{col: db.Collection("listings")}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlisting.ListingID) (*domainlisting.Listing, error) {
	var doc listingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainlisting.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Save upserts the listing guarded by calendar_version: the filter matches
// only the version the caller read, and the written document carries
// version+1. A zero match on an existing id means another writer won the
// calendar.
func (r *ListingRepository) Save(ctx context.Context, l *domainlisting.Listing) error {
	doc := newListingDocument(l)
	filter := bson.M{"_id": doc.ID, "calendar_version": l.CalendarVersion}
	doc.CalendarVersion = l.CalendarVersion + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainlisting.ErrVersionConflict
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return domainlisting.ErrVersionConflict
	}
	l.CalendarVersion = doc.CalendarVersion
	return nil
}

type listingDocument struct {
	ID              string   `bson:"_id"`
	HostID          string   `bson:"host_id"`
	Title           string   `bson:"title"`
	Description     string   `bson:"description"`
	Type            string   `bson:"type"`
	ImageURL        string   `bson:"image_url"`
	Address         string   `bson:"address"`
	City            string   `bson:"city"`
	Country         string   `bson:"country"`
	GuestsLimit     int      `bson:"guests_limit"`
	NightlyAmount   int64    `bson:"nightly_amount"`
	NightlyCurrency string   `bson:"nightly_currency"`
	BookedDays      []string `bson:"booked_days"`
	CalendarVersion int64    `bson:"calendar_version"`
	Bookings        []string `bson:"bookings"`
	CreatedAt       int64    `bson:"created_at"`
	UpdatedAt       int64    `bson:"updated_at"`
}

func newListingDocument(l *domainlisting.Listing) listingDocument {
	return listingDocument{
		ID:              string(l.ID),
		HostID:          l.HostID,
		Title:           l.Title,
		Description:     l.Description,
		Type:            string(l.Type),
		ImageURL:        l.ImageURL,
		Address:         l.Address,
		City:            l.City,
		Country:         l.Country,
		GuestsLimit:     l.GuestsLimit,
		NightlyAmount:   l.Nightly.Amount,
		NightlyCurrency: l.Nightly.Currency,
		BookedDays:      l.Calendar.Days(),
		CalendarVersion: l.CalendarVersion,
		Bookings:        l.Bookings,
		CreatedAt:       l.CreatedAt.UnixMilli(),
		UpdatedAt:       l.UpdatedAt.UnixMilli(),
	}
}

func (d listingDocument) toAggregate() *domainlisting.Listing {
	return &domainlisting.Listing{
		ID:              domainlisting.ListingID(d.ID),
		HostID:          d.HostID,
		Title:           d.Title,
		Description:     d.Description,
		Type:            domainlisting.PropertyType(d.Type),
		ImageURL:        d.ImageURL,
		Address:         d.Address,
		City:            d.City,
		Country:         d.Country,
		GuestsLimit:     d.GuestsLimit,
		Nightly:         money.Money{Amount: d.NightlyAmount, Currency: d.NightlyCurrency},
		Calendar:        domainlisting.NewCalendar(d.BookedDays...),
		CalendarVersion: d.CalendarVersion,
		Bookings:        d.Bookings,
		CreatedAt:       timestampToTime(d.CreatedAt),
		UpdatedAt:       timestampToTime(d.UpdatedAt),
	}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

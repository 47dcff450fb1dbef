package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "homestay/internal/domain/booking"
	domainlisting "homestay/internal/domain/listing"
	"homestay/internal/domain/shared/money"
)

var ErrDuplicateBooking = errors.New("mongo: booking id already inserted")

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection("bookings")}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) Insert(ctx context.Context, b *domainbooking.Booking) error {
	_, err := r.col.InsertOne(ctx, newBookingDocument(b))
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateBooking
	}
	return err
}

func (r *BookingRepository) ListByTenant(ctx context.Context, tenantID string) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"tenant_id": tenantID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domainbooking.Booking
	for cur.Next(ctx) {
		var doc bookingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

type bookingDocument struct {
	ID            string `bson:"_id"`
	ListingID     string `bson:"listing_id"`
	TenantID      string `bson:"tenant_id"`
	CheckIn       int64  `bson:"check_in"`
	CheckOut      int64  `bson:"check_out"`
	TotalAmount   int64  `bson:"total_amount"`
	TotalCurrency string `bson:"total_currency"`
	State         string `bson:"state"`
	RejectedKind  string `bson:"rejected_kind,omitempty"`
	CreatedAt     int64  `bson:"created_at"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:            string(b.ID),
		ListingID:     string(b.ListingID),
		TenantID:      b.TenantID,
		CheckIn:       b.CheckIn.UnixMilli(),
		CheckOut:      b.CheckOut.UnixMilli(),
		TotalAmount:   b.Total.Amount,
		TotalCurrency: b.Total.Currency,
		State:         string(b.State),
		RejectedKind:  string(b.RejectedKind),
		CreatedAt:     b.CreatedAt.UnixMilli(),
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:           domainbooking.BookingID(d.ID),
		ListingID:    domainlisting.ListingID(d.ListingID),
		TenantID:     d.TenantID,
		CheckIn:      timestampToTime(d.CheckIn),
		CheckOut:     timestampToTime(d.CheckOut),
		Total:        money.Money{Amount: d.TotalAmount, Currency: d.TotalCurrency},
		State:        domainbooking.State(d.State),
		RejectedKind: domainbooking.Kind(d.RejectedKind),
		CreatedAt:    timestampToTime(d.CreatedAt),
	}
}

package mongo

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"homestay/internal/domain/shared/money"
	domainuser "homestay/internal/domain/user"
)

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection("users")}
}

func (r *UserRepository) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	var doc userDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainuser.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *UserRepository) ByEmail(ctx context.Context, email string) (*domainuser.User, error) {
	var doc userDocument
	filter := bson.M{"email": strings.ToLower(strings.TrimSpace(email))}
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainuser.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *UserRepository) Save(ctx context.Context, u *domainuser.User) error {
	doc := newUserDocument(u)
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": doc}, opts)
	if mongo.IsDuplicateKeyError(err) {
		return domainuser.ErrEmailAlreadyUsed
	}
	return err
}

// AddIncome credits the host's running income with one atomic $inc.
func (r *UserRepository) AddIncome(ctx context.Context, id domainuser.ID, delta money.Money) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": string(id)}, bson.M{"$inc": bson.M{"income_amount": delta.Amount}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainuser.ErrNotFound
	}
	return nil
}

func (r *UserRepository) AppendBooking(ctx context.Context, id domainuser.ID, bookingID string) error {
	return r.push(ctx, id, "bookings", bookingID)
}

func (r *UserRepository) AppendListing(ctx context.Context, id domainuser.ID, listingID string) error {
	return r.push(ctx, id, "listings", listingID)
}

func (r *UserRepository) push(ctx context.Context, id domainuser.ID, field, value string) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": string(id)}, bson.M{"$push": bson.M{field: value}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainuser.ErrNotFound
	}
	return nil
}

type userDocument struct {
	ID             string   `bson:"_id"`
	Email          string   `bson:"email"`
	Name           string   `bson:"name"`
	Avatar         string   `bson:"avatar"`
	PasswordHash   string   `bson:"password_hash"`
	WalletID       string   `bson:"wallet_id"`
	IncomeAmount   int64    `bson:"income_amount"`
	IncomeCurrency string   `bson:"income_currency"`
	Bookings       []string `bson:"bookings"`
	Listings       []string `bson:"listings"`
	CreatedAt      int64    `bson:"created_at"`
	UpdatedAt      int64    `bson:"updated_at"`
}

func newUserDocument(u *domainuser.User) userDocument {
	return userDocument{
		ID:             string(u.ID),
		Email:          u.Email,
		Name:           u.Name,
		Avatar:         u.Avatar,
		PasswordHash:   u.PasswordHash,
		WalletID:       u.WalletID,
		IncomeAmount:   u.Income.Amount,
		IncomeCurrency: u.Income.Currency,
		Bookings:       u.Bookings,
		Listings:       u.Listings,
		CreatedAt:      u.CreatedAt.UnixMilli(),
		UpdatedAt:      u.UpdatedAt.UnixMilli(),
	}
}

func (d userDocument) toAggregate() *domainuser.User {
	currency := d.IncomeCurrency
	if currency == "" {
		currency = "USD"
	}
	return &domainuser.User{
		ID:           domainuser.ID(d.ID),
		Email:        d.Email,
		Name:         d.Name,
		Avatar:       d.Avatar,
		PasswordHash: d.PasswordHash,
		WalletID:     d.WalletID,
		Income:       money.Money{Amount: d.IncomeAmount, Currency: currency},
		Bookings:     d.Bookings,
		Listings:     d.Listings,
		CreatedAt:    timestampToTime(d.CreatedAt),
		UpdatedAt:    timestampToTime(d.UpdatedAt),
	}
}

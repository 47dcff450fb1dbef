package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"homestay/internal/domain/shared/money"
)

var (
	ErrNotFound            = errors.New("user: not found")
	ErrIDRequired          = errors.New("user: id is required")
	ErrEmailRequired       = errors.New("user: email is required")
	ErrNameRequired        = errors.New("user: name is required")
	ErrPasswordHashMissing = errors.New("user: password hash is required")
	ErrEmailAlreadyUsed    = errors.New("user: email already used")
)

type ID string

// User is both a potential tenant and a potential host. WalletID links the
// external payment account charges are routed to; Income, Bookings and
// Listings are denormalized projections updated alongside booking creation.
type User struct {
	ID           ID
	Email        string
	Name         string
	Avatar       string
	PasswordHash string
	WalletID     string
	Income       money.Money
	Bookings     []string
	Listings     []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Repository persists users. The Add*/Append* operations map to single
// document atomic updates ($inc / $push in Mongo terms).
type Repository interface {
	ByID(ctx context.Context, id ID) (*User, error)
	ByEmail(ctx context.Context, email string) (*User, error)
	Save(ctx context.Context, u *User) error
	AddIncome(ctx context.Context, id ID, delta money.Money) error
	AppendBooking(ctx context.Context, id ID, bookingID string) error
	AppendListing(ctx context.Context, id ID, listingID string) error
}

type CreateParams struct {
	ID           ID
	Email        string
	Name         string
	Avatar       string
	PasswordHash string
	WalletID     string
	CreatedAt    time.Time
}

func NewUser(params CreateParams) (*User, error) {
	id := strings.TrimSpace(string(params.ID))
	if id == "" {
		return nil, ErrIDRequired
	}
	email := strings.ToLower(strings.TrimSpace(params.Email))
	if email == "" {
		return nil, ErrEmailRequired
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if strings.TrimSpace(params.PasswordHash) == "" {
		return nil, ErrPasswordHashMissing
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return &User{
		ID:           ID(id),
		Email:        email,
		Name:         name,
		Avatar:       params.Avatar,
		PasswordHash: params.PasswordHash,
		WalletID:     strings.TrimSpace(params.WalletID),
		Income:       money.USDCents(0),
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Payable reports whether the user can receive charge proceeds.
func (u *User) Payable() bool {
	return u.WalletID != ""
}

// ConnectWallet links the external payment account.
func (u *User) ConnectWallet(walletID string, now time.Time) {
	u.WalletID = strings.TrimSpace(walletID)
	u.UpdatedAt = now.UTC()
}

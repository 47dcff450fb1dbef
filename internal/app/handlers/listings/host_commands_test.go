package listings_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"homestay/internal/app/handlers/listings"
	domainlisting "homestay/internal/domain/listing"
	domainuser "homestay/internal/domain/user"
	"homestay/internal/infra/storage/memory"
)

type fakeUploader struct {
	keys []string
	fail error
}

func (u *fakeUploader) Upload(_ context.Context, key string, reader io.Reader, _ string) (string, error) {
	if u.fail != nil {
		return "", u.fail
	}
	if _, err := io.ReadAll(reader); err != nil {
		return "", err
	}
	u.keys = append(u.keys, key)
	return "https://cdn.example.com/" + key, nil
}

func seedHost(t *testing.T, users *memory.UserRepository) string {
	t.Helper()
	host, err := domainuser.NewUser(domainuser.CreateParams{
		ID: "host-1", Email: "host@example.com", Name: "Host",
		PasswordHash: "x", CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	if err := users.Save(context.Background(), host); err != nil {
		t.Fatalf("save host: %v", err)
	}
	return string(host.ID)
}

func newHandler(uploader *fakeUploader) (*listings.CreateListingHandler, memory.Factory) {
	factory := memory.Factory{
		ListingsRepo: memory.NewListingRepository(),
		UsersRepo:    memory.NewUserRepository(),
		BookingsRepo: memory.NewBookingRepository(),
	}
	return &listings.CreateListingHandler{
		UoW:      factory,
		Uploader: uploader,
		Outbox:   memory.NewOutbox(),
	}, factory
}

func TestCreateListingUploadsCoverPhoto(t *testing.T) {
	uploader := &fakeUploader{}
	handler, factory := newHandler(uploader)
	hostID := seedHost(t, factory.UsersRepo)
	ctx := context.Background()

	result, err := handler.Handle(ctx, listings.CreateListingCommand{
		HostID:           hostID,
		Title:            "Old town flat",
		PropertyType:     "apartment",
		Address:          "12 Kings Rd",
		City:             "Toronto",
		Country:          "Canada",
		GuestsLimit:      2,
		NightlyCents:     8500,
		ImageData:        []byte("not-really-a-jpeg"),
		ImageContentType: "image/jpeg",
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(uploader.keys) != 1 || !strings.HasSuffix(uploader.keys[0], "/cover") {
		t.Fatalf("upload keys = %v", uploader.keys)
	}
	if !strings.HasPrefix(result.ImageURL, "https://cdn.example.com/") {
		t.Fatalf("image url = %s", result.ImageURL)
	}

	l, err := factory.ListingsRepo.ByID(ctx, domainlisting.ListingID(result.ListingID))
	if err != nil {
		t.Fatalf("listing not persisted: %v", err)
	}
	if l.Type != domainlisting.TypeApartment {
		t.Fatalf("type = %s", l.Type)
	}
	if l.ImageURL != result.ImageURL {
		t.Fatalf("image url not stored: %s", l.ImageURL)
	}

	host, _ := factory.UsersRepo.ByID(ctx, domainuser.ID(hostID))
	if len(host.Listings) != 1 || host.Listings[0] != result.ListingID {
		t.Fatalf("host listings = %v", host.Listings)
	}
}

func TestCreateListingKeepsProvidedURLWithoutUpload(t *testing.T) {
	uploader := &fakeUploader{}
	handler, factory := newHandler(uploader)
	hostID := seedHost(t, factory.UsersRepo)

	result, err := handler.Handle(context.Background(), listings.CreateListingCommand{
		HostID:       hostID,
		Title:        "Cabin",
		PropertyType: "HOUSE",
		Address:      "1 Forest Way",
		NightlyCents: 12000,
		ImageURL:     "https://images.example.com/cabin.png",
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(uploader.keys) != 0 {
		t.Fatalf("unexpected uploads: %v", uploader.keys)
	}
	if result.ImageURL != "https://images.example.com/cabin.png" {
		t.Fatalf("image url = %s", result.ImageURL)
	}
}

func TestCreateListingRejectsUnknownHost(t *testing.T) {
	handler, _ := newHandler(&fakeUploader{})
	_, err := handler.Handle(context.Background(), listings.CreateListingCommand{
		HostID: "ghost", Title: "X", PropertyType: "HOUSE", Address: "1", NightlyCents: 100,
	})
	if !errors.Is(err, domainuser.ErrNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
}

func TestCreateListingRejectsInvalidType(t *testing.T) {
	handler, factory := newHandler(&fakeUploader{})
	hostID := seedHost(t, factory.UsersRepo)
	_, err := handler.Handle(context.Background(), listings.CreateListingCommand{
		HostID: hostID, Title: "X", PropertyType: "CASTLE", Address: "1", NightlyCents: 100,
	})
	if !errors.Is(err, domainlisting.ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
}

func TestCreateListingUploadFailureAborts(t *testing.T) {
	uploader := &fakeUploader{fail: errors.New("bucket unreachable")}
	handler, factory := newHandler(uploader)
	hostID := seedHost(t, factory.UsersRepo)

	_, err := handler.Handle(context.Background(), listings.CreateListingCommand{
		HostID: hostID, Title: "X", PropertyType: "HOUSE", Address: "1",
		NightlyCents: 100, ImageData: []byte("img"),
	})
	if err == nil {
		t.Fatal("expected upload failure to abort the command")
	}
	host, _ := factory.UsersRepo.ByID(context.Background(), domainuser.ID(hostID))
	if len(host.Listings) != 0 {
		t.Fatalf("listing leaked despite failed upload: %v", host.Listings)
	}
}

package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	authsvc "homestay/internal/app/services/auth"
	domainuser "homestay/internal/domain/user"
	"homestay/internal/infra/security"
	"homestay/internal/infra/storage/memory"
)

func newService() *authsvc.Service {
	return &authsvc.Service{
		Users:      memory.NewUserRepository(),
		Sessions:   memory.NewSessionStore(),
		Passwords:  security.BcryptHasher{},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: time.Hour,
	}
}

func TestRegisterThenResolveToken(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	result, err := svc.Register(ctx, authsvc.RegisterParams{
		Email:    "Viewer@Example.com",
		Name:     "Viewer",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if result.Token == "" {
		t.Fatal("register must issue a session token")
	}
	if result.User.Email != "viewer@example.com" {
		t.Fatalf("email not normalized: %s", result.User.Email)
	}

	viewer, err := svc.ResolveToken(ctx, result.Token)
	if err != nil {
		t.Fatalf("ResolveToken: %v", err)
	}
	if viewer.ID != result.User.ID {
		t.Fatalf("resolved %s, want %s", viewer.ID, result.User.ID)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := newService()
	_, err := svc.Register(context.Background(), authsvc.RegisterParams{
		Email: "a@b.c", Name: "A", Password: "short",
	})
	if !errors.Is(err, authsvc.ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	params := authsvc.RegisterParams{Email: "a@b.c", Name: "A", Password: "correct-horse"}
	if _, err := svc.Register(ctx, params); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(ctx, params); !errors.Is(err, domainuser.ErrEmailAlreadyUsed) {
		t.Fatalf("expected ErrEmailAlreadyUsed, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	if _, err := svc.Register(ctx, authsvc.RegisterParams{Email: "a@b.c", Name: "A", Password: "correct-horse"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := svc.Login(ctx, authsvc.LoginParams{Email: "a@b.c", Password: "wrong-horse!"})
	if !errors.Is(err, authsvc.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnknownEmailHidesExistence(t *testing.T) {
	svc := newService()
	_, err := svc.Login(context.Background(), authsvc.LoginParams{Email: "nobody@b.c", Password: "whatever12"})
	if !errors.Is(err, authsvc.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	result, err := svc.Register(ctx, authsvc.RegisterParams{Email: "a@b.c", Name: "A", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.Logout(ctx, result.Token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := svc.ResolveToken(ctx, result.Token); err == nil {
		t.Fatal("token must be invalid after logout")
	}
}

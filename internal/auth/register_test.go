package auth

import (
	"context"
	"testing"

	"github.com/skillwave/skillwave-backend/pkg/config"
	"github.com/skillwave/skillwave-backend/pkg/db"
	"github.com/skillwave/skillwave-backend/pkg/db/models"
	pkgerrors "github.com/skillwave/skillwave-backend/pkg/errors"
	"github.com/skillwave/skillwave-backend/pkg/security"
)

func newRegisterTestService(t *testing.T) RegisterService {
	t.Helper()
	client, err := db.New(context.Background(), config.DBConfig{
		Driver: "sqlite",
		DSN:    "file:authregister?mode=memory&cache=shared",
	}, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	users := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	if err := client.DB().Exec(users).Error; err != nil {
		t.Fatalf("create schema: %v", err)
	}

	t.Cleanup(func() {
		client.DB().Exec("DELETE FROM users")
		_ = client.Close()
	})

	svc, err := NewRegisterService(RegisterServiceParams{
		DB:             client,
		PasswordConfig: config.PasswordConfig{},
	})
	if err != nil {
		t.Fatalf("build register service: %v", err)
	}
	return svc
}

func TestRegisterCreatesUser(t *testing.T) {
	svc := newRegisterTestService(t)

	resp, err := svc.Register(context.Background(), RegisterRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "  Ada@Example.COM ",
		Password:  "strong-password",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.User == nil || resp.User.Email != "ada@example.com" {
		t.Fatalf("expected normalized email, got %+v", resp.User)
	}
	if !resp.User.IsActive {
		t.Fatal("expected new user active")
	}
}

func TestRegisterHashesPassword(t *testing.T) {
	svc := newRegisterTestService(t)

	resp, err := svc.Register(context.Background(), RegisterRequest{
		FirstName: "Grace",
		LastName:  "Hopper",
		Email:     "grace@example.com",
		Password:  "strong-password",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	client, err := db.New(context.Background(), config.DBConfig{
		Driver: "sqlite",
		DSN:    "file:authregister?mode=memory&cache=shared",
	}, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer client.Close()

	var user models.User
	if err := client.DB().First(&user, "id = ?", resp.User.ID).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.PasswordHash == "strong-password" {
		t.Fatal("password stored in plaintext")
	}
	ok, err := security.VerifyPassword("strong-password", user.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("expected hash to verify, ok=%v err=%v", ok, err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newRegisterTestService(t)

	req := RegisterRequest{
		FirstName: "Sam",
		LastName:  "Pat",
		Email:     "dup@example.com",
		Password:  "strong-password",
	}
	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(context.Background(), req)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRegisterRequiresEmail(t *testing.T) {
	svc := newRegisterTestService(t)

	_, err := svc.Register(context.Background(), RegisterRequest{
		FirstName: "No",
		LastName:  "Email",
		Email:     "   ",
		Password:  "strong-password",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

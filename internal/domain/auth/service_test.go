package auth

import (
	"context"
	"testing"
	"time"

	"takoyaki/internal/core/apperror"
	"takoyaki/internal/core/id"

	"golang.org/x/crypto/bcrypt"
)

type mockUserRepo struct {
	byEmail map[string]*User
	byID    map[id.ID]*User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{byEmail: make(map[string]*User), byID: make(map[id.ID]*User)}
}

func (m *mockUserRepo) Create(ctx context.Context, user *User) error {
	m.byEmail[user.Email] = user
	m.byID[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, userID id.ID) (*User, error) {
	u, ok := m.byID[userID]
	if !ok {
		return nil, apperror.NewNotFound("user", userID.String())
	}
	return u, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, apperror.NewNotFound("user", email)
	}
	return u, nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *User) error {
	m.byEmail[user.Email] = user
	m.byID[user.ID] = user
	return nil
}

func (m *mockUserRepo) Exists(ctx context.Context, email string) (bool, error) {
	_, ok := m.byEmail[email]
	return ok, nil
}

func (m *mockUserRepo) List(ctx context.Context) ([]User, error) {
	var out []User
	for _, u := range m.byID {
		out = append(out, *u)
	}
	return out, nil
}

func newTestService(repo Repository) *Service {
	return NewService(repo, NewJWTService(DefaultJWTConfig("test-secret")), DefaultServiceConfig())
}

func seedUser(t *testing.T, repo *mockUserRepo, email, password string) *User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := NewUser(email, string(hash))
	_ = repo.Create(context.Background(), user)
	return user
}

func TestLogin_IssuesValidToken(t *testing.T) {
	repo := newMockUserRepo()
	user := seedUser(t, repo, "owner@example.com", "correct horse")
	svc := newTestService(repo)

	token, loggedIn, err := svc.Login(context.Background(), Credentials{
		Email:    "owner@example.com",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Error("expected the seeded user back")
	}
	if token.TokenType != "Bearer" {
		t.Errorf("expected Bearer token, got %s", token.TokenType)
	}
	if user.LastLoginAt == nil {
		t.Error("expected last login recorded")
	}

	uc, err := NewJWTService(DefaultJWTConfig("test-secret")).ValidateToken(token.AccessToken)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if uc.UserID != user.ID.String() || uc.Email != user.Email {
		t.Errorf("claims mismatch: %+v", uc)
	}
}

func TestLogin_WrongPasswordLocksAfterAttempts(t *testing.T) {
	repo := newMockUserRepo()
	user := seedUser(t, repo, "owner@example.com", "correct horse")
	svc := newTestService(repo)

	for i := 0; i < DefaultServiceConfig().MaxLoginAttempts; i++ {
		_, _, err := svc.Login(context.Background(), Credentials{
			Email:    "owner@example.com",
			Password: "wrong",
		})
		appErr, ok := apperror.AsAppError(err)
		if !ok || appErr.Code != apperror.CodeUnauthorized {
			t.Fatalf("attempt %d: expected unauthorized, got %v", i, err)
		}
	}

	if !user.IsLocked() {
		t.Fatal("expected account locked after max attempts")
	}

	// correct password is refused while locked
	_, _, err := svc.Login(context.Background(), Credentials{
		Email:    "owner@example.com",
		Password: "correct horse",
	})
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeForbidden {
		t.Fatalf("expected forbidden while locked, got %v", err)
	}
}

func TestRegister_RejectsDuplicateAndShortPassword(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestService(repo)

	if _, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "staff@example.com",
		Password: "long enough",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "staff@example.com",
		Password: "long enough",
	})
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}

	_, err = svc.Register(context.Background(), RegisterRequest{
		Email:    "other@example.com",
		Password: "short",
	})
	if !apperror.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidateToken_RejectsWrongSecret(t *testing.T) {
	user := NewUser("owner@example.com", "x")
	token, _, err := NewJWTService(DefaultJWTConfig("secret-a")).GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := NewJWTService(DefaultJWTConfig("secret-b")).ValidateToken(token); err == nil {
		t.Fatal("expected validation failure with wrong secret")
	}
}

func TestValidateToken_RejectsExpired(t *testing.T) {
	cfg := DefaultJWTConfig("secret")
	cfg.AccessTokenTTL = -time.Minute
	token, _, err := NewJWTService(cfg).GenerateAccessToken(NewUser("a@example.com", "x"))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := NewJWTService(DefaultJWTConfig("secret")).ValidateToken(token); err == nil {
		t.Fatal("expected expired token rejected")
	}
}

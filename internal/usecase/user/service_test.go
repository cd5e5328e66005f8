package user

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"

	"patroltrack/internal/config"
	domainUser "patroltrack/internal/domain/user"
	appErrors "patroltrack/pkg/errors"
)

type mockUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domainUser.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uuid.UUID]*domainUser.User)}
}

func (m *mockUserRepo) Create(_ context.Context, u *domainUser.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Username == u.Username {
			return domainUser.ErrUserAlreadyExists
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	stored := *u
	m.users[u.ID] = &stored
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domainUser.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, domainUser.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*domainUser.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domainUser.ErrUserNotFound
}

func (m *mockUserRepo) Update(_ context.Context, u *domainUser.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[u.ID]; !ok {
		return domainUser.ErrUserNotFound
	}
	stored := *u
	m.users[u.ID] = &stored
	return nil
}

func (m *mockUserRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return domainUser.ErrUserNotFound
	}
	u.Status = status
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return domainUser.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, role string) ([]*domainUser.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []*domainUser.User
	for _, u := range m.users {
		if role != "" && u.Role != role {
			continue
		}
		copied := *u
		result = append(result, &copied)
	}
	return result, nil
}

type mockTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*domainUser.RefreshToken
}

func newMockTokenRepo() *mockTokenRepo {
	return &mockTokenRepo{tokens: make(map[string]*domainUser.RefreshToken)}
}

func (m *mockTokenRepo) Create(_ context.Context, token *domainUser.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	stored := *token
	m.tokens[token.Token] = &stored
	return nil
}

func (m *mockTokenRepo) GetByToken(_ context.Context, token string) (*domainUser.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rt, ok := m.tokens[token]
	if !ok {
		return nil, domainUser.ErrTokenNotFound
	}
	copied := *rt
	return &copied, nil
}

func (m *mockTokenRepo) Revoke(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rt, ok := m.tokens[token]
	if !ok {
		return domainUser.ErrTokenNotFound
	}
	rt.Revoked = true
	return nil
}

func (m *mockTokenRepo) RevokeAllForUser(_ context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, rt := range m.tokens {
		if rt.UserID == userID {
			rt.Revoked = true
		}
	}
	return nil
}

func (m *mockTokenRepo) DeleteExpired(_ context.Context) error {
	return nil
}

func newTestService() (*Service, *mockUserRepo, *mockTokenRepo) {
	userRepo := newMockUserRepo()
	tokenRepo := newMockTokenRepo()

	svc := NewService(userRepo, tokenRepo, &config.JWTConfig{
		Secret:             "test-secret",
		ExpiryHours:        1,
		RefreshExpiryHours: 168,
	})
	return svc, userRepo, tokenRepo
}

func register(t *testing.T, svc *Service, username, role string) *UserResponse {
	t.Helper()

	resp, err := svc.Register(context.Background(), &RegisterRequest{
		Username: username,
		Password: "Str0ngPassword",
		Role:     role,
		FullName: "Juan Dela Cruz",
		Email:    username + "@example.com",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	return resp
}

func TestRegisterStartsPending(t *testing.T) {
	svc, _, _ := newTestService()

	resp := register(t, svc, "tanod1", domainUser.RoleTanod)

	if resp.Status != domainUser.StatusPending {
		t.Errorf("expected status %s, got %s", domainUser.StatusPending, resp.Status)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _, _ := newTestService()

	register(t, svc, "tanod1", domainUser.RoleTanod)

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Username: "tanod1",
		Password: "Str0ngPassword",
		Role:     domainUser.RoleTanod,
		FullName: "Someone Else",
		Email:    "other@example.com",
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	if code := appErrors.CodeOf(err); code != "USER_EXISTS" {
		t.Errorf("expected USER_EXISTS, got %q", code)
	}
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Username: "mayor1",
		Password: "Str0ngPassword",
		Role:     "mayor",
		FullName: "Juan Dela Cruz",
		Email:    "mayor@example.com",
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	if code := appErrors.CodeOf(err); code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %q", code)
	}
}

func TestLoginBlockedUntilVerified(t *testing.T) {
	svc, _, _ := newTestService()

	resp := register(t, svc, "res1", domainUser.RoleResident)

	_, err := svc.Login(context.Background(), &LoginRequest{
		Username: "res1",
		Password: "Str0ngPassword",
	})
	if err == nil {
		t.Fatal("expected an error before verification")
	}
	if code := appErrors.CodeOf(err); code != "USER_NOT_VERIFIED" {
		t.Errorf("expected USER_NOT_VERIFIED, got %q", code)
	}

	if _, err := svc.VerifyUser(context.Background(), resp.ID); err != nil {
		t.Fatalf("VerifyUser failed: %v", err)
	}

	login, err := svc.Login(context.Background(), &LoginRequest{
		Username: "res1",
		Password: "Str0ngPassword",
	})
	if err != nil {
		t.Fatalf("Login after verification failed: %v", err)
	}
	if login.Tokens == nil || login.Tokens.AccessToken == "" {
		t.Error("expected an access token")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newTestService()

	resp := register(t, svc, "res1", domainUser.RoleResident)
	if _, err := svc.VerifyUser(context.Background(), resp.ID); err != nil {
		t.Fatalf("VerifyUser failed: %v", err)
	}

	_, err := svc.Login(context.Background(), &LoginRequest{
		Username: "res1",
		Password: "WrongPassword1",
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	if code := appErrors.CodeOf(err); code != "INVALID_CREDENTIALS" {
		t.Errorf("expected INVALID_CREDENTIALS, got %q", code)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, _, tokenRepo := newTestService()

	resp := register(t, svc, "tanod1", domainUser.RoleTanod)
	if _, err := svc.VerifyUser(context.Background(), resp.ID); err != nil {
		t.Fatalf("VerifyUser failed: %v", err)
	}

	login, err := svc.Login(context.Background(), &LoginRequest{
		Username: "tanod1",
		Password: "Str0ngPassword",
	})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	refreshed, err := svc.Refresh(context.Background(), &RefreshRequest{
		RefreshToken: login.Tokens.RefreshToken,
	})
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if refreshed.Tokens.RefreshToken == login.Tokens.RefreshToken {
		t.Error("expected the refresh token to rotate")
	}

	old, err := tokenRepo.GetByToken(context.Background(), login.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("old token lookup failed: %v", err)
	}
	if !old.Revoked {
		t.Error("old refresh token should be revoked")
	}

	// The revoked token cannot be used again.
	_, err = svc.Refresh(context.Background(), &RefreshRequest{
		RefreshToken: login.Tokens.RefreshToken,
	})
	if err == nil {
		t.Fatal("expected an error on reuse")
	}
	if code := appErrors.CodeOf(err); code != "INVALID_TOKEN" {
		t.Errorf("expected INVALID_TOKEN, got %q", code)
	}
}

func TestLogoutRevokesSessions(t *testing.T) {
	svc, _, tokenRepo := newTestService()

	resp := register(t, svc, "tanod1", domainUser.RoleTanod)
	if _, err := svc.VerifyUser(context.Background(), resp.ID); err != nil {
		t.Fatalf("VerifyUser failed: %v", err)
	}

	login, err := svc.Login(context.Background(), &LoginRequest{
		Username: "tanod1",
		Password: "Str0ngPassword",
	})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if err := svc.Logout(context.Background(), resp.ID); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	stored, err := tokenRepo.GetByToken(context.Background(), login.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("token lookup failed: %v", err)
	}
	if !stored.Revoked {
		t.Error("refresh token should be revoked after logout")
	}
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/smartplanhq/api/internal/auth"
	"github.com/smartplanhq/api/internal/profile"
)

type stubAccountRepo struct {
	accounts map[string]*profile.Account
	profiles map[uuid.UUID]*profile.Profile
}

func (s *stubAccountRepo) GetAccountByEmail(_ context.Context, email string) (*profile.Account, error) {
	if a, ok := s.accounts[email]; ok {
		return a, nil
	}
	return nil, profile.ErrAccountNotFound
}

func (s *stubAccountRepo) GetAccountByID(_ context.Context, id uuid.UUID) (*profile.Account, error) {
	for _, a := range s.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, profile.ErrAccountNotFound
}

func (s *stubAccountRepo) GetByID(_ context.Context, id uuid.UUID) (*profile.Profile, error) {
	if p, ok := s.profiles[id]; ok {
		return p, nil
	}
	return nil, profile.ErrNotFound
}

func (s *stubAccountRepo) GetByEmail(_ context.Context, email string) (*profile.Profile, error) {
	for _, p := range s.profiles {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, profile.ErrNotFound
}

func (s *stubAccountRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	for _, a := range s.accounts {
		if a.ID == id {
			a.SenhaHash = hash
			return nil
		}
	}
	return profile.ErrAccountNotFound
}

type memRedis struct {
	values map[string]string
	sets   int
	dels   int
}

func newMemRedis() *memRedis {
	return &memRedis{values: make(map[string]string)}
}

func (m *memRedis) Set(ctx context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	m.values[key] = toString(value)
	m.sets++
	return redis.NewStatusResult("OK", nil)
}

func (m *memRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if v, ok := m.values[key]; ok {
		return redis.NewStringResult(v, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (m *memRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	removed := int64(0)
	for _, key := range keys {
		if _, ok := m.values[key]; ok {
			delete(m.values, key)
			removed++
		}
	}
	m.dels++
	return redis.NewIntResult(removed, nil)
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return ""
	}
}

func newTestService(t *testing.T, password string) (*AuthService, *stubAccountRepo, *memRedis, uuid.UUID) {
	t.Helper()

	hash, err := auth.Hash(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	id := uuid.New()
	companyID := uuid.New()
	repo := &stubAccountRepo{
		accounts: map[string]*profile.Account{
			"ana@example.com": {ID: id, Email: "ana@example.com", SenhaHash: hash, Ativo: true},
		},
		profiles: map[uuid.UUID]*profile.Profile{
			id: {ID: id, Email: "ana@example.com", Nome: "Ana", Role: profile.RoleAdmin, CompanyID: &companyID},
		},
	}
	rds := newMemRedis()

	svc := &AuthService{
		repo:       repo,
		redis:      rds,
		jwt:        auth.NewJWTManager("segredo-de-teste-com-32-caracteres!", 15*time.Minute),
		refreshTTL: time.Hour,
	}
	return svc, repo, rds, id
}

func TestLoginIssuesAccessAndRefreshTokens(t *testing.T) {
	svc, _, rds, id := newTestService(t, "senha-forte")

	result, err := svc.Login(context.Background(), "ana@example.com", "senha-forte")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatal("tokens não emitidos")
	}
	if result.Profile == nil || result.Profile.ID != id {
		t.Fatalf("perfil inesperado: %+v", result.Profile)
	}

	key := auth.RefreshRedisKey(auth.HashRefreshToken(result.RefreshToken))
	if got := rds.values[key]; got != id.String() {
		t.Errorf("refresh não persistido: %q", got)
	}

	claims, err := svc.jwt.ParseAndValidate(result.AccessToken)
	if err != nil {
		t.Fatalf("token inválido: %v", err)
	}
	if claims.Role != profile.RoleAdmin {
		t.Errorf("role nas claims: %q", claims.Role)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _, rds, _ := newTestService(t, "senha-forte")

	_, err := svc.Login(context.Background(), "ana@example.com", "senha-errada")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("esperava ErrInvalidCredentials, veio %v", err)
	}
	if rds.sets != 0 {
		t.Error("refresh não deveria ser persistido em falha")
	}
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	svc, _, _, _ := newTestService(t, "senha-forte")

	_, err := svc.Login(context.Background(), "ninguem@example.com", "senha-forte")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("esperava ErrInvalidCredentials, veio %v", err)
	}
}

func TestLoginRejectsDisabledAccount(t *testing.T) {
	svc, repo, _, _ := newTestService(t, "senha-forte")
	repo.accounts["ana@example.com"].Ativo = false

	_, err := svc.Login(context.Background(), "ana@example.com", "senha-forte")
	if !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("esperava ErrAccountDisabled, veio %v", err)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, _, rds, _ := newTestService(t, "senha-forte")

	first, err := svc.Login(context.Background(), "ana@example.com", "senha-forte")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	second, err := svc.Refresh(context.Background(), first.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Error("refresh deveria gerar token novo")
	}

	oldKey := auth.RefreshRedisKey(auth.HashRefreshToken(first.RefreshToken))
	if _, ok := rds.values[oldKey]; ok {
		t.Error("token antigo deveria ter sido consumido")
	}

	// token antigo não serve mais
	if _, err := svc.Refresh(context.Background(), first.RefreshToken); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("esperava ErrRefreshInvalid, veio %v", err)
	}
}

func TestRefreshRejectsUnknownToken(t *testing.T) {
	svc, _, _, _ := newTestService(t, "senha-forte")

	_, err := svc.Refresh(context.Background(), "token-que-nao-existe")
	if !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("esperava ErrRefreshInvalid, veio %v", err)
	}
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	svc, _, rds, _ := newTestService(t, "senha-forte")

	result, err := svc.Login(context.Background(), "ana@example.com", "senha-forte")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(context.Background(), result.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}

	key := auth.RefreshRedisKey(auth.HashRefreshToken(result.RefreshToken))
	if _, ok := rds.values[key]; ok {
		t.Error("refresh deveria ter sido revogado")
	}
}

func TestChangePasswordRequiresCurrent(t *testing.T) {
	svc, repo, _, id := newTestService(t, "senha-forte")

	if err := svc.ChangePassword(context.Background(), id, "senha-errada", "senha-nova-123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("esperava ErrInvalidCredentials, veio %v", err)
	}

	if err := svc.ChangePassword(context.Background(), id, "senha-forte", "senha-nova-123"); err != nil {
		t.Fatalf("troca de senha: %v", err)
	}

	ok, err := auth.Verify("senha-nova-123", repo.accounts["ana@example.com"].SenhaHash)
	if err != nil || !ok {
		t.Error("hash da senha nova não confere")
	}
}

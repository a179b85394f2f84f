package provision

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/smartplanhq/api/internal/profile"
)

type stubStore struct {
	accounts map[uuid.UUID]*profile.Account
	profiles map[uuid.UUID]*profile.Profile

	profileAfterPolls int
	polls             int
	provisionErr      error
	deleted           []uuid.UUID
}

func newStubStore() *stubStore {
	return &stubStore{
		accounts: make(map[uuid.UUID]*profile.Account),
		profiles: make(map[uuid.UUID]*profile.Profile),
	}
}

func (s *stubStore) CreateAccount(_ context.Context, email, nome, senhaHash string) (*profile.Account, error) {
	a := &profile.Account{ID: uuid.New(), Email: email, SenhaHash: senhaHash, Ativo: true}
	s.accounts[a.ID] = a
	if s.profileAfterPolls == 0 {
		s.profiles[a.ID] = &profile.Profile{ID: a.ID, Email: email, Nome: nome, Role: profile.RoleUsuario}
	}
	return a, nil
}

func (s *stubStore) DeleteAccount(_ context.Context, id uuid.UUID) error {
	if _, ok := s.accounts[id]; !ok {
		return profile.ErrAccountNotFound
	}
	delete(s.accounts, id)
	delete(s.profiles, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubStore) GetAccountByEmail(_ context.Context, email string) (*profile.Account, error) {
	for _, a := range s.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, profile.ErrAccountNotFound
}

func (s *stubStore) GetByID(_ context.Context, id uuid.UUID) (*profile.Profile, error) {
	s.polls++
	if s.profileAfterPolls > 0 && s.polls >= s.profileAfterPolls {
		if a, ok := s.accounts[id]; ok {
			s.profiles[id] = &profile.Profile{ID: id, Email: a.Email, Role: profile.RoleUsuario}
		}
	}
	if p, ok := s.profiles[id]; ok {
		return p, nil
	}
	return nil, profile.ErrNotFound
}

func (s *stubStore) Provision(_ context.Context, id uuid.UUID, companyID uuid.UUID, departmentID *uuid.UUID, role string) error {
	if s.provisionErr != nil {
		return s.provisionErr
	}
	p, ok := s.profiles[id]
	if !ok {
		return profile.ErrNotFound
	}
	p.CompanyID = &companyID
	p.DepartmentID = departmentID
	p.Role = role
	return nil
}

func newTestProvision(store *stubStore) *Service {
	return &Service{repo: store, logger: zerolog.Nop()}
}

func TestCreateUserProvisionsProfile(t *testing.T) {
	store := newStubStore()
	svc := newTestProvision(store)
	companyID := uuid.New()

	p, err := svc.CreateUser(context.Background(), Input{
		Email:     "Novo@Example.com",
		Nome:      "Novo Usuário",
		Senha:     "senha-forte",
		Role:      profile.RoleGestor,
		CompanyID: companyID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if p.Role != profile.RoleGestor {
		t.Errorf("role: %q", p.Role)
	}
	if p.CompanyID == nil || *p.CompanyID != companyID {
		t.Errorf("empresa não vinculada: %+v", p.CompanyID)
	}
	if p.Email != "novo@example.com" {
		t.Errorf("e-mail não normalizado: %q", p.Email)
	}
}

func TestCreateUserWaitsForTrigger(t *testing.T) {
	store := newStubStore()
	store.profileAfterPolls = 3
	svc := newTestProvision(store)

	_, err := svc.CreateUser(context.Background(), Input{
		Email:     "demora@example.com",
		Nome:      "Demorado",
		Senha:     "senha-forte",
		CompanyID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if store.polls < 3 {
		t.Errorf("esperava pelo menos 3 tentativas, veio %d", store.polls)
	}
}

func TestCreateUserRollsBackOnProvisionFailure(t *testing.T) {
	store := newStubStore()
	store.provisionErr = errors.New("falha de banco")
	svc := newTestProvision(store)

	_, err := svc.CreateUser(context.Background(), Input{
		Email:     "falha@example.com",
		Nome:      "Falha",
		Senha:     "senha-forte",
		CompanyID: uuid.New(),
	})
	if err == nil {
		t.Fatal("esperava erro")
	}
	if len(store.deleted) != 1 {
		t.Fatalf("conta deveria ter sido removida no rollback, deleted=%d", len(store.deleted))
	}
	if len(store.accounts) != 0 {
		t.Error("conta órfã permaneceu")
	}
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	store := newStubStore()
	svc := newTestProvision(store)
	companyID := uuid.New()

	input := Input{Email: "dupe@example.com", Nome: "Um", Senha: "senha-forte", CompanyID: companyID}
	if _, err := svc.CreateUser(context.Background(), input); err != nil {
		t.Fatalf("primeiro cadastro: %v", err)
	}
	if _, err := svc.CreateUser(context.Background(), input); !errors.Is(err, ErrEmailInUse) {
		t.Fatalf("esperava ErrEmailInUse, veio %v", err)
	}
}

func TestCreateUserValidatesInput(t *testing.T) {
	svc := newTestProvision(newStubStore())

	cases := []Input{
		{Email: "", Nome: "A", Senha: "senha-forte", CompanyID: uuid.New()},
		{Email: "sem-arroba", Nome: "A", Senha: "senha-forte", CompanyID: uuid.New()},
		{Email: "a@b.com", Nome: "", Senha: "senha-forte", CompanyID: uuid.New()},
		{Email: "a@b.com", Nome: "A", Senha: "curta", CompanyID: uuid.New()},
		{Email: "a@b.com", Nome: "A", Senha: "senha-forte"},
		{Email: "a@b.com", Nome: "A", Senha: "senha-forte", CompanyID: uuid.New(), Role: "diretor"},
	}

	for i, input := range cases {
		if _, err := svc.CreateUser(context.Background(), input); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("caso %d: esperava ErrInvalidInput, veio %v", i, err)
		}
	}
}

package company

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/smartplanhq/api/internal/profile"
)

type stubLister struct {
	companies []Company
	err       error
}

func (s *stubLister) List(ctx context.Context) ([]Company, error) {
	return s.companies, s.err
}

type memSelectionStore struct {
	values map[uuid.UUID]string
	sets   int
}

func newMemSelectionStore() *memSelectionStore {
	return &memSelectionStore{values: make(map[uuid.UUID]string)}
}

func (s *memSelectionStore) Get(ctx context.Context, profileID uuid.UUID) (string, error) {
	return s.values[profileID], nil
}

func (s *memSelectionStore) Set(ctx context.Context, profileID uuid.UUID, companyID string) error {
	s.values[profileID] = companyID
	s.sets++
	return nil
}

func makeCompany(name string) Company {
	return Company{ID: uuid.New(), Name: name, CreatedAt: time.Now()}
}

func TestActiveCompanyFixedRegime(t *testing.T) {
	companyID := uuid.New()
	p := &profile.Profile{ID: uuid.New(), Role: profile.RoleAdmin, CompanyID: &companyID}

	store := newMemSelectionStore()
	r := NewContextResolver(&stubLister{companies: []Company{makeCompany("Alfa")}}, store)

	got, err := r.ActiveCompanyID(context.Background(), p)
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if got == nil || *got != companyID {
		t.Fatalf("esperava empresa do perfil %s, obteve %v", companyID, got)
	}
	if store.sets != 0 {
		t.Fatal("regime fixo não deve persistir seleção")
	}
}

func TestActiveCompanyFixedRegimeWithoutCompany(t *testing.T) {
	p := &profile.Profile{ID: uuid.New(), Role: profile.RoleUsuario}
	r := NewContextResolver(&stubLister{}, newMemSelectionStore())

	got, err := r.ActiveCompanyID(context.Background(), p)
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if got != nil {
		t.Fatalf("perfil sem empresa deve resolver nil, obteve %v", got)
	}
}

func TestActiveCompanySuperadminRestoresSelection(t *testing.T) {
	a, b := makeCompany("Alfa"), makeCompany("Beta")
	p := &profile.Profile{ID: uuid.New(), Role: profile.RoleSuperAdmin}

	store := newMemSelectionStore()
	store.values[p.ID] = b.ID.String()

	r := NewContextResolver(&stubLister{companies: []Company{a, b}}, store)
	got, err := r.ActiveCompanyID(context.Background(), p)
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if got == nil || *got != b.ID {
		t.Fatalf("esperava seleção restaurada %s, obteve %v", b.ID, got)
	}
	if store.sets != 0 {
		t.Fatal("seleção válida não deve ser regravada")
	}
}

func TestActiveCompanySuperadminStaleSelectionFallsBackToFirst(t *testing.T) {
	a, b := makeCompany("Alfa"), makeCompany("Beta")
	p := &profile.Profile{ID: uuid.New(), Role: profile.RoleSuperAdmin}

	store := newMemSelectionStore()
	store.values[p.ID] = uuid.New().String() // empresa removida

	r := NewContextResolver(&stubLister{companies: []Company{a, b}}, store)
	got, err := r.ActiveCompanyID(context.Background(), p)
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if got == nil || *got != a.ID {
		t.Fatalf("esperava fallback para a primeira (%s), obteve %v", a.ID, got)
	}
	if store.values[p.ID] != a.ID.String() {
		t.Fatal("fallback deve persistir o novo default")
	}
}

func TestActiveCompanySuperadminWithoutSelectionPersistsDefault(t *testing.T) {
	a := makeCompany("Alfa")
	p := &profile.Profile{ID: uuid.New(), Role: profile.RoleSuperAdmin}

	store := newMemSelectionStore()
	r := NewContextResolver(&stubLister{companies: []Company{a, makeCompany("Beta")}}, store)

	got, err := r.ActiveCompanyID(context.Background(), p)
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if got == nil || *got != a.ID {
		t.Fatalf("esperava primeira empresa %s, obteve %v", a.ID, got)
	}
	if store.values[p.ID] != a.ID.String() {
		t.Fatal("default deve ser persistido para sessões futuras")
	}
}

func TestActiveCompanySuperadminEmptyList(t *testing.T) {
	p := &profile.Profile{ID: uuid.New(), Role: profile.RoleSuperAdmin}
	r := NewContextResolver(&stubLister{}, newMemSelectionStore())

	got, err := r.ActiveCompanyID(context.Background(), p)
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if got != nil {
		t.Fatalf("lista vazia deve resolver nil, obteve %v", got)
	}
}

func TestSetActiveDeniedForFixedRegime(t *testing.T) {
	companyID := uuid.New()
	p := &profile.Profile{ID: uuid.New(), Role: profile.RoleGestor, CompanyID: &companyID}
	r := NewContextResolver(&stubLister{companies: []Company{makeCompany("Alfa")}}, newMemSelectionStore())

	if err := r.SetActive(context.Background(), p, uuid.New()); err != ErrSelectionNotAllowed {
		t.Fatalf("esperava ErrSelectionNotAllowed, obteve %v", err)
	}
}

func TestSetActiveValidatesCompany(t *testing.T) {
	a := makeCompany("Alfa")
	p := &profile.Profile{ID: uuid.New(), Role: profile.RoleSuperAdmin}
	store := newMemSelectionStore()
	r := NewContextResolver(&stubLister{companies: []Company{a}}, store)

	if err := r.SetActive(context.Background(), p, uuid.New()); err != ErrNotFound {
		t.Fatalf("esperava ErrNotFound para empresa desconhecida, obteve %v", err)
	}

	if err := r.SetActive(context.Background(), p, a.ID); err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if store.values[p.ID] != a.ID.String() {
		t.Fatal("seleção válida deve ser persistida")
	}
}

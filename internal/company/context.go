package company

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/smartplanhq/api/internal/profile"
)

var (
	// ErrSelectionNotAllowed indica tentativa de troca de empresa por papel fixo.
	ErrSelectionNotAllowed = errors.New("somente superadmin pode trocar de empresa")
	// ErrNoCompanies indica ausência de empresas cadastradas (regime degradado).
	ErrNoCompanies = errors.New("nenhuma empresa cadastrada")
)

// Lister lista empresas disponíveis (ordenadas por nome).
type Lister interface {
	List(ctx context.Context) ([]Company, error)
}

// SelectionStore persiste a última empresa escolhida pelo superadmin.
type SelectionStore interface {
	Get(ctx context.Context, profileID uuid.UUID) (string, error)
	Set(ctx context.Context, profileID uuid.UUID, companyID string) error
}

// ContextResolver determina qual empresa a sessão atual deve operar.
//
// Dois regimes, escolhidos pelo papel do perfil:
//   - fixo: a empresa é sempre a do próprio perfil;
//   - selecionável (superadmin): a escolha anterior é restaurada da persistência
//     e, se ausente ou inválida, cai na primeira empresa por nome.
type ContextResolver struct {
	companies Lister
	selection SelectionStore
}

// NewContextResolver cria o resolvedor de contexto de empresa.
func NewContextResolver(companies Lister, selection SelectionStore) *ContextResolver {
	return &ContextResolver{companies: companies, selection: selection}
}

// ActiveCompanyID resolve a empresa ativa para o perfil informado.
// Retorna nil apenas no regime degradado (superadmin sem empresas).
func (r *ContextResolver) ActiveCompanyID(ctx context.Context, p *profile.Profile) (*uuid.UUID, error) {
	if !p.IsSuperAdmin() {
		return p.CompanyID, nil
	}

	companies, err := r.companies.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(companies) == 0 {
		return nil, nil
	}

	if stored, err := r.selection.Get(ctx, p.ID); err == nil && stored != "" {
		if id, err := uuid.Parse(stored); err == nil {
			for _, c := range companies {
				if c.ID == id {
					return &id, nil
				}
			}
		}
	}

	// Escolha ausente ou obsoleta: usa a primeira da lista e persiste o default.
	first := companies[0].ID
	if err := r.selection.Set(ctx, p.ID, first.String()); err != nil {
		return nil, err
	}
	return &first, nil
}

// SetActive troca a empresa ativa; só tem efeito no regime selecionável.
func (r *ContextResolver) SetActive(ctx context.Context, p *profile.Profile, companyID uuid.UUID) error {
	if !p.IsSuperAdmin() {
		return ErrSelectionNotAllowed
	}

	companies, err := r.companies.List(ctx)
	if err != nil {
		return err
	}
	if len(companies) == 0 {
		return ErrNoCompanies
	}

	for _, c := range companies {
		if c.ID == companyID {
			return r.selection.Set(ctx, p.ID, companyID.String())
		}
	}
	return ErrNotFound
}

// RedisSelectionStore guarda a escolha do superadmin no Redis, sem expiração.
type RedisSelectionStore struct {
	client *redis.Client
}

// NewRedisSelectionStore cria o armazenamento de seleção sobre Redis.
func NewRedisSelectionStore(client *redis.Client) *RedisSelectionStore {
	return &RedisSelectionStore{client: client}
}

func selectionKey(profileID uuid.UUID) string {
	return fmt.Sprintf("empresa:ativa:%s", profileID)
}

// Get devolve a última empresa escolhida, ou vazio se não houver.
func (s *RedisSelectionStore) Get(ctx context.Context, profileID uuid.UUID) (string, error) {
	val, err := s.client.Get(ctx, selectionKey(profileID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return val, nil
}

// Set persiste a escolha para sessões futuras.
func (s *RedisSelectionStore) Set(ctx context.Context, profileID uuid.UUID, companyID string) error {
	return s.client.Set(ctx, selectionKey(profileID), companyID, 0).Err()
}

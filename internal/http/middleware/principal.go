package middleware

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/smartplanhq/api/internal/profile"
)

// ErrNoPrincipal indica contexto sem sessão autenticada válida.
var ErrNoPrincipal = errors.New("sessão inválida")

// Principal devolve o perfil da sessão. Rotas sob CompanyScope recebem o
// perfil completo carregado pelo middleware; fora dele, monta o mínimo a
// partir das claims do token (sem departamento).
func Principal(ctx context.Context) (*profile.Profile, error) {
	if p, ok := ctx.Value(ContextKeyProfile).(*profile.Profile); ok && p != nil {
		return p, nil
	}

	subject, err := uuid.Parse(GetSubject(ctx))
	if err != nil {
		return nil, ErrNoPrincipal
	}

	p := &profile.Profile{ID: subject, Role: profile.NormalizeRole(GetRole(ctx))}
	if raw := GetCompany(ctx); raw != "" {
		if companyID, err := uuid.Parse(raw); err == nil {
			p.CompanyID = &companyID
		}
	}
	return p, nil
}

// CompanyID devolve a empresa ativa do contexto como UUID.
func CompanyID(ctx context.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(GetCompany(ctx))
	if err != nil {
		return uuid.Nil, ErrNoPrincipal
	}
	return id, nil
}

package scope

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/smartplanhq/api/internal/company"
	"github.com/smartplanhq/api/internal/http/middleware"
	"github.com/smartplanhq/api/internal/profile"
)

// ProfileLoader carrega o perfil do subject autenticado.
type ProfileLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*profile.Profile, error)
}

// CompanyScope resolve a empresa ativa da sessão e a injeta no contexto.
// Perfis comuns operam sempre na empresa do próprio perfil; superadmin usa a
// seleção persistida. Rotas multiempresa ficam fora deste middleware.
func CompanyScope(profiles ProfileLoader, resolver *company.ContextResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, err := uuid.Parse(GetSubject(r.Context()))
			if err != nil {
				writeScopeError(w, http.StatusUnauthorized, "AUTH", "subject inválido")
				return
			}

			p, err := profiles.GetByID(r.Context(), subject)
			if err != nil {
				if errors.Is(err, profile.ErrNotFound) {
					writeScopeError(w, http.StatusUnauthorized, "AUTH", "perfil não encontrado")
					return
				}
				writeScopeError(w, http.StatusInternalServerError, "INTERNAL", "erro interno")
				return
			}

			companyID, err := resolver.ActiveCompanyID(r.Context(), p)
			if err != nil {
				writeScopeError(w, http.StatusInternalServerError, "INTERNAL", "erro interno")
				return
			}
			if companyID == nil {
				writeScopeError(w, http.StatusForbidden, "FORBIDDEN", "nenhuma empresa ativa")
				return
			}

			ctx := SetCompany(r.Context(), companyID.String())
			ctx = context.WithValue(ctx, ContextKeyProfile, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeScopeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": nil,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}

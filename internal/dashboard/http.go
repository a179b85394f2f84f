package dashboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	apihttp "github.com/smartplanhq/api/internal/http"
	"github.com/smartplanhq/api/internal/http/middleware"
	"github.com/smartplanhq/api/internal/perm"
)

// Handler expõe os painéis individuais e gerenciais.
type Handler struct {
	service   *Service
	evaluator *perm.Evaluator
}

// NewHandler cria o handler do painel.
func NewHandler(service *Service, evaluator *perm.Evaluator) *Handler {
	return &Handler{service: service, evaluator: evaluator}
}

// RegisterRoutes registra as rotas sob o escopo autenticado da empresa.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard/individual", h.handleIndividual)
	r.Get("/dashboard/gerencial", h.handleManager)
	r.Get("/planos/{id}/overview", h.handleOverview)
}

func (h *Handler) handleIndividual(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.Principal(r.Context())
	if err != nil {
		apihttp.WriteError(w, http.StatusUnauthorized, "AUTH", "sessão inválida", nil)
		return
	}
	companyID, err := middleware.CompanyID(r.Context())
	if err != nil {
		apihttp.WriteError(w, http.StatusUnauthorized, "AUTH", "sessão inválida", nil)
		return
	}

	view, err := h.service.Individual(r.Context(), companyID, principal.ID)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("erro ao montar painel individual")
		apihttp.WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
		return
	}
	apihttp.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) handleManager(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.Principal(r.Context())
	if err != nil {
		apihttp.WriteError(w, http.StatusUnauthorized, "AUTH", "sessão inválida", nil)
		return
	}
	companyID, err := middleware.CompanyID(r.Context())
	if err != nil {
		apihttp.WriteError(w, http.StatusUnauthorized, "AUTH", "sessão inválida", nil)
		return
	}

	if !h.evaluator.CanViewManagerDashboard(principal) {
		apihttp.WriteError(w, http.StatusForbidden, "FORBIDDEN", "acesso negado", nil)
		return
	}

	view, err := h.service.Manager(r.Context(), companyID)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("erro ao montar painel gerencial")
		apihttp.WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
		return
	}
	apihttp.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.CompanyID(r.Context())
	if err != nil {
		apihttp.WriteError(w, http.StatusUnauthorized, "AUTH", "sessão inválida", nil)
		return
	}

	planID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	overview, err := h.service.Overview(r.Context(), companyID, planID)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("erro ao montar overview do plano")
		apihttp.WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
		return
	}
	apihttp.WriteJSON(w, http.StatusOK, overview)
}

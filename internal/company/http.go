package company

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	apihttp "github.com/smartplanhq/api/internal/http"
	"github.com/smartplanhq/api/internal/http/middleware"
	"github.com/smartplanhq/api/internal/profile"
)

// Handler expõe administração de empresas e o contexto ativo da sessão.
type Handler struct {
	service  *Service
	resolver *ContextResolver
}

// NewHandler cria o handler de empresas.
func NewHandler(service *Service, resolver *ContextResolver) *Handler {
	return &Handler{service: service, resolver: resolver}
}

// RegisterRoutes registra as rotas sob o escopo autenticado da empresa.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/empresas", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{id}/stats", h.handleStats)
	})

	r.Get("/empresa", h.handleCurrent)
	r.Put("/empresa", h.handleUpdateCurrent)

	r.Get("/context/empresa", h.handleGetContext)
	r.Put("/context/empresa", h.handleSetContext)
}

// Mount adiciona as rotas de empresas no router.
func Mount(r chi.Router, handler *Handler) {
	handler.RegisterRoutes(r)
}

func (h *Handler) requireSuperAdmin(w http.ResponseWriter, r *http.Request) (*profile.Profile, bool) {
	principal, err := middleware.Principal(r.Context())
	if err != nil {
		apihttp.WriteError(w, http.StatusUnauthorized, "AUTH", "sessão inválida", nil)
		return nil, false
	}
	if !principal.IsSuperAdmin() {
		apihttp.WriteError(w, http.StatusForbidden, "FORBIDDEN", "acesso negado", nil)
		return nil, false
	}
	return principal, true
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireSuperAdmin(w, r); !ok {
		return
	}

	companies, err := h.service.List(r.Context())
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("erro ao listar empresas")
		apihttp.WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
		return
	}
	apihttp.WriteJSON(w, http.StatusOK, map[string]any{"empresas": companies})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireSuperAdmin(w, r); !ok {
		return
	}

	var payload struct {
		Name     string  `json:"name"`
		Document *string `json:"document"`
		LogoURL  *string `json:"logo_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	c, err := h.service.Create(r.Context(), CreateCompanyInput{
		Name:     payload.Name,
		Document: payload.Document,
		LogoURL:  payload.LogoURL,
	})
	if err != nil {
		writeCompanyError(w, r, err)
		return
	}
	apihttp.WriteJSON(w, http.StatusCreated, map[string]any{"empresa": c})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireSuperAdmin(w, r); !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	stats, err := h.service.Stats(r.Context(), id)
	if err != nil {
		writeCompanyError(w, r, err)
		return
	}
	apihttp.WriteJSON(w, http.StatusOK, map[string]any{"stats": stats})
}

func (h *Handler) handleCurrent(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.CompanyID(r.Context())
	if err != nil {
		apihttp.WriteError(w, http.StatusUnauthorized, "AUTH", "sessão inválida", nil)
		return
	}

	c, err := h.service.Get(r.Context(), companyID)
	if err != nil {
		writeCompanyError(w, r, err)
		return
	}
	apihttp.WriteJSON(w, http.StatusOK, map[string]any{"empresa": c})
}

func (h *Handler) handleUpdateCurrent(w http.ResponseWriter, r *http.Request) {
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

	if principal.Role != profile.RoleAdmin && !principal.IsSuperAdmin() {
		apihttp.WriteError(w, http.StatusForbidden, "FORBIDDEN", "acesso negado", nil)
		return
	}

	var payload struct {
		Name     *string `json:"name"`
		Document *string `json:"document"`
		LogoURL  *string `json:"logo_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	c, err := h.service.Update(r.Context(), companyID, UpdateCompanyInput{
		Name:     payload.Name,
		Document: payload.Document,
		LogoURL:  payload.LogoURL,
	})
	if err != nil {
		writeCompanyError(w, r, err)
		return
	}
	apihttp.WriteJSON(w, http.StatusOK, map[string]any{"empresa": c})
}

func (h *Handler) handleGetContext(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.CompanyID(r.Context())
	if err != nil {
		apihttp.WriteError(w, http.StatusUnauthorized, "AUTH", "sessão inválida", nil)
		return
	}

	c, err := h.service.Get(r.Context(), companyID)
	if err != nil {
		writeCompanyError(w, r, err)
		return
	}
	apihttp.WriteJSON(w, http.StatusOK, map[string]any{"empresa": c})
}

func (h *Handler) handleSetContext(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.Principal(r.Context())
	if err != nil {
		apihttp.WriteError(w, http.StatusUnauthorized, "AUTH", "sessão inválida", nil)
		return
	}

	var payload struct {
		EmpresaID uuid.UUID `json:"empresa_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	if err := h.resolver.SetActive(r.Context(), principal, payload.EmpresaID); err != nil {
		switch {
		case errors.Is(err, ErrSelectionNotAllowed):
			apihttp.WriteError(w, http.StatusForbidden, "FORBIDDEN", "somente superadmin pode trocar de empresa", nil)
		case errors.Is(err, ErrNoCompanies), errors.Is(err, ErrNotFound):
			apihttp.WriteError(w, http.StatusNotFound, "NOT_FOUND", "empresa não encontrada", nil)
		default:
			log.Ctx(r.Context()).Error().Err(err).Msg("erro ao trocar empresa ativa")
			apihttp.WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
		}
		return
	}

	c, err := h.service.Get(r.Context(), payload.EmpresaID)
	if err != nil {
		writeCompanyError(w, r, err)
		return
	}
	apihttp.WriteJSON(w, http.StatusOK, map[string]any{"empresa": c})
}

func writeCompanyError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "dados inválidos", nil)
	case errors.Is(err, ErrNotFound):
		apihttp.WriteError(w, http.StatusNotFound, "NOT_FOUND", "empresa não encontrada", nil)
	default:
		log.Ctx(r.Context()).Error().Err(err).Msg("erro ao processar empresa")
		apihttp.WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
	}
}

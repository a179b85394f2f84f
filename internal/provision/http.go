package provision

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	apihttp "github.com/smartplanhq/api/internal/http"
	"github.com/smartplanhq/api/internal/http/middleware"
	"github.com/smartplanhq/api/internal/perm"
	"github.com/smartplanhq/api/internal/profile"
)

// Handler expõe a gestão de usuários da empresa ativa.
type Handler struct {
	service   *Service
	profiles  *profile.Repository
	evaluator *perm.Evaluator
}

// NewHandler cria o handler de usuários.
func NewHandler(service *Service, profiles *profile.Repository, evaluator *perm.Evaluator) *Handler {
	return &Handler{service: service, profiles: profiles, evaluator: evaluator}
}

// RegisterRoutes registra as rotas sob o escopo autenticado da empresa.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/usuarios", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
	})
}

// Mount adiciona as rotas de usuários no router.
func Mount(r chi.Router, handler *Handler) {
	handler.RegisterRoutes(r)
}

func (h *Handler) requireManager(w http.ResponseWriter, r *http.Request) (*profile.Profile, uuid.UUID, bool) {
	principal, err := middleware.Principal(r.Context())
	if err != nil {
		apihttp.WriteError(w, http.StatusUnauthorized, "AUTH", "sessão inválida", nil)
		return nil, uuid.Nil, false
	}
	companyID, err := middleware.CompanyID(r.Context())
	if err != nil {
		apihttp.WriteError(w, http.StatusUnauthorized, "AUTH", "sessão inválida", nil)
		return nil, uuid.Nil, false
	}
	if !h.evaluator.CanManageUsers(principal) {
		apihttp.WriteError(w, http.StatusForbidden, "FORBIDDEN", "acesso negado", nil)
		return nil, uuid.Nil, false
	}
	return principal, companyID, true
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	_, companyID, ok := h.requireManager(w, r)
	if !ok {
		return
	}

	users, err := h.profiles.ListByCompany(r.Context(), companyID)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("erro ao listar usuários")
		apihttp.WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
		return
	}
	apihttp.WriteJSON(w, http.StatusOK, map[string]any{"usuarios": users})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	_, companyID, ok := h.requireManager(w, r)
	if !ok {
		return
	}

	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}
	// o vínculo é sempre com a empresa ativa de quem cadastra
	input.CompanyID = companyID

	p, err := h.service.CreateUser(r.Context(), input)
	if err != nil {
		writeProvisionError(w, r, err)
		return
	}
	apihttp.WriteJSON(w, http.StatusCreated, map[string]any{"usuario": p})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	_, companyID, ok := h.requireManager(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	target, err := h.profiles.GetByID(r.Context(), id)
	if err != nil {
		writeProvisionError(w, r, err)
		return
	}
	if target.CompanyID == nil || *target.CompanyID != companyID {
		apihttp.WriteError(w, http.StatusNotFound, "NOT_FOUND", "usuário não encontrado", nil)
		return
	}

	var payload struct {
		Nome         string     `json:"nome"`
		Role         string     `json:"role"`
		DepartmentID *uuid.UUID `json:"department_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}
	if payload.Nome == "" {
		payload.Nome = target.Nome
	}
	role := profile.NormalizeRole(payload.Role)
	if !profile.IsValidRole(role) {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "papel inválido", nil)
		return
	}

	updated, err := h.profiles.Update(r.Context(), profile.UpdateProfileInput{
		ID:           id,
		Nome:         payload.Nome,
		Role:         role,
		DepartmentID: payload.DepartmentID,
	})
	if err != nil {
		writeProvisionError(w, r, err)
		return
	}
	apihttp.WriteJSON(w, http.StatusOK, map[string]any{"usuario": updated})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	principal, companyID, ok := h.requireManager(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}
	if id == principal.ID {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "não é possível remover a si mesmo", nil)
		return
	}

	target, err := h.profiles.GetByID(r.Context(), id)
	if err != nil {
		writeProvisionError(w, r, err)
		return
	}
	if target.CompanyID == nil || *target.CompanyID != companyID {
		apihttp.WriteError(w, http.StatusNotFound, "NOT_FOUND", "usuário não encontrado", nil)
		return
	}

	if err := h.profiles.Delete(r.Context(), id); err != nil {
		writeProvisionError(w, r, err)
		return
	}
	apihttp.WriteNoContent(w)
}

func writeProvisionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "dados inválidos", nil)
	case errors.Is(err, ErrEmailInUse):
		apihttp.WriteError(w, http.StatusConflict, "VALIDATION", "e-mail já cadastrado", nil)
	case errors.Is(err, profile.ErrNotFound):
		apihttp.WriteError(w, http.StatusNotFound, "NOT_FOUND", "usuário não encontrado", nil)
	default:
		log.Ctx(r.Context()).Error().Err(err).Msg("erro na gestão de usuários")
		apihttp.WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
	}
}

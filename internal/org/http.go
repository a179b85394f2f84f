package org

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

// Handler orquestra as rotas de departamentos e clientes.
type Handler struct {
	service   *Service
	evaluator *perm.Evaluator
}

// NewHandler cria o handler organizacional.
func NewHandler(service *Service, evaluator *perm.Evaluator) *Handler {
	return &Handler{service: service, evaluator: evaluator}
}

// RegisterRoutes registra as rotas sob o escopo autenticado da empresa.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/departamentos", func(r chi.Router) {
		r.Get("/", h.handleListDepartments)
		r.Post("/", h.handleCreateDepartment)
		r.Get("/{id}", h.handleGetDepartment)
		r.Put("/{id}", h.handleUpdateDepartment)
		r.Delete("/{id}", h.handleDeleteDepartment)
	})

	r.Route("/clientes", func(r chi.Router) {
		r.Get("/", h.handleListClients)
		r.Post("/", h.handleCreateClient)
		r.Get("/{id}", h.handleGetClient)
		r.Put("/{id}", h.handleUpdateClient)
		r.Delete("/{id}", h.handleDeleteClient)
	})
}

func (h *Handler) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.CompanyID(r.Context())
	if err != nil {
		apihttp.WriteError(w, http.StatusUnauthorized, "AUTH", "sessão inválida", nil)
		return
	}

	departments, err := h.service.ListDepartments(r.Context(), companyID)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	apihttp.WriteJSON(w, http.StatusOK, map[string]any{"departamentos": departments})
}

func (h *Handler) handleGetDepartment(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.CompanyID(r.Context())
	if err != nil {
		apihttp.WriteError(w, http.StatusUnauthorized, "AUTH", "sessão inválida", nil)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	d, err := h.service.GetDepartment(r.Context(), id, companyID)
	if err != nil {
		writeOrgError(w, err)
		return
	}
	apihttp.WriteJSON(w, http.StatusOK, map[string]any{"departamento": d})
}

func (h *Handler) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	p, companyID, ok := h.requireManager(w, r, h.evaluator.CanManageDepartments)
	if !ok {
		return
	}

	var input DepartmentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	d, err := h.service.CreateDepartment(r.Context(), companyID, input)
	if err != nil {
		writeOrgError(w, err)
		return
	}

	log.Ctx(r.Context()).Info().Str("user_id", p.ID.String()).Str("department_id", d.ID.String()).Msg("departamento criado")
	apihttp.WriteJSON(w, http.StatusCreated, map[string]any{"departamento": d})
}

func (h *Handler) handleUpdateDepartment(w http.ResponseWriter, r *http.Request) {
	_, companyID, ok := h.requireManager(w, r, h.evaluator.CanManageDepartments)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var input DepartmentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	d, err := h.service.UpdateDepartment(r.Context(), id, companyID, input)
	if err != nil {
		writeOrgError(w, err)
		return
	}
	apihttp.WriteJSON(w, http.StatusOK, map[string]any{"departamento": d})
}

func (h *Handler) handleDeleteDepartment(w http.ResponseWriter, r *http.Request) {
	_, companyID, ok := h.requireManager(w, r, h.evaluator.CanManageDepartments)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if err := h.service.DeleteDepartment(r.Context(), id, companyID); err != nil {
		writeOrgError(w, err)
		return
	}
	apihttp.WriteNoContent(w)
}

func (h *Handler) handleListClients(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.CompanyID(r.Context())
	if err != nil {
		apihttp.WriteError(w, http.StatusUnauthorized, "AUTH", "sessão inválida", nil)
		return
	}

	clients, err := h.service.ListClients(r.Context(), companyID)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	apihttp.WriteJSON(w, http.StatusOK, map[string]any{"clientes": clients})
}

func (h *Handler) handleGetClient(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.CompanyID(r.Context())
	if err != nil {
		apihttp.WriteError(w, http.StatusUnauthorized, "AUTH", "sessão inválida", nil)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	c, err := h.service.GetClient(r.Context(), id, companyID)
	if err != nil {
		writeOrgError(w, err)
		return
	}
	apihttp.WriteJSON(w, http.StatusOK, map[string]any{"cliente": c})
}

func (h *Handler) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	_, companyID, ok := h.requireManager(w, r, h.evaluator.CanManageClients)
	if !ok {
		return
	}

	var input ClientInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	c, err := h.service.CreateClient(r.Context(), companyID, input)
	if err != nil {
		writeOrgError(w, err)
		return
	}
	apihttp.WriteJSON(w, http.StatusCreated, map[string]any{"cliente": c})
}

func (h *Handler) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	_, companyID, ok := h.requireManager(w, r, h.evaluator.CanManageClients)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var input ClientInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	c, err := h.service.UpdateClient(r.Context(), id, companyID, input)
	if err != nil {
		writeOrgError(w, err)
		return
	}
	apihttp.WriteJSON(w, http.StatusOK, map[string]any{"cliente": c})
}

func (h *Handler) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	_, companyID, ok := h.requireManager(w, r, h.evaluator.CanManageClients)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if err := h.service.DeleteClient(r.Context(), id, companyID); err != nil {
		writeOrgError(w, err)
		return
	}
	apihttp.WriteNoContent(w)
}

// requireManager exige a permissão de gestão do cadastro em questão.
func (h *Handler) requireManager(w http.ResponseWriter, r *http.Request, allowed func(*profile.Profile) bool) (*profile.Profile, uuid.UUID, bool) {
	p, err := middleware.Principal(r.Context())
	if err != nil {
		apihttp.WriteError(w, http.StatusUnauthorized, "AUTH", "sessão inválida", nil)
		return nil, uuid.Nil, false
	}

	companyID, err := middleware.CompanyID(r.Context())
	if err != nil {
		apihttp.WriteError(w, http.StatusUnauthorized, "AUTH", "sessão inválida", nil)
		return nil, uuid.Nil, false
	}

	if !allowed(p) {
		apihttp.WriteError(w, http.StatusForbidden, "FORBIDDEN", "acesso negado", nil)
		return nil, uuid.Nil, false
	}
	return p, companyID, true
}

func writeOrgError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		apihttp.WriteError(w, http.StatusNotFound, "NOT_FOUND", "registro não encontrado", nil)
	case errors.Is(err, ErrInvalidInput):
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "dados inválidos", nil)
	default:
		writeInternalError(w, err)
	}
}

func writeInternalError(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("erro interno em rota organizacional")
	apihttp.WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
}

package action

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
	"github.com/smartplanhq/api/internal/plan"
	"github.com/smartplanhq/api/internal/profile"
)

// Handler orquestra as rotas de planos de ação.
type Handler struct {
	service   *Service
	evaluator *perm.Evaluator
}

// NewHandler cria o handler de planos de ação.
func NewHandler(service *Service, evaluator *perm.Evaluator) *Handler {
	return &Handler{service: service, evaluator: evaluator}
}

// RegisterRoutes registra as rotas sob o escopo autenticado da empresa.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/planos/{planID}/acoes", func(r chi.Router) {
		r.Get("/", h.handleListByPlan)
		r.Post("/", h.handleCreate)
	})

	r.Route("/acoes", func(r chi.Router) {
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
		r.Get("/{id}/participantes", h.handleListParticipants)
		r.Put("/{id}/participantes", h.handleSetParticipants)
	})
}

func (h *Handler) handleListByPlan(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.CompanyID(r.Context())
	if err != nil {
		apihttp.WriteError(w, http.StatusUnauthorized, "AUTH", "sessão inválida", nil)
		return
	}

	planID, err := uuid.Parse(chi.URLParam(r, "planID"))
	if err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	actions, err := h.service.ListByPlan(r.Context(), planID, companyID)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	apihttp.WriteJSON(w, http.StatusOK, map[string]any{"acoes": actions})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
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

	ap, err := h.service.Get(r.Context(), id, companyID)
	if err != nil {
		writeActionError(w, err)
		return
	}
	apihttp.WriteJSON(w, http.StatusOK, map[string]any{"acao": ap})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	principal, companyID, ok := requireSession(w, r)
	if !ok {
		return
	}

	planID, err := uuid.Parse(chi.URLParam(r, "planID"))
	if err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	if !h.evaluator.CanCreateActionPlan(principal, companyID, input.DepartmentID) {
		apihttp.WriteError(w, http.StatusForbidden, "FORBIDDEN", "acesso negado", nil)
		return
	}

	ap, err := h.service.Create(r.Context(), companyID, planID, input)
	if err != nil {
		writeActionError(w, err)
		return
	}
	apihttp.WriteJSON(w, http.StatusCreated, map[string]any{"acao": ap})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	principal, target, ok := h.requireAction(w, r)
	if !ok {
		return
	}

	if !h.evaluator.CanEditActionPlan(principal, actionRef(target)) {
		apihttp.WriteError(w, http.StatusForbidden, "FORBIDDEN", "acesso negado", nil)
		return
	}

	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	ap, err := h.service.Update(r.Context(), target.ID, target.CompanyID, input)
	if err != nil {
		writeActionError(w, err)
		return
	}
	apihttp.WriteJSON(w, http.StatusOK, map[string]any{"acao": ap})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	principal, target, ok := h.requireAction(w, r)
	if !ok {
		return
	}

	if !h.evaluator.CanDeleteActionPlan(principal, actionRef(target)) {
		apihttp.WriteError(w, http.StatusForbidden, "FORBIDDEN", "acesso negado", nil)
		return
	}

	if err := h.service.Delete(r.Context(), target.ID, target.CompanyID); err != nil {
		writeActionError(w, err)
		return
	}
	apihttp.WriteNoContent(w)
}

func (h *Handler) handleListParticipants(w http.ResponseWriter, r *http.Request) {
	_, target, ok := h.requireAction(w, r)
	if !ok {
		return
	}

	participants, err := h.service.ListParticipants(r.Context(), target.ID)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	apihttp.WriteJSON(w, http.StatusOK, map[string]any{"participantes": participants})
}

func (h *Handler) handleSetParticipants(w http.ResponseWriter, r *http.Request) {
	principal, target, ok := h.requireAction(w, r)
	if !ok {
		return
	}

	if !h.evaluator.CanManageParticipants(principal, actionRef(target)) {
		apihttp.WriteError(w, http.StatusForbidden, "FORBIDDEN", "acesso negado", nil)
		return
	}

	var payload struct {
		Participantes []uuid.UUID `json:"participantes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	if err := h.service.SetParticipants(r.Context(), target.ID, payload.Participantes); err != nil {
		writeInternalError(w, err)
		return
	}
	apihttp.WriteNoContent(w)
}

// requireAction valida a sessão e carrega a ação no escopo da empresa.
func (h *Handler) requireAction(w http.ResponseWriter, r *http.Request) (*profile.Profile, *ActionPlan, bool) {
	principal, companyID, ok := requireSession(w, r)
	if !ok {
		return nil, nil, false
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return nil, nil, false
	}

	ap, err := h.service.Get(r.Context(), id, companyID)
	if err != nil {
		writeActionError(w, err)
		return nil, nil, false
	}
	return principal, ap, true
}

func requireSession(w http.ResponseWriter, r *http.Request) (*profile.Profile, uuid.UUID, bool) {
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
	return principal, companyID, true
}

func actionRef(ap *ActionPlan) perm.ActionPlanRef {
	return perm.ActionPlanRef{ID: ap.ID, CompanyID: ap.CompanyID, DepartmentID: ap.DepartmentID, OwnerID: ap.OwnerID}
}

func writeActionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		apihttp.WriteError(w, http.StatusNotFound, "NOT_FOUND", "plano de ação não encontrado", nil)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, plan.ErrInvalidStatus):
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "dados inválidos", nil)
	default:
		writeInternalError(w, err)
	}
}

func writeInternalError(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("erro interno em rota de planos de ação")
	apihttp.WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
}

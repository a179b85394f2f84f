package plan

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	apihttp "github.com/smartplanhq/api/internal/http"
	"github.com/smartplanhq/api/internal/http/middleware"
	"github.com/smartplanhq/api/internal/perm"
	"github.com/smartplanhq/api/internal/profile"
)

// Handler orquestra as rotas de planos estratégicos.
type Handler struct {
	service   *Service
	evaluator *perm.Evaluator
}

// NewHandler cria o handler de planos.
func NewHandler(service *Service, evaluator *perm.Evaluator) *Handler {
	return &Handler{service: service, evaluator: evaluator}
}

// RegisterRoutes registra as rotas sob o escopo autenticado da empresa.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/planos", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)

		r.Get("/{id}/mvv", h.handleGetMVV)
		r.Put("/{id}/mvv", h.handleSaveMVV)

		r.Get("/{id}/objetivos", h.handleListObjectives)
		r.Post("/{id}/objetivos", h.handleCreateObjective)
		r.Post("/{id}/objetivos/reordenar", h.handleReorderObjectives)
		r.Put("/{id}/objetivos/{objetivoID}", h.handleUpdateObjective)
		r.Delete("/{id}/objetivos/{objetivoID}", h.handleDeleteObjective)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.CompanyID(r.Context())
	if err != nil {
		apihttp.WriteError(w, http.StatusUnauthorized, "AUTH", "sessão inválida", nil)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	page, err := h.service.List(r.Context(), companyID, limit, offset)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	apihttp.WriteJSON(w, http.StatusOK, page)
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

	p, err := h.service.Get(r.Context(), id, companyID)
	if err != nil {
		writePlanError(w, err)
		return
	}
	apihttp.WriteJSON(w, http.StatusOK, map[string]any{"plano": p})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
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

	if !h.evaluator.CanCreatePlan(principal) {
		apihttp.WriteError(w, http.StatusForbidden, "FORBIDDEN", "acesso negado", nil)
		return
	}

	var input PlanInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	p, err := h.service.Create(r.Context(), companyID, principal.ID, input)
	if err != nil {
		writePlanError(w, err)
		return
	}
	apihttp.WriteJSON(w, http.StatusCreated, map[string]any{"plano": p})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	_, planRef, ok := h.requirePlanEdit(w, r)
	if !ok {
		return
	}

	var input PlanInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	updated, err := h.service.Update(r.Context(), planRef.ID, planRef.CompanyID, input)
	if err != nil {
		writePlanError(w, err)
		return
	}
	apihttp.WriteJSON(w, http.StatusOK, map[string]any{"plano": updated})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
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

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	target, err := h.service.Get(r.Context(), id, companyID)
	if err != nil {
		writePlanError(w, err)
		return
	}

	if !h.evaluator.CanDeletePlan(principal, perm.PlanRef{ID: target.ID, CompanyID: target.CompanyID}) {
		apihttp.WriteError(w, http.StatusForbidden, "FORBIDDEN", "acesso negado", nil)
		return
	}

	if err := h.service.Delete(r.Context(), id, companyID); err != nil {
		writePlanError(w, err)
		return
	}
	apihttp.WriteNoContent(w)
}

func (h *Handler) handleGetMVV(w http.ResponseWriter, r *http.Request) {
	planRef, ok := h.requirePlanVisible(w, r)
	if !ok {
		return
	}

	m, err := h.service.GetMVV(r.Context(), planRef.ID)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	apihttp.WriteJSON(w, http.StatusOK, map[string]any{"mvv": m})
}

func (h *Handler) handleSaveMVV(w http.ResponseWriter, r *http.Request) {
	principal, planRef, ok := h.requirePlanLoaded(w, r)
	if !ok {
		return
	}

	allowed, err := h.evaluator.CanEditMVV(r.Context(), principal, planRef)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if !allowed {
		apihttp.WriteError(w, http.StatusForbidden, "FORBIDDEN", "acesso negado", nil)
		return
	}

	var input MVVInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	m, err := h.service.SaveMVV(r.Context(), planRef.ID, input)
	if err != nil {
		writePlanError(w, err)
		return
	}
	apihttp.WriteJSON(w, http.StatusOK, map[string]any{"mvv": m})
}

func (h *Handler) handleListObjectives(w http.ResponseWriter, r *http.Request) {
	planRef, ok := h.requirePlanVisible(w, r)
	if !ok {
		return
	}

	objectives, err := h.service.ListObjectives(r.Context(), planRef.ID)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	apihttp.WriteJSON(w, http.StatusOK, map[string]any{"objetivos": objectives})
}

func (h *Handler) handleCreateObjective(w http.ResponseWriter, r *http.Request) {
	_, planRef, ok := h.requireObjectiveEdit(w, r)
	if !ok {
		return
	}

	var input ObjectiveInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	o, err := h.service.CreateObjective(r.Context(), planRef.ID, input)
	if err != nil {
		writePlanError(w, err)
		return
	}
	apihttp.WriteJSON(w, http.StatusCreated, map[string]any{"objetivo": o})
}

func (h *Handler) handleUpdateObjective(w http.ResponseWriter, r *http.Request) {
	_, planRef, ok := h.requireObjectiveEdit(w, r)
	if !ok {
		return
	}

	objetivoID, err := uuid.Parse(chi.URLParam(r, "objetivoID"))
	if err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var input ObjectiveInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	o, err := h.service.UpdateObjective(r.Context(), objetivoID, planRef.ID, input)
	if err != nil {
		writePlanError(w, err)
		return
	}
	apihttp.WriteJSON(w, http.StatusOK, map[string]any{"objetivo": o})
}

func (h *Handler) handleReorderObjectives(w http.ResponseWriter, r *http.Request) {
	_, planRef, ok := h.requireObjectiveEdit(w, r)
	if !ok {
		return
	}

	var payload struct {
		Ordem []uuid.UUID `json:"ordem"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	if err := h.service.ReorderObjectives(r.Context(), planRef.ID, payload.Ordem); err != nil {
		writePlanError(w, err)
		return
	}
	apihttp.WriteNoContent(w)
}

func (h *Handler) handleDeleteObjective(w http.ResponseWriter, r *http.Request) {
	_, planRef, ok := h.requireObjectiveEdit(w, r)
	if !ok {
		return
	}

	objetivoID, err := uuid.Parse(chi.URLParam(r, "objetivoID"))
	if err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if err := h.service.DeleteObjective(r.Context(), objetivoID, planRef.ID); err != nil {
		writePlanError(w, err)
		return
	}
	apihttp.WriteNoContent(w)
}

// requirePlanVisible valida sessão e carrega o plano no escopo da empresa.
func (h *Handler) requirePlanVisible(w http.ResponseWriter, r *http.Request) (perm.PlanRef, bool) {
	companyID, err := middleware.CompanyID(r.Context())
	if err != nil {
		apihttp.WriteError(w, http.StatusUnauthorized, "AUTH", "sessão inválida", nil)
		return perm.PlanRef{}, false
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return perm.PlanRef{}, false
	}

	p, err := h.service.Get(r.Context(), id, companyID)
	if err != nil {
		writePlanError(w, err)
		return perm.PlanRef{}, false
	}
	return perm.PlanRef{ID: p.ID, CompanyID: p.CompanyID}, true
}

// requirePlanLoaded valida sessão e devolve principal + plano carregado.
func (h *Handler) requirePlanLoaded(w http.ResponseWriter, r *http.Request) (*profile.Profile, perm.PlanRef, bool) {
	principal, err := middleware.Principal(r.Context())
	if err != nil {
		apihttp.WriteError(w, http.StatusUnauthorized, "AUTH", "sessão inválida", nil)
		return nil, perm.PlanRef{}, false
	}

	planRef, ok := h.requirePlanVisible(w, r)
	if !ok {
		return nil, perm.PlanRef{}, false
	}
	return principal, planRef, true
}

// requirePlanEdit carrega o plano e exige permissão de edição sobre ele.
func (h *Handler) requirePlanEdit(w http.ResponseWriter, r *http.Request) (*profile.Profile, perm.PlanRef, bool) {
	principal, planRef, ok := h.requirePlanLoaded(w, r)
	if !ok {
		return nil, perm.PlanRef{}, false
	}

	allowed, err := h.evaluator.CanEditPlan(r.Context(), principal, planRef)
	if err != nil {
		writeInternalError(w, err)
		return nil, perm.PlanRef{}, false
	}
	if !allowed {
		apihttp.WriteError(w, http.StatusForbidden, "FORBIDDEN", "acesso negado", nil)
		return nil, perm.PlanRef{}, false
	}
	return principal, planRef, true
}

// requireObjectiveEdit carrega o plano e exige permissão sobre objetivos.
func (h *Handler) requireObjectiveEdit(w http.ResponseWriter, r *http.Request) (*profile.Profile, perm.PlanRef, bool) {
	principal, planRef, ok := h.requirePlanLoaded(w, r)
	if !ok {
		return nil, perm.PlanRef{}, false
	}

	allowed, err := h.evaluator.CanEditObjectives(r.Context(), principal, planRef)
	if err != nil {
		writeInternalError(w, err)
		return nil, perm.PlanRef{}, false
	}
	if !allowed {
		apihttp.WriteError(w, http.StatusForbidden, "FORBIDDEN", "acesso negado", nil)
		return nil, perm.PlanRef{}, false
	}
	return principal, planRef, true
}

func writePlanError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		apihttp.WriteError(w, http.StatusNotFound, "NOT_FOUND", "plano não encontrado", nil)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidStatus):
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "dados inválidos", nil)
	default:
		writeInternalError(w, err)
	}
}

func writeInternalError(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("erro interno em rota de planos")
	apihttp.WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
}

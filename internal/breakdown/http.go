package breakdown

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/smartplanhq/api/internal/action"
	apihttp "github.com/smartplanhq/api/internal/http"
	"github.com/smartplanhq/api/internal/http/middleware"
	"github.com/smartplanhq/api/internal/perm"
	"github.com/smartplanhq/api/internal/plan"
	"github.com/smartplanhq/api/internal/profile"
)

// ActionGetter carrega o plano de ação pai para decisões de autorização.
type ActionGetter interface {
	Get(ctx context.Context, id, companyID uuid.UUID) (*action.ActionPlan, error)
}

// Handler orquestra as rotas de desdobramentos.
type Handler struct {
	service   *Service
	actions   ActionGetter
	evaluator *perm.Evaluator
}

// NewHandler cria o handler de desdobramentos.
func NewHandler(service *Service, actions ActionGetter, evaluator *perm.Evaluator) *Handler {
	return &Handler{service: service, actions: actions, evaluator: evaluator}
}

// RegisterRoutes registra as rotas sob o escopo autenticado da empresa.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/acoes/{acaoID}/desdobramentos", func(r chi.Router) {
		r.Get("/", h.handleListByAction)
		r.Post("/", h.handleCreate)
	})

	r.Route("/desdobramentos", func(r chi.Router) {
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
		r.Post("/{id}/concluir", h.handleToggleCompletion)

		r.Get("/{id}/historico", h.handleListHistory)
		r.Post("/{id}/historico", h.handleAddComment)
		r.Put("/{id}/historico/{entradaID}", h.handleEditComment)
		r.Delete("/{id}/historico/{entradaID}", h.handleDeleteComment)

		r.Get("/{id}/anexos", h.handleListAttachments)
		r.Post("/{id}/anexos", h.handleUploadAttachment)
		r.Get("/{id}/anexos/{anexoID}/download", h.handleAttachmentDownloadURL)
		r.Delete("/{id}/anexos/{anexoID}", h.handleDeleteAttachment)
	})
}

func (h *Handler) handleListByAction(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.CompanyID(r.Context())
	if err != nil {
		apihttp.WriteError(w, http.StatusUnauthorized, "AUTH", "sessão inválida", nil)
		return
	}

	acaoID, err := uuid.Parse(chi.URLParam(r, "acaoID"))
	if err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	breakdowns, err := h.service.ListByAction(r.Context(), acaoID, companyID)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	apihttp.WriteJSON(w, http.StatusOK, map[string]any{"desdobramentos": breakdowns})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	principal, companyID, ok := requireSession(w, r)
	if !ok {
		return
	}

	acaoID, err := uuid.Parse(chi.URLParam(r, "acaoID"))
	if err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	parent, err := h.actions.Get(r.Context(), acaoID, companyID)
	if err != nil {
		if errors.Is(err, action.ErrNotFound) {
			apihttp.WriteError(w, http.StatusNotFound, "NOT_FOUND", "plano de ação não encontrado", nil)
			return
		}
		writeInternalError(w, err)
		return
	}

	parentRef := perm.ActionPlanRef{ID: parent.ID, CompanyID: parent.CompanyID, DepartmentID: parent.DepartmentID, OwnerID: parent.OwnerID}
	if !h.evaluator.CanCreateBreakdown(principal, parentRef) {
		apihttp.WriteError(w, http.StatusForbidden, "FORBIDDEN", "acesso negado", nil)
		return
	}

	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	b, err := h.service.Create(r.Context(), companyID, acaoID, input)
	if err != nil {
		writeBreakdownError(w, err)
		return
	}
	apihttp.WriteJSON(w, http.StatusCreated, map[string]any{"desdobramento": b})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	_, target, ok := h.requireBreakdown(w, r)
	if !ok {
		return
	}
	apihttp.WriteJSON(w, http.StatusOK, map[string]any{"desdobramento": target})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	principal, target, ok := h.requireBreakdown(w, r)
	if !ok {
		return
	}

	if !h.evaluator.CanEditBreakdown(principal, breakdownRef(target)) {
		apihttp.WriteError(w, http.StatusForbidden, "FORBIDDEN", "acesso negado", nil)
		return
	}

	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	b, err := h.service.Update(r.Context(), target.ID, target.CompanyID, principal.ID, input)
	if err != nil {
		writeBreakdownError(w, err)
		return
	}
	apihttp.WriteJSON(w, http.StatusOK, map[string]any{"desdobramento": b})
}

func (h *Handler) handleToggleCompletion(w http.ResponseWriter, r *http.Request) {
	principal, target, ok := h.requireBreakdown(w, r)
	if !ok {
		return
	}

	if !h.evaluator.CanEditBreakdown(principal, breakdownRef(target)) {
		apihttp.WriteError(w, http.StatusForbidden, "FORBIDDEN", "acesso negado", nil)
		return
	}

	b, err := h.service.ToggleCompletion(r.Context(), target.ID, target.CompanyID, principal.ID)
	if err != nil {
		writeBreakdownError(w, err)
		return
	}
	apihttp.WriteJSON(w, http.StatusOK, map[string]any{"desdobramento": b})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	principal, target, ok := h.requireBreakdown(w, r)
	if !ok {
		return
	}

	if !h.evaluator.CanDeleteBreakdown(principal, breakdownRef(target)) {
		apihttp.WriteError(w, http.StatusForbidden, "FORBIDDEN", "acesso negado", nil)
		return
	}

	if err := h.service.Delete(r.Context(), target.ID, target.CompanyID); err != nil {
		writeBreakdownError(w, err)
		return
	}
	apihttp.WriteNoContent(w)
}

func (h *Handler) handleListHistory(w http.ResponseWriter, r *http.Request) {
	_, target, ok := h.requireBreakdown(w, r)
	if !ok {
		return
	}

	entries, err := h.service.ListHistory(r.Context(), target.ID)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	apihttp.WriteJSON(w, http.StatusOK, map[string]any{"historico": entries})
}

func (h *Handler) handleAddComment(w http.ResponseWriter, r *http.Request) {
	principal, target, ok := h.requireAnnotate(w, r)
	if !ok {
		return
	}

	var payload struct {
		Texto string `json:"texto"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	entry, err := h.service.AddComment(r.Context(), target.ID, principal.ID, payload.Texto)
	if err != nil {
		writeBreakdownError(w, err)
		return
	}
	apihttp.WriteJSON(w, http.StatusCreated, map[string]any{"entrada": entry})
}

func (h *Handler) handleEditComment(w http.ResponseWriter, r *http.Request) {
	principal, target, ok := h.requireAnnotate(w, r)
	if !ok {
		return
	}

	entradaID, err := uuid.Parse(chi.URLParam(r, "entradaID"))
	if err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var payload struct {
		Texto string `json:"texto"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	entry, err := h.service.EditComment(r.Context(), entradaID, target.ID, principal.ID, payload.Texto)
	if err != nil {
		writeBreakdownError(w, err)
		return
	}
	apihttp.WriteJSON(w, http.StatusOK, map[string]any{"entrada": entry})
}

func (h *Handler) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	principal, target, ok := h.requireAnnotate(w, r)
	if !ok {
		return
	}

	entradaID, err := uuid.Parse(chi.URLParam(r, "entradaID"))
	if err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if err := h.service.DeleteComment(r.Context(), entradaID, target.ID, principal.ID); err != nil {
		writeBreakdownError(w, err)
		return
	}
	apihttp.WriteNoContent(w)
}

func (h *Handler) handleListAttachments(w http.ResponseWriter, r *http.Request) {
	_, target, ok := h.requireBreakdown(w, r)
	if !ok {
		return
	}

	attachments, err := h.service.ListAttachments(r.Context(), target.ID)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	apihttp.WriteJSON(w, http.StatusOK, map[string]any{"anexos": attachments})
}

func (h *Handler) handleUploadAttachment(w http.ResponseWriter, r *http.Request) {
	principal, target, ok := h.requireAnnotate(w, r)
	if !ok {
		return
	}

	// margem para os demais campos do multipart
	r.Body = http.MaxBytesReader(w, r.Body, MaxAttachmentSize+1<<20)
	if err := r.ParseMultipartForm(MaxAttachmentSize); err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "arquivo excede o limite de 10 MB", nil)
		return
	}

	file, header, err := r.FormFile("arquivo")
	if err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "arquivo obrigatório", nil)
		return
	}
	defer file.Close()

	// valida tamanho declarado e tipo antes de ler o corpo
	mimeType := header.Header.Get("Content-Type")
	if err := ValidateAttachment(header.Filename, header.Size, mimeType); err != nil {
		writeBreakdownError(w, err)
		return
	}

	body, err := io.ReadAll(file)
	if err != nil {
		writeInternalError(w, err)
		return
	}

	var description *string
	if d := r.FormValue("descricao"); d != "" {
		description = &d
	}

	a, err := h.service.UploadAttachment(r.Context(), target.ID, principal.ID, header.Filename, mimeType, body, description)
	if err != nil {
		writeBreakdownError(w, err)
		return
	}
	apihttp.WriteJSON(w, http.StatusCreated, map[string]any{"anexo": a})
}

func (h *Handler) handleAttachmentDownloadURL(w http.ResponseWriter, r *http.Request) {
	_, target, ok := h.requireBreakdown(w, r)
	if !ok {
		return
	}

	anexoID, err := uuid.Parse(chi.URLParam(r, "anexoID"))
	if err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	url, err := h.service.AttachmentDownloadURL(r.Context(), anexoID, target.ID)
	if err != nil {
		writeBreakdownError(w, err)
		return
	}
	apihttp.WriteJSON(w, http.StatusOK, map[string]any{"url": url})
}

func (h *Handler) handleDeleteAttachment(w http.ResponseWriter, r *http.Request) {
	_, target, ok := h.requireAnnotate(w, r)
	if !ok {
		return
	}

	anexoID, err := uuid.Parse(chi.URLParam(r, "anexoID"))
	if err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if err := h.service.DeleteAttachment(r.Context(), anexoID, target.ID); err != nil {
		writeBreakdownError(w, err)
		return
	}
	apihttp.WriteNoContent(w)
}

// requireBreakdown valida a sessão e carrega o desdobramento.
func (h *Handler) requireBreakdown(w http.ResponseWriter, r *http.Request) (*profile.Profile, *Breakdown, bool) {
	principal, companyID, ok := requireSession(w, r)
	if !ok {
		return nil, nil, false
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return nil, nil, false
	}

	b, err := h.service.Get(r.Context(), id, companyID)
	if err != nil {
		writeBreakdownError(w, err)
		return nil, nil, false
	}
	return principal, b, true
}

// requireAnnotate carrega o desdobramento e exige permissão de anotação.
func (h *Handler) requireAnnotate(w http.ResponseWriter, r *http.Request) (*profile.Profile, *Breakdown, bool) {
	principal, target, ok := h.requireBreakdown(w, r)
	if !ok {
		return nil, nil, false
	}

	if !h.evaluator.CanAnnotateBreakdown(principal, breakdownRef(target)) {
		apihttp.WriteError(w, http.StatusForbidden, "FORBIDDEN", "acesso negado", nil)
		return nil, nil, false
	}
	return principal, target, true
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

func breakdownRef(b *Breakdown) perm.BreakdownRef {
	return perm.BreakdownRef{
		ID:                 b.ID,
		CompanyID:          b.CompanyID,
		ExecutorID:         b.ExecutorID,
		ActionDepartmentID: b.ActionDepartmentID,
	}
}

func writeBreakdownError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrHistoryNotFound):
		apihttp.WriteError(w, http.StatusNotFound, "NOT_FOUND", "registro não encontrado", nil)
	case errors.Is(err, ErrNotAuthor), errors.Is(err, ErrNotComment):
		apihttp.WriteError(w, http.StatusForbidden, "FORBIDDEN", err.Error(), nil)
	case errors.Is(err, ErrFileTooLarge), errors.Is(err, ErrMimeNotAllowed),
		errors.Is(err, ErrInvalidInput), errors.Is(err, plan.ErrInvalidStatus):
		apihttp.WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	default:
		writeInternalError(w, err)
	}
}

func writeInternalError(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("erro interno em rota de desdobramentos")
	apihttp.WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
}

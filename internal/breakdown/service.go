package breakdown

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/smartplanhq/api/internal/plan"
	"github.com/smartplanhq/api/internal/storage"
)

// signedURLTTL é a validade das URLs de download de anexos.
const signedURLTTL = time.Hour

// BreakdownRepository abstrai a persistência de desdobramentos.
type BreakdownRepository interface {
	GetByID(ctx context.Context, id, companyID uuid.UUID) (*Breakdown, error)
	ListByAction(ctx context.Context, actionPlanID, companyID uuid.UUID) ([]Breakdown, error)
	Create(ctx context.Context, companyID, actionPlanID uuid.UUID, input Input) (*Breakdown, error)
	Update(ctx context.Context, id, companyID uuid.UUID, input Input) (*Breakdown, error)
	SetCompletion(ctx context.Context, id, companyID uuid.UUID, completed bool, status string) (*Breakdown, error)
	Delete(ctx context.Context, id, companyID uuid.UUID) error

	GetHistoryEntry(ctx context.Context, id, breakdownID uuid.UUID) (*HistoryEntry, error)
	ListHistory(ctx context.Context, breakdownID uuid.UUID) ([]HistoryEntry, error)
	InsertHistory(ctx context.Context, breakdownID, authorID uuid.UUID, kind, text string, metadata map[string]any) (*HistoryEntry, error)
	UpdateHistoryText(ctx context.Context, id, breakdownID uuid.UUID, text string) (*HistoryEntry, error)
	DeleteHistory(ctx context.Context, id, breakdownID uuid.UUID) error

	GetAttachment(ctx context.Context, id, breakdownID uuid.UUID) (*Attachment, error)
	ListAttachments(ctx context.Context, breakdownID uuid.UUID) ([]Attachment, error)
	InsertAttachment(ctx context.Context, a *Attachment) (*Attachment, error)
	DeleteAttachment(ctx context.Context, id, breakdownID uuid.UUID) error
}

// Service concentra as regras de desdobramentos, histórico e anexos.
type Service struct {
	repo    BreakdownRepository
	storage storage.Storage
	logger  zerolog.Logger
}

// NewService cria o serviço de desdobramentos.
func NewService(repo BreakdownRepository, store storage.Storage, logger zerolog.Logger) *Service {
	return &Service{repo: repo, storage: store, logger: logger.With().Str("component", "breakdown").Logger()}
}

// Get busca um desdobramento no escopo da empresa.
func (s *Service) Get(ctx context.Context, id, companyID uuid.UUID) (*Breakdown, error) {
	return s.repo.GetByID(ctx, id, companyID)
}

// ListByAction lista os desdobramentos de um plano de ação.
func (s *Service) ListByAction(ctx context.Context, actionPlanID, companyID uuid.UUID) ([]Breakdown, error) {
	return s.repo.ListByAction(ctx, actionPlanID, companyID)
}

// Create cadastra um desdobramento.
func (s *Service) Create(ctx context.Context, companyID, actionPlanID uuid.UUID, input Input) (*Breakdown, error) {
	if err := validateInput(&input); err != nil {
		return nil, err
	}

	b, err := s.repo.Create(ctx, companyID, actionPlanID, input)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("breakdown_id", b.ID.String()).Str("action_plan_id", actionPlanID.String()).Msg("desdobramento criado")
	return b, nil
}

// Update atualiza o desdobramento. Mudanças de status geram entrada de
// auditoria com o valor anterior e o novo.
func (s *Service) Update(ctx context.Context, id, companyID, authorID uuid.UUID, input Input) (*Breakdown, error) {
	if err := validateInput(&input); err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, id, companyID)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, companyID, input)
	if err != nil {
		return nil, err
	}

	if current.Status != updated.Status {
		_, err := s.repo.InsertHistory(ctx, id, authorID, HistoryStatusChange, "status alterado", map[string]any{
			"de":   current.Status,
			"para": updated.Status,
		})
		if err != nil {
			s.logger.Error().Err(err).Str("breakdown_id", id.String()).Msg("falha ao registrar mudança de status")
		}
	}
	return updated, nil
}

// ToggleCompletion alterna a conclusão do desdobramento e registra auditoria.
func (s *Service) ToggleCompletion(ctx context.Context, id, companyID, authorID uuid.UUID) (*Breakdown, error) {
	current, err := s.repo.GetByID(ctx, id, companyID)
	if err != nil {
		return nil, err
	}

	completed := !current.Completed
	status := plan.StatusEmAndamento
	if completed {
		status = plan.StatusConcluido
	}

	updated, err := s.repo.SetCompletion(ctx, id, companyID, completed, status)
	if err != nil {
		return nil, err
	}

	_, err = s.repo.InsertHistory(ctx, id, authorID, HistoryStatusChange, "status alterado", map[string]any{
		"de":   current.Status,
		"para": status,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("breakdown_id", id.String()).Msg("falha ao registrar mudança de status")
	}
	return updated, nil
}

// Delete remove o desdobramento.
func (s *Service) Delete(ctx context.Context, id, companyID uuid.UUID) error {
	return s.repo.Delete(ctx, id, companyID)
}

// ListHistory lista o histórico do desdobramento.
func (s *Service) ListHistory(ctx context.Context, breakdownID uuid.UUID) ([]HistoryEntry, error) {
	return s.repo.ListHistory(ctx, breakdownID)
}

// AddComment grava um comentário no histórico.
func (s *Service) AddComment(ctx context.Context, breakdownID, authorID uuid.UUID, text string) (*HistoryEntry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.InsertHistory(ctx, breakdownID, authorID, HistoryComment, text, nil)
}

// EditComment altera um comentário. Apenas o autor pode, e apenas comentários.
func (s *Service) EditComment(ctx context.Context, id, breakdownID, authorID uuid.UUID, text string) (*HistoryEntry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrInvalidInput
	}

	entry, err := s.repo.GetHistoryEntry(ctx, id, breakdownID)
	if err != nil {
		return nil, err
	}
	if entry.Kind != HistoryComment {
		return nil, ErrNotComment
	}
	if entry.AuthorID != authorID {
		return nil, ErrNotAuthor
	}
	return s.repo.UpdateHistoryText(ctx, id, breakdownID, text)
}

// DeleteComment remove um comentário. Mesmas regras da edição.
func (s *Service) DeleteComment(ctx context.Context, id, breakdownID, authorID uuid.UUID) error {
	entry, err := s.repo.GetHistoryEntry(ctx, id, breakdownID)
	if err != nil {
		return err
	}
	if entry.Kind != HistoryComment {
		return ErrNotComment
	}
	if entry.AuthorID != authorID {
		return ErrNotAuthor
	}
	return s.repo.DeleteHistory(ctx, id, breakdownID)
}

// ListAttachments lista os anexos do desdobramento.
func (s *Service) ListAttachments(ctx context.Context, breakdownID uuid.UUID) ([]Attachment, error) {
	return s.repo.ListAttachments(ctx, breakdownID)
}

// UploadAttachment valida, envia o blob e grava os metadados. Se a gravação
// dos metadados falhar, o blob recém-enviado é removido para evitar órfãos.
func (s *Service) UploadAttachment(ctx context.Context, breakdownID, uploaderID uuid.UUID, fileName, mimeType string, body []byte, description *string) (*Attachment, error) {
	if err := ValidateAttachment(fileName, int64(len(body)), mimeType); err != nil {
		return nil, err
	}

	key := attachmentKey(uploaderID, breakdownID, fileName)
	if _, err := s.storage.Upload(ctx, storage.UploadInput{Key: key, Body: body, ContentType: mimeType}); err != nil {
		return nil, err
	}

	saved, err := s.repo.InsertAttachment(ctx, &Attachment{
		BreakdownID: breakdownID,
		UploaderID:  uploaderID,
		FilePath:    key,
		FileName:    fileName,
		FileSize:    int64(len(body)),
		MimeType:    mimeType,
		Description: description,
	})
	if err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			s.logger.Error().Err(delErr).Str("key", key).Msg("falha ao remover blob órfão")
		}
		return nil, err
	}

	s.logger.Info().Str("breakdown_id", breakdownID.String()).Str("key", key).Msg("anexo enviado")
	return saved, nil
}

// AttachmentDownloadURL gera uma URL assinada válida por uma hora.
func (s *Service) AttachmentDownloadURL(ctx context.Context, id, breakdownID uuid.UUID) (string, error) {
	a, err := s.repo.GetAttachment(ctx, id, breakdownID)
	if err != nil {
		return "", err
	}
	return s.storage.SignedURL(a.FilePath, signedURLTTL)
}

// DeleteAttachment remove o blob (melhor esforço) e os metadados.
func (s *Service) DeleteAttachment(ctx context.Context, id, breakdownID uuid.UUID) error {
	a, err := s.repo.GetAttachment(ctx, id, breakdownID)
	if err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, a.FilePath); err != nil {
		s.logger.Error().Err(err).Str("key", a.FilePath).Msg("falha ao remover blob do anexo")
	}
	return s.repo.DeleteAttachment(ctx, id, breakdownID)
}

func validateInput(input *Input) error {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return ErrInvalidInput
	}
	if input.ExecutorID == uuid.Nil {
		return ErrInvalidInput
	}
	if strings.TrimSpace(input.RequiredResources) == "" {
		return ErrInvalidInput
	}
	if input.Effort < 1 || input.Effort > 3 {
		return ErrInvalidInput
	}
	if input.Status == "" {
		input.Status = plan.StatusNaoIniciado
	}
	if !plan.IsValidStatus(input.Status) {
		return plan.ErrInvalidStatus
	}
	if input.StartDate != nil && input.DueDate != nil && input.DueDate.Before(*input.StartDate) {
		return ErrInvalidInput
	}
	return nil
}

package breakdown

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/smartplanhq/api/internal/storage"
)

type stubRepo struct {
	breakdowns  map[uuid.UUID]*Breakdown
	history     map[uuid.UUID]*HistoryEntry
	attachments map[uuid.UUID]*Attachment

	insertAttachmentErr error
	insertedAttachments int
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		breakdowns:  make(map[uuid.UUID]*Breakdown),
		history:     make(map[uuid.UUID]*HistoryEntry),
		attachments: make(map[uuid.UUID]*Attachment),
	}
}

func (s *stubRepo) GetByID(ctx context.Context, id, companyID uuid.UUID) (*Breakdown, error) {
	b, ok := s.breakdowns[id]
	if !ok || b.CompanyID != companyID {
		return nil, ErrNotFound
	}
	return b, nil
}

func (s *stubRepo) ListByAction(ctx context.Context, actionPlanID, companyID uuid.UUID) ([]Breakdown, error) {
	return nil, nil
}

func (s *stubRepo) Create(ctx context.Context, companyID, actionPlanID uuid.UUID, input Input) (*Breakdown, error) {
	b := &Breakdown{ID: uuid.New(), CompanyID: companyID, ActionPlanID: actionPlanID, Title: input.Title,
		ExecutorID: input.ExecutorID, Status: input.Status, Effort: input.Effort, CreatedAt: time.Now()}
	s.breakdowns[b.ID] = b
	return b, nil
}

func (s *stubRepo) Update(ctx context.Context, id, companyID uuid.UUID, input Input) (*Breakdown, error) {
	b, err := s.GetByID(ctx, id, companyID)
	if err != nil {
		return nil, err
	}
	b.Title, b.Status, b.Effort = input.Title, input.Status, input.Effort
	return b, nil
}

func (s *stubRepo) SetCompletion(ctx context.Context, id, companyID uuid.UUID, completed bool, status string) (*Breakdown, error) {
	b, err := s.GetByID(ctx, id, companyID)
	if err != nil {
		return nil, err
	}
	b.Completed, b.Status = completed, status
	return b, nil
}

func (s *stubRepo) Delete(ctx context.Context, id, companyID uuid.UUID) error {
	delete(s.breakdowns, id)
	return nil
}

func (s *stubRepo) GetHistoryEntry(ctx context.Context, id, breakdownID uuid.UUID) (*HistoryEntry, error) {
	e, ok := s.history[id]
	if !ok || e.BreakdownID != breakdownID {
		return nil, ErrHistoryNotFound
	}
	return e, nil
}

func (s *stubRepo) ListHistory(ctx context.Context, breakdownID uuid.UUID) ([]HistoryEntry, error) {
	entries := make([]HistoryEntry, 0)
	for _, e := range s.history {
		if e.BreakdownID == breakdownID {
			entries = append(entries, *e)
		}
	}
	return entries, nil
}

func (s *stubRepo) InsertHistory(ctx context.Context, breakdownID, authorID uuid.UUID, kind, text string, metadata map[string]any) (*HistoryEntry, error) {
	e := &HistoryEntry{ID: uuid.New(), BreakdownID: breakdownID, AuthorID: authorID, Kind: kind, Text: text, Metadata: metadata, CreatedAt: time.Now()}
	s.history[e.ID] = e
	return e, nil
}

func (s *stubRepo) UpdateHistoryText(ctx context.Context, id, breakdownID uuid.UUID, text string) (*HistoryEntry, error) {
	e, err := s.GetHistoryEntry(ctx, id, breakdownID)
	if err != nil {
		return nil, err
	}
	e.Text = text
	return e, nil
}

func (s *stubRepo) DeleteHistory(ctx context.Context, id, breakdownID uuid.UUID) error {
	delete(s.history, id)
	return nil
}

func (s *stubRepo) GetAttachment(ctx context.Context, id, breakdownID uuid.UUID) (*Attachment, error) {
	a, ok := s.attachments[id]
	if !ok || a.BreakdownID != breakdownID {
		return nil, ErrNotFound
	}
	return a, nil
}

func (s *stubRepo) ListAttachments(ctx context.Context, breakdownID uuid.UUID) ([]Attachment, error) {
	return nil, nil
}

func (s *stubRepo) InsertAttachment(ctx context.Context, a *Attachment) (*Attachment, error) {
	s.insertedAttachments++
	if s.insertAttachmentErr != nil {
		return nil, s.insertAttachmentErr
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	s.attachments[a.ID] = a
	return a, nil
}

func (s *stubRepo) DeleteAttachment(ctx context.Context, id, breakdownID uuid.UUID) error {
	delete(s.attachments, id)
	return nil
}

type recordingStorage struct {
	uploads    int
	deletes    int
	lastKey    string
	deletedKey string
}

func (r *recordingStorage) Upload(ctx context.Context, input storage.UploadInput) (*storage.UploadResult, error) {
	r.uploads++
	r.lastKey = input.Key
	return &storage.UploadResult{URL: "https://cdn.test/" + input.Key}, nil
}

func (r *recordingStorage) Delete(ctx context.Context, key string) error {
	r.deletes++
	r.deletedKey = key
	return nil
}

func (r *recordingStorage) SignedURL(key string, expires time.Duration) (string, error) {
	return "https://signed.test/" + key, nil
}

func newTestService(repo *stubRepo, store *recordingStorage) *Service {
	return NewService(repo, store, zerolog.Nop())
}

func TestUploadRejectsOversizeBeforeStorage(t *testing.T) {
	store := &recordingStorage{}
	s := newTestService(newStubRepo(), store)

	body := make([]byte, 11<<20)
	_, err := s.UploadAttachment(context.Background(), uuid.New(), uuid.New(), "grande.pdf", "application/pdf", body, nil)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("esperava ErrFileTooLarge, obteve %v", err)
	}
	if store.uploads != 0 {
		t.Fatal("arquivo acima do limite não pode chegar ao storage")
	}
}

func TestUploadRejectsMimeBeforeStorage(t *testing.T) {
	store := &recordingStorage{}
	s := newTestService(newStubRepo(), store)

	_, err := s.UploadAttachment(context.Background(), uuid.New(), uuid.New(), "pacote.zip", "application/zip", []byte("conteudo"), nil)
	if !errors.Is(err, ErrMimeNotAllowed) {
		t.Fatalf("esperava ErrMimeNotAllowed, obteve %v", err)
	}
	if store.uploads != 0 {
		t.Fatal("tipo não permitido não pode chegar ao storage")
	}
}

func TestUploadRollsBackBlobOnMetadataFailure(t *testing.T) {
	repo := newStubRepo()
	repo.insertAttachmentErr = errors.New("falha no banco")
	store := &recordingStorage{}
	s := newTestService(repo, store)

	_, err := s.UploadAttachment(context.Background(), uuid.New(), uuid.New(), "doc.pdf", "application/pdf", []byte("conteudo"), nil)
	if err == nil {
		t.Fatal("esperava erro de metadados")
	}
	if store.uploads != 1 {
		t.Fatalf("esperava 1 upload, obteve %d", store.uploads)
	}
	if store.deletes != 1 || store.deletedKey != store.lastKey {
		t.Fatal("blob órfão deve ser removido após falha nos metadados")
	}
}

func TestUploadKeyLayout(t *testing.T) {
	repo := newStubRepo()
	store := &recordingStorage{}
	s := newTestService(repo, store)

	uploader, bd := uuid.New(), uuid.New()
	a, err := s.UploadAttachment(context.Background(), bd, uploader, "foto.PNG", "image/png", []byte{1, 2, 3}, nil)
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}

	wantPrefix := uploader.String() + "/" + bd.String() + "/"
	if len(a.FilePath) <= len(wantPrefix) || a.FilePath[:len(wantPrefix)] != wantPrefix {
		t.Fatalf("chave %q não segue uploader/desdobramento/", a.FilePath)
	}
	if a.FilePath[len(a.FilePath)-4:] != ".png" {
		t.Fatalf("chave %q deveria terminar com a extensão normalizada .png", a.FilePath)
	}
}

func TestEditCommentOnlyByAuthor(t *testing.T) {
	repo := newStubRepo()
	s := newTestService(repo, &recordingStorage{})

	bd := uuid.New()
	author := uuid.New()
	entry, err := s.AddComment(context.Background(), bd, author, "primeiro comentário")
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}

	if _, err := s.EditComment(context.Background(), entry.ID, bd, uuid.New(), "alterado"); !errors.Is(err, ErrNotAuthor) {
		t.Fatalf("esperava ErrNotAuthor, obteve %v", err)
	}

	updated, err := s.EditComment(context.Background(), entry.ID, bd, author, "alterado")
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if updated.Text != "alterado" {
		t.Fatalf("texto não atualizado: %q", updated.Text)
	}
}

func TestAuditEntriesAreImmutable(t *testing.T) {
	repo := newStubRepo()
	s := newTestService(repo, &recordingStorage{})

	bd, author := uuid.New(), uuid.New()
	entry, err := repo.InsertHistory(context.Background(), bd, author, HistoryStatusChange, "status alterado", nil)
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}

	if _, err := s.EditComment(context.Background(), entry.ID, bd, author, "x"); !errors.Is(err, ErrNotComment) {
		t.Fatalf("esperava ErrNotComment na edição, obteve %v", err)
	}
	if err := s.DeleteComment(context.Background(), entry.ID, bd, author); !errors.Is(err, ErrNotComment) {
		t.Fatalf("esperava ErrNotComment na remoção, obteve %v", err)
	}
}

func TestToggleCompletionWritesAudit(t *testing.T) {
	repo := newStubRepo()
	s := newTestService(repo, &recordingStorage{})

	companyID := uuid.New()
	b, err := repo.Create(context.Background(), companyID, uuid.New(), Input{Title: "tarefa", ExecutorID: uuid.New(), Status: "em_andamento", Effort: 2})
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}

	updated, err := s.ToggleCompletion(context.Background(), b.ID, companyID, uuid.New())
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if !updated.Completed || updated.Status != "concluido" {
		t.Fatalf("esperava concluído, obteve completed=%v status=%s", updated.Completed, updated.Status)
	}

	entries, _ := s.ListHistory(context.Background(), b.ID)
	if len(entries) != 1 || entries[0].Kind != HistoryStatusChange {
		t.Fatalf("esperava 1 entrada de auditoria, obteve %d", len(entries))
	}
}

func TestCreateValidatesEffortRange(t *testing.T) {
	repo := newStubRepo()
	s := newTestService(repo, &recordingStorage{})

	_, err := s.Create(context.Background(), uuid.New(), uuid.New(), Input{Title: "tarefa", ExecutorID: uuid.New(), RequiredResources: "equipe", Effort: 4})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("esperava ErrInvalidInput para esforço 4, obteve %v", err)
	}
}

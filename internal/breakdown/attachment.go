package breakdown

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxAttachmentSize limita anexos a 10 MB.
const MaxAttachmentSize = 10 << 20

var (
	// ErrFileTooLarge indica anexo acima do limite de tamanho.
	ErrFileTooLarge = errors.New("arquivo excede o limite de 10 MB")
	// ErrMimeNotAllowed indica tipo de arquivo fora da lista aceita.
	ErrMimeNotAllowed = errors.New("tipo de arquivo não permitido")
)

// Tipos aceitos: imagens, PDF, documentos Office e texto/CSV.
var allowedMimeTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"application/vnd.ms-excel": {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": {},
	"text/plain": {},
	"text/csv":   {},
}

// ValidateAttachment aplica limite de tamanho e lista de tipos ANTES de
// qualquer chamada ao storage.
func ValidateAttachment(fileName string, size int64, mimeType string) error {
	if strings.TrimSpace(fileName) == "" {
		return ErrInvalidInput
	}
	if size <= 0 || size > MaxAttachmentSize {
		return ErrFileTooLarge
	}
	if _, ok := allowedMimeTypes[strings.ToLower(strings.TrimSpace(mimeType))]; !ok {
		return ErrMimeNotAllowed
	}
	return nil
}

// attachmentKey monta a chave do blob: uploader/desdobramento/timestamp-rand.ext.
func attachmentKey(uploaderID, breakdownID uuid.UUID, fileName string) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(fileName)), ".")
	if ext == "" {
		ext = "bin"
	}

	buf := make([]byte, 6)
	_, _ = rand.Read(buf)

	return fmt.Sprintf("%s/%s/%d-%s.%s", uploaderID, breakdownID, time.Now().UnixMilli(), hex.EncodeToString(buf), ext)
}

package storage

import (
	"context"
	"time"
)

// UploadInput representa uma operação de upload simples.
type UploadInput struct {
	Key          string
	Body         []byte
	ContentType  string
	CacheControl string
}

// UploadResult descreve o artefato persistido.
type UploadResult struct {
	URL  string
	ETag string
}

// Storage define o comportamento necessário para anexos: enviar, remover e
// gerar URL assinada de download com validade limitada.
type Storage interface {
	Upload(ctx context.Context, input UploadInput) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
	SignedURL(key string, expires time.Duration) (string, error)
}

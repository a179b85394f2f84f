package storage

import (
	"context"
	"errors"
	"time"
)

var errNotConfigured = errors.New("storage: backend não configurado")

// NoopStorage devolve erro indicando que não há backend configurado.
type NoopStorage struct{}

// Upload sempre retorna erro, sinalizando que o recurso não está disponível.
func (NoopStorage) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	return nil, errNotConfigured
}

// Delete sempre retorna erro.
func (NoopStorage) Delete(ctx context.Context, key string) error {
	return errNotConfigured
}

// SignedURL sempre retorna erro.
func (NoopStorage) SignedURL(key string, expires time.Duration) (string, error) {
	return "", errNotConfigured
}

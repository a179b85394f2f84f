package org

import (
	"github.com/go-chi/chi/v5"
)

// Mount adiciona as rotas organizacionais no router.
func Mount(r chi.Router, handler *Handler) {
	handler.RegisterRoutes(r)
}

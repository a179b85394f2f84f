package breakdown

import (
	"github.com/go-chi/chi/v5"
)

// Mount adiciona as rotas de desdobramentos no router.
func Mount(r chi.Router, handler *Handler) {
	handler.RegisterRoutes(r)
}

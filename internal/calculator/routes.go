package calculator

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts all calculator endpoints onto the given router
// under the /calculator prefix.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/calculator", func(r chi.Router) {
		r.Get("/", h.State)
		r.Post("/keys", h.Key)
		r.Post("/buttons/{id}", h.Button)
		r.Post("/evaluate", h.Evaluate)
		r.Delete("/history", h.ClearHistory)
		r.Post("/history/{index}/reuse", h.Reuse)
	})
}

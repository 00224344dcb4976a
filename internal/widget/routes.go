package widget

import "github.com/go-chi/chi/v5"

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/widget/sessions", h.CreateSession)
	r.Get("/widget/sessions/{sessionID}", h.GetSession)
	r.Post("/widget/sessions/{sessionID}/messages", h.SendMessage)
	r.Post("/widget/sessions/{sessionID}/debt-consultation", h.ConsultDebt)
	r.Post("/widget/sessions/{sessionID}/boleto", h.GenerateBoleto)
}

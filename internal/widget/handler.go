package widget

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/linktrac/chatwidget/internal/dialogue"
)

type Handler struct {
	svc     Service
	limiter *SessionLimiter
}

func NewHandler(svc Service, limiter *SessionLimiter) *Handler {
	return &Handler{svc: svc, limiter: limiter}
}

// messagePayload carries both the raw text and the rendered HTML so the
// presentational shell does no formatting of its own.
type messagePayload struct {
	ID              int64                 `json:"id"`
	Text            string                `json:"text"`
	HTML            string                `json:"html"`
	Sender          string                `json:"sender"`
	Timestamp       time.Time             `json:"timestamp"`
	Options         []string              `json:"options,omitempty"`
	ContactInfo     *dialogue.ContactInfo `json:"contact_info,omitempty"`
	ContactRendered string                `json:"contact_rendered,omitempty"`
	Department      string                `json:"department,omitempty"`
}

type sessionPayload struct {
	SessionID  string           `json:"session_id"`
	Department string           `json:"department"`
	FormMode   string           `json:"form_mode"`
	Messages   []messagePayload `json:"messages"`
}

func toSessionPayload(sess *Session) sessionPayload {
	transcript := sess.Transcript()
	messages := make([]messagePayload, 0, len(transcript))
	for _, m := range transcript {
		messages = append(messages, messagePayload{
			ID:              m.ID,
			Text:            m.Text,
			HTML:            FormatText(m.Text),
			Sender:          string(m.Sender),
			Timestamp:       m.Timestamp,
			Options:         m.Options,
			ContactInfo:     m.ContactInfo,
			ContactRendered: RenderContactInfo(m.ContactInfo),
			Department:      m.Department,
		})
	}

	return sessionPayload{
		SessionID:  sess.ID,
		Department: sess.Department(),
		FormMode:   string(sess.FormMode()),
		Messages:   messages,
	}
}

// CreateSession mounts a widget instance and runs the opening turn.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.StartConversation(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSessionPayload(sess))
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.GetSession(chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSessionPayload(sess))
}

// SendMessage handles typed text and quick-reply clicks alike.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if !h.allow(w, sessionID) {
		return
	}

	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	sess, err := h.svc.SendMessage(r.Context(), sessionID, payload.Text)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSessionPayload(sess))
}

func (h *Handler) ConsultDebt(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if !h.allow(w, sessionID) {
		return
	}

	var payload struct {
		CPFCNPJ string `json:"cpf_cnpj"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	sess, err := h.svc.ConsultDebt(r.Context(), sessionID, DebtInput{CPFCNPJ: payload.CPFCNPJ})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSessionPayload(sess))
}

func (h *Handler) GenerateBoleto(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if !h.allow(w, sessionID) {
		return
	}

	var payload struct {
		CustomerID  string  `json:"customer_id"`
		Value       float64 `json:"value"`
		DueDate     string  `json:"due_date"`
		Description string  `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	sess, err := h.svc.GenerateBoleto(r.Context(), sessionID, BoletoInput{
		CustomerID:  payload.CustomerID,
		Value:       payload.Value,
		DueDate:     payload.DueDate,
		Description: payload.Description,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSessionPayload(sess))
}

func (h *Handler) allow(w http.ResponseWriter, sessionID string) bool {
	if h.limiter != nil && !h.limiter.Allow(sessionID) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
		return false
	}
	return true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var vErr *ValidationError
	switch {
	case errors.As(err, &vErr):
		// Validation notices go back synchronously; they never enter the
		// transcript.
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"notice": vErr.Notice})
	case errors.Is(err, ErrSessionNotFound):
		http.Error(w, "session not found", http.StatusNotFound)
	case errors.Is(err, ErrBusy):
		http.Error(w, "request already in flight", http.StatusConflict)
	default:
		http.Error(w, "processing error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

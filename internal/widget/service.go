package widget

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/linktrac/chatwidget/internal/billing"
	"github.com/linktrac/chatwidget/internal/dialogue"
	"github.com/linktrac/chatwidget/internal/observability"
)

// openingTurn is the sentinel the widget sends on mount; the backend answers
// it with the greeting and the main menu.
const openingTurn = "início"

const defaultBoletoDescription = "Cobrança Linktrac"

// Fixed fallback texts appended on transport failures. Validation notices
// never reach the transcript; these do.
const (
	turnErrorText   = "Desculpe, ocorreu um erro. Tente novamente."
	debtErrorText   = "Erro ao consultar débitos. Tente novamente."
	boletoErrorText = "Erro ao gerar boleto. Tente novamente."
)

// actionFollowUps are the quick replies attached to every action result.
// Clicking one re-enters SendMessage like any typed text.
var actionFollowUps = []string{"🔙 Voltar ao Financeiro", "🏠 Menu Principal"}

type service struct {
	dialogue dialogue.Client
	billing  billing.Client
	log      TranscriptLog
	sessions *sessionStore
	now      func() time.Time
	newID    func() string
}

func NewService(dlg dialogue.Client, bill billing.Client, tl TranscriptLog) Service {
	if tl == nil {
		tl = NewNopLog()
	}

	return &service{
		dialogue: dlg,
		billing:  bill,
		log:      tl,
		sessions: newSessionStore(),
		now:      time.Now,
		newID: func() string {
			return "session_" + uuid.NewString()
		},
	}
}

// StartConversation mounts a new widget instance: it mints the session id,
// sends the sentinel opening turn and seeds the transcript with the single
// resulting bot message. If the opening turn fails the session is not
// registered and there is no retry.
func (s *service) StartConversation(ctx context.Context) (*Session, error) {
	sess := newSession(s.newID(), s.now())

	log := observability.LoggerFromContext(ctx).With("session_id", sess.ID)
	log.Info("starting conversation")

	reply, err := s.dialogue.SendTurn(ctx, dialogue.Turn{
		SessionID:  sess.ID,
		Message:    openingTurn,
		Department: sess.Department(),
	})
	if err != nil {
		log.Error("opening turn failed", "error", err)
		return nil, err
	}

	s.appendReply(ctx, sess, reply)
	sess.setDepartment(reply.Department)
	s.sessions.add(sess)

	log.Info("conversation started", "department", reply.Department)
	return sess, nil
}

// SendMessage runs one ordinary turn. The user message is appended before
// the backend is consulted; a transport failure turns into a fixed fallback
// bot message and leaves the department untouched. Quick-reply clicks come
// through here with the option label as text.
func (s *service) SendMessage(ctx context.Context, sessionID, text string) (*Session, error) {
	sess, err := s.sessions.get(sessionID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(text) == "" {
		return sess, nil
	}

	if !sess.acquire() {
		return nil, ErrBusy
	}
	defer sess.release()

	log := observability.LoggerFromContext(ctx).With("session_id", sess.ID)

	userMsg := sess.append(Message{
		Text:      text,
		Sender:    SenderUser,
		Timestamp: s.now(),
	})
	s.logMessage(ctx, sess.ID, userMsg)

	reply, err := s.dialogue.SendTurn(ctx, dialogue.Turn{
		SessionID:  sess.ID,
		Message:    text,
		Department: sess.Department(),
	})
	if err != nil {
		log.Error("turn failed", "error", err)
		fallback := sess.append(Message{
			Text:      turnErrorText,
			Sender:    SenderBot,
			Timestamp: s.now(),
		})
		s.logMessage(ctx, sess.ID, fallback)
		return sess, nil
	}

	s.appendReply(ctx, sess, reply)
	sess.setDepartment(reply.Department)

	log.Info("turn completed", "department", reply.Department)
	return sess, nil
}

// ConsultDebt validates and submits the debt-consultation form. The result,
// success or service-reported error, becomes one synthetic bot message with
// the finance/main-menu quick replies; the form closes on every terminal
// outcome.
func (s *service) ConsultDebt(ctx context.Context, sessionID string, in DebtInput) (*Session, error) {
	sess, err := s.sessions.get(sessionID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.CPFCNPJ) == "" {
		return nil, &ValidationError{Notice: "Por favor, informe seu CPF ou CNPJ"}
	}

	if !sess.acquire() {
		return nil, ErrBusy
	}
	defer sess.release()

	sess.setDraft(Draft{CustomerID: in.CPFCNPJ})

	log := observability.LoggerFromContext(ctx).With("session_id", sess.ID)
	log.Info("consulting debts")

	result, err := s.billing.ConsultDebt(ctx, billing.DebtRequest{
		CPFCNPJ:   in.CPFCNPJ,
		SessionID: sess.ID,
	})

	msg := Message{Sender: SenderBot, Timestamp: s.now()}
	if err != nil {
		log.Error("debt consultation failed", "error", err)
		msg.Text = debtErrorText
	} else {
		msg.Text = formatDebtResult(result)
		msg.Options = actionFollowUps
	}

	appended := sess.append(msg)
	s.logMessage(ctx, sess.ID, appended)
	if logErr := s.log.LogDebtConsultation(ctx, sess.ID, in.CPFCNPJ, msg.Text); logErr != nil {
		log.Warn("debt consultation log write failed", "error", logErr)
	}

	sess.closeForm()
	return sess, nil
}

// GenerateBoleto validates and submits the boleto-generation form, with the
// same terminal behavior as ConsultDebt.
func (s *service) GenerateBoleto(ctx context.Context, sessionID string, in BoletoInput) (*Session, error) {
	sess, err := s.sessions.get(sessionID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.CustomerID) == "" || in.Value <= 0 || strings.TrimSpace(in.DueDate) == "" {
		return nil, &ValidationError{Notice: "Por favor, preencha todos os campos obrigatórios"}
	}

	if in.Description == "" {
		in.Description = defaultBoletoDescription
	}

	if !sess.acquire() {
		return nil, ErrBusy
	}
	defer sess.release()

	sess.setDraft(Draft{
		CustomerID:  in.CustomerID,
		Value:       in.Value,
		DueDate:     in.DueDate,
		Description: in.Description,
	})

	log := observability.LoggerFromContext(ctx).With("session_id", sess.ID)
	log.Info("generating boleto", "customer_id", in.CustomerID)

	result, err := s.billing.GenerateBoleto(ctx, billing.BoletoRequest{
		CustomerID:  in.CustomerID,
		Value:       in.Value,
		DueDate:     in.DueDate,
		Description: in.Description,
		SessionID:   sess.ID,
	})

	msg := Message{Sender: SenderBot, Timestamp: s.now()}
	if err != nil {
		log.Error("boleto generation failed", "error", err)
		msg.Text = boletoErrorText
	} else {
		msg.Text = formatBoletoResult(result)
		msg.Options = actionFollowUps
	}

	appended := sess.append(msg)
	s.logMessage(ctx, sess.ID, appended)
	if logErr := s.log.LogBoletoGeneration(ctx, sess.ID, in, msg.Text); logErr != nil {
		log.Warn("boleto generation log write failed", "error", logErr)
	}

	sess.closeForm()
	return sess, nil
}

func (s *service) GetSession(sessionID string) (*Session, error) {
	return s.sessions.get(sessionID)
}

func (s *service) appendReply(ctx context.Context, sess *Session, reply *dialogue.Reply) {
	msg := sess.append(Message{
		Text:        reply.Response,
		Sender:      SenderBot,
		Timestamp:   s.now(),
		Options:     reply.Options,
		ContactInfo: reply.ContactInfo,
		Department:  reply.Department,
	})
	s.logMessage(ctx, sess.ID, msg)
}

func (s *service) logMessage(ctx context.Context, sessionID string, msg Message) {
	if err := s.log.LogMessage(ctx, sessionID, msg); err != nil {
		observability.LoggerFromContext(ctx).Warn("transcript log write failed",
			"session_id", sessionID, "error", err)
	}
}

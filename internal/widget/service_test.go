package widget_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/linktrac/chatwidget/internal/billing"
	"github.com/linktrac/chatwidget/internal/dialogue"
	"github.com/linktrac/chatwidget/internal/widget"
)

// fakeDialogue records every turn and answers with a canned reply.
type fakeDialogue struct {
	mu    sync.Mutex
	turns []dialogue.Turn
	reply dialogue.Reply
	err   error
}

func (f *fakeDialogue) SendTurn(_ context.Context, turn dialogue.Turn) (*dialogue.Reply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.turns = append(f.turns, turn)
	if f.err != nil {
		return nil, f.err
	}
	r := f.reply
	return &r, nil
}

func (f *fakeDialogue) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.turns)
}

type fakeBilling struct {
	mu          sync.Mutex
	debtCalls   int
	boletoCalls int
	lastDebt    billing.DebtRequest
	lastBoleto  billing.BoletoRequest

	debtResult   billing.DebtResult
	boletoResult billing.BoletoResult
	err          error
}

func (f *fakeBilling) ConsultDebt(_ context.Context, req billing.DebtRequest) (*billing.DebtResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.debtCalls++
	f.lastDebt = req
	if f.err != nil {
		return nil, f.err
	}
	r := f.debtResult
	return &r, nil
}

func (f *fakeBilling) GenerateBoleto(_ context.Context, req billing.BoletoRequest) (*billing.BoletoResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.boletoCalls++
	f.lastBoleto = req
	if f.err != nil {
		return nil, f.err
	}
	r := f.boletoResult
	return &r, nil
}

func greeting() dialogue.Reply {
	return dialogue.Reply{
		Response:   "👋 Olá! Sou o **Linktrac Chatbot Suporte**!",
		Department: "geral",
		Options:    []string{"💰 Financeiro", "🎯 Vendas", "🛠️ Suporte", "📞 Contatos"},
	}
}

func newTestService(dlg *fakeDialogue, bill *fakeBilling) widget.Service {
	return widget.NewService(dlg, bill, nil)
}

func TestStartConversationSeedsTranscript(t *testing.T) {
	dlg := &fakeDialogue{reply: dialogue.Reply{Response: "Hi", Department: "geral"}}
	svc := newTestService(dlg, &fakeBilling{})

	sess, err := svc.StartConversation(context.Background())
	if err != nil {
		t.Fatalf("StartConversation failed: %v", err)
	}

	transcript := sess.Transcript()
	if len(transcript) != 1 {
		t.Fatalf("expected exactly one seeded message, got %d", len(transcript))
	}
	if transcript[0].Text != "Hi" || transcript[0].Sender != widget.SenderBot {
		t.Fatalf("unexpected seeded message: %+v", transcript[0])
	}
	if sess.FormMode() != widget.FormNone {
		t.Fatalf("expected no form after greeting, got %q", sess.FormMode())
	}

	if dlg.calls() != 1 {
		t.Fatalf("expected one opening turn, got %d", dlg.calls())
	}
	opening := dlg.turns[0]
	if opening.Message != "início" || opening.Department != "geral" {
		t.Fatalf("unexpected opening turn: %+v", opening)
	}
	if opening.SessionID != sess.ID {
		t.Fatalf("opening turn carried session %q, want %q", opening.SessionID, sess.ID)
	}
}

func TestStartConversationFailureLeavesNoSession(t *testing.T) {
	dlg := &fakeDialogue{err: errors.New("connection refused")}
	svc := newTestService(dlg, &fakeBilling{})

	if _, err := svc.StartConversation(context.Background()); err == nil {
		t.Fatalf("expected opening turn error")
	}
	if dlg.calls() != 1 {
		t.Fatalf("expected no retry, got %d calls", dlg.calls())
	}
}

func TestSendMessageEmptyIsNoOp(t *testing.T) {
	dlg := &fakeDialogue{reply: greeting()}
	svc := newTestService(dlg, &fakeBilling{})

	sess, err := svc.StartConversation(context.Background())
	if err != nil {
		t.Fatalf("StartConversation failed: %v", err)
	}

	for _, text := range []string{"", "   ", "\n\t "} {
		if _, err := svc.SendMessage(context.Background(), sess.ID, text); err != nil {
			t.Fatalf("SendMessage(%q) failed: %v", text, err)
		}
	}

	if dlg.calls() != 1 {
		t.Fatalf("empty messages must not reach the backend, got %d calls", dlg.calls())
	}
	if got := len(sess.Transcript()); got != 1 {
		t.Fatalf("empty messages must not be appended, transcript has %d", got)
	}
}

func TestSendMessageAppendsUserThenBot(t *testing.T) {
	dlg := &fakeDialogue{reply: greeting()}
	svc := newTestService(dlg, &fakeBilling{})

	sess, _ := svc.StartConversation(context.Background())

	dlg.reply = dialogue.Reply{
		Response:   "💰 **Departamento Financeiro**",
		Department: "financeiro",
		Options:    []string{"📊 Consultar Débitos", "📋 Gerar Boleto", "🔙 Voltar ao Menu"},
	}

	if _, err := svc.SendMessage(context.Background(), sess.ID, "financeiro"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	transcript := sess.Transcript()
	if len(transcript) != 3 {
		t.Fatalf("expected greeting + user + bot, got %d messages", len(transcript))
	}
	if transcript[1].Sender != widget.SenderUser || transcript[1].Text != "financeiro" {
		t.Fatalf("user message not appended first: %+v", transcript[1])
	}
	if transcript[2].Sender != widget.SenderBot {
		t.Fatalf("bot reply missing: %+v", transcript[2])
	}
	if transcript[1].ID >= transcript[2].ID {
		t.Fatalf("transcript ids must be increasing: %d, %d", transcript[1].ID, transcript[2].ID)
	}

	if sess.Department() != "financeiro" {
		t.Fatalf("expected department overwrite, got %q", sess.Department())
	}

	// the turn carries the department that was current before the reply
	turn := dlg.turns[len(dlg.turns)-1]
	if turn.Department != "geral" {
		t.Fatalf("turn carried department %q, want geral", turn.Department)
	}
}

func TestSessionIDStableAcrossRequests(t *testing.T) {
	dlg := &fakeDialogue{reply: greeting()}
	bill := &fakeBilling{debtResult: billing.DebtResult{}}
	svc := newTestService(dlg, bill)

	sess, _ := svc.StartConversation(context.Background())
	svc.SendMessage(context.Background(), sess.ID, "vendas")
	svc.SendMessage(context.Background(), sess.ID, "suporte")
	svc.ConsultDebt(context.Background(), sess.ID, widget.DebtInput{CPFCNPJ: "12345678900"})

	for i, turn := range dlg.turns {
		if turn.SessionID != sess.ID {
			t.Fatalf("turn %d carried session %q, want %q", i, turn.SessionID, sess.ID)
		}
	}
	if bill.lastDebt.SessionID != sess.ID {
		t.Fatalf("debt request carried session %q, want %q", bill.lastDebt.SessionID, sess.ID)
	}
}

func TestSendMessageTransportFailureFallback(t *testing.T) {
	dlg := &fakeDialogue{reply: greeting()}
	svc := newTestService(dlg, &fakeBilling{})

	sess, _ := svc.StartConversation(context.Background())

	dlg.err = errors.New("dial tcp: connection refused")
	if _, err := svc.SendMessage(context.Background(), sess.ID, "financeiro"); err != nil {
		t.Fatalf("transport failure must be recovered, got %v", err)
	}

	transcript := sess.Transcript()
	last := transcript[len(transcript)-1]
	if last.Sender != widget.SenderBot || last.Text != "Desculpe, ocorreu um erro. Tente novamente." {
		t.Fatalf("expected fallback bot message, got %+v", last)
	}
	if transcript[len(transcript)-2].Sender != widget.SenderUser {
		t.Fatalf("optimistic user append must survive the failure")
	}
	if sess.Department() != "geral" {
		t.Fatalf("department must not change on failure, got %q", sess.Department())
	}
}

func TestDepartmentDrivesFormMode(t *testing.T) {
	dlg := &fakeDialogue{reply: greeting()}
	svc := newTestService(dlg, &fakeBilling{})

	sess, _ := svc.StartConversation(context.Background())

	dlg.reply = dialogue.Reply{Response: "🎯 Vendas", Department: "vendas"}
	svc.SendMessage(context.Background(), sess.ID, "vendas")

	dlg.reply = dialogue.Reply{Response: "📋 Geração de Boleto", Department: "financeiro_boleto"}
	svc.SendMessage(context.Background(), sess.ID, "boletos")
	if sess.FormMode() != widget.FormBoleto {
		t.Fatalf("expected boleto form, got %q", sess.FormMode())
	}

	dlg.reply = dialogue.Reply{Response: "📊 Consulta", Department: "financeiro_consulta"}
	svc.SendMessage(context.Background(), sess.ID, "consulta")
	if sess.FormMode() != widget.FormDebtConsult {
		t.Fatalf("forms are mutually exclusive, got %q", sess.FormMode())
	}

	dlg.reply = dialogue.Reply{Response: "🛠️ Suporte", Department: "suporte"}
	svc.SendMessage(context.Background(), sess.ID, "suporte")
	if sess.FormMode() != widget.FormNone {
		t.Fatalf("third department must hide both forms, got %q", sess.FormMode())
	}
}

func TestConsultDebtValidation(t *testing.T) {
	dlg := &fakeDialogue{reply: greeting()}
	bill := &fakeBilling{}
	svc := newTestService(dlg, bill)

	sess, _ := svc.StartConversation(context.Background())
	before := len(sess.Transcript())

	_, err := svc.ConsultDebt(context.Background(), sess.ID, widget.DebtInput{CPFCNPJ: "   "})
	var vErr *widget.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if vErr.Notice != "Por favor, informe seu CPF ou CNPJ" {
		t.Fatalf("unexpected notice %q", vErr.Notice)
	}

	if bill.debtCalls != 0 {
		t.Fatalf("validation failure must not call the billing service, got %d calls", bill.debtCalls)
	}
	if got := len(sess.Transcript()); got != before {
		t.Fatalf("validation notice must not enter the transcript, %d -> %d", before, got)
	}
}

func TestConsultDebtNoDebts(t *testing.T) {
	dlg := &fakeDialogue{reply: greeting()}
	bill := &fakeBilling{debtResult: billing.DebtResult{Debts: []billing.Debt{}}}
	svc := newTestService(dlg, bill)

	sess, _ := svc.StartConversation(context.Background())

	dlg.reply = dialogue.Reply{Response: "📊 Consulta", Department: "financeiro_consulta"}
	svc.SendMessage(context.Background(), sess.ID, "consultar débitos")

	if _, err := svc.ConsultDebt(context.Background(), sess.ID, widget.DebtInput{CPFCNPJ: "12345678900"}); err != nil {
		t.Fatalf("ConsultDebt failed: %v", err)
	}

	transcript := sess.Transcript()
	last := transcript[len(transcript)-1]
	if last.Sender != widget.SenderBot {
		t.Fatalf("expected synthetic bot message, got %+v", last)
	}
	if !strings.Contains(last.Text, "Nenhum débito encontrado") {
		t.Fatalf("expected no-debts text, got %q", last.Text)
	}
	if len(last.Options) != 2 || last.Options[0] != "🔙 Voltar ao Financeiro" || last.Options[1] != "🏠 Menu Principal" {
		t.Fatalf("expected fixed follow-up options, got %v", last.Options)
	}
	if sess.FormMode() != widget.FormNone {
		t.Fatalf("form must close after a terminal outcome, got %q", sess.FormMode())
	}

	if bill.lastDebt.CPFCNPJ != "12345678900" {
		t.Fatalf("unexpected debt request %+v", bill.lastDebt)
	}
}

func TestConsultDebtServiceErrorRendered(t *testing.T) {
	dlg := &fakeDialogue{reply: greeting()}
	bill := &fakeBilling{debtResult: billing.DebtResult{Error: "Cliente não encontrado ou sem débitos"}}
	svc := newTestService(dlg, bill)

	sess, _ := svc.StartConversation(context.Background())
	svc.ConsultDebt(context.Background(), sess.ID, widget.DebtInput{CPFCNPJ: "999"})

	transcript := sess.Transcript()
	last := transcript[len(transcript)-1]
	if !strings.Contains(last.Text, "Cliente não encontrado") {
		t.Fatalf("payload-level error must be rendered verbatim, got %q", last.Text)
	}
}

func TestConsultDebtTransportFailure(t *testing.T) {
	dlg := &fakeDialogue{reply: greeting()}
	bill := &fakeBilling{err: errors.New("dial tcp: connection refused")}
	svc := newTestService(dlg, bill)

	sess, _ := svc.StartConversation(context.Background())
	if _, err := svc.ConsultDebt(context.Background(), sess.ID, widget.DebtInput{CPFCNPJ: "123"}); err != nil {
		t.Fatalf("transport failure must be recovered, got %v", err)
	}

	transcript := sess.Transcript()
	last := transcript[len(transcript)-1]
	if last.Text != "Erro ao consultar débitos. Tente novamente." {
		t.Fatalf("expected debt fallback text, got %q", last.Text)
	}
	if sess.FormMode() != widget.FormNone {
		t.Fatalf("form must close on failure too, got %q", sess.FormMode())
	}
}

func TestGenerateBoletoValidation(t *testing.T) {
	dlg := &fakeDialogue{reply: greeting()}
	bill := &fakeBilling{}
	svc := newTestService(dlg, bill)

	sess, _ := svc.StartConversation(context.Background())

	cases := []widget.BoletoInput{
		{Value: 100, DueDate: "2026-09-30"},                     // missing customer
		{CustomerID: "cus_1", DueDate: "2026-09-30"},            // missing value
		{CustomerID: "cus_1", Value: -5, DueDate: "2026-09-30"}, // non-positive value
		{CustomerID: "cus_1", Value: 100},                       // missing due date
	}

	for i, in := range cases {
		_, err := svc.GenerateBoleto(context.Background(), sess.ID, in)
		var vErr *widget.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}

	if bill.boletoCalls != 0 {
		t.Fatalf("validation failures must not call the billing service, got %d calls", bill.boletoCalls)
	}
}

func TestGenerateBoletoSuccess(t *testing.T) {
	dlg := &fakeDialogue{reply: greeting()}
	bill := &fakeBilling{boletoResult: billing.BoletoResult{
		ID:         "pay_123",
		Value:      250,
		DueDate:    "2026-09-30",
		InvoiceURL: "https://pay.example/inv_123",
	}}
	svc := newTestService(dlg, bill)

	sess, _ := svc.StartConversation(context.Background())

	dlg.reply = dialogue.Reply{Response: "📋 Geração de Boleto", Department: "financeiro_boleto"}
	svc.SendMessage(context.Background(), sess.ID, "gerar boleto")

	if _, err := svc.GenerateBoleto(context.Background(), sess.ID, widget.BoletoInput{
		CustomerID: "cus_1",
		Value:      250,
		DueDate:    "2026-09-30",
	}); err != nil {
		t.Fatalf("GenerateBoleto failed: %v", err)
	}

	if bill.lastBoleto.Description != "Cobrança Linktrac" {
		t.Fatalf("expected default description, got %q", bill.lastBoleto.Description)
	}

	transcript := sess.Transcript()
	last := transcript[len(transcript)-1]
	if !strings.Contains(last.Text, "pay_123") || !strings.Contains(last.Text, "https://pay.example/inv_123") {
		t.Fatalf("expected labeled summary, got %q", last.Text)
	}
	if len(last.Options) != 2 {
		t.Fatalf("expected follow-up options, got %v", last.Options)
	}
	if sess.FormMode() != widget.FormNone {
		t.Fatalf("boleto form must close, got %q", sess.FormMode())
	}
	// closing the form is local; the department tag stays what the backend set
	if sess.Department() != "financeiro_boleto" {
		t.Fatalf("department must not change on submit, got %q", sess.Department())
	}
}

// blockingDialogue answers the opening turn immediately and parks every
// later turn until released, so the busy guard can be observed.
type blockingDialogue struct {
	calls   int32
	started chan struct{}
	release chan struct{}
	reply   dialogue.Reply
}

func (f *blockingDialogue) SendTurn(_ context.Context, _ dialogue.Turn) (*dialogue.Reply, error) {
	if atomic.AddInt32(&f.calls, 1) > 1 {
		f.started <- struct{}{}
		<-f.release
	}
	r := f.reply
	return &r, nil
}

func TestBusyGuardRejectsSecondSubmission(t *testing.T) {
	dlg := &blockingDialogue{
		started: make(chan struct{}, 4),
		release: make(chan struct{}),
		reply:   greeting(),
	}
	svc := newTestService2(dlg)

	sess, err := svc.StartConversation(context.Background())
	if err != nil {
		t.Fatalf("StartConversation failed: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := svc.SendMessage(context.Background(), sess.ID, "primeira")
		done <- err
	}()

	<-dlg.started

	if _, err := svc.SendMessage(context.Background(), sess.ID, "segunda"); !errors.Is(err, widget.ErrBusy) {
		t.Fatalf("expected ErrBusy while a turn is outstanding, got %v", err)
	}

	close(dlg.release)
	if err := <-done; err != nil {
		t.Fatalf("first submission failed: %v", err)
	}

	// slot is free again after the outstanding turn settles
	if _, err := svc.SendMessage(context.Background(), sess.ID, "terceira"); err != nil {
		t.Fatalf("expected busy slot to be released, got %v", err)
	}
}

func newTestService2(dlg dialogue.Client) widget.Service {
	return widget.NewService(dlg, &fakeBilling{}, nil)
}

func TestUnknownSession(t *testing.T) {
	svc := newTestService(&fakeDialogue{reply: greeting()}, &fakeBilling{})

	if _, err := svc.SendMessage(context.Background(), "session_missing", "oi"); !errors.Is(err, widget.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if _, err := svc.GetSession("session_missing"); !errors.Is(err, widget.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

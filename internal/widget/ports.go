package widget

import (
	"context"
	"errors"
)

var (
	ErrSessionNotFound = errors.New("widget: session not found")
	// ErrBusy rejects a mutating call while another request is outstanding
	// for the same session.
	ErrBusy = errors.New("widget: request already in flight")
)

// ValidationError blocks an action submission before any network call. The
// notice is shown to the user directly and never enters the transcript.
type ValidationError struct {
	Notice string
}

func (e *ValidationError) Error() string {
	return "widget: " + e.Notice
}

// DebtInput is the debt-consultation form submission.
type DebtInput struct {
	CPFCNPJ string
}

// BoletoInput is the boleto-generation form submission.
type BoletoInput struct {
	CustomerID  string
	Value       float64
	DueDate     string
	Description string
}

// Service orchestrates widget sessions: the transcript, the department state
// machine and the two action submitters.
type Service interface {
	StartConversation(ctx context.Context) (*Session, error)
	SendMessage(ctx context.Context, sessionID, text string) (*Session, error)
	ConsultDebt(ctx context.Context, sessionID string, in DebtInput) (*Session, error)
	GenerateBoleto(ctx context.Context, sessionID string, in BoletoInput) (*Session, error)
	GetSession(sessionID string) (*Session, error)
}

// TranscriptLog records turns and action submissions for auditing. Write
// failures are logged and swallowed; the in-memory session stays canonical
// and the log is never read back.
type TranscriptLog interface {
	LogMessage(ctx context.Context, sessionID string, msg Message) error
	LogDebtConsultation(ctx context.Context, sessionID, cpfCnpj, result string) error
	LogBoletoGeneration(ctx context.Context, sessionID string, in BoletoInput, result string) error
}

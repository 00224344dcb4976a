package widget

import (
	"context"
	"database/sql"
)

// postgresLog is the durable transcript log. It is write-only and
// best-effort; the caller drops write errors after logging them.
type postgresLog struct {
	db *sql.DB
}

func NewPostgresLog(db *sql.DB) TranscriptLog {
	return &postgresLog{db: db}
}

func (l *postgresLog) LogMessage(ctx context.Context, sessionID string, msg Message) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO chat_messages (session_id, sender, text, department, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`,
		sessionID,
		string(msg.Sender),
		msg.Text,
		msg.Department,
		msg.Timestamp,
	)
	return err
}

func (l *postgresLog) LogDebtConsultation(ctx context.Context, sessionID, cpfCnpj, result string) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO debt_consultations (session_id, cpf_cnpj, result)
		VALUES ($1, $2, $3)
	`,
		sessionID,
		cpfCnpj,
		result,
	)
	return err
}

func (l *postgresLog) LogBoletoGeneration(ctx context.Context, sessionID string, in BoletoInput, result string) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO boleto_generations (session_id, customer_id, value, due_date, description, result)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		sessionID,
		in.CustomerID,
		in.Value,
		in.DueDate,
		in.Description,
		result,
	)
	return err
}

// nopLog is used when no DATABASE_URL is configured.
type nopLog struct{}

func NewNopLog() TranscriptLog {
	return nopLog{}
}

func (nopLog) LogMessage(context.Context, string, Message) error { return nil }

func (nopLog) LogDebtConsultation(context.Context, string, string, string) error { return nil }

func (nopLog) LogBoletoGeneration(context.Context, string, BoletoInput, string) error { return nil }

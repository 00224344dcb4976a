package billing

import "context"

// Client is the billing service behind debt consultation and boleto
// generation. Both endpoints answer inside a {"data": ...} envelope; a
// payload-level "error" is a domain failure reported by a successful
// response, so it comes back as data rather than as a Go error.
type Client interface {
	ConsultDebt(ctx context.Context, req DebtRequest) (*DebtResult, error)
	GenerateBoleto(ctx context.Context, req BoletoRequest) (*BoletoResult, error)
}

type DebtRequest struct {
	CPFCNPJ   string `json:"cpf_cnpj"`
	SessionID string `json:"session_id"`
}

type Debt struct {
	Value   float64 `json:"value"`
	DueDate string  `json:"dueDate"`
	Status  string  `json:"status"`
}

// DebtResult is the inner payload of the consult-debt envelope. No Error and
// an empty Debts slice means "no debts found", which is not a failure.
type DebtResult struct {
	Error string `json:"error,omitempty"`
	Debts []Debt `json:"data,omitempty"`
}

type BoletoRequest struct {
	CustomerID  string  `json:"customer_id"`
	Value       float64 `json:"value"`
	DueDate     string  `json:"due_date"`
	Description string  `json:"description"`
	SessionID   string  `json:"session_id"`
}

// BoletoResult is the inner payload of the generate-boleto envelope.
// InvoiceURL and BankSlipURL are independently optional.
type BoletoResult struct {
	Error       string  `json:"error,omitempty"`
	ID          string  `json:"id,omitempty"`
	Value       float64 `json:"value,omitempty"`
	DueDate     string  `json:"dueDate,omitempty"`
	InvoiceURL  string  `json:"invoiceUrl,omitempty"`
	BankSlipURL string  `json:"bankSlipUrl,omitempty"`
}

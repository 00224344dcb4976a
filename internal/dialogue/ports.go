package dialogue

import "context"

// Client is the remote dialogue engine, one request per turn. It decides the
// reply text, the quick-reply options, the contact block and the next
// department; the widget never second-guesses it.
type Client interface {
	SendTurn(ctx context.Context, turn Turn) (*Reply, error)
}

// Turn is one user → engine exchange.
type Turn struct {
	SessionID  string `json:"session_id"`
	Message    string `json:"message"`
	Department string `json:"department"`
}

// Reply is the engine's answer to a turn.
type Reply struct {
	Response    string       `json:"response"`
	Options     []string     `json:"options,omitempty"`
	ContactInfo *ContactInfo `json:"contact_info,omitempty"`
	Department  string       `json:"department"`
}

package widget

import (
	"time"

	"github.com/linktrac/chatwidget/internal/dialogue"
)

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one transcript entry. The ID is local to the session and only
// gives the UI a stable rendering identity; it is never server-assigned.
// Messages are immutable once appended.
type Message struct {
	ID          int64
	Text        string
	Sender      Sender
	Timestamp   time.Time
	Options     []string
	ContactInfo *dialogue.ContactInfo
	Department  string
}

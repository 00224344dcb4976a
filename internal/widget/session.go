package widget

import (
	"sync"
	"time"
)

// Draft is the transient input buffer bound to the currently visible form.
// It never enters the transcript and is thrown away when the form closes or
// the department machine swaps the form out.
type Draft struct {
	CustomerID  string
	Value       float64
	DueDate     string
	Description string
}

// Session is the state of one widget instance: an id minted once at mount,
// the append-only transcript, the current department with its derived form
// mode, and a single-slot busy guard for outstanding requests.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	busy       bool
	nextID     int64
	messages   []Message
	department string
	formMode   FormMode
	draft      Draft
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		ID:         id,
		CreatedAt:  now,
		department: DepartmentGeneral,
		formMode:   FormNone,
	}
}

// acquire claims the request slot. The original widget only disabled buttons
// while loading; here a second submission while one is outstanding is
// rejected outright. Callers must release on every path.
func (s *Session) acquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return false
	}
	s.busy = true
	return true
}

func (s *Session) release() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

// append assigns the next local id and adds the message to the transcript.
func (s *Session) append(msg Message) Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	msg.ID = s.nextID
	s.messages = append(s.messages, msg)
	return msg
}

// Transcript returns the messages in append order.
func (s *Session) Transcript() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) Department() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.department
}

func (s *Session) FormMode() FormMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.formMode
}

// setDepartment applies a reply's department tag and atomically swaps the
// active form. Moving to a different form mode abandons the draft.
func (s *Session) setDepartment(department string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.department = department
	mode := FormModeFor(department)
	if mode != s.formMode {
		s.draft = Draft{}
	}
	s.formMode = mode
}

func (s *Session) setDraft(d Draft) {
	s.mu.Lock()
	s.draft = d
	s.mu.Unlock()
}

// closeForm hides the active form and clears the draft. This is a local UI
// decision after a submitter settles, not a backend-driven transition; the
// department tag itself is left alone.
func (s *Session) closeForm() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.formMode = FormNone
	s.draft = Draft{}
}

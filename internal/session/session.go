package session

import (
	"errors"
	"sync"
	"time"

	"github.com/baalimago/webagent/internal/vendors"
	pub_models "github.com/baalimago/webagent/pkg/text/models"
)

const Greeting = "こんにちは！なんでも質問をどうぞ！"

var (
	ErrBusy     = errors.New("a turn is already in flight")
	ErrNotFound = errors.New("session not found")
	ErrIdle     = errors.New("no turn in flight")
)

// Session holds two histories: display, which is rendered and starts with
// the greeting, and context, which is handed to the agent. Both only ever
// hold user and assistant messages.
type Session struct {
	ID      string
	Created time.Time

	mu      sync.Mutex
	model   vendors.Choice
	display []pub_models.Message
	context []pub_models.Message
	updated time.Time
	busy    bool
}

// Snapshot is a consistent copy of a session.
type Snapshot struct {
	ID      string               `json:"id"`
	Model   vendors.Choice       `json:"model"`
	Display []pub_models.Message `json:"messages"`
	Context []pub_models.Message `json:"-"`
	Created time.Time            `json:"created"`
	Updated time.Time            `json:"updated"`
	Busy    bool                 `json:"busy"`
}

func newSession(id string, model vendors.Choice, now time.Time) *Session {
	s := &Session{
		ID:      id,
		Created: now,
		model:   model,
		updated: now,
	}
	s.resetLocked()
	return s
}

func greeting() pub_models.Message {
	return pub_models.Message{Role: pub_models.RoleAssistant, Content: Greeting}
}

func (s *Session) resetLocked() {
	s.display = []pub_models.Message{greeting()}
	s.context = []pub_models.Message{}
}

// Reset both histories. A turn in flight still commits onto the reset
// histories.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	s.updated = time.Now()
}

// SetModel switches the model used from the next turn on. History is kept.
func (s *Session) SetModel(c vendors.Choice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = c
	s.updated = time.Now()
}

func (s *Session) Model() vendors.Choice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

func (s *Session) Display() []pub_models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]pub_models.Message(nil), s.display...)
}

func (s *Session) Context() []pub_models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]pub_models.Message(nil), s.context...)
}

// Begin a turn. Only one turn may be in flight per session.
func (s *Session) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrBusy
	}
	s.busy = true
	s.updated = time.Now()
	return nil
}

// Commit appends the user message and the answer to both histories and
// ends the turn.
func (s *Session) Commit(user, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.busy {
		return ErrIdle
	}
	msgs := []pub_models.Message{
		{Role: pub_models.RoleUser, Content: user},
		{Role: pub_models.RoleAssistant, Content: answer},
	}
	s.display = append(s.display, msgs...)
	s.context = append(s.context, msgs...)
	s.busy = false
	s.updated = time.Now()
	return nil
}

// Abort ends the turn, leaving the histories untouched.
func (s *Session) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	s.updated = time.Now()
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:      s.ID,
		Model:   s.model,
		Display: append([]pub_models.Message(nil), s.display...),
		Context: append([]pub_models.Message(nil), s.context...),
		Created: s.Created,
		Updated: s.updated,
		Busy:    s.busy,
	}
}

func (s *Session) idleSince(t time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.busy && s.updated.Before(t)
}

package vendors

import (
	"context"
	"fmt"
	"sync"

	"github.com/baalimago/webagent/internal/models"
	pub_models "github.com/baalimago/webagent/pkg/text/models"
)

// Model binds a completer to its choice. Setup is deferred to the first
// completion, so that a missing key surfaces as a ModelError of a turn
// instead of failing at startup. Every failure is returned as a
// *models.ModelError.
type Model struct {
	Choice Choice
	Vendor string
	ID     string

	mu        sync.Mutex
	completer models.Completer
	ready     bool
}

// New returns the model for choice c.
func New(c Choice) (*Model, error) {
	e, err := Lookup(c)
	if err != nil {
		return nil, err
	}
	return Wrap(c, e.Vendor, e.Model, e.New()), nil
}

// Wrap an arbitrary completer, used to plug in mocks.
func Wrap(c Choice, vendor, id string, completer models.Completer) *Model {
	return &Model{Choice: c, Vendor: vendor, ID: id, completer: completer}
}

func (m *Model) Setup() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ready {
		return nil
	}
	if err := m.completer.Setup(); err != nil {
		return m.wrap(fmt.Errorf("%w: %v", ErrMissingKey, err))
	}
	m.ready = true
	return nil
}

func (m *Model) Complete(ctx context.Context, chat pub_models.Chat, specs []pub_models.Specification, choice models.ToolChoice) (models.Reply, error) {
	if err := m.Setup(); err != nil {
		return models.Reply{}, err
	}
	reply, err := m.completer.Complete(ctx, chat, specs, choice)
	if err != nil {
		return models.Reply{}, m.wrap(err)
	}
	return reply, nil
}

func (m *Model) wrap(err error) error {
	return &models.ModelError{Vendor: m.Vendor, Model: m.ID, Err: err}
}

package vendors

import (
	"context"
	"sync"

	"github.com/baalimago/webagent/internal/models"
	pub_models "github.com/baalimago/webagent/pkg/text/models"
)

// MockStep is one scripted completion of Mock.
type MockStep struct {
	Reply models.Reply
	Err   error
	// Block until the context is cancelled before replying.
	Block bool
}

// Mock is a Completer which replays Steps in order. Once the steps are
// exhausted it echoes the last user message.
type Mock struct {
	Steps    []MockStep
	SetupErr error

	mu      sync.Mutex
	chats   []pub_models.Chat
	specs   [][]pub_models.Specification
	choices []models.ToolChoice
}

func (m *Mock) Setup() error {
	return m.SetupErr
}

func (m *Mock) Complete(ctx context.Context, chat pub_models.Chat, specs []pub_models.Specification, choice models.ToolChoice) (models.Reply, error) {
	m.mu.Lock()
	cpy := chat
	cpy.Messages = append([]pub_models.Message(nil), chat.Messages...)
	m.chats = append(m.chats, cpy)
	m.specs = append(m.specs, specs)
	m.choices = append(m.choices, choice)
	n := len(m.chats) - 1
	m.mu.Unlock()

	if n >= len(m.Steps) {
		uMsg, _, _ := chat.LastOfRole(pub_models.RoleUser)
		return models.Reply{Content: uMsg.Content}, nil
	}
	step := m.Steps[n]
	if step.Block {
		<-ctx.Done()
		return models.Reply{}, ctx.Err()
	}
	return step.Reply, step.Err
}

// Chats received so far, one per completion.
func (m *Mock) Chats() []pub_models.Chat {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]pub_models.Chat(nil), m.chats...)
}

// Specs offered per completion.
func (m *Mock) Specs() [][]pub_models.Specification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]pub_models.Specification(nil), m.specs...)
}

// Choices of tool use per completion.
func (m *Mock) Choices() []models.ToolChoice {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.ToolChoice(nil), m.choices...)
}

package chat

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/baalimago/webagent/internal/models"
	"github.com/baalimago/webagent/internal/session"
	"github.com/baalimago/webagent/internal/vendors"
	"github.com/baalimago/webagent/pkg/agent"
	pub_models "github.com/baalimago/webagent/pkg/text/models"
)

var ErrEmptyPrompt = errors.New("prompt is empty")

// ModelFactory returns the completer used for a turn.
type ModelFactory func(vendors.Choice) (models.Completer, error)

// Turn is the outcome of one committed exchange.
type Turn struct {
	Answer   string               `json:"answer"`
	Steps    []agent.Step         `json:"steps"`
	Messages []pub_models.Message `json:"messages"`
}

// Service runs turns against sessions. It owns no session state, every
// call is handed the session it acts upon.
type Service struct {
	Store *session.Store

	tools     []pub_models.LLMTool
	newModel  ModelFactory
	agentOpts []agent.Option
	debug     bool
}

type Option func(*Service)

func WithModelFactory(f ModelFactory) Option {
	return func(s *Service) {
		s.newModel = f
	}
}

// WithAgentOptions are applied to the agent of every turn.
func WithAgentOptions(opts ...agent.Option) Option {
	return func(s *Service) {
		s.agentOpts = append(s.agentOpts, opts...)
	}
}

func NewService(store *session.Store, tools []pub_models.LLMTool, opts ...Option) *Service {
	s := &Service{
		Store: store,
		tools: tools,
		newModel: func(c vendors.Choice) (models.Completer, error) {
			return vendors.New(c)
		},
		debug: misc.Truthy(os.Getenv("DEBUG")),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Send runs one turn of sess. On success the prompt and the answer are
// committed to both histories. On any failure the session is left as it
// was. Steps are reported to obs as they happen, and also returned.
func (s *Service) Send(ctx context.Context, sess *session.Session, prompt string, obs agent.Observer) (Turn, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Turn{}, ErrEmptyPrompt
	}
	if err := sess.Begin(); err != nil {
		return Turn{}, err
	}
	committed := false
	defer func() {
		if !committed {
			sess.Abort()
		}
	}()

	choice := sess.Model()
	completer, err := s.newModel(choice)
	if err != nil {
		return Turn{}, fmt.Errorf("failed to create model '%v': %w", choice, err)
	}

	var steps []agent.Step
	tee := agent.ObserverFunc(func(st agent.Step) {
		steps = append(steps, st)
		if obs != nil {
			obs.OnStep(st)
		}
	})

	opts := append([]agent.Option{
		agent.WithCompleter(completer),
		agent.WithTools(s.tools...),
	}, s.agentOpts...)
	a := agent.New(opts...)

	history := append(sess.Context(), pub_models.Message{Role: pub_models.RoleUser, Content: prompt})
	chat, err := a.Invoke(ctx, history, tee)
	if err != nil {
		if s.debug {
			ancli.Noticef("turn of session: %v failed: %v", sess.ID, err)
		}
		return Turn{}, err
	}
	answer, _, err := chat.LastOfRole(pub_models.RoleAssistant)
	if err != nil {
		return Turn{}, fmt.Errorf("agent returned no answer: %w", err)
	}
	if err := sess.Commit(prompt, answer.Content); err != nil {
		return Turn{}, fmt.Errorf("failed to commit turn: %w", err)
	}
	committed = true
	return Turn{
		Answer:   answer.Content,
		Steps:    steps,
		Messages: sess.Display(),
	}, nil
}

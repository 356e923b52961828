package agent

import (
	"errors"
	"os"

	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/baalimago/webagent/internal/models"
	"github.com/baalimago/webagent/internal/tools"
	pub_models "github.com/baalimago/webagent/pkg/text/models"
)

const (
	DefaultMaxIterations       = 10
	DefaultToolOutputRuneLimit = 21600
)

var ErrNoCompleter = errors.New("agent has no completer")

type Agent struct {
	completer           models.Completer
	prompt              string
	registry            *tools.Registry
	maxIterations       int
	toolOutputRuneLimit int
	parallelTools       bool
	debug               bool
}

var defaultConf = Agent{
	prompt:              SystemPrompt,
	maxIterations:       DefaultMaxIterations,
	toolOutputRuneLimit: DefaultToolOutputRuneLimit,
	parallelTools:       true,
}

type Option func(*Agent)

func New(options ...Option) Agent {
	conf := defaultConf
	conf.registry = tools.NewRegistry()
	conf.debug = misc.Truthy(os.Getenv("DEBUG"))
	for _, o := range options {
		o(&conf)
	}
	return conf
}

func WithCompleter(c models.Completer) Option {
	return func(a *Agent) {
		a.completer = c
	}
}

func WithPrompt(prompt string) Option {
	return func(a *Agent) {
		a.prompt = prompt
	}
}

// WithTools replaces the tools the model is offered.
func WithTools(ts ...pub_models.LLMTool) Option {
	return func(a *Agent) {
		a.registry = tools.NewRegistry(ts...)
	}
}

// WithMaxIterations bounds the amount of model calls of one invocation.
// Values below 1 are ignored.
func WithMaxIterations(am int) Option {
	return func(a *Agent) {
		if am > 0 {
			a.maxIterations = am
		}
	}
}

// WithToolOutputRuneLimit truncates tool output to limit runes. 0 disables
// the limit.
func WithToolOutputRuneLimit(limit int) Option {
	return func(a *Agent) {
		a.toolOutputRuneLimit = limit
	}
}

func WithParallelTools(parallel bool) Option {
	return func(a *Agent) {
		a.parallelTools = parallel
	}
}

// Tools offered to the model, sorted by name.
func (a *Agent) Tools() []pub_models.LLMTool {
	return a.registry.Tools()
}

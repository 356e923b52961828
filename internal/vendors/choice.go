package vendors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/baalimago/webagent/internal/models"
	"github.com/baalimago/webagent/internal/vendors/anthropic"
	"github.com/baalimago/webagent/internal/vendors/gemini"
	"github.com/baalimago/webagent/internal/vendors/openai"
)

// Choice is a model selection label, as shown to the user.
type Choice string

const (
	GPT4           Choice = "GPT-4"
	Claude45Sonnet Choice = "Claude 4.5 Sonnet"
	Gemini25Flash  Choice = "Gemini 2.5 Flash"
	GPT35          Choice = "GPT-3.5 (not recommended)"
)

const DefaultChoice = GPT4

var (
	ErrUnknownChoice = errors.New("unknown model choice")
	ErrMissingKey    = errors.New("missing api key")
)

// Factory creates a fresh, not yet set up, completer.
type Factory func() models.Completer

// Entry of the lookup table.
type Entry struct {
	Vendor string
	Model  string
	New    Factory
}

var order = []Choice{GPT4, Claude45Sonnet, Gemini25Flash, GPT35}

var table = map[Choice]Entry{
	GPT4: {
		Vendor: "openai",
		Model:  "gpt-4o",
		New: func() models.Completer {
			v := openai.GptDefault
			v.Model = "gpt-4o"
			return &v
		},
	},
	Claude45Sonnet: {
		Vendor: "anthropic",
		Model:  "claude-sonnet-4-5-20250929",
		New: func() models.Completer {
			v := anthropic.ClaudeDefault
			v.Model = "claude-sonnet-4-5-20250929"
			return &v
		},
	},
	Gemini25Flash: {
		Vendor: "gemini",
		Model:  "gemini-2.5-flash",
		New: func() models.Completer {
			v := gemini.Default
			v.Model = "gemini-2.5-flash"
			return &v
		},
	},
	GPT35: {
		Vendor: "openai",
		Model:  "gpt-3.5-turbo",
		New: func() models.Completer {
			v := openai.GptDefault
			v.Model = "gpt-3.5-turbo"
			return &v
		},
	},
}

// Choices in the order they are presented.
func Choices() []Choice {
	ret := make([]Choice, len(order))
	copy(ret, order)
	return ret
}

// ParseChoice matches label against the known choices, ignoring case and
// surrounding whitespace.
func ParseChoice(label string) (Choice, error) {
	label = strings.TrimSpace(label)
	for _, c := range order {
		if strings.EqualFold(string(c), label) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: '%v', expected one of: %v", ErrUnknownChoice, label, labels())
}

func labels() string {
	s := make([]string, 0, len(order))
	for _, c := range order {
		s = append(s, fmt.Sprintf("'%v'", c))
	}
	return strings.Join(s, ", ")
}

// Lookup returns the table entry of c.
func Lookup(c Choice) (Entry, error) {
	e, ok := table[c]
	if !ok {
		return Entry{}, fmt.Errorf("%w: '%v'", ErrUnknownChoice, c)
	}
	return e, nil
}

package openai

import (
	"fmt"

	"github.com/baalimago/webagent/internal/text/generic"
)

var GptDefault = ChatGPT{
	Model:       "gpt-4o",
	Temperature: 0,
	URL:         ChatURL,
}

type ChatGPT struct {
	generic.Completer
	Model       string  `json:"model"`
	MaxTokens   *int    `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	URL         string  `json:"url"`
}

func (g *ChatGPT) Setup() error {
	if g.URL != "" {
		g.Completer.SetURL(g.URL)
	}
	err := g.Completer.Setup("OPENAI_API_KEY", ChatURL, "DEBUG_OPENAI")
	if err != nil {
		return fmt.Errorf("failed to setup completer: %w", err)
	}
	g.Completer.Vendor = "openai"
	g.Completer.Model = g.Model
	g.Completer.MaxTokens = g.MaxTokens
	g.Completer.Temperature = &g.Temperature
	toolChoice := "auto"
	g.Completer.ToolChoice = &toolChoice
	return nil
}

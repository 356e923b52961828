package generic

import (
	"net/http"
)

// Completer follows the chat completions api of OpenAI, which many vendors
// mirror. Replies are requested without streaming since a reply may hold
// several tool calls which have to be known in full before the agent acts.
type Completer struct {
	Vendor      string
	Model       string
	MaxTokens   *int
	Temperature *float64
	TopP        *float64
	ToolChoice  *string
	// Clean is applied to the outgoing messages, for vendors with quirks.
	Clean   func([]Message) []Message
	url     string
	client  *http.Client
	apiKey  string
	limiter *RateLimiter
	debug   bool
}

type ToolSuper struct {
	Type     string `json:"type"`
	Function Tool   `json:"function"`
}

type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Inputs      any    `json:"parameters"`
}

// Message in the wire format of the chat completions api.
type Message struct {
	Role       string      `json:"role"`
	Content    *string     `json:"content"`
	ToolCalls  []ToolsCall `json:"tool_calls,omitempty"`
	ToolCallID string      `json:"tool_call_id,omitempty"`
}

type ToolsCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function Func   `json:"function"`
}

type Func struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type req struct {
	Model       string      `json:"model"`
	Messages    []Message   `json:"messages"`
	MaxTokens   *int        `json:"max_tokens,omitempty"`
	Temperature *float64    `json:"temperature,omitempty"`
	TopP        *float64    `json:"top_p,omitempty"`
	ToolChoice  *string     `json:"tool_choice,omitempty"`
	Tools       []ToolSuper `json:"tools,omitempty"`
}

type chatCompletion struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
}

type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}
